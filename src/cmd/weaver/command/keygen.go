package command

import (
	"fmt"

	"github.com/pkg/errors"
	"github.com/spf13/cobra"

	"github.com/weavenet/weaver/src/crypto/keys"
)

// NewKeygenCmd returns the command that generates a wallet key pair.
func NewKeygenCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "keygen",
		Short: "Generate a new wallet key in the datadir",
		RunE: func(cmd *cobra.Command, args []string) error {
			pemKey := keys.NewPemKey(conf.DataDir)

			if key, _ := pemKey.ReadKey(); key != nil {
				return errors.Errorf("a wallet key already exists in %s; refusing to overwrite", conf.DataDir)
			}

			key, err := keys.GenerateRSAKey()
			if err != nil {
				return errors.Wrap(err, "generating key")
			}

			if err := pemKey.WriteKey(key); err != nil {
				return errors.Wrap(err, "writing key")
			}

			fmt.Printf("Public key: %s\n", keys.PublicKeyHex(&key.PublicKey))

			return nil
		},
	}
}
