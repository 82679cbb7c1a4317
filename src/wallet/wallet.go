package wallet

import (
	"crypto/rsa"

	"github.com/weavenet/weaver/src/crypto"
	"github.com/weavenet/weaver/src/crypto/keys"
)

// AddressLength is the byte length of a wallet address.
const AddressLength = 32

// ToAddress derives the 32-byte wallet address from the wire form of a
// public key. An input that is already an address is returned unchanged, so
// the function is idempotent.
func ToAddress(pubKey []byte) []byte {
	if len(pubKey) == AddressLength {
		return pubKey
	}
	return crypto.SHA256(pubKey)
}

// Sign signs msg with the wallet's private key.
func Sign(priv *rsa.PrivateKey, msg []byte) ([]byte, error) {
	return keys.Sign(priv, msg)
}

// Verify verifies a wallet signature. The public key is given in wire form.
func Verify(pubKey, msg, sig []byte) bool {
	return keys.Verify(keys.ToPublicKey(pubKey), msg, sig)
}
