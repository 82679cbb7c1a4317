package keys

import (
	"crypto/rsa"
	"crypto/x509"
	"encoding/pem"
	"fmt"
	"io/ioutil"
	"os"
	"path"
	"path/filepath"
	"sync"
)

const (
	pemKeyPath = "wallet_key.pem"
)

// PemKey is a key reader/writer over a PEM file under a base directory.
type PemKey struct {
	l    sync.Mutex
	path string
}

func NewPemKey(base string) *PemKey {
	path := filepath.Join(base, pemKeyPath)

	pemKey := &PemKey{
		path: path,
	}

	return pemKey
}

func (k *PemKey) ReadKey() (*rsa.PrivateKey, error) {
	k.l.Lock()
	defer k.l.Unlock()

	buf, err := ioutil.ReadFile(k.path)

	if err != nil {
		return nil, err
	}

	return k.ReadKeyFromBuf(buf)
}

func (k *PemKey) ReadKeyFromBuf(buf []byte) (*rsa.PrivateKey, error) {
	if len(buf) == 0 {
		return nil, nil
	}

	block, _ := pem.Decode(buf)

	if block == nil {
		return nil, fmt.Errorf("Error decoding PEM block from data")
	}

	return x509.ParsePKCS1PrivateKey(block.Bytes)
}

func (k *PemKey) WriteKey(key *rsa.PrivateKey) error {
	k.l.Lock()
	defer k.l.Unlock()

	pemKey, err := ToPemKey(key)

	if err != nil {
		return err
	}

	if err := os.MkdirAll(path.Dir(k.path), 0700); err != nil {
		return err
	}

	return ioutil.WriteFile(k.path, []byte(pemKey.PrivateKey), 0600)
}

// PemDump contains the hexadecimal public key and the PEM-encoded private
// key of a wallet.
type PemDump struct {
	PublicKey  string
	PrivateKey string
}

func GeneratePemKey() (*PemDump, error) {
	key, err := GenerateRSAKey()
	if err != nil {
		return nil, err
	}

	return ToPemKey(key)
}

func ToPemKey(priv *rsa.PrivateKey) (*PemDump, error) {
	pub := PublicKeyHex(&priv.PublicKey)

	b := x509.MarshalPKCS1PrivateKey(priv)

	pemBlock := &pem.Block{Type: "RSA PRIVATE KEY", Bytes: b}

	data := pem.EncodeToMemory(pemBlock)

	return &PemDump{
		PublicKey:  pub,
		PrivateKey: string(data),
	}, nil
}
