package keys

import (
	"crypto/rand"
	"crypto/rsa"
	"math/big"

	"github.com/weavenet/weaver/src/common"
)

// KeyBits is the modulus size of generated wallet keys.
const KeyBits = 2048

// PublicExponent is the RSA public exponent shared by all wallet keys.
const PublicExponent = 65537

//GenerateRSAKey creates a new rsa.PrivateKey of KeyBits bits.
func GenerateRSAKey() (*rsa.PrivateKey, error) {
	return rsa.GenerateKey(rand.Reader, KeyBits)
}

// FromPublicKey returns the wire form of a public key: the big-endian bytes
// of the modulus. It outputs nil for a nil key.
func FromPublicKey(pub *rsa.PublicKey) []byte {
	if pub == nil || pub.N == nil {
		return nil
	}
	return pub.N.Bytes()
}

// ToPublicKey is the inverse of FromPublicKey. The public exponent is not
// part of the wire form; it is always PublicExponent.
func ToPublicKey(pub []byte) *rsa.PublicKey {
	if len(pub) == 0 {
		return nil
	}
	return &rsa.PublicKey{
		N: new(big.Int).SetBytes(pub),
		E: PublicExponent,
	}
}

// PublicKeyHex returns the hexadecimal representation of the wire form of
// the public key
func PublicKeyHex(pub *rsa.PublicKey) string {
	return common.EncodeToString(FromPublicKey(pub))
}
