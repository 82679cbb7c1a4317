package keys

import (
	"crypto"
	"crypto/rand"
	"crypto/rsa"
	"crypto/sha256"
)

// Sign signs the SHA256 digest of data with the private key, using PKCS#1
// v1.5 and the built-in pseudo-random generator rand.Reader.
func Sign(priv *rsa.PrivateKey, data []byte) ([]byte, error) {
	digest := sha256.Sum256(data)
	return rsa.SignPKCS1v15(rand.Reader, priv, crypto.SHA256, digest[:])
}

// Verify verifies that sig is a valid signature of data by the owner of the
// private key associated with the provided public key.
func Verify(pub *rsa.PublicKey, data, sig []byte) bool {
	if pub == nil {
		return false
	}
	digest := sha256.Sum256(data)
	return rsa.VerifyPKCS1v15(pub, crypto.SHA256, digest[:], sig) == nil
}
