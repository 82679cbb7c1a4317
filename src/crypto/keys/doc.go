// Package keys implements the cryptographic identities of weaver wallets.
//
// Wallets are RSA key pairs. The on-the-wire form of a public key is the
// big-endian byte representation of its modulus; all keys share the public
// exponent 65537. Signatures are PKCS#1 v1.5 over the SHA256 digest of the
// message.
package keys
