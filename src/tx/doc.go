// Package tx implements weave transactions: construction, canonical
// serialization, signing, pricing, and verification.
//
// A transaction is created unsigned with a random id, then signed exactly
// once. Signing overwrites the owner, signature and id fields; the id of a
// signed transaction is the SHA256 hash of its signature, so it depends only
// on the signature bits. Any field mutation after signing invalidates the
// signature.
package tx
