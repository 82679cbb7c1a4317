package keys

import (
	"io/ioutil"
	"os"
	"testing"
)

func TestSignVerify(t *testing.T) {
	key, err := GenerateRSAKey()
	if err != nil {
		t.Fatalf("err: %v", err)
	}

	msg := []byte("time flies like an arrow")

	sig, err := Sign(key, msg)
	if err != nil {
		t.Fatalf("err: %v", err)
	}

	if !Verify(&key.PublicKey, msg, sig) {
		t.Fatalf("signature should verify")
	}

	if Verify(&key.PublicKey, []byte("fruit flies like a banana"), sig) {
		t.Fatalf("signature should not verify other data")
	}
}

func TestPublicKeyRoundTrip(t *testing.T) {
	key, err := GenerateRSAKey()
	if err != nil {
		t.Fatalf("err: %v", err)
	}

	raw := FromPublicKey(&key.PublicKey)

	pub := ToPublicKey(raw)

	if pub.N.Cmp(key.PublicKey.N) != 0 {
		t.Fatalf("modulus mismatch after round trip")
	}
	if pub.E != key.PublicKey.E {
		t.Fatalf("exponent should be %d, not %d", key.PublicKey.E, pub.E)
	}
}

func TestPemKey(t *testing.T) {
	// Create a test dir
	dir, err := ioutil.TempDir("", "weaver")
	if err != nil {
		t.Fatalf("err: %v ", err)
	}
	defer os.RemoveAll(dir)

	pemKey := NewPemKey(dir)

	// Try a read, should get nothing
	key, err := pemKey.ReadKey()
	if err == nil {
		t.Fatalf("ReadKey should generate an error")
	}
	if key != nil {
		t.Fatalf("key is not nil")
	}

	// Initialize a key and try a write
	key, _ = GenerateRSAKey()

	if err := pemKey.WriteKey(key); err != nil {
		t.Fatalf("err: %v", err)
	}

	// Try a read, should get key
	nKey, err := pemKey.ReadKey()
	if err != nil {
		t.Fatalf("err: %v", err)
	}

	if nKey.D.Cmp(key.D) != 0 {
		t.Fatalf("Keys do not match")
	}
}
