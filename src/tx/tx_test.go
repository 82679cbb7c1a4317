package tx

import (
	"bytes"
	"crypto/rsa"
	"math/big"
	mrand "math/rand"
	"testing"

	"github.com/weavenet/weaver/src/crypto"
	"github.com/weavenet/weaver/src/crypto/keys"
	"github.com/weavenet/weaver/src/wallet"
)

func testKey(t *testing.T) *rsa.PrivateKey {
	key, err := keys.GenerateRSAKey()
	if err != nil {
		t.Fatalf("err: %v", err)
	}
	return key
}

// randomData deliberately uses the plain math/rand generator. Test payloads
// are not ids; only unsigned ids come from the cryptographic RNG.
func randomData(n int) []byte {
	data := make([]byte, n)
	mrand.Read(data)
	return data
}

func TestSignVerify(t *testing.T) {
	key := testKey(t)

	newTx := NewDataReward([]byte("TEST DATA"), WinstonFromAR(10))

	if err := newTx.Sign(key); err != nil {
		t.Fatalf("err: %v", err)
	}

	if !Verify(newTx, 1, wallet.Ledger{}) {
		t.Fatalf("signed tx should verify against an empty ledger")
	}
}

func TestForgedDataSegmentDoesNotVerify(t *testing.T) {
	key := testKey(t)

	newTx := NewDataReward([]byte("TEST DATA"), WinstonFromAR(10))

	if err := newTx.Sign(key); err != nil {
		t.Fatalf("err: %v", err)
	}

	newTx.Data = []byte("FAKE DATA")

	if Verify(newTx, 1, wallet.Ledger{}) {
		t.Fatalf("tampered tx should not verify")
	}
}

func TestTamperDetection(t *testing.T) {
	key := testKey(t)

	target := crypto.SHA256([]byte("target wallet"))

	mutations := map[string]func(*Transaction){
		"target":   func(x *Transaction) { x.Target = target },
		"quantity": func(x *Transaction) { x.Quantity = big.NewInt(7) },
		"reward":   func(x *Transaction) { x.Reward = WinstonFromAR(11) },
		"last_tx":  func(x *Transaction) { x.LastTx = crypto.SHA256([]byte("other tx")) },
		"owner":    func(x *Transaction) { x.Owner = x.Owner[1:] },
	}

	for name, mutate := range mutations {
		newTx := NewDataReward(randomData(64), WinstonFromAR(10))

		if err := newTx.Sign(key); err != nil {
			t.Fatalf("err: %v", err)
		}

		mutate(newTx)

		if Verify(newTx, 1, wallet.Ledger{}) {
			t.Fatalf("mutating %s should invalidate the signature", name)
		}
	}
}

func TestIDBinding(t *testing.T) {
	key := testKey(t)

	newTx := NewDataReward(randomData(128), WinstonFromAR(10))

	if err := newTx.Sign(key); err != nil {
		t.Fatalf("err: %v", err)
	}

	if !bytes.Equal(newTx.ID, crypto.SHA256(newTx.Signature)) {
		t.Fatalf("id should be the SHA256 of the signature")
	}

	// Rebinding the id to anything else must fail verification
	newTx.ID = newID()

	if Verify(newTx, 1, wallet.Ledger{}) {
		t.Fatalf("tx with forged id should not verify")
	}
}

func TestUnsignedDoesNotVerify(t *testing.T) {
	newTx := NewDataReward([]byte("TEST DATA"), WinstonFromAR(10))

	if Verify(newTx, 1, wallet.Ledger{}) {
		t.Fatalf("unsigned tx should not verify")
	}

	// The debug bypass lets it through
	if !VerifyWith(newTx, 1, wallet.Ledger{}, VerifyOptions{AllowUnsigned: true}) {
		t.Fatalf("unsigned tx should verify with AllowUnsigned")
	}
}

func TestLastTxChain(t *testing.T) {
	k1 := testKey(t)
	k2 := testKey(t)
	k3 := testKey(t)

	w1 := wallet.ToAddress(keys.FromPublicKey(&k1.PublicKey))
	w2 := wallet.ToAddress(keys.FromPublicKey(&k2.PublicKey))
	w3 := wallet.ToAddress(keys.FromPublicKey(&k3.PublicKey))

	id1 := crypto.SHA256([]byte("ID1"))

	ledger := wallet.Ledger{
		{Address: w1, Balance: big.NewInt(1000), LastTx: []byte{}},
		{Address: w2, Balance: big.NewInt(2000), LastTx: id1},
		{Address: w3, Balance: big.NewInt(3000), LastTx: []byte{}},
	}

	chained := NewDataRewardLast([]byte("TEST DATA"), WinstonFromAR(10), id1)
	if err := chained.Sign(k2); err != nil {
		t.Fatalf("err: %v", err)
	}

	if !Verify(chained, 1, ledger) {
		t.Fatalf("tx with matching last_tx should verify")
	}

	unchained := NewDataReward([]byte("TEST DATA"), WinstonFromAR(10))
	if err := unchained.Sign(k2); err != nil {
		t.Fatalf("err: %v", err)
	}

	if Verify(unchained, 1, ledger) {
		t.Fatalf("tx with empty last_tx should fail against a non-empty ledger")
	}

	// Unknown owner
	unknown := NewDataRewardLast([]byte("TEST DATA"), WinstonFromAR(10), id1)
	if err := unknown.Sign(testKey(t)); err != nil {
		t.Fatalf("err: %v", err)
	}

	if Verify(unknown, 1, ledger) {
		t.Fatalf("tx from a wallet absent from the ledger should fail")
	}

	// Strict mode closes the genesis escape hatch
	if VerifyWith(chained, 1, wallet.Ledger{}, VerifyOptions{StrictLedger: true}) {
		t.Fatalf("strict mode should fail against an empty ledger")
	}
}

func TestVerifyTxs(t *testing.T) {
	key := testKey(t)

	first := NewDataReward([]byte("first"), WinstonFromAR(10))
	if err := first.Sign(key); err != nil {
		t.Fatalf("err: %v", err)
	}

	// The second tx chains onto the first through the updated ledger
	second := NewDataRewardLast([]byte("second"), WinstonFromAR(10), first.ID)
	if err := second.Sign(key); err != nil {
		t.Fatalf("err: %v", err)
	}

	if !VerifyTxs([]*Transaction{first, second}, 1, wallet.Ledger{}) {
		t.Fatalf("chained sequence should verify")
	}

	// Out of order, the second tx references an id the ledger has not seen
	addr := wallet.ToAddress(keys.FromPublicKey(&key.PublicKey))
	ledger := wallet.Ledger{{Address: addr, Balance: WinstonFromAR(100), LastTx: []byte{}}}

	if VerifyTxs([]*Transaction{second, first}, 1, ledger) {
		t.Fatalf("out-of-order sequence should fail")
	}
}

func TestFieldBounds(t *testing.T) {
	key := testKey(t)

	base := func() *Transaction {
		newTx := NewDataReward([]byte("TEST DATA"), WinstonFromAR(10))
		if err := newTx.Sign(key); err != nil {
			t.Fatalf("err: %v", err)
		}
		return newTx
	}

	// Sane starting point
	if !Verify(base(), 1, wallet.Ledger{}) {
		t.Fatalf("base tx should verify")
	}

	overQuantity := base()
	overQuantity.Quantity, _ = new(big.Int).SetString("1"+string(bytes.Repeat([]byte("0"), MaxAmountLength)), 10)
	if Verify(overQuantity, 1, wallet.Ledger{}) {
		t.Fatalf("oversized quantity should not verify")
	}

	negQuantity := base()
	negQuantity.Quantity = big.NewInt(-1)
	if Verify(negQuantity, 1, wallet.Ledger{}) {
		t.Fatalf("negative quantity should not verify")
	}

	badTarget := base()
	badTarget.Target = []byte("short")
	if Verify(badTarget, 1, wallet.Ledger{}) {
		t.Fatalf("target of the wrong length should not verify")
	}

	badLastTx := base()
	badLastTx.LastTx = []byte("short")
	if Verify(badLastTx, 1, wallet.Ledger{}) {
		t.Fatalf("last_tx of the wrong length should not verify")
	}
}

func TestTagBounds(t *testing.T) {
	key := testKey(t)

	tagged := NewDataReward([]byte("TEST DATA"), WinstonFromAR(10))
	tagged.Tags = []Tag{
		{Name: []byte("Content-Type"), Value: []byte("text/plain")},
		{Name: []byte("App-Name"), Value: []byte("weaver")},
	}
	if err := tagged.Sign(key); err != nil {
		t.Fatalf("err: %v", err)
	}

	if !Verify(tagged, 1, wallet.Ledger{}) {
		t.Fatalf("tx with small tags should verify")
	}

	oversized := NewDataReward([]byte("TEST DATA"), WinstonFromAR(10))
	oversized.Tags = []Tag{
		{Name: []byte("blob"), Value: randomData(MaxTagLength)},
	}
	if err := oversized.Sign(key); err != nil {
		t.Fatalf("err: %v", err)
	}

	if Verify(oversized, 1, wallet.Ledger{}) {
		t.Fatalf("tx with oversized tags should not verify")
	}
}

func TestNewTransferNormalizesDestination(t *testing.T) {
	key := testKey(t)

	pub := keys.FromPublicKey(&key.PublicKey)
	addr := wallet.ToAddress(pub)

	fromPub := NewTransfer(pub, WinstonFromAR(1), big.NewInt(500), nil)
	fromAddr := NewTransfer(addr, WinstonFromAR(1), big.NewInt(500), nil)

	if !bytes.Equal(fromPub.Target, addr) {
		t.Fatalf("public-key destination should be normalized to an address")
	}
	if !bytes.Equal(fromAddr.Target, addr) {
		t.Fatalf("address destination should pass through")
	}
}
