package tx

import (
	"bytes"

	"github.com/weavenet/weaver/src/crypto"
	"github.com/weavenet/weaver/src/wallet"
)

// VerifyOptions control relaxations of the verification rules. The zero
// value is the production configuration.
type VerifyOptions struct {
	// AllowUnsigned lets transactions without a signature verify. This is a
	// debugging aid and must never be enabled on a live node; the config
	// layer prints a loud warning when it is set.
	AllowUnsigned bool

	// StrictLedger makes verification fail against an empty ledger instead
	// of passing the last-tx check unconditionally. The permissive default
	// is the genesis-bootstrap escape hatch.
	StrictLedger bool
}

// Verify reports whether the transaction satisfies all acceptance rules at
// the given difficulty against the given wallet ledger: a valid signature by
// the owner over the canonical encoding, an id equal to the hash of the
// signature, a reward covering the minimum data cost, field-size bounds, and
// a last-tx reference matching the owner's ledger entry. It returns a bare
// verdict and never panics.
func Verify(t *Transaction, diff int64, ledger wallet.Ledger) bool {
	return VerifyWith(t, diff, ledger, VerifyOptions{})
}

// VerifyWith is Verify with explicit options.
func VerifyWith(t *Transaction, diff int64, ledger wallet.Ledger, opts VerifyOptions) bool {
	if t == nil {
		return false
	}

	unsigned := opts.AllowUnsigned && len(t.Signature) == 0

	if !unsigned {
		if !wallet.Verify(t.Owner, t.SignatureData(), t.Signature) {
			return false
		}
		if !bytes.Equal(t.ID, crypto.SHA256(t.Signature)) {
			return false
		}
	}

	if !CostAboveMin(t, diff) {
		return false
	}

	if !verifyFields(t, unsigned) {
		return false
	}

	return verifyLastTx(t, ledger, opts.StrictLedger)
}

// verifyFields checks the size bounds of every field.
func verifyFields(t *Transaction, unsigned bool) bool {
	if len(t.ID) != IDLength {
		return false
	}

	if len(t.LastTx) != 0 && len(t.LastTx) != IDLength {
		return false
	}

	if len(t.Owner) > MaxOwnerLength {
		return false
	}
	if !unsigned && len(t.Owner) == 0 {
		return false
	}

	if len(t.Target) != 0 && len(t.Target) != wallet.AddressLength {
		return false
	}

	if len(t.Signature) > MaxSignatureLength {
		return false
	}

	q := amount(t.Quantity)
	if q.Sign() < 0 || len(q.String()) > MaxAmountLength {
		return false
	}

	r := amount(t.Reward)
	if r.Sign() < 0 || len(r.String()) > MaxAmountLength {
		return false
	}

	// The flattened tag size bound. The concatenation is delimiter-free, so
	// it is only good for the bound, never as a key.
	tagLen := 0
	for _, tag := range t.Tags {
		tagLen += len(tag.Name) + len(tag.Value)
	}

	return tagLen <= MaxTagLength
}

// verifyLastTx checks the owner's transaction chain against the ledger. An
// empty ledger passes unless strict is set.
func verifyLastTx(t *Transaction, ledger wallet.Ledger, strict bool) bool {
	if len(ledger) == 0 {
		return !strict
	}

	entry := ledger.Find(wallet.ToAddress(t.Owner))
	if entry == nil {
		return false
	}

	return bytes.Equal(entry.LastTx, t.LastTx)
}

// VerifyTxs verifies a sequence of transactions in order, applying each
// successfully verified transaction to the ledger before verifying the next.
// Failure of any element fails the whole sequence.
func VerifyTxs(txs []*Transaction, diff int64, ledger wallet.Ledger) bool {
	return VerifyTxsWith(txs, diff, ledger, VerifyOptions{})
}

// VerifyTxsWith is VerifyTxs with explicit options.
func VerifyTxsWith(txs []*Transaction, diff int64, ledger wallet.Ledger, opts VerifyOptions) bool {
	for _, t := range txs {
		if !VerifyWith(t, diff, ledger, opts) {
			return false
		}
		ledger = ledger.Apply(t.Owner, t.Target, amount(t.Quantity), amount(t.Reward), t.ID)
	}
	return true
}
