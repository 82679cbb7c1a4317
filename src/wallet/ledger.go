package wallet

import (
	"bytes"
	"math/big"
)

// Entry is a wallet ledger record: an address, its balance in winston, and
// the id of the last transaction issued by this wallet.
type Entry struct {
	Address []byte
	Balance *big.Int
	LastTx  []byte
}

// Ledger is a set of wallet entries indexed by address.
type Ledger []Entry

// Find returns the entry for the given address, or nil if absent.
func (l Ledger) Find(address []byte) *Entry {
	for i := range l {
		if bytes.Equal(l[i].Address, address) {
			return &l[i]
		}
	}
	return nil
}

// Apply debits quantity+reward from the sender, credits quantity to the
// target, and records txID as the sender's last transaction. It returns a new
// ledger; the receiver is left untouched. Unknown senders or targets are
// inserted, so a ledger can be grown from scratch by replaying transactions.
func (l Ledger) Apply(owner []byte, target []byte, quantity, reward *big.Int, txID []byte) Ledger {
	sender := ToAddress(owner)

	spent := new(big.Int).Add(quantity, reward)

	out := make(Ledger, len(l))
	copy(out, l)

	if e := out.Find(sender); e != nil {
		e.Balance = new(big.Int).Sub(e.Balance, spent)
		e.LastTx = txID
	} else {
		out = append(out, Entry{
			Address: sender,
			Balance: new(big.Int).Neg(spent),
			LastTx:  txID,
		})
	}

	if len(target) == 0 || quantity.Sign() == 0 {
		return out
	}

	if e := out.Find(target); e != nil {
		e.Balance = new(big.Int).Add(e.Balance, quantity)
	} else {
		out = append(out, Entry{
			Address: target,
			Balance: new(big.Int).Set(quantity),
		})
	}

	return out
}
