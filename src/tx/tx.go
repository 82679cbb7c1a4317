package tx

import (
	"bytes"
	"crypto/rand"
	"crypto/rsa"
	"math/big"

	"github.com/weavenet/weaver/src/crypto"
	"github.com/weavenet/weaver/src/crypto/keys"
	"github.com/weavenet/weaver/src/wallet"
)

// Field size limits. A transaction violating any of them never verifies.
const (
	// IDLength is the byte length of a transaction id.
	IDLength = 32

	// MaxOwnerLength bounds the wire form of the owner public key.
	MaxOwnerLength = 512

	// MaxSignatureLength bounds the signature field.
	MaxSignatureLength = 512

	// MaxTagLength bounds the concatenation of all tag names and values.
	MaxTagLength = 2048

	// MaxAmountLength bounds the decimal representation of quantity and
	// reward.
	MaxAmountLength = 21
)

// Tag is a named byte-string annotation carried by a transaction.
type Tag struct {
	Name  []byte
	Value []byte
}

// Transaction is a weave transaction. Quantity and Reward are winston
// amounts; a nil amount is treated as zero.
type Transaction struct {
	ID        []byte
	LastTx    []byte
	Owner     []byte
	Tags      []Tag
	Target    []byte
	Quantity  *big.Int
	Data      []byte
	Signature []byte
	Reward    *big.Int
}

// New returns an unsigned transaction carrying nothing but a fresh random id.
func New() *Transaction {
	return &Transaction{
		ID:       newID(),
		Quantity: new(big.Int),
		Reward:   new(big.Int),
	}
}

// NewData returns an unsigned pure-data transaction.
func NewData(data []byte) *Transaction {
	t := New()
	t.Data = data
	return t
}

// NewDataReward returns an unsigned pure-data transaction offering the given
// reward.
func NewDataReward(data []byte, reward *big.Int) *Transaction {
	t := NewData(data)
	t.Reward = reward
	return t
}

// NewDataRewardLast returns an unsigned pure-data transaction chained to the
// owner's previous transaction.
func NewDataRewardLast(data []byte, reward *big.Int, lastTx []byte) *Transaction {
	t := NewDataReward(data, reward)
	t.LastTx = lastTx
	return t
}

// NewTransfer returns an unsigned transfer of quantity winston to dest. The
// destination may be either a full public key or an already-derived address;
// it is normalized to an address.
func NewTransfer(dest []byte, reward, quantity *big.Int, lastTx []byte) *Transaction {
	t := New()
	t.Target = wallet.ToAddress(dest)
	t.Reward = reward
	t.Quantity = quantity
	t.LastTx = lastTx
	return t
}

// newID draws a fresh 32-byte id from the cryptographic RNG.
func newID() []byte {
	id := make([]byte, IDLength)
	// rand.Read only fails if the platform RNG is broken, in which case
	// issuing transactions is the least of our problems.
	if _, err := rand.Read(id); err != nil {
		panic(err)
	}
	return id
}

// SignatureData is the canonical encoding of the transaction, used as both
// the signing input and the id hash input. It is the ordered concatenation
//
//	owner || target || data || decimal(quantity) || decimal(reward) || last_tx
//
// where amounts are base-10 ASCII with no leading zeros or sign. The layout
// must be bit-exact across implementations for signatures to verify.
func (t *Transaction) SignatureData() []byte {
	var buf bytes.Buffer

	buf.Write(t.Owner)
	buf.Write(t.Target)
	buf.Write(t.Data)
	buf.WriteString(amount(t.Quantity).String())
	buf.WriteString(amount(t.Reward).String())
	buf.Write(t.LastTx)

	return buf.Bytes()
}

// Sign sets the owner to the key's public part, signs the canonical encoding
// with the private part, and rebinds the id to the hash of the signature.
func (t *Transaction) Sign(priv *rsa.PrivateKey) error {
	t.Owner = keys.FromPublicKey(&priv.PublicKey)

	sig, err := wallet.Sign(priv, t.SignatureData())
	if err != nil {
		return err
	}

	t.Signature = sig
	t.ID = crypto.SHA256(sig)

	return nil
}

// amount normalizes a possibly-nil big.Int field.
func amount(i *big.Int) *big.Int {
	if i == nil {
		return new(big.Int)
	}
	return i
}
