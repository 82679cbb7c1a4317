package net

import (
	"bytes"
	"math/big"

	"github.com/pkg/errors"
	"github.com/ugorji/go/codec"

	"github.com/weavenet/weaver/src/tx"
)

// Sentinel payloads. A block carrying one of these is a placeholder for
// content a peer could not serve; it is never redistributed.
const (
	SentinelNotFound    = "not_found"
	SentinelUnavailable = "unavailable"
)

// Block is the wire form of a block as the bridge sees it: enough to
// deduplicate and relay, with the body carried opaquely.
type Block struct {
	IndepHash []byte   `json:"indep_hash"`
	PrevBlock []byte   `json:"previous_block"`
	Height    int64    `json:"height"`
	TxIDs     [][]byte `json:"txs"`
	Body      []byte   `json:"body"`

	// Sentinel is empty for real blocks.
	Sentinel string `json:"sentinel,omitempty"`
}

// IsSentinel reports whether the block is a placeholder rather than content.
func (b *Block) IsSentinel() bool {
	return b.Sentinel == SentinelNotFound || b.Sentinel == SentinelUnavailable
}

// Tx is the wire form of a transaction. Amounts travel as decimal strings so
// the canonical encoding can be rebuilt bit-exactly on the other side.
type Tx struct {
	ID        []byte   `json:"id"`
	LastTx    []byte   `json:"last_tx"`
	Owner     []byte   `json:"owner"`
	Tags      []TxTag  `json:"tags"`
	Target    []byte   `json:"target"`
	Quantity  string   `json:"quantity"`
	Data      []byte   `json:"data"`
	Signature []byte   `json:"signature"`
	Reward    string   `json:"reward"`
}

// TxTag is the wire form of a transaction tag.
type TxTag struct {
	Name  []byte `json:"name"`
	Value []byte `json:"value"`
}

// FromTx converts a transaction to its wire form.
func FromTx(t *tx.Transaction) *Tx {
	wire := &Tx{
		ID:        t.ID,
		LastTx:    t.LastTx,
		Owner:     t.Owner,
		Target:    t.Target,
		Quantity:  amountString(t.Quantity),
		Data:      t.Data,
		Signature: t.Signature,
		Reward:    amountString(t.Reward),
	}

	for _, tag := range t.Tags {
		wire.Tags = append(wire.Tags, TxTag{Name: tag.Name, Value: tag.Value})
	}

	return wire
}

// ToTx converts the wire form back to a transaction.
func (w *Tx) ToTx() (*tx.Transaction, error) {
	quantity, err := parseAmount(w.Quantity)
	if err != nil {
		return nil, errors.Wrap(err, "parsing quantity")
	}

	reward, err := parseAmount(w.Reward)
	if err != nil {
		return nil, errors.Wrap(err, "parsing reward")
	}

	t := &tx.Transaction{
		ID:        w.ID,
		LastTx:    w.LastTx,
		Owner:     w.Owner,
		Target:    w.Target,
		Quantity:  quantity,
		Data:      w.Data,
		Signature: w.Signature,
		Reward:    reward,
	}

	for _, tag := range w.Tags {
		t.Tags = append(t.Tags, tx.Tag{Name: tag.Name, Value: tag.Value})
	}

	return t, nil
}

// NewBlockRequest is the body of a block announcement. Port is the sender's
// listening port, used as the return address; Recall is the recall block
// referenced alongside the new one, carried opaquely.
type NewBlockRequest struct {
	Port   uint16 `json:"port"`
	Block  *Block `json:"new_block"`
	Recall *Block `json:"recall_block"`
}

// AddPeerRequest announces the sender's listening port to a remote peer.
type AddPeerRequest struct {
	Port uint16 `json:"port"`
}

func amountString(i *big.Int) string {
	if i == nil {
		return "0"
	}
	return i.String()
}

func parseAmount(s string) (*big.Int, error) {
	if s == "" {
		return new(big.Int), nil
	}
	i, ok := new(big.Int).SetString(s, 10)
	if !ok {
		return nil, errors.Errorf("%q is not a decimal amount", s)
	}
	return i, nil
}

// Marshal encodes a wire value with the canonical JSON handle shared by all
// weaver wire traffic.
func Marshal(v interface{}) ([]byte, error) {
	b := new(bytes.Buffer)
	jh := new(codec.JsonHandle)
	jh.Canonical = true
	enc := codec.NewEncoder(b, jh)

	if err := enc.Encode(v); err != nil {
		return nil, err
	}

	return b.Bytes(), nil
}

// Unmarshal decodes a wire value encoded by Marshal.
func Unmarshal(data []byte, v interface{}) error {
	b := bytes.NewBuffer(data)
	jh := new(codec.JsonHandle)
	jh.Canonical = true
	dec := codec.NewDecoder(b, jh)

	return dec.Decode(v)
}
