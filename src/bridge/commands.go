package bridge

import (
	"github.com/weavenet/weaver/src/gossip"
	"github.com/weavenet/weaver/src/net"
	"github.com/weavenet/weaver/src/peers"
	"github.com/weavenet/weaver/src/tx"
)

// Message is a unit of the bridge mailbox protocol. Every mutation of bridge
// state travels through one of these.
type Message interface{}

// IgnorePeer suppresses a peer. The bridge schedules the matching
// UnignorePeer after the configured ignore window.
type IgnorePeer struct {
	Peer *peers.Peer
}

// UnignorePeer reinstates a suppressed peer.
type UnignorePeer struct {
	Peer *peers.Peer
}

// IgnoreID marks an id as processed without admitting anything. It has no
// internal sender; it is an operator kill switch for a specific id.
type IgnoreID struct {
	ID []byte
}

// AddTx submits a transaction for admission.
type AddTx struct {
	Tx *tx.Transaction
}

// AddBlock submits a block for admission. Origin is the peer the block came
// from, or nil for locally produced blocks; Recall is carried opaquely.
type AddBlock struct {
	Origin *peers.Peer
	Block  *net.Block
	Recall *net.Block
}

// AddRemotePeer prepends a peer to the external peer list.
type AddRemotePeer struct {
	Peer *peers.Peer
}

// AddLocalPeer registers a local actor's mailbox with the gossip mesh.
type AddLocalPeer struct {
	Member gossip.Member
}

// GetRemotePeers requests the current external peer list on ReplyCh.
type GetRemotePeers struct {
	ReplyCh chan<- []*peers.Peer
}

// UpdateRemotePeers replaces the external peer list.
type UpdateRemotePeers struct {
	Peers []*peers.Peer
}

// GetMorePeers triggers a background peer-list refresh. The handler re-arms
// the refresh timer, so one initial message keeps the maintainer running.
type GetMorePeers struct{}

// TxAnnouncement is the mesh payload of an admitted transaction.
type TxAnnouncement struct {
	Tx *net.Tx
}

// BlockAnnouncement is the mesh payload of an admitted block.
type BlockAnnouncement struct {
	Block  *net.Block
	Recall *net.Block
}
