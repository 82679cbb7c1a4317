package peers

import (
	"sync"
)

// Peers is an ordered set of peer endpoints. The order is significant: newly
// added peers go to the front, so fan-out reaches the freshest peers first.
type Peers struct {
	sync.RWMutex
	Sorted []*Peer
	byAddr map[string]*Peer
}

/* Constructors */

func NewPeers() *Peers {
	return &Peers{
		byAddr: make(map[string]*Peer),
	}
}

func NewPeersFromSlice(source []*Peer) *Peers {
	peers := NewPeers()

	for _, peer := range source {
		peers.addPeerRaw(peer)
	}

	return peers
}

/* Add Methods */

// addPeerRaw appends a peer without taking the lock. Handle with care.
func (p *Peers) addPeerRaw(peer *Peer) {
	addr := peer.String()

	if _, ok := p.byAddr[addr]; ok {
		return
	}

	p.byAddr[addr] = peer
	p.Sorted = append(p.Sorted, peer)
}

// AddPeerFirst prepends a peer to the set.
func (p *Peers) AddPeerFirst(peer *Peer) {
	p.Lock()
	defer p.Unlock()

	addr := peer.String()

	if _, ok := p.byAddr[addr]; ok {
		return
	}

	p.byAddr[addr] = peer
	p.Sorted = append([]*Peer{peer}, p.Sorted...)
}

/* Remove Methods */

func (p *Peers) RemovePeer(peer *Peer) {
	p.Lock()
	defer p.Unlock()

	addr := peer.String()

	if _, ok := p.byAddr[addr]; !ok {
		return
	}

	delete(p.byAddr, addr)

	for i, other := range p.Sorted {
		if other.String() == addr {
			p.Sorted = append(p.Sorted[:i], p.Sorted[i+1:]...)
			break
		}
	}
}

/* Utilities */

// Replace swaps the whole set for a new ordered list.
func (p *Peers) Replace(source []*Peer) {
	p.Lock()
	defer p.Unlock()

	p.Sorted = nil
	p.byAddr = make(map[string]*Peer)

	for _, peer := range source {
		p.addPeerRaw(peer)
	}
}

func (p *Peers) Contains(peer *Peer) bool {
	p.RLock()
	defer p.RUnlock()

	_, ok := p.byAddr[peer.String()]

	return ok
}

// ToPeerSlice returns a copy of the ordered peer list.
func (p *Peers) ToPeerSlice() []*Peer {
	p.RLock()
	defer p.RUnlock()

	res := make([]*Peer, len(p.Sorted))
	copy(res, p.Sorted)

	return res
}

func (p *Peers) Len() int {
	p.RLock()
	defer p.RUnlock()

	return len(p.byAddr)
}

// ExcludePeer removes peer from a list, returning its former position (-1
// when absent) and the remaining peers. The bridge uses it to avoid echoing
// an item back to the endpoint it came from.
func ExcludePeer(peers []*Peer, peer *Peer) (int, []*Peer) {
	index := -1
	otherPeers := make([]*Peer, 0, len(peers))
	for i, p := range peers {
		if !p.Equals(peer) {
			otherPeers = append(otherPeers, p)
		} else {
			index = i
		}
	}
	return index, otherPeers
}
