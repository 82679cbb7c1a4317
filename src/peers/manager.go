package peers

import "sync"

// Manager produces a refreshed remote-peer list from the current one. The
// bridge calls Update from a background task on every peer-refresh tick.
type Manager interface {
	Update(existing []*Peer) []*Peer
}

// StaticManager is a Manager that returns a fixed list, or the existing list
// unchanged when no list is set. It performs no discovery.
type StaticManager struct {
	l     sync.Mutex
	peers []*Peer
}

// NewStaticManager builds a StaticManager over a fixed list.
func NewStaticManager(peers []*Peer) *StaticManager {
	return &StaticManager{peers: peers}
}

// Update implements Manager.
func (s *StaticManager) Update(existing []*Peer) []*Peer {
	s.l.Lock()
	defer s.l.Unlock()

	if s.peers == nil {
		return existing
	}

	return s.peers
}

// SetPeers replaces the static list.
func (s *StaticManager) SetPeers(peers []*Peer) {
	s.l.Lock()
	s.peers = peers
	s.l.Unlock()
}
