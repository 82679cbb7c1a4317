package net

import (
	"sync"

	"github.com/sirupsen/logrus"
	"golang.org/x/sync/errgroup"

	"github.com/weavenet/weaver/src/peers"
)

const (
	// scanConcurrency bounds the number of peers queried in parallel during
	// a refresh.
	scanConcurrency = 8
)

// HTTPManager refreshes the remote peer list by asking the peers we already
// know for their own peer lists and merging the results. Known peers keep
// their relative order; each new discovery is added to the front of the
// list, until it holds maxPeers entries.
type HTTPManager struct {
	client   *Client
	maxPeers int
	logger   *logrus.Entry
}

// NewHTTPManager builds a Manager scanning over the given wire client.
func NewHTTPManager(client *Client, maxPeers int, logger *logrus.Entry) *HTTPManager {
	return &HTTPManager{
		client:   client,
		maxPeers: maxPeers,
		logger:   logger.WithField("prefix", "peer_manager"),
	}
}

// Update implements peers.Manager. Unreachable peers contribute nothing; the
// refresh never fails as a whole.
func (m *HTTPManager) Update(existing []*peers.Peer) []*peers.Peer {
	var l sync.Mutex
	discovered := []*peers.Peer{}

	g := new(errgroup.Group)
	g.SetLimit(scanConcurrency)

	for _, peer := range existing {
		peer := peer
		g.Go(func() error {
			list, err := m.client.GetPeers(peer)
			if err != nil {
				m.logger.WithError(err).WithField("peer", peer.String()).Debug("Peer scan failed")
				return nil
			}

			l.Lock()
			discovered = append(discovered, list...)
			l.Unlock()

			return nil
		})
	}

	g.Wait()

	merged := peers.NewPeersFromSlice(existing)
	for _, peer := range discovered {
		if merged.Len() >= m.maxPeers {
			break
		}
		if !merged.Contains(peer) {
			merged.AddPeerFirst(peer)
		}
	}

	refreshed := merged.ToPeerSlice()
	if len(refreshed) > m.maxPeers {
		refreshed = refreshed[:m.maxPeers]
	}

	m.logger.WithFields(logrus.Fields{
		"known":      len(existing),
		"discovered": len(discovered),
		"refreshed":  len(refreshed),
	}).Debug("Peer list refreshed")

	return refreshed
}
