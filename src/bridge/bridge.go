package bridge

import (
	"sync"
	"time"

	"github.com/sirupsen/logrus"

	"github.com/weavenet/weaver/src/firewall"
	"github.com/weavenet/weaver/src/gossip"
	"github.com/weavenet/weaver/src/net"
	"github.com/weavenet/weaver/src/peers"
	"github.com/weavenet/weaver/src/tx"
)

// Default timings and sizes. The refresh and ignore windows are
// wire-visible: remote peers rely on an ignored peer coming back.
const (
	DefaultPort             = 1984
	DefaultGetMorePeersTime = 120 * time.Second
	DefaultIgnorePeersTime  = 300 * time.Second
	DefaultCacheSize        = 65536
	DefaultMailboxSize      = 256
	DefaultMaxPeers         = 50
)

// Config groups the bridge's tunables.
type Config struct {
	// Port is the local listening port, conveyed as the return address when
	// forwarding blocks.
	Port uint16

	// GetMorePeersTime is the period of the peer-list refresh.
	GetMorePeersTime time.Duration

	// IgnorePeersTime is how long an ignored peer stays suppressed.
	IgnorePeersTime time.Duration

	// CacheSize bounds the processed-id window.
	CacheSize int

	// MailboxSize is the mailbox buffer; posting to a full mailbox blocks
	// the sender, not the bridge.
	MailboxSize int
}

// DefaultConfig returns the production timings.
func DefaultConfig() *Config {
	return &Config{
		Port:             DefaultPort,
		GetMorePeersTime: DefaultGetMorePeersTime,
		IgnorePeersTime:  DefaultIgnorePeersTime,
		CacheSize:        DefaultCacheSize,
		MailboxSize:      DefaultMailboxSize,
	}
}

// Wire is the set of outbound operations the bridge performs against remote
// peers. net.Client is the production implementation.
type Wire interface {
	SendNewTx(peer *peers.Peer, t *tx.Transaction) error
	SendNewBlock(peer *peers.Peer, port uint16, block, recall *net.Block) error
	AddPeer(peer *peers.Peer, port uint16) error
}

// Bridge is the admission and fan-out actor.
type Bridge struct {
	conf *Config

	mailbox  chan Message
	gossipCh gossip.Member

	mesh          gossip.State
	externalPeers *peers.Peers
	processed     *dedupWindow
	ignored       map[string]struct{}

	firewall *firewall.Firewall
	wire     Wire
	manager  peers.Manager

	shutdownCh   chan struct{}
	shutdownOnce sync.Once
	wg           sync.WaitGroup

	logger *logrus.Entry
}

// NewBridge assembles a bridge over its collaborators. Run must be called
// before posting messages.
func NewBridge(
	conf *Config,
	fw *firewall.Firewall,
	wire Wire,
	manager peers.Manager,
	remotePeers []*peers.Peer,
	logger *logrus.Entry,
) *Bridge {
	return &Bridge{
		conf:          conf,
		mailbox:       make(chan Message, conf.MailboxSize),
		gossipCh:      make(gossip.Member, conf.MailboxSize),
		mesh:          gossip.NewState(),
		externalPeers: peers.NewPeersFromSlice(remotePeers),
		processed:     newDedupWindow(conf.CacheSize),
		ignored:       make(map[string]struct{}),
		firewall:      fw,
		wire:          wire,
		manager:       manager,
		shutdownCh:    make(chan struct{}),
		logger:        logger.WithField("prefix", "bridge"),
	}
}

// GossipMember returns the bridge's own mesh mailbox, for registration with
// other local actors' gossip states.
func (b *Bridge) GossipMember() gossip.Member {
	return b.gossipCh
}

// Post delivers a message to the bridge, fire and forget. Messages posted
// after shutdown are discarded.
func (b *Bridge) Post(msg Message) {
	select {
	case b.mailbox <- msg:
	case <-b.shutdownCh:
	}
}

// Run executes the message loop until Shutdown. It arms the first peer
// refresh itself.
func (b *Bridge) Run() {
	b.logger.WithField("port", b.conf.Port).Debug("Bridge started")

	b.schedule(b.conf.GetMorePeersTime, GetMorePeers{})

	for {
		select {
		case msg := <-b.mailbox:
			b.dispatch(msg)
		case gmsg := <-b.gossipCh:
			b.dispatch(gmsg)
		case <-b.shutdownCh:
			return
		}
	}
}

// Shutdown terminates the loop and waits for spawned tasks to drain.
func (b *Bridge) Shutdown() {
	b.shutdownOnce.Do(func() {
		b.logger.Debug("Bridge shutdown")
		close(b.shutdownCh)
	})

	b.wg.Wait()
}

// dispatch routes one message. A panic in a handler is logged and the loop
// resumes from the last good state.
func (b *Bridge) dispatch(msg Message) {
	defer func() {
		if r := recover(); r != nil {
			b.logger.WithFields(logrus.Fields{
				"panic":   r,
				"message": msg,
			}).Error("Recovered in bridge handler")
		}
	}()

	switch m := msg.(type) {
	case IgnorePeer:
		b.handleIgnorePeer(m.Peer)
	case UnignorePeer:
		delete(b.ignored, m.Peer.String())
	case IgnoreID:
		b.processed.Add(idKey(m.ID))
	case AddTx:
		b.handleAddTx(m.Tx)
	case AddBlock:
		b.handleAddBlock(m)
	case AddRemotePeer:
		b.externalPeers.AddPeerFirst(m.Peer)
	case AddLocalPeer:
		b.mesh = gossip.AddPeer(b.mesh, m.Member)
	case GetRemotePeers:
		m.ReplyCh <- b.externalPeers.ToPeerSlice()
	case UpdateRemotePeers:
		b.externalPeers.Replace(m.Peers)
	case GetMorePeers:
		b.handleGetMorePeers()
	case gossip.Message:
		b.handleGossipIn(m)
	default:
		b.logger.WithField("message", msg).Warn("Unknown bridge message")
	}
}

func (b *Bridge) handleIgnorePeer(peer *peers.Peer) {
	b.ignored[peer.String()] = struct{}{}

	b.logger.WithFields(logrus.Fields{
		"peer": peer.String(),
		"for":  b.conf.IgnorePeersTime,
	}).Debug("Ignoring peer")

	b.schedule(b.conf.IgnorePeersTime, UnignorePeer{Peer: peer})
}

func (b *Bridge) handleAddTx(t *tx.Transaction) {
	if t == nil {
		droppedTotal.WithLabelValues(dropMalformed).Inc()
		return
	}

	key := idKey(t.ID)

	if b.processed.Seen(key) {
		droppedTotal.WithLabelValues(dropDuplicate).Inc()
		return
	}

	if !b.firewall.Scan(firewall.ScanTx, t.Data) {
		droppedTotal.WithLabelValues(dropFirewall).Inc()
		return
	}

	b.gossipOut(gossip.Message{Data: TxAnnouncement{Tx: net.FromTx(t)}})

	b.fanOutTx(t)

	b.processed.Add(key)
	admittedTotal.WithLabelValues("tx").Inc()
}

func (b *Bridge) handleAddBlock(m AddBlock) {
	if m.Block == nil {
		droppedTotal.WithLabelValues(dropMalformed).Inc()
		return
	}

	if m.Origin != nil {
		if _, ok := b.ignored[m.Origin.String()]; ok {
			droppedTotal.WithLabelValues(dropIgnoredPeer).Inc()
			return
		}
	}

	key := idKey(m.Block.IndepHash)

	if b.processed.Seen(key) {
		droppedTotal.WithLabelValues(dropDuplicate).Inc()
		return
	}

	// Placeholder blocks are treated as already processed
	if m.Block.IsSentinel() {
		droppedTotal.WithLabelValues(dropSentinel).Inc()
		return
	}

	if !b.firewall.Scan(firewall.ScanBlock, m.Block.Body) {
		droppedTotal.WithLabelValues(dropFirewall).Inc()
		return
	}

	b.gossipOut(gossip.Message{Data: BlockAnnouncement{Block: m.Block, Recall: m.Recall}})

	b.fanOutBlock(m.Block, m.Recall, m.Origin)

	b.processed.Add(key)
	admittedTotal.WithLabelValues("block").Inc()
}

// handleGossipIn forwards an internal mesh message outward. Messages the
// mesh has already heard are dropped without touching the processed set.
func (b *Bridge) handleGossipIn(msg gossip.Message) {
	var deliveries []gossip.Delivery
	var out *gossip.Message

	b.mesh, deliveries, out = gossip.Recv(b.mesh, msg)

	b.deliver(deliveries)

	if out == nil {
		return
	}

	switch data := out.Data.(type) {
	case TxAnnouncement:
		t, err := data.Tx.ToTx()
		if err != nil {
			b.logger.WithError(err).Warn("Malformed tx announcement on the mesh")
			droppedTotal.WithLabelValues(dropMalformed).Inc()
			return
		}
		b.fanOutTx(t)
		b.processed.Add(idKey(t.ID))
	case BlockAnnouncement:
		if data.Block == nil || data.Block.IsSentinel() {
			droppedTotal.WithLabelValues(dropSentinel).Inc()
			return
		}
		b.fanOutBlock(data.Block, data.Recall, nil)
		b.processed.Add(idKey(data.Block.IndepHash))
	default:
		b.logger.WithField("message", out.Data).Debug("Opaque mesh message not forwarded")
	}
}

// handleGetMorePeers spawns a refresh task and re-arms the timer. The task
// announces the local node to newly discovered peers and posts the
// refreshed list back through the mailbox.
func (b *Bridge) handleGetMorePeers() {
	known := b.externalPeers.ToPeerSlice()

	b.goFunc(func() {
		refreshed := b.manager.Update(known)

		for _, peer := range refreshed {
			if containsPeer(known, peer) {
				continue
			}
			wireSendsTotal.Inc()
			if err := b.wire.AddPeer(peer, b.conf.Port); err != nil {
				b.logger.WithError(err).WithField("peer", peer.String()).Debug("add_peer failed")
			}
		}

		b.Post(UpdateRemotePeers{Peers: refreshed})
	})

	b.schedule(b.conf.GetMorePeersTime, GetMorePeers{})
}

// fanOutTx sends a transaction to every external peer not yet credited with
// it. Credits are recorded before the send is spawned, so a transaction is
// wired to a peer at most once regardless of send outcome.
func (b *Bridge) fanOutTx(t *tx.Transaction) {
	for _, peer := range b.sendTargets(t.ID, nil) {
		peer := peer
		wireSendsTotal.Inc()
		b.goFunc(func() {
			if err := b.wire.SendNewTx(peer, t); err != nil {
				b.logger.WithError(err).WithField("peer", peer.String()).Debug("send_new_tx failed")
			}
		})
	}
}

// fanOutBlock sends a block to every external peer not yet credited with it,
// conveying the local port and the recall block. The origin, when known, is
// left out of the fan-out.
func (b *Bridge) fanOutBlock(block, recall *net.Block, origin *peers.Peer) {
	for _, peer := range b.sendTargets(block.IndepHash, origin) {
		peer := peer
		wireSendsTotal.Inc()
		b.goFunc(func() {
			if err := b.wire.SendNewBlock(peer, b.conf.Port, block, recall); err != nil {
				b.logger.WithError(err).WithField("peer", peer.String()).Debug("send_new_block failed")
			}
		})
	}
}

// sendTargets selects the external peers an id should be wired to, and
// credits them. The exclude endpoint already has the item and is skipped
// without being credited.
func (b *Bridge) sendTargets(id []byte, exclude *peers.Peer) []*peers.Peer {
	targets := []*peers.Peer{}

	candidates := b.externalPeers.ToPeerSlice()
	if exclude != nil {
		_, candidates = peers.ExcludePeer(candidates, exclude)
	}

	for _, peer := range candidates {
		if _, ok := b.ignored[peer.String()]; ok {
			continue
		}

		key := peerKey(id, peer)
		if b.processed.Seen(key) {
			continue
		}
		b.processed.Add(key)

		targets = append(targets, peer)
	}

	return targets
}

// gossipOut sends a message into the mesh and performs the deliveries.
func (b *Bridge) gossipOut(msg gossip.Message) {
	var deliveries []gossip.Delivery

	b.mesh, deliveries = gossip.Send(b.mesh, msg)

	b.deliver(deliveries)
}

// deliver hands mesh messages to their members from a spawned task, so a
// full member mailbox cannot stall admission.
func (b *Bridge) deliver(deliveries []gossip.Delivery) {
	if len(deliveries) == 0 {
		return
	}

	b.goFunc(func() {
		for _, d := range deliveries {
			select {
			case d.To <- d.Msg:
			case <-b.shutdownCh:
				return
			}
		}
	})
}

// schedule posts msg to the mailbox after d, unless the bridge shuts down
// first.
func (b *Bridge) schedule(d time.Duration, msg Message) {
	time.AfterFunc(d, func() {
		b.Post(msg)
	})
}

func (b *Bridge) goFunc(f func()) {
	b.wg.Add(1)
	go func() {
		defer b.wg.Done()
		f()
	}()
}

func containsPeer(list []*peers.Peer, peer *peers.Peer) bool {
	for _, p := range list {
		if p.Equals(peer) {
			return true
		}
	}
	return false
}
