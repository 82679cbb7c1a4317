package weaver

import (
	"crypto/rsa"
	"os"
	"time"

	"github.com/weavenet/weaver/src/bridge"
	"github.com/weavenet/weaver/src/config"
	"github.com/weavenet/weaver/src/crypto/keys"
	"github.com/weavenet/weaver/src/firewall"
	"github.com/weavenet/weaver/src/net"
	"github.com/weavenet/weaver/src/peers"
	"github.com/weavenet/weaver/src/service"
	"github.com/weavenet/weaver/src/tx"
	"github.com/weavenet/weaver/src/wallet"
)

// Weaver is the top-level engine assembling the node's actors: the content
// firewall, the gossip bridge, and the local HTTP interface.
type Weaver struct {
	Config   *config.Config
	Key      *rsa.PrivateKey
	Peers    *peers.Peers
	Firewall *firewall.Firewall
	Bridge   *bridge.Bridge
	Service  *service.Service
}

// NewWeaver instantiates an engine; Init wires it up.
func NewWeaver(conf *config.Config) *Weaver {
	return &Weaver{
		Config: conf,
	}
}

// Init initialises all components in dependency order.
func (w *Weaver) Init() error {
	if err := w.initKey(); err != nil {
		return err
	}

	if err := w.initPeers(); err != nil {
		return err
	}

	if err := w.initFirewall(); err != nil {
		return err
	}

	if err := w.initBridge(); err != nil {
		return err
	}

	if !w.Config.NoService {
		w.Service = service.NewService(w.Config.BindAddr(), w.Bridge, w.Config.Logger())
	}

	return nil
}

// initKey loads the wallet key from the datadir, generating one on first
// run.
func (w *Weaver) initKey() error {
	pemKey := keys.NewPemKey(w.Config.DataDir)

	key, err := pemKey.ReadKey()
	if err != nil {
		if !os.IsNotExist(err) {
			return err
		}

		w.Config.Logger().Debug("No wallet key found, generating one")

		key, err = keys.GenerateRSAKey()
		if err != nil {
			return err
		}

		if err := pemKey.WriteKey(key); err != nil {
			return err
		}
	}

	w.Key = key

	return nil
}

// initPeers loads the initial remote peer list: from the config when given,
// otherwise from the peers.json persisted in the datadir. Starting without
// peers is legal; the refresher cannot discover anything until a peer
// announces itself.
func (w *Weaver) initPeers() error {
	if len(w.Config.Peers) > 0 {
		list := []*peers.Peer{}
		for _, s := range w.Config.Peers {
			peer, err := peers.ParsePeer(s, config.DefaultPort)
			if err != nil {
				return err
			}
			list = append(list, peer)
		}
		w.Peers = peers.NewPeersFromSlice(list)
		return nil
	}

	store := peers.NewJSONPeerSet(w.Config.DataDir)

	loaded, err := store.PeerSet()
	if err != nil {
		if !os.IsNotExist(err) {
			return err
		}
		loaded = nil
	}

	if loaded == nil {
		loaded = peers.NewPeers()
	}

	w.Peers = loaded

	return nil
}

// initFirewall loads the signature table; a missing directory yields an
// empty table which accepts everything.
func (w *Weaver) initFirewall() error {
	sigs, err := firewall.LoadSignatures(w.Config.FirewallDir)
	if err != nil {
		return err
	}

	w.Config.Logger().WithField("signatures", len(sigs)).Debug("Firewall signatures loaded")

	w.Firewall = firewall.NewFirewall(sigs, w.Config.Logger())

	return nil
}

func (w *Weaver) initBridge() error {
	client := net.NewClient(w.Config.NetTimeout, w.Config.Logger())

	manager := net.NewHTTPManager(client, w.Config.MaxPeers, w.Config.Logger())

	conf := &bridge.Config{
		Port:             w.Config.Port,
		GetMorePeersTime: w.Config.GetMorePeersTime,
		IgnorePeersTime:  w.Config.IgnorePeersTime,
		CacheSize:        w.Config.CacheSize,
		MailboxSize:      bridge.DefaultMailboxSize,
	}

	w.Bridge = bridge.NewBridge(
		conf,
		w.Firewall,
		client,
		manager,
		w.Peers.ToPeerSlice(),
		w.Config.Logger(),
	)

	return nil
}

// Verify checks a transaction under this node's verification options.
func (w *Weaver) Verify(t *tx.Transaction, diff int64, ledger wallet.Ledger) bool {
	return tx.VerifyWith(t, diff, ledger, w.Config.VerifyOptions())
}

// Run starts the actors and blocks on the HTTP interface. With NoService
// set, it blocks on the bridge loop instead.
func (w *Weaver) Run() {
	go w.Firewall.Run()

	if w.Service != nil {
		go w.Bridge.Run()
		w.Service.Serve()
		return
	}

	w.Bridge.Run()
}

// Shutdown stops the actors and persists the current peer list for the next
// run.
func (w *Weaver) Shutdown() {
	// Snapshot the live peer list before stopping the loop that owns it
	replyCh := make(chan []*peers.Peer, 1)
	w.Bridge.Post(bridge.GetRemotePeers{ReplyCh: replyCh})

	list := w.Peers.ToPeerSlice()
	select {
	case list = <-replyCh:
	case <-time.After(time.Second):
	}

	w.Bridge.Shutdown()
	w.Firewall.Stop()

	store := peers.NewJSONPeerSet(w.Config.DataDir)
	if err := store.Write(list); err != nil {
		w.Config.Logger().WithError(err).Error("Persisting peer list")
	}
}
