package service

import (
	"encoding/json"
	"io/ioutil"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/sirupsen/logrus"

	"github.com/weavenet/weaver/src/bridge"
	"github.com/weavenet/weaver/src/net"
	"github.com/weavenet/weaver/src/peers"
	"github.com/weavenet/weaver/src/version"
)

// Service is the node's local HTTP interface. Ingress handlers decode wire
// bodies and post them into the bridge mailbox, fire and forget; the egress
// side serves stats, the peer list, and prometheus metrics.
type Service struct {
	bindAddress string
	bridge      *bridge.Bridge
	start       time.Time
	logger      *logrus.Entry
}

// NewService wires a service to a bridge.
func NewService(bindAddress string, b *bridge.Bridge, logger *logrus.Entry) *Service {
	return &Service{
		bindAddress: bindAddress,
		bridge:      b,
		start:       time.Now(),
		logger:      logger.WithField("prefix", "service"),
	}
}

// Handler returns the HTTP handler tree.
func (s *Service) Handler() http.Handler {
	mux := http.NewServeMux()

	mux.HandleFunc("/stats", s.GetStats)
	mux.HandleFunc("/peers", s.Peers)
	mux.HandleFunc("/tx", s.PostTx)
	mux.HandleFunc("/block", s.PostBlock)
	mux.Handle("/metrics", promhttp.Handler())

	return mux
}

// Serve calls ListenAndServe. This is a blocking call.
func (s *Service) Serve() {
	s.logger.WithField("bind_address", s.bindAddress).Debug("Serving weaver API")

	err := http.ListenAndServe(s.bindAddress, s.Handler())
	if err != nil {
		s.logger.Error(err)
	}
}

// GetStats returns uptime and peer statistics.
func (s *Service) GetStats(w http.ResponseWriter, r *http.Request) {
	replyCh := make(chan []*peers.Peer, 1)
	s.bridge.Post(bridge.GetRemotePeers{ReplyCh: replyCh})
	remotePeers := <-replyCh

	stats := map[string]string{
		"version":      version.Version,
		"uptime":       time.Since(s.start).String(),
		"remote_peers": strconv.Itoa(len(remotePeers)),
	}

	w.Header().Set("Content-Type", "application/json")

	json.NewEncoder(w).Encode(stats)
}

// Peers serves the remote peer list on GET, and registers the caller as a
// remote peer on POST.
func (s *Service) Peers(w http.ResponseWriter, r *http.Request) {
	switch r.Method {
	case http.MethodPost:
		s.addPeer(w, r)
	default:
		replyCh := make(chan []*peers.Peer, 1)
		s.bridge.Post(bridge.GetRemotePeers{ReplyCh: replyCh})

		body, err := net.Marshal(<-replyCh)
		if err != nil {
			http.Error(w, err.Error(), http.StatusInternalServerError)
			return
		}

		w.Header().Set("Content-Type", "application/json")
		w.Write(body)
	}
}

func (s *Service) addPeer(w http.ResponseWriter, r *http.Request) {
	buf, err := ioutil.ReadAll(r.Body)
	if err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}

	var req net.AddPeerRequest
	if err := net.Unmarshal(buf, &req); err != nil {
		s.logger.WithError(err).Debug("Malformed add-peer body")
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}

	origin, err := originPeer(r, req.Port)
	if err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}

	s.bridge.Post(bridge.AddRemotePeer{Peer: origin})

	w.WriteHeader(http.StatusOK)
}

// PostTx accepts a wire transaction and submits it for admission. The reply
// says nothing about the admission verdict; the bridge is fire-and-forget.
func (s *Service) PostTx(w http.ResponseWriter, r *http.Request) {
	buf, err := ioutil.ReadAll(r.Body)
	if err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}

	var wire net.Tx
	if err := net.Unmarshal(buf, &wire); err != nil {
		s.logger.WithError(err).Debug("Malformed tx body")
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}

	newTx, err := wire.ToTx()
	if err != nil {
		s.logger.WithError(err).Debug("Malformed tx amounts")
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}

	s.bridge.Post(bridge.AddTx{Tx: newTx})

	w.WriteHeader(http.StatusOK)
}

// PostBlock accepts a block announcement and submits it for admission. The
// origin endpoint is rebuilt from the caller's address and the announced
// return port.
func (s *Service) PostBlock(w http.ResponseWriter, r *http.Request) {
	buf, err := ioutil.ReadAll(r.Body)
	if err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}

	var req net.NewBlockRequest
	if err := net.Unmarshal(buf, &req); err != nil {
		s.logger.WithError(err).Debug("Malformed block body")
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}

	origin, err := originPeer(r, req.Port)
	if err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}

	s.bridge.Post(bridge.AddBlock{
		Origin: origin,
		Block:  req.Block,
		Recall: req.Recall,
	})

	w.WriteHeader(http.StatusOK)
}

// originPeer derives the caller's peer endpoint from its remote address and
// its announced listening port.
func originPeer(r *http.Request, port uint16) (*peers.Peer, error) {
	host := r.RemoteAddr
	if i := strings.LastIndex(host, ":"); i >= 0 {
		host = host[:i]
	}

	return peers.ParsePeer(host, port)
}
