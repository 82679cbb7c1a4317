package net

import (
	"time"

	"github.com/go-resty/resty/v2"
	"github.com/pkg/errors"
	"github.com/sirupsen/logrus"

	"github.com/weavenet/weaver/src/peers"
	"github.com/weavenet/weaver/src/tx"
)

// Client performs the outbound wire operations against remote peers' HTTP
// interfaces. All calls share a single network timeout; callers run them
// from short-lived tasks and swallow failures.
type Client struct {
	http   *resty.Client
	logger *logrus.Entry
}

// NewClient returns a wire client with the given network timeout.
func NewClient(timeout time.Duration, logger *logrus.Entry) *Client {
	http := resty.New().
		SetTimeout(timeout).
		SetHeader("Content-Type", "application/json")

	return &Client{
		http:   http,
		logger: logger.WithField("prefix", "wire"),
	}
}

// SendNewTx posts a transaction to a remote peer.
func (c *Client) SendNewTx(peer *peers.Peer, t *tx.Transaction) error {
	body, err := Marshal(FromTx(t))
	if err != nil {
		return errors.Wrap(err, "encoding tx")
	}

	return c.post(peer, "/tx", body)
}

// SendNewBlock posts a block to a remote peer, conveying the local listening
// port as the return address and the recall block alongside.
func (c *Client) SendNewBlock(peer *peers.Peer, port uint16, block, recall *Block) error {
	body, err := Marshal(&NewBlockRequest{
		Port:   port,
		Block:  block,
		Recall: recall,
	})
	if err != nil {
		return errors.Wrap(err, "encoding block")
	}

	return c.post(peer, "/block", body)
}

// AddPeer announces the local listening port to a remote peer, asking to be
// added to its peer list.
func (c *Client) AddPeer(peer *peers.Peer, port uint16) error {
	body, err := Marshal(&AddPeerRequest{Port: port})
	if err != nil {
		return errors.Wrap(err, "encoding add-peer")
	}

	return c.post(peer, "/peers", body)
}

// GetPeers fetches a remote peer's peer list.
func (c *Client) GetPeers(peer *peers.Peer) ([]*peers.Peer, error) {
	resp, err := c.http.R().Get(peer.URL() + "/peers")
	if err != nil {
		return nil, errors.Wrapf(err, "GET %s/peers", peer)
	}

	if resp.IsError() {
		return nil, errors.Errorf("GET %s/peers: status %d", peer, resp.StatusCode())
	}

	var list []*peers.Peer
	if err := Unmarshal(resp.Body(), &list); err != nil {
		return nil, errors.Wrapf(err, "decoding peer list from %s", peer)
	}

	return list, nil
}

func (c *Client) post(peer *peers.Peer, path string, body []byte) error {
	resp, err := c.http.R().SetBody(body).Post(peer.URL() + path)
	if err != nil {
		return errors.Wrapf(err, "POST %s%s", peer, path)
	}

	if resp.IsError() {
		return errors.Errorf("POST %s%s: status %d", peer, path, resp.StatusCode())
	}

	c.logger.WithFields(logrus.Fields{
		"peer": peer.String(),
		"path": path,
	}).Debug("Wire send")

	return nil
}
