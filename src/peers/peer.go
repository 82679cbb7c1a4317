package peers

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/pkg/errors"
)

// Peer is the endpoint of a remote node: an IPv4 quad and a port.
type Peer struct {
	A    uint8  `json:"a"`
	B    uint8  `json:"b"`
	C    uint8  `json:"c"`
	D    uint8  `json:"d"`
	Port uint16 `json:"port"`
}

// NewPeer builds a peer endpoint from its parts.
func NewPeer(a, b, c, d uint8, port uint16) *Peer {
	return &Peer{A: a, B: b, C: c, D: d, Port: port}
}

// ParsePeer parses "a.b.c.d:port" into a peer endpoint. The port may be
// omitted, in which case defaultPort is used.
func ParsePeer(s string, defaultPort uint16) (*Peer, error) {
	host := s
	port := defaultPort

	if i := strings.LastIndex(s, ":"); i >= 0 {
		host = s[:i]
		p, err := strconv.ParseUint(s[i+1:], 10, 16)
		if err != nil {
			return nil, errors.Wrapf(err, "parsing port of %q", s)
		}
		port = uint16(p)
	}

	quads := strings.Split(host, ".")
	if len(quads) != 4 {
		return nil, errors.Errorf("%q is not an IPv4 endpoint", s)
	}

	b := [4]uint8{}
	for i, q := range quads {
		v, err := strconv.ParseUint(q, 10, 8)
		if err != nil {
			return nil, errors.Wrapf(err, "parsing octet %d of %q", i, s)
		}
		b[i] = uint8(v)
	}

	return NewPeer(b[0], b[1], b[2], b[3], port), nil
}

// String formats the endpoint as "a.b.c.d:port".
func (p *Peer) String() string {
	return fmt.Sprintf("%d.%d.%d.%d:%d", p.A, p.B, p.C, p.D, p.Port)
}

// URL returns the HTTP base URL of the peer.
func (p *Peer) URL() string {
	return "http://" + p.String()
}

// Equals reports endpoint equality.
func (p *Peer) Equals(o *Peer) bool {
	if p == nil || o == nil {
		return p == o
	}
	return *p == *o
}
