package peers

import (
	"bytes"
	"io/ioutil"
	"path/filepath"
	"sync"

	"github.com/ugorji/go/codec"
)

const (
	jsonPeerSetPath = "peers.json"
)

// JSONPeerSet provides peer persistence on disk in the form of a JSON file,
// so a restarted node rejoins through the peers it already knew.
type JSONPeerSet struct {
	l    sync.Mutex
	path string
}

// NewJSONPeerSet creates a new JSONPeerSet with reference to a base directory
// where the JSON file resides.
func NewJSONPeerSet(base string) *JSONPeerSet {
	store := &JSONPeerSet{
		path: filepath.Join(base, jsonPeerSetPath),
	}
	return store
}

// PeerSet parses the underlying JSON file and returns the corresponding
// peers.
func (j *JSONPeerSet) PeerSet() (*Peers, error) {
	j.l.Lock()
	defer j.l.Unlock()

	buf, err := ioutil.ReadFile(j.path)
	if err != nil {
		return nil, err
	}

	// Check for no peers
	if len(buf) == 0 {
		return nil, nil
	}

	var peers []*Peer
	jh := new(codec.JsonHandle)
	jh.Canonical = true
	dec := codec.NewDecoder(bytes.NewReader(buf), jh)
	if err := dec.Decode(&peers); err != nil {
		return nil, err
	}

	return NewPeersFromSlice(peers), nil
}

// Write persists a peer list to the JSON file.
func (j *JSONPeerSet) Write(peers []*Peer) error {
	j.l.Lock()
	defer j.l.Unlock()

	b := new(bytes.Buffer)
	jh := new(codec.JsonHandle)
	jh.Canonical = true
	enc := codec.NewEncoder(b, jh)
	if err := enc.Encode(peers); err != nil {
		return err
	}

	return ioutil.WriteFile(j.path, b.Bytes(), 0644)
}
