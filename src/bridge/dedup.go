package bridge

import (
	"github.com/weavenet/weaver/src/peers"
)

// dedupWindow is a bounded set of processed keys with insertion-order
// eviction. It holds at most 2*size entries; when full, the oldest size
// entries are rolled off at once. As long as fewer than size distinct items
// flow through between an item's admission and its last duplicate, the
// at-most-once property holds.
type dedupWindow struct {
	size  int
	keys  map[string]struct{}
	order []string
}

func newDedupWindow(size int) *dedupWindow {
	return &dedupWindow{
		size: size,
		keys: make(map[string]struct{}),
	}
}

// Seen reports whether key is in the window.
func (w *dedupWindow) Seen(key string) bool {
	_, ok := w.keys[key]
	return ok
}

// Add inserts key, rolling the window if it is full.
func (w *dedupWindow) Add(key string) {
	if w.Seen(key) {
		return
	}

	if len(w.order) >= 2*w.size {
		w.roll()
	}

	w.keys[key] = struct{}{}
	w.order = append(w.order, key)
}

// roll drops the oldest size entries.
func (w *dedupWindow) roll() {
	for _, key := range w.order[:w.size] {
		delete(w.keys, key)
	}

	rest := make([]string, len(w.order)-w.size, 2*w.size)
	copy(rest, w.order[w.size:])
	w.order = rest
}

// Len returns the number of live entries.
func (w *dedupWindow) Len() int {
	return len(w.keys)
}

// idKey is the processed-set key of a bare item id.
func idKey(id []byte) string {
	return string(id)
}

// peerKey is the processed-set key crediting a peer with an id. It only
// suppresses outbound sends, never inbound acceptance.
func peerKey(id []byte, peer *peers.Peer) string {
	return string(id) + "|" + peer.String()
}
