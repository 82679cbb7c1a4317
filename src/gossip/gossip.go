package gossip

import (
	"bytes"
	"fmt"

	"github.com/ugorji/go/codec"

	"github.com/weavenet/weaver/src/crypto"
)

// seenLimit bounds the per-state set of heard message digests.
const seenLimit = 65536

// Message is a unit of internal gossip. The payload is digested in canonical
// form to decide whether a message has been heard before.
type Message struct {
	Data interface{}
}

// Member is the mailbox of a local actor participating in the mesh.
type Member chan Message

// Delivery pairs a message with the member it should be handed to. The owner
// of the state performs deliveries itself, so mesh bookkeeping never blocks
// on a slow member.
type Delivery struct {
	To  Member
	Msg Message
}

// State is the gossip-mesh bookkeeping owned by a single actor: the mesh
// members it talks to and the digests of messages already heard. All
// functions take a State and return an updated one; the state is never
// shared between actors.
type State struct {
	members []Member
	seen    map[string]struct{}
	order   []string
}

// NewState returns a mesh state with the given initial members.
func NewState(members ...Member) State {
	s := State{
		seen: make(map[string]struct{}),
	}
	s.members = append(s.members, members...)
	return s
}

// AddPeer adds a member to the mesh.
func AddPeer(s State, m Member) State {
	s.members = append(s.members, m)
	return s
}

// Members returns the current member count.
func (s State) Members() int {
	return len(s.members)
}

// Send records the message as heard and returns one delivery per member.
func Send(s State, msg Message) (State, []Delivery) {
	s = remember(s, digest(msg))

	deliveries := make([]Delivery, 0, len(s.members))
	for _, m := range s.members {
		deliveries = append(deliveries, Delivery{To: m, Msg: msg})
	}

	return s, deliveries
}

// Recv processes an inbound message. A message heard before is ignored: the
// returned message is nil and there are no deliveries. A fresh message is
// recorded, relayed to every member, and returned for local processing.
func Recv(s State, msg Message) (State, []Delivery, *Message) {
	d := digest(msg)

	if _, ok := s.seen[d]; ok {
		return s, nil, nil
	}

	var deliveries []Delivery
	s, deliveries = Send(s, msg)

	return s, deliveries, &msg
}

// remember adds a digest to the heard set, evicting the oldest entries past
// seenLimit.
func remember(s State, d string) State {
	if _, ok := s.seen[d]; ok {
		return s
	}

	s.seen[d] = struct{}{}
	s.order = append(s.order, d)

	if len(s.order) > seenLimit {
		delete(s.seen, s.order[0])
		s.order = s.order[1:]
	}

	return s
}

// digest computes the canonical digest of a message payload.
func digest(msg Message) string {
	b := new(bytes.Buffer)
	jh := new(codec.JsonHandle)
	jh.Canonical = true
	enc := codec.NewEncoder(b, jh)

	if err := enc.Encode(msg.Data); err != nil {
		// Unencodable payloads hash to their Go string form; they can only
		// originate locally.
		return "!" + string(crypto.SHA256([]byte(fmt.Sprintf("%#v", msg.Data))))
	}

	return string(crypto.SHA256(b.Bytes()))
}
