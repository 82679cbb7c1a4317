package gossip

import (
	"testing"
)

func TestSendReachesAllMembers(t *testing.T) {
	m1 := make(Member, 1)
	m2 := make(Member, 1)

	s := NewState(m1, m2)

	s, deliveries := Send(s, Message{Data: []byte("hello")})

	if len(deliveries) != 2 {
		t.Fatalf("expected 2 deliveries, got %d", len(deliveries))
	}

	for _, d := range deliveries {
		d.To <- d.Msg
	}

	for i, m := range []Member{m1, m2} {
		msg := <-m
		if string(msg.Data.([]byte)) != "hello" {
			t.Fatalf("member %d received wrong payload", i)
		}
	}
}

func TestRecvIgnoresHeardMessages(t *testing.T) {
	m1 := make(Member, 1)

	s := NewState(m1)

	msg := Message{Data: []byte("once")}

	s, deliveries, out := Recv(s, msg)
	if out == nil {
		t.Fatalf("fresh message should be returned for processing")
	}
	if len(deliveries) != 1 {
		t.Fatalf("fresh message should be relayed")
	}

	// Second delivery of the same payload is ignored
	s, deliveries, out = Recv(s, Message{Data: []byte("once")})
	if out != nil {
		t.Fatalf("heard message should be ignored")
	}
	if len(deliveries) != 0 {
		t.Fatalf("heard message should not be relayed")
	}

	// A message we sent ourselves is also ignored on echo
	s, _ = Send(s, Message{Data: []byte("mine")})
	_, _, out = Recv(s, Message{Data: []byte("mine")})
	if out != nil {
		t.Fatalf("echo of own message should be ignored")
	}
}

func TestAddPeer(t *testing.T) {
	s := NewState()

	if s.Members() != 0 {
		t.Fatalf("new state should have no members")
	}

	s = AddPeer(s, make(Member, 1))
	s = AddPeer(s, make(Member, 1))

	if s.Members() != 2 {
		t.Fatalf("expected 2 members, got %d", s.Members())
	}

	_, deliveries := Send(s, Message{Data: "payload"})
	if len(deliveries) != 2 {
		t.Fatalf("expected 2 deliveries, got %d", len(deliveries))
	}
}
