package protocol

import (
	"encoding/json"
	"testing"
	"time"

	"github.com/isnad-dev/isnad/internal/signaling/store"
)

type recordingSender struct {
	closed bool
	msgs   []ServerMessage
}

func (r *recordingSender) Send(data []byte) bool {
	if r.closed {
		return false
	}
	var msg ServerMessage
	if err := json.Unmarshal(data, &msg); err != nil {
		panic(err)
	}
	r.msgs = append(r.msgs, msg)
	return true
}

func (r *recordingSender) Closed() bool { return r.closed }

func (r *recordingSender) last() ServerMessage {
	if len(r.msgs) == 0 {
		return ServerMessage{}
	}
	return r.msgs[len(r.msgs)-1]
}

func newTestConn() (*store.Store, *recordingSender, *Conn) {
	s := store.New(time.Hour)
	sender := &recordingSender{}
	return s, sender, NewConn(s, sender, nil)
}

func send(t *testing.T, c *Conn, msg ClientMessage) {
	t.Helper()
	data, err := json.Marshal(msg)
	if err != nil {
		t.Fatalf("marshal error: %v", err)
	}
	if err := c.HandleText(data); err != nil {
		t.Fatalf("HandleText error: %v", err)
	}
}

func TestHello_SentOnConnect(t *testing.T) {
	_, _, c := newTestConn()
	var hello ServerMessage
	if err := json.Unmarshal(c.Hello(), &hello); err != nil {
		t.Fatalf("unmarshal error: %v", err)
	}
	if hello.T != "hello" || hello.V != 1 {
		t.Errorf("unexpected hello: %+v", hello)
	}
}

func TestJoin_ReturnsEmptySnapshotForNewSession(t *testing.T) {
	_, sender, c := newTestConn()
	send(t, c, ClientMessage{T: "join", V: 1, Sid: "ab12"})
	got := sender.last()
	if got.T != "state" || got.HasOffer || got.HasAnswer {
		t.Errorf("unexpected reply: %+v", got)
	}
}

func TestScenario6_OfferThenAnswerBroadcast(t *testing.T) {
	s := store.New(time.Hour)
	senderA := &recordingSender{}
	senderB := &recordingSender{}
	connA := NewConn(s, senderA, nil)
	connB := NewConn(s, senderB, nil)

	send(t, connA, ClientMessage{T: "join", V: 1, Sid: "ab12"})
	send(t, connA, ClientMessage{T: "set_offer", V: 1, Sid: "ab12", Offer: "OFF"})

	send(t, connB, ClientMessage{T: "join", V: 1, Sid: "ab12"})
	joinReply := senderB.last()
	if joinReply.Offer != "OFF" || joinReply.HasAnswer {
		t.Fatalf("expected B to see offer without answer, got %+v", joinReply)
	}

	send(t, connB, ClientMessage{T: "set_answer", V: 1, Sid: "ab12", Answer: "ANS"})

	gotA := senderA.last()
	if !gotA.HasOffer || !gotA.HasAnswer || gotA.Answer != "ANS" {
		t.Errorf("expected A to receive broadcast with both populated, got %+v", gotA)
	}
}

func TestSetOffer_WithoutJoinIsRejected(t *testing.T) {
	_, sender, c := newTestConn()
	send(t, c, ClientMessage{T: "set_offer", V: 1, Sid: "ab12", Offer: "OFF"})
	got := sender.last()
	if got.T != "error" {
		t.Errorf("expected error reply, got %+v", got)
	}
}

func TestGetState_UnknownSidErrors(t *testing.T) {
	_, sender, c := newTestConn()
	send(t, c, ClientMessage{T: "join", V: 1, Sid: "ab12"})
	send(t, c, ClientMessage{T: "get_state", V: 1, Sid: "deadbeef"})
	got := sender.last()
	if got.T != "error" {
		t.Errorf("expected error for mismatched sid, got %+v", got)
	}
}

func TestUnsupportedVersion_Errors(t *testing.T) {
	_, sender, c := newTestConn()
	send(t, c, ClientMessage{T: "join", V: 2, Sid: "ab12"})
	got := sender.last()
	if got.T != "error" || got.Error != "unsupported version" {
		t.Errorf("expected unsupported version error, got %+v", got)
	}
}

func TestInvalidSid_Rejected(t *testing.T) {
	_, sender, c := newTestConn()
	send(t, c, ClientMessage{T: "join", V: 1, Sid: "not-hex!"})
	got := sender.last()
	if got.T != "error" {
		t.Errorf("expected error for non-hex sid, got %+v", got)
	}
}

func TestOversizedFrame_ReturnsErrorAndSignalsClose(t *testing.T) {
	_, sender, c := newTestConn()
	big := make([]byte, MaxTextBytes+1)
	for i := range big {
		big[i] = 'a'
	}
	err := c.HandleText(big)
	if err == nil {
		t.Fatalf("expected ErrFrameTooLarge")
	}
	if _, ok := err.(*ErrFrameTooLarge); !ok {
		t.Errorf("expected *ErrFrameTooLarge, got %T", err)
	}
	if sender.last().T != "error" {
		t.Errorf("expected one error reply before close")
	}
}

func TestRateLimit_BlocksAfterBudgetExhausted(t *testing.T) {
	s := store.New(time.Hour)
	sender := &recordingSender{}
	c := NewConn(s, sender, nil)
	fixedNow := time.Now()
	c.now = func() time.Time { return fixedNow }
	c.lastRefill = fixedNow

	for i := 0; i < RateBudget; i++ {
		send(t, c, ClientMessage{T: "join", V: 1, Sid: "ab12"})
	}
	// Budget should be exhausted now; the next message is rate limited.
	send(t, c, ClientMessage{T: "join", V: 1, Sid: "ab12"})
	got := sender.last()
	if got.T != "error" || got.Error != "rate limited" {
		t.Errorf("expected rate limited error, got %+v", got)
	}
}

func TestClose_DetachesFromStore(t *testing.T) {
	s := store.New(time.Hour)
	sender := &recordingSender{}
	c := NewConn(s, sender, nil)
	send(t, c, ClientMessage{T: "join", V: 1, Sid: "ab12"})
	if s.SubscriberCount("ab12") != 1 {
		t.Fatalf("expected 1 subscriber after join")
	}
	c.Close()
	if s.SubscriberCount("ab12") != 0 {
		t.Errorf("expected 0 subscribers after close, got %d", s.SubscriberCount("ab12"))
	}
}
