// Package protocol implements the per-connection signaling state machine:
// parsing and validating join/set_offer/set_answer/get_state client
// messages, rate limiting, and dispatching replies/broadcasts through the
// session store.
package protocol

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/isnad-dev/isnad/internal/signaling/store"
	"github.com/isnad-dev/isnad/internal/telemetry"
)

// Wire limits from spec §4.6.
const (
	MaxTextBytes  = 65_536
	MaxSidLen     = 128
	MaxBlobLen    = 131_072
	RateBudget    = 40
	RateRefillDur = time.Second
)

// ClientMessage is the union of all client-to-relay messages. The "t" field
// is the type discriminator.
type ClientMessage struct {
	T      string `json:"t"`
	V      int    `json:"v"`
	Sid    string `json:"sid,omitempty"`
	Offer  string `json:"offer,omitempty"`
	Answer string `json:"answer,omitempty"`
}

// ServerMessage is the union of all relay-to-client messages.
type ServerMessage struct {
	T         string `json:"t"`
	V         int    `json:"v"`
	Sid       string `json:"sid,omitempty"`
	HasOffer  bool   `json:"has_offer,omitempty"`
	HasAnswer bool   `json:"has_answer,omitempty"`
	Offer     string `json:"offer,omitempty"`
	Answer    string `json:"answer,omitempty"`
	Error     string `json:"error,omitempty"`
}

func hello() ServerMessage          { return ServerMessage{T: "hello", V: 1} }
func errMsg(tag string) ServerMessage { return ServerMessage{T: "error", V: 1, Error: tag} }

func stateMsg(sid string, snap store.Snapshot) ServerMessage {
	return ServerMessage{
		T: "state", V: 1, Sid: sid,
		HasOffer: snap.HasOffer, HasAnswer: snap.HasAnswer,
		Offer: snap.Offer, Answer: snap.Answer,
	}
}

func isHexDigits(s string) bool {
	for _, r := range s {
		if !((r >= '0' && r <= '9') || (r >= 'a' && r <= 'f') || (r >= 'A' && r <= 'F')) {
			return false
		}
	}
	return true
}

func validSid(sid string) bool {
	return sid != "" && len(sid) <= MaxSidLen && isHexDigits(sid)
}

func validBlob(s string) bool {
	return s != "" && len(s) <= MaxBlobLen
}

// Sender is the outbound half of a connection, matching store.Sender so
// protocol replies and store broadcasts use the same transport abstraction.
type Sender = store.Sender

// Conn tracks one WebSocket connection's state machine: its joined session
// (if any), rate-limit bucket, and send handle.
type Conn struct {
	store      *store.Store
	send       Sender
	tracer     *telemetry.Tracer
	joinedSid  string
	budget     int
	lastRefill time.Time
	now        func() time.Time
}

// NewConn wires a connection's state machine to the shared store and its
// outbound send handle. A nil tracer runs with Noop() spans.
func NewConn(s *store.Store, send Sender, tracer *telemetry.Tracer) *Conn {
	if tracer == nil {
		tracer = telemetry.Noop()
	}
	c := &Conn{
		store:  s,
		send:   send,
		tracer: tracer,
		budget: RateBudget,
		now:    time.Now,
	}
	c.lastRefill = c.now()
	return c
}

// Hello returns the greeting sent immediately on connect, before any client
// frame is read.
func (c *Conn) Hello() []byte {
	return encode(hello())
}

func encode(msg ServerMessage) []byte {
	data, err := json.Marshal(msg)
	if err != nil {
		// Encoding a fixed, small struct cannot realistically fail; fall
		// back to a static error frame rather than panicking a connection.
		return []byte(`{"t":"error","v":1,"error":"encode"}`)
	}
	return data
}

// ErrFrameTooLarge is returned by HandleText when the caller should close
// the connection after sending the error reply.
type ErrFrameTooLarge struct{ Size int }

func (e *ErrFrameTooLarge) Error() string {
	return fmt.Sprintf("text frame of %d bytes exceeds %d byte limit", e.Size, MaxTextBytes)
}

// HandleText processes one inbound text frame. It replies (via c.send)
// directly for single-recipient responses and broadcasts via the store for
// set_offer/set_answer. If the frame exceeds MaxTextBytes it sends one
// error reply and returns *ErrFrameTooLarge so the caller closes the
// connection; all other error conditions reply and keep the connection
// open.
func (c *Conn) HandleText(raw []byte) error {
	if len(raw) > MaxTextBytes {
		c.send.Send(encode(errMsg("frame too large")))
		return &ErrFrameTooLarge{Size: len(raw)}
	}

	c.takeBudget()
	if c.budget < 0 {
		c.send.Send(encode(errMsg("rate limited")))
		return nil
	}

	var msg ClientMessage
	if err := json.Unmarshal(raw, &msg); err != nil {
		c.send.Send(encode(errMsg("invalid json")))
		return nil
	}

	_, span := c.tracer.StartMessage(context.Background(), messageLabel(msg.T))
	defer c.tracer.EndMessage(span, nil)

	if msg.V != 1 {
		c.send.Send(encode(errMsg("unsupported version")))
		return nil
	}

	switch msg.T {
	case "join":
		c.handleJoin(msg)
	case "set_offer":
		c.handleSetOffer(msg)
	case "set_answer":
		c.handleSetAnswer(msg)
	case "get_state":
		c.handleGetState(msg)
	default:
		c.send.Send(encode(errMsg("unknown command")))
	}
	return nil
}

// messageLabel names the span for a client frame whose "t" tag is absent
// or unrecognized, so StartMessage never receives an empty string.
func messageLabel(t string) string {
	if t == "" {
		return "unknown"
	}
	return t
}

func (c *Conn) takeBudget() {
	now := c.now()
	if now.Sub(c.lastRefill) >= RateRefillDur {
		c.budget = RateBudget
		c.lastRefill = now
	}
	c.budget--
}

func (c *Conn) handleJoin(msg ClientMessage) {
	if !validSid(msg.Sid) {
		c.send.Send(encode(errMsg("invalid sid")))
		return
	}
	snap, err := c.store.Attach(msg.Sid, c.send)
	if err != nil {
		c.send.Send(encode(errMsg(errTag(err))))
		return
	}
	c.joinedSid = msg.Sid
	c.send.Send(encode(stateMsg(msg.Sid, snap)))
}

func (c *Conn) handleSetOffer(msg ClientMessage) {
	if c.joinedSid != msg.Sid || !validSid(msg.Sid) {
		c.send.Send(encode(errMsg("not joined")))
		return
	}
	if !validBlob(msg.Offer) {
		c.send.Send(encode(errMsg("invalid offer")))
		return
	}
	snap, subs, err := c.store.SetOffer(msg.Sid, msg.Offer)
	if err != nil {
		c.send.Send(encode(errMsg(errTag(err))))
		return
	}
	broadcast(c.store, msg.Sid, subs, stateMsg(msg.Sid, snap))
}

func (c *Conn) handleSetAnswer(msg ClientMessage) {
	if c.joinedSid != msg.Sid || !validSid(msg.Sid) {
		c.send.Send(encode(errMsg("not joined")))
		return
	}
	if !validBlob(msg.Answer) {
		c.send.Send(encode(errMsg("invalid answer")))
		return
	}
	snap, subs, err := c.store.SetAnswer(msg.Sid, msg.Answer)
	if err != nil {
		c.send.Send(encode(errMsg(errTag(err))))
		return
	}
	broadcast(c.store, msg.Sid, subs, stateMsg(msg.Sid, snap))
}

func (c *Conn) handleGetState(msg ClientMessage) {
	if c.joinedSid != msg.Sid || !validSid(msg.Sid) {
		c.send.Send(encode(errMsg("not joined")))
		return
	}
	snap, err := c.store.Snapshot(msg.Sid)
	if err != nil {
		c.send.Send(encode(errMsg(errTag(err))))
		return
	}
	c.send.Send(encode(stateMsg(msg.Sid, snap)))
}

// broadcast enqueues msg on every subscriber; any enqueue failure marks
// that subscriber for removal, matching spec §4.6's broadcast contract.
func broadcast(s *store.Store, sid string, subs []Sender, msg ServerMessage) {
	data := encode(msg)
	for _, sub := range subs {
		if !sub.Send(data) {
			s.Detach(sid, sub)
		}
	}
}

// Close detaches this connection's send handle from its joined session, if
// any. The store prunes the stale entry on its next broadcast or sweep
// regardless, but detaching eagerly keeps subscriber counts accurate.
func (c *Conn) Close() {
	if c.joinedSid != "" {
		c.store.Detach(c.joinedSid, c.send)
	}
}

func errTag(err error) string {
	return err.Error()
}
