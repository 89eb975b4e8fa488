// Package store implements the signaling relay's in-memory session table:
// a single mutex-guarded map from session id to at-most-one-offer/answer
// plus its subscriber list, with TTL expiry and capacity caps.
package store

import (
	"sync"
	"time"

	"github.com/isnad-dev/isnad/internal/isnaderr"
)

// Caps from spec §4.5.
const (
	MaxSessions          = 10_000
	MaxClientsPerSession = 16
)

// Sender is the send half of a connection's outbound queue. It matches the
// shape of an unbounded channel write: it must never block or do I/O.
type Sender interface {
	// Send enqueues msg for delivery. It returns false if the handle is
	// closed/dead, at which point the caller prunes it.
	Send(msg []byte) bool
	// Closed reports whether the handle is known dead without attempting a send.
	Closed() bool
}

// Snapshot is the read-only view of a session's offer/answer state.
type Snapshot struct {
	HasOffer  bool
	HasAnswer bool
	Offer     string
	Answer    string
}

type session struct {
	createdAt   time.Time
	offer       *string
	answer      *string
	subscribers []Sender
}

func (s *session) snapshot() Snapshot {
	snap := Snapshot{HasOffer: s.offer != nil, HasAnswer: s.answer != nil}
	if s.offer != nil {
		snap.Offer = *s.offer
	}
	if s.answer != nil {
		snap.Answer = *s.answer
	}
	return snap
}

// Store is the shared session table. The zero value is not usable; use New.
type Store struct {
	mu       sync.Mutex
	sessions map[string]*session
	ttl      time.Duration
}

// New creates an empty store with the given session TTL.
func New(ttl time.Duration) *Store {
	return &Store{
		sessions: make(map[string]*session),
		ttl:      ttl,
	}
}

// TouchOrCreate returns the existing session for sid, or creates one if the
// global session cap allows it.
func (s *Store) TouchOrCreate(sid string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.touchOrCreateLocked(sid)
}

func (s *Store) touchOrCreateLocked(sid string) error {
	if _, ok := s.sessions[sid]; ok {
		return nil
	}
	if len(s.sessions) >= MaxSessions {
		return isnaderr.CapacityExceeded("server busy: %d sessions active", len(s.sessions))
	}
	s.sessions[sid] = &session{createdAt: time.Now()}
	return nil
}

// Attach registers send as a subscriber of sid, creating the session if
// needed, subject to both caps. It returns the session's current snapshot.
func (s *Store) Attach(sid string, send Sender) (Snapshot, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if err := s.touchOrCreateLocked(sid); err != nil {
		return Snapshot{}, err
	}
	sess := s.sessions[sid]
	if len(sess.subscribers) >= MaxClientsPerSession {
		return Snapshot{}, isnaderr.CapacityExceeded("session %s full: %d clients", sid, len(sess.subscribers))
	}
	sess.subscribers = append(sess.subscribers, send)
	return sess.snapshot(), nil
}

// SetOffer replaces sid's offer, creating the session if needed, and returns
// the new snapshot plus the current subscriber list to broadcast to. Dead
// subscribers are pruned as a side effect.
func (s *Store) SetOffer(sid, text string) (Snapshot, []Sender, error) {
	return s.setField(sid, func(sess *session) { sess.offer = &text })
}

// SetAnswer replaces sid's answer; see SetOffer.
func (s *Store) SetAnswer(sid, text string) (Snapshot, []Sender, error) {
	return s.setField(sid, func(sess *session) { sess.answer = &text })
}

func (s *Store) setField(sid string, mutate func(*session)) (Snapshot, []Sender, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if err := s.touchOrCreateLocked(sid); err != nil {
		return Snapshot{}, nil, err
	}
	sess := s.sessions[sid]
	mutate(sess)
	sess.subscribers = pruneClosed(sess.subscribers)
	subs := make([]Sender, len(sess.subscribers))
	copy(subs, sess.subscribers)
	return sess.snapshot(), subs, nil
}

// Snapshot returns sid's current offer/answer state. It reports NotFound if
// the session does not exist (the only caller that can observe this is
// get_state; join and set_* auto-create).
func (s *Store) Snapshot(sid string) (Snapshot, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	sess, ok := s.sessions[sid]
	if !ok {
		return Snapshot{}, isnaderr.NotFound("unknown sid")
	}
	return sess.snapshot(), nil
}

// PurgeExpired removes every session older than the configured TTL.
func (s *Store) PurgeExpired(now time.Time) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for sid, sess := range s.sessions {
		if now.Sub(sess.createdAt) > s.ttl {
			delete(s.sessions, sid)
		}
	}
}

// PurgeClosed drops subscribers with a dead send handle from sid. If sid is
// empty, it sweeps every session.
func (s *Store) PurgeClosed(sid string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if sid != "" {
		if sess, ok := s.sessions[sid]; ok {
			sess.subscribers = pruneClosed(sess.subscribers)
		}
		return
	}
	for _, sess := range s.sessions {
		sess.subscribers = pruneClosed(sess.subscribers)
	}
}

// Detach removes send from sid's subscriber list, used on connection close.
func (s *Store) Detach(sid string, send Sender) {
	s.mu.Lock()
	defer s.mu.Unlock()
	sess, ok := s.sessions[sid]
	if !ok {
		return
	}
	kept := sess.subscribers[:0]
	for _, sub := range sess.subscribers {
		if sub != send {
			kept = append(kept, sub)
		}
	}
	sess.subscribers = kept
}

// SessionCount reports the number of live sessions, for tests and metrics.
func (s *Store) SessionCount() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.sessions)
}

// SubscriberCount reports sid's subscriber count, for tests and metrics.
func (s *Store) SubscriberCount(sid string) int {
	s.mu.Lock()
	defer s.mu.Unlock()
	sess, ok := s.sessions[sid]
	if !ok {
		return 0
	}
	return len(sess.subscribers)
}

func pruneClosed(subs []Sender) []Sender {
	kept := subs[:0]
	for _, sub := range subs {
		if !sub.Closed() {
			kept = append(kept, sub)
		}
	}
	return kept
}
