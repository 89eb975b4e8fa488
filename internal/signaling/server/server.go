// Package server wires the signaling protocol engine to an HTTP listener:
// the WebSocket upgrade at /ws, the /info probe endpoint, and the
// background TTL/closed-subscriber sweep.
package server

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"sync"
	"time"

	"github.com/coder/websocket"

	"github.com/isnad-dev/isnad/internal/signaling/protocol"
	"github.com/isnad-dev/isnad/internal/signaling/store"
	"github.com/isnad-dev/isnad/internal/telemetry"
)

// SweepInterval is how often the background task purges expired sessions
// and closed subscribers, per spec §4.6.
const SweepInterval = 30 * time.Second

// Server is the signaling relay's HTTP/WS surface.
type Server struct {
	store  *store.Store
	tracer *telemetry.Tracer
}

// New creates a relay server backed by a session store with the given TTL.
// A nil tracer runs with Noop() spans.
func New(ttl time.Duration, tracer *telemetry.Tracer) *Server {
	if tracer == nil {
		tracer = telemetry.Noop()
	}
	return &Server{store: store.New(ttl), tracer: tracer}
}

// Handler returns the HTTP handler exposing /info and /ws.
func (s *Server) Handler() http.Handler {
	mux := http.NewServeMux()
	mux.HandleFunc("/info", s.handleInfo)
	mux.HandleFunc("/ws", s.handleWS)
	return mux
}

// RunSweep runs the periodic purge loop until ctx is cancelled.
func (s *Server) RunSweep(ctx context.Context) {
	ticker := time.NewTicker(SweepInterval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			s.store.PurgeExpired(time.Now())
			s.store.PurgeClosed("")
		}
	}
}

func (s *Server) handleInfo(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	_ = json.NewEncoder(w).Encode(map[string]any{"name": "voxelle-signal", "v": 1})
}

// wsSender adapts a coder/websocket connection plus its write loop into a
// protocol.Sender: Send enqueues onto a channel buffered to 256 messages and
// never blocks on the socket itself, so the store's mutex is never held
// across I/O. The queue is bounded: once 256 messages are pending, Send
// returns false and the subscriber is treated as dead.
type wsSender struct {
	mu     sync.Mutex
	queue  chan []byte
	closed bool
}

func newWsSender() *wsSender {
	return &wsSender{queue: make(chan []byte, 256)}
}

func (w *wsSender) Send(msg []byte) bool {
	w.mu.Lock()
	defer w.mu.Unlock()
	if w.closed {
		return false
	}
	select {
	case w.queue <- msg:
		return true
	default:
		// Queue full: treat as a dead subscriber rather than blocking the
		// sessions-map critical section or growing unboundedly.
		return false
	}
}

func (w *wsSender) Closed() bool {
	w.mu.Lock()
	defer w.mu.Unlock()
	return w.closed
}

func (w *wsSender) markClosed() {
	w.mu.Lock()
	defer w.mu.Unlock()
	if !w.closed {
		w.closed = true
		close(w.queue)
	}
}

func (s *Server) handleWS(w http.ResponseWriter, r *http.Request) {
	c, err := websocket.Accept(w, r, nil)
	if err != nil {
		return
	}
	defer c.CloseNow()

	ctx := r.Context()
	sender := newWsSender()
	conn := protocol.NewConn(s.store, sender, s.tracer)

	var writeWG sync.WaitGroup
	writeWG.Add(1)
	go func() {
		defer writeWG.Done()
		for msg := range sender.queue {
			if err := c.Write(ctx, websocket.MessageText, msg); err != nil {
				return
			}
		}
	}()

	sender.Send(conn.Hello())

	for {
		typ, data, err := c.Read(ctx)
		if err != nil {
			break
		}
		if typ != websocket.MessageText {
			continue
		}
		if err := conn.HandleText(data); err != nil {
			_ = c.Close(websocket.StatusMessageTooBig, err.Error())
			break
		}
	}

	conn.Close()
	sender.markClosed()
	writeWG.Wait()
}

// Addr formats a host:port listen address.
func Addr(host string, port int) string {
	return fmt.Sprintf("%s:%d", host, port)
}
