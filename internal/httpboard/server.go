// Package httpboard serves the local, derived Kanban board UI: it reads
// and writes control.jsonl directives but never edits the ledger directly.
package httpboard

import (
	"encoding/json"
	"fmt"
	"net/http"
	"regexp"

	"github.com/isnad-dev/isnad/internal/board"
	"github.com/isnad-dev/isnad/internal/directive"
	"github.com/isnad-dev/isnad/internal/workspace"
)

// page is the minimal static shell served at "/". The real board data is
// fetched client-side from /api/board, which folds the logs afresh (and
// rewrites the derived state files) on every request.
const page = `<!doctype html>
<html>
<head><meta charset="utf-8"><title>isnad board</title></head>
<body>
<h1>isnad board</h1>
<p>Derived view. Edits here write control directives only; the ledger is
never modified by this UI.</p>
<pre id="board">loading...</pre>
<script>
fetch('/api/board').then(r => r.json()).then(b => {
  document.getElementById('board').textContent = JSON.stringify(b, null, 2);
});
</script>
</body>
</html>
`

// Server serves the derived board UI for one workspace root.
type Server struct {
	Paths    workspace.Paths
	Author   string
	Via      string
	Operator string
}

// New constructs a board UI server over the workspace rooted at root.
func New(root, author, via, operator string) *Server {
	return &Server{
		Paths:    workspace.For(root),
		Author:   author,
		Via:      via,
		Operator: operator,
	}
}

// Handler returns the HTTP handler exposing the UI page and its API.
func (s *Server) Handler() http.Handler {
	mux := http.NewServeMux()
	mux.HandleFunc("/", s.handleIndex)
	mux.HandleFunc("/api/board", s.handleBoard)
	mux.HandleFunc("/api/open_task", s.handleOpenTask)
	mux.HandleFunc("/api/directives", s.handleDirectives)
	return mux
}

func (s *Server) handleIndex(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	_, _ = w.Write([]byte(page))
}

func (s *Server) handleBoard(w http.ResponseWriter, r *http.Request) {
	b, err := board.Fold(s.Paths.Ledger, s.Paths.Control)
	if err != nil {
		internalError(w, err)
		return
	}
	if err := board.WriteState(s.Paths.BoardJSON, s.Paths.BoardMD, b); err != nil {
		internalError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, b)
}

type openTaskRequest struct {
	Payload map[string]any `json:"payload"`
}

func (s *Server) handleOpenTask(w http.ResponseWriter, r *http.Request) {
	var req openTaskRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "invalid JSON body", http.StatusBadRequest)
		return
	}

	id, err := directive.AppendDirective(s.Paths.Control, directive.AppendDirectiveParams{
		Type:    "open_task",
		Payload: req.Payload,
		Author:  s.Author,
		Meta:    s.meta(),
	})
	if err != nil {
		internalError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"ok": true, "directive_id": id})
}

type directiveRequest struct {
	Type    string         `json:"type"`
	TaskID  string         `json:"task_id"`
	Payload map[string]any `json:"payload"`
}

var taskScoped = regexp.MustCompile(`^(set_status|set_priority|pause|resume|note)$`)

func (s *Server) handleDirectives(w http.ResponseWriter, r *http.Request) {
	var req directiveRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "invalid JSON body", http.StatusBadRequest)
		return
	}
	if req.Type == "" {
		http.Error(w, "missing type", http.StatusBadRequest)
		return
	}
	if taskScoped.MatchString(req.Type) && req.TaskID == "" {
		http.Error(w, "missing task_id", http.StatusBadRequest)
		return
	}

	id, err := directive.AppendDirective(s.Paths.Control, directive.AppendDirectiveParams{
		Type:    req.Type,
		TaskID:  req.TaskID,
		Payload: req.Payload,
		Author:  s.Author,
		Meta:    s.meta(),
	})
	if err != nil {
		internalError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"ok": true, "directive_id": id, "task_id": req.TaskID})
}

func (s *Server) meta() map[string]any {
	m := map[string]any{"via": s.Via}
	if s.Operator != "" {
		m["operator"] = s.Operator
	}
	return m
}

func internalError(w http.ResponseWriter, err error) {
	http.Error(w, err.Error(), http.StatusInternalServerError)
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

// EnsureScaffolded makes sure the workspace directory tree exists before
// the server starts serving requests.
func EnsureScaffolded(root string) error {
	_, err := workspace.Scaffold(root, false)
	if err != nil {
		return fmt.Errorf("scaffold %s: %w", root, err)
	}
	return nil
}

