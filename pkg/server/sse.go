package server

import (
	"encoding/json"
	"fmt"
	"net/http"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/ospreyhq/osprey-cli/pkg/types"
)

const (
	// keepaliveInterval is how often idle event streams get a comment so
	// proxies do not drop the connection
	keepaliveInterval = 30 * time.Second

	// maxSessions limits concurrent event stream connections
	maxSessions = 64

	// sessionBuffer is the per-connection event buffer; a client that
	// cannot keep up drops events rather than blocking the broadcaster
	sessionBuffer = 8
)

// Event is one live-reload notification pushed to connected pages
type Event struct {
	// Kind names the event: "connected" or "reload"
	Kind string `json:"kind"`

	// Path is the changed file for reload events, relative to the project
	Path string `json:"path,omitempty"`
}

// session is one open event stream connection
type session struct {
	id     string
	events chan Event
}

// Hub fans live-reload events out to connected event streams. It
// implements types.Reloader so the file watcher can feed it directly.
type Hub struct {
	mu       sync.RWMutex
	sessions map[string]*session
	log      types.Logger
}

// NewHub creates an empty live-reload hub
func NewHub(log types.Logger) *Hub {
	return &Hub{
		sessions: make(map[string]*session),
		log:      log,
	}
}

// NotifyChanged broadcasts a reload event for a changed file
func (h *Hub) NotifyChanged(path string) {
	h.Broadcast(Event{Kind: "reload", Path: path})
}

// Broadcast pushes an event to every connected session. Sessions with a
// full buffer miss the event.
func (h *Hub) Broadcast(ev Event) {
	h.mu.RLock()
	defer h.mu.RUnlock()

	for _, s := range h.sessions {
		select {
		case s.events <- ev:
		default:
			h.log.Debug("event stream backlogged, dropping event",
				"session", s.id,
				"kind", ev.Kind,
			)
		}
	}
}

// Count returns the number of connected sessions
func (h *Hub) Count() int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.sessions)
}

func (h *Hub) register(s *session) bool {
	h.mu.Lock()
	defer h.mu.Unlock()
	if len(h.sessions) >= maxSessions {
		return false
	}
	h.sessions[s.id] = s
	return true
}

func (h *Hub) unregister(id string) {
	h.mu.Lock()
	defer h.mu.Unlock()
	delete(h.sessions, id)
}

// ServeHTTP streams live-reload events as Server-Sent Events
func (h *Hub) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	flusher, ok := w.(http.Flusher)
	if !ok {
		http.Error(w, "streaming not supported", http.StatusInternalServerError)
		return
	}

	s := &session{
		id:     uuid.NewString(),
		events: make(chan Event, sessionBuffer),
	}
	if !h.register(s) {
		http.Error(w, "too many event stream connections", http.StatusServiceUnavailable)
		return
	}
	defer func() {
		h.unregister(s.id)
		h.log.Debug("event stream closed", "session", s.id)
	}()

	w.Header().Set("Content-Type", "text/event-stream")
	w.Header().Set("Cache-Control", "no-cache")
	w.Header().Set("Connection", "keep-alive")
	w.Header().Set("Access-Control-Allow-Origin", "*")

	h.log.Debug("event stream opened", "session", s.id, "remote", r.RemoteAddr)

	if err := writeSSEEvent(w, flusher, "connected", Event{Kind: "connected"}); err != nil {
		return
	}

	ticker := time.NewTicker(keepaliveInterval)
	defer ticker.Stop()

	ctx := r.Context()
	for {
		select {
		case <-ctx.Done():
			return
		case ev := <-s.events:
			if err := writeSSEEvent(w, flusher, ev.Kind, ev); err != nil {
				return
			}
		case <-ticker.C:
			if err := writeSSEComment(w, flusher, "keepalive"); err != nil {
				return
			}
		}
	}
}

// writeSSEEvent writes a typed Server-Sent Event
func writeSSEEvent(w http.ResponseWriter, flusher http.Flusher, eventType string, data interface{}) error {
	jsonData, err := json.Marshal(data)
	if err != nil {
		return fmt.Errorf("marshal event data: %w", err)
	}

	var buf strings.Builder
	if eventType != "" {
		fmt.Fprintf(&buf, "event: %s\n", eventType)
	}
	for _, line := range strings.Split(string(jsonData), "\n") {
		fmt.Fprintf(&buf, "data: %s\n", line)
	}
	buf.WriteString("\n")

	if _, err := w.Write([]byte(buf.String())); err != nil {
		return fmt.Errorf("write event: %w", err)
	}
	flusher.Flush()
	return nil
}

// writeSSEComment writes an SSE comment line, used for keepalives
func writeSSEComment(w http.ResponseWriter, flusher http.Flusher, comment string) error {
	if _, err := w.Write([]byte(": " + comment + "\n\n")); err != nil {
		return fmt.Errorf("write comment: %w", err)
	}
	flusher.Flush()
	return nil
}
