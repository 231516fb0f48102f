package http

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"net/http"
	"strings"
	"sync"

	"github.com/aretw0/eventable/internal/logging"
	"github.com/aretw0/eventable/pkg/domain"
)

// StreamManager fans model events out to SSE connections.
// Its Listen method has the memory.Listener signature.
type StreamManager struct {
	mu          sync.RWMutex
	subscribers map[chan<- domain.ModelEvent]struct{}
	logger      *slog.Logger
}

// NewStreamManager creates an empty StreamManager.
func NewStreamManager(logger *slog.Logger) *StreamManager {
	if logger == nil {
		logger = logging.NewNop()
	}
	return &StreamManager{
		subscribers: make(map[chan<- domain.ModelEvent]struct{}),
		logger:      logger,
	}
}

// Subscribe registers a new buffered channel. Call cancel to release it.
func (sm *StreamManager) Subscribe() (ch <-chan domain.ModelEvent, cancel func()) {
	sm.mu.Lock()
	defer sm.mu.Unlock()

	c := make(chan domain.ModelEvent, 10)
	sm.subscribers[c] = struct{}{}

	var once sync.Once
	return c, func() {
		once.Do(func() {
			sm.mu.Lock()
			defer sm.mu.Unlock()
			delete(sm.subscribers, c)
			close(c)
		})
	}
}

// Listen broadcasts ev. Slow subscribers lose events instead of blocking the caller.
func (sm *StreamManager) Listen(ctx context.Context, ev domain.ModelEvent) error {
	sm.mu.RLock()
	defer sm.mu.RUnlock()

	for ch := range sm.subscribers {
		select {
		case ch <- ev:
		default:
			sm.logger.Warn("SSE: Client buffer full, dropping event", "event", ev.Name)
		}
	}
	return nil
}

// Subscribers returns the number of open subscriptions.
func (sm *StreamManager) Subscribers() int {
	sm.mu.RLock()
	defer sm.mu.RUnlock()
	return len(sm.subscribers)
}

// SubscribeEvents handles the GET /events request (SSE).
// The optional "event" query parameter is a comma separated allow-list.
func (s *Server) SubscribeEvents(w http.ResponseWriter, r *http.Request) {
	flusher, ok := w.(http.Flusher)
	if !ok {
		http.Error(w, "Streaming not supported", http.StatusInternalServerError)
		s.logger.Error("SubscribeEvents: Streaming not supported")
		return
	}

	filter := map[string]bool{}
	if raw := r.URL.Query().Get("event"); raw != "" {
		for _, name := range strings.Split(raw, ",") {
			filter[strings.TrimSpace(name)] = true
		}
	}

	w.Header().Set("Content-Type", "text/event-stream")
	w.Header().Set("Cache-Control", "no-cache")
	w.Header().Set("Connection", "keep-alive")

	events, cancel := s.Streams.Subscribe()
	defer cancel()

	fmt.Fprintf(w, "event: ping\ndata: connected\n\n")
	flusher.Flush()

	for {
		select {
		case <-r.Context().Done():
			s.logger.Debug("SSE Client Disconnected")
			return
		case ev, ok := <-events:
			if !ok {
				return
			}
			if len(filter) > 0 && !filter[ev.Name] {
				continue
			}
			data, err := json.Marshal(ev)
			if err != nil {
				s.logger.Warn("SSE: event encode failed", "event", ev.Name, "error", err)
				continue
			}
			fmt.Fprintf(w, "event: %s\ndata: %s\n\n", ev.Name, data)
			flusher.Flush()
		}
	}
}
