package memory

import (
	"context"
	"sync"

	"github.com/aretw0/eventable/pkg/domain"
)

// Recorder is a Listener that keeps every event it receives.
// Attach it with Dispatcher.ListenAll. Safe for concurrent use.
type Recorder struct {
	mu     sync.Mutex
	events []domain.ModelEvent
}

// Listen records ev. It has the Listener signature.
func (r *Recorder) Listen(ctx context.Context, ev domain.ModelEvent) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.events = append(r.events, ev)
	return nil
}

// Events returns a copy of the recorded events in arrival order.
func (r *Recorder) Events() []domain.ModelEvent {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]domain.ModelEvent, len(r.events))
	copy(out, r.events)
	return out
}

// Names returns the names of the recorded events in arrival order.
func (r *Recorder) Names() []string {
	r.mu.Lock()
	defer r.mu.Unlock()
	names := make([]string, len(r.events))
	for i, ev := range r.events {
		names[i] = ev.Name
	}
	return names
}

// Count returns how many times event was recorded.
func (r *Recorder) Count(event string) int {
	r.mu.Lock()
	defer r.mu.Unlock()
	n := 0
	for _, ev := range r.events {
		if ev.Name == event {
			n++
		}
	}
	return n
}

// Reset drops all recorded events.
func (r *Recorder) Reset() {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.events = nil
}
