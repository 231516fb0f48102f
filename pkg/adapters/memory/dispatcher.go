package memory

import (
	"context"
	"errors"
	"sync"
	"sync/atomic"
	"time"

	"github.com/aretw0/eventable/pkg/domain"
)

// Listener receives model events. Returning domain.ErrEventHalted stops
// propagation to the remaining listeners; any other error is returned to the
// notifying caller.
type Listener func(ctx context.Context, ev domain.ModelEvent) error

type listenerEntry struct {
	id uint64
	fn Listener
}

// Dispatcher implements ports.HaltingNotifier in memory.
// Listeners run synchronously in registration order; listeners for a specific
// event run before wildcard listeners. Safe for concurrent use.
type Dispatcher struct {
	mu        sync.RWMutex
	listeners map[string][]listenerEntry
	wildcard  []listenerEntry
	nextID    atomic.Uint64
	now       func() time.Time
}

// Option configures the Dispatcher.
type Option func(*Dispatcher)

// WithClock overrides the timestamp source for events.
func WithClock(now func() time.Time) Option {
	return func(d *Dispatcher) {
		d.now = now
	}
}

// New creates a new in-memory event dispatcher.
func New(opts ...Option) *Dispatcher {
	d := &Dispatcher{
		listeners: make(map[string][]listenerEntry),
		now:       time.Now,
	}
	for _, opt := range opts {
		opt(d)
	}
	return d
}

// Listen registers fn for a single event name.
// The returned function removes the listener; it is safe to call more than once.
func (d *Dispatcher) Listen(event string, fn Listener) func() {
	id := d.nextID.Add(1)
	d.mu.Lock()
	d.listeners[event] = append(d.listeners[event], listenerEntry{id: id, fn: fn})
	d.mu.Unlock()

	return func() {
		d.mu.Lock()
		defer d.mu.Unlock()
		d.listeners[event] = removeByID(d.listeners[event], id)
		if len(d.listeners[event]) == 0 {
			delete(d.listeners, event)
		}
	}
}

// ListenAll registers fn for every event.
func (d *Dispatcher) ListenAll(fn Listener) func() {
	id := d.nextID.Add(1)
	d.mu.Lock()
	d.wildcard = append(d.wildcard, listenerEntry{id: id, fn: fn})
	d.mu.Unlock()

	return func() {
		d.mu.Lock()
		defer d.mu.Unlock()
		d.wildcard = removeByID(d.wildcard, id)
	}
}

// HasListeners reports whether anything listens for event.
func (d *Dispatcher) HasListeners(event string) bool {
	d.mu.RLock()
	defer d.mu.RUnlock()
	return len(d.listeners[event]) > 0 || len(d.wildcard) > 0
}

// Notify delivers the event to its listeners. A veto stops propagation but is
// not reported.
func (d *Dispatcher) Notify(ctx context.Context, event string, payload any) error {
	_, err := d.dispatch(ctx, event, payload)
	return err
}

// Until delivers the event and reports false if a listener vetoed it.
func (d *Dispatcher) Until(ctx context.Context, event string, payload any) (bool, error) {
	return d.dispatch(ctx, event, payload)
}

func (d *Dispatcher) dispatch(ctx context.Context, event string, payload any) (bool, error) {
	if err := ctx.Err(); err != nil {
		return false, err
	}

	d.mu.RLock()
	handlers := make([]listenerEntry, 0, len(d.listeners[event])+len(d.wildcard))
	handlers = append(handlers, d.listeners[event]...)
	handlers = append(handlers, d.wildcard...)
	d.mu.RUnlock()

	ev := domain.ModelEvent{
		Name:      event,
		Payload:   payload,
		Timestamp: d.now(),
	}

	for _, h := range handlers {
		if err := h.fn(ctx, ev); err != nil {
			if errors.Is(err, domain.ErrEventHalted) {
				return false, nil
			}
			return false, err
		}
	}
	return true, nil
}

func removeByID(entries []listenerEntry, id uint64) []listenerEntry {
	for i, e := range entries {
		if e.id == id {
			return append(entries[:i:i], entries[i+1:]...)
		}
	}
	return entries
}
