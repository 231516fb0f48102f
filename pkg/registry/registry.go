package registry

import (
	"context"
	"sort"
	"sync"

	"github.com/aretw0/eventable/pkg/domain"
)

// HandlerFunc defines the signature for an action handler.
// It receives a context and the positional parameters of the call.
type HandlerFunc func(ctx context.Context, params ...any) (any, error)

// Registry manages the handlers available to a model.
// Handlers are keyed by their full handler name ("actionPublish") and looked up
// by exact string match.
type Registry struct {
	mu       sync.RWMutex
	handlers map[string]HandlerFunc
}

// NewRegistry creates a new empty registry.
func NewRegistry() *Registry {
	return &Registry{
		handlers: make(map[string]HandlerFunc),
	}
}

// Register adds a handler under its exact handler name.
// If a handler with the same name exists, it is overwritten.
func (r *Registry) Register(name string, fn HandlerFunc) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.handlers[name] = fn
}

// RegisterAction adds a handler for an action token, deriving the handler name.
func (r *Registry) RegisterAction(action string, fn HandlerFunc) {
	r.Register(domain.HandlerName(action), fn)
}

// Unregister removes a handler. It is a no-op for unknown names.
func (r *Registry) Unregister(name string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	delete(r.handlers, name)
}

// Lookup returns the handler registered under name.
func (r *Registry) Lookup(name string) (HandlerFunc, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	fn, ok := r.handlers[name]
	return fn, ok
}

// Names returns the registered handler names in lexical order.
func (r *Registry) Names() []string {
	r.mu.RLock()
	names := make([]string, 0, len(r.handlers))
	for name := range r.handlers {
		names = append(names, name)
	}
	r.mu.RUnlock()

	sort.Strings(names)
	return names
}

// Len returns the number of registered handlers.
func (r *Registry) Len() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.handlers)
}
