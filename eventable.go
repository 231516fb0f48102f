package eventable

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/aretw0/eventable/pkg/dispatch"
	"github.com/aretw0/eventable/pkg/domain"
	"github.com/aretw0/eventable/pkg/observability"
	"github.com/aretw0/eventable/pkg/ports"
	"github.com/aretw0/eventable/pkg/registry"
)

// Model is the high-level entry point for the eventable library.
// Embed a *Model in your own type to give it the dynamic "perform action with
// lifecycle notifications" capability.
type Model struct {
	receiver   any
	registry   *registry.Registry
	notifier   ports.Notifier
	fallback   dispatch.FallbackFunc
	resolvers  []ports.Resolver
	hooks      domain.LifecycleHooks
	logger     *slog.Logger
	veto       bool
	bind       bool
	dispatcher *dispatch.Dispatcher
}

// Option defines a functional option for configuring the Model.
type Option func(*Model)

// WithNotifier sets the collaborator that receives the before/after events.
func WithNotifier(n ports.Notifier) Option {
	return func(m *Model) {
		m.notifier = n
	}
}

// WithRegistry injects a shared handler registry.
func WithRegistry(reg *registry.Registry) Option {
	return func(m *Model) {
		m.registry = reg
	}
}

// WithFallback sets the catch-all for calls no handler matches.
func WithFallback(fn dispatch.FallbackFunc) Option {
	return func(m *Model) {
		m.fallback = fn
	}
}

// WithResolvers adds strategies tried after the convention lookup and before
// the fallback.
func WithResolvers(resolvers ...ports.Resolver) Option {
	return func(m *Model) {
		m.resolvers = append(m.resolvers, resolvers...)
	}
}

// WithLifecycleHooks registers observability hooks.
func WithLifecycleHooks(hooks domain.LifecycleHooks) Option {
	return func(m *Model) {
		m.hooks = m.hooks.Merge(hooks)
	}
}

// WithLogger sets a structured logger. Every dispatch is logged through it.
func WithLogger(logger *slog.Logger) Option {
	return func(m *Model) {
		m.logger = logger
	}
}

// WithVeto lets listeners of "before" events cancel an action.
// It requires a notifier that implements ports.HaltingNotifier.
func WithVeto() Option {
	return func(m *Model) {
		m.veto = true
	}
}

// WithoutBinding disables the reflective registration of the receiver's
// Action<Name> methods. Handlers must then be added with Handle.
func WithoutBinding() Option {
	return func(m *Model) {
		m.bind = false
	}
}

// New initializes a Model for receiver. Receiver is the payload of every event
// and, unless WithoutBinding is given, its Action<Name> methods become handlers.
// Receiver may be nil for models that only use Handle.
func New(receiver any, opts ...Option) (*Model, error) {
	m := &Model{
		receiver: receiver,
		bind:     true,
	}
	for _, opt := range opts {
		opt(m)
	}

	if m.registry == nil {
		m.registry = registry.NewRegistry()
	}
	if m.notifier == nil {
		m.notifier = ports.NopNotifier{}
	}
	if m.logger != nil {
		m.hooks = m.hooks.Merge(observability.LoggingHooks(m.logger))
	}

	if m.bind && receiver != nil {
		if _, err := m.registry.Bind(receiver); err != nil {
			return nil, fmt.Errorf("failed to bind actions: %w", err)
		}
	}

	conventionOpts := []dispatch.ConventionOption{dispatch.WithPayload(receiver)}
	if m.veto {
		conventionOpts = append(conventionOpts, dispatch.WithVeto())
	}

	resolvers := []ports.Resolver{dispatch.Convention(m.registry, m.notifier, conventionOpts...)}
	resolvers = append(resolvers, m.resolvers...)
	if m.fallback != nil {
		resolvers = append(resolvers, dispatch.Fallback(m.fallback))
	}

	m.dispatcher = dispatch.New(
		dispatch.WithResolvers(resolvers...),
		dispatch.WithLifecycleHooks(m.hooks),
	)
	return m, nil
}

// Call is the dynamic entry point. When a handler "action<Method>" exists it
// is wrapped with the "before<Method>" and "after<Method>" events and Call
// returns nil. Otherwise the call goes to the fallback, whose result is
// returned unchanged. Without a fallback it fails with domain.ErrUnsupportedAction,
// as does every call on a nil or zero Model; use New.
func (m *Model) Call(ctx context.Context, method string, params ...any) (any, error) {
	if m == nil || m.dispatcher == nil {
		return nil, fmt.Errorf("%w: %s (model not initialized)", domain.ErrUnsupportedAction, method)
	}
	return m.dispatcher.Call(ctx, method, params...)
}

// Do performs action and discards any result.
func (m *Model) Do(ctx context.Context, action string, params ...any) error {
	_, err := m.Call(ctx, action, params...)
	return err
}

// Handle registers fn as the handler for action.
func (m *Model) Handle(action string, fn registry.HandlerFunc) {
	m.registry.RegisterAction(action, fn)
}

// HasAction reports whether a handler exists for action.
func (m *Model) HasAction(action string) bool {
	if m == nil || m.registry == nil {
		return false
	}
	_, ok := m.registry.Lookup(domain.HandlerName(action))
	return ok
}

// Actions returns the registered handler names.
func (m *Model) Actions() []string {
	if m == nil || m.registry == nil {
		return nil
	}
	return m.registry.Names()
}

// FireModelEvent notifies event with the receiver as payload.
// With halt set and a veto-aware notifier, it reports false when a listener
// halted the event; otherwise it always reports true on success.
func (m *Model) FireModelEvent(ctx context.Context, event string, halt bool) (bool, error) {
	if halt {
		return observability.Until(ctx, m.notifier, event, m.receiver)
	}
	if err := m.notifier.Notify(ctx, event, m.receiver); err != nil {
		return false, err
	}
	return true, nil
}

// Receiver returns the value events are emitted for.
func (m *Model) Receiver() any {
	return m.receiver
}

// Notifier returns the configured notifier.
func (m *Model) Notifier() ports.Notifier {
	return m.notifier
}
