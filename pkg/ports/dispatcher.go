package ports

import (
	"context"

	"github.com/aretw0/eventable/pkg/domain"
)

// Notifier delivers a named model event to whatever listens on the other side.
// Notify is fire-and-forget: listener vetoes are not reported back.
type Notifier interface {
	Notify(ctx context.Context, event string, payload any) error
}

// HaltingNotifier is a Notifier whose listeners may veto an event.
// Until reports false when a listener halted propagation.
type HaltingNotifier interface {
	Notifier
	Until(ctx context.Context, event string, payload any) (bool, error)
}

// NotifierFunc adapts a plain function to the Notifier interface.
type NotifierFunc func(ctx context.Context, event string, payload any) error

// Notify calls f.
func (f NotifierFunc) Notify(ctx context.Context, event string, payload any) error {
	return f(ctx, event, payload)
}

// NopNotifier discards every event.
type NopNotifier struct{}

// Notify does nothing.
func (NopNotifier) Notify(context.Context, string, any) error { return nil }

// Resolver is one strategy in the ordered resolution chain of a dispatcher.
// It reports handled=false to pass the call on to the next strategy.
type Resolver interface {
	Resolve(ctx context.Context, call domain.ActionCall) (result any, handled bool, err error)
}
