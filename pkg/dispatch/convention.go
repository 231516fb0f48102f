package dispatch

import (
	"context"

	"github.com/aretw0/eventable/pkg/domain"
	"github.com/aretw0/eventable/pkg/ports"
	"github.com/aretw0/eventable/pkg/registry"
)

// ConventionOption configures the convention strategy.
type ConventionOption func(*convention)

// WithVeto makes the "before" notification veto-aware. When the notifier is a
// ports.HaltingNotifier and a listener halts the event, the action is cancelled
// with domain.ErrEventHalted. Without a HaltingNotifier the option has no effect.
func WithVeto() ConventionOption {
	return func(c *convention) {
		c.veto = true
	}
}

// WithPayload sets the value handed to the notifier with every event,
// typically the model the actions belong to.
func WithPayload(payload any) ConventionOption {
	return func(c *convention) {
		c.payload = payload
	}
}

type convention struct {
	registry *registry.Registry
	notifier ports.Notifier
	payload  any
	veto     bool
}

// Convention returns the strategy that resolves a call to the handler named
// "action" + Capitalize(method). A matched call emits "before<Name>", runs the
// handler, then emits "after<Name>". The handler's return value is discarded and
// the call resolves to nil.
//
// "after<Name>" is only emitted when the handler returned without error.
func Convention(reg *registry.Registry, notifier ports.Notifier, opts ...ConventionOption) ports.Resolver {
	c := &convention{
		registry: reg,
		notifier: notifier,
	}
	if c.notifier == nil {
		c.notifier = ports.NopNotifier{}
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Resolve implements ports.Resolver.
func (c *convention) Resolve(ctx context.Context, call domain.ActionCall) (any, bool, error) {
	handler, ok := c.registry.Lookup(domain.HandlerName(call.Method))
	if !ok {
		return nil, false, nil
	}

	if err := c.before(ctx, domain.BeforeEvent(call.Method)); err != nil {
		return nil, true, err
	}

	if _, err := handler(ctx, call.Params...); err != nil {
		return nil, true, err
	}

	if err := c.notifier.Notify(ctx, domain.AfterEvent(call.Method), c.payload); err != nil {
		return nil, true, err
	}
	return nil, true, nil
}

// Name identifies the strategy in lifecycle hooks.
func (c *convention) Name() string { return domain.StrategyConvention }

func (c *convention) before(ctx context.Context, event string) error {
	if c.veto {
		if h, ok := c.notifier.(ports.HaltingNotifier); ok {
			proceed, err := h.Until(ctx, event, c.payload)
			if err != nil {
				return err
			}
			if !proceed {
				return domain.ErrEventHalted
			}
			return nil
		}
	}
	return c.notifier.Notify(ctx, event, c.payload)
}
