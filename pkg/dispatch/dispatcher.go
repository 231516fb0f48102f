package dispatch

import (
	"context"
	"fmt"
	"time"

	"github.com/aretw0/eventable/pkg/domain"
	"github.com/aretw0/eventable/pkg/ports"
)

// strategyCustom names resolvers that do not report their own name.
const strategyCustom = "custom"

// Option configures a Dispatcher.
type Option func(*Dispatcher)

// WithLifecycleHooks registers observability hooks.
func WithLifecycleHooks(hooks domain.LifecycleHooks) Option {
	return func(d *Dispatcher) {
		d.hooks = d.hooks.Merge(hooks)
	}
}

// WithResolvers appends strategies to the resolution chain.
func WithResolvers(resolvers ...ports.Resolver) Option {
	return func(d *Dispatcher) {
		d.resolvers = append(d.resolvers, resolvers...)
	}
}

// Dispatcher resolves dynamic calls through an ordered list of strategies.
// The first strategy that reports the call as handled wins; when none does,
// the call fails with domain.ErrUnsupportedAction.
//
// A Dispatcher holds no per-call state and is safe for concurrent use as long
// as its strategies are.
type Dispatcher struct {
	resolvers []ports.Resolver
	hooks     domain.LifecycleHooks
}

// New creates a Dispatcher.
func New(opts ...Option) *Dispatcher {
	d := &Dispatcher{}
	for _, opt := range opts {
		opt(d)
	}
	return d
}

// Call resolves method with params.
func (d *Dispatcher) Call(ctx context.Context, method string, params ...any) (any, error) {
	call := domain.ActionCall{Method: method, Params: params}
	start := time.Now()

	for _, r := range d.resolvers {
		result, handled, err := r.Resolve(ctx, call)
		if !handled {
			continue
		}
		d.report(ctx, method, strategyName(r), start, err)
		return result, err
	}

	err := fmt.Errorf("%w: %s", domain.ErrUnsupportedAction, method)
	d.report(ctx, method, domain.StrategyUnsupported, start, err)
	return nil, err
}

// Resolvers returns the number of strategies in the chain.
func (d *Dispatcher) Resolvers() int {
	return len(d.resolvers)
}

func (d *Dispatcher) report(ctx context.Context, method, strategy string, start time.Time, err error) {
	if d.hooks.OnDispatch == nil {
		return
	}
	d.hooks.OnDispatch(ctx, &domain.DispatchEvent{
		Method:   method,
		Strategy: strategy,
		Duration: time.Since(start),
		Err:      err,
	})
}

func strategyName(r ports.Resolver) string {
	if n, ok := r.(interface{ Name() string }); ok {
		return n.Name()
	}
	return strategyCustom
}
