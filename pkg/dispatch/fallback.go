package dispatch

import (
	"context"
	"errors"
	"fmt"

	"github.com/aretw0/eventable/pkg/domain"
	"github.com/aretw0/eventable/pkg/ports"
)

// FallbackFunc handles calls no handler matched. It receives the method name and
// parameters unchanged.
type FallbackFunc func(ctx context.Context, method string, params ...any) (any, error)

type fallback struct {
	fn FallbackFunc
}

// Fallback returns a strategy that hands every call to fn and returns whatever
// fn returns. An error from fn surfaces as domain.ErrUnsupportedAction joined
// with the original error.
func Fallback(fn FallbackFunc) ports.Resolver {
	return &fallback{fn: fn}
}

// Resolve implements ports.Resolver.
func (f *fallback) Resolve(ctx context.Context, call domain.ActionCall) (any, bool, error) {
	if f.fn == nil {
		return nil, false, nil
	}
	result, err := f.fn(ctx, call.Method, call.Params...)
	if err != nil && !errors.Is(err, domain.ErrUnsupportedAction) {
		return result, true, fmt.Errorf("%w: %s: %w", domain.ErrUnsupportedAction, call.Method, err)
	}
	return result, true, err
}

// Name identifies the strategy in lifecycle hooks.
func (f *fallback) Name() string { return domain.StrategyFallback }

// ResolverFunc adapts a plain function to ports.Resolver.
type ResolverFunc func(ctx context.Context, call domain.ActionCall) (any, bool, error)

// Resolve calls f.
func (f ResolverFunc) Resolve(ctx context.Context, call domain.ActionCall) (any, bool, error) {
	return f(ctx, call)
}
