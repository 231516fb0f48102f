package domain

import (
	"context"
	"time"
)

// ModelEvent is a named lifecycle notification as seen by listeners.
type ModelEvent struct {
	Name      string    `json:"name"`
	Payload   any       `json:"payload,omitempty"`
	Timestamp time.Time `json:"timestamp"`
}

// Strategy names reported in DispatchEvent.
const (
	StrategyConvention  = "convention"
	StrategyFallback    = "fallback"
	StrategyUnsupported = "unsupported"
)

// DispatchEvent describes a finished call through the dispatcher.
type DispatchEvent struct {
	Method   string        `json:"method"`
	Strategy string        `json:"strategy"`
	Duration time.Duration `json:"duration"`
	Err      error         `json:"-"`
}

// LifecycleHooks defines callbacks for dispatcher observability.
// Hooks never influence the outcome of a call.
type LifecycleHooks struct {
	OnDispatch func(context.Context, *DispatchEvent)
}

// Merge returns hooks that call h first and then other.
func (h LifecycleHooks) Merge(other LifecycleHooks) LifecycleHooks {
	switch {
	case h.OnDispatch == nil:
		return other
	case other.OnDispatch == nil:
		return h
	}
	first, second := h.OnDispatch, other.OnDispatch
	return LifecycleHooks{
		OnDispatch: func(ctx context.Context, e *DispatchEvent) {
			first(ctx, e)
			second(ctx, e)
		},
	}
}
