package observability

import (
	"context"
	"log/slog"

	"github.com/aretw0/eventable/pkg/domain"
)

// LoggingHooks returns lifecycle hooks that log every finished dispatch.
func LoggingHooks(logger *slog.Logger) domain.LifecycleHooks {
	return domain.LifecycleHooks{
		OnDispatch: func(ctx context.Context, e *domain.DispatchEvent) {
			attrs := []any{
				"method", e.Method,
				"strategy", e.Strategy,
				"duration", e.Duration,
			}
			if e.Err != nil {
				logger.WarnContext(ctx, "dispatch failed", append(attrs, "error", e.Err)...)
				return
			}
			logger.InfoContext(ctx, "dispatch", attrs...)
		},
	}
}
