package observability

import (
	"context"
	"log/slog"

	"github.com/aretw0/eventable/pkg/ports"
)

// Until delivers an event through n with veto semantics when n supports them,
// and as a plain notification otherwise.
func Until(ctx context.Context, n ports.Notifier, event string, payload any) (bool, error) {
	if h, ok := n.(ports.HaltingNotifier); ok {
		return h.Until(ctx, event, payload)
	}
	if err := n.Notify(ctx, event, payload); err != nil {
		return false, err
	}
	return true, nil
}

// Logging wraps next and logs every notification at debug level, and failures
// at error level.
func Logging(next ports.Notifier, logger *slog.Logger) ports.Notifier {
	return &loggingNotifier{next: next, logger: logger}
}

type loggingNotifier struct {
	next   ports.Notifier
	logger *slog.Logger
}

func (l *loggingNotifier) Notify(ctx context.Context, event string, payload any) error {
	err := l.next.Notify(ctx, event, payload)
	l.log(ctx, event, true, err)
	return err
}

func (l *loggingNotifier) Until(ctx context.Context, event string, payload any) (bool, error) {
	proceed, err := Until(ctx, l.next, event, payload)
	l.log(ctx, event, proceed, err)
	return proceed, err
}

func (l *loggingNotifier) log(ctx context.Context, event string, proceed bool, err error) {
	if err != nil {
		l.logger.ErrorContext(ctx, "model_event failed", "event", event, "error", err)
		return
	}
	l.logger.DebugContext(ctx, "model_event", "event", event, "halted", !proceed)
}

// Multi fans an event out to every notifier in order. The first error stops the
// fan-out and is returned. Until reports false if any notifier vetoed.
func Multi(notifiers ...ports.Notifier) ports.Notifier {
	return multiNotifier(notifiers)
}

type multiNotifier []ports.Notifier

func (m multiNotifier) Notify(ctx context.Context, event string, payload any) error {
	for _, n := range m {
		if err := n.Notify(ctx, event, payload); err != nil {
			return err
		}
	}
	return nil
}

func (m multiNotifier) Until(ctx context.Context, event string, payload any) (bool, error) {
	for _, n := range m {
		proceed, err := Until(ctx, n, event, payload)
		if err != nil {
			return false, err
		}
		if !proceed {
			return false, nil
		}
	}
	return true, nil
}
