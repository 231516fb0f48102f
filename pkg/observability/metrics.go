package observability

import (
	"context"
	"errors"

	"github.com/aretw0/eventable/pkg/domain"
	"github.com/aretw0/eventable/pkg/ports"
	"github.com/prometheus/client_golang/prometheus"
)

// Dispatch outcomes used as metric labels.
const (
	OutcomeOK          = "ok"
	OutcomeError       = "error"
	OutcomeHalted      = "halted"
	OutcomeUnsupported = "unsupported"
)

// Metrics holds the Prometheus collectors for a model's event traffic.
type Metrics struct {
	events   *prometheus.CounterVec
	calls    *prometheus.CounterVec
	duration *prometheus.HistogramVec
}

// NewMetrics creates the collectors and registers them with reg.
// A nil reg leaves them unregistered.
func NewMetrics(reg prometheus.Registerer) *Metrics {
	m := &Metrics{
		events: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "eventable_model_events_total",
				Help: "Total number of model events notified",
			},
			[]string{"event"},
		),
		calls: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "eventable_dispatch_total",
				Help: "Total number of dynamic calls by resolving strategy and outcome",
			},
			[]string{"strategy", "outcome"},
		),
		duration: prometheus.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "eventable_dispatch_duration_seconds",
				Help:    "Duration of dynamic calls",
				Buckets: prometheus.DefBuckets,
			},
			[]string{"strategy"},
		),
	}

	if reg != nil {
		reg.MustRegister(m.events, m.calls, m.duration)
	}
	return m
}

// Notifier wraps next and counts every event that was delivered successfully.
func (m *Metrics) Notifier(next ports.Notifier) ports.Notifier {
	return &countingNotifier{next: next, events: m.events}
}

// Hooks returns lifecycle hooks that record dispatch counts and durations.
func (m *Metrics) Hooks() domain.LifecycleHooks {
	return domain.LifecycleHooks{
		OnDispatch: func(ctx context.Context, e *domain.DispatchEvent) {
			m.calls.WithLabelValues(e.Strategy, Outcome(e.Err)).Inc()
			m.duration.WithLabelValues(e.Strategy).Observe(e.Duration.Seconds())
		},
	}
}

// Outcome classifies a dispatch error into a metric label.
func Outcome(err error) string {
	switch {
	case err == nil:
		return OutcomeOK
	case errors.Is(err, domain.ErrEventHalted):
		return OutcomeHalted
	case errors.Is(err, domain.ErrUnsupportedAction):
		return OutcomeUnsupported
	default:
		return OutcomeError
	}
}

type countingNotifier struct {
	next   ports.Notifier
	events *prometheus.CounterVec
}

func (c *countingNotifier) Notify(ctx context.Context, event string, payload any) error {
	if err := c.next.Notify(ctx, event, payload); err != nil {
		return err
	}
	c.events.WithLabelValues(event).Inc()
	return nil
}

func (c *countingNotifier) Until(ctx context.Context, event string, payload any) (bool, error) {
	proceed, err := Until(ctx, c.next, event, payload)
	if err != nil {
		return false, err
	}
	c.events.WithLabelValues(event).Inc()
	return proceed, nil
}
