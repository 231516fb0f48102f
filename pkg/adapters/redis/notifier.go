package redis

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"reflect"
	"sync/atomic"
	"time"

	"github.com/aretw0/eventable/internal/logging"
	"github.com/aretw0/eventable/pkg/domain"
	backend "github.com/redis/go-redis/v9"
)

// DefaultPrefix is the key and channel prefix used when none is configured.
const DefaultPrefix = "eventable:events:"

const watchBuffer = 64

// Envelope is the wire format published for every event.
type Envelope struct {
	Event     string          `json:"event"`
	Model     string          `json:"model,omitempty"`
	Payload   json.RawMessage `json:"payload,omitempty"`
	Timestamp time.Time       `json:"timestamp"`
}

// ModelEvent converts the envelope into the event listeners see.
// The payload stays raw JSON.
func (e Envelope) ModelEvent() domain.ModelEvent {
	ev := domain.ModelEvent{
		Name:      e.Event,
		Timestamp: e.Timestamp,
	}
	if len(e.Payload) > 0 {
		ev.Payload = e.Payload
	}
	return ev
}

// Notifier implements ports.Notifier on top of Redis Pub/Sub.
// Every event is published on "<prefix><event>". With WithHistory, the last
// envelopes of each event are also kept in a capped list.
type Notifier struct {
	client  *backend.Client
	prefix  string
	history int64
	logger  *slog.Logger
	now     func() time.Time
	closed  atomic.Bool
}

// Option configures the Notifier.
type Option func(*Notifier)

// WithPrefix sets the channel and key prefix.
func WithPrefix(prefix string) Option {
	return func(n *Notifier) {
		n.prefix = prefix
	}
}

// WithHistory keeps the last size envelopes per event. Zero disables history.
func WithHistory(size int) Option {
	return func(n *Notifier) {
		if size < 0 {
			size = 0
		}
		n.history = int64(size)
	}
}

// WithLogger configures a logger for background subscription errors.
func WithLogger(logger *slog.Logger) Option {
	return func(n *Notifier) {
		n.logger = logger
	}
}

// New creates a new Redis notifier with options.
func New(address, password string, db int, opts ...Option) *Notifier {
	rdb := backend.NewClient(&backend.Options{
		Addr:     address,
		Password: password,
		DB:       db,
	})
	return NewFromClient(rdb, opts...)
}

// NewFromClient creates a new Redis notifier from an existing client.
func NewFromClient(client *backend.Client, opts ...Option) *Notifier {
	n := &Notifier{
		client: client,
		prefix: DefaultPrefix,
		logger: logging.NewNop(),
		now:    time.Now,
	}
	for _, opt := range opts {
		opt(n)
	}
	return n
}

// Channel returns the Pub/Sub channel an event is published on.
func (n *Notifier) Channel(event string) string {
	return n.prefix + event
}

func (n *Notifier) historyKey(event string) string {
	return n.prefix + "history:" + event
}

// Notify publishes the event. The payload must be JSON-serializable.
func (n *Notifier) Notify(ctx context.Context, event string, payload any) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	if n.closed.Load() {
		return domain.ErrNotifierClosed
	}

	body, err := n.encode(event, payload)
	if err != nil {
		return err
	}

	pipe := n.client.Pipeline()
	pipe.Publish(ctx, n.Channel(event), body)
	if n.history > 0 {
		key := n.historyKey(event)
		pipe.LPush(ctx, key, body)
		pipe.LTrim(ctx, key, 0, n.history-1)
	}

	if _, err := pipe.Exec(ctx); err != nil {
		return fmt.Errorf("failed to publish %s to redis: %w", event, err)
	}
	return nil
}

// History returns the retained envelopes for event, oldest first.
func (n *Notifier) History(ctx context.Context, event string) ([]Envelope, error) {
	vals, err := n.client.LRange(ctx, n.historyKey(event), 0, -1).Result()
	if err != nil {
		return nil, fmt.Errorf("failed to read history: %w", err)
	}

	out := make([]Envelope, 0, len(vals))
	for i := len(vals) - 1; i >= 0; i-- {
		var env Envelope
		if err := json.Unmarshal([]byte(vals[i]), &env); err != nil {
			return nil, fmt.Errorf("failed to unmarshal envelope: %w", err)
		}
		out = append(out, env)
	}
	return out, nil
}

// Watch subscribes to events whose name matches pattern (Redis glob syntax,
// "*" for everything). The channel is closed when ctx is done or the
// subscription ends. Undecodable messages are logged and skipped.
func (n *Notifier) Watch(ctx context.Context, pattern string) (<-chan domain.ModelEvent, error) {
	sub := n.client.PSubscribe(ctx, n.prefix+pattern)

	// Wait for the subscription confirmation so no event published after Watch
	// returns is missed.
	if _, err := sub.Receive(ctx); err != nil {
		_ = sub.Close()
		return nil, fmt.Errorf("failed to subscribe: %w", err)
	}

	out := make(chan domain.ModelEvent, watchBuffer)
	go func() {
		defer close(out)
		defer sub.Close()

		msgs := sub.Channel()
		for {
			select {
			case <-ctx.Done():
				return
			case msg, ok := <-msgs:
				if !ok {
					return
				}
				var env Envelope
				if err := json.Unmarshal([]byte(msg.Payload), &env); err != nil {
					n.logger.Warn("Discarding malformed event", "channel", msg.Channel, "error", err)
					continue
				}
				select {
				case out <- env.ModelEvent():
				case <-ctx.Done():
					return
				}
			}
		}
	}()

	return out, nil
}

// Close closes the redis client.
func (n *Notifier) Close() error {
	if n.closed.Swap(true) {
		return nil
	}
	return n.client.Close()
}

func (n *Notifier) encode(event string, payload any) ([]byte, error) {
	env := Envelope{
		Event:     event,
		Model:     typeName(payload),
		Timestamp: n.now().UTC(),
	}
	if payload != nil {
		raw, err := json.Marshal(payload)
		if err != nil {
			return nil, fmt.Errorf("failed to marshal payload: %w", err)
		}
		env.Payload = raw
	}

	body, err := json.Marshal(env)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal envelope: %w", err)
	}
	return body, nil
}

func typeName(v any) string {
	if v == nil {
		return ""
	}
	t := reflect.TypeOf(v)
	for t.Kind() == reflect.Ptr {
		t = t.Elem()
	}
	return t.Name()
}
