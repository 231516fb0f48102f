package redis_test

import (
	"context"
	"encoding/json"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/aretw0/eventable/pkg/adapters/redis"
	"github.com/aretw0/eventable/pkg/domain"
	"github.com/aretw0/eventable/pkg/ports"
	backend "github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type article struct {
	ID    string `json:"id"`
	Title string `json:"title"`
}

func setup(t *testing.T) (*miniredis.Miniredis, *backend.Client) {
	t.Helper()
	mr, err := miniredis.Run()
	require.NoError(t, err, "Failed to start miniredis")
	t.Cleanup(mr.Close)

	client := backend.NewClient(&backend.Options{
		Addr:     mr.Addr(),
		Protocol: 2,
	})
	t.Cleanup(func() { _ = client.Close() })
	return mr, client
}

func TestRedisNotifier_Contract(t *testing.T) {
	_, client := setup(t)
	n := redis.NewFromClient(client, redis.WithHistory(100))

	ports.RunNotifierContract(t, n, func(event string) int {
		history, err := n.History(context.Background(), event)
		require.NoError(t, err)
		return len(history)
	})
}

func TestRedisNotifier_Envelope(t *testing.T) {
	_, client := setup(t)
	n := redis.NewFromClient(client, redis.WithHistory(10))
	ctx := context.Background()

	require.NoError(t, n.Notify(ctx, "beforePublish", &article{ID: "a-1", Title: "Hello"}))

	history, err := n.History(ctx, "beforePublish")
	require.NoError(t, err)
	require.Len(t, history, 1)

	env := history[0]
	assert.Equal(t, "beforePublish", env.Event)
	assert.Equal(t, "article", env.Model)
	assert.False(t, env.Timestamp.IsZero())

	var got article
	require.NoError(t, json.Unmarshal(env.Payload, &got))
	assert.Equal(t, article{ID: "a-1", Title: "Hello"}, got)
}

func TestRedisNotifier_HistoryIsCapped(t *testing.T) {
	mr, client := setup(t)
	n := redis.NewFromClient(client, redis.WithHistory(2), redis.WithPrefix("app:"))
	ctx := context.Background()

	for i := 0; i < 5; i++ {
		require.NoError(t, n.Notify(ctx, "afterPublish", map[string]int{"seq": i}))
	}

	list, err := mr.List("app:history:afterPublish")
	require.NoError(t, err)
	assert.Len(t, list, 2)

	history, err := n.History(ctx, "afterPublish")
	require.NoError(t, err)
	require.Len(t, history, 2)
	assert.JSONEq(t, `{"seq":3}`, string(history[0].Payload), "History is oldest first")
	assert.JSONEq(t, `{"seq":4}`, string(history[1].Payload))
}

func TestRedisNotifier_NoHistoryByDefault(t *testing.T) {
	mr, client := setup(t)
	n := redis.NewFromClient(client)

	require.NoError(t, n.Notify(context.Background(), "afterPublish", nil))
	assert.False(t, mr.Exists(redis.DefaultPrefix+"history:afterPublish"))
}

func TestRedisNotifier_UnserializablePayload(t *testing.T) {
	_, client := setup(t)
	n := redis.NewFromClient(client)

	err := n.Notify(context.Background(), "beforePublish", map[string]any{"fn": func() {}})
	assert.Error(t, err)
}

func TestRedisNotifier_Watch(t *testing.T) {
	_, client := setup(t)
	n := redis.NewFromClient(client)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	events, err := n.Watch(ctx, "*Publish")
	require.NoError(t, err)

	require.NoError(t, n.Notify(context.Background(), "beforePublish", &article{ID: "a-2"}))
	require.NoError(t, n.Notify(context.Background(), "beforeArchive", &article{ID: "a-2"}))
	require.NoError(t, n.Notify(context.Background(), "afterPublish", &article{ID: "a-2"}))

	var got []string
	timeout := time.After(2 * time.Second)
	for len(got) < 2 {
		select {
		case ev := <-events:
			got = append(got, ev.Name)
			assert.JSONEq(t, `{"id":"a-2","title":""}`, string(ev.Payload.(json.RawMessage)))
			assert.False(t, ev.Timestamp.IsZero())
		case <-timeout:
			t.Fatalf("Timed out waiting for events, got %v", got)
		}
	}
	assert.Equal(t, []string{"beforePublish", "afterPublish"}, got)

	cancel()
	select {
	case _, ok := <-events:
		for ok {
			_, ok = <-events
		}
	case <-time.After(2 * time.Second):
		t.Fatal("Watch channel should close after cancel")
	}
}

func TestRedisNotifier_Channel(t *testing.T) {
	n := redis.NewFromClient(backend.NewClient(&backend.Options{}), redis.WithPrefix("custom:"))
	assert.Equal(t, "custom:afterPublish", n.Channel("afterPublish"))
}

func TestRedisNotifier_Closed(t *testing.T) {
	mr, err := miniredis.Run()
	require.NoError(t, err)
	t.Cleanup(mr.Close)

	n := redis.New(mr.Addr(), "", 0)
	require.NoError(t, n.Close())
	require.NoError(t, n.Close(), "closing twice is a no-op")

	err = n.Notify(context.Background(), "afterPublish", nil)
	assert.ErrorIs(t, err, domain.ErrNotifierClosed)
}
