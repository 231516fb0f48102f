package memory_test

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/aretw0/eventable/pkg/adapters/memory"
	"github.com/aretw0/eventable/pkg/domain"
	"github.com/aretw0/eventable/pkg/ports"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var _ ports.HaltingNotifier = (*memory.Dispatcher)(nil)

func TestMemoryDispatcher_Contract(t *testing.T) {
	d := memory.New()
	rec := &memory.Recorder{}
	d.ListenAll(rec.Listen)

	ports.RunNotifierContract(t, d, rec.Count)
}

func TestMemoryDispatcher_ListenerOrder(t *testing.T) {
	d := memory.New()
	var order []string

	d.ListenAll(func(ctx context.Context, ev domain.ModelEvent) error {
		order = append(order, "wildcard")
		return nil
	})
	d.Listen("beforePublish", func(ctx context.Context, ev domain.ModelEvent) error {
		order = append(order, "first")
		return nil
	})
	d.Listen("beforePublish", func(ctx context.Context, ev domain.ModelEvent) error {
		order = append(order, "second")
		return nil
	})
	d.Listen("afterPublish", func(ctx context.Context, ev domain.ModelEvent) error {
		order = append(order, "other")
		return nil
	})

	require.NoError(t, d.Notify(context.Background(), "beforePublish", nil))
	assert.Equal(t, []string{"first", "second", "wildcard"}, order)
}

func TestMemoryDispatcher_EventCarriesPayload(t *testing.T) {
	fixed := time.Date(2026, 1, 2, 3, 4, 5, 0, time.UTC)
	d := memory.New(memory.WithClock(func() time.Time { return fixed }))
	rec := &memory.Recorder{}
	d.ListenAll(rec.Listen)

	model := &struct{ ID string }{ID: "m-1"}
	require.NoError(t, d.Notify(context.Background(), "afterArchive", model))

	events := rec.Events()
	require.Len(t, events, 1)
	assert.Equal(t, "afterArchive", events[0].Name)
	assert.Same(t, model, events[0].Payload)
	assert.Equal(t, fixed, events[0].Timestamp)
}

func TestMemoryDispatcher_Veto(t *testing.T) {
	d := memory.New()
	var reached bool

	d.Listen("beforeDelete", func(ctx context.Context, ev domain.ModelEvent) error {
		return domain.ErrEventHalted
	})
	d.Listen("beforeDelete", func(ctx context.Context, ev domain.ModelEvent) error {
		reached = true
		return nil
	})

	ctx := context.Background()

	proceed, err := d.Until(ctx, "beforeDelete", nil)
	require.NoError(t, err)
	assert.False(t, proceed, "Until should report the veto")
	assert.False(t, reached, "A veto stops propagation")

	err = d.Notify(ctx, "beforeDelete", nil)
	assert.NoError(t, err, "Notify ignores the veto")
	assert.False(t, reached)
}

func TestMemoryDispatcher_ListenerError(t *testing.T) {
	d := memory.New()
	errListener := errors.New("listener failed")
	var reached bool

	d.Listen("afterSave", func(ctx context.Context, ev domain.ModelEvent) error {
		return errListener
	})
	d.Listen("afterSave", func(ctx context.Context, ev domain.ModelEvent) error {
		reached = true
		return nil
	})

	err := d.Notify(context.Background(), "afterSave", nil)
	assert.ErrorIs(t, err, errListener)
	assert.False(t, reached)

	proceed, err := d.Until(context.Background(), "afterSave", nil)
	assert.ErrorIs(t, err, errListener)
	assert.False(t, proceed)
}

func TestMemoryDispatcher_Unsubscribe(t *testing.T) {
	d := memory.New()
	rec := &memory.Recorder{}

	stop := d.Listen("afterSave", rec.Listen)
	assert.True(t, d.HasListeners("afterSave"))

	require.NoError(t, d.Notify(context.Background(), "afterSave", nil))
	stop()
	stop()
	require.NoError(t, d.Notify(context.Background(), "afterSave", nil))

	assert.Equal(t, 1, rec.Count("afterSave"))
	assert.False(t, d.HasListeners("afterSave"))

	stopAll := d.ListenAll(rec.Listen)
	assert.True(t, d.HasListeners("anything"))
	stopAll()
	assert.False(t, d.HasListeners("anything"))
}

func TestMemoryDispatcher_ConcurrentNotify(t *testing.T) {
	d := memory.New()
	rec := &memory.Recorder{}
	d.ListenAll(rec.Listen)

	var wg sync.WaitGroup
	n := 100
	wg.Add(n)
	for i := 0; i < n; i++ {
		go func() {
			defer wg.Done()
			_ = d.Notify(context.Background(), "afterPublish", nil)
		}()
	}
	wg.Wait()

	assert.Equal(t, n, rec.Count("afterPublish"))

	rec.Reset()
	assert.Empty(t, rec.Names())
}
