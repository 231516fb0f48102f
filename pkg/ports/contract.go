package ports

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type contractModel struct {
	ID    string `json:"id"`
	Title string `json:"title"`
}

// RunNotifierContract runs a suite of tests to verify that a Notifier implementation
// adheres to the defined interface contract.
// received must report how many times the given event reached the backend.
func RunNotifierContract(t *testing.T, n Notifier, received func(event string) int) {
	ctx := context.Background()
	model := &contractModel{ID: "contract-1", Title: "Contract"}

	t.Run("Notify Delivers", func(t *testing.T) {
		err := n.Notify(ctx, "beforeContract", model)
		require.NoError(t, err, "Notify should not return error")
		assert.Equal(t, 1, received("beforeContract"))
	})

	t.Run("Events Are Isolated", func(t *testing.T) {
		require.NoError(t, n.Notify(ctx, "afterContract", model))
		require.NoError(t, n.Notify(ctx, "afterContract", model))

		assert.Equal(t, 2, received("afterContract"))
		assert.Equal(t, 1, received("beforeContract"), "Other events must not be affected")
	})

	t.Run("Nil Payload", func(t *testing.T) {
		err := n.Notify(ctx, "nilContract", nil)
		require.NoError(t, err)
		assert.Equal(t, 1, received("nilContract"))
	})

	t.Run("Canceled Context", func(t *testing.T) {
		canceled, cancel := context.WithCancel(ctx)
		cancel()

		err := n.Notify(canceled, "canceledContract", model)
		assert.ErrorIs(t, err, context.Canceled)
		assert.Equal(t, 0, received("canceledContract"))
	})

	h, ok := n.(HaltingNotifier)
	if !ok {
		return
	}

	t.Run("Until Without Veto", func(t *testing.T) {
		proceed, err := h.Until(ctx, "untilContract", model)
		require.NoError(t, err)
		assert.True(t, proceed, "Until should proceed when no listener vetoes")
		assert.Equal(t, 1, received("untilContract"))
	})
}
