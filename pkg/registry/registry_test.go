package registry

import (
	"context"
	"errors"
	"math"
	"sync"
	"testing"

	"github.com/aretw0/eventable/pkg/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRegistry_RegisterAndLookup(t *testing.T) {
	reg := NewRegistry()

	reg.RegisterAction("publish", func(ctx context.Context, params ...any) (any, error) {
		return len(params), nil
	})

	fn, ok := reg.Lookup("actionPublish")
	require.True(t, ok, "RegisterAction should derive the handler name")

	got, err := fn(context.Background(), 1, 2, 3)
	require.NoError(t, err)
	assert.Equal(t, 3, got)

	_, ok = reg.Lookup("publish")
	assert.False(t, ok, "Lookup is an exact match on handler names")
}

func TestRegistry_Overwrite(t *testing.T) {
	reg := NewRegistry()
	reg.Register("actionPublish", func(ctx context.Context, params ...any) (any, error) { return "old", nil })
	reg.Register("actionPublish", func(ctx context.Context, params ...any) (any, error) { return "new", nil })

	fn, ok := reg.Lookup("actionPublish")
	require.True(t, ok)
	got, _ := fn(context.Background())
	assert.Equal(t, "new", got)
	assert.Equal(t, 1, reg.Len())
}

func TestRegistry_NamesAndUnregister(t *testing.T) {
	reg := NewRegistry()
	noop := func(ctx context.Context, params ...any) (any, error) { return nil, nil }
	reg.RegisterAction("publish", noop)
	reg.RegisterAction("archive", noop)

	assert.Equal(t, []string{"actionArchive", "actionPublish"}, reg.Names())

	reg.Unregister("actionArchive")
	reg.Unregister("actionMissing")
	assert.Equal(t, []string{"actionPublish"}, reg.Names())
}

func TestRegistry_ConcurrentAccess(t *testing.T) {
	reg := NewRegistry()
	noop := func(ctx context.Context, params ...any) (any, error) { return nil, nil }

	var wg sync.WaitGroup
	for i := 0; i < 50; i++ {
		wg.Add(2)
		go func() {
			defer wg.Done()
			reg.RegisterAction("publish", noop)
		}()
		go func() {
			defer wg.Done()
			_, _ = reg.Lookup("actionPublish")
			_ = reg.Names()
		}()
	}
	wg.Wait()

	assert.Equal(t, 1, reg.Len())
}

// --- Bind ---

type basePost struct {
	archived bool
}

func (b *basePost) ActionArchive() {
	b.archived = true
}

type post struct {
	basePost
	published []any
	tags      []string
}

func (p *post) ActionPublish(id int, title string) {
	p.published = []any{id, title}
}

func (p *post) ActionTag(ctx context.Context, tags ...string) int {
	p.tags = append(p.tags, tags...)
	return len(p.tags)
}

func (p *post) ActionFail() error {
	return errors.New("boom")
}

func (p *post) ActionRename(name string) (string, error) {
	if name == "" {
		return "", errors.New("empty name")
	}
	return "renamed:" + name, nil
}

func (p *post) ActionAttach(meta map[string]any) bool {
	return meta == nil
}

// Actions must not be mistaken for a handler: the suffix is lowercase.
func (p *post) Actions() []string { return nil }

// Publish is an ordinary method and must be ignored.
func (p *post) Publish() {}

func TestBind_RegistersConventionMethods(t *testing.T) {
	reg := NewRegistry()
	p := &post{}

	n, err := reg.Bind(p)
	require.NoError(t, err)
	assert.Equal(t, 6, n)
	assert.Equal(t, []string{
		"actionArchive",
		"actionAttach",
		"actionFail",
		"actionPublish",
		"actionRename",
		"actionTag",
	}, reg.Names())
}

func TestBind_InvokesWithParameters(t *testing.T) {
	reg := NewRegistry()
	p := &post{}
	_, err := reg.Bind(p)
	require.NoError(t, err)
	ctx := context.Background()

	t.Run("Exact Types", func(t *testing.T) {
		fn, _ := reg.Lookup("actionPublish")
		res, err := fn(ctx, 42, "x")
		require.NoError(t, err)
		assert.Nil(t, res)
		assert.Equal(t, []any{42, "x"}, p.published)
	})

	t.Run("Numeric Conversion From JSON", func(t *testing.T) {
		fn, _ := reg.Lookup("actionPublish")
		_, err := fn(ctx, float64(7), "json")
		require.NoError(t, err)
		assert.Equal(t, []any{7, "json"}, p.published)
	})

	t.Run("Promoted Method", func(t *testing.T) {
		fn, _ := reg.Lookup("actionArchive")
		_, err := fn(ctx)
		require.NoError(t, err)
		assert.True(t, p.archived)
	})

	t.Run("Context And Variadic", func(t *testing.T) {
		fn, _ := reg.Lookup("actionTag")
		res, err := fn(ctx, "go", "events")
		require.NoError(t, err)
		assert.Equal(t, 2, res)

		res, err = fn(ctx)
		require.NoError(t, err)
		assert.Equal(t, 2, res)
	})

	t.Run("Error Return", func(t *testing.T) {
		fn, _ := reg.Lookup("actionFail")
		_, err := fn(ctx)
		assert.EqualError(t, err, "boom")
	})

	t.Run("Value And Error Return", func(t *testing.T) {
		fn, _ := reg.Lookup("actionRename")
		res, err := fn(ctx, "draft")
		require.NoError(t, err)
		assert.Equal(t, "renamed:draft", res)

		_, err = fn(ctx, "")
		assert.EqualError(t, err, "empty name")
	})

	t.Run("Nil For Nilable Parameter", func(t *testing.T) {
		fn, _ := reg.Lookup("actionAttach")
		res, err := fn(ctx, nil)
		require.NoError(t, err)
		assert.Equal(t, true, res)
	})
}

func TestBind_ArgumentMismatch(t *testing.T) {
	reg := NewRegistry()
	p := &post{}
	_, err := reg.Bind(p)
	require.NoError(t, err)
	ctx := context.Background()
	publish, _ := reg.Lookup("actionPublish")

	tests := []struct {
		name   string
		params []any
	}{
		{name: "Too Few", params: []any{1}},
		{name: "Too Many", params: []any{1, "x", "y"}},
		{name: "Wrong Type", params: []any{"one", "x"}},
		{name: "Fractional Float", params: []any{1.5, "x"}},
		{name: "Nil For Value Type", params: []any{nil, "x"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := publish(ctx, tt.params...)
			assert.ErrorIs(t, err, domain.ErrArgumentMismatch)
		})
	}

	assert.Nil(t, p.published, "Handler must not run on mismatch")

	tag, _ := reg.Lookup("actionTag")
	_, err = tag(ctx, "ok", 3)
	assert.ErrorIs(t, err, domain.ErrArgumentMismatch, "Variadic elements are checked too")
}

type gauge struct {
	level int8
	count uint
	total int
	ratio float32
}

func (g *gauge) ActionLevel(v int8)    { g.level = v }
func (g *gauge) ActionCount(v uint)    { g.count = v }
func (g *gauge) ActionTotal(v int)     { g.total = v }
func (g *gauge) ActionRatio(v float32) { g.ratio = v }

func TestBind_NumericRange(t *testing.T) {
	reg := NewRegistry()
	g := &gauge{}
	_, err := reg.Bind(g)
	require.NoError(t, err)
	ctx := context.Background()

	call := func(action string, v any) error {
		fn, ok := reg.Lookup(domain.HandlerName(action))
		if !ok {
			return errors.New("no handler for " + action)
		}
		_, err := fn(ctx, v)
		return err
	}

	rejected := []struct {
		name   string
		action string
		value  any
	}{
		{name: "Int Overflows Int8", action: "level", value: 300},
		{name: "Float Overflows Int8", action: "level", value: float64(1000)},
		{name: "Negative Float To Uint", action: "count", value: float64(-1)},
		{name: "Negative Int To Uint", action: "count", value: -1},
		{name: "Positive Infinity", action: "total", value: math.Inf(1)},
		{name: "Negative Infinity", action: "total", value: math.Inf(-1)},
		{name: "NaN", action: "total", value: math.NaN()},
		{name: "Float Beyond Int64", action: "total", value: 1e19},
		{name: "Uint Beyond Int64", action: "total", value: uint64(math.MaxUint64)},
		{name: "Float64 Overflows Float32", action: "ratio", value: 1e300},
	}

	for _, tt := range rejected {
		t.Run(tt.name, func(t *testing.T) {
			assert.ErrorIs(t, call(tt.action, tt.value), domain.ErrArgumentMismatch)
		})
	}
	assert.Equal(t, gauge{}, *g, "Handlers must not run on rejected values")

	require.NoError(t, call("level", float64(-128)))
	require.NoError(t, call("count", float64(42)))
	require.NoError(t, call("total", int64(-7)))
	require.NoError(t, call("ratio", 0.5))
	assert.Equal(t, gauge{level: -128, count: 42, total: -7, ratio: 0.5}, *g)
}

type badSignature struct{}

func (badSignature) ActionBroken() (int, string) { return 0, "" }

func TestBind_RejectsUnsupportedSignature(t *testing.T) {
	reg := NewRegistry()
	_, err := reg.Bind(badSignature{})
	assert.Error(t, err)
	assert.Equal(t, 0, reg.Len())
}

func TestBind_NilReceiver(t *testing.T) {
	reg := NewRegistry()
	var p *post

	_, err := reg.Bind(p)
	assert.Error(t, err)

	_, err = reg.Bind(nil)
	assert.Error(t, err)
}
