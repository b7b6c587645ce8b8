package sneequals

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/indutny/sneequals/value"
)

// pickY derives {y: arg0.x.y}.
func pickY(args ...value.Value) value.Value {
	root := args[0].(value.Obj)
	return value.ObjectOf(value.P("y", root.Get("x").(value.Obj).Get("y")))
}

func TestMemoizeHitOnSneakyEqualInput(t *testing.T) {
	calls := 0
	memo := Memoize(func(args ...value.Value) value.Value {
		calls++
		return pickY(args...)
	})

	first := memo(mkInput(1, 2))
	// Structurally sneaky-equal but reference-distinct input.
	second := memo(mkInput(1, 99))

	assert.Equal(t, 1, calls, "second call must be a cache hit")
	assert.Same(t, first, second, "cache hits return the same result reference")
	assert.Equal(t, value.Int(1), first.(value.Obj).Get("y"))
}

func TestMemoizeMissOnTrackedFieldChange(t *testing.T) {
	calls := 0
	memo := Memoize(func(args ...value.Value) value.Value {
		calls++
		return pickY(args...)
	})

	memo(mkInput(1, 2))
	out := memo(mkInput(2, 2))

	assert.Equal(t, 2, calls, "tracked x.y changed, fn must re-run")
	assert.Equal(t, value.Int(2), out.(value.Obj).Get("y"))
}

func TestMemoizeObservers(t *testing.T) {
	hits := 0
	misses := 0
	var lastPrev []value.Value

	memo := Memoize(pickY,
		WithOnHit(func() { hits++ }),
		WithOnMiss(func(s *Session, args, prev []value.Value) {
			misses++
			lastPrev = prev
			require.NotNil(t, s)
			require.Len(t, args, 1)
		}),
	)

	a := mkInput(1, 2)
	memo(a)
	assert.Equal(t, 0, hits)
	assert.Equal(t, 1, misses)
	assert.Nil(t, lastPrev, "no previous entry on the first miss")

	memo(mkInput(1, 3))
	assert.Equal(t, 1, hits)
	assert.Equal(t, 1, misses)

	memo(mkInput(5, 3))
	assert.Equal(t, 1, hits)
	assert.Equal(t, 2, misses)
	require.Len(t, lastPrev, 1)
	assert.Same(t, value.Value(a), lastPrev[0], "previous entry's sources passed to the observer")
}

func TestMemoizeSingleSlotEvictsOnDifferentArgs(t *testing.T) {
	calls := 0
	memo := Memoize(func(args ...value.Value) value.Value {
		calls++
		return pickY(args...)
	})

	a := mkInput(1, 2)
	b := mkInput(7, 2)

	memo(a)
	memo(b)
	memo(a)

	assert.Equal(t, 3, calls, "single last-value slot: alternating inputs always miss")
}

func TestMemoizeKeyedCacheKeepsOneEntryPerFirstArg(t *testing.T) {
	calls := 0
	memo := Memoize(func(args ...value.Value) value.Value {
		calls++
		return pickY(args...)
	}, WithKeyedCache())

	a := mkInput(1, 2)
	b := mkInput(7, 2)

	ra1 := memo(a)
	rb1 := memo(b)
	ra2 := memo(a)
	rb2 := memo(b)

	assert.Equal(t, 2, calls, "each first-arg identity retains its own entry")
	assert.Same(t, ra1, ra2)
	assert.Same(t, rb1, rb2)
}

func TestMemoizeKeyedCacheScalarArgsUseSlot(t *testing.T) {
	var sessions []*Session
	calls := 0
	memo := Memoize(func(args ...value.Value) value.Value {
		calls++
		return value.Int(int64(args[0].(value.Int)) * 2)
	},
		WithKeyedCache(),
		WithOnMiss(func(s *Session, _, _ []value.Value) {
			sessions = append(sessions, s)
		}),
	)

	assert.Equal(t, value.Int(4), memo(value.Int(2)))
	assert.Equal(t, value.Int(4), memo(value.Int(2)))
	assert.Equal(t, 1, calls, "identical scalar args hit the fallback slot")

	assert.Equal(t, value.Int(6), memo(value.Int(3)))
	assert.Equal(t, 2, calls)
	require.Len(t, sessions, 2)
	assert.True(t, sessions[0].Ended(), "replaced slot entry's session is discarded")
}

func TestMemoizeAcceptsFacadeArguments(t *testing.T) {
	// Nested memoization: the outer session's facade is resolved to its
	// Source before lookup and tracking.
	src := mkInput(1, 2)
	outer := NewSession()
	facade := outer.Track(src)

	calls := 0
	memo := Memoize(func(args ...value.Value) value.Value {
		calls++
		return pickY(args...)
	})

	first := memo(facade)
	second := memo(src)

	assert.Equal(t, 1, calls, "facade and Source are the same cache key")
	assert.Same(t, first, second)
}

func TestMemoizePreviousSessionEndedOnReplacement(t *testing.T) {
	var sessions []*Session
	memo := Memoize(pickY, WithOnMiss(func(s *Session, _, _ []value.Value) {
		sessions = append(sessions, s)
	}))

	memo(mkInput(1, 2))
	memo(mkInput(2, 2))

	require.Len(t, sessions, 2)
	assert.True(t, sessions[0].Ended(), "replaced entry's session is discarded")
	assert.False(t, sessions[1].Ended(), "live entry's session stays open")
}

func TestMemoizeMultipleArgs(t *testing.T) {
	join := func(args ...value.Value) value.Value {
		a := args[0].(value.Obj)
		b := args[1].(value.Obj)
		return value.ObjectOf(
			value.P("left", a.Get("x").(value.Obj).Get("y")),
			value.P("right", b.Get("z")),
		)
	}

	calls := 0
	memo := Memoize(func(args ...value.Value) value.Value {
		calls++
		return join(args...)
	})

	memo(mkInput(1, 2), mkInput(3, 4))
	memo(mkInput(1, 9), mkInput(8, 4))
	assert.Equal(t, 1, calls, "every positional argument compared sneakily")

	memo(mkInput(1, 9), mkInput(8, 5))
	assert.Equal(t, 2, calls, "second argument's tracked z changed")
}

func TestMemoizeScalarArgs(t *testing.T) {
	calls := 0
	memo := Memoize(func(args ...value.Value) value.Value {
		calls++
		return value.Int(int64(args[0].(value.Int)) * 2)
	})

	assert.Equal(t, value.Int(4), memo(value.Int(2)))
	assert.Equal(t, value.Int(4), memo(value.Int(2)))
	assert.Equal(t, 1, calls)

	assert.Equal(t, value.Int(6), memo(value.Int(3)))
	assert.Equal(t, 2, calls)
}

func TestMemoizeArgCountChangeMisses(t *testing.T) {
	calls := 0
	memo := Memoize(func(args ...value.Value) value.Value {
		calls++
		return value.Int(int64(len(args)))
	})

	memo(value.Int(1))
	memo(value.Int(1), value.Int(2))
	assert.Equal(t, 2, calls)
}
