package sneequals

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/indutny/sneequals/value"
)

func TestUnwrapScalarsPassThrough(t *testing.T) {
	s := NewSession()

	assert.Equal(t, value.Int(1), s.Unwrap(value.Int(1)))
	assert.Equal(t, value.Null{}, s.Unwrap(value.Null{}))
	assert.Equal(t, value.Opaque{V: "x"}, s.Unwrap(value.Opaque{V: "x"}))
}

func TestUnwrapDirectFacadeReturnsSource(t *testing.T) {
	s := NewSession()
	src := value.ObjectOf(value.P("a", value.Int(1)))

	tracked := s.Track(src)
	out := s.Unwrap(tracked)

	assert.Same(t, value.Value(src), out)

	// Whole-reference use: any structural difference now counts.
	assert.True(t, s.IsChanged(src, value.ObjectOf(value.P("a", value.Int(1)))))
}

func TestUnwrapStripsNestedFacades(t *testing.T) {
	inner := value.ObjectOf(value.P("y", value.Int(1)))
	src := value.ObjectOf(value.P("x", inner))

	s := NewSession()
	tracked := s.Track(src).(value.Obj)

	derived := value.ObjectOf(value.P("picked", tracked.Get("x")))
	out := s.Unwrap(derived).(*value.Object)

	assert.Same(t, value.Value(derived), value.Value(out), "fresh unfrozen containers are fixed in place")
	assert.Same(t, value.Value(inner), out.Get("picked"), "facade replaced by its Source")
}

func TestUnwrapRecordsParentKeyForComposition(t *testing.T) {
	inner := value.ObjectOf(value.P("y", value.Int(1)))
	src := value.ObjectOf(value.P("x", inner))

	s := NewSession()
	tracked := s.Track(src).(value.Obj)
	derived := value.ObjectOf(
		value.P("picked", tracked.Get("x")),
		value.P("plain", value.Int(7)),
	)
	result := s.Unwrap(derived).(*value.Object)
	s.End()

	// The result graph composes: comparing the result against a candidate
	// in the same session recurses into the stripped field.
	lookalike := value.ObjectOf(
		value.P("picked", value.ObjectOf(value.P("y", value.Int(1)))),
		value.P("plain", value.Int(7)),
	)
	assert.True(t, s.IsChanged(result, lookalike),
		"picked was used whole by reference, a distinct object is a change")

	sameInner := value.ObjectOf(
		value.P("picked", inner),
		value.P("plain", value.Int(99)),
	)
	assert.False(t, s.IsChanged(result, sameInner),
		"same picked identity; plain was never recorded")
}

func TestUnwrapDeeplyNestedInFreshContainers(t *testing.T) {
	leaf := value.ObjectOf(value.P("n", value.Int(1)))
	src := value.ObjectOf(value.P("leaf", leaf))

	s := NewSession()
	tracked := s.Track(src).(value.Obj)

	derived := value.ObjectOf(value.P("wrap",
		value.NewArray(tracked.Get("leaf"), value.Int(2))))
	out := s.Unwrap(derived).(*value.Object)

	arr := out.Get("wrap").(*value.Array)
	assert.Same(t, value.Value(leaf), arr.Index(0))
	assert.Equal(t, value.Int(2), arr.Index(1))
}

func TestUnwrapFrozenFreshContainerIsCopied(t *testing.T) {
	inner := value.ObjectOf(value.P("y", value.Int(1)))
	src := value.ObjectOf(value.P("x", inner))

	s := NewSession()
	tracked := s.Track(src).(value.Obj)

	derived := value.ObjectOf(value.P("picked", tracked.Get("x"))).Freeze()
	out := s.Unwrap(derived).(*value.Object)

	require.NotSame(t, value.Value(derived), value.Value(out), "frozen result swaps to an unfrozen copy")
	assert.Same(t, value.Value(inner), out.Get("picked"))

	// The frozen original still holds the facade; the copy is clean.
	_, isFacade := derived.Get("picked").(sourced)
	assert.True(t, isFacade)
}

func TestUnwrapCyclicResultTerminates(t *testing.T) {
	s := NewSession()
	src := value.ObjectOf(value.P("a", value.Int(1)))
	tracked := s.Track(src)

	derived := value.NewObject()
	derived.Set("self", derived)
	derived.Set("picked", tracked)

	out := s.Unwrap(derived).(*value.Object)

	assert.Same(t, value.Value(derived), value.Value(out))
	assert.Same(t, value.Value(derived), out.Get("self"), "cycle left intact")
	assert.Same(t, value.Value(src), out.Get("picked"))
}

func TestUnwrapUntrackedGraphUnchanged(t *testing.T) {
	s := NewSession()
	fresh := value.ObjectOf(
		value.P("a", value.NewArray(value.Int(1))),
		value.P("b", value.String("x")),
	)

	out := s.Unwrap(fresh)

	assert.Same(t, value.Value(fresh), out)
}

func TestUnwrapAfterEndPanics(t *testing.T) {
	s := NewSession()
	s.End()
	assertRevokedPanic(t, func() { s.Unwrap(value.NewObject()) })
}

func TestUnwrapAcrossSessions(t *testing.T) {
	// A facade from one session embedded in another session's result still
	// resolves, and the terminal mark lands in its owning session.
	src := value.ObjectOf(value.P("a", value.Int(1)))
	outer := NewSession()
	outerTracked := outer.Track(src)

	inner := NewSession()
	derived := value.ObjectOf(value.P("ref", outerTracked))
	out := inner.Unwrap(derived).(*value.Object)

	assert.Same(t, value.Value(src), out.Get("ref"))
	assert.True(t, outer.IsChanged(src, value.ObjectOf(value.P("a", value.Int(1)))),
		"whole-reference use recorded in the owning session")
}
