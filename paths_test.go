package sneequals

import (
	"testing"

	"github.com/sebdah/goldie/v2"
	"github.com/stretchr/testify/assert"

	"github.com/indutny/sneequals/value"
)

func TestAffectedPathsMixedAccessModes(t *testing.T) {
	input := value.ObjectOf(
		value.P("user", value.ObjectOf(
			value.P("name", value.String("carol")),
			value.P("role", value.String("admin")),
		)),
		value.P("items", value.NewArray(value.Int(10), value.Int(20))),
		value.P("meta", value.ObjectOf(value.P("v", value.Int(1)))),
	)

	s := NewSession()
	root := s.Track(input).(value.Obj)

	user := root.Get("user").(value.Obj)
	user.Get("name")
	user.Has("role")

	items := root.Get("items").(value.Arr)
	items.Len()
	items.Index(0)

	root.Get("meta").(value.Obj).Keys()
	s.End()

	g := goldie.New(t)
	g.Assert(t, "paths_mixed", []byte(PathList(s.AffectedPaths(input))))
}

func TestAffectedPathsTerminalChild(t *testing.T) {
	input := value.ObjectOf(
		value.P("sub", value.ObjectOf(value.P("y", value.Int(1)))),
		value.P("z", value.Int(2)),
	)

	s := NewSession()
	root := s.Track(input).(value.Obj)
	s.Unwrap(root.Get("sub"))
	s.End()

	g := goldie.New(t)
	g.Assert(t, "paths_terminal_child", []byte(PathList(s.AffectedPaths(input))))
}

func TestAffectedPathsTerminalRoot(t *testing.T) {
	input := value.ObjectOf(value.P("a", value.Int(1)))

	s := NewSession()
	s.Unwrap(s.Track(input))
	s.End()

	assert.Equal(t, []string{"$#self"}, s.AffectedPaths(input))
}

func TestAffectedPathsOwnKeyChecks(t *testing.T) {
	input := value.ObjectOf(value.P("a", value.Int(1)))

	s := NewSession()
	root := s.Track(input).(value.Obj)
	root.HasOwn("a")
	root.HasOwn("b")
	s.End()

	assert.Equal(t, []string{"$#own:a", "$#own:b"}, s.AffectedPaths(input))
}

func TestAffectedPathsAwkwardKeysQuoted(t *testing.T) {
	input := value.ObjectOf(
		value.P("plain", value.Int(1)),
		value.P("with space", value.Int(2)),
		value.P("7", value.Int(3)),
	)

	s := NewSession()
	root := s.Track(input).(value.Obj)
	root.Get("plain")
	root.Get("with space")
	root.Get("7")
	s.End()

	assert.Equal(t,
		[]string{"$.plain", `$["with space"]`, "$[7]"},
		s.AffectedPaths(input))
}

func TestAffectedPathsUntouchedValue(t *testing.T) {
	s := NewSession()

	assert.Equal(t, []string{"$"}, s.AffectedPaths(value.NewObject()),
		"no ledger entry reads as one opaque touch of the root")
	assert.Equal(t, []string{"$"}, s.AffectedPaths(value.Int(1)))
}

func TestAffectedPathsCycleGuard(t *testing.T) {
	input := value.NewObject()
	input.Set("self", input)
	input.Set("n", value.Int(1))

	s := NewSession()
	root := s.Track(input).(value.Obj)
	root.Get("n")
	root.Get("self").(value.Obj).Get("n")
	s.End()

	paths := s.AffectedPaths(input)
	assert.Equal(t, []string{"$.n"}, paths,
		"self edge resolves back to the visited root and is not re-entered")
}

func TestAffectedPathsInsertionOrderIsStable(t *testing.T) {
	input := value.ObjectOf(
		value.P("a", value.Int(1)),
		value.P("b", value.Int(2)),
		value.P("c", value.Int(3)),
	)

	s := NewSession()
	root := s.Track(input).(value.Obj)
	root.Get("c")
	root.Get("a")
	root.Get("b")
	s.End()

	assert.Equal(t, []string{"$.c", "$.a", "$.b"}, s.AffectedPaths(input))
}

func TestAffectedPathsNeverMutatesLedger(t *testing.T) {
	input := mkInput(1, 2)

	s := NewSession()
	root := s.Track(input).(value.Obj)
	root.Get("x").(value.Obj).Get("y")
	s.End()

	first := s.AffectedPaths(input)
	second := s.AffectedPaths(input)
	assert.Equal(t, first, second)

	// Observational only: the comparator's verdicts are unaffected.
	assert.False(t, s.IsChanged(input, mkInput(1, 9)))
	assert.True(t, s.IsChanged(input, mkInput(2, 2)))
}
