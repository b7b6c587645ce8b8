package selector

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/indutny/sneequals"
	"github.com/indutny/sneequals/value"
)

func TestCompileReadPath(t *testing.T) {
	specs, err := Compile([]string{"user.name"})
	require.NoError(t, err)
	require.Len(t, specs, 1)

	assert.Equal(t, OpRead, specs[0].Op)
	assert.Equal(t, []Step{{Key: "user"}, {Key: "name"}}, specs[0].Steps)
}

func TestCompileIndexAndQuoted(t *testing.T) {
	specs, err := Compile([]string{`items[2].id`, `user["odd key"]`})
	require.NoError(t, err)

	assert.Equal(t, []Step{{Key: "items"}, {Index: 2, IsIndex: true}, {Key: "id"}}, specs[0].Steps)
	assert.Equal(t, []Step{{Key: "user"}, {Key: "odd key"}}, specs[1].Steps)
}

func TestCompileQuotedKeyEndingInBackslash(t *testing.T) {
	specs, err := Compile([]string{`a["b\\"]`})
	require.NoError(t, err)
	assert.Equal(t, []Step{{Key: "a"}, {Key: `b\`}}, specs[0].Steps)

	// An unterminated quoted key still fails.
	_, err = Compile([]string{`a["b\"]`})
	require.Error(t, err)
}

func TestCompilePresenceMarkers(t *testing.T) {
	specs, err := Compile([]string{"user.role?", "user.role?own"})
	require.NoError(t, err)

	assert.Equal(t, OpHas, specs[0].Op)
	assert.Equal(t, "role", specs[0].Key)
	assert.Equal(t, []Step{{Key: "user"}}, specs[0].Steps)

	assert.Equal(t, OpHasOwn, specs[1].Op)
	assert.Equal(t, "role", specs[1].Key)
}

func TestCompileEnumerationAndEach(t *testing.T) {
	specs, err := Compile([]string{"user.*", "items[*]"})
	require.NoError(t, err)

	assert.Equal(t, OpKeys, specs[0].Op)
	assert.Equal(t, []Step{{Key: "user"}}, specs[0].Steps)

	assert.Equal(t, OpEach, specs[1].Op)
	assert.Equal(t, []Step{{Key: "items"}}, specs[1].Steps)
}

func TestCompileRootEnumeration(t *testing.T) {
	specs, err := Compile([]string{".*"})
	require.NoError(t, err)
	assert.Equal(t, OpKeys, specs[0].Op)
	assert.Empty(t, specs[0].Steps)
}

func TestCompileErrors(t *testing.T) {
	bad := []string{
		"",
		"a..b",
		"a[",
		"a[x]",
		"a[*].b",
		"a.*.b",
		"a[0]?",
		"?",
	}
	for _, spec := range bad {
		_, err := Compile([]string{spec})
		require.Error(t, err, "spec %q should not compile", spec)
		var perr *ParseError
		assert.ErrorAs(t, err, &perr)
	}
}

func testDoc() *value.Object {
	return value.ObjectOf(
		value.P("user", value.ObjectOf(
			value.P("name", value.String("carol")),
			value.P("role", value.String("admin")),
		)),
		value.P("items", value.NewArray(value.Int(10), value.Int(20))),
	)
}

func TestExecuteReads(t *testing.T) {
	specs, err := Compile([]string{"user.name", "items[1]"})
	require.NoError(t, err)

	result, err := Execute(testDoc(), specs)
	require.NoError(t, err)

	assert.Equal(t, value.String("carol"), result.Get("user.name"))
	assert.Equal(t, value.Int(20), result.Get("items[1]"))
}

func TestExecutePresence(t *testing.T) {
	specs, err := Compile([]string{"user.role?", "user.missing?own"})
	require.NoError(t, err)

	result, err := Execute(testDoc(), specs)
	require.NoError(t, err)

	assert.Equal(t, value.Bool(true), result.Get("user.role?"))
	assert.Equal(t, value.Bool(false), result.Get("user.missing?own"))
}

func TestExecuteEnumerationAndEach(t *testing.T) {
	specs, err := Compile([]string{"user.*", "items[*]"})
	require.NoError(t, err)

	result, err := Execute(testDoc(), specs)
	require.NoError(t, err)

	keys := result.Get("user.*").(*value.Array)
	assert.Equal(t, 2, keys.Len())
	assert.Equal(t, value.String("name"), keys.Index(0))

	items := result.Get("items[*]").(*value.Array)
	assert.Equal(t, 2, items.Len())
	assert.Equal(t, value.Int(10), items.Index(0))
}

func TestExecuteShapeMismatch(t *testing.T) {
	specs, err := Compile([]string{"user.name.deeper"})
	require.NoError(t, err)

	_, err = Execute(testDoc(), specs)
	require.Error(t, err)
	var eerr *ExecError
	assert.ErrorAs(t, err, &eerr)
}

func TestExecuteThroughTrackingRecordsMinimalAccesses(t *testing.T) {
	// The whole point: executing specs through a facade records exactly
	// the reads the specs describe.
	doc := testDoc()
	s := sneequals.NewSession()

	specs, err := Compile([]string{"user.name"})
	require.NoError(t, err)

	derived, err := Execute(s.Track(doc), specs)
	require.NoError(t, err)
	s.Unwrap(derived)
	s.End()

	changedRole := value.ObjectOf(
		value.P("user", value.ObjectOf(
			value.P("name", value.String("carol")),
			value.P("role", value.String("guest")),
		)),
		value.P("items", value.NewArray()),
	)
	assert.False(t, s.IsChanged(doc, changedRole), "role and items were never read")

	changedName := value.ObjectOf(
		value.P("user", value.ObjectOf(
			value.P("name", value.String("dave")),
			value.P("role", value.String("admin")),
		)),
		value.P("items", value.NewArray(value.Int(10), value.Int(20))),
	)
	assert.True(t, s.IsChanged(doc, changedName))
}

func TestExecuteEachThroughTrackingPinsElements(t *testing.T) {
	doc := testDoc()
	s := sneequals.NewSession()

	specs, err := Compile([]string{"items[*]"})
	require.NoError(t, err)

	derived, err := Execute(s.Track(doc), specs)
	require.NoError(t, err)
	s.Unwrap(derived)
	s.End()

	longer := value.ObjectOf(
		value.P("user", doc.Get("user")),
		value.P("items", value.NewArray(value.Int(10), value.Int(20), value.Int(30))),
	)
	assert.True(t, s.IsChanged(doc, longer), "length was read during iteration")

	changedElem := value.ObjectOf(
		value.P("user", doc.Get("user")),
		value.P("items", value.NewArray(value.Int(10), value.Int(99))),
	)
	assert.True(t, s.IsChanged(doc, changedElem))
}
