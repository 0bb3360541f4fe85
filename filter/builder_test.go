package filter

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/rowgate/rowgate/keys"
)

func TestBuildScalarsAndConjunctions(t *testing.T) {
	t.Parallel()
	req := require.New(t)

	b := &Builder{KeyColumn: "id"}

	text, err := b.Build(Pairs{P("name", "alice"), P("age", 30)}, "AND")
	req.NoError(err)
	req.Equal("name = 'alice' AND age = 30", text)

	text, err = b.Build(Pairs{P("name", "alice"), P("age", 30)}, "or")
	req.NoError(err)
	req.Equal("name = 'alice' OR age = 30", text)

	_, err = b.Build(Pairs{P("name", "alice")}, "XOR")
	req.ErrorIs(err, ErrInvalidConjunction)
}

func TestBuildEmptyPairsMatchesAll(t *testing.T) {
	t.Parallel()
	req := require.New(t)

	b := &Builder{KeyColumn: "id"}
	text, err := b.Build(nil, "AND")
	req.NoError(err)
	req.Equal(MatchAll, text)

	cond, err := Parse(text)
	req.NoError(err)
	req.True(cond.Matches(MapFetcher{"anything": 1}))
}

func TestBuildCollections(t *testing.T) {
	t.Parallel()
	req := require.New(t)

	b := &Builder{KeyColumn: "id"}

	text, err := b.Build(Pairs{P("status", []string{"open", "stale"})}, "AND")
	req.NoError(err)
	req.Equal("status IN ('open', 'stale')", text)

	// An empty collection must yield a valid filter that matches nothing.
	text, err = b.Build(Pairs{P("status", []string{})}, "AND")
	req.NoError(err)
	req.Equal(MatchNone, text)

	cond, err := Parse(text)
	req.NoError(err)
	req.False(cond.Matches(MapFetcher{"status": "open"}))
}

func TestBuildEscapesStrings(t *testing.T) {
	t.Parallel()
	req := require.New(t)

	b := &Builder{KeyColumn: "id"}
	text, err := b.Build(Pairs{P("name", "O'Brien")}, "AND")
	req.NoError(err)
	req.Equal("name = 'O''Brien'", text)

	cond, err := Parse(text)
	req.NoError(err)
	req.True(cond.Matches(MapFetcher{"name": "O'Brien"}))
}

func TestBuildRendersSpecialValues(t *testing.T) {
	t.Parallel()
	req := require.New(t)

	b := &Builder{KeyColumn: "id"}

	text, err := b.Build(Pairs{P("deleted_at", nil)}, "AND")
	req.NoError(err)
	req.Equal("deleted_at IS NULL", text)

	text, err = b.Build(Pairs{P("active", true), P("ratio", 0.5)}, "AND")
	req.NoError(err)
	req.Equal("active = 1 AND ratio = 0.5", text)

	text, err = b.Build(Pairs{P("payload", []byte{0xde, 0xad})}, "AND")
	req.NoError(err)
	req.Equal("payload = x'dead'", text)
}

func TestBuildTranscodesKeyColumn(t *testing.T) {
	t.Parallel()
	req := require.New(t)

	b := &Builder{KeyColumn: "id", Codec: keys.NewSequential()}

	// Canonical key strings render in storage form, other columns do not.
	text, err := b.Build(Pairs{P("id", "42"), P("name", "42")}, "AND")
	req.NoError(err)
	req.Equal("id = 42 AND name = '42'", text)

	text, err = b.Build(Pairs{P("id", []string{"1", "2"})}, "AND")
	req.NoError(err)
	req.Equal("id IN (1, 2)", text)

	// Already-encoded values pass through untouched.
	text, err = b.Build(Pairs{P("id", int64(7))}, "AND")
	req.NoError(err)
	req.Equal("id = 7", text)
}

func TestBuildTranscodesUUIDKeys(t *testing.T) {
	t.Parallel()
	req := require.New(t)

	b := &Builder{KeyColumn: "id", Codec: keys.NewUUIDv4Comb()}

	text, err := b.Build(Pairs{P("id", "0189aef2-8c01-4a02-9f3b-0c8d2e4f5a6b")}, "AND")
	req.NoError(err)
	req.Equal("id = x'0189aef28c014a029f3b0c8d2e4f5a6b'", text)
}

func TestCompare(t *testing.T) {
	t.Parallel()
	req := require.New(t)

	b := &Builder{KeyColumn: "id", Codec: keys.NewSequential()}

	text, err := b.Compare("age", ">=", 21)
	req.NoError(err)
	req.Equal("age >= 21", text)

	text, err = b.Compare("id", ">=", "5")
	req.NoError(err)
	req.Equal("id >= 5", text)

	_, err = b.Compare("age", "~", 21)
	req.ErrorIs(err, ErrSyntax)
}

func TestPairsFromMapIsDeterministic(t *testing.T) {
	t.Parallel()
	req := require.New(t)

	pairs := PairsFromMap(map[string]any{"b": 2, "a": 1, "c": 3})
	req.Equal(Pairs{P("a", 1), P("b", 2), P("c", 3)}, pairs)
}

func TestCollection(t *testing.T) {
	t.Parallel()
	req := require.New(t)

	elems, ok := Collection([]int{1, 2})
	req.True(ok)
	req.Equal([]any{1, 2}, elems)

	_, ok = Collection("scalar")
	req.False(ok)
	_, ok = Collection([]byte{1, 2})
	req.False(ok)
	_, ok = Collection(nil)
	req.False(ok)
}
