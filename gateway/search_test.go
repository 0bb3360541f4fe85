package gateway

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func newSearchGateway(t *testing.T, table string) (*Gateway, *countingDriver) {
	t.Helper()
	req := require.New(t)

	g, drv := newTestGateway(t, Config{Table: table})
	for _, row := range []map[string]any{
		{"name": "alice", "age": 30},
		{"name": "bob", "age": 25},
		{"name": "carol", "age": 35},
		{"name": "dave", "age": 28},
	} {
		_, _, err := g.Create(row)
		req.NoError(err)
	}
	g.ClearCache()
	return g, drv
}

func TestSearchKeyBounds(t *testing.T) {
	t.Parallel()
	req := require.New(t)
	g, _ := newSearchGateway(t, "search_bounds")

	objects, err := g.Search(map[string]any{"start_id": "2", "end_id": "3"})
	req.NoError(err)
	req.Len(objects, 2)

	objects, err = g.Search(map[string]any{"in_id": []string{"1", "4"}})
	req.NoError(err)
	req.Len(objects, 2)

	objects, err = g.Search(map[string]any{"in_id": []string{}})
	req.NoError(err)
	req.Empty(objects)
}

func TestSearchOrderAndPage(t *testing.T) {
	t.Parallel()
	req := require.New(t)
	g, _ := newSearchGateway(t, "search_order")

	objects, err := g.Search(map[string]any{
		"order_column":    "age",
		"order_direction": "desc",
		"offset":          1,
		"limit":           2,
	})
	req.NoError(err)
	req.Len(objects, 2)
	name, _ := objects[0].Attr("name")
	req.Equal("alice", name)
	name, _ = objects[1].Attr("name")
	req.Equal("dave", name)

	// Omitting the limit returns everything.
	objects, err = g.Search(map[string]any{"order_column": "age"})
	req.NoError(err)
	req.Len(objects, 4)
}

func TestSearchDoesNotCache(t *testing.T) {
	t.Parallel()
	req := require.New(t)
	g, drv := newSearchGateway(t, "search_nocache")

	_, err := g.Search(map[string]any{"in_id": []string{"1"}})
	req.NoError(err)

	baseline := drv.selects
	_, err = g.Load("1", true)
	req.NoError(err)
	req.Equal(baseline+1, drv.selects)
}

func TestSearchRejectsBadParams(t *testing.T) {
	t.Parallel()
	req := require.New(t)
	g, _ := newSearchGateway(t, "search_bad")

	_, err := g.Search(map[string]any{"bogus": 1})
	req.ErrorIs(err, ErrInvalidArgument)

	_, err = g.Search(map[string]any{"in_id": "not-a-collection"})
	req.ErrorIs(err, ErrInvalidArgument)

	_, err = g.Search(map[string]any{"limit": "ten"})
	req.ErrorIs(err, ErrInvalidArgument)

	_, err = g.Search(map[string]any{"limit": 0})
	req.ErrorIs(err, ErrInvalidArgument)

	_, err = g.Search(map[string]any{"limit": -1})
	req.ErrorIs(err, ErrInvalidArgument)

	_, err = g.Search(map[string]any{"offset": 1.5})
	req.ErrorIs(err, ErrInvalidArgument)

	_, err = g.Search(map[string]any{"order_direction": "sideways"})
	req.ErrorIs(err, ErrInvalidArgument)

	_, err = g.Search(map[string]any{"order_column": 7})
	req.ErrorIs(err, ErrInvalidArgument)
}

func TestAdvancedSearchFragments(t *testing.T) {
	t.Parallel()
	req := require.New(t)
	g, _ := newSearchGateway(t, "search_fragments")

	objects, err := g.AdvancedSearch(
		map[string]any{"start_id": "1"},
		[]string{"age > 26 AND age < 34", "name != 'dave'"},
	)
	req.NoError(err)
	req.Len(objects, 1)
	name, _ := objects[0].Attr("name")
	req.Equal("alice", name)
}
