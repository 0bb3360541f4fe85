package gateway

import (
	"fmt"
	"math"
	"strings"

	"golang.org/x/exp/slices"

	"github.com/rowgate/rowgate/driver"
	"github.com/rowgate/rowgate/filter"
	"github.com/rowgate/rowgate/record"
)

// UnboundedLimit is the sentinel limit meaning "no limit". It is the
// default when a search omits the limit parameter.
const UnboundedLimit = math.MaxInt

// Search parameter vocabulary.
var searchParams = []string{
	"start_id", "end_id", "in_id",
	"offset", "limit",
	"order_column", "order_direction",
}

// Search translates the constrained parameter vocabulary (start_id, end_id,
// in_id, offset, limit, order_column, order_direction) into one query.
// Results are not written into the cache.
func (g *Gateway) Search(params map[string]any) ([]record.Object, error) {
	return g.AdvancedSearch(params, nil)
}

// AdvancedSearch is Search with extra raw predicate fragments that are
// embedded verbatim, bypassing value escaping. The fragments are a
// documented trust boundary: they must come from the caller, never from
// user input.
func (g *Gateway) AdvancedSearch(params map[string]any, fragments []string) ([]record.Object, error) {
	for name := range params {
		if !slices.Contains(searchParams, name) {
			return nil, fmt.Errorf("%w: unknown search parameter %q", ErrInvalidArgument, name)
		}
	}

	var conditions []string
	opts := driver.SelectOpts{}

	if v, ok := params["start_id"]; ok {
		text, err := g.where.Compare(g.keyColumn, ">=", v)
		if err != nil {
			return nil, err
		}
		conditions = append(conditions, text)
	}
	if v, ok := params["end_id"]; ok {
		text, err := g.where.Compare(g.keyColumn, "<=", v)
		if err != nil {
			return nil, err
		}
		conditions = append(conditions, text)
	}
	if v, ok := params["in_id"]; ok {
		ids, isCollection := filter.Collection(v)
		if !isCollection {
			return nil, fmt.Errorf("%w: in_id must be a collection, got %T", ErrInvalidArgument, v)
		}
		text, err := g.where.Build(filter.Pairs{filter.P(g.keyColumn, ids)}, "AND")
		if err != nil {
			return nil, invalidArgument(err)
		}
		conditions = append(conditions, text)
	}

	if v, ok := params["offset"]; ok {
		offset, err := intParam("offset", v)
		if err != nil {
			return nil, err
		}
		opts.Offset = offset
	}
	limit := UnboundedLimit
	if v, ok := params["limit"]; ok {
		var err error
		limit, err = intParam("limit", v)
		if err != nil {
			return nil, err
		}
		// A zero limit is indistinguishable from "unlimited" at the driver
		// layer and almost certainly a caller bug.
		if limit < 1 {
			return nil, fmt.Errorf("%w: limit must be positive, got %d", ErrInvalidArgument, limit)
		}
	}
	if limit != UnboundedLimit {
		opts.Limit = limit
	}

	if v, ok := params["order_column"]; ok {
		column, ok := v.(string)
		if !ok {
			return nil, fmt.Errorf("%w: order_column must be a string, got %T", ErrInvalidArgument, v)
		}
		opts.OrderBy = column
	}
	if v, ok := params["order_direction"]; ok {
		direction, ok := v.(string)
		if !ok {
			return nil, fmt.Errorf("%w: order_direction must be a string, got %T", ErrInvalidArgument, v)
		}
		switch strings.ToUpper(direction) {
		case "ASC":
		case "DESC":
			opts.Descending = true
		default:
			return nil, fmt.Errorf("%w: order_direction must be ASC or DESC, got %q", ErrInvalidArgument, direction)
		}
	}

	for _, fragment := range fragments {
		conditions = append(conditions, "("+fragment+")")
	}

	g.stats.roundTrips.Inc()
	res, err := g.drv.Select(g.table, strings.Join(conditions, " AND "), opts)
	if err != nil {
		return nil, err
	}
	return g.buildAll(res, false)
}

func intParam(name string, v any) (int, error) {
	switch n := v.(type) {
	case int:
		return n, nil
	case int64:
		return int(n), nil
	case float64:
		if n != math.Trunc(n) {
			return 0, fmt.Errorf("%w: %s must be an integer, got %v", ErrInvalidArgument, name, v)
		}
		return int(n), nil
	default:
		return 0, fmt.Errorf("%w: %s must be an integer, got %T", ErrInvalidArgument, name, v)
	}
}
