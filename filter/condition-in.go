package filter

import (
	"fmt"
	"strings"
)

// In creates a condition matching rows whose attribute equals any of the
// given values. An empty value list matches nothing.
func In(attr string, values []any) Condition {
	return &inCond{attr: attr, values: values}
}

type inCond struct {
	attr   string
	values []any
}

func (c *inCond) Matches(f Fetcher) bool {
	v, ok := f.Attr(c.attr)
	if !ok {
		return false
	}
	for _, candidate := range c.values {
		if cmp, comparable := compareValues(v, candidate); comparable && cmp == 0 {
			return true
		}
	}
	return false
}

func (c *inCond) String() string {
	all := make([]string, 0, len(c.values))
	for _, v := range c.values {
		all = append(all, Literal(v))
	}
	return fmt.Sprintf("%s IN (%s)", c.attr, strings.Join(all, ", "))
}
