package filter

import (
	"fmt"
	"strings"
)

// Or combines multiple conditions with a logical OR.
func Or(conditions ...Condition) Condition {
	if len(conditions) == 1 {
		return conditions[0]
	}
	return &orCond{conditions: conditions}
}

type orCond struct {
	conditions []Condition
}

func (c *orCond) Matches(f Fetcher) bool {
	for _, cond := range c.conditions {
		if cond.Matches(f) {
			return true
		}
	}
	return false
}

func (c *orCond) String() string {
	all := make([]string, 0, len(c.conditions))
	for _, cond := range c.conditions {
		all = append(all, cond.String())
	}
	return fmt.Sprintf("(%s)", strings.Join(all, " OR "))
}
