package filter

import (
	"fmt"
	"strings"
)

// And combines multiple conditions with a logical AND.
func And(conditions ...Condition) Condition {
	if len(conditions) == 1 {
		return conditions[0]
	}
	return &andCond{conditions: conditions}
}

type andCond struct {
	conditions []Condition
}

func (c *andCond) Matches(f Fetcher) bool {
	for _, cond := range c.conditions {
		if !cond.Matches(f) {
			return false
		}
	}
	return true
}

func (c *andCond) String() string {
	all := make([]string, 0, len(c.conditions))
	for _, cond := range c.conditions {
		all = append(all, cond.String())
	}
	return fmt.Sprintf("(%s)", strings.Join(all, " AND "))
}
