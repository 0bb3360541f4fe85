package filter

import "fmt"

// Null creates a condition matching rows whose attribute is NULL or absent.
func Null(attr string) Condition {
	return &nullCond{attr: attr}
}

type nullCond struct {
	attr string
}

func (c *nullCond) Matches(f Fetcher) bool {
	v, ok := f.Attr(c.attr)
	return !ok || v == nil
}

func (c *nullCond) String() string {
	return fmt.Sprintf("%s IS NULL", c.attr)
}
