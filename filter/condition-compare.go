package filter

import "fmt"

type operator uint8

const (
	opEquals operator = iota
	opNotEquals
	opLessThan
	opLessThanOrEqual
	opGreaterThan
	opGreaterThanOrEqual
)

var operatorNames = map[operator]string{
	opEquals:             "=",
	opNotEquals:          "!=",
	opLessThan:           "<",
	opLessThanOrEqual:    "<=",
	opGreaterThan:        ">",
	opGreaterThanOrEqual: ">=",
}

// Where creates a single comparison condition.
func Where(attr string, op string, value any) (Condition, error) {
	for o, name := range operatorNames {
		if name == op {
			return &compareCond{attr: attr, op: o, value: value}, nil
		}
	}
	return nil, fmt.Errorf("%w: unknown operator %q", ErrSyntax, op)
}

type compareCond struct {
	attr  string
	op    operator
	value any
}

func (c *compareCond) Matches(f Fetcher) bool {
	v, ok := f.Attr(c.attr)
	if !ok {
		return false
	}

	cmp, comparable := compareValues(v, c.value)
	if !comparable {
		return false
	}

	switch c.op {
	case opEquals:
		return cmp == 0
	case opNotEquals:
		return cmp != 0
	case opLessThan:
		return cmp < 0
	case opLessThanOrEqual:
		return cmp <= 0
	case opGreaterThan:
		return cmp > 0
	case opGreaterThanOrEqual:
		return cmp >= 0
	default:
		return false
	}
}

func (c *compareCond) String() string {
	return fmt.Sprintf("%s %s %s", c.attr, operatorNames[c.op], Literal(c.value))
}
