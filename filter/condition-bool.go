package filter

// MatchAll is the filter text of the unrestricted condition.
const MatchAll = "1 = 1"

// MatchNone is the filter text of the unsatisfiable condition.
const MatchNone = "1 = 0"

// All returns the condition matching every row.
func All() Condition {
	return boolCond(true)
}

// None returns the condition matching no row. It is syntactically valid and
// side-effect free, which lets an empty IN list short-circuit a whole
// predicate to zero matches without failing.
func None() Condition {
	return boolCond(false)
}

type boolCond bool

func (c boolCond) Matches(f Fetcher) bool {
	return bool(c)
}

func (c boolCond) String() string {
	if c {
		return MatchAll
	}
	return MatchNone
}
