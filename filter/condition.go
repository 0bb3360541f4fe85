// Package filter implements the textual filter language shared by gateways
// and drivers. The gateway-side Builder renders predicate pairs into filter
// text with all scalar values escaped; the driver-side Parse turns filter
// text back into an evaluatable condition tree.
//
// The language covers comparisons (=, !=, <, <=, >, >=), IN tests over value
// lists, IS NULL, the literal conditions `1 = 1` (match all) and `1 = 0`
// (match none), parentheses, and the AND/OR conjunctions. String values are
// single-quoted with doubled-quote escaping, binary values are rendered as
// x'hex' blob literals.
package filter

// Fetcher supplies attribute values to condition evaluation.
type Fetcher interface {
	Attr(name string) (value any, ok bool)
}

// MapFetcher adapts a raw attribute map to the Fetcher interface.
type MapFetcher map[string]any

// Attr returns the value of one attribute.
func (m MapFetcher) Attr(name string) (any, bool) {
	v, ok := m[name]
	return v, ok
}

// Condition is one node of a parsed filter expression.
type Condition interface {
	// Matches checks whether the condition holds for the supplied row.
	Matches(f Fetcher) bool

	// String returns the filter-text representation of the condition.
	String() string
}
