package filter

import (
	"fmt"
	"reflect"
	"strings"

	"golang.org/x/exp/maps"
	"golang.org/x/exp/slices"

	"github.com/rowgate/rowgate/keys"
)

// Pair is one attribute to value(s) entry of a predicate.
type Pair struct {
	Attr  string
	Value any
}

// Pairs is an ordered predicate. A collection value renders as an IN test,
// a scalar as an equality test.
type Pairs []Pair

// P creates a predicate pair.
func P(attr string, value any) Pair {
	return Pair{Attr: attr, Value: value}
}

// PairsFromMap converts an attribute map into predicate pairs with a
// deterministic (sorted) order.
func PairsFromMap(m map[string]any) Pairs {
	attrs := maps.Keys(m)
	slices.Sort(attrs)

	pairs := make(Pairs, 0, len(m))
	for _, attr := range attrs {
		pairs = append(pairs, Pair{Attr: attr, Value: m[attr]})
	}
	return pairs
}

// Builder renders predicate pairs into filter text. Values for the key
// column that arrive in canonical form are transcoded through the codec
// before being embedded; every scalar passes through the driver-provided
// escaper. Built filters are never cached, they must reflect the current
// arguments exactly.
type Builder struct {
	KeyColumn string
	Codec     keys.Codec
	Escape    func(string) string
}

// Build renders the pairs joined by the given conjunction. The conjunction
// must be AND or OR, case-insensitive. Zero pairs yield the unrestricted
// filter.
func (b *Builder) Build(pairs Pairs, conjunction string) (string, error) {
	var join string
	switch strings.ToUpper(strings.TrimSpace(conjunction)) {
	case "AND":
		join = " AND "
	case "OR":
		join = " OR "
	default:
		return "", fmt.Errorf("%w, got %q", ErrInvalidConjunction, conjunction)
	}

	if len(pairs) == 0 {
		return MatchAll, nil
	}

	conditions := make([]string, 0, len(pairs))
	for _, pair := range pairs {
		text, err := b.renderPair(pair)
		if err != nil {
			return "", err
		}
		conditions = append(conditions, text)
	}
	return strings.Join(conditions, join), nil
}

// Compare renders a single comparison condition. The operator must be one of
// =, !=, <, <=, > or >=.
func (b *Builder) Compare(attr, op string, value any) (string, error) {
	switch op {
	case "=", "!=", "<", "<=", ">", ">=":
	default:
		return "", fmt.Errorf("%w: unknown operator %q", ErrSyntax, op)
	}
	text, err := b.renderValue(attr, value)
	if err != nil {
		return "", err
	}
	return fmt.Sprintf("%s %s %s", attr, op, text), nil
}

func (b *Builder) renderPair(pair Pair) (string, error) {
	elems, isCollection := Collection(pair.Value)
	if !isCollection {
		if pair.Value == nil {
			return pair.Attr + " IS NULL", nil
		}
		text, err := b.renderValue(pair.Attr, pair.Value)
		if err != nil {
			return "", err
		}
		return fmt.Sprintf("%s = %s", pair.Attr, text), nil
	}

	// An empty collection makes the condition universally false while
	// staying syntactically valid, so the whole predicate yields zero
	// matches instead of failing.
	if len(elems) == 0 {
		return MatchNone, nil
	}

	rendered := make([]string, 0, len(elems))
	for _, elem := range elems {
		text, err := b.renderValue(pair.Attr, elem)
		if err != nil {
			return "", err
		}
		rendered = append(rendered, text)
	}
	return fmt.Sprintf("%s IN (%s)", pair.Attr, strings.Join(rendered, ", ")), nil
}

func (b *Builder) renderValue(attr string, v any) (string, error) {
	if attr == b.KeyColumn && b.Codec != nil && !b.Codec.LooksEncoded(v) {
		if canonical, ok := v.(string); ok {
			encoded, err := b.Codec.Encode(canonical)
			if err != nil {
				return "", err
			}
			v = encoded
		}
	}

	escape := b.Escape
	if escape == nil {
		escape = DefaultEscape
	}
	return escapedLiteral(v, escape), nil
}

// Collection reports whether a value is a collection and returns its
// elements. Strings and byte slices are scalars.
func Collection(v any) ([]any, bool) {
	switch v.(type) {
	case nil, string, []byte:
		return nil, false
	}

	rv := reflect.ValueOf(v)
	if rv.Kind() != reflect.Slice && rv.Kind() != reflect.Array {
		return nil, false
	}

	elems := make([]any, 0, rv.Len())
	for i := 0; i < rv.Len(); i++ {
		elems = append(elems, rv.Index(i).Interface())
	}
	return elems, true
}
