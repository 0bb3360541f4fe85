package filter

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestParseAndEvaluate(t *testing.T) {
	t.Parallel()

	row := MapFetcher{
		"id":     int64(7),
		"name":   "alice",
		"age":    int64(30),
		"score":  2.5,
		"status": "open",
		"note":   nil,
		"raw":    []byte{0xde, 0xad},
	}

	tests := []struct {
		text  string
		match bool
	}{
		{"name = 'alice'", true},
		{"name != 'alice'", false},
		{"age > 29", true},
		{"age >= 30", true},
		{"age < 30", false},
		{"age <= 30", true},
		{"score > 2", true},
		{"status IN ('open', 'stale')", true},
		{"status IN ('closed')", false},
		{"status IN ()", false},
		{"note IS NULL", true},
		{"name IS NULL", false},
		{"missing IS NULL", true},
		{"raw = x'dead'", true},
		{"raw = x'beef'", false},
		{"1 = 1", true},
		{"1 = 0", false},
		{"", true},
		{"name = 'alice' AND age = 30", true},
		{"name = 'bob' OR age = 30", true},
		{"name = 'bob' OR age = 31", false},
		// AND binds tighter than OR.
		{"name = 'bob' OR name = 'alice' AND age = 30", true},
		{"(name = 'bob' OR name = 'alice') AND age = 31", false},
		// Numbers compare across serialization widths.
		{"id = 7", true},
		{"id = 7.0", true},
		// Type mismatches never match.
		{"name = 7", false},
		{"age = 'thirty'", false},
	}

	for _, tt := range tests {
		tt := tt
		t.Run(tt.text, func(t *testing.T) {
			t.Parallel()
			req := require.New(t)

			cond, err := Parse(tt.text)
			req.NoError(err)
			req.Equal(tt.match, cond.Matches(row))
		})
	}
}

func TestParseStringEscapes(t *testing.T) {
	t.Parallel()
	req := require.New(t)

	cond, err := Parse("name = 'O''Brien'")
	req.NoError(err)
	req.True(cond.Matches(MapFetcher{"name": "O'Brien"}))
}

func TestParseSyntaxErrors(t *testing.T) {
	t.Parallel()

	tests := []string{
		"name =",
		"name = 'unterminated",
		"= 'alice'",
		"name IN 'alice'",
		"name IN ('a',",
		"(name = 'a'",
		"name IS 'a'",
		"name = 'a' AND",
		"name = 'a' 'b'",
		"raw = x'xyz'",
	}

	for _, text := range tests {
		text := text
		t.Run(text, func(t *testing.T) {
			t.Parallel()
			req := require.New(t)

			_, err := Parse(text)
			req.ErrorIs(err, ErrSyntax)
		})
	}
}

func TestParseRoundTripsBuilderOutput(t *testing.T) {
	t.Parallel()
	req := require.New(t)

	b := &Builder{KeyColumn: "id"}
	text, err := b.Build(Pairs{
		P("name", "O'Brien"),
		P("status", []string{"open", "stale"}),
		P("note", nil),
	}, "AND")
	req.NoError(err)

	cond, err := Parse(text)
	req.NoError(err)
	req.True(cond.Matches(MapFetcher{"name": "O'Brien", "status": "stale", "note": nil}))
	req.False(cond.Matches(MapFetcher{"name": "O'Brien", "status": "closed", "note": nil}))
}
