package filter

import (
	"errors"
	"fmt"
)

// Errors.
var (
	ErrInvalidConjunction = errors.New("conjunction must be AND or OR")
	ErrSyntax             = errors.New("filter syntax error")
)

// SyntaxError reports where parsing a filter text failed.
type SyntaxError struct {
	Msg    string
	Pos    int
	Symbol string
}

func (se *SyntaxError) Error() string {
	if se.Symbol != "" {
		return fmt.Sprintf("filter syntax error: %q at position %d: %s", se.Symbol, se.Pos, se.Msg)
	}
	return fmt.Sprintf("filter syntax error: position %d: %s", se.Pos, se.Msg)
}

func (se *SyntaxError) Unwrap() error {
	return ErrSyntax
}

func syntaxErr(tok token, msg string) error {
	return &SyntaxError{Symbol: tok.text, Pos: tok.pos, Msg: msg}
}
