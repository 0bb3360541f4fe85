package filter

import (
	"encoding/hex"
	"fmt"
	"strconv"
	"strings"
)

type tokenKind uint8

const (
	tokEOF tokenKind = iota
	tokIdent
	tokNumber
	tokString
	tokBlob
	tokOperator
	tokLParen
	tokRParen
	tokComma
)

type token struct {
	kind  tokenKind
	text  string
	pos   int
	value any
}

func isIdentStart(c byte) bool {
	return c == '_' || (c >= 'a' && c <= 'z') || (c >= 'A' && c <= 'Z')
}

func isIdentPart(c byte) bool {
	return isIdentStart(c) || c == '.' || (c >= '0' && c <= '9')
}

func isDigit(c byte) bool {
	return c >= '0' && c <= '9'
}

func lex(text string) ([]token, error) {
	var tokens []token
	i := 0

	for i < len(text) {
		c := text[i]
		switch {
		case c == ' ' || c == '\t' || c == '\n' || c == '\r':
			i++

		case c == '(':
			tokens = append(tokens, token{kind: tokLParen, text: "(", pos: i})
			i++
		case c == ')':
			tokens = append(tokens, token{kind: tokRParen, text: ")", pos: i})
			i++
		case c == ',':
			tokens = append(tokens, token{kind: tokComma, text: ",", pos: i})
			i++

		case c == '=':
			tokens = append(tokens, token{kind: tokOperator, text: "=", pos: i})
			i++
		case c == '!':
			if i+1 >= len(text) || text[i+1] != '=' {
				return nil, &SyntaxError{Symbol: "!", Pos: i, Msg: "expected !="}
			}
			tokens = append(tokens, token{kind: tokOperator, text: "!=", pos: i})
			i += 2
		case c == '<' || c == '>':
			op := string(c)
			if i+1 < len(text) && text[i+1] == '=' {
				op += "="
				i++
			}
			tokens = append(tokens, token{kind: tokOperator, text: op, pos: i})
			i++

		case c == '\'':
			value, end, err := lexString(text, i)
			if err != nil {
				return nil, err
			}
			tokens = append(tokens, token{kind: tokString, text: text[i:end], pos: i, value: value})
			i = end

		case (c == 'x' || c == 'X') && i+1 < len(text) && text[i+1] == '\'':
			end := strings.IndexByte(text[i+2:], '\'')
			if end < 0 {
				return nil, &SyntaxError{Symbol: "x'", Pos: i, Msg: "unterminated blob literal"}
			}
			raw, err := hex.DecodeString(text[i+2 : i+2+end])
			if err != nil {
				return nil, &SyntaxError{Symbol: text[i : i+2+end+1], Pos: i, Msg: "invalid blob literal"}
			}
			tokens = append(tokens, token{kind: tokBlob, text: text[i : i+2+end+1], pos: i, value: raw})
			i += 2 + end + 1

		case isDigit(c) || (c == '-' && i+1 < len(text) && isDigit(text[i+1])):
			start := i
			i++
			isFloat := false
			for i < len(text) && (isDigit(text[i]) || text[i] == '.') {
				if text[i] == '.' {
					isFloat = true
				}
				i++
			}
			literal := text[start:i]
			var value any
			if isFloat {
				f, err := strconv.ParseFloat(literal, 64)
				if err != nil {
					return nil, &SyntaxError{Symbol: literal, Pos: start, Msg: "invalid number"}
				}
				value = f
			} else {
				n, err := strconv.ParseInt(literal, 10, 64)
				if err != nil {
					return nil, &SyntaxError{Symbol: literal, Pos: start, Msg: "invalid number"}
				}
				value = n
			}
			tokens = append(tokens, token{kind: tokNumber, text: literal, pos: start, value: value})

		case isIdentStart(c):
			start := i
			for i < len(text) && isIdentPart(text[i]) {
				i++
			}
			tokens = append(tokens, token{kind: tokIdent, text: text[start:i], pos: start})

		default:
			return nil, &SyntaxError{Symbol: string(c), Pos: i, Msg: fmt.Sprintf("unexpected character 0x%02x", c)}
		}
	}

	tokens = append(tokens, token{kind: tokEOF, pos: len(text)})
	return tokens, nil
}

func lexString(text string, start int) (value string, end int, err error) {
	var sb strings.Builder
	i := start + 1
	for i < len(text) {
		if text[i] != '\'' {
			sb.WriteByte(text[i])
			i++
			continue
		}
		// A doubled quote is an escaped quote, a single one ends the string.
		if i+1 < len(text) && text[i+1] == '\'' {
			sb.WriteByte('\'')
			i += 2
			continue
		}
		return sb.String(), i + 1, nil
	}
	return "", 0, &SyntaxError{Symbol: "'", Pos: start, Msg: "unterminated string literal"}
}
