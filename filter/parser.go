package filter

import "strings"

// Parse turns filter text into an evaluatable condition tree. An empty text
// is the unrestricted filter. AND binds tighter than OR.
func Parse(text string) (Condition, error) {
	if strings.TrimSpace(text) == "" {
		return All(), nil
	}

	tokens, err := lex(text)
	if err != nil {
		return nil, err
	}

	p := &parser{tokens: tokens}
	cond, err := p.parseOr()
	if err != nil {
		return nil, err
	}
	if tok := p.peek(); tok.kind != tokEOF {
		return nil, syntaxErr(tok, "unexpected trailing input")
	}
	return cond, nil
}

type parser struct {
	tokens []token
	next   int
}

func (p *parser) peek() token {
	return p.tokens[p.next]
}

func (p *parser) advance() token {
	tok := p.tokens[p.next]
	if tok.kind != tokEOF {
		p.next++
	}
	return tok
}

func (p *parser) keyword(kw string) bool {
	tok := p.peek()
	if tok.kind == tokIdent && strings.EqualFold(tok.text, kw) {
		p.advance()
		return true
	}
	return false
}

func (p *parser) parseOr() (Condition, error) {
	first, err := p.parseAnd()
	if err != nil {
		return nil, err
	}

	conditions := []Condition{first}
	for p.keyword("OR") {
		next, err := p.parseAnd()
		if err != nil {
			return nil, err
		}
		conditions = append(conditions, next)
	}
	return Or(conditions...), nil
}

func (p *parser) parseAnd() (Condition, error) {
	first, err := p.parseTerm()
	if err != nil {
		return nil, err
	}

	conditions := []Condition{first}
	for p.keyword("AND") {
		next, err := p.parseTerm()
		if err != nil {
			return nil, err
		}
		conditions = append(conditions, next)
	}
	return And(conditions...), nil
}

func (p *parser) parseTerm() (Condition, error) {
	tok := p.peek()

	switch tok.kind {
	case tokLParen:
		p.advance()
		cond, err := p.parseOr()
		if err != nil {
			return nil, err
		}
		if closing := p.advance(); closing.kind != tokRParen {
			return nil, syntaxErr(closing, "expected closing parenthesis")
		}
		return cond, nil

	case tokNumber:
		// Literal conditions, canonically `1 = 1` and `1 = 0`.
		left := p.advance()
		if op := p.advance(); op.kind != tokOperator || op.text != "=" {
			return nil, syntaxErr(op, "expected = after literal condition")
		}
		right := p.advance()
		if right.kind != tokNumber {
			return nil, syntaxErr(right, "expected number in literal condition")
		}
		cmp, ok := compareValues(left.value, right.value)
		if ok && cmp == 0 {
			return All(), nil
		}
		return None(), nil

	case tokIdent:
		return p.parsePredicate()

	default:
		return nil, syntaxErr(tok, "expected condition")
	}
}

func (p *parser) parsePredicate() (Condition, error) {
	attr := p.advance()

	tok := p.advance()
	switch {
	case tok.kind == tokOperator:
		value, err := p.parseValue()
		if err != nil {
			return nil, err
		}
		return Where(attr.text, tok.text, value)

	case tok.kind == tokIdent && strings.EqualFold(tok.text, "IN"):
		return p.parseIn(attr.text)

	case tok.kind == tokIdent && strings.EqualFold(tok.text, "IS"):
		if null := p.advance(); null.kind != tokIdent || !strings.EqualFold(null.text, "NULL") {
			return nil, syntaxErr(null, "expected NULL after IS")
		}
		return Null(attr.text), nil

	default:
		return nil, syntaxErr(tok, "expected comparison, IN or IS NULL")
	}
}

func (p *parser) parseIn(attr string) (Condition, error) {
	if open := p.advance(); open.kind != tokLParen {
		return nil, syntaxErr(open, "expected ( after IN")
	}

	var values []any
	if p.peek().kind == tokRParen {
		p.advance()
		return In(attr, nil), nil
	}
	for {
		value, err := p.parseValue()
		if err != nil {
			return nil, err
		}
		values = append(values, value)

		tok := p.advance()
		switch tok.kind {
		case tokComma:
			continue
		case tokRParen:
			return In(attr, values), nil
		default:
			return nil, syntaxErr(tok, "expected , or ) in IN list")
		}
	}
}

func (p *parser) parseValue() (any, error) {
	tok := p.advance()
	switch tok.kind {
	case tokString, tokNumber, tokBlob:
		return tok.value, nil
	case tokIdent:
		if strings.EqualFold(tok.text, "NULL") {
			return nil, nil
		}
		return nil, syntaxErr(tok, "expected value")
	default:
		return nil, syntaxErr(tok, "expected value")
	}
}
