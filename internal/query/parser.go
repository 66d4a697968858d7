package query

import (
	"fmt"
	"strings"
	"unicode"
)

type tokenKind int

const (
	tokEOF tokenKind = iota
	tokIdent
	tokString
	tokEq
	tokNeq
	tokLParen
	tokRParen
	tokComma
	tokAnd
	tokOr
	tokIn
)

type token struct {
	kind tokenKind
	text string
	pos  int
}

type lexer struct {
	src string
	pos int
}

func (l *lexer) next() (token, error) {
	for l.pos < len(l.src) && unicode.IsSpace(rune(l.src[l.pos])) {
		l.pos++
	}
	if l.pos >= len(l.src) {
		return token{kind: tokEOF, pos: l.pos}, nil
	}

	start := l.pos
	c := l.src[l.pos]
	switch {
	case c == '(':
		l.pos++
		return token{kind: tokLParen, text: "(", pos: start}, nil
	case c == ')':
		l.pos++
		return token{kind: tokRParen, text: ")", pos: start}, nil
	case c == ',':
		l.pos++
		return token{kind: tokComma, text: ",", pos: start}, nil
	case c == '=':
		l.pos++
		return token{kind: tokEq, text: "=", pos: start}, nil
	case c == '!':
		if l.pos+1 < len(l.src) && l.src[l.pos+1] == '=' {
			l.pos += 2
			return token{kind: tokNeq, text: "!=", pos: start}, nil
		}
		return token{}, &Error{Source: l.src, Pos: start, Message: "expected '=' after '!'"}
	case c == '\'' || c == '"':
		quote := c
		l.pos++
		var sb strings.Builder
		for l.pos < len(l.src) && l.src[l.pos] != quote {
			sb.WriteByte(l.src[l.pos])
			l.pos++
		}
		if l.pos >= len(l.src) {
			return token{}, &Error{Source: l.src, Pos: start, Message: "unterminated string literal"}
		}
		l.pos++ // closing quote
		return token{kind: tokString, text: sb.String(), pos: start}, nil
	case isIdentByte(c):
		for l.pos < len(l.src) && isIdentByte(l.src[l.pos]) {
			l.pos++
		}
		text := l.src[start:l.pos]
		switch strings.ToUpper(text) {
		case "AND":
			return token{kind: tokAnd, text: text, pos: start}, nil
		case "OR":
			return token{kind: tokOr, text: text, pos: start}, nil
		case "IN":
			return token{kind: tokIn, text: text, pos: start}, nil
		}
		return token{kind: tokIdent, text: text, pos: start}, nil
	}
	return token{}, &Error{Source: l.src, Pos: start, Message: fmt.Sprintf("unexpected character %q", c)}
}

func isIdentByte(c byte) bool {
	return c == '_' || c == '.' || c == '-' ||
		(c >= 'a' && c <= 'z') || (c >= 'A' && c <= 'Z') || (c >= '0' && c <= '9')
}

type parser struct {
	src  string
	lex  *lexer
	tok  token
	next token
}

// Parse parses a predicate string into an expression tree.
// The grammar, loosely:
//
//	expr    := andExpr ( OR andExpr )*
//	andExpr := term ( AND term )*
//	term    := '(' expr ')' | ident ( '=' | '!=' ) value | ident IN '(' value ( ',' value )* ')'
//	value   := quoted string | bare identifier or number
func Parse(src string) (Expr, error) {
	if strings.TrimSpace(src) == "" {
		return nil, &Error{Source: src, Pos: 0, Message: "empty predicate"}
	}
	p := &parser{src: src, lex: &lexer{src: src}}
	if err := p.advance(); err != nil {
		return nil, err
	}
	if err := p.advance(); err != nil {
		return nil, err
	}
	expr, err := p.parseOr()
	if err != nil {
		return nil, err
	}
	if p.tok.kind != tokEOF {
		return nil, &Error{Source: src, Pos: p.tok.pos, Message: fmt.Sprintf("unexpected %q after predicate", p.tok.text)}
	}
	return expr, nil
}

func (p *parser) advance() error {
	p.tok = p.next
	tok, err := p.lex.next()
	if err != nil {
		return err
	}
	p.next = tok
	return nil
}

func (p *parser) parseOr() (Expr, error) {
	left, err := p.parseAnd()
	if err != nil {
		return nil, err
	}
	for p.tok.kind == tokOr {
		if err := p.advance(); err != nil {
			return nil, err
		}
		right, err := p.parseAnd()
		if err != nil {
			return nil, err
		}
		left = &Or{Left: left, Right: right}
	}
	return left, nil
}

func (p *parser) parseAnd() (Expr, error) {
	left, err := p.parseTerm()
	if err != nil {
		return nil, err
	}
	for p.tok.kind == tokAnd {
		if err := p.advance(); err != nil {
			return nil, err
		}
		right, err := p.parseTerm()
		if err != nil {
			return nil, err
		}
		left = &And{Left: left, Right: right}
	}
	return left, nil
}

func (p *parser) parseTerm() (Expr, error) {
	if p.tok.kind == tokLParen {
		if err := p.advance(); err != nil {
			return nil, err
		}
		expr, err := p.parseOr()
		if err != nil {
			return nil, err
		}
		if p.tok.kind != tokRParen {
			return nil, &Error{Source: p.src, Pos: p.tok.pos, Message: "expected ')'"}
		}
		if err := p.advance(); err != nil {
			return nil, err
		}
		return expr, nil
	}

	if p.tok.kind != tokIdent {
		return nil, &Error{Source: p.src, Pos: p.tok.pos, Message: "expected attribute name"}
	}
	attr := p.tok.text
	if err := p.advance(); err != nil {
		return nil, err
	}

	switch p.tok.kind {
	case tokEq, tokNeq:
		op := OpEq
		if p.tok.kind == tokNeq {
			op = OpNeq
		}
		if err := p.advance(); err != nil {
			return nil, err
		}
		value, err := p.parseValue()
		if err != nil {
			return nil, err
		}
		return &Compare{Attr: attr, Op: op, Value: value}, nil
	case tokIn:
		if err := p.advance(); err != nil {
			return nil, err
		}
		values, err := p.parseSetLiteral()
		if err != nil {
			return nil, err
		}
		return &Compare{Attr: attr, Op: OpIn, Values: values}, nil
	}
	return nil, &Error{Source: p.src, Pos: p.tok.pos, Message: "expected '=', '!=' or 'IN'"}
}

func (p *parser) parseValue() (string, error) {
	if p.tok.kind != tokString && p.tok.kind != tokIdent {
		return "", &Error{Source: p.src, Pos: p.tok.pos, Message: "expected value"}
	}
	value := p.tok.text
	if err := p.advance(); err != nil {
		return "", err
	}
	return value, nil
}

func (p *parser) parseSetLiteral() ([]string, error) {
	if p.tok.kind != tokLParen {
		return nil, &Error{Source: p.src, Pos: p.tok.pos, Message: "expected '(' after IN"}
	}
	if err := p.advance(); err != nil {
		return nil, err
	}

	var values []string
	for {
		value, err := p.parseValue()
		if err != nil {
			return nil, err
		}
		values = append(values, value)
		if p.tok.kind == tokComma {
			if err := p.advance(); err != nil {
				return nil, err
			}
			continue
		}
		break
	}
	if p.tok.kind != tokRParen {
		return nil, &Error{Source: p.src, Pos: p.tok.pos, Message: "expected ')' to close IN set"}
	}
	if err := p.advance(); err != nil {
		return nil, err
	}
	return values, nil
}
