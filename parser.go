// parser.go: tokens → forms.
//
// A form is a Value: atoms (numbers, strings, symbols) or VTList of forms.
// Literal classification, in priority order:
//   - STRING token          → Str (the lexer already unescaped it)
//   - digit, or '-' digit   → number: float if the text contains '.' or 'e',
//     Int64 if it ends in 'L'/'l' (suffix stripped), Int32 otherwise
//   - anything else         → interned Symbol
package paren

import (
	"fmt"
	"strconv"
	"strings"
)

// ParseError reports a malformed literal or unbalanced list.
type ParseError struct {
	Line int
	Col  int
	Msg  string
}

func (e *ParseError) Error() string {
	return fmt.Sprintf("PARSE ERROR at %d:%d: %s", e.Line, e.Col, e.Msg)
}

// Parser walks a token slice with a single cursor shared across nested lists.
type Parser struct {
	tokens  []Token
	pos     int
	symbols *SymbolTable
}

// NewParser creates a parser that interns symbols into st.
func NewParser(tokens []Token, st *SymbolTable) *Parser {
	return &Parser{tokens: tokens, symbols: st}
}

// ParseAll parses every top-level form.
func (p *Parser) ParseAll() ([]Value, error) {
	var out []Value
	for p.pos < len(p.tokens) {
		tok := p.tokens[p.pos]
		if tok.Kind == RPAREN {
			return nil, &ParseError{Line: tok.Line, Col: tok.Col, Msg: "unexpected ')'"}
		}
		v, err := p.parseForm()
		if err != nil {
			return nil, err
		}
		out = append(out, v)
	}
	return out, nil
}

func (p *Parser) parseForm() (Value, error) {
	tok := p.tokens[p.pos]
	p.pos++
	switch tok.Kind {
	case LPAREN:
		return p.parseList(tok)
	case STRING:
		return Str(tok.Text[1:]), nil
	default:
		return p.parseAtom(tok)
	}
}

func (p *Parser) parseList(open Token) (Value, error) {
	items := []Value{}
	for p.pos < len(p.tokens) {
		if p.tokens[p.pos].Kind == RPAREN {
			p.pos++
			return List(items), nil
		}
		v, err := p.parseForm()
		if err != nil {
			return Nil, err
		}
		items = append(items, v)
	}
	return Nil, &ParseError{Line: open.Line, Col: open.Col, Msg: "list was not closed"}
}

func (p *Parser) parseAtom(tok Token) (Value, error) {
	s := tok.Text
	if !looksNumeric(s) {
		return Sym(p.symbols.Intern(s)), nil
	}
	if strings.ContainsAny(s, ".e") {
		f, err := strconv.ParseFloat(s, 64)
		if err != nil {
			return Nil, &ParseError{Line: tok.Line, Col: tok.Col, Msg: fmt.Sprintf("invalid float literal %q", s)}
		}
		return Float(f), nil
	}
	if strings.HasSuffix(s, "L") || strings.HasSuffix(s, "l") {
		n, err := strconv.ParseInt(s[:len(s)-1], 10, 64)
		if err != nil {
			return Nil, &ParseError{Line: tok.Line, Col: tok.Col, Msg: fmt.Sprintf("invalid long literal %q", s)}
		}
		return Int64(n), nil
	}
	n, err := strconv.ParseInt(s, 10, 32)
	if err != nil {
		return Nil, &ParseError{Line: tok.Line, Col: tok.Col, Msg: fmt.Sprintf("invalid integer literal %q", s)}
	}
	return Int32(int32(n)), nil
}

func looksNumeric(s string) bool {
	if s == "" {
		return false
	}
	if isDigit(s[0]) {
		return true
	}
	return s[0] == '-' && len(s) >= 2 && isDigit(s[1])
}

func isDigit(b byte) bool { return b >= '0' && b <= '9' }

// ParseOne parses src and returns its first form, or Nil if src is empty.
func ParseOne(src string, st *SymbolTable) (Value, error) {
	toks, err := NewLexer(src).Scan()
	if err != nil {
		return Nil, err
	}
	forms, err := NewParser(toks, st).ParseAll()
	if err != nil {
		return Nil, err
	}
	if len(forms) == 0 {
		return Nil, nil
	}
	return forms[0], nil
}
