// lexer.go: Paren tokenizer.
package paren

import (
	"fmt"
	"strings"
)

// TokenKind represents the kind of token.
type TokenKind int

const (
	LPAREN TokenKind = iota // "("
	RPAREN                  // ")"
	STRING                  // string literal; Text is `"` + unescaped contents
	ATOM                    // number or symbol text, classified by the parser
)

func (k TokenKind) String() string {
	switch k {
	case LPAREN:
		return "'('"
	case RPAREN:
		return "')'"
	case STRING:
		return "string"
	default:
		return "atom"
	}
}

// Token is a lexical token with its 1-based line and 0-based column.
type Token struct {
	Kind TokenKind
	Text string
	Line int
	Col  int
}

// Lexer scans Paren source into tokens.
//
// Unclosed is the running balance of open parens plus an unterminated string
// (if any). It is ≤ 0 exactly when the scanned input is complete, which is
// what interactive hosts use to decide whether to keep reading lines.
type Lexer struct {
	src  string
	cur  int
	line int
	col  int

	tokens   []Token
	acc      strings.Builder
	accLine  int
	accCol   int
	Unclosed int
}

// NewLexer creates a new lexer for the given source.
func NewLexer(src string) *Lexer {
	return &Lexer{src: src, line: 1}
}

func (l *Lexer) isAtEnd() bool { return l.cur >= len(l.src) }

func (l *Lexer) peek() (byte, bool) {
	if l.isAtEnd() {
		return 0, false
	}
	return l.src[l.cur], true
}

func (l *Lexer) advance() (byte, bool) {
	if l.isAtEnd() {
		return 0, false
	}
	ch := l.src[l.cur]
	l.cur++
	if ch == '\n' {
		l.line++
		l.col = 0
	} else {
		l.col++
	}
	return ch, true
}

// ----- errors -----

type LexError struct {
	Line int
	Col  int
	Msg  string
}

func (e *LexError) Error() string {
	return fmt.Sprintf("LEXICAL ERROR at %d:%d: %s", e.Line, e.Col, e.Msg)
}

func (l *Lexer) err(msg string) error {
	return &LexError{Line: l.line, Col: l.col, Msg: msg}
}

// ----- emitters -----

// emit flushes the pending atom text, if any.
func (l *Lexer) emit() {
	if l.acc.Len() == 0 {
		return
	}
	l.tokens = append(l.tokens, Token{Kind: ATOM, Text: l.acc.String(), Line: l.accLine, Col: l.accCol})
	l.acc.Reset()
}

func (l *Lexer) push(k TokenKind, text string, line, col int) {
	l.tokens = append(l.tokens, Token{Kind: k, Text: text, Line: line, Col: col})
}

// ----- scanners -----

// ignoreUntilNewline eats until '\n' or EOF.
func (l *Lexer) ignoreUntilNewline() {
	for {
		b, ok := l.peek()
		if !ok || b == '\n' {
			return
		}
		l.advance()
	}
}

// scanString reads a string literal; the opening quote is already consumed.
// Escapes \r \n \t \\ \" are honored; any other escaped byte stands for itself.
func (l *Lexer) scanString(line, col int) error {
	l.Unclosed++
	var b strings.Builder
	b.WriteByte('"')
	for {
		ch, ok := l.advance()
		if !ok {
			return &LexError{Line: line, Col: col, Msg: "string was not terminated"}
		}
		if ch == '"' {
			l.Unclosed--
			l.push(STRING, b.String(), line, col)
			return nil
		}
		if ch != '\\' {
			b.WriteByte(ch)
			continue
		}
		esc, ok := l.advance()
		if !ok {
			return l.err("unfinished escape sequence")
		}
		switch esc {
		case 'r':
			b.WriteByte('\r')
		case 'n':
			b.WriteByte('\n')
		case 't':
			b.WriteByte('\t')
		default:
			b.WriteByte(esc)
		}
	}
}

// Scan tokenizes the entire source. Whitespace separates tokens; ';' and '#'
// start a comment running to the end of the line.
func (l *Lexer) Scan() ([]Token, error) {
	for {
		line, col := l.line, l.col
		ch, ok := l.advance()
		if !ok {
			l.emit()
			return l.tokens, nil
		}
		switch ch {
		case ' ', '\t', '\r', '\n':
			l.emit()
		case ';', '#':
			l.emit()
			l.ignoreUntilNewline()
		case '"':
			l.emit()
			if err := l.scanString(line, col); err != nil {
				return l.tokens, err
			}
		case '(':
			l.emit()
			l.Unclosed++
			l.push(LPAREN, "(", line, col)
		case ')':
			l.emit()
			l.Unclosed--
			l.push(RPAREN, ")", line, col)
		default:
			if l.acc.Len() == 0 {
				l.accLine, l.accCol = line, col
			}
			l.acc.WriteByte(ch)
		}
	}
}

// Tokenize is a convenience wrapper returning token texts only.
func Tokenize(src string) ([]string, error) {
	toks, err := NewLexer(src).Scan()
	out := make([]string, len(toks))
	for i, t := range toks {
		out[i] = t.Text
	}
	return out, err
}

// Balance scans src and returns the open-paren/open-string balance. A result
// > 0 means the input is incomplete and an interactive host should read more.
// Lexical errors do not stop the count.
func Balance(src string) int {
	l := NewLexer(src)
	_, _ = l.Scan()
	return l.Unclosed
}
