// errors.go: error taxonomy and caret-snippet rendering.
//
// Hard errors leave the public API as Go errors:
//   - *LexError   (lexer.go)  unterminated string, dangling escape
//   - *ParseError (parser.go) unclosed list, stray ')', bad number literal
//   - *RuntimeError           break outside a loop, depth exceeded, failures
//     raised outside any builtin (e.g. a malformed defmacro during resolve)
//
// Soft errors never leave the evaluator: the failing builtin is reported to
// Interpreter.ErrOut and its form evaluates to Nil with Annot set.
//
// WrapErrorWithSource renders lex/parse errors as a snippet with one line of
// context either side and a caret under the offending column:
//
//	PARSE ERROR at 2:0: unexpected ')'
//
//	   1 | (+ 1 2)
//	   2 | )
//	     | ^
package paren

import (
	"fmt"
	"strings"
)

// ErrorKind classifies runtime failures.
type ErrorKind int

const (
	ErrArityOrType ErrorKind = iota // wrong argument count/type, bad index, bad coercion
	ErrUnknownForm                  // head of a list is neither builtin nor closure
	ErrForeign                      // failure reported by the foreign capability
	ErrBreak                        // break outside any loop
	ErrDepth                        // evaluation nested deeper than MaxDepth
)

func (k ErrorKind) String() string {
	switch k {
	case ErrUnknownForm:
		return "unknown form"
	case ErrForeign:
		return "foreign"
	case ErrBreak:
		return "break"
	case ErrDepth:
		return "depth"
	default:
		return "arity/type"
	}
}

// RuntimeError is a hard evaluation failure returned from the Eval* methods.
type RuntimeError struct {
	Kind ErrorKind
	Msg  string
}

func (e *RuntimeError) Error() string { return "RUNTIME ERROR: " + e.Msg }

// WrapErrorWithSource returns err augmented with a caret snippet of src when
// err is a *LexError or *ParseError. Other errors are returned unchanged.
func WrapErrorWithSource(err error, src string) error {
	return WrapErrorWithName(err, "", src)
}

// WrapErrorWithName is WrapErrorWithSource with a source label (usually a
// file name) included in the header.
func WrapErrorWithName(err error, srcName string, src string) error {
	switch e := err.(type) {
	case *LexError:
		return fmt.Errorf("%s", prettyErrorStringLabeled(src, "LEXICAL ERROR", srcName, e.Line, e.Col, e.Msg))
	case *ParseError:
		return fmt.Errorf("%s", prettyErrorStringLabeled(src, "PARSE ERROR", srcName, e.Line, e.Col, e.Msg))
	default:
		return err
	}
}

//// END_OF_PUBLIC

// prettyErrorStringLabeled builds the snippet. line is 1-based, col 0-based;
// both are clamped to the source.
func prettyErrorStringLabeled(src, header, name string, line, col int, msg string) string {
	lines := strings.Split(src, "\n")
	if line < 1 {
		line = 1
	}
	if line > len(lines) {
		line = len(lines)
	}
	if col < 0 {
		col = 0
	}

	var b strings.Builder
	if name != "" {
		fmt.Fprintf(&b, "%s in %s at %d:%d: %s\n\n", header, name, line, col, msg)
	} else {
		fmt.Fprintf(&b, "%s at %d:%d: %s\n\n", header, line, col, msg)
	}
	if line > 1 {
		fmt.Fprintf(&b, "%4d | %s\n", line-1, lines[line-2])
	}
	fmt.Fprintf(&b, "%4d | %s\n", line, lines[line-1])
	fmt.Fprintf(&b, "     | %s^\n", strings.Repeat(" ", col))
	if line < len(lines) {
		fmt.Fprintf(&b, "%4d | %s\n", line+1, lines[line])
	}
	return b.String()
}
