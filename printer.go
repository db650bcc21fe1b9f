package paren

import (
	"fmt"
	"math"
	"strconv"
	"strings"
)

/* ---------- tiny helpers ---------- */

func quoteString(s string) string {
	var b strings.Builder
	b.WriteByte('"')
	for _, r := range s {
		switch r {
		case '\\':
			b.WriteString(`\\`)
		case '"':
			b.WriteString(`\"`)
		case '\n':
			b.WriteString(`\n`)
		case '\r':
			b.WriteString(`\r`)
		case '\t':
			b.WriteString(`\t`)
		default:
			b.WriteRune(r)
		}
	}
	b.WriteByte('"')
	return b.String()
}

func formatFloat(f float64) string {
	switch {
	case math.IsNaN(f):
		return "NaN"
	case math.IsInf(f, 1):
		return "Infinity"
	case math.IsInf(f, -1):
		return "-Infinity"
	}
	s := strconv.FormatFloat(f, 'g', -1, 64)
	if !strings.ContainsAny(s, ".e") {
		s += ".0"
	}
	return s
}

/* ---------- runtime value printers ---------- */

// FormatValue returns the re-readable text of v: strings quoted and escaped,
// Int64 with an L suffix, floats always carrying '.' or an exponent. For
// numbers, strings, symbols and lists of them, parsing the result yields a
// value Equal to v.
func FormatValue(v Value) string {
	var b strings.Builder
	writeValue(&b, v, true)
	return b.String()
}

// Display returns the text pr/prn/strcat/string produce: strings raw, Nil as
// the empty string, Int64 without its suffix.
func Display(v Value) string {
	var b strings.Builder
	writeValue(&b, v, false)
	return b.String()
}

func writeValue(b *strings.Builder, v Value, readable bool) {
	switch v.Tag {
	case VTNil:
		if readable {
			b.WriteString("null")
		}
	case VTBool:
		b.WriteString(strconv.FormatBool(v.Data.(bool)))
	case VTInt32:
		b.WriteString(strconv.FormatInt(int64(v.Data.(int32)), 10))
	case VTInt64:
		b.WriteString(strconv.FormatInt(v.Data.(int64), 10))
		if readable {
			b.WriteByte('L')
		}
	case VTFloat:
		b.WriteString(formatFloat(v.Data.(float64)))
	case VTStr:
		if readable {
			b.WriteString(quoteString(v.Data.(string)))
		} else {
			b.WriteString(v.Data.(string))
		}
	case VTSymbol:
		b.WriteString(v.Data.(Symbol).Name)
	case VTList:
		b.WriteByte('(')
		for i, x := range v.Data.([]Value) {
			if i > 0 {
				b.WriteByte(' ')
			}
			writeValue(b, x, readable)
		}
		b.WriteByte(')')
	case VTBuiltin:
		b.WriteString(v.Data.(Builtin).String())
	case VTClosure:
		c := v.Data.(*Closure)
		b.WriteString("(fn (")
		for i, p := range c.Params {
			if i > 0 {
				b.WriteByte(' ')
			}
			b.WriteString(p.Name)
		}
		b.WriteByte(')')
		for _, form := range c.Body {
			b.WriteByte(' ')
			writeValue(b, form, true)
		}
		b.WriteByte(')')
	case VTForeign:
		h := v.Data.(*Handle)
		if !readable {
			if s, ok := h.Data.(fmt.Stringer); ok {
				b.WriteString(s.String())
				return
			}
		}
		fmt.Fprintf(b, "#<%s>", h.Kind)
	default:
		fmt.Fprintf(b, "#<unknown %d>", v.Tag)
	}
}

// TypeName is what `type` returns for v. Foreign handles report their kind.
func TypeName(v Value) string {
	switch v.Tag {
	case VTNil:
		return "null"
	case VTBool:
		return "boolean"
	case VTInt32:
		return "int"
	case VTInt64:
		return "long"
	case VTFloat:
		return "double"
	case VTStr:
		return "string"
	case VTSymbol:
		return "symbol"
	case VTList:
		return "list"
	case VTBuiltin:
		return "builtin"
	case VTClosure:
		return "fn"
	case VTForeign:
		return v.Data.(*Handle).Kind
	}
	return "unknown"
}
