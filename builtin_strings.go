package paren

import (
	"strconv"
	"strings"
	"unicode/utf8"
)

// ---- strings and explicit coercions ---------------------------------------
//
// Strings are indexed by code point: strlen counts runes, char-at returns the
// rune at a rune index, chr builds a one-rune string.

func init() {
	defineBuiltin(bStrlen, func(c *callCtx) Value {
		c.need(1)
		return Int32(int32(utf8.RuneCountInString(c.strArg(0))))
	})

	// (strcat X ...) concatenates the display text of every argument.
	defineBuiltin(bStrcat, func(c *callCtx) Value {
		var b strings.Builder
		for i := 0; i < c.n(); i++ {
			b.WriteString(Display(c.eval(i)))
		}
		return Str(b.String())
	})

	// (char-at STRING INDEX)
	defineBuiltin(bCharAt, func(c *callCtx) Value {
		c.need(2)
		rs := []rune(c.strArg(0))
		i := toInt32(c.numArg(1))
		if i < 0 || int(i) >= len(rs) {
			failf("char-at: index %d out of range for string of length %d", i, len(rs))
		}
		return Int32(rs[i])
	})

	defineBuiltin(bChr, func(c *callCtx) Value {
		c.need(1)
		r := toInt32(c.numArg(0))
		if r < 0 || !utf8.ValidRune(rune(r)) {
			failf("chr: %d is not a valid code point", r)
		}
		return Str(string(rune(r)))
	})

	defineBuiltin(bString, func(c *callCtx) Value {
		c.need(1)
		return Str(Display(c.eval(0)))
	})

	defineBuiltin(bInt, func(c *callCtx) Value {
		c.need(1)
		return Int32(toInt32(coerceArg(c)))
	})
	defineBuiltin(bLong, func(c *callCtx) Value {
		c.need(1)
		return Int64(toInt64(coerceArg(c)))
	})
	defineBuiltin(bDouble, func(c *callCtx) Value {
		c.need(1)
		return Float(toFloat(coerceArg(c)))
	})
}

// coerceArg evaluates the single argument of int/long/double. Numbers pass
// through; numeric strings are parsed with the literal rules of the reader.
func coerceArg(c *callCtx) Value {
	v := c.eval(0)
	switch {
	case isNumber(v):
		return v
	case v.Tag == VTStr:
		if n, ok := parseNumber(strings.TrimSpace(v.Data.(string))); ok {
			return n
		}
		failf("%s: %s is not a number", c.b, quoteString(v.Data.(string)))
	default:
		failf("%s: cannot convert %s", c.b, TypeName(v))
	}
	return Nil
}

// parseNumber accepts decimal integers (Int64 when they overflow 32 bits),
// an optional L suffix, and anything strconv.ParseFloat accepts.
func parseNumber(s string) (Value, bool) {
	if s == "" {
		return Nil, false
	}
	if n, err := strconv.ParseInt(s, 10, 32); err == nil {
		return Int32(int32(n)), true
	}
	if n, err := strconv.ParseInt(strings.TrimRight(s, "Ll"), 10, 64); err == nil {
		return Int64(n), true
	}
	if f, err := strconv.ParseFloat(s, 64); err == nil {
		return Float(f), true
	}
	return Nil, false
}
