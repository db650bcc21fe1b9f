// interpreter_ops.go: PRIVATE: the builtin vocabulary and its plumbing.
//
// This file:
//   - Declares the closed set of builtin tags (`Builtin`) and their source
//     names. Global bindings for every name are installed by seedGlobals.
//   - Holds the dispatch table. Each builtin_*.go file fills its slots from
//     an init func, so every implementation can re-enter the evaluator
//     without an initialization cycle.
//   - Numeric coercions shared by math, string and foreign builtins.
//   - Structural equality (`Equal`) used by `=`.
//
// Public API is in interpreter.go. Exec/call engine is in interpreter_exec.go.
package paren

import (
	"math"
)

// Builtin tags every primitive form of the language.
type Builtin int

const (
	bAdd Builtin = iota
	bSub
	bMul
	bDiv
	bPow
	bMod
	bSqrt
	bFloor
	bCeil
	bLn
	bLog10
	bInc
	bDec
	bIncr
	bDecr
	bRand

	bEq
	bNumEq
	bNumNe
	bLt
	bGt
	bLe
	bGe
	bAnd
	bOr
	bNot

	bIf
	bWhen
	bFor
	bWhile
	bBreak

	bStrlen
	bStrcat
	bCharAt
	bChr
	bInt
	bDouble
	bLong
	bString
	bReadString
	bType

	bEval
	bQuote
	bFn
	bList
	bApply
	bFold
	bMap
	bFilter
	bRange
	bNth
	bLength
	bBegin
	bSet
	bDef
	bCons
	bNullP
	bCast

	bPr
	bPrn
	bExit
	bSystem
	bThread
	bDefmacro

	bDot
	bDotGet
	bDotSet
	bNew

	numBuiltins
)

var builtinNames = [numBuiltins]string{
	bAdd: "+", bSub: "-", bMul: "*", bDiv: "/", bPow: "^", bMod: "%",
	bSqrt: "sqrt", bFloor: "floor", bCeil: "ceil", bLn: "ln", bLog10: "log10",
	bInc: "inc", bDec: "dec", bIncr: "++", bDecr: "--", bRand: "rand",

	bEq: "=", bNumEq: "==", bNumNe: "!=", bLt: "<", bGt: ">", bLe: "<=", bGe: ">=",
	bAnd: "&&", bOr: "||", bNot: "!",

	bIf: "if", bWhen: "when", bFor: "for", bWhile: "while", bBreak: "break",

	bStrlen: "strlen", bStrcat: "strcat", bCharAt: "char-at", bChr: "chr",
	bInt: "int", bDouble: "double", bLong: "long", bString: "string",
	bReadString: "read-string", bType: "type",

	bEval: "eval", bQuote: "quote", bFn: "fn", bList: "list", bApply: "apply",
	bFold: "fold", bMap: "map", bFilter: "filter", bRange: "range",
	bNth: "nth", bLength: "length", bBegin: "begin", bSet: "set", bDef: "def",
	bCons: "cons", bNullP: "null?", bCast: "cast",

	bPr: "pr", bPrn: "prn", bExit: "exit", bSystem: "system",
	bThread: "thread", bDefmacro: "defmacro",

	bDot: ".", bDotGet: ".get", bDotSet: ".set", bNew: "new",
}

// String returns the name the builtin is bound to in a fresh interpreter.
func (b Builtin) String() string {
	if b >= 0 && b < numBuiltins {
		return builtinNames[b]
	}
	return "builtin?"
}

// builtinFn implements one builtin over its raw argument forms.
type builtinFn func(c *callCtx) Value

var builtinTable [numBuiltins]builtinFn

func defineBuiltin(b Builtin, fn builtinFn) {
	if builtinTable[b] != nil {
		panic("duplicate builtin " + b.String())
	}
	builtinTable[b] = fn
}

// BuiltinNames lists every builtin name in tag order.
func BuiltinNames() []string {
	out := make([]string, numBuiltins)
	copy(out, builtinNames[:])
	return out
}

////////////////////////////////////////////////////////////////////////////////
//                              NUMERIC HELPERS
////////////////////////////////////////////////////////////////////////////////

// number is the set of Go types backing the numeric tower.
type number interface {
	~int32 | ~int64 | ~float64
}

func isNumber(v Value) bool {
	switch v.Tag {
	case VTInt32, VTInt64, VTFloat:
		return true
	}
	return false
}

// toInt32 narrows any numeric value to int32. Integers wrap; floats truncate
// toward zero and saturate, NaN becomes 0.
func toInt32(v Value) int32 {
	switch v.Tag {
	case VTInt32:
		return v.Data.(int32)
	case VTInt64:
		return int32(v.Data.(int64))
	case VTFloat:
		return f64ToInt32(v.Data.(float64))
	}
	failf("expected a number, got %s", TypeName(v))
	return 0
}

func toInt64(v Value) int64 {
	switch v.Tag {
	case VTInt32:
		return int64(v.Data.(int32))
	case VTInt64:
		return v.Data.(int64)
	case VTFloat:
		return f64ToInt64(v.Data.(float64))
	}
	failf("expected a number, got %s", TypeName(v))
	return 0
}

func toFloat(v Value) float64 {
	switch v.Tag {
	case VTInt32:
		return float64(v.Data.(int32))
	case VTInt64:
		return float64(v.Data.(int64))
	case VTFloat:
		return v.Data.(float64)
	}
	failf("expected a number, got %s", TypeName(v))
	return 0
}

func f64ToInt32(f float64) int32 {
	switch {
	case math.IsNaN(f):
		return 0
	case f >= math.MaxInt32:
		return math.MaxInt32
	case f <= math.MinInt32:
		return math.MinInt32
	}
	return int32(f)
}

func f64ToInt64(f float64) int64 {
	switch {
	case math.IsNaN(f):
		return 0
	case f >= math.MaxInt64:
		return math.MaxInt64
	case f <= math.MinInt64:
		return math.MinInt64
	}
	return int64(f)
}

// numOf builds a Value of the given numeric tag from a Go number.
func numOf[T number](tag ValueTag, x T) Value {
	switch tag {
	case VTInt32:
		return Int32(int32(x))
	case VTInt64:
		return Int64(int64(x))
	default:
		return Float(float64(x))
	}
}

////////////////////////////////////////////////////////////////////////////////
//                                  EQUALITY
////////////////////////////////////////////////////////////////////////////////

// Equal reports structural equality. Values of different tags are never
// equal (Int32 1 and Int64 1 differ); lists compare element-wise; closures
// and foreign handles compare by identity. Annotations and hints are ignored.
func Equal(a, b Value) bool {
	if a.Tag != b.Tag {
		return false
	}
	switch a.Tag {
	case VTNil:
		return true
	case VTList:
		xs, ys := a.Data.([]Value), b.Data.([]Value)
		if len(xs) != len(ys) {
			return false
		}
		for i := range xs {
			if !Equal(xs[i], ys[i]) {
				return false
			}
		}
		return true
	case VTSymbol:
		return a.Data.(Symbol).Name == b.Data.(Symbol).Name
	default:
		return a.Data == b.Data
	}
}
