package paren

import (
	"math"
	"math/rand/v2"
)

// ---- arithmetic, comparison and counters ----------------------------------
//
// Every n-ary numeric op is typed by its first operand: the remaining operands
// are converted to that operand's type before the fold, so (+ 1 2.9) is the
// Int32 3 and (+ 1.0 2) is the Float64 3.0.

func init() {
	defineBuiltin(bAdd, func(c *callCtx) Value { return arith(c, 0, add[int32], add[int64], add[float64]) })
	defineBuiltin(bSub, func(c *callCtx) Value { return arith(c, 0, sub[int32], sub[int64], sub[float64]) })
	defineBuiltin(bMul, func(c *callCtx) Value { return arith(c, 1, mul[int32], mul[int64], mul[float64]) })
	defineBuiltin(bDiv, func(c *callCtx) Value { return arith(c, 1, intDiv[int32], intDiv[int64], floatDiv) })

	defineBuiltin(bPow, func(c *callCtx) Value {
		c.need(2)
		return Float(math.Pow(toFloat(c.numArg(0)), toFloat(c.numArg(1))))
	})
	defineBuiltin(bMod, func(c *callCtx) Value {
		c.need(2)
		a, b := toInt32(c.numArg(0)), toInt32(c.numArg(1))
		if b == 0 {
			fail("%: division by zero")
		}
		return Int32(a % b)
	})

	unary := map[Builtin]func(float64) float64{
		bSqrt:  math.Sqrt,
		bFloor: math.Floor,
		bCeil:  math.Ceil,
		bLn:    math.Log,
		bLog10: math.Log10,
	}
	for b, f := range unary {
		defineBuiltin(b, func(c *callCtx) Value {
			c.need(1)
			return Float(f(toFloat(c.numArg(0))))
		})
	}

	defineBuiltin(bInc, func(c *callCtx) Value { return step(c, 1) })
	defineBuiltin(bDec, func(c *callCtx) Value { return step(c, -1) })
	defineBuiltin(bIncr, func(c *callCtx) Value { return stepCell(c, 1) })
	defineBuiltin(bDecr, func(c *callCtx) Value { return stepCell(c, -1) })

	defineBuiltin(bRand, func(c *callCtx) Value {
		c.need(0)
		return Float(rand.Float64())
	})

	for _, b := range []Builtin{bLt, bGt, bLe, bGe} {
		defineBuiltin(b, func(c *callCtx) Value {
			c.need(2)
			return Bool(relate(b, c.numArg(0), c.numArg(1)))
		})
	}
	// (== x y ...) holds when every operand equals x; (!= x y ...) when none does.
	defineBuiltin(bNumEq, func(c *callCtx) Value { return Bool(allRelate(c, bNumEq)) })
	defineBuiltin(bNumNe, func(c *callCtx) Value { return Bool(allRelate(c, bNumNe)) })
}

func add[T number](a, b T) T { return a + b }
func sub[T number](a, b T) T { return a - b }
func mul[T number](a, b T) T { return a * b }

func intDiv[T int32 | int64](a, b T) T {
	if b == 0 {
		fail("/: division by zero")
	}
	return a / b
}

func floatDiv(a, b float64) float64 { return a / b }

func foldNum[T number](acc T, rest []Value, conv func(Value) T, op func(T, T) T) T {
	for _, v := range rest {
		acc = op(acc, conv(v))
	}
	return acc
}

// arith evaluates every operand and folds left in the first operand's type.
// With no operands it yields empty; with one, the operand itself.
func arith(c *callCtx, empty int32, i32 func(a, b int32) int32, i64 func(a, b int64) int64, f64 func(a, b float64) float64) Value {
	if c.n() == 0 {
		return Int32(empty)
	}
	xs := make([]Value, c.n())
	for i := range xs {
		xs[i] = c.numArg(i)
	}
	switch first := xs[0]; first.Tag {
	case VTInt32:
		return Int32(foldNum(first.Data.(int32), xs[1:], toInt32, i32))
	case VTInt64:
		return Int64(foldNum(first.Data.(int64), xs[1:], toInt64, i64))
	default:
		return Float(foldNum(first.Data.(float64), xs[1:], toFloat, f64))
	}
}

// step is inc/dec: the operand plus delta, keeping its numeric type.
func step(c *callCtx, delta int32) Value {
	if c.n() == 0 {
		return Int32(0)
	}
	c.need(1)
	return offset(c.numArg(0), delta)
}

// stepCell is ++/--: the cell bound to a symbol argument is updated in place
// and its new value returned.
func stepCell(c *callCtx, delta int32) Value {
	if c.n() == 0 {
		return Int32(0)
	}
	c.need(1)
	sym := c.symbolArg(0)
	cell := c.env.Lookup(sym.Code)
	if cell == nil {
		failf("%s: %s is not bound", c.b, sym.Name)
	}
	cur := cell.Load()
	if !isNumber(cur) {
		failf("%s: %s holds %s, not a number", c.b, sym.Name, TypeName(cur))
	}
	next := offset(cur, delta)
	cell.Store(next)
	return next
}

func offset(v Value, delta int32) Value {
	switch v.Tag {
	case VTInt32:
		return Int32(v.Data.(int32) + delta)
	case VTInt64:
		return Int64(v.Data.(int64) + int64(delta))
	default:
		return Float(v.Data.(float64) + float64(delta))
	}
}

func compareAs[T number](op Builtin, x, y T) bool {
	switch op {
	case bLt:
		return x < y
	case bGt:
		return x > y
	case bLe:
		return x <= y
	case bGe:
		return x >= y
	case bNumEq:
		return x == y
	default:
		return x != y
	}
}

// relate applies a numeric relation in a's type.
func relate(op Builtin, a, b Value) bool {
	switch a.Tag {
	case VTInt32:
		return compareAs(op, a.Data.(int32), toInt32(b))
	case VTInt64:
		return compareAs(op, a.Data.(int64), toInt64(b))
	default:
		return compareAs(op, toFloat(a), toFloat(b))
	}
}

// allRelate short-circuits the n-ary ==/!= against the first operand.
func allRelate(c *callCtx, op Builtin) bool {
	c.atLeast(1)
	first := c.numArg(0)
	for i := 1; i < c.n(); i++ {
		if !relate(op, first, c.numArg(i)) {
			return false
		}
	}
	return true
}
