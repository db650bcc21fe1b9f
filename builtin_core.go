package paren

// ---- core built-ins ----------------------------------------------------
//
// Control flow, binding, closures and list primitives. Forms that take
// unevaluated sub-forms (quote, fn, set, def, for, ++/--) read them with
// c.raw/c.symbolArg; everything else evaluates through c.eval.

func init() {
	// (= x y ...) structural equality against x, short-circuiting.
	defineBuiltin(bEq, func(c *callCtx) Value {
		c.atLeast(1)
		first := c.eval(0)
		for i := 1; i < c.n(); i++ {
			if !Equal(first, c.eval(i)) {
				return Bool(false)
			}
		}
		return Bool(true)
	})

	defineBuiltin(bAnd, func(c *callCtx) Value {
		for i := 0; i < c.n(); i++ {
			if !c.cond(i) {
				return Bool(false)
			}
		}
		return Bool(true)
	})
	defineBuiltin(bOr, func(c *callCtx) Value {
		for i := 0; i < c.n(); i++ {
			if c.cond(i) {
				return Bool(true)
			}
		}
		return Bool(false)
	})
	defineBuiltin(bNot, func(c *callCtx) Value {
		c.need(1)
		return Bool(!c.cond(0))
	})

	// (if COND THEN [ELSE])
	defineBuiltin(bIf, func(c *callCtx) Value {
		if c.n() != 2 && c.n() != 3 {
			failf("if expects 2 or 3 arguments, got %d", c.n())
		}
		if c.cond(0) {
			return c.eval(1)
		}
		if c.n() == 3 {
			return c.eval(2)
		}
		return Nil
	})

	// (when COND BODY...)
	defineBuiltin(bWhen, func(c *callCtx) Value {
		c.atLeast(1)
		if c.cond(0) {
			return c.body(1)
		}
		return Nil
	})

	// (for SYM START END STEP BODY...): inclusive bounds, counts down when
	// STEP is negative. SYM is assigned like set does and keeps the last
	// value it was given.
	defineBuiltin(bFor, func(c *callCtx) Value {
		c.atLeast(4)
		sym := c.symbolArg(0)
		start := c.numArg(1)
		last, stp := c.numArg(2), c.numArg(3)
		switch start.Tag {
		case VTInt32:
			countLoop(start.Data.(int32), toInt32(last), toInt32(stp), func(a int32) bool {
				c.env.Assign(sym.Code, Int32(a))
				return !c.loopBody(4)
			})
		case VTInt64:
			countLoop(start.Data.(int64), toInt64(last), toInt64(stp), func(a int64) bool {
				c.env.Assign(sym.Code, Int64(a))
				return !c.loopBody(4)
			})
		default:
			countLoop(start.Data.(float64), toFloat(last), toFloat(stp), func(a float64) bool {
				c.env.Assign(sym.Code, Float(a))
				return !c.loopBody(4)
			})
		}
		return Nil
	})

	defineBuiltin(bWhile, func(c *callCtx) Value {
		c.atLeast(1)
		for c.cond(0) {
			if c.loopBody(1) {
				break
			}
		}
		return Nil
	})

	defineBuiltin(bBreak, func(c *callCtx) Value {
		c.need(0)
		panic(breakSig{})
	})

	// (range START END STEP) lists what for would bind.
	defineBuiltin(bRange, func(c *callCtx) Value {
		c.need(3)
		start := c.numArg(0)
		last, stp := c.numArg(1), c.numArg(2)
		if toFloat(stp) == 0 {
			fail("range: step must not be zero")
		}
		out := []Value{}
		switch start.Tag {
		case VTInt32:
			countLoop(start.Data.(int32), toInt32(last), toInt32(stp), func(a int32) bool {
				out = append(out, Int32(a))
				return true
			})
		case VTInt64:
			countLoop(start.Data.(int64), toInt64(last), toInt64(stp), func(a int64) bool {
				out = append(out, Int64(a))
				return true
			})
		default:
			countLoop(start.Data.(float64), toFloat(last), toFloat(stp), func(a float64) bool {
				out = append(out, Float(a))
				return true
			})
		}
		return List(out)
	})

	defineBuiltin(bQuote, func(c *callCtx) Value {
		c.need(1)
		return c.raw(0)
	})

	// (fn (PARAMS...) BODY...)
	defineBuiltin(bFn, func(c *callCtx) Value {
		c.atLeast(1)
		ps := c.raw(0)
		if ps.Tag != VTList {
			failf("fn: parameter list expected, got %s", FormatValue(ps))
		}
		raw := ps.Data.([]Value)
		params := make([]Symbol, len(raw))
		for i, p := range raw {
			if p.Tag != VTSymbol {
				failf("fn: parameter %s is not a symbol", FormatValue(p))
			}
			params[i] = p.Data.(Symbol)
		}
		return ClosureVal(&Closure{Params: params, Body: c.args[1:], Env: c.env})
	})

	defineBuiltin(bList, func(c *callCtx) Value { return List(c.evalAll()) })

	defineBuiltin(bApply, func(c *callCtx) Value {
		c.need(2)
		f := c.eval(0)
		return c.ip.callValue(c.t, f, c.listArg(1), c.env)
	})

	// (fold F LIST) folds left starting from the first element.
	defineBuiltin(bFold, func(c *callCtx) Value {
		c.need(2)
		f := c.eval(0)
		xs := c.listArg(1)
		if len(xs) == 0 {
			fail("fold: empty list")
		}
		acc := xs[0]
		for _, x := range xs[1:] {
			acc = c.ip.callValue(c.t, f, []Value{acc, x}, c.env)
		}
		return acc
	})

	defineBuiltin(bMap, func(c *callCtx) Value {
		c.need(2)
		f := c.eval(0)
		xs := c.listArg(1)
		out := make([]Value, len(xs))
		for i, x := range xs {
			out[i] = c.ip.callValue(c.t, f, []Value{x}, c.env)
		}
		return List(out)
	})

	defineBuiltin(bFilter, func(c *callCtx) Value {
		c.need(2)
		f := c.eval(0)
		xs := c.listArg(1)
		out := []Value{}
		for _, x := range xs {
			keep := c.ip.callValue(c.t, f, []Value{x}, c.env)
			if keep.Tag != VTBool {
				failf("filter: predicate returned %s, not a boolean", TypeName(keep))
			}
			if keep.Data.(bool) {
				out = append(out, x)
			}
		}
		return List(out)
	})

	// (nth INDEX LIST)
	defineBuiltin(bNth, func(c *callCtx) Value {
		c.need(2)
		i := toInt32(c.numArg(0))
		xs := c.listArg(1)
		if i < 0 || int(i) >= len(xs) {
			failf("nth: index %d out of range for list of length %d", i, len(xs))
		}
		return xs[i]
	})

	defineBuiltin(bLength, func(c *callCtx) Value {
		c.need(1)
		return Int32(int32(len(c.listArg(0))))
	})

	defineBuiltin(bBegin, func(c *callCtx) Value { return c.body(0) })

	// (set SYM VALUE) updates the nearest binding, or binds SYM globally.
	defineBuiltin(bSet, func(c *callCtx) Value {
		c.need(2)
		sym := c.symbolArg(0)
		v := c.eval(1)
		if cell := c.env.Lookup(sym.Code); cell != nil {
			cell.Store(v)
		} else {
			c.ip.Global.Define(sym.Code, v)
		}
		return v
	})

	// (def SYM VALUE) binds SYM in the current frame only.
	defineBuiltin(bDef, func(c *callCtx) Value {
		c.need(2)
		sym := c.symbolArg(0)
		v := c.eval(1)
		c.env.Define(sym.Code, v)
		return v
	})

	defineBuiltin(bCons, func(c *callCtx) Value {
		c.need(2)
		x := c.eval(0)
		xs := c.listArg(1)
		out := make([]Value, 0, len(xs)+1)
		out = append(out, x)
		return List(append(out, xs...))
	})

	defineBuiltin(bNullP, func(c *callCtx) Value {
		c.need(1)
		return Bool(c.eval(0).Tag == VTNil)
	})

	// (eval FORM) resolves and evaluates FORM in the global environment.
	defineBuiltin(bEval, func(c *callCtx) Value {
		c.need(1)
		form := c.eval(0)
		return c.ip.eval(c.t, c.ip.resolve(form, c.ip.Global), c.ip.Global)
	})

	defineBuiltin(bType, func(c *callCtx) Value {
		c.need(1)
		return Str(TypeName(c.eval(0)))
	})

	defineBuiltin(bReadString, func(c *callCtx) Value {
		c.need(1)
		v, err := ParseOne(c.strArg(0), c.ip.symbols)
		if err != nil {
			fail("read-string: " + err.Error())
		}
		return v
	})

	// Macro definitions are consumed by the resolver; one that reaches the
	// evaluator (e.g. through apply) does nothing.
	defineBuiltin(bDefmacro, func(c *callCtx) Value { return Nil })
}

// countLoop drives for/range: from a through last inclusive, upward when
// step >= 0 and downward otherwise. visit returns false to stop early.
func countLoop[T number](a, last, step T, visit func(T) bool) {
	if step >= 0 {
		for ; a <= last; a += step {
			if !visit(a) {
				return
			}
		}
		return
	}
	for ; a >= last; a += step {
		if !visit(a) {
			return
		}
	}
}
