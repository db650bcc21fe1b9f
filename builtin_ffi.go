package paren

import (
	"errors"
)

// ---- interop forms -----------------------------------------------------
//
// These builtins only shape a ForeignCall and route it to ip.Foreign; what a
// path or member means is the capability's business (see ffi.go). Failures
// are soft ErrForeign errors.

func init() {
	// (. TARGET MEMBER ARG...)
	defineBuiltin(bDot, func(c *callCtx) Value {
		c.atLeast(2)
		call := c.foreignTarget(ForeignMethod)
		call.Member = c.memberName(1)
		for i := 2; i < c.n(); i++ {
			call.Args = append(call.Args, c.eval(i))
		}
		return c.invokeForeign(call)
	})

	// (.get TARGET FIELD)
	defineBuiltin(bDotGet, func(c *callCtx) Value {
		c.need(2)
		call := c.foreignTarget(ForeignGet)
		call.Member = c.memberName(1)
		return c.invokeForeign(call)
	})

	// (.set TARGET FIELD VALUE) yields Nil.
	defineBuiltin(bDotSet, func(c *callCtx) Value {
		c.need(3)
		call := c.foreignTarget(ForeignSet)
		call.Member = c.memberName(1)
		call.Args = []Value{c.eval(2)}
		c.invokeForeign(call)
		return Nil
	})

	// (new CLASS ARG...)
	defineBuiltin(bNew, func(c *callCtx) Value {
		c.atLeast(1)
		call := ForeignCall{Kind: ForeignNew, Path: c.memberName(0)}
		for i := 1; i < c.n(); i++ {
			call.Args = append(call.Args, c.eval(i))
		}
		return c.invokeForeign(call)
	})

	// (cast TYPE X) returns X carrying the foreign type hint TYPE.
	defineBuiltin(bCast, func(c *callCtx) Value {
		c.need(2)
		hint := c.memberName(0)
		v := c.eval(1)
		v.Hint = hint
		return v
	})
}

// foreignTarget reads argument 0: an unbound symbol is a registered path,
// anything else is evaluated to the receiver.
func (c *callCtx) foreignTarget(kind ForeignKind) ForeignCall {
	call := ForeignCall{Kind: kind}
	if t := c.raw(0); t.Tag == VTSymbol && c.env.Lookup(t.Data.(Symbol).Code) == nil {
		call.Path = t.Data.(Symbol).Name
		return call
	}
	call.Target = c.eval(0)
	return call
}

// memberName reads a literal name: a symbol or a string.
func (c *callCtx) memberName(i int) string {
	switch v := c.raw(i); v.Tag {
	case VTSymbol:
		return v.Data.(Symbol).Name
	case VTStr:
		return v.Data.(string)
	default:
		failf("%s: argument %d must be a name, got %s", c.b, i+1, FormatValue(v))
	}
	return ""
}

func (c *callCtx) invokeForeign(call ForeignCall) Value {
	if c.ip.Foreign == nil {
		failKind(ErrForeign, call.String()+": no foreign capability installed")
	}
	v, err := c.ip.Foreign.Invoke(call)
	if err != nil {
		var fe *ForeignError
		if !errors.As(err, &fe) {
			fe = &ForeignError{Call: call.String(), Err: err}
		}
		failKind(ErrForeign, fe.Error())
	}
	return v
}
