// interpreter_exec.go: PRIVATE: evaluation & call engine for Paren.
//   - Walks resolved forms: atoms, symbol reads, list application.
//   - Applies closures and builtins; soft-error recovery happens at the
//     builtin boundary, hard errors unwind to runTop.
//   - No exported identifiers here. The public facade lives in interpreter.go.
//
// Control signals (panic payloads, always values, never pointers):
//   - rtErr     raised by fail/failKind inside builtins. The innermost builtin
//     call recovers it, reports it to ErrOut and evaluates to an annotated Nil.
//     Outside a builtin (e.g. while resolving) it unwinds to runTop.
//   - breakSig  raised by `break`; recovered by the nearest for/while. Anything
//     that reaches runTop is a hard ErrBreak.
//   - depthSig  raised when a task nests deeper than MaxDepth; always hard.
//
// Recovery sites restore task.depth to the value saved on entry, so eval can
// bump and drop the counter without a defer on the hot path.
package paren

import (
	"fmt"
)

////////////////////////////////////////////////////////////////////////////////
//                         PRIVATE PANIC / ERROR HELPERS
////////////////////////////////////////////////////////////////////////////////

type breakSig struct{}
type depthSig struct{ limit int }

type rtErr struct {
	kind ErrorKind
	msg  string
}

func fail(msg string)                     { panic(rtErr{kind: ErrArityOrType, msg: msg}) }
func failKind(kind ErrorKind, msg string) { panic(rtErr{kind: kind, msg: msg}) }
func errNull(msg string) Value            { return Value{Tag: VTNil, Annot: msg} }
func failf(format string, args ...any)    { fail(fmt.Sprintf(format, args...)) }

// task is the per-goroutine evaluation state. The main caller and every
// `thread` get their own.
type task struct {
	depth int
}

////////////////////////////////////////////////////////////////////////////////
//                      CORE EXECUTION PLUMBING (PRIVATE)
////////////////////////////////////////////////////////////////////////////////

// runTop runs fn on a fresh task and converts any escaping signal into a
// *RuntimeError.
func (ip *Interpreter) runTop(fn func(t *task) Value) (out Value, err error) {
	defer func() {
		if r := recover(); r != nil {
			out, err = Nil, hardError(r)
		}
	}()
	return fn(&task{}), nil
}

func hardError(r any) error {
	switch sig := r.(type) {
	case breakSig:
		return &RuntimeError{Kind: ErrBreak, Msg: "break outside of a loop"}
	case depthSig:
		return &RuntimeError{Kind: ErrDepth, Msg: fmt.Sprintf("maximum recursion depth exceeded (%d)", sig.limit)}
	case rtErr:
		return &RuntimeError{Kind: sig.kind, Msg: sig.msg}
	case error:
		return &RuntimeError{Kind: ErrArityOrType, Msg: "runtime panic: " + sig.Error()}
	default:
		return &RuntimeError{Kind: ErrArityOrType, Msg: fmt.Sprintf("runtime panic: %v", r)}
	}
}

// report writes a soft error to ErrOut and returns the annotated Nil that the
// failing form evaluates to.
func (ip *Interpreter) report(kind ErrorKind, msg string) Value {
	ip.outMu.Lock()
	fmt.Fprintf(ip.ErrOut, "RUNTIME ERROR: %s\n", msg)
	ip.outMu.Unlock()
	return errNull(msg)
}

// eval evaluates one resolved form in env.
func (ip *Interpreter) eval(t *task, form Value, env *Env) Value {
	switch form.Tag {
	case VTSymbol:
		return env.Get(form.Data.(Symbol).Code)
	case VTList:
		t.depth++
		if ip.MaxDepth > 0 && t.depth > ip.MaxDepth {
			panic(depthSig{limit: ip.MaxDepth})
		}
		v := ip.evalList(t, form.Data.([]Value), env)
		t.depth--
		return v
	default:
		return form
	}
}

func (ip *Interpreter) evalList(t *task, xs []Value, env *Env) Value {
	if len(xs) == 0 {
		return Nil
	}
	head := ip.eval(t, xs[0], env)
	switch head.Tag {
	case VTBuiltin:
		return ip.callBuiltin(t, head.Data.(Builtin), xs[1:], env)
	case VTClosure:
		args := make([]Value, len(xs)-1)
		for i, a := range xs[1:] {
			args[i] = ip.eval(t, a, env)
		}
		return ip.applyClosure(t, head.Data.(*Closure), args)
	}
	return ip.report(ErrUnknownForm, "unknown function: "+FormatValue(xs[0]))
}

// callBuiltin dispatches b with its raw argument forms. Soft failures raised
// while b runs are reported here and become the value of the call.
func (ip *Interpreter) callBuiltin(t *task, b Builtin, args []Value, env *Env) (out Value) {
	fn := builtinTable[b]
	if fn == nil {
		return ip.report(ErrUnknownForm, "unimplemented builtin: "+b.String())
	}
	depth := t.depth
	defer func() {
		if r := recover(); r != nil {
			e, ok := r.(rtErr)
			if !ok {
				panic(r)
			}
			t.depth = depth
			out = ip.report(e.kind, e.msg)
		}
	}()
	return fn(&callCtx{ip: ip, t: t, b: b, args: args, env: env})
}

// applyClosure binds already-evaluated args in a fresh child of the closure's
// captured frame and evaluates the body there. Missing arguments bind Nil;
// surplus arguments are ignored.
func (ip *Interpreter) applyClosure(t *task, c *Closure, args []Value) Value {
	frame := NewEnv(c.Env)
	for i, p := range c.Params {
		v := Nil
		if i < len(args) {
			v = args[i]
		}
		frame.Define(p.Code, v)
	}
	out := Nil
	for _, form := range c.Body {
		out = ip.eval(t, form, frame)
	}
	return out
}

// callValue invokes fn with already-evaluated args. Builtins receive each
// argument wrapped as (quote v) so it is not evaluated a second time.
func (ip *Interpreter) callValue(t *task, fn Value, args []Value, env *Env) Value {
	switch fn.Tag {
	case VTClosure:
		return ip.applyClosure(t, fn.Data.(*Closure), args)
	case VTBuiltin:
		quoted := make([]Value, len(args))
		for i, a := range args {
			quoted[i] = List([]Value{BuiltinVal(bQuote), a})
		}
		return ip.callBuiltin(t, fn.Data.(Builtin), quoted, env)
	}
	failKind(ErrUnknownForm, "not a function: "+FormatValue(fn))
	return Nil
}

////////////////////////////////////////////////////////////////////////////////
//                               BUILTIN CALL CONTEXT
////////////////////////////////////////////////////////////////////////////////

// callCtx is what a builtin implementation sees: its raw argument forms and
// the frame they are to be evaluated in.
type callCtx struct {
	ip   *Interpreter
	t    *task
	b    Builtin
	args []Value
	env  *Env
}

func (c *callCtx) n() int { return len(c.args) }

// raw returns argument form i unevaluated.
func (c *callCtx) raw(i int) Value { return c.args[i] }

// eval evaluates argument form i in the caller's frame.
func (c *callCtx) eval(i int) Value { return c.ip.eval(c.t, c.args[i], c.env) }

// evalIn evaluates an arbitrary form in the caller's frame.
func (c *callCtx) evalIn(form Value) Value { return c.ip.eval(c.t, form, c.env) }

// need fails unless exactly n arguments were supplied.
func (c *callCtx) need(n int) {
	if len(c.args) != n {
		failf("%s expects %d argument(s), got %d", c.b, n, len(c.args))
	}
}

// atLeast fails unless at least n arguments were supplied.
func (c *callCtx) atLeast(n int) {
	if len(c.args) < n {
		failf("%s expects at least %d argument(s), got %d", c.b, n, len(c.args))
	}
}

func (c *callCtx) evalAll() []Value {
	out := make([]Value, len(c.args))
	for i := range c.args {
		out[i] = c.eval(i)
	}
	return out
}

// body evaluates argument forms from..end in order and returns the last
// value, or Nil if there are none.
func (c *callCtx) body(from int) Value {
	out := Nil
	for i := from; i < len(c.args); i++ {
		out = c.eval(i)
	}
	return out
}

// symbolArg returns argument i, which must be a literal symbol.
func (c *callCtx) symbolArg(i int) Symbol {
	v := c.args[i]
	if v.Tag != VTSymbol {
		failf("%s: argument %d must be a symbol, got %s", c.b, i+1, FormatValue(v))
	}
	return v.Data.(Symbol)
}

func (c *callCtx) listArg(i int) []Value {
	v := c.eval(i)
	if v.Tag != VTList {
		failf("%s: argument %d must be a list, got %s", c.b, i+1, TypeName(v))
	}
	return v.Data.([]Value)
}

func (c *callCtx) strArg(i int) string {
	v := c.eval(i)
	if v.Tag != VTStr {
		failf("%s: argument %d must be a string, got %s", c.b, i+1, TypeName(v))
	}
	return v.Data.(string)
}

func (c *callCtx) numArg(i int) Value {
	v := c.eval(i)
	if !isNumber(v) {
		failf("%s: argument %d must be a number, got %s", c.b, i+1, TypeName(v))
	}
	return v
}

// cond evaluates argument i as a loop or branch condition.
func (c *callCtx) cond(i int) bool {
	v := c.eval(i)
	if v.Tag != VTBool {
		failf("%s: condition must be a boolean, got %s", c.b, TypeName(v))
	}
	return v.Data.(bool)
}

// loopBody evaluates argument forms from..end once. It reports whether a
// break escaped the body.
func (c *callCtx) loopBody(from int) (broke bool) {
	depth := c.t.depth
	defer func() {
		if r := recover(); r != nil {
			if _, ok := r.(breakSig); !ok {
				panic(r)
			}
			c.t.depth = depth
			broke = true
		}
	}()
	for i := from; i < len(c.args); i++ {
		c.eval(i)
	}
	return false
}
