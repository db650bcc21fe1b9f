// resolver.go: the pre-evaluation pass.
//
// resolve walks one top-level form and returns a rewritten form:
//   - a list whose head names a macro is expanded, and the expansion is
//     resolved again (macros may expand into macro calls);
//   - `(defmacro ...)` registers the macro and resolves to Nil;
//   - positions that are never evaluated (a quoted payload, fn parameters,
//     binding targets, interop member names, cast type names) pass through
//     untouched, so macro-looking lists inside them are left alone;
//   - every other sub-form is resolved recursively.
//
// Which positions are special is decided by the builtin the head symbol is
// bound to in env at resolve time, so rebinding e.g. `quote` to a closure turns
// off its special treatment.
package paren

// maxExpansionDepth bounds nested macro expansion so self-expanding macros
// are reported instead of overflowing the stack.
const maxExpansionDepth = 1000

func (ip *Interpreter) resolve(form Value, env *Env) Value {
	r := &resolver{ip: ip, env: env}
	return r.resolve(form)
}

type resolver struct {
	ip    *Interpreter
	env   *Env
	depth int
}

func (r *resolver) resolve(form Value) Value {
	if form.Tag != VTList {
		return form
	}
	xs := form.Data.([]Value)
	if len(xs) == 0 {
		return form
	}

	if b, ok := r.ip.headBuiltin(xs[0], r.env); ok {
		switch b {
		case bQuote:
			return form
		case bDefmacro:
			r.ip.defineMacro(xs)
			return Nil
		case bFn, bSet, bDef, bFor, bCast, bNew:
			return r.resolveExcept(xs, 1)
		case bDot:
			return r.resolveExcept(xs, 2)
		case bDotGet, bDotSet:
			return r.resolveExcept(xs, 1, 2)
		}
		return r.resolveExcept(xs)
	}

	if m, ok := r.ip.macros.macroFor(form); ok {
		r.depth++
		if r.depth > maxExpansionDepth {
			fail("macro expansion too deep: " + m.Name.Name)
		}
		out := r.resolve(m.expandOnce(xs, r.ip.known.rest.Code))
		r.depth--
		return out
	}
	return r.resolveExcept(xs)
}

// resolveExcept resolves every element of xs except the listed positions.
func (r *resolver) resolveExcept(xs []Value, keep ...int) Value {
	out := make([]Value, len(xs))
	for i, x := range xs {
		if containsInt(keep, i) {
			out[i] = x
			continue
		}
		out[i] = r.resolve(x)
	}
	return List(out)
}

// headBuiltin reports the builtin a head form is bound to at resolve time.
func (ip *Interpreter) headBuiltin(head Value, env *Env) (Builtin, bool) {
	switch head.Tag {
	case VTBuiltin:
		return head.Data.(Builtin), true
	case VTSymbol:
		v := env.Get(head.Data.(Symbol).Code)
		if v.Tag == VTBuiltin {
			return v.Data.(Builtin), true
		}
	}
	return 0, false
}

func containsInt(xs []int, n int) bool {
	for _, x := range xs {
		if x == n {
			return true
		}
	}
	return false
}
