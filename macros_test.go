package paren

import (
	"sort"
	"strings"
	"testing"
)

func resolveSrc(t *testing.T, ip *Interpreter, src string) Value {
	t.Helper()
	form, err := ParseOne(src, ip.Symbols())
	if err != nil {
		t.Fatalf("parse %q: %v", src, err)
	}
	r, err := ip.Resolve(form)
	if err != nil {
		t.Fatalf("resolve %q: %v", src, err)
	}
	return r
}

func Test_Macros_Prelude_Defines_Setfn_And_Defn(t *testing.T) {
	ip, _, _ := newTestIP(t)
	names := ip.Macros().Names()
	sort.Strings(names)
	if strings.Join(names, " ") != "defn setfn" {
		t.Fatalf("prelude macros: %v", names)
	}
	wantForm(t, ip, resolveSrc(t, ip, "(setfn add (a b) (+ a b))"), "(set add (fn (a b) (+ a b)))")
	wantForm(t, ip, resolveSrc(t, ip, "(defn add (a b) (+ a b))"), "(set add (fn (a b) (+ a b)))")

	mustEval(t, ip, "(defn add (a b) (+ a b))")
	wantInt32(t, mustEval(t, ip, "(add 2 3)"), 5)
}

func Test_Macros_Rest_Marker_Splices(t *testing.T) {
	ip, _, _ := newTestIP(t)
	mustEval(t, ip, "(defmacro unless (c ...) (when (! c) ...))")
	wantForm(t, ip, resolveSrc(t, ip, "(unless ok (prn 1) (prn 2))"), "(when (! ok) (prn 1) (prn 2))")
	wantForm(t, ip, resolveSrc(t, ip, "(unless ok)"), "(when (! ok))")
	wantInt32(t, mustEval(t, ip, "(unless false 1 2)"), 2)
}

func Test_Macros_Params_Are_Substituted_Everywhere(t *testing.T) {
	ip, _, _ := newTestIP(t)
	mustEval(t, ip, "(defmacro twice (x) (list x x))")
	wantForm(t, ip, resolveSrc(t, ip, "(twice (+ 1 2))"), "(list (+ 1 2) (+ 1 2))")

	// Arguments are not evaluated before substitution: each copy runs.
	mustEval(t, ip, "(def n 0)")
	wantForm(t, ip, mustEval(t, ip, "(twice (++ n))"), "(1 2)")
}

func Test_Macros_Are_Not_Hygienic(t *testing.T) {
	ip, _, _ := newTestIP(t)
	mustEval(t, ip, "(defmacro swap (a b) (begin (def tmp a) (set a b) (set b tmp)))")
	mustEval(t, ip, "(def p 1) (def q 2) (swap p q)")
	wantInt32(t, mustEval(t, ip, "p"), 2)
	wantInt32(t, mustEval(t, ip, "q"), 1)

	// A caller variable named like the template's temporary is captured.
	mustEval(t, ip, "(def tmp 1) (def y 2) (swap tmp y)")
	wantInt32(t, mustEval(t, ip, "tmp"), 2)
	wantInt32(t, mustEval(t, ip, "y"), 2)
}

func Test_Macros_Expansion_Is_Recursive(t *testing.T) {
	ip, _, _ := newTestIP(t)
	mustEval(t, ip, "(defmacro my-defn (...) (defn ...))")
	wantForm(t, ip, resolveSrc(t, ip, "(my-defn f (x) x)"), "(set f (fn (x) x))")

	// Macro calls nested inside arguments are expanded too.
	wantForm(t, ip, resolveSrc(t, ip, "(begin (prn (setfn g () 1)))"), "(begin (prn (set g (fn () 1))))")
}

func Test_Macros_Quote_And_Params_Are_Left_Alone(t *testing.T) {
	ip, _, _ := newTestIP(t)
	wantForm(t, ip, resolveSrc(t, ip, "(quote (setfn f (a) a))"), "(quote (setfn f (a) a))")
	mustEval(t, ip, "(defmacro a () 1)")
	// fn parameters and binding targets are never expanded.
	wantForm(t, ip, resolveSrc(t, ip, "(fn (a) a)"), "(fn (a) a)")
	wantForm(t, ip, resolveSrc(t, ip, "(set x (a))"), "(set x 1)")
}

func Test_Macros_Defined_And_Used_In_One_Source(t *testing.T) {
	ip, _, _ := newTestIP(t)
	v := mustEval(t, ip, `
(defmacro sq (x) (* x x))
(sq 7)`)
	wantInt32(t, v, 49)
}

func Test_Macros_Redefinition_Replaces(t *testing.T) {
	ip, _, _ := newTestIP(t)
	mustEval(t, ip, "(defmacro k () 1)")
	mustEval(t, ip, "(defmacro k () 2)")
	wantInt32(t, mustEval(t, ip, "(k)"), 2)
}

func Test_Macros_Defmacro_Evaluates_To_Nil(t *testing.T) {
	ip, _, _ := newTestIP(t)
	wantNil(t, mustEval(t, ip, "(defmacro k () 1)"))
}

func Test_Macros_Missing_Argument_Is_Hard(t *testing.T) {
	ip, _, _ := newTestIP(t)
	mustEval(t, ip, "(defmacro pair (a b) (list a b))")
	_, err := ip.EvalString("(pair 1)")
	re := wantHardError(t, err, ErrArityOrType)
	if !strings.Contains(re.Msg, "missing argument b") {
		t.Fatalf("message: %q", re.Msg)
	}
}

func Test_Macros_Runaway_Expansion_Is_Reported(t *testing.T) {
	ip, _, _ := newTestIP(t)
	mustEval(t, ip, "(defmacro forever (x) (forever x))")
	_, err := ip.EvalString("(forever 1)")
	re := wantHardError(t, err, ErrArityOrType)
	if !strings.Contains(re.Msg, "macro expansion too deep: forever") {
		t.Fatalf("message: %q", re.Msg)
	}
}

func Test_Macros_Bad_Definitions(t *testing.T) {
	ip, _, _ := newTestIP(t)
	for _, src := range []string{
		"(defmacro)",
		"(defmacro 1 () x)",
		"(defmacro m x x)",
		"(defmacro m (1) x)",
	} {
		_, err := ip.EvalString(src)
		wantHardError(t, err, ErrArityOrType)
	}
}
