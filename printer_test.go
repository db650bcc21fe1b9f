package paren

import (
	"math"
	"net/url"
	"testing"
)

func Test_Printer_FormatValue(t *testing.T) {
	st := NewSymbolTable()
	cases := []struct {
		v    Value
		want string
	}{
		{Nil, "null"},
		{Bool(true), "true"},
		{Int32(-3), "-3"},
		{Int64(5), "5L"},
		{Float(3), "3.0"},
		{Float(0.1), "0.1"},
		{Float(1e21), "1e+21"},
		{Float(math.NaN()), "NaN"},
		{Float(math.Inf(1)), "Infinity"},
		{Float(math.Inf(-1)), "-Infinity"},
		{Str("a\"b\\c\n\t"), `"a\"b\\c\n\t"`},
		{Sym(st.Intern("foo")), "foo"},
		{List(nil), "()"},
		{List([]Value{Int32(1), Str("x"), List([]Value{Nil})}), `(1 "x" (null))`},
		{BuiltinVal(bAdd), "+"},
		{BuiltinVal(bNullP), "null?"},
		{HandleVal("thing", 42), "#<thing>"},
	}
	for _, c := range cases {
		if got := FormatValue(c.v); got != c.want {
			t.Errorf("FormatValue(%#v) = %q, want %q", c.v, got, c.want)
		}
	}
}

func Test_Printer_Display(t *testing.T) {
	cases := []struct {
		v    Value
		want string
	}{
		{Nil, ""},
		{Str("raw \"text\""), `raw "text"`},
		{Int64(5), "5"},
		{Float(2), "2.0"},
		{List([]Value{Str("a"), Int64(1)}), "(a 1)"},
		{HandleVal("*url.URL", &url.URL{Scheme: "https", Host: "example.com"}), "https://example.com"},
		{HandleVal("thing", 42), "#<thing>"},
	}
	for _, c := range cases {
		if got := Display(c.v); got != c.want {
			t.Errorf("Display(%#v) = %q, want %q", c.v, got, c.want)
		}
	}
}

func Test_Printer_Closure(t *testing.T) {
	ip, _, _ := newTestIP(t)
	v := mustEval(t, ip, `(fn (a b) (prn a) (+ a b))`)
	if got, want := FormatValue(v), "(fn (a b) (prn a) (+ a b))"; got != want {
		t.Fatalf("got %q, want %q", got, want)
	}
	// Macro calls in the body were already expanded when the closure was made.
	v = mustEval(t, ip, `(fn () (setfn g () 1))`)
	if got, want := FormatValue(v), "(fn () (set g (fn () 1)))"; got != want {
		t.Fatalf("got %q, want %q", got, want)
	}
}

func Test_Printer_TypeName(t *testing.T) {
	cases := []struct {
		v    Value
		want string
	}{
		{Nil, "null"},
		{Bool(false), "boolean"},
		{Int32(1), "int"},
		{Int64(1), "long"},
		{Float(1), "double"},
		{Str(""), "string"},
		{Sym(Symbol{Name: "x"}), "symbol"},
		{List(nil), "list"},
		{BuiltinVal(bList), "builtin"},
		{ClosureVal(&Closure{}), "fn"},
		{HandleVal("time.Time", nil), "time.Time"},
	}
	for _, c := range cases {
		if got := TypeName(c.v); got != c.want {
			t.Errorf("TypeName(%#v) = %q, want %q", c.v, got, c.want)
		}
	}
}

func Test_Printer_Prn_Output(t *testing.T) {
	ip, out, _ := newTestIP(t)
	mustEval(t, ip, `(pr "a" 1) (pr 2L) (prn) (prn "x" (list 1 "y") null 2.5)`)
	if got, want := out.String(), "a 12\n"+"x (1 y)  2.5\n"; got != want {
		t.Fatalf("got %q, want %q", got, want)
	}
}
