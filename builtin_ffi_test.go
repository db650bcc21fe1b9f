package paren

import (
	"errors"
	"fmt"
	"math"
	"strings"
	"testing"
)

func Test_FFI_DefaultHost_Functions(t *testing.T) {
	wantFloat(t, evalSrc(t, "(. math Floor 1.5)"), 1)
	wantFloat(t, evalSrc(t, "(. math Pow 2 8)"), 256)
	wantFloat(t, evalSrc(t, "(. math Max 3 7.5)"), 7.5)
	wantStr(t, evalSrc(t, `(. strings ToUpper "abc")`), "ABC")
	wantStr(t, evalSrc(t, `(. strings Repeat "ab" 3)`), "ababab")
	wantBool(t, evalSrc(t, `(. strings HasPrefix "paren" "par")`), true)
	wantInt64(t, evalSrc(t, `(. strings Index "hello" "l")`), 2)
	wantInt64(t, evalSrc(t, `(. strconv Atoi "12")`), 12)
	wantStr(t, evalSrc(t, `(. strconv Itoa 99)`), "99")
	wantStr(t, evalSrc(t, `(. strings Join (list "a" "b" "c") "-")`), "a-b-c")
	wantStr(t, evalSrc(t, `(. fmt Sprint "a" 1)`), "a1")
	wantStr(t, evalSrc(t, `(. fmt Sprintf "%d-%s" 7 "x")`), "7-x")

	ip, _, _ := newTestIP(t)
	wantForm(t, ip, mustEval(t, ip, `(. strings Split "a,b" ",")`), `("a" "b")`)
	wantForm(t, ip, mustEval(t, ip, `(. strings Fields " x  y ")`), `("x" "y")`)
}

func Test_FFI_Member_Name_May_Be_String(t *testing.T) {
	wantStr(t, evalSrc(t, `(. strings "ToLower" "ABC")`), "abc")
}

func Test_FFI_Arguments_Are_Evaluated(t *testing.T) {
	ip, _, _ := newTestIP(t)
	mustEval(t, ip, `(def word "go")`)
	wantStr(t, mustEval(t, ip, `(. strings Repeat word (+ 1 1))`), "gogo")
}

func Test_FFI_Vars_Get_And_Set(t *testing.T) {
	ip, _, _ := newTestIP(t)
	wantFloat(t, mustEval(t, ip, "(.get math Pi)"), math.Pi)
	wantNil(t, mustEval(t, ip, "(.set math Pi 3)"))
	wantFloat(t, mustEval(t, ip, "(.get math Pi)"), 3)

	// Each interpreter gets its own registry.
	other, _, _ := newTestIP(t)
	wantFloat(t, mustEval(t, other, "(.get math Pi)"), math.Pi)
}

func Test_FFI_Constructors_Methods_And_Fields(t *testing.T) {
	ip, _, _ := newTestIP(t)
	mustEval(t, ip, "(def b (new strings.Builder))")
	wantInt64(t, mustEval(t, ip, `(. b WriteString "hi ")`), 3)
	mustEval(t, ip, `(. b WriteString "there")`)
	wantStr(t, mustEval(t, ip, "(. b String)"), "hi there")
	wantInt64(t, mustEval(t, ip, "(. b Len)"), 8)

	mustEval(t, ip, "(def u (new url.URL))")
	mustEval(t, ip, `(.set u Scheme "https") (.set u Host "example.com") (.set u Path "/x")`)
	wantStr(t, mustEval(t, ip, "(.get u Host)"), "example.com")
	wantStr(t, mustEval(t, ip, "(. u String)"), "https://example.com/x")
	wantStr(t, mustEval(t, ip, "(string u)"), "https://example.com/x")
}

func Test_FFI_Function_Returning_Handle(t *testing.T) {
	ip, _, _ := newTestIP(t)
	mustEval(t, ip, `(def u (. url Parse "http://paren.dev:8080/docs?q=1"))`)
	wantStr(t, mustEval(t, ip, "(type u)"), "*url.URL")
	wantStr(t, mustEval(t, ip, "(. u Hostname)"), "paren.dev")
	wantStr(t, mustEval(t, ip, "(. u Port)"), "8080")
	wantStr(t, mustEval(t, ip, "(.get u RawQuery)"), "q=1")
}

func Test_FFI_Cast_Hints(t *testing.T) {
	ip, _, _ := newTestIP(t)
	wantStr(t, mustEval(t, ip, `(. fmt Sprintf "%T" 1)`), "int32")
	wantStr(t, mustEval(t, ip, `(. fmt Sprintf "%T" (cast int64 1))`), "int64")
	wantStr(t, mustEval(t, ip, `(. fmt Sprintf "%T" (cast long 1))`), "int64")
	wantStr(t, mustEval(t, ip, `(. fmt Sprintf "%T" (cast int 1))`), "int")
	wantStr(t, mustEval(t, ip, `(. fmt Sprintf "%T" (cast float32 1))`), "float32")
	wantStr(t, mustEval(t, ip, `(. fmt Sprintf "%v" (cast string 12))`), "12")
	wantStr(t, mustEval(t, ip, `(. fmt Sprintf "%T" (cast bool "true"))`), "bool")

	// cast only annotates; the value itself is unchanged.
	v := mustEval(t, ip, "(cast int64 5)")
	wantInt32(t, v, 5)
	if v.Hint != "int64" {
		t.Fatalf("hint: %q", v.Hint)
	}
}

func Test_FFI_Host_Errors_Are_Soft(t *testing.T) {
	ip, _, errOut := newTestIP(t)
	wantSoftError(t, mustEval(t, ip, `(. strconv Atoi "x")`), errOut, "invalid syntax")

	errOut.Reset()
	wantSoftError(t, mustEval(t, ip, `(. math Nope 1)`), errOut, "no such member")

	errOut.Reset()
	wantSoftError(t, mustEval(t, ip, `(. math Floor "x")`), errOut, "bad argument")

	errOut.Reset()
	wantSoftError(t, mustEval(t, ip, `(. math Floor)`), errOut, "want 1 arguments")

	errOut.Reset()
	wantSoftError(t, mustEval(t, ip, `(new nothing.Here)`), errOut, "constructor nothing.Here")

	errOut.Reset()
	wantSoftError(t, mustEval(t, ip, `(.get 5 Field)`), errOut, "has no fields")

	errOut.Reset()
	wantSoftError(t, mustEval(t, ip, "(. 5 Method)"), errOut, "no method")
}

func Test_FFI_Host_Panic_Is_Soft(t *testing.T) {
	ip, _, errOut := newTestIP(t)
	host := DefaultHost()
	host.RegisterFunc("boom", "Now", func() int { panic("kaboom") })
	ip.Foreign = host
	wantSoftError(t, mustEval(t, ip, "(. boom Now)"), errOut, "host panic: kaboom")
}

func Test_FFI_No_Capability(t *testing.T) {
	ip, _, errOut := newTestIP(t)
	ip.Foreign = nil
	wantSoftError(t, mustEval(t, ip, "(. math Floor 1.5)"), errOut, "no foreign capability")
	if !strings.Contains(errOut.String(), ". math Floor") {
		t.Fatalf("report should name the call: %q", errOut.String())
	}
}

func Test_FFI_Custom_Capability_Sees_Calls(t *testing.T) {
	ip, _, errOut := newTestIP(t)
	var calls []ForeignCall
	ip.Foreign = ForeignFunc(func(call ForeignCall) (Value, error) {
		calls = append(calls, call)
		if call.Member == "fail" {
			return Nil, errors.New("refused")
		}
		return Str(call.Kind.String()), nil
	})

	mustEval(t, ip, "(def obj 5)")
	wantStr(t, mustEval(t, ip, "(. obj m (+ 1 2))"), ".")
	wantStr(t, mustEval(t, ip, "(.get lib field)"), ".get")
	wantNil(t, mustEval(t, ip, `(.set lib field "v")`))
	wantStr(t, mustEval(t, ip, "(new lib.Thing 1)"), "new")

	if len(calls) != 4 {
		t.Fatalf("want 4 calls, got %d", len(calls))
	}
	c := calls[0]
	if c.Kind != ForeignMethod || c.Path != "" || c.Member != "m" {
		t.Fatalf("method call: %+v", c)
	}
	wantInt32(t, c.Target, 5)
	if len(c.Args) != 1 {
		t.Fatalf("args: %+v", c.Args)
	}
	wantInt32(t, c.Args[0], 3)

	if c := calls[1]; c.Kind != ForeignGet || c.Path != "lib" || c.Member != "field" {
		t.Fatalf("get call: %+v", c)
	}
	if c := calls[2]; c.Kind != ForeignSet || len(c.Args) != 1 {
		t.Fatalf("set call: %+v", c)
	}
	wantStr(t, calls[2].Args[0], "v")
	if c := calls[3]; c.Kind != ForeignNew || c.Path != "lib.Thing" || len(c.Args) != 1 {
		t.Fatalf("new call: %+v", c)
	}

	wantSoftError(t, mustEval(t, ip, "(. lib fail)"), errOut, ". lib fail: refused")
}

func Test_FFI_ForeignError_Is_Preserved(t *testing.T) {
	ip, _, errOut := newTestIP(t)
	ip.Foreign = ForeignFunc(func(call ForeignCall) (Value, error) {
		return Nil, &ForeignError{Call: "custom", Err: ErrNoMember}
	})
	wantSoftError(t, mustEval(t, ip, "(. x y)"), errOut, "custom: no such member")
}

func Test_FFI_Registry_Marshalling(t *testing.T) {
	r := NewHostRegistry()
	r.RegisterFunc("host", "Echo", func(v Value) Value { return v })
	r.RegisterFunc("host", "Sum", func(xs ...int) int {
		n := 0
		for _, x := range xs {
			n += x
		}
		return n
	})
	r.RegisterFunc("host", "Pair", func(a string, b bool) (string, bool) { return a, b })
	r.RegisterFunc("host", "Bytes", func(b []byte) []byte { return append(b, '!') })
	r.RegisterFunc("host", "Big", func() uint64 { return math.MaxUint64 })
	r.RegisterFunc("host", "Nothing", func() error { return nil })
	r.RegisterFunc("host", "Err", func() (int, error) { return 0, fmt.Errorf("nope") })

	call := func(member string, args ...Value) (Value, error) {
		return r.Invoke(ForeignCall{Kind: ForeignMethod, Path: "host", Member: member, Args: args})
	}

	st := NewSymbolTable()
	sym := Sym(st.Intern("s"))
	if v, err := call("Echo", sym); err != nil || !Equal(v, sym) {
		t.Fatalf("Echo: %v %v", v, err)
	}
	if v, err := call("Sum", Int32(1), Int64(2), Float(3.7)); err != nil {
		t.Fatal(err)
	} else {
		wantInt64(t, v, 6)
	}
	if v, err := call("Sum"); err != nil {
		t.Fatal(err)
	} else {
		wantInt64(t, v, 0)
	}
	if v, err := call("Pair", Str("a"), Bool(true)); err != nil || FormatValue(v) != `("a" true)` {
		t.Fatalf("Pair: %v %v", v, err)
	}
	if v, err := call("Bytes", Str("hey")); err != nil {
		t.Fatal(err)
	} else {
		wantStr(t, v, "hey!")
	}
	if v, err := call("Big"); err != nil || v.Tag != VTFloat {
		t.Fatalf("Big: %#v %v", v, err)
	}
	if v, err := call("Nothing"); err != nil {
		t.Fatal(err)
	} else {
		wantNil(t, v)
	}
	if _, err := call("Err"); err == nil || err.Error() != "nope" {
		t.Fatalf("Err: %v", err)
	}
	if _, err := call("Pair", Int32(1), Bool(true)); !errors.Is(err, ErrBadArgument) {
		t.Fatalf("want ErrBadArgument, got %v", err)
	}
}

func Test_FFI_Register_Misuse_Panics(t *testing.T) {
	r := NewHostRegistry()
	for name, fn := range map[string]func(){
		"func":  func() { r.RegisterFunc("p", "m", 42) },
		"var":   func() { r.RegisterVar("p", "v", 42) },
		"ctor":  func() { r.RegisterConstructor("p", "x") },
		"nilpt": func() { r.RegisterVar("p", "v", (*int)(nil)) },
	} {
		func() {
			defer func() {
				if recover() == nil {
					t.Errorf("%s: want panic", name)
				}
			}()
			fn()
		}()
	}
}
