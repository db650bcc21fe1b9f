// ffi.go: the foreign-call boundary.
//
// The evaluator knows nothing about host objects. The interop forms
//
//	(. TARGET MEMBER ARG...)   call a function or method
//	(.get TARGET FIELD)        read a variable or field
//	(.set TARGET FIELD VALUE)  write a variable or field
//	(new CLASS ARG...)         construct a host object
//
// are turned into a ForeignCall and handed to Interpreter.Foreign. A TARGET
// that is an unbound symbol names a registered path (e.g. `math`); anything
// else is evaluated and its value (usually a foreign handle) is the receiver.
//
// HostRegistry is the default capability. It exposes Go functions, package
// variables and constructors registered by name, and reaches methods and
// exported struct fields of handles through reflection.
//
// Marshalling (Paren → Go) is driven by the parameter type:
//   - integer kinds take any number (converted), float kinds likewise;
//   - string takes a string, bool a boolean, []byte a string;
//   - slices take lists, element by element;
//   - interface parameters take the natural Go value of the argument, or the
//     type named by its `cast` hint (int, int32, int64/long, float32,
//     float64/double, string, bool);
//   - pointer/struct/other parameters take a handle whose payload is
//     assignable; Nil becomes the zero value of nil-able types;
//   - a Value parameter takes the argument unchanged.
//
// Results (Go → Paren): int32 → Int32; other integers → Int64; floats →
// Float64; string, bool as is; []byte → string; other slices and arrays →
// lists; nil → Nil; Value as is; anything else → a handle whose kind is the
// Go type name. A trailing error result is split off and, when non-nil,
// returned as the call's error. Several remaining results become a list.
package paren

import (
	"errors"
	"fmt"
	"math"
	"net/url"
	"reflect"
	"strconv"
	"strings"
	"sync"
	"time"
)

// ForeignKind distinguishes the four interop forms.
type ForeignKind int

const (
	ForeignMethod ForeignKind = iota // (. TARGET MEMBER ARG...)
	ForeignGet                       // (.get TARGET FIELD)
	ForeignSet                       // (.set TARGET FIELD VALUE)
	ForeignNew                       // (new CLASS ARG...)
)

func (k ForeignKind) String() string {
	switch k {
	case ForeignGet:
		return ".get"
	case ForeignSet:
		return ".set"
	case ForeignNew:
		return "new"
	default:
		return "."
	}
}

// ForeignCall describes one interop request. Exactly one of Path (a
// registered name) and Target (an evaluated receiver) is meaningful.
type ForeignCall struct {
	Kind   ForeignKind
	Path   string
	Target Value
	Member string
	Args   []Value
}

// String renders the call's head for error messages, e.g. ". math Floor".
func (c ForeignCall) String() string {
	var b strings.Builder
	b.WriteString(c.Kind.String())
	b.WriteByte(' ')
	if c.Path != "" {
		b.WriteString(c.Path)
	} else {
		b.WriteString(TypeName(c.Target))
	}
	if c.Member != "" {
		b.WriteByte(' ')
		b.WriteString(c.Member)
	}
	return b.String()
}

// Foreign is the capability behind the interop forms. Implementations must
// be safe for concurrent use when programs use `thread`.
type Foreign interface {
	Invoke(call ForeignCall) (Value, error)
}

// ForeignFunc adapts a plain function to Foreign.
type ForeignFunc func(call ForeignCall) (Value, error)

func (f ForeignFunc) Invoke(call ForeignCall) (Value, error) { return f(call) }

// ForeignError wraps a failure reported by the foreign capability.
type ForeignError struct {
	Call string
	Err  error
}

func (e *ForeignError) Error() string { return e.Call + ": " + e.Err.Error() }
func (e *ForeignError) Unwrap() error { return e.Err }

var (
	// ErrNoMember is wrapped when a path, method or field does not exist.
	ErrNoMember = errors.New("no such member")
	// ErrBadArgument is wrapped when an argument cannot be converted.
	ErrBadArgument = errors.New("bad argument")
)

////////////////////////////////////////////////////////////////////////////////
//                               HOST REGISTRY
////////////////////////////////////////////////////////////////////////////////

// HostRegistry is a reflection-backed Foreign over registered Go members.
type HostRegistry struct {
	mu    sync.RWMutex
	funcs map[string]reflect.Value // "path.member" → func
	vars  map[string]reflect.Value // "path.member" → pointer
	ctors map[string]reflect.Value // "path" → func
}

// NewHostRegistry returns an empty registry.
func NewHostRegistry() *HostRegistry {
	return &HostRegistry{
		funcs: make(map[string]reflect.Value),
		vars:  make(map[string]reflect.Value),
		ctors: make(map[string]reflect.Value),
	}
}

func memberKey(path, member string) string { return path + "." + member }

// RegisterFunc exposes fn as (. path member ARG...). It panics if fn is not
// a function.
func (r *HostRegistry) RegisterFunc(path, member string, fn any) {
	rv := reflect.ValueOf(fn)
	if rv.Kind() != reflect.Func {
		panic(fmt.Sprintf("RegisterFunc %s.%s: %T is not a function", path, member, fn))
	}
	r.mu.Lock()
	r.funcs[memberKey(path, member)] = rv
	r.mu.Unlock()
}

// RegisterVar exposes *ptr to (.get path member) and (.set path member V).
// It panics if ptr is not a non-nil pointer.
func (r *HostRegistry) RegisterVar(path, member string, ptr any) {
	rv := reflect.ValueOf(ptr)
	if rv.Kind() != reflect.Pointer || rv.IsNil() {
		panic(fmt.Sprintf("RegisterVar %s.%s: %T is not a pointer", path, member, ptr))
	}
	r.mu.Lock()
	r.vars[memberKey(path, member)] = rv
	r.mu.Unlock()
}

// RegisterConstructor exposes fn as (new path ARG...).
func (r *HostRegistry) RegisterConstructor(path string, fn any) {
	rv := reflect.ValueOf(fn)
	if rv.Kind() != reflect.Func {
		panic(fmt.Sprintf("RegisterConstructor %s: %T is not a function", path, fn))
	}
	r.mu.Lock()
	r.ctors[path] = rv
	r.mu.Unlock()
}

// Invoke implements Foreign. Panics raised by host code are returned as
// errors.
func (r *HostRegistry) Invoke(call ForeignCall) (out Value, err error) {
	defer func() {
		if rec := recover(); rec != nil {
			out, err = Nil, fmt.Errorf("host panic: %v", rec)
		}
	}()
	switch call.Kind {
	case ForeignMethod:
		fn, err := r.method(call)
		if err != nil {
			return Nil, err
		}
		return callReflect(fn, call.Args)
	case ForeignGet:
		slot, err := r.slot(call)
		if err != nil {
			return Nil, err
		}
		return fromGo(slot), nil
	case ForeignSet:
		slot, err := r.slot(call)
		if err != nil {
			return Nil, err
		}
		if !slot.CanSet() {
			return Nil, fmt.Errorf("%w: %s is read-only", ErrBadArgument, call.Member)
		}
		if len(call.Args) != 1 {
			return Nil, fmt.Errorf("%w: .set takes one value", ErrBadArgument)
		}
		v, err := toGo(call.Args[0], slot.Type())
		if err != nil {
			return Nil, err
		}
		slot.Set(v)
		return Nil, nil
	case ForeignNew:
		r.mu.RLock()
		ctor, ok := r.ctors[call.Path]
		r.mu.RUnlock()
		if !ok {
			return Nil, fmt.Errorf("%w: constructor %s", ErrNoMember, call.Path)
		}
		return callReflect(ctor, call.Args)
	}
	return Nil, fmt.Errorf("unsupported foreign call kind %d", call.Kind)
}

// method finds the function a ForeignMethod call targets.
func (r *HostRegistry) method(call ForeignCall) (reflect.Value, error) {
	if call.Path != "" {
		r.mu.RLock()
		fn, ok := r.funcs[memberKey(call.Path, call.Member)]
		r.mu.RUnlock()
		if !ok {
			return reflect.Value{}, fmt.Errorf("%w: %s.%s", ErrNoMember, call.Path, call.Member)
		}
		return fn, nil
	}
	recv := receiver(call.Target)
	if !recv.IsValid() {
		return reflect.Value{}, fmt.Errorf("%w: %s has no methods", ErrNoMember, TypeName(call.Target))
	}
	m := recv.MethodByName(call.Member)
	if !m.IsValid() {
		return reflect.Value{}, fmt.Errorf("%w: %s has no method %s", ErrNoMember, recv.Type(), call.Member)
	}
	return m, nil
}

// slot returns the addressable variable or field a get/set call targets.
func (r *HostRegistry) slot(call ForeignCall) (reflect.Value, error) {
	if call.Path != "" {
		r.mu.RLock()
		ptr, ok := r.vars[memberKey(call.Path, call.Member)]
		r.mu.RUnlock()
		if !ok {
			return reflect.Value{}, fmt.Errorf("%w: %s.%s", ErrNoMember, call.Path, call.Member)
		}
		return ptr.Elem(), nil
	}
	recv := receiver(call.Target)
	for recv.IsValid() && recv.Kind() == reflect.Pointer {
		if recv.IsNil() {
			return reflect.Value{}, fmt.Errorf("%w: nil receiver", ErrBadArgument)
		}
		recv = recv.Elem()
	}
	if !recv.IsValid() || recv.Kind() != reflect.Struct {
		return reflect.Value{}, fmt.Errorf("%w: %s has no fields", ErrNoMember, TypeName(call.Target))
	}
	f := recv.FieldByName(call.Member)
	if !f.IsValid() || !f.CanInterface() {
		return reflect.Value{}, fmt.Errorf("%w: %s has no field %s", ErrNoMember, recv.Type(), call.Member)
	}
	return f, nil
}

// receiver returns the Go value a Paren target stands for.
func receiver(v Value) reflect.Value {
	if v.Tag == VTForeign {
		return reflect.ValueOf(v.Data.(*Handle).Data)
	}
	nat, ok := natural(v)
	if !ok || nat == nil {
		return reflect.Value{}
	}
	return reflect.ValueOf(nat)
}

var (
	valueType = reflect.TypeOf(Value{})
	errorType = reflect.TypeOf((*error)(nil)).Elem()
)

// callReflect converts args, calls fn and converts the results back.
func callReflect(fn reflect.Value, args []Value) (Value, error) {
	ft := fn.Type()
	fixed := ft.NumIn()
	if ft.IsVariadic() {
		fixed--
		if len(args) < fixed {
			return Nil, fmt.Errorf("%w: want at least %d arguments, got %d", ErrBadArgument, fixed, len(args))
		}
	} else if len(args) != fixed {
		return Nil, fmt.Errorf("%w: want %d arguments, got %d", ErrBadArgument, fixed, len(args))
	}
	in := make([]reflect.Value, len(args))
	for i, a := range args {
		var t reflect.Type
		if i < fixed {
			t = ft.In(i)
		} else {
			t = ft.In(fixed).Elem()
		}
		v, err := toGo(a, t)
		if err != nil {
			return Nil, fmt.Errorf("argument %d: %w", i+1, err)
		}
		in[i] = v
	}
	outs := fn.Call(in)
	if n := len(outs); n > 0 && ft.Out(n-1) == errorType {
		if e := outs[n-1]; !e.IsNil() {
			return Nil, e.Interface().(error)
		}
		outs = outs[:n-1]
	}
	switch len(outs) {
	case 0:
		return Nil, nil
	case 1:
		return fromGo(outs[0]), nil
	}
	xs := make([]Value, len(outs))
	for i, o := range outs {
		xs[i] = fromGo(o)
	}
	return List(xs), nil
}

// toGo converts a Paren value for a Go slot of type t.
func toGo(v Value, t reflect.Type) (reflect.Value, error) {
	if t == valueType {
		return reflect.ValueOf(v), nil
	}
	bad := func() (reflect.Value, error) {
		return reflect.Value{}, fmt.Errorf("%w: cannot use %s as %s", ErrBadArgument, TypeName(v), t)
	}
	switch t.Kind() {
	case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64:
		if !isNumber(v) {
			return bad()
		}
		return reflect.ValueOf(toInt64(v)).Convert(t), nil
	case reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64, reflect.Uintptr:
		if !isNumber(v) || toInt64(v) < 0 {
			return bad()
		}
		return reflect.ValueOf(uint64(toInt64(v))).Convert(t), nil
	case reflect.Float32, reflect.Float64:
		if !isNumber(v) {
			return bad()
		}
		return reflect.ValueOf(toFloat(v)).Convert(t), nil
	case reflect.String:
		if v.Tag != VTStr {
			return bad()
		}
		return reflect.ValueOf(v.Data.(string)).Convert(t), nil
	case reflect.Bool:
		if v.Tag != VTBool {
			return bad()
		}
		return reflect.ValueOf(v.Data.(bool)).Convert(t), nil
	case reflect.Slice:
		if v.Tag == VTNil {
			return reflect.Zero(t), nil
		}
		if v.Tag == VTStr && t.Elem().Kind() == reflect.Uint8 {
			return reflect.ValueOf([]byte(v.Data.(string))).Convert(t), nil
		}
		if v.Tag != VTList {
			break
		}
		xs := v.Data.([]Value)
		out := reflect.MakeSlice(t, len(xs), len(xs))
		for i, x := range xs {
			e, err := toGo(x, t.Elem())
			if err != nil {
				return reflect.Value{}, err
			}
			out.Index(i).Set(e)
		}
		return out, nil
	case reflect.Interface:
		nat, ok := natural(v)
		if !ok {
			return bad()
		}
		if nat == nil {
			return reflect.Zero(t), nil
		}
		rv := reflect.ValueOf(nat)
		if !rv.Type().AssignableTo(t) {
			return bad()
		}
		return rv, nil
	case reflect.Pointer, reflect.Map, reflect.Func, reflect.Chan:
		if v.Tag == VTNil {
			return reflect.Zero(t), nil
		}
	}
	if v.Tag == VTForeign {
		rv := reflect.ValueOf(v.Data.(*Handle).Data)
		if rv.IsValid() && rv.Type().AssignableTo(t) {
			return rv, nil
		}
		if rv.IsValid() && rv.Kind() == reflect.Pointer && rv.Elem().Type().AssignableTo(t) {
			return rv.Elem(), nil
		}
	}
	return bad()
}

// natural is the Go value an argument has when the parameter type does not
// decide it: the cast hint if present, otherwise the value's own type.
func natural(v Value) (any, bool) {
	if v.Hint != "" && isNumber(v) {
		switch v.Hint {
		case "int":
			return int(toInt64(v)), true
		case "int32":
			return toInt32(v), true
		case "int64", "long":
			return toInt64(v), true
		case "float32":
			return float32(toFloat(v)), true
		case "float64", "double":
			return toFloat(v), true
		case "string":
			return Display(v), true
		}
	}
	switch v.Tag {
	case VTNil:
		return nil, true
	case VTBool:
		return v.Data.(bool), true
	case VTInt32:
		return v.Data.(int32), true
	case VTInt64:
		return v.Data.(int64), true
	case VTFloat:
		return v.Data.(float64), true
	case VTStr:
		if v.Hint == "bool" {
			b, err := strconv.ParseBool(v.Data.(string))
			return b, err == nil
		}
		return v.Data.(string), true
	case VTForeign:
		return v.Data.(*Handle).Data, true
	case VTList:
		xs := v.Data.([]Value)
		out := make([]any, len(xs))
		for i, x := range xs {
			n, ok := natural(x)
			if !ok {
				return nil, false
			}
			out[i] = n
		}
		return out, true
	}
	return nil, false
}

// fromGo converts a Go result into a Paren value.
func fromGo(rv reflect.Value) Value {
	if !rv.IsValid() {
		return Nil
	}
	if rv.Type() == valueType {
		return rv.Interface().(Value)
	}
	switch rv.Kind() {
	case reflect.Bool:
		return Bool(rv.Bool())
	case reflect.Int32:
		return Int32(int32(rv.Int()))
	case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int64:
		return Int64(rv.Int())
	case reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64, reflect.Uintptr:
		u := rv.Uint()
		if u > math.MaxInt64 {
			return Float(float64(u))
		}
		return Int64(int64(u))
	case reflect.Float32, reflect.Float64:
		return Float(rv.Float())
	case reflect.String:
		return Str(rv.String())
	case reflect.Slice:
		if rv.IsNil() {
			return Nil
		}
		if rv.Type().Elem().Kind() == reflect.Uint8 {
			return Str(string(rv.Bytes()))
		}
		fallthrough
	case reflect.Array:
		xs := make([]Value, rv.Len())
		for i := range xs {
			xs[i] = fromGo(rv.Index(i))
		}
		return List(xs)
	case reflect.Interface:
		if rv.IsNil() {
			return Nil
		}
		return fromGo(rv.Elem())
	case reflect.Pointer, reflect.Map, reflect.Func, reflect.Chan:
		if rv.IsNil() {
			return Nil
		}
	}
	if !rv.CanInterface() {
		return Nil
	}
	return HandleVal(rv.Type().String(), rv.Interface())
}

////////////////////////////////////////////////////////////////////////////////
//                              DEFAULT HOST
////////////////////////////////////////////////////////////////////////////////

// DefaultHost returns a registry preloaded with a selection of the Go
// standard library:
//
//	math     Floor Ceil Sqrt Pow Abs Max Min Sin Cos Trunc Round; vars Pi E
//	strings  ToUpper ToLower Repeat Contains Index Split TrimSpace
//	         ReplaceAll HasPrefix HasSuffix Fields Join
//	strconv  Itoa Atoi Quote FormatFloat
//	time     Now Since Sleep
//	fmt      Sprint Sprintf
//	url      Parse
//	new      strings.Builder, url.URL
//
// The math vars are copies; setting them does not affect package math.
func DefaultHost() *HostRegistry {
	r := NewHostRegistry()

	for name, fn := range map[string]any{
		"Floor": math.Floor, "Ceil": math.Ceil, "Sqrt": math.Sqrt,
		"Pow": math.Pow, "Abs": math.Abs, "Max": math.Max, "Min": math.Min,
		"Sin": math.Sin, "Cos": math.Cos, "Trunc": math.Trunc, "Round": math.Round,
	} {
		r.RegisterFunc("math", name, fn)
	}
	pi, e := math.Pi, math.E
	r.RegisterVar("math", "Pi", &pi)
	r.RegisterVar("math", "E", &e)

	for name, fn := range map[string]any{
		"ToUpper": strings.ToUpper, "ToLower": strings.ToLower,
		"Repeat": strings.Repeat, "Contains": strings.Contains,
		"Index": strings.Index, "Split": strings.Split,
		"TrimSpace": strings.TrimSpace, "ReplaceAll": strings.ReplaceAll,
		"HasPrefix": strings.HasPrefix, "HasSuffix": strings.HasSuffix,
		"Fields": strings.Fields, "Join": strings.Join,
	} {
		r.RegisterFunc("strings", name, fn)
	}

	r.RegisterFunc("strconv", "Itoa", strconv.Itoa)
	r.RegisterFunc("strconv", "Atoi", strconv.Atoi)
	r.RegisterFunc("strconv", "Quote", strconv.Quote)
	r.RegisterFunc("strconv", "FormatFloat", strconv.FormatFloat)

	r.RegisterFunc("time", "Now", time.Now)
	r.RegisterFunc("time", "Since", time.Since)
	r.RegisterFunc("time", "Sleep", func(ms int64) { time.Sleep(time.Duration(ms) * time.Millisecond) })

	r.RegisterFunc("fmt", "Sprint", fmt.Sprint)
	r.RegisterFunc("fmt", "Sprintf", fmt.Sprintf)

	r.RegisterConstructor("strings.Builder", func() *strings.Builder { return new(strings.Builder) })
	r.RegisterConstructor("url.URL", func() *url.URL { return new(url.URL) })
	r.RegisterFunc("url", "Parse", url.Parse)

	return r
}
