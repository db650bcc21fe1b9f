// interpreter.go: SINGLE PUBLIC API SURFACE for the Paren interpreter.
//
// OVERVIEW
// ========
// This file exposes the public surface of the Paren runtime: the value model,
// symbols, mutable binding cells, environments, closures, and the Interpreter
// with its entry points. Behavior lives in private files; the methods here are
// thin delegations.
//
// What you get in this file:
//   • The **runtime value model** (`Value`, `ValueTag`, constructors like
//     `Int32/Int64/Float/Str/List`).
//   • **Symbols** (`Symbol`) interned per interpreter (see symbols.go).
//   • **Cells and environments** (`Cell`, `Env`) with lexical parent links.
//   • **Closures** (`Closure`) capturing their defining frame.
//   • The **Interpreter** type with parse/resolve/eval/apply entry points.
//
// EXECUTION & SCOPING SEMANTICS
// -----------------------------
// Source text flows one way: text → tokens (lexer.go) → forms (parser.go) →
// resolved forms (resolver.go, macros.go) → values (interpreter_exec.go).
// Every top-level form is resolved immediately before it is evaluated, so a
// `defmacro` is visible to every later form of the same input.
//
// Environments are chained frames keyed by symbol code. Each frame maps a code
// to a *Cell; closures keep their defining frame (and therefore its ancestors)
// alive. Each closure application creates exactly one child frame.
//
// Reading an unbound symbol is not an error: it yields Nil.
//
// RUNTIME ERRORS
// --------------
// Two classes, as in the rest of the engine:
//   • Soft errors (bad argument types, arity, index out of range, unknown
//     function, foreign failures): reported to ErrOut; the failing form
//     evaluates to Nil carrying the message in Value.Annot. Evaluation goes on.
//   • Hard errors (`break` outside a loop, recursion depth exceeded, lexing
//     or parsing failures): the current top-level form is abandoned and the
//     error is returned from the Eval* method.
//
// CONCURRENCY
// -----------
// `thread` starts a goroutine sharing the spawning environment. The engine
// locks only enough to keep Go maps and cells memory-safe; it gives no
// ordering guarantees between threads. Use Wait to block until all spawned
// threads have finished.

package paren

import (
	"io"
	"os"
	"sync"
)

////////////////////////////////////////////////////////////////////////////////
//                              PUBLIC TYPES & CTORS
////////////////////////////////////////////////////////////////////////////////

// ValueTag enumerates all runtime kinds a Value may hold.
// The tag determines which Go type Value.Data holds.
type ValueTag int

const (
	VTNil     ValueTag = iota // nil (absent marker, no payload)
	VTBool                    // bool
	VTInt32                   // int32
	VTInt64                   // int64
	VTFloat                   // float64
	VTStr                     // string
	VTSymbol                  // Symbol
	VTList                    // []Value
	VTBuiltin                 // Builtin
	VTClosure                 // *Closure
	VTForeign                 // *Handle (opaque host value)
)

// Value is the universal runtime carrier.
//
// Fields:
//   - Tag  : discriminant.
//   - Data : Go payload appropriate for Tag.
//   - Annot: error context attached to Nil results of failed builtins.
//   - Hint : foreign type hint attached by `cast`; consumed by the foreign layer.
//
// Annot and Hint never affect equality.
type Value struct {
	Tag   ValueTag
	Data  interface{}
	Annot string
	Hint  string
}

// String renders the re-readable form of v (see FormatValue).
func (v Value) String() string { return FormatValue(v) }

// Nil is the absent value.
var Nil = Value{Tag: VTNil}

// Primitive constructors. They attach neither annotations nor hints.
func Bool(b bool) Value      { return Value{Tag: VTBool, Data: b} }
func Int32(n int32) Value    { return Value{Tag: VTInt32, Data: n} }
func Int64(n int64) Value    { return Value{Tag: VTInt64, Data: n} }
func Float(f float64) Value  { return Value{Tag: VTFloat, Data: f} }
func Str(s string) Value     { return Value{Tag: VTStr, Data: s} }
func List(xs []Value) Value  { return Value{Tag: VTList, Data: xs} }
func Sym(s Symbol) Value     { return Value{Tag: VTSymbol, Data: s} }
func BuiltinVal(b Builtin) Value {
	return Value{Tag: VTBuiltin, Data: b}
}

// ClosureVal wraps *Closure into a Value.
func ClosureVal(c *Closure) Value { return Value{Tag: VTClosure, Data: c} }

// Symbol is an interned name. Code is stable for the lifetime of the
// SymbolTable that produced it and is what environments are keyed on.
type Symbol struct {
	Name string
	Code int
}

// Handle is an opaque host value (thread handles, foreign objects).
type Handle struct {
	Kind string
	Data any
}

// HandleVal wraps host data into a VTForeign Value.
func HandleVal(kind string, data any) Value {
	return Value{Tag: VTForeign, Data: &Handle{Kind: kind, Data: data}}
}

// Closure is a user function: parameter symbols, an unevaluated body, and the
// frame active where `fn` was evaluated.
type Closure struct {
	Params []Symbol
	Body   []Value
	Env    *Env
}

// Cell is a mutable storage slot for one binding. Loads and stores are
// individually synchronized; read-modify-write sequences are not atomic.
type Cell struct {
	mu sync.RWMutex
	v  Value
}

func (c *Cell) Load() Value {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.v
}

func (c *Cell) Store(v Value) {
	c.mu.Lock()
	c.v = v
	c.mu.Unlock()
}

// Env is a lexical frame with a parent link. Lookups walk parent-ward.
// Define binds in this frame, Assign updates the nearest visible binding or
// defines here when there is none.
type Env struct {
	parent *Env
	mu     sync.RWMutex
	table  map[int]*Cell
}

// NewEnv creates a new frame with the given parent (which may be nil).
func NewEnv(parent *Env) *Env { return &Env{parent: parent, table: make(map[int]*Cell)} }

// Parent returns the enclosing frame, or nil for the global frame.
func (e *Env) Parent() *Env { return e.parent }

// Lookup returns the nearest cell bound to code, or nil.
func (e *Env) Lookup(code int) *Cell {
	for f := e; f != nil; f = f.parent {
		f.mu.RLock()
		c, ok := f.table[code]
		f.mu.RUnlock()
		if ok {
			return c
		}
	}
	return nil
}

// Define inserts a fresh cell into this frame, shadowing outer bindings.
func (e *Env) Define(code int, v Value) *Cell {
	c := &Cell{v: v}
	e.mu.Lock()
	e.table[code] = c
	e.mu.Unlock()
	return c
}

// Assign mutates the nearest visible cell in place, or defines one in this
// frame when the name is unbound.
func (e *Env) Assign(code int, v Value) *Cell {
	if c := e.Lookup(code); c != nil {
		c.Store(v)
		return c
	}
	return e.Define(code, v)
}

// Get reads the nearest binding of code; unbound names read as Nil.
func (e *Env) Get(code int) Value {
	if c := e.Lookup(code); c != nil {
		return c.Load()
	}
	return Nil
}

// Codes lists the symbol codes bound directly in this frame.
func (e *Env) Codes() []int {
	e.mu.RLock()
	defer e.mu.RUnlock()
	out := make([]int, 0, len(e.table))
	for k := range e.table {
		out = append(out, k)
	}
	return out
}

////////////////////////////////////////////////////////////////////////////////
//                               PUBLIC INTERPRETER
////////////////////////////////////////////////////////////////////////////////

// Interpreter is the entry point for evaluating Paren programs.
//
// Public fields (set after NewInterpreter, before evaluating):
//   - Global  : the process-lifetime environment; builtins live here.
//   - Out     : destination of pr/prn (default os.Stdout).
//   - ErrOut  : destination of soft error reports (default os.Stderr).
//   - In      : stdin handed to `system` children (default os.Stdin).
//   - Foreign : capability behind `.`, `.get`, `.set`, `new` (default DefaultHost()).
//   - MaxDepth: nesting bound for evaluation; 0 disables the guard.
//   - Exit    : called by `exit` (default os.Exit).
type Interpreter struct {
	Global   *Env
	Out      io.Writer
	ErrOut   io.Writer
	In       io.Reader
	Foreign  Foreign
	MaxDepth int
	Exit     func(code int)

	symbols *SymbolTable
	macros  *MacroTable
	known   knownSymbols

	threads sync.WaitGroup
	outMu   sync.Mutex
}

// DefaultMaxDepth bounds nested evaluation so runaway recursion is reported
// instead of exhausting the goroutine stack.
const DefaultMaxDepth = 10000

// NewInterpreter constructs an engine with builtins, constants, and the
// prelude macros installed in Global.
func NewInterpreter() *Interpreter {
	ip := &Interpreter{
		Out:      os.Stdout,
		ErrOut:   os.Stderr,
		In:       os.Stdin,
		Foreign:  DefaultHost(),
		MaxDepth: DefaultMaxDepth,
		Exit:     os.Exit,
		symbols:  NewSymbolTable(),
	}
	ip.macros = NewMacroTable()
	ip.Global = NewEnv(nil)
	ip.known = internKnown(ip.symbols)
	ip.seedGlobals()
	return ip
}

////////////////////////////////////////////////////////////////////////////////
//                         PUBLIC METHODS (THIN DELEGATIONS)
////////////////////////////////////////////////////////////////////////////////

// Symbols returns the interpreter's symbol table.
func (ip *Interpreter) Symbols() *SymbolTable { return ip.symbols }

// Macros returns the interpreter's macro table.
func (ip *Interpreter) Macros() *MacroTable { return ip.macros }

// Intern is shorthand for ip.Symbols().Intern(name).
func (ip *Interpreter) Intern(name string) Symbol { return ip.symbols.Intern(name) }

// Parse lexes and parses src into top-level forms, interning symbols into
// this interpreter's table. Returns *LexError or *ParseError on failure.
func (ip *Interpreter) Parse(src string) ([]Value, error) {
	toks, err := NewLexer(src).Scan()
	if err != nil {
		return nil, err
	}
	return NewParser(toks, ip.symbols).ParseAll()
}

// Resolve runs the macro-expansion pass over one form against Global.
// Registering macros (`defmacro`) happens here. Failures are returned as
// *RuntimeError.
func (ip *Interpreter) Resolve(form Value) (Value, error) {
	return ip.runTop(func(*task) Value { return ip.resolve(form, ip.Global) })
}

// EvalString parses src, then resolves and evaluates each top-level form in
// Global, in order. It returns the value of the last form. A hard error stops
// evaluation at the offending form and is returned.
func (ip *Interpreter) EvalString(src string) (Value, error) {
	forms, err := ip.Parse(src)
	if err != nil {
		return Nil, err
	}
	return ip.EvalForms(forms)
}

// EvalForms resolves and evaluates already-parsed top-level forms in Global.
func (ip *Interpreter) EvalForms(forms []Value) (Value, error) {
	out := Nil
	for _, f := range forms {
		v, err := ip.runTop(func(t *task) Value {
			return ip.eval(t, ip.resolve(f, ip.Global), ip.Global)
		})
		if err != nil {
			return Nil, err
		}
		out = v
	}
	return out, nil
}

// Eval evaluates an already-resolved form in env exactly as given.
func (ip *Interpreter) Eval(form Value, env *Env) (Value, error) {
	return ip.runTop(func(t *task) Value { return ip.eval(t, form, env) })
}

// Apply invokes a callable Value (builtin or closure) with already-evaluated
// arguments, in Global.
func (ip *Interpreter) Apply(fn Value, args []Value) (Value, error) {
	return ip.runTop(func(t *task) Value { return ip.callValue(t, fn, args, ip.Global) })
}

// Wait blocks until every thread spawned by `thread` has finished.
func (ip *Interpreter) Wait() { ip.threads.Wait() }

//// END_OF_PUBLIC
