// macros.go: substitution macros (`defmacro`).
//
// A macro is a name, a formal-parameter pattern and a body template. Expansion
// binds formals positionally to the unevaluated actual arguments; the rest
// marker `...` binds the list of all remaining actuals. The template is then
// walked and every symbol leaf naming a bound formal is replaced by its
// binding, while a `...` element is spliced into the enclosing list.
//
// Expansion is plain tree substitution. Symbols introduced by the template are
// not renamed, so they can capture or be captured by caller names.
package paren

import (
	"fmt"
	"sync"
)

// Macro is one registered rewrite rule.
type Macro struct {
	Name   Symbol
	Params []Symbol
	Body   Value
}

// MacroTable holds the macros of one interpreter, keyed by symbol code.
type MacroTable struct {
	mu     sync.RWMutex
	macros map[int]*Macro
}

// NewMacroTable returns an empty table.
func NewMacroTable() *MacroTable {
	return &MacroTable{macros: make(map[int]*Macro)}
}

// Register installs (or replaces) the macro called m.Name.
func (mt *MacroTable) Register(m *Macro) {
	mt.mu.Lock()
	mt.macros[m.Name.Code] = m
	mt.mu.Unlock()
}

// Get returns the macro registered under code.
func (mt *MacroTable) Get(code int) (*Macro, bool) {
	mt.mu.RLock()
	defer mt.mu.RUnlock()
	m, ok := mt.macros[code]
	return m, ok
}

// Names lists the registered macro names.
func (mt *MacroTable) Names() []string {
	mt.mu.RLock()
	defer mt.mu.RUnlock()
	out := make([]string, 0, len(mt.macros))
	for _, m := range mt.macros {
		out = append(out, m.Name.Name)
	}
	return out
}

// macroFor returns the macro named by form's head symbol, if any.
func (mt *MacroTable) macroFor(form Value) (*Macro, bool) {
	if form.Tag != VTList {
		return nil, false
	}
	xs := form.Data.([]Value)
	if len(xs) == 0 || xs[0].Tag != VTSymbol {
		return nil, false
	}
	return mt.Get(xs[0].Data.(Symbol).Code)
}

// expandOnce rewrites a single macro call. rest is the code of the rest marker.
func (m *Macro) expandOnce(call []Value, rest int) Value {
	actuals := call[1:]
	vars := make(map[int]Value, len(m.Params))
	for i, p := range m.Params {
		if p.Code == rest {
			tail := []Value{}
			if i < len(actuals) {
				tail = append(tail, actuals[i:]...)
			}
			vars[rest] = List(tail)
			break
		}
		if i >= len(actuals) {
			fail(fmt.Sprintf("macro %s: missing argument %s", m.Name.Name, p.Name))
		}
		vars[p.Code] = actuals[i]
	}
	return substitute(m.Body, vars, rest)
}

// substitute walks a template, replacing bound formals and splicing the rest
// marker's bound list into its parent.
func substitute(body Value, vars map[int]Value, rest int) Value {
	switch body.Tag {
	case VTList:
		src := body.Data.([]Value)
		out := make([]Value, 0, len(src))
		for _, b := range src {
			if b.Tag == VTSymbol && b.Data.(Symbol).Code == rest {
				if spliced, ok := vars[rest]; ok {
					out = append(out, spliced.Data.([]Value)...)
					continue
				}
			}
			out = append(out, substitute(b, vars, rest))
		}
		return List(out)
	case VTSymbol:
		if v, ok := vars[body.Data.(Symbol).Code]; ok {
			return v
		}
	}
	return body
}

// defineMacro handles `(defmacro name (params...) body)` at resolve time.
func (ip *Interpreter) defineMacro(form []Value) {
	if len(form) != 4 {
		fail("defmacro expects (defmacro name (params...) body)")
	}
	if form[1].Tag != VTSymbol {
		fail("defmacro: name must be a symbol")
	}
	if form[2].Tag != VTList {
		fail("defmacro: parameters must be a list")
	}
	raw := form[2].Data.([]Value)
	params := make([]Symbol, len(raw))
	for i, p := range raw {
		if p.Tag != VTSymbol {
			fail(fmt.Sprintf("defmacro %s: parameter %s is not a symbol", form[1].Data.(Symbol).Name, FormatValue(p)))
		}
		params[i] = p.Data.(Symbol)
	}
	ip.macros.Register(&Macro{Name: form[1].Data.(Symbol), Params: params, Body: form[3]})
}
