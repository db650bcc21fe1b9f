package paren

import "sync"

// SymbolTable interns symbol names to small sequential integer codes.
// The name↔code mapping is bijective and append-only; it is safe for use by
// concurrently running threads.
type SymbolTable struct {
	mu    sync.RWMutex
	codes map[string]int
	names []string
}

// NewSymbolTable returns an empty table. Codes start at 0.
func NewSymbolTable() *SymbolTable {
	return &SymbolTable{codes: make(map[string]int)}
}

// Intern returns the symbol for name, allocating the next code on first use.
func (st *SymbolTable) Intern(name string) Symbol {
	st.mu.RLock()
	code, ok := st.codes[name]
	st.mu.RUnlock()
	if ok {
		return Symbol{Name: name, Code: code}
	}

	st.mu.Lock()
	defer st.mu.Unlock()
	if code, ok := st.codes[name]; ok {
		return Symbol{Name: name, Code: code}
	}
	code = len(st.names)
	st.codes[name] = code
	st.names = append(st.names, name)
	return Symbol{Name: name, Code: code}
}

// Lookup returns the symbol for name without interning it.
func (st *SymbolTable) Lookup(name string) (Symbol, bool) {
	st.mu.RLock()
	defer st.mu.RUnlock()
	code, ok := st.codes[name]
	return Symbol{Name: name, Code: code}, ok
}

// Name returns the name interned under code.
func (st *SymbolTable) Name(code int) (string, bool) {
	st.mu.RLock()
	defer st.mu.RUnlock()
	if code < 0 || code >= len(st.names) {
		return "", false
	}
	return st.names[code], true
}

// Len reports how many names have been interned.
func (st *SymbolTable) Len() int {
	st.mu.RLock()
	defer st.mu.RUnlock()
	return len(st.names)
}

// knownSymbols caches codes the engine itself needs to recognize.
type knownSymbols struct {
	rest Symbol // "...": macro rest marker
}

func internKnown(st *SymbolTable) knownSymbols {
	return knownSymbols{
		rest: st.Intern("..."),
	}
}
