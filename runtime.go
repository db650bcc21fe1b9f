// runtime.go
//
// Global seeding: every builtin name, the predefined constants and the
// prelude macros are installed into Interpreter.Global by seedGlobals, which
// NewInterpreter calls once. Hosts can evaluate further library source into
// Global with LoadPrelude.

package paren

import (
	"fmt"
	"math"
)

// Version of the Paren engine.
const Version = "1.7.0"

// BuildDate is stamped by the release build (-ldflags "-X ...BuildDate=...").
var BuildDate = "dev"

// prelude is evaluated into every new interpreter.
const prelude = `
(defmacro setfn (name ...) (set name (fn ...)))
(defmacro defn (...) (setfn ...))
`

func (ip *Interpreter) seedGlobals() {
	for b := Builtin(0); b < numBuiltins; b++ {
		ip.Global.Define(ip.symbols.Intern(b.String()).Code, BuiltinVal(b))
	}
	for name, v := range map[string]Value{
		"true":  Bool(true),
		"false": Bool(false),
		"null":  Nil,
		"E":     Float(math.E),
		"PI":    Float(math.Pi),
	} {
		ip.Global.Define(ip.symbols.Intern(name).Code, v)
	}
	if err := ip.LoadPrelude("prelude", prelude); err != nil {
		panic(err)
	}
}

// LoadPrelude evaluates src into Global. A hard error, or a top-level form
// that fails softly, is returned with name in the message.
func (ip *Interpreter) LoadPrelude(name, src string) error {
	forms, err := ip.Parse(src)
	if err != nil {
		return WrapErrorWithName(err, name, src)
	}
	for _, f := range forms {
		v, err := ip.EvalForms([]Value{f})
		if err != nil {
			return fmt.Errorf("%s: %w", name, err)
		}
		if v.Tag == VTNil && v.Annot != "" {
			return fmt.Errorf("%s: runtime error: %s", name, v.Annot)
		}
	}
	return nil
}
