package paren

import (
	"errors"
	"fmt"
	osexec "os/exec"
	"strings"
)

// ---- output and process built-ins -------------------------------------

func init() {
	// (pr X ...) prints the display text of its arguments, space separated.
	defineBuiltin(bPr, func(c *callCtx) Value {
		c.ip.print(c.evalAll(), false)
		return Nil
	})
	defineBuiltin(bPrn, func(c *callCtx) Value {
		c.ip.print(c.evalAll(), true)
		return Nil
	})

	// (exit [CODE]) ends the line, then hands CODE to Interpreter.Exit.
	defineBuiltin(bExit, func(c *callCtx) Value {
		code := int32(0)
		if c.n() > 0 {
			c.need(1)
			code = toInt32(c.numArg(0))
		}
		c.ip.print(nil, true)
		c.ip.Exit(int(code))
		return Nil
	})

	// (system PROGRAM ARG...) runs a child process attached to the
	// interpreter's In/Out/ErrOut, waits for it and returns its exit code.
	defineBuiltin(bSystem, func(c *callCtx) Value {
		c.atLeast(1)
		args := make([]string, c.n())
		for i, v := range c.evalAll() {
			args[i] = Display(v)
		}
		cmd := osexec.Command(args[0], args[1:]...)
		cmd.Stdin = c.ip.In
		cmd.Stdout = c.ip.Out
		cmd.Stderr = c.ip.ErrOut
		if err := cmd.Run(); err != nil {
			var ee *osexec.ExitError
			if errors.As(err, &ee) && ee.ProcessState != nil {
				return Int32(int32(ee.ProcessState.ExitCode()))
			}
			fail("system: " + err.Error())
		}
		return Int32(int32(cmd.ProcessState.ExitCode()))
	})
}

// print writes xs to Out under the output lock so lines written by
// different threads do not interleave mid-line.
func (ip *Interpreter) print(xs []Value, newline bool) {
	parts := make([]string, len(xs))
	for i, x := range xs {
		parts[i] = Display(x)
	}
	line := strings.Join(parts, " ")
	ip.outMu.Lock()
	defer ip.outMu.Unlock()
	if newline {
		fmt.Fprintln(ip.Out, line)
	} else {
		fmt.Fprint(ip.Out, line)
	}
}
