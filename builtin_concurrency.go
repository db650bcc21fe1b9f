package paren

import (
	"fmt"
)

// ---- threads -----------------------------------------------------------
//
// (thread BODY...) evaluates BODY on a new goroutine against the frame the
// form appears in. Both sides share every cell reachable from that frame.
// The spawner gets a "thread" handle back immediately.

// Thread is the payload of a "thread" handle. Join is reachable from Paren
// through the foreign layer: (. t Join).
type Thread struct {
	done   chan struct{}
	result Value
	err    error
}

// Join blocks until the thread's body has finished and returns the value of
// its last form, or Nil if it failed.
func (th *Thread) Join() Value {
	<-th.done
	return th.result
}

// Alive reports whether the body is still running.
func (th *Thread) Alive() bool {
	select {
	case <-th.done:
		return false
	default:
		return true
	}
}

// Err returns the hard error that ended the thread, if any.
func (th *Thread) Err() error {
	<-th.done
	return th.err
}

// Done is closed when the body finishes.
func (th *Thread) Done() <-chan struct{} { return th.done }

func (th *Thread) String() string {
	if th.Alive() {
		return "#<thread running>"
	}
	return "#<thread done>"
}

func init() {
	defineBuiltin(bThread, func(c *callCtx) Value {
		th := c.ip.spawn(c.args, c.env)
		return HandleVal("thread", th)
	})
}

// spawn runs body in env on its own task. A hard error (break escaping the
// body, depth exceeded) ends only that thread and is reported to ErrOut.
func (ip *Interpreter) spawn(body []Value, env *Env) *Thread {
	th := &Thread{done: make(chan struct{}), result: Nil}
	ip.threads.Add(1)
	go func() {
		defer ip.threads.Done()
		defer close(th.done)
		th.result, th.err = ip.runTop(func(t *task) Value {
			out := Nil
			for _, form := range body {
				out = ip.eval(t, form, env)
			}
			return out
		})
		if th.err != nil {
			ip.outMu.Lock()
			fmt.Fprintln(ip.ErrOut, th.err.Error())
			ip.outMu.Unlock()
		}
	}()
	return th
}
