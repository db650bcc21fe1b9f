package main

import (
	"errors"
	"flag"
	"fmt"
	"io"
	"os"
	"os/signal"
	"path/filepath"
	"strings"
	"syscall"

	"github.com/davecgh/go-spew/spew"
	"github.com/peterh/liner"

	"github.com/daios-ai/paren"
)

const (
	appName     = "paren"
	historyFile = ".paren_history"
	promptMain  = "> "
	promptCont  = "  "
)

var (
	showVersion = flag.Bool("v", false, "print the version and exit")
	dump        = flag.Bool("dump", false, "print the resolved forms of each file instead of evaluating them")
	maxDepth    = flag.Int("max-depth", paren.DefaultMaxDepth, "maximum evaluation nesting depth (0 disables the guard)")
	noColor     = flag.Bool("no-color", false, "do not colour error messages")
	histPath    = flag.String("history", "", "REPL history file (default ~/"+historyFile+")")

	banner = fmt.Sprintf("Paren %s (%s)\nPredefined symbols: %s\nCtrl+C cancels input, Ctrl+D exits.",
		paren.Version, paren.BuildDate, strings.Join(paren.BuiltinNames(), " "))
)

func red(s string) string {
	if *noColor {
		return s
	}
	return "\x1b[31m" + s + "\x1b[0m"
}

func main() {
	flag.Usage = usage
	flag.Parse()

	if *showVersion {
		fmt.Println(paren.Version)
		return
	}
	if flag.NArg() == 0 {
		os.Exit(cmdRepl())
	}
	os.Exit(cmdRun(flag.Args()))
}

func usage() {
	fmt.Fprintf(os.Stderr, `Paren %s (built %s)

Usage:
  %s [flags]                 Start the REPL.
  %s [flags] FILE...         Run each file in a fresh interpreter.

Flags:
`, paren.Version, paren.BuildDate, appName, appName)
	flag.PrintDefaults()
}

func newInterpreter() *paren.Interpreter {
	ip := paren.NewInterpreter()
	ip.MaxDepth = *maxDepth
	return ip
}

// -----------------------------------------------------------------------------
// run
// -----------------------------------------------------------------------------

// cmdRun evaluates every file in order. A failing file is reported and the
// next one still runs; the exit status is 1 if any file failed.
func cmdRun(files []string) int {
	status := 0
	for _, file := range files {
		if err := runFile(file); err != nil {
			fmt.Fprintln(os.Stderr, red(err.Error()))
			status = 1
		}
	}
	return status
}

func runFile(file string) error {
	src, err := os.ReadFile(file)
	if err != nil {
		return fmt.Errorf("%s: cannot read %s: %w", appName, file, err)
	}
	ip := newInterpreter()
	if *dump {
		return dumpForms(ip, file, string(src))
	}
	defer ip.Wait()
	if _, err := ip.EvalString(string(src)); err != nil {
		return paren.WrapErrorWithName(err, fileAbsOrOrig(file), string(src))
	}
	return nil
}

// dumpForms prints each top-level form after macro expansion.
func dumpForms(ip *paren.Interpreter, file, src string) error {
	forms, err := ip.Parse(src)
	if err != nil {
		return paren.WrapErrorWithName(err, fileAbsOrOrig(file), src)
	}
	cfg := spew.ConfigState{Indent: "  ", DisablePointerAddresses: true, DisableCapacities: true}
	for _, f := range forms {
		r, err := ip.Resolve(f)
		if err != nil {
			return err
		}
		fmt.Println(r.String())
		cfg.Fdump(os.Stdout, r)
	}
	return nil
}

func fileAbsOrOrig(p string) string {
	if abs, err := filepath.Abs(p); err == nil {
		return abs
	}
	return p
}

// -----------------------------------------------------------------------------
// repl
// -----------------------------------------------------------------------------

func cmdRepl() (ret int) {
	fmt.Println(banner)

	hist := *histPath
	if hist == "" {
		home, _ := os.UserHomeDir()
		hist = filepath.Join(home, historyFile)
	}

	ln := liner.NewLiner()
	defer ln.Close()
	ln.SetCtrlCAborts(true)

	defer func() {
		if f, err := os.Create(hist); err == nil {
			_, _ = ln.WriteHistory(f)
			_ = f.Close()
		}
	}()

	sigc := make(chan os.Signal, 1)
	signal.Notify(sigc, syscall.SIGTERM, syscall.SIGHUP)
	defer signal.Stop(sigc)
	go func() {
		<-sigc
		ln.Close()
		os.Exit(130)
	}()

	if f, err := os.Open(hist); err == nil {
		_, _ = ln.ReadHistory(f)
		_ = f.Close()
	}

	ip := newInterpreter()
	ip.Exit = func(code int) {
		ln.Close()
		os.Exit(code)
	}

	for {
		code, ok := readBalanced(ln, promptMain, promptCont)
		if !ok {
			fmt.Println()
			break
		}
		if strings.TrimSpace(code) == "" {
			continue
		}
		ln.AppendHistory(strings.ReplaceAll(code, "\n", " "))

		v, err := ip.EvalString(code)
		if err != nil {
			fmt.Fprintln(os.Stderr, red(paren.WrapErrorWithSource(err, code).Error()))
			continue
		}
		fmt.Println(paren.Display(v) + " : " + paren.TypeName(v))
	}
	return 0
}

// readBalanced reads lines until the accumulated input has no open list or
// string. Ctrl+C discards the pending input.
func readBalanced(ln *liner.State, prompt, cont string) (string, bool) {
	var b strings.Builder
	for {
		p := prompt
		if b.Len() > 0 {
			p = cont
		}
		line, err := ln.Prompt(p)
		if errors.Is(err, io.EOF) {
			return "", false
		}
		if errors.Is(err, liner.ErrPromptAborted) {
			return "", true
		}
		if err != nil {
			return "", false
		}
		if b.Len() > 0 {
			b.WriteByte('\n')
		}
		b.WriteString(line)
		if paren.Balance(b.String()) <= 0 {
			return b.String(), true
		}
	}
}
