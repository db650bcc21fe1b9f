package paren

import (
	"strings"
	"sync"
	"testing"
)

func Test_Runtime_LoadPrelude_Extends_Global(t *testing.T) {
	ip, _, _ := newTestIP(t)
	err := ip.LoadPrelude("lib", `
(defmacro unless (c ...) (when (! c) ...))
(defn square (x) (* x x))
(set answer 42)`)
	if err != nil {
		t.Fatal(err)
	}
	wantInt32(t, mustEval(t, ip, "(unless false (square 6))"), 36)
	wantInt32(t, mustEval(t, ip, "answer"), 42)
}

func Test_Runtime_LoadPrelude_Reports_Failures(t *testing.T) {
	ip, _, _ := newTestIP(t)

	err := ip.LoadPrelude("broken.paren", "(set x 1")
	if err == nil || !strings.Contains(err.Error(), "broken.paren") {
		t.Fatalf("parse failure: %v", err)
	}

	err = ip.LoadPrelude("soft", "(nth 4 (list))")
	if err == nil || !strings.Contains(err.Error(), "soft: runtime error: nth") {
		t.Fatalf("soft failure: %v", err)
	}

	err = ip.LoadPrelude("hard", "(break)")
	if err == nil || !strings.Contains(err.Error(), "hard: RUNTIME ERROR: break") {
		t.Fatalf("hard failure: %v", err)
	}
}

func Test_Runtime_Version_Is_Set(t *testing.T) {
	if Version == "" || BuildDate == "" {
		t.Fatalf("version %q build %q", Version, BuildDate)
	}
}

func Test_Runtime_SymbolTable_Is_Bijective(t *testing.T) {
	st := NewSymbolTable()
	a := st.Intern("alpha")
	b := st.Intern("beta")
	if a.Code != 0 || b.Code != 1 || st.Intern("alpha").Code != 0 {
		t.Fatalf("codes: %d %d", a.Code, b.Code)
	}
	if name, ok := st.Name(1); !ok || name != "beta" {
		t.Fatalf("Name(1) = %q, %v", name, ok)
	}
	if _, ok := st.Name(7); ok {
		t.Fatal("Name(7) should not exist")
	}
	if _, ok := st.Lookup("gamma"); ok || st.Len() != 2 {
		t.Fatal("Lookup must not intern")
	}
}

func Test_Runtime_SymbolTable_Concurrent_Intern(t *testing.T) {
	st := NewSymbolTable()
	var wg sync.WaitGroup
	codes := make([]int, 16)
	for i := range codes {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			codes[i] = st.Intern("shared").Code
		}(i)
	}
	wg.Wait()
	for _, c := range codes {
		if c != codes[0] {
			t.Fatalf("codes diverged: %v", codes)
		}
	}
	if st.Len() != 1 {
		t.Fatalf("Len = %d", st.Len())
	}
}

func Test_Runtime_Env_Define_Assign_Shadowing(t *testing.T) {
	global := NewEnv(nil)
	child := NewEnv(global)
	if child.Parent() != global || global.Parent() != nil {
		t.Fatal("parent links")
	}

	global.Define(1, Int32(1))
	wantInt32(t, child.Get(1), 1)

	child.Assign(1, Int32(2))
	wantInt32(t, global.Get(1), 2)

	child.Define(1, Int32(3))
	wantInt32(t, child.Get(1), 3)
	wantInt32(t, global.Get(1), 2)

	child.Assign(9, Str("new"))
	wantStr(t, child.Get(9), "new")
	wantNil(t, global.Get(9))

	if got := child.Codes(); len(got) != 2 {
		t.Fatalf("child codes: %v", got)
	}
	if global.Lookup(42) != nil {
		t.Fatal("unbound lookup must be nil")
	}
}
