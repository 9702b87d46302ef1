package main

import (
	"os"
	"path/filepath"
	"testing"
)

func writeTestLL(t *testing.T, content string) string {
	t.Helper()
	dir := t.TempDir()
	path := filepath.Join(dir, "input.ll")
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatalf("writing test fixture: %v", err)
	}
	return path
}

func TestParseCallAndRet(t *testing.T) {
	const src = `; dummy module
declare i32 @printf(i8*, ...)

define dso_local i32 @callee() #0 {
  ret i32 0
}

define dso_local i32 @main() #0 {
  %1 = call i32 @callee()
  call void @klee_reach()
  ret i32 0
}
`
	path := writeTestLL(t, src)
	program, warnings, err := Parse(path, nil)
	if err != nil {
		t.Fatalf("Parse() error = %v", err)
	}
	if warnings != 0 {
		t.Errorf("warnings = %d, want 0", warnings)
	}
	if len(program.CFGs) != 2 {
		t.Fatalf("len(program.CFGs) = %d, want 2", len(program.CFGs))
	}

	callee := program.CFGByName("@callee")
	if callee == nil {
		t.Fatal("expected @callee CFG")
	}
	if len(callee.Blocks) != 1 {
		t.Fatalf("@callee: len(Blocks) = %d, want 1", len(callee.Blocks))
	}
	if callee.Blocks[0].Succ != nil {
		t.Errorf("@callee block 0: Succ = %v, want nil (exit block)", callee.Blocks[0].Succ)
	}

	main := program.CFGByName("@main")
	if main == nil {
		t.Fatal("expected @main CFG")
	}
	if len(main.Blocks) != 3 {
		t.Fatalf("@main: len(Blocks) = %d, want 3", len(main.Blocks))
	}
	if got := main.Block(0).Succ; len(got) != 1 || got[0] != 1 {
		t.Errorf("@main block 0: Succ = %v, want [1]", got)
	}
	if got := main.Block(1).Pred; len(got) != 1 || got[0] != 0 {
		t.Errorf("@main block 1: Pred = %v, want [0]", got)
	}
	if main.Block(2).Succ != nil {
		t.Errorf("@main block 2: Succ = %v, want nil (exit block)", main.Block(2).Succ)
	}
	if !isKleeReach(main.Block(1).Last()) {
		t.Errorf("@main block 1's last instruction should be the klee_reach() call")
	}
}

func TestParseConditionalBranch(t *testing.T) {
	const src = `define dso_local i32 @branchy(i32 %0) #0 {
  %2 = icmp eq i32 %0, 0
  br i1 %2, label %3, label %4

3:                                                ; preds = %1
  br label %5

4:                                                ; preds = %1
  br label %5

5:                                                ; preds = %3, %4
  ret i32 0
}
`
	path := writeTestLL(t, src)
	program, _, err := Parse(path, nil)
	if err != nil {
		t.Fatalf("Parse() error = %v", err)
	}

	cfg := program.CFGByName("@branchy")
	if cfg == nil {
		t.Fatal("expected @branchy CFG")
	}
	if len(cfg.Blocks) != 4 {
		t.Fatalf("len(Blocks) = %d, want 4", len(cfg.Blocks))
	}

	b0 := cfg.Block(0)
	if len(b0.Succ) != 2 || b0.Succ[0] != 1 || b0.Succ[1] != 2 {
		t.Errorf("block 0: Succ = %v, want [1 2]", b0.Succ)
	}

	b1, b2, b3 := cfg.Block(1), cfg.Block(2), cfg.Block(3)
	if len(b1.Succ) != 1 || b1.Succ[0] != 3 {
		t.Errorf("block 1: Succ = %v, want [3]", b1.Succ)
	}
	if len(b2.Succ) != 1 || b2.Succ[0] != 3 {
		t.Errorf("block 2: Succ = %v, want [3]", b2.Succ)
	}
	if len(b3.Pred) != 2 {
		t.Fatalf("block 3: Pred = %v, want 2 entries", b3.Pred)
	}
	if b3.Succ != nil {
		t.Errorf("block 3: Succ = %v, want nil (exit block)", b3.Succ)
	}
	if b3.Size() != 1 {
		t.Errorf("block 3: Size() = %d, want 1 (the label definition is ignored)", b3.Size())
	}
}

func TestParseUnsupportedTerminatorWarns(t *testing.T) {
	const src = `define dso_local void @weird() #0 personality i8* @__gxx_personality_v0 {
  invoke void @might_throw()
          to label %normal unwind label %exception

normal:                                           ; preds = %0
  ret void

exception:                                        ; preds = %0
  ret void
}
`
	path := writeTestLL(t, src)
	_, warnings, err := Parse(path, nil)
	if err != nil {
		t.Fatalf("Parse() error = %v", err)
	}
	if warnings != 1 {
		t.Errorf("warnings = %d, want 1", warnings)
	}
}
