package main

import "testing"

func linesContain(lines []string, want string) bool {
	for _, l := range lines {
		if l == want {
			return true
		}
	}
	return false
}

func TestComputeDistancesSingleFunctionBackward(t *testing.T) {
	cfg := NewCFG("@f", 0)
	b0 := &BasicBlock{ID: 0, Instrs: []Instruction{{1, "%1 = add i32 1, 2"}, {2, "%2 = mul i32 %1, 2"}}, Succ: []int{1}}
	b1 := &BasicBlock{ID: 1, Instrs: []Instruction{{3, "call void @klee_reach()"}}, Pred: []int{0}}
	cfg.Blocks = []*BasicBlock{b0, b1}

	program := NewProgram()
	program.AddDefinedFunction("@f")
	program.AddCFG(cfg)

	dist := ComputeDistances(program, map[string]int{}, nil)
	if dist.Len() != 3 {
		t.Fatalf("dist.Len() = %d, want 3", dist.Len())
	}
	lines := dist.Lines()
	if !linesContain(lines, "3:0") {
		t.Errorf("expected the klee_reach() line to have weight 0, got %v", lines)
	}
	if !linesContain(lines, "2:1") {
		t.Errorf("expected line 2 to have weight 1, got %v", lines)
	}
	if !linesContain(lines, "1:2") {
		t.Errorf("expected line 1 to have weight 2, got %v", lines)
	}
}

func TestComputeDistancesNoTargetReturnsEmpty(t *testing.T) {
	cfg := NewCFG("@f", 0)
	cfg.Blocks = []*BasicBlock{
		{ID: 0, Instrs: []Instruction{{1, "ret i32 0"}}},
	}
	program := NewProgram()
	program.AddDefinedFunction("@f")
	program.AddCFG(cfg)

	dist := ComputeDistances(program, map[string]int{}, nil)
	if dist.Len() != 0 {
		t.Errorf("dist.Len() = %d, want 0 when no klee_reach() call exists", dist.Len())
	}
}

func TestComputeDistancesCrossesCallBoundary(t *testing.T) {
	callee := NewCFG("@callee", 0)
	cb0 := &BasicBlock{ID: 0, Instrs: []Instruction{{10, "call void @klee_reach()"}}, Succ: []int{1}}
	cb1 := &BasicBlock{ID: 1, Instrs: []Instruction{{11, "ret void"}}, Pred: []int{0}}
	callee.Blocks = []*BasicBlock{cb0, cb1}

	caller := NewCFG("@caller", 1)
	kb0 := &BasicBlock{ID: 0, Instrs: []Instruction{{20, "call void @callee()"}}, Succ: []int{1}}
	kb1 := &BasicBlock{ID: 1, Instrs: []Instruction{{21, "ret i32 0"}}, Pred: []int{0}}
	caller.Blocks = []*BasicBlock{kb0, kb1}

	program := NewProgram()
	program.AddDefinedFunction("@callee")
	program.AddDefinedFunction("@caller")
	program.AddCFG(callee)
	program.AddCFG(caller)

	dist := ComputeDistances(program, map[string]int{}, nil)
	lines := dist.Lines()
	if !linesContain(lines, "10:0") {
		t.Errorf("expected the klee_reach() line to have weight 0, got %v", lines)
	}
	if !linesContain(lines, "20:1") {
		t.Errorf("expected the call site in @caller to have weight 1, got %v", lines)
	}
}

func TestFindTargetReturnsFirstMatch(t *testing.T) {
	cfg := NewCFG("@f", 0)
	cfg.Blocks = []*BasicBlock{
		{ID: 0, Instrs: []Instruction{{1, "ret i32 0"}}},
		{ID: 1, Instrs: []Instruction{{2, "call void @klee_reach()"}}},
	}
	program := NewProgram()
	program.AddCFG(cfg)

	name, block := findTarget(program)
	if name != "@f" || block != 1 {
		t.Errorf("findTarget() = (%q, %d), want (\"@f\", 1)", name, block)
	}
}

func TestFindTargetNoneFound(t *testing.T) {
	program := NewProgram()
	program.AddCFG(NewCFG("@f", 0))
	name, block := findTarget(program)
	if name != "" || block != -1 {
		t.Errorf("findTarget() = (%q, %d), want (\"\", -1)", name, block)
	}
}

func TestAddSummary(t *testing.T) {
	bb := &BasicBlock{ID: 0, Instrs: []Instruction{{1, "call i32 @helper()"}}}
	summaries := map[string]int{"@helper": 7}
	if got := addSummary(summaries, bb); got != 7 {
		t.Errorf("addSummary() = %d, want 7", got)
	}

	retBB := &BasicBlock{ID: 0, Instrs: []Instruction{{1, "ret i32 0"}}}
	if got := addSummary(summaries, retBB); got != 0 {
		t.Errorf("addSummary() = %d, want 0 for a non-call terminator", got)
	}
}
