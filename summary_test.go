package main

import (
	"bytes"
	"strings"
	"testing"
)

func TestSummarizeFunctionsLinearPath(t *testing.T) {
	cfg := NewCFG("@f", 0)
	b0 := &BasicBlock{ID: 0, Instrs: []Instruction{{1, "%1 = add i32 1, 2"}, {2, "%2 = mul i32 %1, 2"}}, Succ: []int{1}}
	b1 := &BasicBlock{ID: 1, Instrs: []Instruction{{3, "ret i32 0"}}}
	cfg.Blocks = []*BasicBlock{b0, b1}

	program := NewProgram()
	program.AddDefinedFunction("@f")
	program.AddCFG(cfg)

	summaries := SummarizeFunctions(program, nil)
	if got := summaries["@f"]; got != 3 {
		t.Errorf("summaries[@f] = %d, want 3", got)
	}
}

func TestSummarizeFunctionsAcrossCall(t *testing.T) {
	callee := NewCFG("@callee", 0)
	callee.Blocks = []*BasicBlock{
		{ID: 0, Instrs: []Instruction{{1, "ret i32 0"}}},
	}

	caller := NewCFG("@caller", 1)
	caller.Blocks = []*BasicBlock{
		{ID: 0, Instrs: []Instruction{{1, "%1 = call i32 @callee()"}}},
	}

	program := NewProgram()
	program.AddDefinedFunction("@callee")
	program.AddDefinedFunction("@caller")
	program.AddCFG(callee)
	program.AddCFG(caller)

	summaries := SummarizeFunctions(program, nil)
	if got := summaries["@callee"]; got != 1 {
		t.Errorf("summaries[@callee] = %d, want 1", got)
	}
	if got := summaries["@caller"]; got != 2 {
		t.Errorf("summaries[@caller] = %d, want 2 (own block + callee summary)", got)
	}
}

func TestSummarizeFunctionsMutualRecursionWithoutExitIsInfinite(t *testing.T) {
	a := NewCFG("@a", 0)
	a.Blocks = []*BasicBlock{
		{ID: 0, Instrs: []Instruction{{1, "%1 = call i32 @b()"}}},
	}
	b := NewCFG("@b", 1)
	b.Blocks = []*BasicBlock{
		{ID: 0, Instrs: []Instruction{{1, "%1 = call i32 @a()"}}},
	}

	program := NewProgram()
	program.AddDefinedFunction("@a")
	program.AddDefinedFunction("@b")
	program.AddCFG(a)
	program.AddCFG(b)

	summaries := SummarizeFunctions(program, nil)
	if got := summaries["@a"]; got != infinite {
		t.Errorf("summaries[@a] = %d, want infinite (%d)", got, infinite)
	}
	if got := summaries["@b"]; got != infinite {
		t.Errorf("summaries[@b] = %d, want infinite (%d)", got, infinite)
	}
}

func TestSummarizeFunctionsLogsNonTrivialSCC(t *testing.T) {
	a := NewCFG("@a", 0)
	a.Blocks = []*BasicBlock{
		{ID: 0, Instrs: []Instruction{{1, "%1 = call i32 @b()"}}},
	}
	b := NewCFG("@b", 1)
	b.Blocks = []*BasicBlock{
		{ID: 0, Instrs: []Instruction{{1, "%1 = call i32 @a()"}}},
	}

	program := NewProgram()
	program.AddDefinedFunction("@a")
	program.AddDefinedFunction("@b")
	program.AddCFG(a)
	program.AddCFG(b)

	prog := NewProgress(true)
	var buf bytes.Buffer
	prog.SetOutput(&buf)

	SummarizeFunctions(program, prog)

	if !strings.Contains(buf.String(), "SCC found") {
		t.Errorf("expected an SCC log line for mutually recursive @a/@b, got: %q", buf.String())
	}
}

func TestFormatSummariesSortsByNameAndRendersInfinite(t *testing.T) {
	summaries := map[string]int{"@zeta": 3, "@alpha": infinite}
	got := formatSummaries(summaries)
	if got != "{@alpha: inf, @zeta: 3}" {
		t.Errorf("formatSummaries() = %q, want %q", got, "{@alpha: inf, @zeta: 3}")
	}
}

func TestCallCostIgnoresUndefinedFunction(t *testing.T) {
	program := NewProgram()
	summaries := map[string]int{}
	if got := callCost("  call i32 @printf(i8* %0)", program, summaries); got != 0 {
		t.Errorf("callCost() = %d, want 0 for an undefined (external) function", got)
	}
}

func TestCallCostUsesKnownSummary(t *testing.T) {
	program := NewProgram()
	program.AddDefinedFunction("@helper")
	summaries := map[string]int{"@helper": 5}
	if got := callCost("  call i32 @helper()", program, summaries); got != 5 {
		t.Errorf("callCost() = %d, want 5", got)
	}
}
