package main

import "testing"

func TestIsDefine(t *testing.T) {
	cases := []struct {
		line string
		want bool
	}{
		{"define dso_local i32 @main() #0 {\n", true},
		{"declare i32 @printf(i8*, ...) #1\n", false},
		{"  %1 = alloca i32, align 4\n", false},
	}
	for _, c := range cases {
		if got := isDefine(c.line); got != c.want {
			t.Errorf("isDefine(%q) = %v, want %v", c.line, got, c.want)
		}
	}
}

func TestIsCallExcludesLLVMDebug(t *testing.T) {
	if !isCall("  call void @foo(i32 %0)\n") {
		t.Error("expected a normal call to match isCall")
	}
	if isCall("  call void @llvm.dbg.declare(metadata %0)\n") {
		t.Error("expected an @llvm.dbg call to be excluded from isCall")
	}
}

func TestIsRet(t *testing.T) {
	if !isRet("  ret i32 0\n") {
		t.Error("expected ret instruction to match isRet")
	}
	if isRet("  %1 = add i32 %a, %b\n") {
		t.Error("did not expect an add instruction to match isRet")
	}
}

func TestIsKleeReach(t *testing.T) {
	if !isKleeReach("  call void @klee_reach()\n") {
		t.Error("expected a klee_reach() call to match isKleeReach")
	}
	if isKleeReach("  call void @klee_assume(i32 %0)\n") {
		t.Error("did not expect klee_assume to match isKleeReach")
	}
}

func TestExtractCalledFunction(t *testing.T) {
	got := extractCalledFunction("  call i32 @bar(i32 %0)\n")
	if got != "@bar" {
		t.Errorf("extractCalledFunction() = %q, want %q", got, "@bar")
	}
}

func TestIsUncondBr(t *testing.T) {
	_, ok := isUncondBr("  br label %5\n")
	if !ok {
		t.Error("expected unconditional br to match isUncondBr")
	}
	_, ok = isUncondBr("  br i1 %cond, label %3, label %4\n")
	if ok {
		t.Error("did not expect conditional br to match isUncondBr")
	}
}

func TestIsLabelDefinition(t *testing.T) {
	if !isLabelDefinition("3:                                               ; preds = %1\n") {
		t.Error("expected a numeric label definition to match isLabelDefinition")
	}
	if isLabelDefinition("  %1 = icmp eq i32 %0, 0\n") {
		t.Error("did not expect a plain instruction to match isLabelDefinition")
	}
}

func TestExtractLabelFromDef(t *testing.T) {
	got := extractLabelFromDef("3:                                               ; preds = %1\n")
	if got != "3" {
		t.Errorf("extractLabelFromDef() = %q, want %q", got, "3")
	}
}

func TestSearchLabelInCondBr(t *testing.T) {
	labels := searchLabelInCondBr("  br i1 %cond, label %3, label %4\n")
	if len(labels) != 2 {
		t.Fatalf("expected 2 label fragments, got %d: %v", len(labels), labels)
	}
	if extractLabel(labels[0]) != "3" || extractLabel(labels[1]) != "4" {
		t.Errorf("unexpected extracted labels: %v", labels)
	}
}

func TestIsEndOfBB(t *testing.T) {
	if !isEndOfBB("  unreachable\n", false) {
		t.Error("expected unreachable to match isEndOfBB(false)")
	}
	if !isEndOfBB("  indirectbr i8* %0, [label %1]\n", true) {
		t.Error("expected indirectbr to match isEndOfBB(true)")
	}
	if isEndOfBB("  ret void\n", false) {
		t.Error("ret is handled separately, not by isEndOfBB")
	}
}
