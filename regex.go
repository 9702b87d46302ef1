package main

import (
	"regexp"
	"strings"
)

// Predicate and extraction helpers over raw LLVM IR text lines. Each
// instruction is matched as plain text; there is no tokenizer.

var (
	reDefine        = regexp.MustCompile(`define `)
	reCall          = regexp.MustCompile(`call `)
	reLLVMDebugCall = regexp.MustCompile(`@llvm\.dbg`)
	reRet           = regexp.MustCompile(`ret `)
	reKleeReach     = regexp.MustCompile(`@klee_reach\(\)`)
	reCalledFunc    = regexp.MustCompile(`@\w+`)

	reBr        = regexp.MustCompile(`br `)
	reSwitch    = regexp.MustCompile(`switch `)
	reSwitchEnd = regexp.MustCompile(` \]`)
	reUncondBr  = regexp.MustCompile(`br label (%([-a-zA-Z$._][-a-zA-Z$._0-9]*)|%([0-9]*))`)

	reLabelIdent   = regexp.MustCompile(`([-a-zA-Z$._][-a-zA-Z$._0-9]*):|([0-9]+):`)
	rePredsMarker  = regexp.MustCompile(`; preds =`)
	reHasLabel     = regexp.MustCompile(`label %\d+`)
	reLabelRef     = regexp.MustCompile(`%([-a-zA-Z$._][-a-zA-Z$._0-9]*)|%([0-9]*)`)
	reLabelDef     = regexp.MustCompile(`([-a-zA-Z$._][-a-zA-Z$._0-9]*):|([0-9]*):`)
	reCondBrLabels = regexp.MustCompile(`, label %[-a-zA-Z$._][-a-zA-Z$._0-9]*|, label %[0-9]*`)
)

// isDefine reports whether instr opens a function definition.
func isDefine(instr string) bool {
	return reDefine.MatchString(instr)
}

// isEndOfDefine reports whether instr closes a function definition.
func isEndOfDefine(instr string) bool {
	return instr == "}\n" || instr == "}"
}

// isLLVMDebugCall reports whether instr calls an @llvm.dbg intrinsic.
func isLLVMDebugCall(instr string) bool {
	return reLLVMDebugCall.MatchString(instr)
}

// isCall reports whether instr is a call, excluding llvm.dbg intrinsics.
func isCall(instr string) bool {
	return reCall.MatchString(instr) && !isLLVMDebugCall(instr)
}

// isRet reports whether instr is a return instruction.
func isRet(instr string) bool {
	return reRet.MatchString(instr)
}

// isKleeReach reports whether instr invokes klee_reach().
func isKleeReach(instr string) bool {
	return reKleeReach.MatchString(instr)
}

// extractCalledFunction returns the @name of the function called in instr,
// or "" if none is found.
func extractCalledFunction(instr string) string {
	return reCalledFunc.FindString(instr)
}

// isBr reports whether instr is a br instruction.
func isBr(instr string) bool {
	return reBr.MatchString(instr)
}

// isSwitch reports whether instr opens a switch statement.
func isSwitch(instr string) bool {
	return reSwitch.MatchString(instr)
}

// isSwitchEnd reports whether instr closes a switch statement's label table.
func isSwitchEnd(instr string) bool {
	return reSwitchEnd.MatchString(instr)
}

// isUncondBr reports whether a br instruction is unconditional and, if so,
// returns the matched "br label %target" text.
func isUncondBr(instr string) (string, bool) {
	m := reUncondBr.FindString(instr)
	return m, m != ""
}

// isLabelDefinition reports whether line declares a label (an LLVM
// identifier followed by a colon, annotated with a "; preds =" comment).
func isLabelDefinition(line string) bool {
	return reLabelIdent.MatchString(line) && rePredsMarker.MatchString(line)
}

// hasLabel reports whether instr references a numeric label operand and, if
// so, returns the matched "label %N" text.
func hasLabel(instr string) (string, bool) {
	m := reHasLabel.FindString(instr)
	return m, m != ""
}

// extractLabel returns the label name referenced by a "%name" or "label
// %name" fragment.
func extractLabel(frag string) string {
	m := reLabelRef.FindString(frag)
	if m == "" {
		return ""
	}
	return m[1:]
}

// extractLabelFromDef returns the label name declared by a label
// definition line ("name:  ; preds = ...").
func extractLabelFromDef(line string) string {
	m := reLabelDef.FindString(line)
	if m == "" {
		return ""
	}
	return m[:len(m)-1]
}

// searchLabelInCondBr returns the two ", label %name" fragments of a
// conditional branch instruction.
func searchLabelInCondBr(instr string) []string {
	return reCondBrLabels.FindAllString(instr, -1)
}

// Terminator instructions other than ret, br and switch.
// Reference: https://llvm.org/docs/LangRef.html#terminator-instructions
var (
	terminatorsNoLabel   = []string{"resume ", "unreachable"}
	terminatorsWithLabel = []string{
		"indirectbr ", "invoke ", "callbr ", "catchswitch ", "catchret ",
		"cleanupret ",
	}
)

// isEndOfBB reports whether instr is one of the terminator instructions not
// otherwise handled by br/switch/call/ret logic. withLabel selects between
// the jumping and non-jumping terminator sets.
func isEndOfBB(instr string, withLabel bool) bool {
	terms := terminatorsNoLabel
	if withLabel {
		terms = terminatorsWithLabel
	}
	for _, kw := range terms {
		if strings.Contains(instr, kw) {
			return true
		}
	}
	return false
}
