package main

import "fmt"

// Instruction is one raw line of LLVM IR text as it appeared in the input
// file, paired with its 1-indexed source line number. Instructions are
// immutable once parsed.
type Instruction struct {
	Line int
	Text string
}

// BasicBlock is a straight-line sequence of Instructions within one CFG,
// identified by a dense id starting at 0. Succ and Pred reference sibling
// block ids within the same CFG.
//
// Ignored counts lines present for debugging but not executed by the
// downstream symbolic executor (label definitions and function headers):
// Size() = len(Instrs) - Ignored.
type BasicBlock struct {
	ID      int
	Instrs  []Instruction
	Succ    []int
	Pred    []int
	Ignored int
}

// Size returns the number of executable instructions in the block.
func (b *BasicBlock) Size() int {
	return len(b.Instrs) - b.Ignored
}

// Last returns the block's last instruction text, or "" if empty.
func (b *BasicBlock) Last() string {
	if len(b.Instrs) == 0 {
		return ""
	}
	return b.Instrs[len(b.Instrs)-1].Text
}

// AddSucc records id as a successor, avoiding duplicate edges.
func (b *BasicBlock) AddSucc(id int) {
	for _, s := range b.Succ {
		if s == id {
			return
		}
	}
	b.Succ = append(b.Succ, id)
}

// AddPred records id as a predecessor, avoiding duplicate edges.
func (b *BasicBlock) AddPred(id int) {
	for _, p := range b.Pred {
		if p == id {
			return
		}
	}
	b.Pred = append(b.Pred, id)
}

// CFG is the control-flow graph of a single function, identified by its
// LLVM symbol (e.g. "@foo") and a dense id assigned in definition order.
type CFG struct {
	Name   string
	ID     int
	Blocks []*BasicBlock
	// Labels maps a label name to the id of the block that defines it,
	// populated during parsing and consulted when resolving forward jumps.
	Labels map[string]int
}

// NewCFG creates an empty CFG with the given name and id.
func NewCFG(name string, id int) *CFG {
	return &CFG{Name: name, ID: id, Labels: make(map[string]int)}
}

// Block returns the block with the given id.
func (c *CFG) Block(id int) *BasicBlock {
	return c.Blocks[id]
}

// Program owns the ordered set of CFGs parsed from one LLVM IR file and the
// set of functions that have a body (as opposed to an external reference).
type Program struct {
	CFGs    []*CFG
	Defined map[string]bool
	byName  map[string]*CFG
}

// NewProgram creates an empty Program.
func NewProgram() *Program {
	return &Program{Defined: make(map[string]bool), byName: make(map[string]*CFG)}
}

// AddCFG appends a finished CFG to the program.
func (p *Program) AddCFG(cfg *CFG) {
	p.CFGs = append(p.CFGs, cfg)
	p.byName[cfg.Name] = cfg
}

// AddDefinedFunction records name as having a body in this file.
func (p *Program) AddDefinedFunction(name string) {
	p.Defined[name] = true
}

// CFGByName returns the CFG with the given name, or nil if none resolves
// (e.g. the name refers to an external function).
func (p *Program) CFGByName(name string) *CFG {
	return p.byName[name]
}

// Distances is the append-only sequence of (line, weight) pairs recorded by
// the distance pass, emitted in the order they are computed. Infinite
// weights are never appended.
type Distances struct {
	entries []distEntry
}

type distEntry struct {
	Line   int
	Weight int
}

// Add records one (line, weight) pair. Callers never pass an infinite
// weight; Distances has no representation for infinity.
func (d *Distances) Add(line, weight int) {
	d.entries = append(d.entries, distEntry{Line: line, Weight: weight})
}

// Len returns the number of recorded entries.
func (d *Distances) Len() int {
	return len(d.entries)
}

// Lines returns the formatted "<line>:<weight>" strings in insertion order.
func (d *Distances) Lines() []string {
	out := make([]string, len(d.entries))
	for i, e := range d.entries {
		out[i] = fmt.Sprintf("%d:%d", e.Line, e.Weight)
	}
	return out
}

// site names a basic block by its owning CFG and block id. It is used both
// for call sites and for the synthetic (callee, 0) entry reference that a
// call targets.
type site struct {
	CFG   string
	Block int
}

// CallGraph holds the four maps built from a parsed Program: the call graph,
// the return graph, and their transposes.
type CallGraph struct {
	// Call maps a call-site block to the entry reference (callee, 0) that
	// it invokes. The callee name may not resolve to a known CFG -- that's
	// an external reference.
	Call map[site]site
	// Ret maps a callee's (name, ret-block) to every caller resumption
	// site that could return there.
	Ret map[site][]site
	// CallT is the reverse of Call: a callee entry reference (name, 0) ->
	// the call sites that target it.
	CallT map[site][]site
	// RetT is the reverse of Ret: a resumption site -> the single (callee,
	// ret-block) pair that returns to it. A later writer overwrites an
	// earlier one when distinct callees would resume at the same site.
	RetT map[site]site
}
