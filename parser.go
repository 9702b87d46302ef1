package main

import (
	"bufio"
	"fmt"
	"io"
	"os"
)

// Parse reads an LLVM IR text file and breaks it into CFGs of basic blocks.
// It runs in two passes: the first builds blocks and their direct
// (fall-through) edges while recording a label table per CFG; the second
// resolves br/switch edges using those tables. It returns the number of
// lines that reached the unsupported-terminator warning; indirectbr and
// callbr lines match isBr, and catchret and cleanupret lines match isRet,
// before that check, so they are not counted.
func Parse(path string, prog *Progress) (*Program, int, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, 0, fmt.Errorf("opening %s: %w", path, err)
	}
	defer f.Close()

	program := NewProgram()
	cfg := NewCFG("", -1)
	bb := &BasicBlock{ID: 0}
	waitForSwitchEnd := false
	lineNumber := 0
	warned := 0

	scanner := bufio.NewScanner(f)
	scanner.Buffer(make([]byte, 0, 64*1024), 16*1024*1024)

	for scanner.Scan() {
		lineNumber++
		line := scanner.Text()

		if line == "" {
			continue
		}

		if isEndOfDefine(line) {
			resetLastBBSucc(cfg)
			program.AddCFG(cfg)
			continue
		}

		if isLabelDefinition(line) {
			label := extractLabelFromDef(line)
			cfg.Labels[label] = bb.ID
			bb.Ignored++
		}

		if isDefine(line) {
			name := extractCalledFunction(line)
			program.AddDefinedFunction(name)
			cfg = NewCFG(name, cfg.ID+1)
			bb = &BasicBlock{ID: 0}
			bb.Ignored++
		}

		bb.Instrs = append(bb.Instrs, Instruction{Line: lineNumber, Text: line})

		if isSwitch(line) {
			waitForSwitchEnd = true
		}

		switch {
		case waitForSwitchEnd && isSwitchEnd(line):
			waitForSwitchEnd = false
			cfg, bb = nextBasicBlock(cfg, bb, false)
		case isBr(line):
			cfg, bb = nextBasicBlock(cfg, bb, false)
		case isCall(line) || isRet(line) || isEndOfBB(line, false):
			bb.AddSucc(bb.ID + 1)
			cfg, bb = nextBasicBlock(cfg, bb, true)
		case isEndOfBB(line, true):
			if prog != nil {
				prog.Warn("terminator instruction currently not supported: %s", line)
			} else {
				fmt.Fprintf(os.Stderr, "warning: terminator instruction currently not supported: %s\n", line)
			}
			warned++
			cfg, bb = nextBasicBlock(cfg, bb, false)
		}
	}
	if err := scanner.Err(); err != nil {
		return nil, 0, fmt.Errorf("reading %s: %w", path, err)
	}

	resolveJumpEdges(program)

	return program, warned, nil
}

// nextBasicBlock closes bb into cfg and starts a fresh block, optionally
// linking it as a direct successor of the block just closed.
func nextBasicBlock(cfg *CFG, bb *BasicBlock, addPred bool) (*CFG, *BasicBlock) {
	cfg.Blocks = append(cfg.Blocks, bb)
	next := &BasicBlock{ID: bb.ID + 1}
	if addPred {
		next.AddPred(bb.ID)
	}
	return cfg, next
}

// resetLastBBSucc clears the successor list of a CFG's final block: a
// function's exit block has no fall-through successor.
func resetLastBBSucc(cfg *CFG) {
	if len(cfg.Blocks) == 0 {
		return
	}
	cfg.Blocks[len(cfg.Blocks)-1].Succ = nil
}

// resolveJumpEdges performs the second parsing pass: for every CFG that
// declared at least one label, it walks each block's last instruction and
// adds the successor/predecessor edges implied by br and switch targets.
func resolveJumpEdges(program *Program) {
	for _, cfg := range program.CFGs {
		if len(cfg.Labels) == 0 {
			continue
		}
		for _, bb := range cfg.Blocks {
			last := bb.Last()

			if isBr(last) {
				if frag, ok := isUncondBr(last); ok {
					label := extractLabel(frag)
					target := cfg.Labels[label]
					bb.AddSucc(target)
					cfg.Block(target).AddPred(bb.ID)
					continue
				}
				labels := searchLabelInCondBr(last)
				for _, frag := range labels {
					label := extractLabel(frag)
					target := cfg.Labels[label]
					bb.AddSucc(target)
					cfg.Block(target).AddPred(bb.ID)
				}
				continue
			}

			if isSwitchEnd(last) {
				i := len(bb.Instrs) - 1
				isSwitchInstr := false
				var switchInstrs []Instruction
				for i >= 0 && !isSwitchInstr {
					switchInstrs = append(switchInstrs, bb.Instrs[i])
					isSwitchInstr = isSwitch(bb.Instrs[i].Text)
					i--
				}
				if !isSwitchInstr {
					continue
				}
				for _, instr := range switchInstrs {
					if frag, ok := hasLabel(instr.Text); ok {
						label := extractLabel(frag)
						target := cfg.Labels[label]
						bb.AddSucc(target)
						cfg.Block(target).AddPred(bb.ID)
					}
				}
			}
		}
	}
}

// DebugDump writes a human-readable rendering of every non-empty CFG's
// blocks, mirroring the debug output produced during parsing.
func (p *Program) DebugDump(w io.Writer) {
	for _, cfg := range p.CFGs {
		if len(cfg.Blocks) == 0 {
			continue
		}
		fmt.Fprintf(w, "CFG %s (id=%d)\n", cfg.Name, cfg.ID)
		for _, bb := range cfg.Blocks {
			fmt.Fprintf(w, "  Content of BasicBlock #%d (size = %d)\n", bb.ID, bb.Size())
			for _, instr := range bb.Instrs {
				fmt.Fprintf(w, "    (%d, %q)\n", instr.Line, instr.Text)
			}
			fmt.Fprintf(w, "  Successors: %v\n", bb.Succ)
			fmt.Fprintf(w, "  Predecessors: %v\n", bb.Pred)
		}
	}
}
