package main

import "container/heap"

// distItem is one entry in the distance pass priority queue: the
// accumulated weight to reach (cfg, block) while having taken a return
// edge or not. Ties break deterministically on (cfgID, block,
// hasTakenRet) so two runs over the same program always pop items in the
// same order.
type distItem struct {
	weight      int
	cfgID       int
	cfgName     string
	block       int
	hasTakenRet bool
}

type distHeap []distItem

func (h distHeap) Len() int { return len(h) }
func (h distHeap) Less(i, j int) bool {
	a, b := h[i], h[j]
	if a.weight != b.weight {
		return a.weight < b.weight
	}
	if a.cfgID != b.cfgID {
		return a.cfgID < b.cfgID
	}
	if a.block != b.block {
		return a.block < b.block
	}
	return !a.hasTakenRet && b.hasTakenRet
}
func (h distHeap) Swap(i, j int)       { h[i], h[j] = h[j], h[i] }
func (h *distHeap) Push(x interface{}) { *h = append(*h, x.(distItem)) }
func (h *distHeap) Pop() interface{} {
	old := *h
	n := len(old)
	item := old[n-1]
	*h = old[:n-1]
	return item
}

// ComputeDistances runs the interprocedural distance pass: a Dijkstra
// search seeded at the block containing the first call to klee_reach(),
// walking the transposed control/call/return graph, assigning every
// reachable instruction the weight of its shortest path to the target.
// A one-bit guard, hasTakenRet, forbids taking a call edge once any
// return edge has been taken on the current path.
func ComputeDistances(program *Program, summaries map[string]int, prog *Progress) *Distances {
	dist := &Distances{}

	targetCFG, targetBlock := findTarget(program)
	if targetCFG == "" {
		if prog != nil {
			prog.Log("warning: no target found")
		}
		return dist
	}

	graph := BuildCallGraph(program)

	visited := make([][]bool, len(program.CFGs))
	for i, cfg := range program.CFGs {
		visited[i] = make([]bool, len(cfg.Blocks))
	}

	h := &distHeap{}
	heap.Init(h)

	start := program.CFGByName(targetCFG)
	heap.Push(h, distItem{
		weight:      start.Block(targetBlock).Size(),
		cfgID:       start.ID,
		cfgName:     targetCFG,
		block:       targetBlock,
		hasTakenRet: false,
	})
	visited[start.ID][targetBlock] = true

	for h.Len() > 0 {
		s := heap.Pop(h).(distItem)
		currentCFG := program.CFGByName(s.cfgName)
		currentBB := currentCFG.Block(s.block)

		if s.weight < infinite {
			distValue := s.weight
			for _, instr := range currentBB.Instrs {
				if isLabelDefinition(instr.Text) || isDefine(instr.Text) {
					continue
				}
				distValue--
				dist.Add(instr.Line, distValue)
			}
		}

		for _, predID := range currentBB.Pred {
			if visited[currentCFG.ID][predID] {
				continue
			}
			predBB := currentCFG.Block(predID)
			cost := addSummary(summaries, predBB)
			value := addWeight(s.weight, addWeight(predBB.Size(), cost))
			heap.Push(h, distItem{
				weight:      value,
				cfgID:       currentCFG.ID,
				cfgName:     s.cfgName,
				block:       predID,
				hasTakenRet: s.hasTakenRet,
			})
			visited[currentCFG.ID][predID] = true
		}

		// Taking a return edge is always allowed and marks the path as
		// having taken one; taking a call edge is only allowed if no
		// return edge has been taken yet on this path.
		takeRetPath(program, graph, s, h, visited)
		takeCallPath(program, graph, s, h, visited)
	}

	return dist
}

// findTarget returns the name and block id of the first block, in CFG scan
// order, whose last instruction calls klee_reach(). It returns ("", -1) if
// no such block exists.
func findTarget(program *Program) (string, int) {
	for _, cfg := range program.CFGs {
		for _, bb := range cfg.Blocks {
			if isKleeReach(bb.Last()) {
				return cfg.Name, bb.ID
			}
		}
	}
	return "", -1
}

// addSummary returns the summary of the function called by target's last
// instruction, or 0 if target does not end in a call or the callee has no
// known summary.
func addSummary(summaries map[string]int, target *BasicBlock) int {
	last := target.Last()
	if !isCall(last) {
		return 0
	}
	called := extractCalledFunction(last)
	if w, ok := summaries[called]; ok {
		return w
	}
	return 0
}

// takeRetPath expands a return edge on the transposed return graph: from a
// caller's resumption site backward to the callee return block recorded for
// it in RetT. Taking a return edge always sets hasTakenRet, regardless of
// its prior value.
func takeRetPath(program *Program, graph *CallGraph, s distItem, h *distHeap, visited [][]bool) {
	key := site{CFG: s.cfgName, Block: s.block}
	target, ok := graph.RetT[key]
	if !ok {
		return
	}
	pushCallRetTarget(program, target, s.weight, true, h, visited)
}

// takeCallPath expands a call edge on the transposed call graph: from a
// callee's entry block backward to every call site that invokes it. It is
// a no-op once a return edge has been taken on this path.
func takeCallPath(program *Program, graph *CallGraph, s distItem, h *distHeap, visited [][]bool) {
	if s.hasTakenRet {
		return
	}
	key := site{CFG: s.cfgName, Block: s.block}
	targets, ok := graph.CallT[key]
	if !ok {
		return
	}
	for _, target := range targets {
		pushCallRetTarget(program, target, s.weight, false, h, visited)
	}
}

func pushCallRetTarget(program *Program, target site, weight int, forceTakenRet bool, h *distHeap, visited [][]bool) {
	cfg := program.CFGByName(target.CFG)
	if cfg == nil {
		return
	}
	if visited[cfg.ID][target.Block] {
		return
	}
	bb := cfg.Block(target.Block)
	value := addWeight(weight, bb.Size())
	heap.Push(h, distItem{
		weight:      value,
		cfgID:       cfg.ID,
		cfgName:     target.CFG,
		block:       target.Block,
		hasTakenRet: forceTakenRet,
	})
	visited[cfg.ID][target.Block] = true
}
