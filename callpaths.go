package main

// BuildCallGraph computes the interprocedural call/return graph for a
// parsed program: G_call associates every call-site block with the entry
// of the function it invokes, and G_ret associates every callee return
// block with the sites its callers resume at. CallT and RetT are their
// transposes, which the distance pass searches over.
func BuildCallGraph(program *Program) *CallGraph {
	g := &CallGraph{
		Call:  make(map[site]site),
		Ret:   make(map[site][]site),
		CallT: make(map[site][]site),
		RetT:  make(map[site]site),
	}

	for _, cfg := range program.CFGs {
		for _, bb := range cfg.Blocks {
			last := bb.Last()
			if !isCall(last) {
				continue
			}
			callee := extractCalledFunction(last)
			g.Call[site{CFG: cfg.Name, Block: bb.ID}] = site{CFG: callee, Block: 0}
		}
	}

	for callSite, entry := range g.Call {
		target := program.CFGByName(entry.CFG)
		if target == nil {
			continue // external reference, e.g. klee_reach() itself
		}
		for _, bb := range target.Blocks {
			if !isRet(bb.Last()) {
				continue
			}
			key := site{CFG: entry.CFG, Block: bb.ID}
			resume := site{CFG: callSite.CFG, Block: callSite.Block + 1}
			g.Ret[key] = append(g.Ret[key], resume)
		}
	}

	for callSite, entry := range g.Call {
		g.CallT[entry] = append(g.CallT[entry], callSite)
	}

	for retBlock, resumes := range g.Ret {
		for _, resume := range resumes {
			g.RetT[resume] = retBlock
		}
	}

	return g
}
