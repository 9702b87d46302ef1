package main

import (
	"container/heap"
	"fmt"
	"math"
	"sort"
	"strings"
)

// infinite represents an unreachable exit: the function never returns on
// any path the parser could resolve, or a mutually recursive group never
// finds an external exit.
const infinite = math.MaxInt

// addWeight sums two block weights, saturating at infinite instead of
// overflowing when either operand already is infinite.
func addWeight(a, b int) int {
	if a >= infinite || b >= infinite {
		return infinite
	}
	return a + b
}

// SummarizeFunctions computes, for every CFG, the weight of its shortest
// entry-to-exit path -- its "summary". Functions are processed in reverse
// topological order of their call dependency graph (callees before
// callers) so a caller's summary can use an already-known callee summary.
// Strongly connected components larger than one node (mutual recursion)
// are re-summarized until no summary in the component changes. prog may be
// nil; when non-nil, each non-trivial SCC found is reported via
// prog.Verbose, naming its member functions.
func SummarizeFunctions(program *Program, prog *Progress) map[string]int {
	summaries := make(map[string]int)

	depGraph := buildDependencyGraph(program)
	sccs := stronglyConnectedComponents(depGraph)

	for _, scc := range sccs {
		if len(scc) == 1 {
			summarizeOne(program.CFGs[scc[0]], program, summaries)
			continue
		}

		if prog != nil {
			prog.Verbose("SCC found: mutual recursion among %s", sccMemberNames(program, scc))
		}

		for {
			before := snapshotSummaries(scc, program, summaries)
			for _, n := range scc {
				summarizeOne(program.CFGs[n], program, summaries)
			}
			after := snapshotSummaries(scc, program, summaries)
			if sameSnapshot(before, after) {
				break
			}
		}
	}

	return summaries
}

// sccMemberNames renders an SCC's function names, in the order Tarjan's
// algorithm popped them off its stack, for the informational log line
// printed when mutual recursion is found.
func sccMemberNames(program *Program, scc []int) string {
	names := make([]string, len(scc))
	for i, n := range scc {
		names[i] = program.CFGs[n].Name
	}
	return strings.Join(names, ", ")
}

// formatSummaries renders the summary table sorted by function name, for
// the -verbose/debug dump of computed summaries.
func formatSummaries(summaries map[string]int) string {
	names := make([]string, 0, len(summaries))
	for name := range summaries {
		names = append(names, name)
	}
	sort.Strings(names)

	var b strings.Builder
	b.WriteByte('{')
	for i, name := range names {
		if i > 0 {
			b.WriteString(", ")
		}
		weight := summaries[name]
		if weight >= infinite {
			fmt.Fprintf(&b, "%s: inf", name)
		} else {
			fmt.Fprintf(&b, "%s: %d", name, weight)
		}
	}
	b.WriteByte('}')
	return b.String()
}

func snapshotSummaries(scc []int, program *Program, summaries map[string]int) []int {
	snap := make([]int, len(scc))
	for i, n := range scc {
		w, ok := summaries[program.CFGs[n].Name]
		if !ok {
			snap[i] = -1
		} else {
			snap[i] = w
		}
	}
	return snap
}

func sameSnapshot(a, b []int) bool {
	for i := range a {
		if a[i] != b[i] {
			return false
		}
	}
	return true
}

// summaryItem is one entry in the Dijkstra-on-blocks priority queue:
// accumulated weight to reach block, smallest weight first.
type summaryItem struct {
	weight int
	block  int
}

type summaryHeap []summaryItem

func (h summaryHeap) Len() int            { return len(h) }
func (h summaryHeap) Less(i, j int) bool  { return h[i].weight < h[j].weight }
func (h summaryHeap) Swap(i, j int)       { h[i], h[j] = h[j], h[i] }
func (h *summaryHeap) Push(x interface{}) { *h = append(*h, x.(summaryItem)) }
func (h *summaryHeap) Pop() interface{} {
	old := *h
	n := len(old)
	item := old[n-1]
	*h = old[:n-1]
	return item
}

// summarizeOne computes cfg's summary via Dijkstra's algorithm over its
// blocks, seeded at block 0, and stores the result in summaries keyed by
// the function's name. A block is visited the moment it is pushed, which
// is valid because every block weight is non-negative.
func summarizeOne(cfg *CFG, program *Program, summaries map[string]int) {
	visited := make([]bool, len(cfg.Blocks))

	h := &summaryHeap{}
	heap.Init(h)

	entry := cfg.Block(0)
	seed := addWeight(entry.Size(), callCost(entry.Last(), program, summaries))
	heap.Push(h, summaryItem{weight: seed, block: entry.ID})
	visited[entry.ID] = true

	for h.Len() > 0 {
		s := heap.Pop(h).(summaryItem)
		current := cfg.Block(s.block)
		last := current.Last()

		if isRet(last) || len(current.Succ) == 0 {
			summaries[cfg.Name] = s.weight
			return
		}

		for _, n := range current.Succ {
			if visited[n] {
				continue
			}
			next := cfg.Block(n)
			cost := addWeight(next.Size(), callCost(next.Last(), program, summaries))
			heap.Push(h, summaryItem{weight: addWeight(s.weight, cost), block: n})
			visited[n] = true
		}
	}

	summaries[cfg.Name] = infinite
}

// callCost returns the cost to attribute to a block ending in a call: the
// callee's known summary, 0 if the callee is not a function defined in
// this file (an external call is free), or infinite if the callee is
// defined but its summary is not yet known.
func callCost(last string, program *Program, summaries map[string]int) int {
	if !isCall(last) {
		return 0
	}
	called := extractCalledFunction(last)
	if w, ok := summaries[called]; ok {
		return w
	}
	if !program.Defined[called] {
		return 0
	}
	return infinite
}
