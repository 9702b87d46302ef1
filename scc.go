package main

// depGraph is a dependency graph over dense integer ids, suitable for
// Tarjan's strongly connected components algorithm: one node per CFG, with
// an edge f -> g whenever f ends a block with a call to a known CFG g.
type depGraph struct {
	n     int
	edges [][]int
}

func newDepGraph(n int) *depGraph {
	return &depGraph{n: n, edges: make([][]int, n)}
}

func (g *depGraph) addEdge(u, v int) {
	g.edges[u] = append(g.edges[u], v)
}

// buildDependencyGraph builds the call dependency graph for CFGs: an edge
// from f to g means f contains a block whose last instruction calls g.
func buildDependencyGraph(program *Program) *depGraph {
	g := newDepGraph(len(program.CFGs))
	for _, f := range program.CFGs {
		for _, bb := range f.Blocks {
			last := bb.Last()
			if !isCall(last) {
				continue
			}
			called := extractCalledFunction(last)
			target := program.CFGByName(called)
			if target == nil {
				continue
			}
			g.addEdge(f.ID, target.ID)
		}
	}
	return g
}

// tarjanFrame is one explicit-stack call frame standing in for a recursive
// invocation of Tarjan's scc_util, so the algorithm tolerates graphs with
// tens of thousands of nodes without exhausting the Go call stack.
type tarjanFrame struct {
	node    int
	edgeIdx int
}

// stronglyConnectedComponents runs Tarjan's algorithm over g and returns
// its SCCs in reverse topological order: every component is emitted after
// all components it depends on.
func stronglyConnectedComponents(g *depGraph) [][]int {
	disc := make([]int, g.n)
	low := make([]int, g.n)
	onStack := make([]bool, g.n)
	for i := range disc {
		disc[i] = -1
	}

	var stack []int
	var sccs [][]int
	counter := 0

	for start := 0; start < g.n; start++ {
		if disc[start] != -1 {
			continue
		}

		var frames []tarjanFrame
		frames = append(frames, tarjanFrame{node: start, edgeIdx: 0})
		disc[start] = counter
		low[start] = counter
		counter++
		onStack[start] = true
		stack = append(stack, start)

		for len(frames) > 0 {
			top := &frames[len(frames)-1]
			u := top.node

			if top.edgeIdx < len(g.edges[u]) {
				v := g.edges[u][top.edgeIdx]
				top.edgeIdx++

				if disc[v] == -1 {
					disc[v] = counter
					low[v] = counter
					counter++
					onStack[v] = true
					stack = append(stack, v)
					frames = append(frames, tarjanFrame{node: v, edgeIdx: 0})
				} else if onStack[v] {
					if disc[v] < low[u] {
						low[u] = disc[v]
					}
				}
				continue
			}

			// all of u's edges are explored; pop its frame and propagate
			// low back to the parent, exactly as the recursive version
			// does on returning from scc_util(v).
			frames = frames[:len(frames)-1]
			if len(frames) > 0 {
				parent := &frames[len(frames)-1]
				if low[u] < low[parent.node] {
					low[parent.node] = low[u]
				}
			}

			if low[u] == disc[u] {
				var scc []int
				for {
					w := stack[len(stack)-1]
					stack = stack[:len(stack)-1]
					onStack[w] = false
					scc = append(scc, w)
					if w == u {
						break
					}
				}
				sccs = append(sccs, scc)
			}
		}
	}

	return sccs
}
