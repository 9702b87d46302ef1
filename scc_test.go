package main

import "testing"

func sccContains(sccs [][]int, scc []int) bool {
	want := make(map[int]bool)
	for _, n := range scc {
		want[n] = true
	}
	for _, got := range sccs {
		if len(got) != len(want) {
			continue
		}
		match := true
		for _, n := range got {
			if !want[n] {
				match = false
				break
			}
		}
		if match {
			return true
		}
	}
	return false
}

func sccIndexOf(sccs [][]int, node int) int {
	for i, scc := range sccs {
		for _, n := range scc {
			if n == node {
				return i
			}
		}
	}
	return -1
}

func TestStronglyConnectedComponentsLinearChain(t *testing.T) {
	g := newDepGraph(3)
	g.addEdge(0, 1)
	g.addEdge(1, 2)

	sccs := stronglyConnectedComponents(g)
	if len(sccs) != 3 {
		t.Fatalf("len(sccs) = %d, want 3", len(sccs))
	}
	// reverse topological order: the callee (2) comes before its caller (1),
	// which comes before its caller (0).
	if sccIndexOf(sccs, 2) >= sccIndexOf(sccs, 1) {
		t.Error("expected node 2's SCC before node 1's SCC")
	}
	if sccIndexOf(sccs, 1) >= sccIndexOf(sccs, 0) {
		t.Error("expected node 1's SCC before node 0's SCC")
	}
}

func TestStronglyConnectedComponentsMutualRecursion(t *testing.T) {
	g := newDepGraph(4)
	g.addEdge(0, 1) // 0 calls 1
	g.addEdge(1, 2) // 1 calls 2
	g.addEdge(2, 1) // 2 calls 1 back: {1, 2} is one SCC

	sccs := stronglyConnectedComponents(g)
	if !sccContains(sccs, []int{1, 2}) {
		t.Errorf("expected {1, 2} to be a single SCC, got %v", sccs)
	}
	if sccIndexOf(sccs, 1) >= sccIndexOf(sccs, 0) {
		t.Error("expected the {1, 2} SCC before node 0's SCC")
	}
}

func TestStronglyConnectedComponentsIsolatedNodes(t *testing.T) {
	g := newDepGraph(3)
	sccs := stronglyConnectedComponents(g)
	if len(sccs) != 3 {
		t.Fatalf("len(sccs) = %d, want 3 singleton components", len(sccs))
	}
	for _, scc := range sccs {
		if len(scc) != 1 {
			t.Errorf("unexpected non-singleton SCC %v in a graph with no edges", scc)
		}
	}
}
