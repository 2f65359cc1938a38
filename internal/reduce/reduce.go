// Package reduce implements the core-tree peeling pass: vertices are removed
// in ascending-degree order as long as removing them keeps the resulting
// fill-in below the width W, leaving behind a small "core" that the 2-hop
// labeler handles directly and a "contraction" edge list that the tree
// builder uses to reattach every peeled vertex as a tree node.
package reduce

import (
	"container/heap"

	"github.com/distlabel/coretree/internal/graphio"
)

// Edge is one entry of a vertex's working or final edge list. Deferred
// marks a contraction record rather than a direct edge: To names a peeled
// vertex whose own recorded edges must be walked to find the real
// destination, instead of a sentinel negative weight.
type Edge struct {
	To       int32
	Weight   int32
	Deferred bool
}

// Result holds everything the tree builder and core labeler need.
type Result struct {
	// Rank[v] is the peeling order of v, or -1 if v belongs to the core.
	Rank []int32

	// TreeEdges[v], valid when Rank[v] >= 0, holds the edges v had active at
	// the moment it was peeled -- the candidate set the tree builder picks
	// v's parent from.
	TreeEdges [][]Edge

	// CoreEdges[v], valid when Rank[v] == -1, holds v's final core adjacency
	// after deferred contraction records have been expanded.
	CoreEdges [][]Edge

	NumCore int
}

// pqItem is a lazy decrease-key entry: degree is the active-edge count at
// the time the item was pushed, so a pop is stale (and must be skipped) if
// the vertex's current degree has since changed.
type pqItem struct {
	vertex int32
	degree int
}

type priorityQueue []pqItem

func (pq priorityQueue) Len() int { return len(pq) }
func (pq priorityQueue) Less(i, j int) bool {
	if pq[i].degree != pq[j].degree {
		return pq[i].degree < pq[j].degree
	}
	return pq[i].vertex < pq[j].vertex
}
func (pq priorityQueue) Swap(i, j int) { pq[i], pq[j] = pq[j], pq[i] }
func (pq *priorityQueue) Push(x interface{}) { *pq = append(*pq, x.(pqItem)) }
func (pq *priorityQueue) Pop() interface{} {
	old := *pq
	n := len(old)
	item := old[n-1]
	*pq = old[:n-1]
	return item
}

type reducer struct {
	n          int32
	width      int
	active     [][]Edge // working edge lists, mutated throughout peeling
	deactive   []bool   // true once a vertex has been frozen into the core
	rank       []int32
	treeEdges  [][]Edge
	pq         priorityQueue
}

// Run peels g down to a core of width W, returning the peeling ranks, each
// peeled vertex's tree-parent candidate edges, and the contracted core
// adjacency.
func Run(g *graphio.Graph, width int) *Result {
	r := &reducer{
		n:         g.N,
		width:     width,
		active:    make([][]Edge, g.N),
		deactive:  make([]bool, g.N),
		rank:      make([]int32, g.N),
		treeEdges: make([][]Edge, g.N),
	}
	for v := range r.rank {
		r.rank[v] = -1
	}
	for v := int32(0); v < g.N; v++ {
		nbrs := g.Neighbors(v)
		edges := make([]Edge, len(nbrs))
		for i, w := range nbrs {
			edges[i] = Edge{To: w, Weight: 1}
		}
		r.active[v] = edges
	}

	heap.Init(&r.pq)
	for v := int32(0); v < g.N; v++ {
		heap.Push(&r.pq, pqItem{vertex: v, degree: len(r.active[v])})
	}

	var order int32
	for r.pq.Len() > 0 {
		item := heap.Pop(&r.pq).(pqItem)
		x := item.vertex
		if r.rank[x] != -1 || r.deactive[x] {
			continue // stale or already resolved
		}
		if len(r.active[x]) != item.degree {
			heap.Push(&r.pq, pqItem{vertex: x, degree: len(r.active[x])})
			continue // stale key, current degree has since changed
		}
		if item.degree >= width {
			break // min score has reached the width bound: remainder is core
		}

		r.peel(x, &order)
	}

	return r.finish(order)
}

// peel removes x from the active graph: it records x's current edges as
// its tree-parent candidates, drops x from each active neighbor's list (or
// freezes the neighbor into the core if doing so would blow past the width
// budget), relaxes fill-in edges between x's surviving neighbor pairs, and
// leaves a deferred contraction record on every already-core neighbor.
func (r *reducer) peel(x int32, order *int32) {
	r.rank[x] = *order
	*order++

	edges := r.active[x]
	r.treeEdges[x] = append([]Edge(nil), edges...)

	var liveNeighbors []Edge
	for _, e := range edges {
		y := e.To
		if r.rank[y] != -1 {
			continue // already peeled
		}
		if r.deactive[y] {
			// y is already core: leave a deferred record so the core
			// expansion pass can recover x's contribution to y's reach.
			r.active[y] = append(r.active[y], Edge{To: x, Weight: e.Weight, Deferred: true})
			continue
		}
		if len(r.active[y]) >= 2*r.width {
			r.deactivate(y)
			r.active[y] = append(r.active[y], Edge{To: x, Weight: e.Weight, Deferred: true})
			continue
		}
		r.removeEdge(y, x)
		liveNeighbors = append(liveNeighbors, e)
		heap.Push(&r.pq, pqItem{vertex: y, degree: len(r.active[y])})
	}

	for i := 0; i < len(liveNeighbors); i++ {
		for j := i + 1; j < len(liveNeighbors); j++ {
			y, z := liveNeighbors[i].To, liveNeighbors[j].To
			w := liveNeighbors[i].Weight + liveNeighbors[j].Weight
			r.relax(y, z, w)
			r.relax(z, y, w)
		}
	}
	for _, e := range liveNeighbors {
		heap.Push(&r.pq, pqItem{vertex: e.To, degree: len(r.active[e.To])})
	}
}

// deactivate freezes y out of the peeling order: from now on it belongs to
// the core and is never popped from the priority queue again.
func (r *reducer) deactivate(y int32) {
	r.deactive[y] = true
}

// removeEdge drops the edge to target from v's active list, if present.
func (r *reducer) removeEdge(v, target int32) {
	edges := r.active[v]
	for i, e := range edges {
		if e.To == target && !e.Deferred {
			r.active[v] = append(edges[:i], edges[i+1:]...)
			return
		}
	}
}

// relax adds or tightens a fill-in edge from -> to with the given weight,
// keeping only the minimum-weight edge between any pair.
func (r *reducer) relax(from, to int32, weight int32) {
	for i, e := range r.active[from] {
		if e.To == to && !e.Deferred {
			if weight < e.Weight {
				r.active[from][i].Weight = weight
			}
			return
		}
	}
	r.active[from] = append(r.active[from], Edge{To: to, Weight: weight})
}

// finish builds the final core adjacency: direct edges between two core
// vertices are kept as-is, and deferred records are expanded through the
// referenced peeled vertex's own recorded edges (transitively, since a
// deferred record can itself point at another deferred record) until only
// core endpoints remain, keeping the minimum weight per destination.
func (r *reducer) finish(numPeeled int32) *Result {
	coreEdges := make([][]Edge, r.n)
	numCore := 0
	for v := int32(0); v < r.n; v++ {
		if r.rank[v] != -1 {
			continue
		}
		numCore++
		best := make(map[int32]int32)
		r.expand(v, r.active[v], best, make(map[int32]bool))
		delete(best, v)

		out := make([]Edge, 0, len(best))
		for to, w := range best {
			out = append(out, Edge{To: to, Weight: w})
		}
		sortEdgesByTarget(out)
		coreEdges[v] = out
	}

	return &Result{
		Rank:      r.rank,
		TreeEdges: r.treeEdges,
		CoreEdges: coreEdges,
		NumCore:   numCore,
	}
}

// expand walks edges (direct and deferred) reachable from a core vertex,
// recording the minimum weight seen to every core destination in best.
// visitingPeeled guards against revisiting the same peeled vertex twice
// through different deferred chains.
func (r *reducer) expand(origin int32, edges []Edge, best map[int32]int32, visitingPeeled map[int32]bool) {
	for _, e := range edges {
		if !e.Deferred {
			if r.rank[e.To] != -1 {
				continue // peeled endpoint with a stale direct edge, ignore
			}
			if cur, ok := best[e.To]; !ok || e.Weight < cur {
				best[e.To] = e.Weight
			}
			continue
		}
		if visitingPeeled[e.To] {
			continue
		}
		visitingPeeled[e.To] = true
		sub := r.treeEdges[e.To]
		shifted := make([]Edge, len(sub))
		for i, se := range sub {
			shifted[i] = Edge{To: se.To, Weight: se.Weight + e.Weight, Deferred: se.Deferred}
		}
		r.expand(origin, shifted, best, visitingPeeled)
	}
}

func sortEdgesByTarget(edges []Edge) {
	for i := 1; i < len(edges); i++ {
		for j := i; j > 0 && edges[j-1].To > edges[j].To; j-- {
			edges[j-1], edges[j] = edges[j], edges[j-1]
		}
	}
}
