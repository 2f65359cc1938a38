// Package bp builds and queries the bit-parallel distance sketch: R bushy
// BFS trees, each rooted at a high-degree vertex and fattened with up to 63
// additional seed vertices packed into 64-bit masks, that answer an exact
// distance in O(1) whenever two vertices' BFS layers are close enough for
// the packed masks to resolve the gap.
package bp

import (
	"context"

	"github.com/distlabel/coretree/internal/graphio"
	"github.com/distlabel/coretree/pkg/collections"
	"github.com/distlabel/coretree/pkg/parallel"
)

// R is the number of bit-parallel roots built per graph.
const R = 4

// MaxD is the sentinel "no path" distance used throughout the label format.
const MaxD = 120

// Label is one vertex's bit-parallel sketch: per root, the BFS distance D
// to the root and two 64-bit masks over the root's neighbor seeds: S[i][0]
// marks the seeds at distance D-1 from the vertex, S[i][1] the seeds at
// distance D.
type Label struct {
	D [R]uint8
	S [R][2]uint64
}

// Table holds the bit-parallel labels for every vertex plus which vertices
// were claimed as a seed of some root (and therefore excluded from the core
// 2-hop labeling, since their distances are already resolved here).
type Table struct {
	Labels  []Label
	Claimed []bool
}

// SelectRoots picks up to R vertices, in ascending rank order (rank 0
// already carries the highest degree after the ingester's descending-degree
// renumbering) among vertices not yet owned by an earlier root, claiming
// each root's seed set (itself plus up to 63 unclaimed neighbors, in
// ascending adjacency order) before the next root is chosen so no vertex
// seeds two roots. owner[v] is set to the claiming root's index, -1 if
// never claimed.
func SelectRoots(g *graphio.Graph, owner []int8) []int32 {
	roots := make([]int32, 0, R)
	for v := int32(0); v < g.N && len(roots) < R; v++ {
		if owner[v] == -1 {
			ri := int8(len(roots))
			roots = append(roots, v)
			claimSeedsOwner(g, v, owner, ri)
		}
	}
	return roots
}

// seedsOf recomputes the seed list for a root from the owner bitmap, used
// by Build's parallel BFS pass once SelectRoots has already recorded
// ownership for every root.
func seedsOf(g *graphio.Graph, root int32, owner []int8, rootIdx int8) []int32 {
	seeds := []int32{root}
	for _, w := range g.Neighbors(root) {
		if len(seeds) >= 64 {
			break
		}
		if owner[w] == rootIdx {
			seeds = append(seeds, w)
		}
	}
	return seeds
}

// Build runs the R bit-parallel BFS sketches and returns the resulting
// Table. Each root's BFS is independent (they write to disjoint slots of
// every vertex's Label), so the R BFS passes are dispatched concurrently
// through a worker pool.
func Build(ctx context.Context, g *graphio.Graph, threads int) (*Table, error) {
	n := g.N

	// owner[v] = index of the root that claimed v as a seed, -1 if unclaimed.
	owner := make([]int8, n)
	for i := range owner {
		owner[i] = -1
	}
	roots := SelectRoots(g, owner)

	labels := make([]Label, n)
	for v := range labels {
		for i := range labels[v].D {
			labels[v].D[i] = MaxD
		}
	}

	cfg := parallel.DefaultPoolConfig().WithWorkers(threads)
	rootIdxs := make([]int, len(roots))
	for i := range rootIdxs {
		rootIdxs[i] = i
	}

	_, err := parallel.ForEach(ctx, rootIdxs, cfg, func(ctx context.Context, i int) error {
		seeds := seedsOf(g, roots[i], owner, int8(i))
		bfsRoot(g, i, seeds, labels)
		return nil
	})
	if err != nil {
		return nil, err
	}

	claimed := make([]bool, n)
	for v, o := range owner {
		claimed[v] = o != -1
	}

	return &Table{Labels: labels, Claimed: claimed}, nil
}

// claimSeedsOwner claims root and up to 63 of its unclaimed neighbors,
// recording which root owns each seed instead of a flat claimed bool, so
// Build's parallel BFS passes can recover each root's exact seed set
// (seedsOf) without racing on a shared claimed map.
func claimSeedsOwner(g *graphio.Graph, root int32, owner []int8, rootIdx int8) []int32 {
	seeds := make([]int32, 0, 64)
	owner[root] = rootIdx
	seeds = append(seeds, root)
	for _, w := range g.Neighbors(root) {
		if len(seeds) >= 64 {
			break
		}
		if owner[w] == -1 {
			owner[w] = rootIdx
			seeds = append(seeds, w)
		}
	}
	return seeds
}

// bfsRoot runs one root's bit-parallel BFS, writing into slot i of every
// reached vertex's Label. seeds[0] is the root itself (distance 0, empty
// masks); seeds[j] for j >= 1 is a neighbor of the root at distance 1 and
// occupies bit j-1. S0 bits are pushed from parents to children; S1 bits
// are pulled when a vertex is dequeued, from its same-layer neighbors' S0
// and its parents' S1, which are complete by then in FIFO layer order.
func bfsRoot(g *graphio.Graph, i int, seeds []int32, labels []Label) {
	n := g.N
	dist := make([]int32, n)
	for v := range dist {
		dist[v] = -1
	}

	s0 := make([]uint64, n)
	s1Computed := make([]uint64, n)

	queue := collections.NewQueue[int32](int(n))
	dist[seeds[0]] = 0
	queue.Enqueue(seeds[0])
	for j, seed := range seeds[1:] {
		dist[seed] = 1
		s0[seed] |= 1 << uint(j)
		queue.Enqueue(seed)
	}

	for !queue.IsEmpty() {
		u, _ := queue.Dequeue()
		for _, v := range g.Neighbors(u) {
			switch {
			case dist[v] == -1:
				dist[v] = dist[u] + 1
				s0[v] |= s0[u]
				queue.Enqueue(v)
			case dist[v] == dist[u]:
				// same-layer edge: v's seeds one layer closer are at u's own distance
				s1Computed[u] |= s0[v]
			case dist[v] == dist[u]+1:
				s0[v] |= s0[u]
			case dist[v] == dist[u]-1:
				s1Computed[u] |= s1Computed[v]
			}
		}
	}

	for v := int32(0); v < n; v++ {
		if dist[v] == -1 {
			continue
		}
		labels[v].D[i] = clampDist(dist[v])
		labels[v].S[i][0] = s0[v]
		labels[v].S[i][1] = s1Computed[v] &^ s0[v]
	}
}

func clampDist(d int32) uint8 {
	if d >= MaxD {
		return MaxD
	}
	return uint8(d)
}

// Query returns the bit-parallel estimate of dist(u, v), or MaxD if the
// sketch cannot resolve it (the caller must then fall back to the core/tree
// labels).
func Query(t *Table, u, v int32) int {
	lu, lv := &t.Labels[u], &t.Labels[v]
	d := MaxD
	for i := 0; i < R; i++ {
		td := int(lu.D[i]) + int(lv.D[i])
		if td-2 > d {
			continue
		}
		if lu.S[i][0]&lv.S[i][0] != 0 {
			td -= 2
		} else if (lu.S[i][0]&lv.S[i][1])|(lu.S[i][1]&lv.S[i][0]) != 0 {
			td -= 1
		}
		if td < d {
			d = td
		}
	}
	return d
}
