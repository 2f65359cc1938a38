// Package corelabel builds the 2-hop pruned landmark labels over the core
// subgraph left behind by the peeling reducer: the handful of vertices too
// interconnected to fold into any tree get an exact-distance label built by
// a pruned Dijkstra run from each landmark in turn, with the bit-parallel sketch providing an
// extra, cheap pruning test before a label entry is ever stored.
package corelabel

import (
	"container/heap"
	"math/bits"
	"sort"

	"github.com/distlabel/coretree/internal/bp"
	"github.com/distlabel/coretree/internal/reduce"
)

// MaxD mirrors bp.MaxD.
const MaxD = bp.MaxD

// Entry is one landmark hub in a core vertex's label.
type Entry struct {
	Landmark int32
	Dist     int32
}

// Labels holds the completed 2-hop label set, plus the landmark id
// assignment (vertex -> landmark id, or -1 if the vertex never serves as a
// landmark because the bit-parallel sketch already covers it).
type Labels struct {
	ByVertex    map[int32][]Entry
	LandmarkOf  map[int32]int32
	NumLandmark int32
	MaxMov      uint32
}

// Build runs pruned landmark labeling over the core adjacency (indexed by
// original vertex id; only entries for core vertices are populated).
// bpTable supplies the pruning test and the set of vertices already fully
// resolved by the bit-parallel sketch, which are excluded from acting as
// landmarks (though they still receive a label of their own).
func Build(coreAdj map[int32][]reduce.Edge, bpTable *bp.Table, coreVertices []int32) *Labels {
	sorted := append([]int32(nil), coreVertices...)
	sort.Slice(sorted, func(i, j int) bool { return sorted[i] < sorted[j] })

	landmarkOf := make(map[int32]int32, len(sorted))
	var landmarks []int32
	for _, v := range sorted {
		if !bpTable.Claimed[v] {
			landmarkOf[v] = int32(len(landmarks))
			landmarks = append(landmarks, v)
		} else {
			landmarkOf[v] = -1
		}
	}

	labels := make(map[int32][]Entry, len(sorted))
	for _, v := range sorted {
		labels[v] = nil
	}

	for lid, root := range landmarks {
		dijkstraFromLandmark(coreAdj, bpTable, labels, landmarkOf, root, int32(lid))
	}

	for v := range labels {
		sort.Slice(labels[v], func(i, j int) bool { return labels[v][i].Landmark < labels[v][j].Landmark })
	}

	n := len(sorted)
	maxMov := uint32(bits.Len(uint(2 * n)))
	if maxMov == 0 {
		maxMov = 1
	}

	return &Labels{ByVertex: labels, LandmarkOf: landmarkOf, NumLandmark: int32(len(landmarks)), MaxMov: maxMov}
}

type heapItem struct {
	vertex int32
	dist   int32
}

type distHeap []heapItem

func (h distHeap) Len() int            { return len(h) }
func (h distHeap) Less(i, j int) bool  { return h[i].dist < h[j].dist }
func (h distHeap) Swap(i, j int)       { h[i], h[j] = h[j], h[i] }
func (h *distHeap) Push(x interface{}) { *h = append(*h, x.(heapItem)) }
func (h *distHeap) Pop() interface{} {
	old := *h
	n := len(old)
	item := old[n-1]
	*h = old[:n-1]
	return item
}

// dijkstraFromLandmark runs a pruned Dijkstra from root, adding a (lid,
// dist) hub entry to every vertex it cannot prune, and skipping expansion
// past any vertex it does prune (the standard pruned-BFS/Dijkstra
// correctness argument: once a shorter alternative is already known, no
// path continuing through this vertex via root can be shortest either).
func dijkstraFromLandmark(
	coreAdj map[int32][]reduce.Edge,
	bpTable *bp.Table,
	labels map[int32][]Entry,
	landmarkOf map[int32]int32,
	root int32,
	lid int32,
) {
	// Seed the landmark's own label with itself at distance 0 -- the 2-hop
	// cover needs this hub whenever the canonical meeting point of a
	// shortest path is one of the two query endpoints (e.g. two adjacent
	// landmarks, one outranking the other).
	labels[root] = append(labels[root], Entry{Landmark: lid, Dist: 0})

	dist := map[int32]int32{root: 0}
	h := &distHeap{{vertex: root, dist: 0}}
	heap.Init(h)

	for h.Len() > 0 {
		top := heap.Pop(h).(heapItem)
		v, d := top.vertex, top.dist
		if cur, ok := dist[v]; !ok || d > cur {
			continue // stale
		}

		if v != root {
			if lm, isLandmark := landmarkOf[v]; isLandmark && lm >= 0 && lm < lid {
				// already recorded from v's own, earlier Dijkstra pass.
				continue
			}
			if bp.Prune(bpTable, root, v, int(d)) {
				continue
			}
			if canPrune(labels, landmarkOf, v, root, d) {
				continue
			}
			labels[v] = append(labels[v], Entry{Landmark: lid, Dist: d})
		}

		for _, e := range coreAdj[v] {
			nd := d + e.Weight
			if cur, ok := dist[e.To]; !ok || nd < cur {
				dist[e.To] = nd
				heap.Push(h, heapItem{vertex: e.To, dist: nd})
			}
		}
	}
}

// canPrune reports whether v already has a hub path to root no longer than
// d, via any landmark appearing in both v's and root's current labels.
func canPrune(labels map[int32][]Entry, landmarkOf map[int32]int32, v, root int32, d int32) bool {
	rootLabel := labels[root]
	rootDist := make(map[int32]int32, len(rootLabel)+1)
	if lm, ok := landmarkOf[root]; ok && lm >= 0 {
		rootDist[lm] = 0
	}
	for _, e := range rootLabel {
		rootDist[e.Landmark] = e.Dist
	}

	for _, e := range labels[v] {
		if rd, ok := rootDist[e.Landmark]; ok && e.Dist+rd <= d {
			return true
		}
	}
	return false
}

// Query returns the shortest distance certified by the 2-hop labels alone
// (not including the bit-parallel or tree contributions the full query
// engine also consults), or corelabel.MaxD if the labels share no hub.
func Query(labels *Labels, u, v int32) int {
	lu, lv := labels.ByVertex[u], labels.ByVertex[v]
	best := MaxD
	i, j := 0, 0
	for i < len(lu) && j < len(lv) {
		switch {
		case lu[i].Landmark == lv[j].Landmark:
			if d := int(lu[i].Dist + lv[j].Dist); d < best {
				best = d
			}
			i++
			j++
		case lu[i].Landmark < lv[j].Landmark:
			i++
		default:
			j++
		}
	}
	return best
}
