// Package graphio implements the text-to-binary graph ingester: parsing an
// edge list, deduplicating it, collapsing equivalence classes, assigning the
// descending-degree rank order, and persisting/loading the resulting CSR
// graph as graph-dis.bin.
package graphio

import (
	"github.com/distlabel/coretree/pkg/apperr"
)

// MaxN is the sentinel added to a landmark id to encode a rule-2
// ("open-neighborhood") equivalence in the remap table.
const MaxN = 1 << 30

// Edge is an undirected edge between two original vertex ids.
type Edge struct {
	U, V int32
}

// Graph is the dense CSR adjacency representation used by every build stage.
// Vertex ids are already rank-renumbered: id 0 is the most important vertex.
type Graph struct {
	N   int32
	Deg []int32 // len N
	Adj []int32 // len sum(Deg), concatenated neighbor lists, adj offsets via Deg prefix sum
	off []int32 // cached prefix-sum offsets, len N+1
}

// NewGraph builds a Graph from a dense adjacency list (already rank-ordered
// and deduplicated), one slice of neighbors per vertex.
func NewGraph(adj [][]int32) *Graph {
	n := int32(len(adj))
	deg := make([]int32, n)
	off := make([]int32, n+1)
	var m int64
	for i, nbrs := range adj {
		deg[i] = int32(len(nbrs))
		m += int64(len(nbrs))
	}
	flat := make([]int32, 0, m)
	for i, nbrs := range adj {
		off[i] = int32(len(flat))
		flat = append(flat, nbrs...)
	}
	off[n] = int32(len(flat))

	return &Graph{N: n, Deg: deg, Adj: flat, off: off}
}

// Neighbors returns the neighbor slice of v. Panics if v is out of [0, N) —
// callers at the query boundary must validate vertex ids themselves and
// return OutOfRangeVertex instead of calling this with a bad id.
func (g *Graph) Neighbors(v int32) []int32 {
	g.ensureOffsets()
	return g.Adj[g.off[v]:g.off[v+1]]
}

// ensureOffsets recomputes the cached prefix-sum offsets if they are stale
// (e.g. after loading Deg/Adj directly from a binary artifact).
func (g *Graph) ensureOffsets() {
	if int32(len(g.off)) == g.N+1 {
		return
	}
	g.off = make([]int32, g.N+1)
	for i := int32(0); i < g.N; i++ {
		g.off[i+1] = g.off[i] + g.Deg[i]
	}
}

// InRange reports whether v is a valid vertex id, returning apperr.ErrOutOfRangeVertex otherwise.
func (g *Graph) InRange(v int32) error {
	if v < 0 || v >= g.N {
		return apperr.Wrapf(apperr.CodeOutOfRangeVertex, apperr.ErrOutOfRangeVertex, "vertex %d out of range [0, %d)", v, g.N)
	}
	return nil
}

// EquivClass distinguishes the two equivalence rules a vertex can be folded
// into during ingestion.
type EquivClass int

const (
	// Kept means the vertex was assigned its own dense id.
	Kept EquivClass = iota
	// Rule1 means the vertex shares a closed neighborhood with a kept representative.
	Rule1
	// Rule2 means the vertex shares an open neighborhood with a kept representative.
	Rule2
)

// Remap resolves an original vertex id to its dense id and equivalence class.
type Remap struct {
	NID []int32 // per original vertex: kept id, or -k-1 (rule1 of k), or k+MaxN (rule2 of k)
}

// Resolve decodes a raw nid entry into (representative id, class).
func Resolve(nid int32) (rep int32, class EquivClass) {
	switch {
	case nid >= MaxN:
		return nid - MaxN, Rule2
	case nid < 0:
		return -nid - 1, Rule1
	default:
		return nid, Kept
	}
}

// Encode packs a representative id and class back into the raw nid value
// stored on disk.
func Encode(rep int32, class EquivClass) int32 {
	switch class {
	case Rule1:
		return -rep - 1
	case Rule2:
		return rep + MaxN
	default:
		return rep
	}
}
