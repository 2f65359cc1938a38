// Package tree attaches every peeled vertex back onto the core as a node in
// a rooted forest, then computes each node's ancestor-distance label: the
// exact distance from the vertex to every anchor (a core vertex its tree
// attaches to) and to every tree ancestor above it.
package tree

import (
	"sort"

	"github.com/distlabel/coretree/internal/reduce"
)

// MaxD mirrors bp.MaxD; duplicated here to avoid an import cycle between
// bp and tree, both of which are leaves consumed by the query engine.
const MaxD = 120

// Node is one peeled vertex's position in the forest plus its computed
// ancestor-distance label.
type Node struct {
	RID   int32   // id of the tree this node belongs to (its root's vertex id)
	RSize int32   // number of core anchors inherited from the root
	H     int32   // stack height: RSize anchors + tree-ancestor chain including self
	Nbr   []int32 // the vertex's peel-time neighbor ids, core neighbors first
	Anc   []int32 // tree-ancestor chain from position RSize to H-1, ending with self
	Dis   []int8  // length H: distance to each stack position, Dis[H-1] == 0
}

// Forest is the set of trees built from a peeling result, keyed by vertex id
// for every non-core vertex.
type Forest struct {
	Nodes map[int32]*Node
}

// Build constructs the forest and computes every node's ancestor-distance
// label. Vertices are processed in descending peeling rank (the most
// recently peeled, i.e. closest to the core, first) so a vertex's chosen
// parent has always already been assigned its own label.
func Build(result *reduce.Result) *Forest {
	order := make([]int32, 0, len(result.Rank))
	for v, rk := range result.Rank {
		if rk >= 0 {
			order = append(order, int32(v))
		}
	}
	sort.Slice(order, func(i, j int) bool {
		return result.Rank[order[i]] > result.Rank[order[j]]
	})

	f := &Forest{Nodes: make(map[int32]*Node, len(order))}
	anchors := make(map[int32][]int32) // rootID -> sorted core anchor ids
	weights := make(map[int32]map[int32]int32, len(order))

	for _, x := range order {
		edges := result.TreeEdges[x]
		w := make(map[int32]int32, len(edges))
		var coreNbrs, treeNbrs []reduce.Edge
		for _, e := range edges {
			w[e.To] = e.Weight
			if result.Rank[e.To] == -1 {
				coreNbrs = append(coreNbrs, e)
			} else {
				treeNbrs = append(treeNbrs, e)
			}
		}
		weights[x] = w
		sort.Slice(coreNbrs, func(i, j int) bool { return coreNbrs[i].To < coreNbrs[j].To })
		sort.Slice(treeNbrs, func(i, j int) bool { return result.Rank[treeNbrs[i].To] < result.Rank[treeNbrs[j].To] })

		nbrIDs := make([]int32, 0, len(edges))
		for _, e := range coreNbrs {
			nbrIDs = append(nbrIDs, e.To)
		}
		for _, e := range treeNbrs {
			nbrIDs = append(nbrIDs, e.To)
		}

		var node *Node
		if len(treeNbrs) == 0 {
			// root case: this vertex attaches straight to the core.
			coreIDs := make([]int32, len(coreNbrs))
			for i, e := range coreNbrs {
				coreIDs[i] = e.To
			}
			node = &Node{
				RID:   x,
				RSize: int32(len(coreIDs)),
				H:     int32(len(coreIDs)) + 1,
				Nbr:   nbrIDs,
				Anc:   []int32{x},
			}
			anchors[x] = coreIDs
		} else {
			parent := f.Nodes[treeNbrs[0].To]
			anc := make([]int32, len(parent.Anc)+1)
			copy(anc, parent.Anc)
			anc[len(parent.Anc)] = x
			node = &Node{
				RID:   parent.RID,
				RSize: parent.RSize,
				H:     parent.H + 1,
				Nbr:   nbrIDs,
				Anc:   anc,
			}
		}
		f.Nodes[x] = node
	}

	for _, x := range order {
		node := f.Nodes[x]
		node.Dis = computeDis(f, node, anchors[node.RID], weights[x])
	}

	return f
}

// computeDis fills in a node's ancestor-distance row. Position i in [0,
// RSize) names anchors[i]; position i in [RSize, H) names Anc[i-RSize].
//
// For every peel-time neighbor j (stack position k, edge weight w) and
// every resolved position i in [0, H-1):
//   - k <= i, i >= RSize: position i is a tree ancestor (or self), whose own
//     row already holds the distance from i down to the shallower shared
//     position k (ancestors, and self's own chain, are fully resolved
//     before this call returns to a descendant), so w plus that entry is a
//     candidate for dis[i]. This also covers k == i (that row's own
//     distance to itself is 0), i.e. the direct peel-time edge.
//   - k == i, i < RSize: i is a bare core anchor with no tree row of its
//     own, so the direct edge gives a candidate distance of w.
//   - k > i, k >= RSize: the neighbor itself is a tree ancestor; its row
//     already holds the distance from k down to i, so w plus that entry is
//     a candidate.
//
// Distances between two core anchors are intentionally left unresolved
// here: the core's own 2-hop labels own that case.
func computeDis(f *Forest, node *Node, anchors []int32, weights map[int32]int32) []int8 {
	h := int(node.H)
	rsize := int(node.RSize)
	dis := make([]int8, h)
	if h > 0 {
		dis[h-1] = 0
	}

	pos := make(map[int32]int, len(anchors)+len(node.Anc))
	for i, a := range anchors {
		pos[a] = i
	}
	for i, a := range node.Anc {
		pos[a] = rsize + i
	}

	type peelNbr struct {
		k int
		w int32
	}
	var nbrs []peelNbr
	for nbr, w := range weights {
		if k, ok := pos[nbr]; ok {
			nbrs = append(nbrs, peelNbr{k: k, w: w})
		}
		// else: neighbor outside this tree's anchor/ancestor set, see DESIGN.md
	}

	for i := 0; i < h-1; i++ {
		dis[i] = MaxD
		for _, nb := range nbrs {
			k := nb.k
			nowdis := int32(-1)
			switch {
			case k <= i:
				if i >= rsize {
					nowdis = int32(f.Nodes[node.Anc[i-rsize]].Dis[k])
				} else if k == i {
					nowdis = 0
				}
			case k >= rsize:
				nowdis = int32(f.Nodes[node.Anc[k-rsize]].Dis[i])
			}
			if nowdis < 0 {
				continue
			}
			nd := nowdis + nb.w
			if nd > MaxD {
				nd = MaxD
			}
			if int8(nd) < dis[i] {
				dis[i] = int8(nd)
			}
		}
	}

	return dis
}
