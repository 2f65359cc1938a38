// Package query answers exact shortest-path distance queries by combining
// the three label layers built during indexing: the bit-parallel sketch for
// the cheap common case, the core's 2-hop labels for paths that cross the
// dense remainder, and the tree ancestor labels for paths contained within
// a single peeled subtree.
package query

import (
	"github.com/distlabel/coretree/internal/bp"
	"github.com/distlabel/coretree/internal/corelabel"
	"github.com/distlabel/coretree/internal/graphio"
	"github.com/distlabel/coretree/internal/tree"
	"github.com/distlabel/coretree/pkg/apperr"
)

// INF is returned for unreachable or out-of-range vertex pairs.
const INF = 1 << 30

// Engine answers distance queries over one built index.
type Engine struct {
	N      int32
	Deg    []int32 // per dense vertex, degree in the reduced graph
	NID    []int32 // per original vertex, remap encoding (see graphio.Resolve)
	Rank   []int32 // per dense vertex, -1 if core
	BP     *bp.Table
	Forest *tree.Forest
	Core   *corelabel.Labels
}

// Distance returns the exact shortest-path distance between two original
// vertex ids, or INF if they are unreachable or out of range.
func (e *Engine) Distance(u, v int32) (int, error) {
	if u == v {
		return 0, nil
	}

	repU, classU, err := e.resolve(u)
	if err != nil {
		return INF, err
	}
	repV, classV, err := e.resolve(v)
	if err != nil {
		return INF, err
	}

	if repU == repV {
		class := classU
		if class == graphio.Kept {
			class = classV
		}
		switch class {
		case graphio.Rule1:
			// closed-neighborhood twins are adjacent to their representative.
			return 1, nil
		case graphio.Rule2:
			// open-neighborhood twins share every neighbor but are not
			// adjacent to their representative, so the shortest path always
			// detours through a common neighbor; isolated twins (no neighbor
			// at all) are unreachable.
			if e.Deg[repU] == 0 {
				return INF, nil
			}
			return 2, nil
		default:
			return 0, nil
		}
	}

	return e.distanceDense(repU, repV), nil
}

// resolve maps an original vertex id to its dense representative id and
// equivalence class, returning OutOfRangeVertex if the original id or its
// resolved dense id falls outside the index.
func (e *Engine) resolve(orig int32) (int32, graphio.EquivClass, error) {
	if orig < 0 || int(orig) >= len(e.NID) {
		return 0, graphio.Kept, apperr.Wrapf(apperr.CodeOutOfRangeVertex, apperr.ErrOutOfRangeVertex, "vertex %d out of range", orig)
	}
	rep, class := graphio.Resolve(e.NID[orig])
	if rep < 0 || rep >= e.N {
		return 0, graphio.Kept, apperr.Wrapf(apperr.CodeOutOfRangeVertex, apperr.ErrOutOfRangeVertex, "remapped vertex %d out of range", rep)
	}
	return rep, class, nil
}

// distanceDense computes the shortest distance between two distinct dense
// vertex ids by combining every label layer that can speak to them.
func (e *Engine) distanceDense(u, v int32) int {
	d := bp.Query(e.BP, u, v)

	if coreD := e.queryCoreAndTreeHubs(u, v); coreD < d {
		d = coreD
	}

	if e.Rank[u] >= 0 && e.Rank[v] >= 0 {
		nu, nv := e.Forest.Nodes[u], e.Forest.Nodes[v]
		if nu != nil && nv != nil && tree.SameTree(nu, nv) {
			if td := tree.Distance(nu, nv); td < d {
				d = td
			}
		}
	}

	if d >= MaxDistanceBound {
		return INF
	}
	return d
}

// MaxDistanceBound is the largest distance the label set can certify;
// anything at or beyond it is treated as unreachable.
const MaxDistanceBound = corelabel.MaxD

// queryCoreAndTreeHubs expands both endpoints to their core-hub set (a core
// vertex is its own hub at offset 0; a tree vertex expands to its RSize
// anchor hubs, each offset by its own distance to that anchor) and returns
// the minimum sum of a shared hub's two offsets plus its 2-hop core label
// distance.
func (e *Engine) queryCoreAndTreeHubs(u, v int32) int {
	hubsU := e.hubsOf(u)
	if len(hubsU) == 0 {
		return MaxDistanceBound
	}
	hubsV := e.hubsOf(v)
	if len(hubsV) == 0 {
		return MaxDistanceBound
	}

	best := MaxDistanceBound
	for hu, ou := range hubsU {
		for hv, ov := range hubsV {
			var core int
			if hu == hv {
				core = 0
			} else {
				core = corelabel.Query(e.Core, hu, hv)
			}
			if total := int(ou) + int(ov) + core; total < best {
				best = total
			}
		}
	}
	return best
}

// hubsOf returns the set of core-vertex hubs reachable from x along with
// the offset distance to each: a core vertex is its own hub at offset 0; a
// peeled vertex offers one hub per core anchor of its tree, offset by its
// own tree label distance to that anchor.
func (e *Engine) hubsOf(x int32) map[int32]int8 {
	if e.Rank[x] == -1 {
		return map[int32]int8{x: 0}
	}
	node := e.Forest.Nodes[x]
	if node == nil {
		return nil
	}
	hubs := make(map[int32]int8, node.RSize)
	anchors := e.anchorsOf(node)
	for i, a := range anchors {
		if i < len(node.Dis) {
			hubs[a] = node.Dis[i]
		}
	}
	return hubs
}

// anchorsOf recovers a node's root's anchor ids. The anchors live only on
// the root node (Nbr there holds exactly the core neighbors it attaches to,
// since a root by construction has zero tree-neighbor candidates), so a
// non-root node looks its root up by id.
func (e *Engine) anchorsOf(node *tree.Node) []int32 {
	root := e.Forest.Nodes[node.RID]
	if root == nil {
		return nil
	}
	if int32(len(root.Nbr)) >= node.RSize {
		return root.Nbr[:node.RSize]
	}
	return root.Nbr
}
