package tree

import (
	"path/filepath"
	"testing"

	"github.com/distlabel/coretree/internal/graphio"
	"github.com/distlabel/coretree/internal/reduce"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func starGraph() *graphio.Graph {
	// center 0, leaves 1..4
	return graphio.NewGraph([][]int32{{1, 2, 3, 4}, {0}, {0}, {0}, {0}})
}

func TestBuild_StarLeavesAttachToCenter(t *testing.T) {
	g := starGraph()
	result := reduce.Run(g, 10) // wide width, everything peels

	forest := Build(result)
	require.Len(t, forest.Nodes, 5)

	// The last-peeled vertex (highest rank) is the root of every leaf's tree.
	// In this star that is leaf 4: it ties the center at degree 1 and peels
	// after it, so the loop below skips whichever vertex it is.
	var center int32 = 0
	for v, rk := range result.Rank {
		if rk == int32(len(result.Rank)-1) {
			center = int32(v)
		}
	}
	for leaf := int32(1); leaf <= 4; leaf++ {
		if leaf == center {
			continue
		}
		assert.Equal(t, forest.Nodes[leaf].RID, forest.Nodes[center].RID)
	}
}

func TestBuild_LeafDistanceToCenterIsOne(t *testing.T) {
	g := starGraph()
	result := reduce.Run(g, 10)
	forest := Build(result)

	// leaves 1..3 peel while the center still has other neighbors, so each
	// hangs directly below the center and has a Dis entry of 1 at the
	// center's stack position. (Leaf 4 peels after the center and is the
	// tree's root instead.)
	center := forest.Nodes[0]
	centerPos := center.H - 1
	for leaf := int32(1); leaf <= 3; leaf++ {
		assert.Equal(t, int8(1), forest.Nodes[leaf].Dis[centerPos], "leaf %d", leaf)
	}
}

func TestWriteReadLabels_RoundTrip(t *testing.T) {
	g := starGraph()
	result := reduce.Run(g, 10)
	forest := Build(result)

	path := filepath.Join(t.TempDir(), "label-tree-10.bin")
	require.NoError(t, WriteLabels(path, g.N, result.Rank, forest))

	n, rank, loaded, err := ReadLabels(path)
	require.NoError(t, err)
	assert.Equal(t, g.N, n)
	assert.Equal(t, result.Rank, rank)
	for v, node := range forest.Nodes {
		loadedNode := loaded.Nodes[v]
		require.NotNil(t, loadedNode)
		assert.Equal(t, node.RID, loadedNode.RID)
		assert.Equal(t, node.RSize, loadedNode.RSize)
		assert.Equal(t, node.H, loadedNode.H)
		assert.Equal(t, node.Dis, loadedNode.Dis)
	}
}

func TestComputeDis_RelaxesShallowerEdgeThroughDeeperAncestor(t *testing.T) {
	// A 3-level ancestor chain (grandparent -> parent -> child) where child
	// also has a direct weight-1 contracted edge straight to grandparent, and
	// the weight-3 chosen-parent edge is fatter than the two-hop path through
	// grandparent. Exercises the k <= i, i >= RSize relaxation: without it,
	// dis[parent] stays at the direct 3-weight edge instead of the true
	// 2-weight path via grandparent.
	f := &Forest{Nodes: map[int32]*Node{}}

	grandparent := &Node{RID: 100, RSize: 0, H: 1, Anc: []int32{100}, Dis: []int8{0}}
	f.Nodes[100] = grandparent

	parent := &Node{RID: 100, RSize: 0, H: 2, Anc: []int32{100, 101}}
	parent.Dis = computeDis(f, parent, nil, map[int32]int32{100: 1})
	f.Nodes[101] = parent
	require.Equal(t, []int8{1, 0}, parent.Dis)

	child := &Node{RID: 100, RSize: 0, H: 3, Anc: []int32{100, 101, 102}}
	child.Dis = computeDis(f, child, nil, map[int32]int32{100: 1, 101: 3})
	f.Nodes[102] = child

	assert.Equal(t, int8(1), child.Dis[0], "child to grandparent: direct edge already shortest")
	assert.Equal(t, int8(2), child.Dis[1], "child to parent: via grandparent (1+1) beats the direct weight-3 edge")
}

func TestSameTree_DifferentRoots(t *testing.T) {
	a := &Node{RID: 1}
	b := &Node{RID: 2}
	assert.False(t, SameTree(a, b))
}
