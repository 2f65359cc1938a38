package reduce

import (
	"testing"

	"github.com/distlabel/coretree/internal/graphio"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRun_WideWidthPeelsEverything(t *testing.T) {
	// P5 path: max degree 2, so a generous width peels every vertex and
	// leaves an empty core.
	g := graphio.NewGraph([][]int32{{1}, {0, 2}, {1, 3}, {2, 4}, {3}})
	result := Run(g, 10)

	for v := int32(0); v < g.N; v++ {
		assert.GreaterOrEqual(t, result.Rank[v], int32(0), "vertex %d should be peeled", v)
	}
	assert.Equal(t, 0, result.NumCore)
}

func TestRun_NarrowWidthLeavesCore(t *testing.T) {
	// K4: every vertex has degree 3. With width 1 nothing can be peeled
	// without immediately exceeding the budget, so everything stays core.
	g := graphio.NewGraph([][]int32{
		{1, 2, 3}, {0, 2, 3}, {0, 1, 3}, {0, 1, 2},
	})
	result := Run(g, 1)
	require.Equal(t, 4, result.NumCore)
	for v := int32(0); v < g.N; v++ {
		assert.Equal(t, int32(-1), result.Rank[v])
	}
}

func TestRun_StarLeafsPeelFirst(t *testing.T) {
	// S5 star: center 0 connected to leaves 1..4. Leaves have degree 1 and
	// peel before the center while it still has other neighbors. Once only
	// leaf 4 is left, it and the center tie at degree 1 and the smaller id
	// (the center) peels first.
	g := graphio.NewGraph([][]int32{
		{1, 2, 3, 4}, {0}, {0}, {0}, {0},
	})
	result := Run(g, 10)
	for leaf := int32(1); leaf <= 3; leaf++ {
		assert.Less(t, result.Rank[leaf], result.Rank[0])
	}
	assert.Greater(t, result.Rank[4], result.Rank[0])
}

func TestRun_CoreEdgesNoSelfLoops(t *testing.T) {
	g := graphio.NewGraph([][]int32{
		{1, 2, 3}, {0, 2, 3}, {0, 1, 3}, {0, 1, 2},
	})
	result := Run(g, 1)
	for v, edges := range result.CoreEdges {
		for _, e := range edges {
			assert.NotEqual(t, int32(v), e.To)
		}
	}
}
