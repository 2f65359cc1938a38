package corelabel

import (
	"context"
	"path/filepath"
	"testing"

	"github.com/distlabel/coretree/internal/bp"
	"github.com/distlabel/coretree/internal/graphio"
	"github.com/distlabel/coretree/internal/reduce"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func k4Graph() *graphio.Graph {
	return graphio.NewGraph([][]int32{
		{1, 2, 3}, {0, 2, 3}, {0, 1, 3}, {0, 1, 2},
	})
}

func coreAdjFrom(result *reduce.Result) map[int32][]reduce.Edge {
	adj := make(map[int32][]reduce.Edge)
	for v, edges := range result.CoreEdges {
		if result.Rank[v] == -1 {
			adj[int32(v)] = edges
		}
	}
	return adj
}

func TestBuild_K4AllPairsDistanceOne(t *testing.T) {
	g := k4Graph()
	result := reduce.Run(g, 1) // width 1: everything stays core
	require.Equal(t, 4, result.NumCore)

	bpTable, err := bp.Build(context.Background(), g, 2)
	require.NoError(t, err)

	var coreVertices []int32
	for v := int32(0); v < g.N; v++ {
		coreVertices = append(coreVertices, v)
	}
	labels := Build(coreAdjFrom(result), bpTable, coreVertices)

	for u := int32(0); u < 4; u++ {
		for v := int32(0); v < 4; v++ {
			if u == v {
				continue
			}
			got := Query(labels, u, v)
			bpGot := bp.Query(bpTable, u, v)
			best := got
			if bpGot < best {
				best = bpGot
			}
			assert.Equal(t, 1, best, "dist(%d,%d)", u, v)
		}
	}
}

// noopBPTable returns a bit-parallel table that never claims a vertex and
// never prunes a candidate label entry (every root distance is bp.MaxD, so
// bp.Query and bp.Prune both stay silent for every pair). It isolates
// corelabel.Query as the sole oracle, the way a core subgraph larger than
// the bit-parallel sketch's root-seed reach would leave some adjacent core
// vertices uncovered by bp in a real build.
func noopBPTable(n int32) *bp.Table {
	labels := make([]bp.Label, n)
	for i := range labels {
		for r := 0; r < bp.R; r++ {
			labels[i].D[r] = bp.MaxD
		}
	}
	return &bp.Table{Labels: labels, Claimed: make([]bool, n)}
}

func TestQuery_SelfHubResolvesAdjacentLandmarksWithoutBP(t *testing.T) {
	// A 5-cycle core: every vertex becomes its own landmark (bp claims
	// none), so two adjacent vertices' shortest path has one endpoint as
	// its own canonical hub. Without seeding (lid, 0) into a landmark's own
	// label, neither endpoint's label shares a common landmark with a
	// lower-ranked neighbor that already pruned against it, and
	// corelabel.Query alone returns MaxD instead of 1.
	g := graphio.NewGraph([][]int32{
		{1, 4}, {0, 2}, {1, 3}, {2, 4}, {3, 0},
	})
	result := reduce.Run(g, 1) // width 1: the whole cycle stays core
	require.Equal(t, 5, result.NumCore)

	bpTable := noopBPTable(g.N)

	var coreVertices []int32
	for v := int32(0); v < g.N; v++ {
		coreVertices = append(coreVertices, v)
	}
	labels := Build(coreAdjFrom(result), bpTable, coreVertices)

	type pair struct{ u, v int32 }
	adjacent := []pair{{0, 1}, {1, 2}, {2, 3}, {3, 4}, {4, 0}}
	for _, p := range adjacent {
		assert.Equal(t, 1, Query(labels, p.u, p.v), "dist(%d,%d) via corelabel alone", p.u, p.v)
		assert.Equal(t, 1, Query(labels, p.v, p.u), "dist(%d,%d) via corelabel alone", p.v, p.u)
	}
}

func TestWriteReadCoreLabels_RoundTrip(t *testing.T) {
	g := k4Graph()
	result := reduce.Run(g, 1)
	bpTable, err := bp.Build(context.Background(), g, 2)
	require.NoError(t, err)

	var coreVertices []int32
	for v := int32(0); v < g.N; v++ {
		coreVertices = append(coreVertices, v)
	}
	labels := Build(coreAdjFrom(result), bpTable, coreVertices)

	path := filepath.Join(t.TempDir(), "label-core-1.bin")
	require.NoError(t, Write(path, g.N, labels))

	n, loaded, err := Read(path)
	require.NoError(t, err)
	assert.Equal(t, g.N, n)
	assert.Equal(t, labels.MaxMov, loaded.MaxMov)
	for v, entries := range labels.ByVertex {
		assert.ElementsMatch(t, entries, loaded.ByVertex[v])
	}
}
