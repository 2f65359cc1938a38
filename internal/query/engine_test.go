package query

import (
	"context"
	"testing"

	"github.com/distlabel/coretree/internal/bp"
	"github.com/distlabel/coretree/internal/corelabel"
	"github.com/distlabel/coretree/internal/graphio"
	"github.com/distlabel/coretree/internal/reduce"
	"github.com/distlabel/coretree/internal/tree"
	"github.com/stretchr/testify/require"
)

// buildEngine runs the full five-layer pipeline (minus ingestion, since the
// adjacency is handed in directly) over a small graph and returns a ready
// Engine, mirroring what internal/pipeline does for a real build.
func buildEngine(t *testing.T, adj [][]int32, width int) *Engine {
	t.Helper()
	g := graphio.NewGraph(adj)

	bpTable, err := bp.Build(context.Background(), g, 2)
	require.NoError(t, err)

	result := reduce.Run(g, width)
	forest := tree.Build(result)

	coreAdj := make(map[int32][]reduce.Edge)
	var coreVertices []int32
	for v := int32(0); v < g.N; v++ {
		if result.Rank[v] == -1 {
			coreAdj[v] = result.CoreEdges[v]
			coreVertices = append(coreVertices, v)
		}
	}
	labels := corelabel.Build(coreAdj, bpTable, coreVertices)

	nid := make([]int32, g.N)
	for i := range nid {
		nid[i] = int32(i)
	}

	return &Engine{
		N:      g.N,
		Deg:    g.Deg,
		NID:    nid,
		Rank:   result.Rank,
		BP:     bpTable,
		Forest: forest,
		Core:   labels,
	}
}

func bruteForceDistances(adj [][]int32) [][]int {
	n := len(adj)
	dist := make([][]int, n)
	for s := 0; s < n; s++ {
		dist[s] = make([]int, n)
		for i := range dist[s] {
			dist[s][i] = -1
		}
		dist[s][s] = 0
		queue := []int32{int32(s)}
		for len(queue) > 0 {
			u := queue[0]
			queue = queue[1:]
			for _, w := range adj[u] {
				if dist[s][w] == -1 {
					dist[s][w] = dist[s][u] + 1
					queue = append(queue, w)
				}
			}
		}
	}
	return dist
}

func assertAllPairsMatch(t *testing.T, adj [][]int32, width int) {
	t.Helper()
	e := buildEngine(t, adj, width)
	want := bruteForceDistances(adj)

	for u := int32(0); u < e.N; u++ {
		for v := int32(0); v < e.N; v++ {
			got, err := e.Distance(u, v)
			require.NoError(t, err)
			w := want[u][v]
			if w == -1 {
				require.Equal(t, INF, got, "dist(%d,%d) should be unreachable", u, v)
			} else {
				require.Equal(t, w, got, "dist(%d,%d)", u, v)
			}
		}
	}
}

// a: P5 path 0-1-2-3-4.
func TestEndToEnd_P5Path(t *testing.T) {
	adj := [][]int32{{1}, {0, 2}, {1, 3}, {2, 4}, {3}}
	assertAllPairsMatch(t, adj, 10)
	assertAllPairsMatch(t, adj, 1)
}

// b: K4 clique.
func TestEndToEnd_K4Clique(t *testing.T) {
	adj := [][]int32{{1, 2, 3}, {0, 2, 3}, {0, 1, 3}, {0, 1, 2}}
	assertAllPairsMatch(t, adj, 1)
	assertAllPairsMatch(t, adj, 10)
}

// c: two disconnected components.
func TestEndToEnd_TwoComponents(t *testing.T) {
	adj := [][]int32{{1}, {0}, {3}, {2}}
	assertAllPairsMatch(t, adj, 10)
}

// d: S5 star, center 0 with leaves 1..4.
func TestEndToEnd_S5Star(t *testing.T) {
	adj := [][]int32{{1, 2, 3, 4}, {0}, {0}, {0}, {0}}
	assertAllPairsMatch(t, adj, 10)
	assertAllPairsMatch(t, adj, 1)
}

// e: C6 cycle.
func TestEndToEnd_C6Cycle(t *testing.T) {
	adj := [][]int32{{1, 5}, {0, 2}, {1, 3}, {2, 4}, {3, 5}, {4, 0}}
	assertAllPairsMatch(t, adj, 10)
	assertAllPairsMatch(t, adj, 1)
}

// f: twin-vertex rule-2 equivalence -- 0 and 1 share neighbors {2,3} and are
// not adjacent to each other.
func TestEndToEnd_TwinVertexGraph(t *testing.T) {
	adj := [][]int32{{2, 3}, {2, 3}, {0, 1}, {0, 1}}
	nid, reduced := graphio.EquivalenceClasses(adj)

	g := graphio.NewGraph(reduced)
	ctx := context.Background()
	bpTable, err := bp.Build(ctx, g, 2)
	require.NoError(t, err)
	result := reduce.Run(g, 10)
	forest := tree.Build(result)

	coreAdj := make(map[int32][]reduce.Edge)
	var coreVertices []int32
	for v := int32(0); v < g.N; v++ {
		if result.Rank[v] == -1 {
			coreAdj[v] = result.CoreEdges[v]
			coreVertices = append(coreVertices, v)
		}
	}
	labels := corelabel.Build(coreAdj, bpTable, coreVertices)

	e := &Engine{N: g.N, Deg: g.Deg, NID: nid, Rank: result.Rank, BP: bpTable, Forest: forest, Core: labels}

	want := bruteForceDistances(adj)
	for u := int32(0); u < 4; u++ {
		for v := int32(0); v < 4; v++ {
			got, err := e.Distance(u, v)
			require.NoError(t, err)
			require.Equal(t, want[u][v], got, "dist(%d,%d)", u, v)
		}
	}
}
