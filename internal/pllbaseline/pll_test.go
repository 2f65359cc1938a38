package pllbaseline

import (
	"path/filepath"
	"testing"

	"github.com/distlabel/coretree/internal/graphio"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func pathGraph5() *graphio.Graph {
	return graphio.NewGraph([][]int32{
		{1}, {0, 2}, {1, 3}, {2, 4}, {3},
	})
}

func TestBuild_PathGraphExactDistances(t *testing.T) {
	g := pathGraph5()
	labels := Build(g)

	for u := int32(0); u < 5; u++ {
		for v := int32(0); v < 5; v++ {
			want := int(u - v)
			if want < 0 {
				want = -want
			}
			assert.Equal(t, want, Query(labels, u, v), "dist(%d,%d)", u, v)
		}
	}
}

func TestBuild_DisconnectedPairIsUnreachable(t *testing.T) {
	g := graphio.NewGraph([][]int32{{1}, {0}, {3}, {2}})
	labels := Build(g)
	assert.Equal(t, MaxD, Query(labels, 0, 2))
}

func TestWriteReadIndex_RoundTrip(t *testing.T) {
	g := pathGraph5()
	labels := Build(g)

	path := filepath.Join(t.TempDir(), "index-pll.bin")
	require.NoError(t, Write(path, labels))

	loaded, err := Read(path)
	require.NoError(t, err)
	for v := range labels.ByVertex {
		assert.ElementsMatch(t, labels.ByVertex[v], loaded.ByVertex[v])
	}
	for u := int32(0); u < 5; u++ {
		for v := int32(0); v < 5; v++ {
			assert.Equal(t, Query(labels, u, v), Query(loaded, u, v))
		}
	}
}
