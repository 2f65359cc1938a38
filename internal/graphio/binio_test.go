package graphio

import (
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestWriteReadGraphBin_RoundTrip(t *testing.T) {
	adj := [][]int32{{1}, {0, 2}, {1, 3}, {2, 4}, {3}}
	g := NewGraph(adj)
	nid := []int32{0, 1, 2, 3, 4}

	path := filepath.Join(t.TempDir(), "graph-dis.bin")
	require.NoError(t, WriteGraphBin(path, g, nid))

	loaded, loadedNID, err := ReadGraphBin(path, 5)
	require.NoError(t, err)
	assert.Equal(t, g.N, loaded.N)
	assert.Equal(t, g.Deg, loaded.Deg)
	assert.Equal(t, g.Adj, loaded.Adj)
	assert.Equal(t, nid, loadedNID)
	assert.Equal(t, []int32{1}, loaded.Neighbors(0))
	assert.Equal(t, []int32{2, 4}, loaded.Neighbors(3))
}

func TestReadGraphBin_MissingFile(t *testing.T) {
	_, _, err := ReadGraphBin(filepath.Join(t.TempDir(), "nope.bin"), 5)
	assert.Error(t, err)
}
