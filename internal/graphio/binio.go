package graphio

import (
	"bufio"
	"encoding/binary"
	"io"
	"os"

	"github.com/distlabel/coretree/pkg/apperr"
)

// WriteGraphBin serializes g and the original-vertex remap table nid to the
// graph-dis.bin layout: int32 n; int64 m; int32 deg[n]; int32 adj[m]; int32 nid[len(nid)].
func WriteGraphBin(path string, g *Graph, nid []int32) (err error) {
	f, createErr := os.Create(path)
	if createErr != nil {
		return apperr.Wrap(apperr.CodeFatal, "graphio: cannot create graph artifact", createErr)
	}
	defer func() {
		if cerr := f.Close(); cerr != nil && err == nil {
			err = apperr.Wrap(apperr.CodeFatal, "graphio: failed to close graph artifact", cerr)
		}
	}()

	w := bufio.NewWriter(f)
	if err = binary.Write(w, binary.LittleEndian, g.N); err != nil {
		return apperr.Wrap(apperr.CodeFatal, "graphio: failed writing n", err)
	}
	m := int64(len(g.Adj))
	if err = binary.Write(w, binary.LittleEndian, m); err != nil {
		return apperr.Wrap(apperr.CodeFatal, "graphio: failed writing m", err)
	}
	if err = binary.Write(w, binary.LittleEndian, g.Deg); err != nil {
		return apperr.Wrap(apperr.CodeFatal, "graphio: failed writing deg", err)
	}
	if err = binary.Write(w, binary.LittleEndian, g.Adj); err != nil {
		return apperr.Wrap(apperr.CodeFatal, "graphio: failed writing adj", err)
	}
	if err = binary.Write(w, binary.LittleEndian, nid); err != nil {
		return apperr.Wrap(apperr.CodeFatal, "graphio: failed writing nid", err)
	}
	if err = w.Flush(); err != nil {
		return apperr.Wrap(apperr.CodeFatal, "graphio: failed flushing graph artifact", err)
	}
	return nil
}

// ReadGraphBin loads a graph-dis.bin artifact, returning the Graph and the
// original-vertex remap table. nOriginal is the number of entries in the
// trailing nid table (it may exceed g.N since folded vertices don't get a
// dense id of their own).
func ReadGraphBin(path string, nOriginal int32) (*Graph, []int32, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, nil, apperr.Wrap(apperr.CodeUnreadableArtifact, "graphio: cannot open graph artifact", err)
	}
	defer f.Close()

	r := bufio.NewReader(f)
	var n int32
	var m int64
	if err := binary.Read(r, binary.LittleEndian, &n); err != nil {
		return nil, nil, apperr.Wrap(apperr.CodeUnreadableArtifact, "graphio: failed reading n", err)
	}
	if err := binary.Read(r, binary.LittleEndian, &m); err != nil {
		return nil, nil, apperr.Wrap(apperr.CodeUnreadableArtifact, "graphio: failed reading m", err)
	}

	deg := make([]int32, n)
	if err := binary.Read(r, binary.LittleEndian, deg); err != nil {
		return nil, nil, apperr.Wrap(apperr.CodeUnreadableArtifact, "graphio: failed reading deg", err)
	}
	adj := make([]int32, m)
	if err := binary.Read(r, binary.LittleEndian, adj); err != nil {
		return nil, nil, apperr.Wrap(apperr.CodeUnreadableArtifact, "graphio: failed reading adj", err)
	}
	nid := make([]int32, nOriginal)
	if err := binary.Read(r, binary.LittleEndian, nid); err != nil && err != io.EOF {
		return nil, nil, apperr.Wrap(apperr.CodeUnreadableArtifact, "graphio: failed reading nid", err)
	}

	g := &Graph{N: n, Deg: deg, Adj: adj}
	g.ensureOffsets()
	return g, nid, nil
}

// ReadGraphBinAuto loads a graph-dis.bin artifact the same way as
// ReadGraphBin, but recovers the trailing nid table's length from the file
// size instead of requiring the caller to already know the original vertex
// count. This is what callers without an external record of n_original
// (the CLI, a fresh rebuild) should use.
func ReadGraphBinAuto(path string) (*Graph, []int32, error) {
	info, err := os.Stat(path)
	if err != nil {
		return nil, nil, apperr.Wrap(apperr.CodeUnreadableArtifact, "graphio: cannot stat graph artifact", err)
	}

	f, err := os.Open(path)
	if err != nil {
		return nil, nil, apperr.Wrap(apperr.CodeUnreadableArtifact, "graphio: cannot open graph artifact", err)
	}
	defer f.Close()

	r := bufio.NewReader(f)
	var n int32
	var m int64
	if err := binary.Read(r, binary.LittleEndian, &n); err != nil {
		return nil, nil, apperr.Wrap(apperr.CodeUnreadableArtifact, "graphio: failed reading n", err)
	}
	if err := binary.Read(r, binary.LittleEndian, &m); err != nil {
		return nil, nil, apperr.Wrap(apperr.CodeUnreadableArtifact, "graphio: failed reading m", err)
	}

	deg := make([]int32, n)
	if err := binary.Read(r, binary.LittleEndian, deg); err != nil {
		return nil, nil, apperr.Wrap(apperr.CodeUnreadableArtifact, "graphio: failed reading deg", err)
	}
	adj := make([]int32, m)
	if err := binary.Read(r, binary.LittleEndian, adj); err != nil {
		return nil, nil, apperr.Wrap(apperr.CodeUnreadableArtifact, "graphio: failed reading adj", err)
	}

	headerBytes := int64(4+8) + int64(n)*4 + m*4
	nidBytes := info.Size() - headerBytes
	if nidBytes < 0 {
		nidBytes = 0
	}
	nid := make([]int32, nidBytes/4)
	if err := binary.Read(r, binary.LittleEndian, nid); err != nil && err != io.EOF {
		return nil, nil, apperr.Wrap(apperr.CodeUnreadableArtifact, "graphio: failed reading nid", err)
	}

	g := &Graph{N: n, Deg: deg, Adj: adj}
	g.ensureOffsets()
	return g, nid, nil
}
