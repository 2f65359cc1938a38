package tree

import (
	"bufio"
	"encoding/binary"
	"os"

	"github.com/distlabel/coretree/pkg/apperr"
)

// WriteLabels serializes a Forest to the label-tree-W.bin layout:
// int32 n; int32 rank[n]; then per v with rank[v]>=0:
// int32 rid; int32 rsize; int32 h; int32 w; int32[w] nbr; int32[h-rsize] anc; int8[h] dis.
//
// The on-disk field named "w" is the count of peel-time neighbor ids
// recorded in Nbr, distinct from the build-width parameter of the same
// name used elsewhere in the pipeline.
func WriteLabels(path string, n int32, rank []int32, f *Forest) (err error) {
	file, createErr := os.Create(path)
	if createErr != nil {
		return apperr.Wrap(apperr.CodeFatal, "tree: cannot create label artifact", createErr)
	}
	defer func() {
		if cerr := file.Close(); cerr != nil && err == nil {
			err = apperr.Wrap(apperr.CodeFatal, "tree: failed to close label artifact", cerr)
		}
	}()

	w := bufio.NewWriter(file)
	if err = binary.Write(w, binary.LittleEndian, n); err != nil {
		return apperr.Wrap(apperr.CodeFatal, "tree: failed writing n", err)
	}
	if err = binary.Write(w, binary.LittleEndian, rank); err != nil {
		return apperr.Wrap(apperr.CodeFatal, "tree: failed writing rank", err)
	}

	for v := int32(0); v < n; v++ {
		if rank[v] < 0 {
			continue
		}
		node := f.Nodes[v]
		fields := []interface{}{node.RID, node.RSize, node.H, int32(len(node.Nbr))}
		for _, field := range fields {
			if err = binary.Write(w, binary.LittleEndian, field); err != nil {
				return apperr.Wrap(apperr.CodeFatal, "tree: failed writing node header", err)
			}
		}
		if err = binary.Write(w, binary.LittleEndian, node.Nbr); err != nil {
			return apperr.Wrap(apperr.CodeFatal, "tree: failed writing nbr", err)
		}
		if err = binary.Write(w, binary.LittleEndian, node.Anc); err != nil {
			return apperr.Wrap(apperr.CodeFatal, "tree: failed writing anc", err)
		}
		if err = binary.Write(w, binary.LittleEndian, node.Dis); err != nil {
			return apperr.Wrap(apperr.CodeFatal, "tree: failed writing dis", err)
		}
	}

	return w.Flush()
}

// ReadLabels loads a label-tree-W.bin artifact into rank assignments plus a
// Forest of the tree nodes.
func ReadLabels(path string) (n int32, rank []int32, f *Forest, err error) {
	file, openErr := os.Open(path)
	if openErr != nil {
		return 0, nil, nil, apperr.Wrap(apperr.CodeUnreadableArtifact, "tree: cannot open label artifact", openErr)
	}
	defer file.Close()

	r := bufio.NewReader(file)
	if err = binary.Read(r, binary.LittleEndian, &n); err != nil {
		return 0, nil, nil, apperr.Wrap(apperr.CodeUnreadableArtifact, "tree: failed reading n", err)
	}
	rank = make([]int32, n)
	if err = binary.Read(r, binary.LittleEndian, rank); err != nil {
		return 0, nil, nil, apperr.Wrap(apperr.CodeUnreadableArtifact, "tree: failed reading rank", err)
	}

	f = &Forest{Nodes: make(map[int32]*Node)}
	for v := int32(0); v < n; v++ {
		if rank[v] < 0 {
			continue
		}
		var rid, rsize, h, w int32
		if err = binary.Read(r, binary.LittleEndian, &rid); err != nil {
			return 0, nil, nil, apperr.Wrap(apperr.CodeUnreadableArtifact, "tree: failed reading rid", err)
		}
		if err = binary.Read(r, binary.LittleEndian, &rsize); err != nil {
			return 0, nil, nil, apperr.Wrap(apperr.CodeUnreadableArtifact, "tree: failed reading rsize", err)
		}
		if err = binary.Read(r, binary.LittleEndian, &h); err != nil {
			return 0, nil, nil, apperr.Wrap(apperr.CodeUnreadableArtifact, "tree: failed reading h", err)
		}
		if err = binary.Read(r, binary.LittleEndian, &w); err != nil {
			return 0, nil, nil, apperr.Wrap(apperr.CodeUnreadableArtifact, "tree: failed reading w", err)
		}

		nbr := make([]int32, w)
		if err = binary.Read(r, binary.LittleEndian, nbr); err != nil {
			return 0, nil, nil, apperr.Wrap(apperr.CodeUnreadableArtifact, "tree: failed reading nbr", err)
		}
		anc := make([]int32, h-rsize)
		if err = binary.Read(r, binary.LittleEndian, anc); err != nil {
			return 0, nil, nil, apperr.Wrap(apperr.CodeUnreadableArtifact, "tree: failed reading anc", err)
		}

		dis := make([]int8, h)
		if err = binary.Read(r, binary.LittleEndian, dis); err != nil {
			return 0, nil, nil, apperr.Wrap(apperr.CodeUnreadableArtifact, "tree: failed reading dis", err)
		}

		f.Nodes[v] = &Node{RID: rid, RSize: rsize, H: h, Nbr: nbr, Anc: anc, Dis: dis}
	}

	return n, rank, f, nil
}
