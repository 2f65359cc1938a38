package reduce

import (
	"bufio"
	"encoding/binary"
	"os"

	"github.com/distlabel/coretree/internal/bp"
	"github.com/distlabel/coretree/pkg/apperr"
)

// WriteTmp serializes the peeling result and the bit-parallel table for the
// core subset to the tmp-W.bin layout: int32 n; int64 m_core; int32
// rank[n]; bool usd_bp[n]; int32 coredeg[n] (0 for non-core); then
// (int32,int32)[m_core] core adjacency; then BPLabel[n_bc].
//
// This is an intermediate hand-off artifact between the reduce and
// core-label build stages, letting a rebuild resume core labeling without
// re-running the peeling pass.
func WriteTmp(path string, result *Result, bpTable *bp.Table, coreLandmarkLabels []bp.Label) (err error) {
	f, createErr := os.Create(path)
	if createErr != nil {
		return apperr.Wrap(apperr.CodeFatal, "reduce: cannot create tmp artifact", createErr)
	}
	defer func() {
		if cerr := f.Close(); cerr != nil && err == nil {
			err = apperr.Wrap(apperr.CodeFatal, "reduce: failed to close tmp artifact", cerr)
		}
	}()

	n := int32(len(result.Rank))
	coredeg := make([]int32, n)
	var pairs [][2]int32
	for v := int32(0); v < n; v++ {
		if result.Rank[v] != -1 {
			continue
		}
		coredeg[v] = int32(len(result.CoreEdges[v]))
		for _, e := range result.CoreEdges[v] {
			pairs = append(pairs, [2]int32{v, e.To})
		}
	}

	w := bufio.NewWriter(f)
	if err = binary.Write(w, binary.LittleEndian, n); err != nil {
		return apperr.Wrap(apperr.CodeFatal, "reduce: failed writing n", err)
	}
	mCore := int64(len(pairs))
	if err = binary.Write(w, binary.LittleEndian, mCore); err != nil {
		return apperr.Wrap(apperr.CodeFatal, "reduce: failed writing m_core", err)
	}
	if err = binary.Write(w, binary.LittleEndian, result.Rank); err != nil {
		return apperr.Wrap(apperr.CodeFatal, "reduce: failed writing rank", err)
	}
	if err = binary.Write(w, binary.LittleEndian, bpTable.Claimed); err != nil {
		return apperr.Wrap(apperr.CodeFatal, "reduce: failed writing usd_bp", err)
	}
	if err = binary.Write(w, binary.LittleEndian, coredeg); err != nil {
		return apperr.Wrap(apperr.CodeFatal, "reduce: failed writing coredeg", err)
	}
	for _, p := range pairs {
		if err = binary.Write(w, binary.LittleEndian, p); err != nil {
			return apperr.Wrap(apperr.CodeFatal, "reduce: failed writing core adjacency", err)
		}
	}
	for _, lbl := range coreLandmarkLabels {
		if err = binary.Write(w, binary.LittleEndian, lbl.D); err != nil {
			return apperr.Wrap(apperr.CodeFatal, "reduce: failed writing bp distances", err)
		}
		if err = binary.Write(w, binary.LittleEndian, lbl.S); err != nil {
			return apperr.Wrap(apperr.CodeFatal, "reduce: failed writing bp masks", err)
		}
	}

	return w.Flush()
}

// ReadTmp loads a tmp-W.bin artifact, reconstructing rank assignments, the
// claimed bitmap, the core adjacency as an edge list, and the embedded
// bit-parallel labels for each core vertex (in ascending vertex-id order,
// mirroring the order WriteTmp wrote them in).
func ReadTmp(path string) (n int32, rank []int32, claimed []bool, coreEdges []Edge, coreOf []int32, coreLabels map[int32]bp.Label, err error) {
	f, openErr := os.Open(path)
	if openErr != nil {
		return 0, nil, nil, nil, nil, nil, apperr.Wrap(apperr.CodeUnreadableArtifact, "reduce: cannot open tmp artifact", openErr)
	}
	defer f.Close()

	r := bufio.NewReader(f)
	var mCore int64
	if err = binary.Read(r, binary.LittleEndian, &n); err != nil {
		return 0, nil, nil, nil, nil, nil, apperr.Wrap(apperr.CodeUnreadableArtifact, "reduce: failed reading n", err)
	}
	if err = binary.Read(r, binary.LittleEndian, &mCore); err != nil {
		return 0, nil, nil, nil, nil, nil, apperr.Wrap(apperr.CodeUnreadableArtifact, "reduce: failed reading m_core", err)
	}
	rank = make([]int32, n)
	if err = binary.Read(r, binary.LittleEndian, rank); err != nil {
		return 0, nil, nil, nil, nil, nil, apperr.Wrap(apperr.CodeUnreadableArtifact, "reduce: failed reading rank", err)
	}
	claimed = make([]bool, n)
	if err = binary.Read(r, binary.LittleEndian, claimed); err != nil {
		return 0, nil, nil, nil, nil, nil, apperr.Wrap(apperr.CodeUnreadableArtifact, "reduce: failed reading usd_bp", err)
	}
	coredeg := make([]int32, n)
	if err = binary.Read(r, binary.LittleEndian, coredeg); err != nil {
		return 0, nil, nil, nil, nil, nil, apperr.Wrap(apperr.CodeUnreadableArtifact, "reduce: failed reading coredeg", err)
	}

	coreOf = make([]int32, mCore)
	coreEdges = make([]Edge, mCore)
	for i := int64(0); i < mCore; i++ {
		var pair [2]int32
		if err = binary.Read(r, binary.LittleEndian, &pair); err != nil {
			return 0, nil, nil, nil, nil, nil, apperr.Wrap(apperr.CodeUnreadableArtifact, "reduce: failed reading core adjacency", err)
		}
		coreOf[i] = pair[0]
		coreEdges[i] = Edge{To: pair[1], Weight: 1}
	}

	coreLabels = make(map[int32]bp.Label)
	for v := int32(0); v < n; v++ {
		if rank[v] != -1 {
			continue
		}
		var lbl bp.Label
		if err = binary.Read(r, binary.LittleEndian, &lbl.D); err != nil {
			return 0, nil, nil, nil, nil, nil, apperr.Wrap(apperr.CodeUnreadableArtifact, "reduce: failed reading bp distances", err)
		}
		if err = binary.Read(r, binary.LittleEndian, &lbl.S); err != nil {
			return 0, nil, nil, nil, nil, nil, apperr.Wrap(apperr.CodeUnreadableArtifact, "reduce: failed reading bp masks", err)
		}
		coreLabels[v] = lbl
	}

	return n, rank, claimed, coreEdges, coreOf, coreLabels, nil
}
