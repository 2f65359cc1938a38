package corelabel

import (
	"bufio"
	"encoding/binary"
	"os"

	"github.com/distlabel/coretree/pkg/apperr"
)

// pack folds a landmark id and distance into a single uint32: the distance
// occupies the low maxMov bits, the landmark id the bits above.
func pack(landmark, dist int32, maxMov uint32) uint32 {
	return (uint32(landmark) << maxMov) | uint32(dist)
}

func unpack(v uint32, maxMov uint32) (landmark, dist int32) {
	mask := uint32(1)<<maxMov - 1
	return int32(v >> maxMov), int32(v & mask)
}

// Write serializes Labels to the label-core-W.bin layout: int32 n; int32
// len[n]; then packed uint32[len[v]] per v (in ascending vertex id order);
// then uint32 MAXMOV.
func Write(path string, n int32, labels *Labels) (err error) {
	f, createErr := os.Create(path)
	if createErr != nil {
		return apperr.Wrap(apperr.CodeFatal, "corelabel: cannot create label artifact", createErr)
	}
	defer func() {
		if cerr := f.Close(); cerr != nil && err == nil {
			err = apperr.Wrap(apperr.CodeFatal, "corelabel: failed to close label artifact", cerr)
		}
	}()

	w := bufio.NewWriter(f)
	if err = binary.Write(w, binary.LittleEndian, n); err != nil {
		return apperr.Wrap(apperr.CodeFatal, "corelabel: failed writing n", err)
	}

	lens := make([]int32, n)
	for v, entries := range labels.ByVertex {
		lens[v] = int32(len(entries))
	}
	if err = binary.Write(w, binary.LittleEndian, lens); err != nil {
		return apperr.Wrap(apperr.CodeFatal, "corelabel: failed writing lens", err)
	}

	for v := int32(0); v < n; v++ {
		entries := labels.ByVertex[v]
		packed := make([]uint32, len(entries))
		for i, e := range entries {
			packed[i] = pack(e.Landmark, e.Dist, labels.MaxMov)
		}
		if len(packed) == 0 {
			continue
		}
		if err = binary.Write(w, binary.LittleEndian, packed); err != nil {
			return apperr.Wrap(apperr.CodeFatal, "corelabel: failed writing packed entries", err)
		}
	}

	if err = binary.Write(w, binary.LittleEndian, labels.MaxMov); err != nil {
		return apperr.Wrap(apperr.CodeFatal, "corelabel: failed writing maxmov", err)
	}

	return w.Flush()
}

// Read loads a label-core-W.bin artifact.
func Read(path string) (n int32, labels *Labels, err error) {
	f, openErr := os.Open(path)
	if openErr != nil {
		return 0, nil, apperr.Wrap(apperr.CodeUnreadableArtifact, "corelabel: cannot open label artifact", openErr)
	}
	defer f.Close()

	r := bufio.NewReader(f)
	if err = binary.Read(r, binary.LittleEndian, &n); err != nil {
		return 0, nil, apperr.Wrap(apperr.CodeUnreadableArtifact, "corelabel: failed reading n", err)
	}
	lens := make([]int32, n)
	if err = binary.Read(r, binary.LittleEndian, lens); err != nil {
		return 0, nil, apperr.Wrap(apperr.CodeUnreadableArtifact, "corelabel: failed reading lens", err)
	}

	raw := make([][]uint32, n)
	for v := int32(0); v < n; v++ {
		if lens[v] == 0 {
			continue
		}
		buf := make([]uint32, lens[v])
		if err = binary.Read(r, binary.LittleEndian, buf); err != nil {
			return 0, nil, apperr.Wrap(apperr.CodeUnreadableArtifact, "corelabel: failed reading packed entries", err)
		}
		raw[v] = buf
	}

	var maxMov uint32
	if err = binary.Read(r, binary.LittleEndian, &maxMov); err != nil {
		return 0, nil, apperr.Wrap(apperr.CodeUnreadableArtifact, "corelabel: failed reading maxmov", err)
	}

	byVertex := make(map[int32][]Entry, n)
	for v := int32(0); v < n; v++ {
		if raw[v] == nil {
			continue
		}
		entries := make([]Entry, len(raw[v]))
		for i, packed := range raw[v] {
			lm, dist := unpack(packed, maxMov)
			entries[i] = Entry{Landmark: lm, Dist: dist}
		}
		byVertex[v] = entries
	}

	labels = &Labels{ByVertex: byVertex, MaxMov: maxMov}
	return n, labels, nil
}
