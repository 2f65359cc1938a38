package pllbaseline

import (
	"bufio"
	"encoding/binary"
	"os"

	"github.com/distlabel/coretree/pkg/apperr"
)

// Write serializes Labels to index-pll.bin: int32 n; int32 len[n]; then
// (landmark int32, dist int32) pairs per vertex, in ascending vertex id
// order. Kept unpacked (unlike label-core-W.bin's bit-packed uint32) since
// this index is a cross-check tool, not a production artifact under the
// same size budget.
func Write(path string, labels *Labels) (err error) {
	f, createErr := os.Create(path)
	if createErr != nil {
		return apperr.Wrap(apperr.CodeFatal, "pllbaseline: cannot create index artifact", createErr)
	}
	defer func() {
		if cerr := f.Close(); cerr != nil && err == nil {
			err = apperr.Wrap(apperr.CodeFatal, "pllbaseline: failed to close index artifact", cerr)
		}
	}()

	w := bufio.NewWriter(f)
	n := int32(len(labels.ByVertex))
	if err = binary.Write(w, binary.LittleEndian, n); err != nil {
		return apperr.Wrap(apperr.CodeFatal, "pllbaseline: failed writing n", err)
	}

	lens := make([]int32, n)
	for v, entries := range labels.ByVertex {
		lens[v] = int32(len(entries))
	}
	if err = binary.Write(w, binary.LittleEndian, lens); err != nil {
		return apperr.Wrap(apperr.CodeFatal, "pllbaseline: failed writing lens", err)
	}

	for _, entries := range labels.ByVertex {
		for _, e := range entries {
			if err = binary.Write(w, binary.LittleEndian, e.Landmark); err != nil {
				return apperr.Wrap(apperr.CodeFatal, "pllbaseline: failed writing landmark", err)
			}
			if err = binary.Write(w, binary.LittleEndian, e.Dist); err != nil {
				return apperr.Wrap(apperr.CodeFatal, "pllbaseline: failed writing dist", err)
			}
		}
	}

	return w.Flush()
}

// Read loads an index-pll.bin artifact.
func Read(path string) (*Labels, error) {
	f, openErr := os.Open(path)
	if openErr != nil {
		return nil, apperr.Wrap(apperr.CodeUnreadableArtifact, "pllbaseline: cannot open index artifact", openErr)
	}
	defer f.Close()

	r := bufio.NewReader(f)
	var n int32
	if err := binary.Read(r, binary.LittleEndian, &n); err != nil {
		return nil, apperr.Wrap(apperr.CodeUnreadableArtifact, "pllbaseline: failed reading n", err)
	}
	lens := make([]int32, n)
	if err := binary.Read(r, binary.LittleEndian, lens); err != nil {
		return nil, apperr.Wrap(apperr.CodeUnreadableArtifact, "pllbaseline: failed reading lens", err)
	}

	byVertex := make([][]Entry, n)
	for v := int32(0); v < n; v++ {
		if lens[v] == 0 {
			continue
		}
		entries := make([]Entry, lens[v])
		for i := range entries {
			if err := binary.Read(r, binary.LittleEndian, &entries[i].Landmark); err != nil {
				return nil, apperr.Wrap(apperr.CodeUnreadableArtifact, "pllbaseline: failed reading landmark", err)
			}
			if err := binary.Read(r, binary.LittleEndian, &entries[i].Dist); err != nil {
				return nil, apperr.Wrap(apperr.CodeUnreadableArtifact, "pllbaseline: failed reading dist", err)
			}
		}
		byVertex[v] = entries
	}

	return &Labels{ByVertex: byVertex}, nil
}
