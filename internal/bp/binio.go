package bp

import (
	"bufio"
	"encoding/binary"
	"os"

	"github.com/distlabel/coretree/pkg/apperr"
)

// Write serializes a Table to the label-bp.bin layout:
// int32 n; bool[n] claimed; Label[n] (Label = uint8[R] d; uint64[R][2] s).
func Write(path string, t *Table) (err error) {
	f, createErr := os.Create(path)
	if createErr != nil {
		return apperr.Wrap(apperr.CodeFatal, "bp: cannot create label artifact", createErr)
	}
	defer func() {
		if cerr := f.Close(); cerr != nil && err == nil {
			err = apperr.Wrap(apperr.CodeFatal, "bp: failed to close label artifact", cerr)
		}
	}()

	w := bufio.NewWriter(f)
	n := int32(len(t.Labels))
	if err = binary.Write(w, binary.LittleEndian, n); err != nil {
		return apperr.Wrap(apperr.CodeFatal, "bp: failed writing n", err)
	}
	if err = binary.Write(w, binary.LittleEndian, t.Claimed); err != nil {
		return apperr.Wrap(apperr.CodeFatal, "bp: failed writing claimed", err)
	}
	for _, lbl := range t.Labels {
		if err = binary.Write(w, binary.LittleEndian, lbl.D); err != nil {
			return apperr.Wrap(apperr.CodeFatal, "bp: failed writing label distances", err)
		}
		if err = binary.Write(w, binary.LittleEndian, lbl.S); err != nil {
			return apperr.Wrap(apperr.CodeFatal, "bp: failed writing label masks", err)
		}
	}
	return w.Flush()
}

// Read loads a label-bp.bin artifact into a Table.
func Read(path string) (*Table, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, apperr.Wrap(apperr.CodeUnreadableArtifact, "bp: cannot open label artifact", err)
	}
	defer f.Close()

	r := bufio.NewReader(f)
	var n int32
	if err := binary.Read(r, binary.LittleEndian, &n); err != nil {
		return nil, apperr.Wrap(apperr.CodeUnreadableArtifact, "bp: failed reading n", err)
	}
	claimed := make([]bool, n)
	if err := binary.Read(r, binary.LittleEndian, claimed); err != nil {
		return nil, apperr.Wrap(apperr.CodeUnreadableArtifact, "bp: failed reading claimed", err)
	}
	labels := make([]Label, n)
	for i := range labels {
		if err := binary.Read(r, binary.LittleEndian, &labels[i].D); err != nil {
			return nil, apperr.Wrap(apperr.CodeUnreadableArtifact, "bp: failed reading label distances", err)
		}
		if err := binary.Read(r, binary.LittleEndian, &labels[i].S); err != nil {
			return nil, apperr.Wrap(apperr.CodeUnreadableArtifact, "bp: failed reading label masks", err)
		}
	}
	return &Table{Labels: labels, Claimed: claimed}, nil
}
