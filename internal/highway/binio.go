package highway

import (
	"bufio"
	"encoding/binary"
	"os"

	"github.com/distlabel/coretree/pkg/apperr"
)

// Write serializes Labels to index-hwy.bin: int32 k (landmark count); int32
// n (vertex count); landmark ids [k]int32; then k dense distance rows of
// n int32 each.
func Write(path string, n int32, labels *Labels) (err error) {
	f, createErr := os.Create(path)
	if createErr != nil {
		return apperr.Wrap(apperr.CodeFatal, "highway: cannot create index artifact", createErr)
	}
	defer func() {
		if cerr := f.Close(); cerr != nil && err == nil {
			err = apperr.Wrap(apperr.CodeFatal, "highway: failed to close index artifact", cerr)
		}
	}()

	w := bufio.NewWriter(f)
	k := int32(len(labels.Landmarks))
	if err = binary.Write(w, binary.LittleEndian, k); err != nil {
		return apperr.Wrap(apperr.CodeFatal, "highway: failed writing k", err)
	}
	if err = binary.Write(w, binary.LittleEndian, n); err != nil {
		return apperr.Wrap(apperr.CodeFatal, "highway: failed writing n", err)
	}
	if err = binary.Write(w, binary.LittleEndian, labels.Landmarks); err != nil {
		return apperr.Wrap(apperr.CodeFatal, "highway: failed writing landmarks", err)
	}
	for _, row := range labels.DistFrom {
		if err = binary.Write(w, binary.LittleEndian, row); err != nil {
			return apperr.Wrap(apperr.CodeFatal, "highway: failed writing distance row", err)
		}
	}

	return w.Flush()
}

// Read loads an index-hwy.bin artifact.
func Read(path string) (n int32, labels *Labels, err error) {
	f, openErr := os.Open(path)
	if openErr != nil {
		return 0, nil, apperr.Wrap(apperr.CodeUnreadableArtifact, "highway: cannot open index artifact", openErr)
	}
	defer f.Close()

	r := bufio.NewReader(f)
	var k int32
	if err = binary.Read(r, binary.LittleEndian, &k); err != nil {
		return 0, nil, apperr.Wrap(apperr.CodeUnreadableArtifact, "highway: failed reading k", err)
	}
	if err = binary.Read(r, binary.LittleEndian, &n); err != nil {
		return 0, nil, apperr.Wrap(apperr.CodeUnreadableArtifact, "highway: failed reading n", err)
	}
	landmarks := make([]int32, k)
	if err = binary.Read(r, binary.LittleEndian, landmarks); err != nil {
		return 0, nil, apperr.Wrap(apperr.CodeUnreadableArtifact, "highway: failed reading landmarks", err)
	}
	distFrom := make([][]int32, k)
	for i := int32(0); i < k; i++ {
		row := make([]int32, n)
		if err = binary.Read(r, binary.LittleEndian, row); err != nil {
			return 0, nil, apperr.Wrap(apperr.CodeUnreadableArtifact, "highway: failed reading distance row", err)
		}
		distFrom[i] = row
	}

	return n, &Labels{Landmarks: landmarks, DistFrom: distFrom}, nil
}
