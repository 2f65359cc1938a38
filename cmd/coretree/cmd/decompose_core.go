package cmd

import (
	"fmt"
	"path/filepath"
	"strconv"

	"github.com/spf13/cobra"

	"github.com/distlabel/coretree/internal/bp"
	"github.com/distlabel/coretree/internal/corelabel"
	"github.com/distlabel/coretree/internal/reduce"
)

var decomposeCoreCmd = &cobra.Command{
	Use:   "decompose-core path W [n_threads]",
	Short: "Load tmp-W.bin and build 2-hop core labels, writing label-core-W.bin",
	Args:  cobra.RangeArgs(2, 3),
	RunE:  runDecomposeCore,
}

func init() {
	rootCmd.AddCommand(decomposeCoreCmd)
}

func runDecomposeCore(cmd *cobra.Command, args []string) error {
	dir := args[0]
	width, err := strconv.Atoi(args[1])
	if err != nil {
		return fmt.Errorf("invalid W %q: %w", args[1], err)
	}

	tmpPath := filepath.Join(dir, fmt.Sprintf("tmp-%d.bin", width))
	n, rank, claimed, coreEdges, coreOf, coreLabels, err := reduce.ReadTmp(tmpPath)
	if err != nil {
		return err
	}

	bpTable := &bp.Table{Labels: make([]bp.Label, n), Claimed: claimed}
	for v, lbl := range coreLabels {
		bpTable.Labels[v] = lbl
	}

	coreAdj := make(map[int32][]reduce.Edge)
	var coreVertices []int32
	for i, from := range coreOf {
		coreAdj[from] = append(coreAdj[from], coreEdges[i])
	}
	for v := int32(0); v < n; v++ {
		if rank[v] == -1 {
			coreVertices = append(coreVertices, v)
		}
	}

	labels := corelabel.Build(coreAdj, bpTable, coreVertices)

	outPath := filepath.Join(dir, fmt.Sprintf("label-core-%d.bin", width))
	if err := corelabel.Write(outPath, n, labels); err != nil {
		return err
	}

	log.Info("built core labels for %d vertices, %d landmarks", len(coreVertices), labels.NumLandmark)
	log.Info("wrote %s", outPath)
	return nil
}
