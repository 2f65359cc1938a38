package cmd

import (
	"context"
	"fmt"
	"path/filepath"
	"strconv"

	"github.com/spf13/cobra"

	"github.com/distlabel/coretree/internal/bp"
	"github.com/distlabel/coretree/internal/graphio"
	"github.com/distlabel/coretree/internal/reduce"
	"github.com/distlabel/coretree/internal/tree"
)

var decomposeBTCmd = &cobra.Command{
	Use:   "decompose-bt path W n_threads",
	Short: "Build the bit-parallel sketch and tree, then persist the residual core as tmp-W.bin",
	Args:  cobra.ExactArgs(3),
	RunE:  runDecomposeBT,
}

func init() {
	rootCmd.AddCommand(decomposeBTCmd)
}

func runDecomposeBT(cmd *cobra.Command, args []string) error {
	dir := args[0]
	width, err := strconv.Atoi(args[1])
	if err != nil {
		return fmt.Errorf("invalid W %q: %w", args[1], err)
	}
	threads, err := strconv.Atoi(args[2])
	if err != nil {
		return fmt.Errorf("invalid n_threads %q: %w", args[2], err)
	}

	g, _, err := graphio.ReadGraphBinAuto(filepath.Join(dir, "graph-dis.bin"))
	if err != nil {
		return err
	}

	table, err := bp.Build(context.Background(), g, threads)
	if err != nil {
		return err
	}
	bpPath := filepath.Join(dir, "label-bp.bin")
	if err := bp.Write(bpPath, table); err != nil {
		return err
	}
	log.Info("wrote %s", bpPath)

	result := reduce.Run(g, width)
	forest := tree.Build(result)
	treePath := filepath.Join(dir, fmt.Sprintf("label-tree-%d.bin", width))
	if err := tree.WriteLabels(treePath, g.N, result.Rank, forest); err != nil {
		return err
	}
	log.Info("wrote %s", treePath)

	var coreLabels []bp.Label
	for v := int32(0); v < g.N; v++ {
		if result.Rank[v] == -1 {
			coreLabels = append(coreLabels, table.Labels[v])
		}
	}
	tmpPath := filepath.Join(dir, fmt.Sprintf("tmp-%d.bin", width))
	if err := reduce.WriteTmp(tmpPath, result, table, coreLabels); err != nil {
		return err
	}
	log.Info("core size %d, wrote %s", result.NumCore, tmpPath)
	return nil
}
