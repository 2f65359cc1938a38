package cmd

import (
	"fmt"
	"path/filepath"
	"strconv"

	"github.com/spf13/cobra"

	"github.com/distlabel/coretree/internal/graphio"
	"github.com/distlabel/coretree/internal/reduce"
	"github.com/distlabel/coretree/internal/tree"
)

var decomposeTreeCmd = &cobra.Command{
	Use:   "decompose-tree path W [n_threads]",
	Short: "Peel low-degree vertices below width W and write label-tree-W.bin",
	Args:  cobra.RangeArgs(2, 3),
	RunE:  runDecomposeTree,
}

func init() {
	rootCmd.AddCommand(decomposeTreeCmd)
}

func runDecomposeTree(cmd *cobra.Command, args []string) error {
	dir := args[0]
	width, err := strconv.Atoi(args[1])
	if err != nil {
		return fmt.Errorf("invalid W %q: %w", args[1], err)
	}

	g, _, err := graphio.ReadGraphBinAuto(filepath.Join(dir, "graph-dis.bin"))
	if err != nil {
		return err
	}

	result := reduce.Run(g, width)
	forest := tree.Build(result)

	outPath := filepath.Join(dir, fmt.Sprintf("label-tree-%d.bin", width))
	if err := tree.WriteLabels(outPath, g.N, result.Rank, forest); err != nil {
		return err
	}

	log.Info("peeled %d/%d vertices below width %d, core size %d", g.N-int32(result.NumCore), g.N, width, result.NumCore)
	log.Info("wrote %s", outPath)
	return nil
}
