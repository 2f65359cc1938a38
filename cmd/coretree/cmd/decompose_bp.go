package cmd

import (
	"context"
	"fmt"
	"path/filepath"
	"strconv"

	"github.com/spf13/cobra"

	"github.com/distlabel/coretree/internal/bp"
	"github.com/distlabel/coretree/internal/graphio"
)

var decomposeBPCmd = &cobra.Command{
	Use:   "decompose-bp path n_threads",
	Short: "Build the bit-parallel sketch and write label-bp.bin",
	Args:  cobra.RangeArgs(1, 2),
	RunE:  runDecomposeBP,
}

func init() {
	rootCmd.AddCommand(decomposeBPCmd)
}

func runDecomposeBP(cmd *cobra.Command, args []string) error {
	dir := args[0]
	threads := 1
	if len(args) > 1 {
		n, err := strconv.Atoi(args[1])
		if err != nil {
			return fmt.Errorf("invalid n_threads %q: %w", args[1], err)
		}
		threads = n
	}

	g, _, err := graphio.ReadGraphBinAuto(filepath.Join(dir, "graph-dis.bin"))
	if err != nil {
		return err
	}

	table, err := bp.Build(context.Background(), g, threads)
	if err != nil {
		return err
	}

	outPath := filepath.Join(dir, "label-bp.bin")
	if err := bp.Write(outPath, table); err != nil {
		return err
	}

	log.Info("wrote %s", outPath)
	return nil
}
