package cmd

import (
	"fmt"
	"math/rand"
	"strconv"
	"time"

	"github.com/spf13/cobra"

	"github.com/distlabel/coretree/internal/query"
)

var queryBatchCmd = &cobra.Command{
	Use:   "query-batch path W n_pairs",
	Short: "Benchmark n_pairs random-vertex distance queries",
	Args:  cobra.ExactArgs(3),
	RunE:  runQueryBatch,
}

func init() {
	rootCmd.AddCommand(queryBatchCmd)
}

func runQueryBatch(cmd *cobra.Command, args []string) error {
	dir := args[0]
	width, err := strconv.Atoi(args[1])
	if err != nil {
		return fmt.Errorf("invalid W %q: %w", args[1], err)
	}
	nPairs, err := strconv.Atoi(args[2])
	if err != nil {
		return fmt.Errorf("invalid n_pairs %q: %w", args[2], err)
	}

	engine, err := loadEngine(dir, width)
	if err != nil {
		return err
	}
	if len(engine.NID) == 0 {
		return fmt.Errorf("query-batch: graph artifact has no original-vertex remap table")
	}

	rng := rand.New(rand.NewSource(time.Now().UnixNano()))
	nOriginal := int32(len(engine.NID))

	var reachable, unreachable int
	start := time.Now()
	for i := 0; i < nPairs; i++ {
		u := rng.Int31n(nOriginal)
		v := rng.Int31n(nOriginal)
		d, err := engine.Distance(u, v)
		if err != nil {
			return err
		}
		if d >= query.INF {
			unreachable++
		} else {
			reachable++
		}
	}
	elapsed := time.Since(start)

	log.Info("ran %d queries in %s (%.0f ns/query)", nPairs, elapsed, float64(elapsed.Nanoseconds())/float64(nPairs))
	log.Info("reachable=%d unreachable=%d", reachable, unreachable)
	return nil
}
