package cmd

import (
	"fmt"
	"strconv"

	"github.com/spf13/cobra"
)

var queryDisCmd = &cobra.Command{
	Use:   "query-dis path W u v",
	Short: "Answer a single exact shortest-path distance query",
	Args:  cobra.ExactArgs(4),
	RunE:  runQueryDis,
}

func init() {
	rootCmd.AddCommand(queryDisCmd)
}

func runQueryDis(cmd *cobra.Command, args []string) error {
	dir := args[0]
	width, err := strconv.Atoi(args[1])
	if err != nil {
		return fmt.Errorf("invalid W %q: %w", args[1], err)
	}
	u, err := strconv.ParseInt(args[2], 10, 32)
	if err != nil {
		return fmt.Errorf("invalid u %q: %w", args[2], err)
	}
	v, err := strconv.ParseInt(args[3], 10, 32)
	if err != nil {
		return fmt.Errorf("invalid v %q: %w", args[3], err)
	}

	engine, err := loadEngine(dir, width)
	if err != nil {
		return err
	}

	d, err := engine.Distance(int32(u), int32(v))
	if err != nil {
		return err
	}

	fmt.Println(d)
	return nil
}
