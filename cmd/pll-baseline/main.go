// Command pll-baseline is the external-collaborator cross-check tool: a
// plain pruned landmark labeling implementation, built and queried
// independently of the core-tree engine so its answers can be diffed
// against it in tests. Usage:
//
//	pll-baseline build graph.txt index-pll.bin
//	pll-baseline query index-pll.bin u v
package main

import (
	"fmt"
	"os"
	"strconv"

	"github.com/distlabel/coretree/internal/graphio"
	"github.com/distlabel/coretree/internal/pllbaseline"
	"github.com/distlabel/coretree/pkg/logger"
)

func main() {
	if len(os.Args) < 2 {
		usage()
		os.Exit(1)
	}

	var err error
	switch os.Args[1] {
	case "build":
		err = runBuild(os.Args[2:])
	case "query":
		err = runQuery(os.Args[2:])
	default:
		usage()
		os.Exit(1)
	}
	if err != nil {
		fmt.Fprintln(os.Stderr, "pll-baseline:", err)
		os.Exit(1)
	}
}

func usage() {
	fmt.Fprintln(os.Stderr, "usage: pll-baseline build graph.txt index-pll.bin")
	fmt.Fprintln(os.Stderr, "       pll-baseline query index-pll.bin u v")
}

func runBuild(args []string) error {
	if len(args) != 2 {
		usage()
		os.Exit(1)
	}
	graphPath, indexPath := args[0], args[1]

	f, err := os.Open(graphPath)
	if err != nil {
		return fmt.Errorf("cannot open %s: %w", graphPath, err)
	}
	defer f.Close()

	edges, n, err := graphio.ParseEdgeList(f, &logger.NullLogger{})
	if err != nil {
		return err
	}
	adj := graphio.Dedup(edges, n)
	g := graphio.NewGraph(adj)

	labels := pllbaseline.Build(g)
	if err := pllbaseline.Write(indexPath, labels); err != nil {
		return err
	}

	fmt.Printf("built index over %d vertices -> %s\n", g.N, indexPath)
	return nil
}

func runQuery(args []string) error {
	if len(args) != 3 {
		usage()
		os.Exit(1)
	}
	indexPath := args[0]
	u, err := strconv.ParseInt(args[1], 10, 32)
	if err != nil {
		return fmt.Errorf("invalid u %q: %w", args[1], err)
	}
	v, err := strconv.ParseInt(args[2], 10, 32)
	if err != nil {
		return fmt.Errorf("invalid v %q: %w", args[2], err)
	}

	labels, err := pllbaseline.Read(indexPath)
	if err != nil {
		return err
	}
	d := pllbaseline.Query(labels, int32(u), int32(v))
	if d >= pllbaseline.MaxD {
		fmt.Printf("u=%d v=%d unreachable\n", u, v)
		return nil
	}
	fmt.Printf("u=%d v=%d d=%d\n", u, v, d)
	return nil
}
