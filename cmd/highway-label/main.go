// Command highway-label is the second external-collaborator cross-check
// tool: a highway cover labelling build, ported in spirit from the
// reference HighwayLabelling's query_distance_main (argv-driven,
// SelectLandmarks_HD then QueryDistance). Usage:
//
//	highway-label build graph.txt k index-hwy.bin
//	highway-label query index-hwy.bin u v
package main

import (
	"fmt"
	"os"
	"strconv"

	"github.com/distlabel/coretree/internal/graphio"
	"github.com/distlabel/coretree/internal/highway"
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
		fmt.Fprintln(os.Stderr, "highway-label:", err)
		os.Exit(1)
	}
}

func usage() {
	fmt.Fprintln(os.Stderr, "usage: highway-label build graph.txt k index-hwy.bin")
	fmt.Fprintln(os.Stderr, "       highway-label query index-hwy.bin u v")
}

func runBuild(args []string) error {
	if len(args) != 3 {
		usage()
		os.Exit(1)
	}
	graphPath := args[0]
	k, err := strconv.Atoi(args[1])
	if err != nil {
		return fmt.Errorf("invalid k %q: %w", args[1], err)
	}
	indexPath := args[2]

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

	landmarks := highway.SelectLandmarksHD(g, k)
	labels := highway.Build(g, landmarks)
	if err := highway.Write(indexPath, g.N, labels); err != nil {
		return err
	}

	fmt.Printf("built index over %d vertices, %d landmarks -> %s\n", g.N, len(landmarks), indexPath)
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

	_, labels, err := highway.Read(indexPath)
	if err != nil {
		return err
	}
	d := highway.Query(labels, int32(u), int32(v))
	if d >= highway.MaxD {
		fmt.Printf("u=%d v=%d unreachable\n", u, v)
		return nil
	}
	fmt.Printf("u=%d v=%d d=%d\n", u, v, d)
	return nil
}
