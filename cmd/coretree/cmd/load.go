package cmd

import (
	"fmt"
	"path/filepath"

	"github.com/distlabel/coretree/internal/bp"
	"github.com/distlabel/coretree/internal/corelabel"
	"github.com/distlabel/coretree/internal/graphio"
	"github.com/distlabel/coretree/internal/query"
	"github.com/distlabel/coretree/internal/tree"
)

// loadEngine reads every artifact for width W out of dir and assembles a
// query.Engine ready to answer distance queries.
func loadEngine(dir string, width int) (*query.Engine, error) {
	g, nid, err := graphio.ReadGraphBinAuto(filepath.Join(dir, "graph-dis.bin"))
	if err != nil {
		return nil, err
	}

	bpTable, err := bp.Read(filepath.Join(dir, "label-bp.bin"))
	if err != nil {
		return nil, err
	}

	_, rank, forest, err := tree.ReadLabels(filepath.Join(dir, fmt.Sprintf("label-tree-%d.bin", width)))
	if err != nil {
		return nil, err
	}

	_, coreLabels, err := corelabel.Read(filepath.Join(dir, fmt.Sprintf("label-core-%d.bin", width)))
	if err != nil {
		return nil, err
	}

	return &query.Engine{
		N:      g.N,
		Deg:    g.Deg,
		NID:    nid,
		Rank:   rank,
		BP:     bpTable,
		Forest: forest,
		Core:   coreLabels,
	}, nil
}
