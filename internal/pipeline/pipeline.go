// Package pipeline sequences the five index-build stages (ingest, bit-parallel
// sketch, reduce+tree, core labeling, publish), persisting progress to the
// build catalog between stages and publishing each binary artifact through
// the configured artifact store. The CLI's build command calls into it; the
// "decompose" subcommands run their stages directly.
package pipeline

import (
	"context"
	"fmt"
	"os"
	"path/filepath"

	"go.opentelemetry.io/otel"

	"github.com/distlabel/coretree/internal/bp"
	"github.com/distlabel/coretree/internal/catalog"
	"github.com/distlabel/coretree/internal/corelabel"
	"github.com/distlabel/coretree/internal/graphio"
	"github.com/distlabel/coretree/internal/reduce"
	"github.com/distlabel/coretree/internal/store"
	"github.com/distlabel/coretree/internal/tree"
	"github.com/distlabel/coretree/pkg/apperr"
	"github.com/distlabel/coretree/pkg/config"
	"github.com/distlabel/coretree/pkg/logger"
)

var tracer = otel.Tracer("coretree/pipeline")

// Orchestrator runs the build pipeline for one graph at a time, wiring the
// core algorithm packages to the catalog and artifact store.
type Orchestrator struct {
	Config  *config.Config
	Catalog catalog.Repository
	Storage store.Storage
	Log     logger.Logger
}

// New builds an Orchestrator, defaulting Log to a no-op logger.
func New(cfg *config.Config, repo catalog.Repository, st store.Storage, log logger.Logger) *Orchestrator {
	if log == nil {
		log = &logger.NullLogger{}
	}
	return &Orchestrator{Config: cfg, Catalog: repo, Storage: st, Log: log}
}

// Built holds the fully-loaded index layers, ready to answer queries without
// rereading artifacts from storage.
type Built struct {
	Graph  *graphio.Graph
	NID    []int32
	Rank   []int32
	BP     *bp.Table
	Forest *tree.Forest
	Core   *corelabel.Labels
}

// RunBuild executes all five stages for graphName against the edge list at
// edgeListPath, recording progress in the catalog and publishing every
// artifact through the configured store. It returns the in-memory built
// index so a caller can use it immediately without a round trip through
// disk (the CLI's build command reports vertex count and core size from it).
func (o *Orchestrator) RunBuild(ctx context.Context, graphName string, edgeListPath string, width int) (*Built, error) {
	if _, err := o.Catalog.GetBuild(ctx, graphName); err != nil {
		if _, cerr := o.Catalog.CreateBuild(ctx, graphName, width); cerr != nil {
			return nil, apperr.Wrap(apperr.CodeFatal, "pipeline: failed to register build", cerr)
		}
	}

	graphDir := o.Config.GraphDir(graphName)
	if err := os.MkdirAll(graphDir, 0755); err != nil {
		return nil, apperr.Wrap(apperr.CodeFatal, "pipeline: failed to create build directory", err)
	}

	g, nid, err := o.runIngest(ctx, graphName, graphDir, edgeListPath)
	if err != nil {
		return nil, err
	}

	bpTable, err := o.runBP(ctx, graphName, graphDir, g)
	if err != nil {
		return nil, err
	}

	result, forest, err := o.runTree(ctx, graphName, graphDir, g, width, bpTable)
	if err != nil {
		return nil, err
	}

	coreLabels, err := o.runCore(ctx, graphName, graphDir, result, bpTable, width)
	if err != nil {
		return nil, err
	}

	if err := o.runPublish(ctx, graphName, graphDir); err != nil {
		return nil, err
	}

	return &Built{Graph: g, NID: nid, Rank: result.Rank, BP: bpTable, Forest: forest, Core: coreLabels}, nil
}

func (o *Orchestrator) runIngest(ctx context.Context, graphName, graphDir, edgeListPath string) (*graphio.Graph, []int32, error) {
	ctx, span := tracer.Start(ctx, "pipeline.ingest")
	defer span.End()

	if err := o.Catalog.StartStage(ctx, graphName, catalog.StageIngest); err != nil {
		return nil, nil, apperr.Wrap(apperr.CodeFatal, "pipeline: failed to start ingest stage", err)
	}

	f, err := os.Open(edgeListPath)
	if err != nil {
		stageErr := apperr.Wrap(apperr.CodeMalformedInput, "pipeline: cannot open edge list", err)
		_ = o.Catalog.FinishStage(ctx, graphName, catalog.StageIngest, stageErr)
		return nil, nil, stageErr
	}
	defer f.Close()

	edges, n, err := graphio.ParseEdgeList(f, o.Log)
	if err != nil {
		_ = o.Catalog.FinishStage(ctx, graphName, catalog.StageIngest, err)
		return nil, nil, err
	}

	adj := graphio.Dedup(edges, n)
	foldNID, reducedAdj := graphio.EquivalenceClasses(adj)
	rankOf := graphio.Rank(reducedAdj)
	g := graphio.BuildRemap(reducedAdj, rankOf)
	nid := graphio.ComposeNID(foldNID, rankOf)

	path := filepath.Join(graphDir, "graph-dis.bin")
	if err := graphio.WriteGraphBin(path, g, nid); err != nil {
		_ = o.Catalog.FinishStage(ctx, graphName, catalog.StageIngest, err)
		return nil, nil, err
	}
	if err := o.publish(ctx, graphName, path, "graph-dis.bin"); err != nil {
		_ = o.Catalog.FinishStage(ctx, graphName, catalog.StageIngest, err)
		return nil, nil, err
	}

	var numEdges int64
	for _, nbrs := range reducedAdj {
		numEdges += int64(len(nbrs))
	}
	numEdges /= 2
	if err := o.Catalog.SetGraphStats(ctx, graphName, int64(n), numEdges, 0); err != nil {
		o.Log.Warn("pipeline: failed to record graph stats: %v", err)
	}

	o.Log.Info("pipeline: ingest complete for %s, n=%d reduced=%d", graphName, n, g.N)
	return g, nid, o.Catalog.FinishStage(ctx, graphName, catalog.StageIngest, nil)
}

func (o *Orchestrator) runBP(ctx context.Context, graphName, graphDir string, g *graphio.Graph) (*bp.Table, error) {
	ctx, span := tracer.Start(ctx, "pipeline.bp")
	defer span.End()

	if err := o.Catalog.StartStage(ctx, graphName, catalog.StageBP); err != nil {
		return nil, apperr.Wrap(apperr.CodeFatal, "pipeline: failed to start bp stage", err)
	}

	threads := o.Config.Build.BPThreads
	if threads <= 0 {
		threads = 1
	}
	table, err := bp.Build(ctx, g, threads)
	if err != nil {
		_ = o.Catalog.FinishStage(ctx, graphName, catalog.StageBP, err)
		return nil, err
	}

	path := filepath.Join(graphDir, "label-bp.bin")
	if err := bp.Write(path, table); err != nil {
		_ = o.Catalog.FinishStage(ctx, graphName, catalog.StageBP, err)
		return nil, err
	}
	if err := o.publish(ctx, graphName, path, "label-bp.bin"); err != nil {
		_ = o.Catalog.FinishStage(ctx, graphName, catalog.StageBP, err)
		return nil, err
	}

	o.Log.Info("pipeline: bp sketch complete for %s", graphName)
	return table, o.Catalog.FinishStage(ctx, graphName, catalog.StageBP, nil)
}

func (o *Orchestrator) runTree(ctx context.Context, graphName, graphDir string, g *graphio.Graph, width int, bpTable *bp.Table) (*reduce.Result, *tree.Forest, error) {
	ctx, span := tracer.Start(ctx, "pipeline.tree")
	defer span.End()

	if err := o.Catalog.StartStage(ctx, graphName, catalog.StageTree); err != nil {
		return nil, nil, apperr.Wrap(apperr.CodeFatal, "pipeline: failed to start tree stage", err)
	}

	result := reduce.Run(g, width)
	forest := tree.Build(result)

	treePath := filepath.Join(graphDir, fmt.Sprintf("label-tree-%d.bin", width))
	if err := tree.WriteLabels(treePath, g.N, result.Rank, forest); err != nil {
		_ = o.Catalog.FinishStage(ctx, graphName, catalog.StageTree, err)
		return nil, nil, err
	}
	if err := o.publish(ctx, graphName, treePath, filepath.Base(treePath)); err != nil {
		_ = o.Catalog.FinishStage(ctx, graphName, catalog.StageTree, err)
		return nil, nil, err
	}

	var coreLabels []bp.Label
	for v := int32(0); v < g.N; v++ {
		if result.Rank[v] == -1 {
			coreLabels = append(coreLabels, bpTable.Labels[v])
		}
	}
	tmpPath := filepath.Join(graphDir, fmt.Sprintf("tmp-%d.bin", width))
	if err := reduce.WriteTmp(tmpPath, result, bpTable, coreLabels); err != nil {
		_ = o.Catalog.FinishStage(ctx, graphName, catalog.StageTree, err)
		return nil, nil, err
	}
	if err := o.publish(ctx, graphName, tmpPath, filepath.Base(tmpPath)); err != nil {
		_ = o.Catalog.FinishStage(ctx, graphName, catalog.StageTree, err)
		return nil, nil, err
	}

	if err := o.Catalog.SetGraphStats(ctx, graphName, int64(g.N), 0, int64(result.NumCore)); err != nil {
		o.Log.Warn("pipeline: failed to record core size: %v", err)
	}

	o.Log.Info("pipeline: reduce+tree complete for %s, core=%d", graphName, result.NumCore)
	return result, forest, o.Catalog.FinishStage(ctx, graphName, catalog.StageTree, nil)
}

func (o *Orchestrator) runCore(ctx context.Context, graphName, graphDir string, result *reduce.Result, bpTable *bp.Table, width int) (*corelabel.Labels, error) {
	ctx, span := tracer.Start(ctx, "pipeline.core")
	defer span.End()

	if err := o.Catalog.StartStage(ctx, graphName, catalog.StageCore); err != nil {
		return nil, apperr.Wrap(apperr.CodeFatal, "pipeline: failed to start core stage", err)
	}

	coreAdj := make(map[int32][]reduce.Edge)
	var coreVertices []int32
	for v, edges := range result.CoreEdges {
		if result.Rank[v] == -1 {
			coreAdj[int32(v)] = edges
			coreVertices = append(coreVertices, int32(v))
		}
	}
	labels := corelabel.Build(coreAdj, bpTable, coreVertices)

	path := filepath.Join(graphDir, fmt.Sprintf("label-core-%d.bin", width))
	if err := corelabel.Write(path, int32(len(result.Rank)), labels); err != nil {
		_ = o.Catalog.FinishStage(ctx, graphName, catalog.StageCore, err)
		return nil, err
	}
	if err := o.publish(ctx, graphName, path, filepath.Base(path)); err != nil {
		_ = o.Catalog.FinishStage(ctx, graphName, catalog.StageCore, err)
		return nil, err
	}

	o.Log.Info("pipeline: core labeling complete for %s, landmarks=%d", graphName, labels.NumLandmark)
	return labels, o.Catalog.FinishStage(ctx, graphName, catalog.StageCore, nil)
}

func (o *Orchestrator) runPublish(ctx context.Context, graphName, graphDir string) error {
	ctx, span := tracer.Start(ctx, "pipeline.publish")
	defer span.End()

	if err := o.Catalog.StartStage(ctx, graphName, catalog.StagePublish); err != nil {
		return apperr.Wrap(apperr.CodeFatal, "pipeline: failed to start publish stage", err)
	}

	if err := o.Catalog.Publish(ctx, graphName, graphName); err != nil {
		pubErr := apperr.Wrap(apperr.CodeFatal, "pipeline: failed to publish build", err)
		_ = o.Catalog.FinishStage(ctx, graphName, catalog.StagePublish, pubErr)
		return pubErr
	}

	o.Log.Info("pipeline: published build %s", graphName)
	return o.Catalog.FinishStage(ctx, graphName, catalog.StagePublish, nil)
}

// publish uploads a just-written local artifact to the configured store
// under <graphName>/<name>.
func (o *Orchestrator) publish(ctx context.Context, graphName, localPath, name string) error {
	if o.Storage == nil {
		return nil
	}
	key := fmt.Sprintf("%s/%s", graphName, name)
	if err := o.Storage.UploadFile(ctx, key, localPath); err != nil {
		return apperr.Wrap(apperr.CodeStorageError, "pipeline: failed to publish artifact", err)
	}
	return nil
}
