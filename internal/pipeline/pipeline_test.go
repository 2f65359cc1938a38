package pipeline

import (
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/distlabel/coretree/internal/catalog"
	"github.com/distlabel/coretree/internal/store"
	"github.com/distlabel/coretree/pkg/config"
	"github.com/distlabel/coretree/pkg/logger"
)

// fakeRepository is an in-memory catalog.Repository stand-in, avoiding a
// real database for a pipeline-level test.
type fakeRepository struct {
	records map[string]*catalog.BuildRecord
}

func newFakeRepository() *fakeRepository {
	return &fakeRepository{records: make(map[string]*catalog.BuildRecord)}
}

func (f *fakeRepository) CreateBuild(ctx context.Context, graphName string, width int) (*catalog.BuildRecord, error) {
	rec := &catalog.BuildRecord{GraphName: graphName, Width: width, Status: catalog.StatusPending}
	f.records[graphName] = rec
	return rec, nil
}

func (f *fakeRepository) GetBuild(ctx context.Context, graphName string) (*catalog.BuildRecord, error) {
	rec, ok := f.records[graphName]
	if !ok {
		return nil, assertErr("build not found")
	}
	return rec, nil
}

func (f *fakeRepository) ListBuilds(ctx context.Context, limit int) ([]*catalog.BuildRecord, error) {
	var out []*catalog.BuildRecord
	for _, r := range f.records {
		out = append(out, r)
	}
	return out, nil
}

func (f *fakeRepository) StartStage(ctx context.Context, graphName string, stage catalog.Stage) error {
	if _, ok := f.records[graphName]; !ok {
		return assertErr("build not found")
	}
	f.records[graphName].Status = catalog.StatusRunning
	return nil
}

func (f *fakeRepository) FinishStage(ctx context.Context, graphName string, stage catalog.Stage, stageErr error) error {
	rec, ok := f.records[graphName]
	if !ok {
		return assertErr("build not found")
	}
	if stageErr != nil {
		rec.Status = catalog.StatusFailed
		rec.ErrorInfo = stageErr.Error()
	}
	return nil
}

func (f *fakeRepository) SetGraphStats(ctx context.Context, graphName string, numVertices, numEdges, numCore int64) error {
	rec, ok := f.records[graphName]
	if !ok {
		return assertErr("build not found")
	}
	if numVertices > 0 {
		rec.NumVertices = numVertices
	}
	if numCore > 0 {
		rec.NumCore = numCore
	}
	return nil
}

func (f *fakeRepository) Publish(ctx context.Context, graphName string, storageKey string) error {
	rec, ok := f.records[graphName]
	if !ok {
		return assertErr("build not found")
	}
	rec.StorageKey = storageKey
	rec.Status = catalog.StatusCompleted
	return nil
}

func (f *fakeRepository) LockForRebuild(ctx context.Context, graphName string) (bool, error) {
	return true, nil
}

type assertErr string

func (e assertErr) Error() string { return string(e) }

func TestOrchestrator_RunBuild_EndToEnd(t *testing.T) {
	dir := t.TempDir()
	edgeListPath := filepath.Join(dir, "edges.txt")
	// a path graph 0-1-2-3-4 plus a pendant vertex 5 off vertex 2; no two
	// vertices share a neighborhood, so nothing folds.
	edgeList := "0 1\n1 2\n2 3\n3 4\n2 5\n"
	require.NoError(t, os.WriteFile(edgeListPath, []byte(edgeList), 0644))

	cfg := &config.Config{}
	cfg.Build.DataDir = dir
	cfg.Build.BPThreads = 2

	localStore, err := store.NewLocalStorage(filepath.Join(dir, "artifacts"))
	require.NoError(t, err)

	repo := newFakeRepository()
	orch := New(cfg, repo, localStore, &logger.NullLogger{})

	built, err := orch.RunBuild(context.Background(), "test-graph", edgeListPath, 3)
	require.NoError(t, err)
	require.NotNil(t, built)

	assert.Equal(t, int32(6), built.Graph.N)

	rec, err := repo.GetBuild(context.Background(), "test-graph")
	require.NoError(t, err)
	assert.Equal(t, catalog.StatusCompleted, rec.Status)
	assert.Equal(t, "test-graph", rec.StorageKey)

	graphDir := cfg.GraphDir("test-graph")
	for _, name := range []string{"graph-dis.bin", "label-bp.bin", "label-tree-3.bin", "tmp-3.bin"} {
		_, statErr := os.Stat(filepath.Join(graphDir, name))
		assert.NoError(t, statErr, "expected artifact %s to exist locally", name)
	}

	entries, err := os.ReadDir(filepath.Join(dir, "artifacts", "test-graph"))
	require.NoError(t, err)
	var names []string
	for _, e := range entries {
		names = append(names, e.Name())
	}
	joined := strings.Join(names, ",")
	assert.Contains(t, joined, "graph-dis.bin")
	assert.Contains(t, joined, "label-bp.bin")
}
