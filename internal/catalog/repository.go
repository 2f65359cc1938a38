package catalog

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// Repository defines the catalog's persistence operations.
type Repository interface {
	// CreateBuild registers a new build, failing if graphName already exists.
	CreateBuild(ctx context.Context, graphName string, width int) (*BuildRecord, error)

	// GetBuild retrieves a build record by graph name.
	GetBuild(ctx context.Context, graphName string) (*BuildRecord, error)

	// ListBuilds returns the most recently updated builds, newest first.
	ListBuilds(ctx context.Context, limit int) ([]*BuildRecord, error)

	// StartStage marks a stage as running and the overall build status accordingly.
	StartStage(ctx context.Context, graphName string, stage Stage) error

	// FinishStage marks a stage as completed or failed. A non-nil stageErr
	// marks the stage (and the whole build) failed.
	FinishStage(ctx context.Context, graphName string, stage Stage, stageErr error) error

	// SetGraphStats records vertex/edge/core counts discovered during ingest/reduce.
	SetGraphStats(ctx context.Context, graphName string, numVertices, numEdges, numCore int64) error

	// Publish records the storage key where the final artifact set lives and
	// marks the build completed.
	Publish(ctx context.Context, graphName string, storageKey string) error

	// LockForRebuild takes an exclusive lock on a build row for a rebuild,
	// refusing concurrent rebuilds of the same graph.
	LockForRebuild(ctx context.Context, graphName string) (bool, error)
}

// GormRepository implements Repository on top of GORM.
type GormRepository struct {
	db *gorm.DB
}

// NewGormRepository creates a new GormRepository.
func NewGormRepository(db *gorm.DB) *GormRepository {
	return &GormRepository{db: db}
}

// CreateBuild registers a new build, failing if graphName already exists.
func (r *GormRepository) CreateBuild(ctx context.Context, graphName string, width int) (*BuildRecord, error) {
	stages := map[Stage]stageStatus{
		StageIngest: {Status: StatusPending},
		StageBP:     {Status: StatusPending},
		StageTree:   {Status: StatusPending},
		StageCore:   {Status: StatusPending},
		StagePublish: {Status: StatusPending},
	}
	blob, err := json.Marshal(stages)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal stage info: %w", err)
	}

	record := &BuildRecord{
		GraphName: graphName,
		Width:     width,
		Status:    StatusPending,
		StageInfo: JSONField(blob),
	}

	if err := r.db.WithContext(ctx).Create(record).Error; err != nil {
		return nil, fmt.Errorf("failed to create build record: %w", err)
	}

	return record, nil
}

// GetBuild retrieves a build record by graph name.
func (r *GormRepository) GetBuild(ctx context.Context, graphName string) (*BuildRecord, error) {
	var record BuildRecord
	err := r.db.WithContext(ctx).Where("graph_name = ?", graphName).First(&record).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, fmt.Errorf("build not found: %s", graphName)
		}
		return nil, fmt.Errorf("failed to get build: %w", err)
	}
	return &record, nil
}

// ListBuilds returns the most recently updated builds, newest first.
func (r *GormRepository) ListBuilds(ctx context.Context, limit int) ([]*BuildRecord, error) {
	var records []*BuildRecord
	err := r.db.WithContext(ctx).Order("updated_at DESC").Limit(limit).Find(&records).Error
	if err != nil {
		return nil, fmt.Errorf("failed to list builds: %w", err)
	}
	return records, nil
}

// StartStage marks a stage as running.
func (r *GormRepository) StartStage(ctx context.Context, graphName string, stage Stage) error {
	return r.mutateStage(ctx, graphName, stage, func(s *stageStatus) {
		now := time.Now()
		s.Status = StatusRunning
		s.StartedAt = &now
		s.Error = ""
	}, StatusRunning)
}

// FinishStage marks a stage completed or failed depending on stageErr.
func (r *GormRepository) FinishStage(ctx context.Context, graphName string, stage Stage, stageErr error) error {
	finalBuildStatus := StatusRunning
	if stageErr != nil {
		finalBuildStatus = StatusFailed
	} else if stage == StagePublish {
		finalBuildStatus = StatusCompleted
	}

	return r.mutateStage(ctx, graphName, stage, func(s *stageStatus) {
		now := time.Now()
		s.EndedAt = &now
		if stageErr != nil {
			s.Status = StatusFailed
			s.Error = stageErr.Error()
		} else {
			s.Status = StatusCompleted
		}
	}, finalBuildStatus)
}

// mutateStage reads-modifies-writes the StageInfo JSON blob under a row lock,
// the same optimistic-free pattern the build catalog's predecessor used for
// master-task suggestion aggregation.
func (r *GormRepository) mutateStage(ctx context.Context, graphName string, stage Stage, mutate func(*stageStatus), buildStatus Status) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var record BuildRecord
		if err := tx.Clauses(clause.Locking{Strength: "UPDATE"}).
			Where("graph_name = ?", graphName).First(&record).Error; err != nil {
			return fmt.Errorf("failed to lock build row: %w", err)
		}

		stages := map[Stage]stageStatus{}
		if len(record.StageInfo) > 0 {
			if err := json.Unmarshal(record.StageInfo, &stages); err != nil {
				return fmt.Errorf("failed to decode stage info: %w", err)
			}
		}

		s := stages[stage]
		mutate(&s)
		stages[stage] = s

		blob, err := json.Marshal(stages)
		if err != nil {
			return fmt.Errorf("failed to encode stage info: %w", err)
		}

		updates := map[string]interface{}{
			"stage_info": JSONField(blob),
			"status":     buildStatus,
			"updated_at": time.Now(),
		}
		if buildStatus == StatusCompleted {
			now := time.Now()
			updates["completed_at"] = &now
		}

		return tx.Model(&BuildRecord{}).
			Where("graph_name = ?", graphName).
			Updates(updates).Error
	})
}

// SetGraphStats records vertex/edge/core counts discovered during ingest/reduce.
func (r *GormRepository) SetGraphStats(ctx context.Context, graphName string, numVertices, numEdges, numCore int64) error {
	result := r.db.WithContext(ctx).
		Model(&BuildRecord{}).
		Where("graph_name = ?", graphName).
		Updates(map[string]interface{}{
			"num_vertices": numVertices,
			"num_edges":    numEdges,
			"num_core":     numCore,
			"updated_at":   time.Now(),
		})
	if result.Error != nil {
		return fmt.Errorf("failed to update graph stats: %w", result.Error)
	}
	if result.RowsAffected == 0 {
		return fmt.Errorf("build not found: %s", graphName)
	}
	return nil
}

// Publish records the storage key where the final artifact set lives.
func (r *GormRepository) Publish(ctx context.Context, graphName string, storageKey string) error {
	now := time.Now()
	result := r.db.WithContext(ctx).
		Model(&BuildRecord{}).
		Where("graph_name = ?", graphName).
		Updates(map[string]interface{}{
			"storage_key":  storageKey,
			"status":       StatusCompleted,
			"completed_at": &now,
			"updated_at":   now,
		})
	if result.Error != nil {
		return fmt.Errorf("failed to publish build: %w", result.Error)
	}
	if result.RowsAffected == 0 {
		return fmt.Errorf("build not found: %s", graphName)
	}
	return nil
}

// LockForRebuild takes an exclusive lock on a build row, returning false if
// it is already running.
func (r *GormRepository) LockForRebuild(ctx context.Context, graphName string) (bool, error) {
	acquired := false
	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var record BuildRecord
		err := tx.Clauses(clause.Locking{Strength: "UPDATE"}).
			Where("graph_name = ? AND status != ?", graphName, StatusRunning).
			First(&record).Error
		if err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return gorm.ErrRecordNotFound
			}
			return err
		}

		acquired = true
		return tx.Model(&BuildRecord{}).
			Where("graph_name = ?", graphName).
			Update("status", StatusRunning).Error
	})

	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return false, nil
		}
		return false, fmt.Errorf("failed to lock build: %w", err)
	}

	return acquired, nil
}
