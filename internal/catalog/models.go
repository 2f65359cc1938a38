// Package catalog persists index-build metadata: one record per named graph
// tracking which of the five build stages (ingest, bp, reduce+tree, core
// labeling, publish) have completed and where their artifacts live.
package catalog

import (
	"time"
)

// Stage identifies one step of the build pipeline.
type Stage string

const (
	StageIngest Stage = "ingest"
	StageBP     Stage = "bp"
	StageTree   Stage = "tree"
	StageCore   Stage = "core"
	StagePublish Stage = "publish"
)

// Status is the lifecycle state of a build or of an individual stage.
type Status string

const (
	StatusPending   Status = "pending"
	StatusRunning   Status = "running"
	StatusCompleted Status = "completed"
	StatusFailed    Status = "failed"
)

// BuildRecord is the gorm model for a tracked index build.
type BuildRecord struct {
	ID          int64     `gorm:"primaryKey;autoIncrement"`
	GraphName   string    `gorm:"column:graph_name;uniqueIndex;size:255"`
	Width       int       `gorm:"column:width"` // W used for this build
	NumVertices int64     `gorm:"column:num_vertices"`
	NumEdges    int64     `gorm:"column:num_edges"`
	NumCore     int64     `gorm:"column:num_core"` // |core| after peeling
	Status      Status    `gorm:"column:status;size:32"`
	StageInfo   JSONField `gorm:"column:stage_info;type:text"` // stage -> stageStatus JSON blob
	StorageKey  string    `gorm:"column:storage_key;size:255"` // prefix under the artifact store
	ErrorInfo   string    `gorm:"column:error_info;type:text"`
	CreatedAt   time.Time `gorm:"column:created_at"`
	UpdatedAt   time.Time `gorm:"column:updated_at"`
	CompletedAt *time.Time `gorm:"column:completed_at"`
}

// TableName overrides gorm's default pluralization.
func (BuildRecord) TableName() string {
	return "index_builds"
}

// stageStatus is the JSON-encoded value stored per stage in StageInfo.
type stageStatus struct {
	Status    Status     `json:"status"`
	StartedAt *time.Time `json:"started_at,omitempty"`
	EndedAt   *time.Time `json:"ended_at,omitempty"`
	Error     string     `json:"error,omitempty"`
}

// JSONField is a raw JSON column, mirroring the teacher's pattern of storing
// semi-structured data (call stacks, suggestion groups) as opaque text/JSON
// columns rather than modeling every stage as its own table.
type JSONField []byte

// Scan implements sql.Scanner.
func (j *JSONField) Scan(value interface{}) error {
	if value == nil {
		*j = nil
		return nil
	}
	switch v := value.(type) {
	case []byte:
		*j = append((*j)[:0], v...)
	case string:
		*j = JSONField(v)
	}
	return nil
}

// Value implements driver.Valuer.
func (j JSONField) Value() (interface{}, error) {
	if len(j) == 0 {
		return "{}", nil
	}
	return string(j), nil
}
