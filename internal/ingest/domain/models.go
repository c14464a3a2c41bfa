// Package domain contains the ingestion run audit model.
package domain

import (
	"context"
	"errors"
	"time"

	"github.com/bwmarrin/snowflake"
	"github.com/google/uuid"
	"gorm.io/datatypes"
)

type RunStatus string

const (
	RunStatusSucceeded RunStatus = "succeeded"
	RunStatusFailed    RunStatus = "failed"
)

// IngestionRun records one file ingestion attempt, successful or not.
// Counters mirror the mapper's tallies so partial data quality problems
// stay visible without failing the run.
type IngestionRun struct {
	ID    uuid.UUID    `json:"id" gorm:"type:uuid;primaryKey"`
	OrgID snowflake.ID `json:"org_id" gorm:"not null;index:idx_ingestion_runs_org"`

	Bucket string `json:"bucket" gorm:"type:text;not null"`
	Path   string `json:"path" gorm:"type:text;not null"`

	Status RunStatus `json:"status" gorm:"type:text;not null"`
	Error  *string   `json:"error,omitempty" gorm:"type:text"`

	RowCount      int   `json:"row_count" gorm:"not null;default:0"`
	Inserted      int64 `json:"inserted" gorm:"not null;default:0"`
	Duplicates    int64 `json:"duplicates" gorm:"not null;default:0"`
	SkippedRows   int   `json:"skipped_rows" gorm:"not null;default:0"`
	InvalidDates  int   `json:"invalid_dates" gorm:"not null;default:0"`
	UnknownStates int   `json:"unknown_states" gorm:"not null;default:0"`

	StatesCrossed datatypes.JSON `json:"states_crossed" gorm:"type:jsonb"`

	StartedAt  time.Time `json:"started_at" gorm:"not null"`
	FinishedAt time.Time `json:"finished_at" gorm:"not null"`
}

func (IngestionRun) TableName() string { return "ingestion_runs" }

// RunRequest points at an uploaded file to ingest.
type RunRequest struct {
	OrgID  snowflake.ID `json:"-"`
	Bucket string       `json:"bucket"`
	Path   string       `json:"path"`
}

// RunResult is the API-facing outcome of one ingestion.
type RunResult struct {
	RunID         string   `json:"run_id"`
	Success       bool     `json:"success"`
	RowCount      int      `json:"row_count"`
	Inserted      int64    `json:"inserted"`
	Duplicates    int64    `json:"duplicates"`
	SkippedRows   int      `json:"skipped_rows"`
	InvalidDates  int      `json:"invalid_dates"`
	UnknownStates int      `json:"unknown_states"`
	StatesCrossed []string `json:"states_crossed"`
}

type Service interface {
	// Run fetches the file, appends its rows to the transaction store
	// and triggers a full nexus recomputation. Every attempt leaves an
	// IngestionRun row behind.
	Run(ctx context.Context, req RunRequest) (*RunResult, error)
	ListRuns(ctx context.Context, orgID snowflake.ID) ([]IngestionRun, error)
}

type Repository interface {
	Create(ctx context.Context, run *IngestionRun) error
	ListByOrg(ctx context.Context, orgID snowflake.ID) ([]IngestionRun, error)
}

var (
	ErrInvalidOrganization = errors.New("invalid_organization")
	ErrMissingPath         = errors.New("missing_path")
	ErrUnsupportedFormat   = errors.New("unsupported_file_format")
)
