package usecase

import (
	"fmt"
	"time"

	"github.com/google/uuid"

	"firds/workers/exporter/internal/domain"
)

// Stage names one step of an export run
type Stage string

const (
	StageIndexFetch      Stage = "index_fetch"
	StageLocateReference Stage = "locate_reference"
	StageArchiveFetch    Stage = "archive_fetch"
	StageExtractFields   Stage = "extract_fields"
	StageSink            Stage = "sink"
)

// Stages lists every stage in execution order
var Stages = []Stage{
	StageIndexFetch,
	StageLocateReference,
	StageArchiveFetch,
	StageExtractFields,
	StageSink,
}

type StageStatus string

const (
	StatusSucceeded StageStatus = "succeeded"
	StatusFailed    StageStatus = "failed"
	StatusSkipped   StageStatus = "skipped"
)

// StageResult records the outcome of one stage
type StageResult struct {
	Stage    Stage         `json:"stage"`
	Status   StageStatus   `json:"status"`
	Error    string        `json:"error,omitempty"`
	Duration time.Duration `json:"duration_ns"`

	err error
}

// Report summarises an export run
type Report struct {
	RunID       string             `json:"run_id"`
	StartedAt   time.Time          `json:"started_at"`
	FinishedAt  time.Time          `json:"finished_at"`
	Stages      []StageResult      `json:"stages"`
	Reference   *domain.IndexEntry `json:"reference,omitempty"`
	Records     int                `json:"records"`
	Destination string             `json:"destination,omitempty"`
}

func newReport(startedAt time.Time) *Report {
	return &Report{
		RunID:     uuid.NewString(),
		StartedAt: startedAt,
		Stages:    make([]StageResult, 0, len(Stages)),
	}
}

// Succeeded reports whether every stage succeeded
func (r *Report) Succeeded() bool {
	if len(r.Stages) != len(Stages) {
		return false
	}
	for _, result := range r.Stages {
		if result.Status != StatusSucceeded {
			return false
		}
	}
	return true
}

// Err returns the first stage failure, or nil
func (r *Report) Err() error {
	for _, result := range r.Stages {
		if result.Status == StatusFailed {
			return fmt.Errorf("stage %s failed: %w", result.Stage, result.err)
		}
	}
	return nil
}

// Result returns the recorded outcome of stage
func (r *Report) Result(stage Stage) (StageResult, bool) {
	for _, result := range r.Stages {
		if result.Stage == stage {
			return result, true
		}
	}
	return StageResult{}, false
}

func (r *Report) record(stage Stage, status StageStatus, err error, duration time.Duration) {
	result := StageResult{
		Stage:    stage,
		Status:   status,
		Duration: duration,
		err:      err,
	}
	if err != nil {
		result.Error = err.Error()
	}
	r.Stages = append(r.Stages, result)
}
