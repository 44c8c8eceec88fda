// Package importjob tracks one file-processing attempt through its lifecycle:
// pending -> processing -> completed | failed. Jobs are owned exclusively by
// the import orchestrator and are terminal once completed or failed.
package importjob

import (
	"errors"
	"time"

	"github.com/google/uuid"
)

// Status is the lifecycle state of an import job
type Status string

const (
	StatusPending    Status = "pending"
	StatusProcessing Status = "processing"
	StatusCompleted  Status = "completed"
	StatusFailed     Status = "failed"
)

// Common errors
var (
	ErrEmptyFilename = errors.New("filename cannot be empty")
	ErrJobTerminal   = errors.New("import job is already completed or failed")
)

// Job identifies one file-processing attempt
type Job struct {
	ID              uuid.UUID  `json:"id"`
	Filename        string     `json:"filename"`
	StoredFilename  string     `json:"stored_filename"`
	AccountID       *uuid.UUID `json:"account_id,omitempty"`
	FileSize        int64      `json:"file_size"`
	Status          Status     `json:"status"`
	RecordsImported *int       `json:"records_imported,omitempty"`
	RecordsSkipped  *int       `json:"records_skipped,omitempty"`
	ErrorMessage    string     `json:"error_message,omitempty"`
	ImportedAt      time.Time  `json:"imported_at"`
	ProcessedAt     *time.Time `json:"processed_at,omitempty"`
}

// NewJob creates a pending import job for an uploaded file
func NewJob(filename, storedFilename string, fileSize int64) (*Job, error) {
	if filename == "" {
		return nil, ErrEmptyFilename
	}

	return &Job{
		ID:             uuid.New(),
		Filename:       filename,
		StoredFilename: storedFilename,
		FileSize:       fileSize,
		Status:         StatusPending,
		ImportedAt:     time.Now(),
	}, nil
}

// MarkProcessing transitions the job to processing
func (j *Job) MarkProcessing() error {
	if j.Terminal() {
		return ErrJobTerminal
	}
	j.Status = StatusProcessing
	return nil
}

// Complete marks the job completed with exact imported/skipped counts
func (j *Job) Complete(imported, skipped int) error {
	if j.Terminal() {
		return ErrJobTerminal
	}
	now := time.Now()
	j.Status = StatusCompleted
	j.RecordsImported = &imported
	j.RecordsSkipped = &skipped
	j.ProcessedAt = &now
	return nil
}

// Fail marks the job failed. Counts stay unset: a failed job reports failure,
// never partial success.
func (j *Job) Fail(message string) error {
	if j.Terminal() {
		return ErrJobTerminal
	}
	now := time.Now()
	j.Status = StatusFailed
	j.ErrorMessage = message
	j.RecordsImported = nil
	j.RecordsSkipped = nil
	j.ProcessedAt = &now
	return nil
}

// Terminal reports whether the job reached a terminal status
func (j *Job) Terminal() bool {
	return j.Status == StatusCompleted || j.Status == StatusFailed
}
