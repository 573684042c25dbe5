// Package jobstore persists transcription job records. Records are JSON
// documents keyed by job id; the reference backend is Redis, with an
// in-memory implementation for tests.
package jobstore

import (
	"context"
	"time"
)

// Status is the structured job state. Consumers switch on this enum; the
// free-form Detail field exists only for humans and is never parsed.
type Status string

const (
	StatusCreated      Status = "created"
	StatusDownloading  Status = "downloading"
	StatusProbing      Status = "probing"
	StatusSegmenting   Status = "segmenting"
	StatusTranscribing Status = "transcribing"
	StatusStitching    Status = "stitching"
	StatusCompleted    Status = "completed"
	StatusFailed       Status = "failed"
)

// Terminal reports whether the status is an end state.
func (s Status) Terminal() bool {
	return s == StatusCompleted || s == StatusFailed
}

// Record is one transcription job.
type Record struct {
	// ID is the job identifier.
	ID string `json:"id"`
	// RecordingPath is the object store key of the source recording.
	RecordingPath string `json:"recording_path"`
	// TranscriptPath is the object store key the final transcript is copied
	// to, when configured. Empty otherwise.
	TranscriptPath string `json:"transcript_path,omitempty"`
	// Language is the optional language hint passed to the speech API.
	Language string `json:"language,omitempty"`
	// Status is the structured job state.
	Status Status `json:"status"`
	// Detail is a human-readable progress description.
	Detail string `json:"detail,omitempty"`
	// SegmentsDone and SegmentsTotal track transcription progress.
	SegmentsDone  int `json:"segments_done"`
	SegmentsTotal int `json:"segments_total"`
	// Transcript holds the final stitched text once the job completes.
	Transcript string `json:"transcript,omitempty"`
	// Error describes the failure for jobs in the failed state.
	Error string `json:"error,omitempty"`

	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// Store persists job records.
type Store interface {
	// Create inserts a new record. Fails if the id already exists.
	Create(ctx context.Context, rec *Record) error

	// Get returns the record for id, or a not-found error.
	Get(ctx context.Context, id string) (*Record, error)

	// SetStatus transitions the record's status and replaces its detail text.
	SetStatus(ctx context.Context, id string, status Status, detail string) error

	// SetProgress records transcription progress counts.
	SetProgress(ctx context.Context, id string, done, total int) error

	// SetTranscript stores the final transcript text and transitions the
	// record to completed.
	SetTranscript(ctx context.Context, id, text string) error

	// MarkFailed transitions the record to failed with an error description.
	MarkFailed(ctx context.Context, id, errMsg string) error
}
