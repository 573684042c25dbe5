package jobstore

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/skillsenselab/scribe/errors"
)

// MemoryStore implements Store in process memory. Intended for tests and
// single-node development.
type MemoryStore struct {
	mu      sync.Mutex
	records map[string]*Record
}

// NewMemoryStore creates an empty in-memory job store.
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{records: make(map[string]*Record)}
}

// Create inserts a new record. Fails if the id already exists.
func (s *MemoryStore) Create(_ context.Context, rec *Record) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, exists := s.records[rec.ID]; exists {
		return errors.InvalidInput("id", fmt.Sprintf("job %s already exists", rec.ID))
	}

	now := time.Now().UTC()
	rec.CreatedAt = now
	rec.UpdatedAt = now

	clone := *rec
	s.records[rec.ID] = &clone
	return nil
}

// Get returns a copy of the record for id.
func (s *MemoryStore) Get(_ context.Context, id string) (*Record, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	rec, ok := s.records[id]
	if !ok {
		return nil, errors.NotFound("job", id)
	}
	clone := *rec
	return &clone, nil
}

// SetStatus transitions the record's status and replaces its detail text.
func (s *MemoryStore) SetStatus(_ context.Context, id string, status Status, detail string) error {
	return s.update(id, func(rec *Record) {
		rec.Status = status
		rec.Detail = detail
	})
}

// SetProgress records transcription progress counts.
func (s *MemoryStore) SetProgress(_ context.Context, id string, done, total int) error {
	return s.update(id, func(rec *Record) {
		rec.SegmentsDone = done
		rec.SegmentsTotal = total
		rec.Detail = fmt.Sprintf("transcribed %d of %d segments", done, total)
	})
}

// SetTranscript stores the final transcript and completes the record.
func (s *MemoryStore) SetTranscript(_ context.Context, id, text string) error {
	return s.update(id, func(rec *Record) {
		rec.Transcript = text
		rec.Status = StatusCompleted
		rec.Detail = "transcription complete"
	})
}

// MarkFailed transitions the record to failed with an error description.
func (s *MemoryStore) MarkFailed(_ context.Context, id, errMsg string) error {
	return s.update(id, func(rec *Record) {
		rec.Status = StatusFailed
		rec.Error = errMsg
		rec.Detail = "transcription failed"
	})
}

func (s *MemoryStore) update(id string, mutate func(*Record)) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	rec, ok := s.records[id]
	if !ok {
		return errors.NotFound("job", id)
	}
	mutate(rec)
	rec.UpdatedAt = time.Now().UTC()
	return nil
}

// compile-time check
var _ Store = (*MemoryStore)(nil)
