package jobstore

import (
	"context"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"

	"github.com/skillsenselab/scribe/errors"
	"github.com/skillsenselab/scribe/logger"
)

func newTestStore(t *testing.T, ttl time.Duration) (*RedisStore, *miniredis.Miniredis) {
	t.Helper()
	mr := miniredis.RunT(t)
	store := NewRedisStore(Config{Addr: mr.Addr(), TTL: ttl}, logger.NewDefault("test"))
	t.Cleanup(func() { store.Close() })
	return store, mr
}

func TestRedisStore_CreateAndGet(t *testing.T) {
	store, _ := newTestStore(t, 0)
	ctx := context.Background()

	rec := &Record{
		ID:            "job-1",
		RecordingPath: "recordings/call.mp3",
		Language:      "en",
		Status:        StatusCreated,
	}
	if err := store.Create(ctx, rec); err != nil {
		t.Fatalf("Create: %v", err)
	}

	got, err := store.Get(ctx, "job-1")
	if err != nil {
		t.Fatalf("Get: %v", err)
	}
	if got.RecordingPath != "recordings/call.mp3" || got.Status != StatusCreated {
		t.Fatalf("unexpected record: %+v", got)
	}
	if got.CreatedAt.IsZero() || got.UpdatedAt.IsZero() {
		t.Fatal("expected timestamps to be set")
	}
}

func TestRedisStore_CreateDuplicate(t *testing.T) {
	store, _ := newTestStore(t, 0)
	ctx := context.Background()

	rec := &Record{ID: "job-1", Status: StatusCreated}
	if err := store.Create(ctx, rec); err != nil {
		t.Fatalf("Create: %v", err)
	}
	if err := store.Create(ctx, &Record{ID: "job-1"}); err == nil {
		t.Fatal("expected error creating duplicate job")
	}
}

func TestRedisStore_GetMissing(t *testing.T) {
	store, _ := newTestStore(t, 0)

	_, err := store.Get(context.Background(), "nope")
	appErr, ok := errors.AsAppError(err)
	if !ok || appErr.Code != errors.ErrCodeNotFound {
		t.Fatalf("expected NOT_FOUND, got %v", err)
	}
}

func TestRedisStore_StatusTransitions(t *testing.T) {
	store, _ := newTestStore(t, 0)
	ctx := context.Background()

	if err := store.Create(ctx, &Record{ID: "job-1", Status: StatusCreated}); err != nil {
		t.Fatalf("Create: %v", err)
	}

	if err := store.SetStatus(ctx, "job-1", StatusDownloading, "downloading recording"); err != nil {
		t.Fatalf("SetStatus: %v", err)
	}
	if err := store.SetProgress(ctx, "job-1", 2, 4); err != nil {
		t.Fatalf("SetProgress: %v", err)
	}

	got, err := store.Get(ctx, "job-1")
	if err != nil {
		t.Fatalf("Get: %v", err)
	}
	if got.Status != StatusDownloading {
		t.Fatalf("expected downloading, got %s", got.Status)
	}
	if got.SegmentsDone != 2 || got.SegmentsTotal != 4 {
		t.Fatalf("unexpected progress: %d/%d", got.SegmentsDone, got.SegmentsTotal)
	}

	if err := store.SetTranscript(ctx, "job-1", "hello world"); err != nil {
		t.Fatalf("SetTranscript: %v", err)
	}
	got, _ = store.Get(ctx, "job-1")
	if got.Status != StatusCompleted || got.Transcript != "hello world" {
		t.Fatalf("unexpected terminal record: %+v", got)
	}
}

func TestRedisStore_MarkFailed(t *testing.T) {
	store, _ := newTestStore(t, 0)
	ctx := context.Background()

	if err := store.Create(ctx, &Record{ID: "job-1", Status: StatusCreated}); err != nil {
		t.Fatalf("Create: %v", err)
	}
	if err := store.MarkFailed(ctx, "job-1", "PROBE_ERROR: unreadable file"); err != nil {
		t.Fatalf("MarkFailed: %v", err)
	}

	got, _ := store.Get(ctx, "job-1")
	if got.Status != StatusFailed || got.Error != "PROBE_ERROR: unreadable file" {
		t.Fatalf("unexpected failed record: %+v", got)
	}
	if !got.Status.Terminal() {
		t.Fatal("failed should be terminal")
	}
}

func TestRedisStore_TerminalTTL(t *testing.T) {
	store, mr := newTestStore(t, time.Hour)
	ctx := context.Background()

	if err := store.Create(ctx, &Record{ID: "job-1", Status: StatusCreated}); err != nil {
		t.Fatalf("Create: %v", err)
	}

	// Non-terminal updates keep the record forever.
	if err := store.SetStatus(ctx, "job-1", StatusTranscribing, ""); err != nil {
		t.Fatalf("SetStatus: %v", err)
	}
	if ttl := mr.TTL("scribe:job:job-1"); ttl != 0 {
		t.Fatalf("expected no TTL on live job, got %v", ttl)
	}

	// Terminal state starts the expiry clock.
	if err := store.SetTranscript(ctx, "job-1", "done"); err != nil {
		t.Fatalf("SetTranscript: %v", err)
	}
	if ttl := mr.TTL("scribe:job:job-1"); ttl != time.Hour {
		t.Fatalf("expected 1h TTL on terminal job, got %v", ttl)
	}
}
