package pipeline

import (
	"context"
	"net/http"
	"net/http/httptest"
	"os"
	"strings"
	"testing"
	"time"

	apperrors "github.com/skillsenselab/scribe/errors"
	"github.com/skillsenselab/scribe/logger"
	"github.com/skillsenselab/scribe/objectstore/local"
)

// urlStore is an objectstore.Store stub that hands out a fixed signed URL.
type urlStore struct {
	local.Store
	url string
	err error
}

func (s *urlStore) SignedURL(context.Context, string, time.Duration) (string, error) {
	return s.url, s.err
}

func TestAcquire_DownloadsOverHTTP(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		_, _ = w.Write([]byte("audio bytes"))
	}))
	defer srv.Close()

	ws := testWorkspace(t)
	a := NewAcquirer(&urlStore{url: srv.URL + "/signed"}, logger.NewDefault("test"))

	path, err := a.Acquire(context.Background(), "calls/rec-1.mp3", ws)
	if err != nil {
		t.Fatalf("Acquire: %v", err)
	}
	if !strings.HasSuffix(path, "source.mp3") {
		t.Errorf("local path = %q, want source.mp3 suffix", path)
	}
	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("read downloaded file: %v", err)
	}
	if string(data) != "audio bytes" {
		t.Errorf("downloaded content = %q", data)
	}
}

func TestAcquire_LocalBackendFileURL(t *testing.T) {
	base := t.TempDir()
	store, err := local.New(base)
	if err != nil {
		t.Fatalf("local store: %v", err)
	}
	if err := store.Upload(context.Background(), "calls/rec-2.wav", strings.NewReader("wav data")); err != nil {
		t.Fatalf("upload: %v", err)
	}

	ws := testWorkspace(t)
	a := NewAcquirer(store, logger.NewDefault("test"))

	path, err := a.Acquire(context.Background(), "calls/rec-2.wav", ws)
	if err != nil {
		t.Fatalf("Acquire: %v", err)
	}
	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("read copied file: %v", err)
	}
	if string(data) != "wav data" {
		t.Errorf("copied content = %q", data)
	}
}

func TestAcquire_Non200IsDownloadError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		http.Error(w, "expired", http.StatusForbidden)
	}))
	defer srv.Close()

	ws := testWorkspace(t)
	a := NewAcquirer(&urlStore{url: srv.URL}, logger.NewDefault("test"))

	_, err := a.Acquire(context.Background(), "calls/rec-3.mp3", ws)
	if err == nil {
		t.Fatal("expected error for 403 response")
	}
	appErr, ok := apperrors.AsAppError(err)
	if !ok || appErr.Code != apperrors.ErrCodeDownload {
		t.Fatalf("got %v, want download error", err)
	}
	if got := appErr.Details["status_code"]; got != http.StatusForbidden {
		t.Errorf("status_code detail = %v, want 403", got)
	}
}

func TestAcquire_EmptyBodyIsIntegrityError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(http.ResponseWriter, *http.Request) {}))
	defer srv.Close()

	ws := testWorkspace(t)
	a := NewAcquirer(&urlStore{url: srv.URL}, logger.NewDefault("test"))

	_, err := a.Acquire(context.Background(), "calls/rec-4.mp3", ws)
	if err == nil {
		t.Fatal("expected error for empty download")
	}
	appErr, ok := apperrors.AsAppError(err)
	if !ok || appErr.Code != apperrors.ErrCodeIntegrity {
		t.Fatalf("got %v, want integrity error", err)
	}
}

func TestAcquire_SignedURLFailureIsStorageError(t *testing.T) {
	ws := testWorkspace(t)
	a := NewAcquirer(&urlStore{err: apperrors.Storage("sign", nil)}, logger.NewDefault("test"))

	_, err := a.Acquire(context.Background(), "calls/rec-5.mp3", ws)
	if err == nil {
		t.Fatal("expected error")
	}
	appErr, ok := apperrors.AsAppError(err)
	if !ok || appErr.Code != apperrors.ErrCodeStorage {
		t.Fatalf("got %v, want storage error", err)
	}
}
