package local

import (
	"context"
	"io"
	"strings"
	"testing"
	"time"
)

func TestUploadDownloadRoundTrip(t *testing.T) {
	store, err := New(t.TempDir())
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	ctx := context.Background()

	if err := store.Upload(ctx, "recordings/call.mp3", strings.NewReader("audio-bytes")); err != nil {
		t.Fatalf("Upload: %v", err)
	}

	rc, err := store.Download(ctx, "recordings/call.mp3")
	if err != nil {
		t.Fatalf("Download: %v", err)
	}
	defer rc.Close()

	data, err := io.ReadAll(rc)
	if err != nil {
		t.Fatalf("ReadAll: %v", err)
	}
	if string(data) != "audio-bytes" {
		t.Fatalf("expected 'audio-bytes', got %q", string(data))
	}
}

func TestSignedURL(t *testing.T) {
	store, err := New(t.TempDir())
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	ctx := context.Background()

	if _, err := store.SignedURL(ctx, "missing.mp3", time.Minute); err == nil {
		t.Fatal("expected error for missing object")
	}

	if err := store.Upload(ctx, "call.mp3", strings.NewReader("x")); err != nil {
		t.Fatalf("Upload: %v", err)
	}
	u, err := store.SignedURL(ctx, "call.mp3", time.Minute)
	if err != nil {
		t.Fatalf("SignedURL: %v", err)
	}
	if !strings.HasPrefix(u, "file://") {
		t.Fatalf("expected file:// URL, got %q", u)
	}
}

func TestDeleteAndExists(t *testing.T) {
	store, err := New(t.TempDir())
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	ctx := context.Background()

	if err := store.Upload(ctx, "a.mp3", strings.NewReader("x")); err != nil {
		t.Fatalf("Upload: %v", err)
	}
	exists, err := store.Exists(ctx, "a.mp3")
	if err != nil || !exists {
		t.Fatalf("expected object to exist, got exists=%v err=%v", exists, err)
	}

	if err := store.Delete(ctx, "a.mp3"); err != nil {
		t.Fatalf("Delete: %v", err)
	}
	exists, err = store.Exists(ctx, "a.mp3")
	if err != nil || exists {
		t.Fatalf("expected object gone, got exists=%v err=%v", exists, err)
	}

	// Deleting a missing object is not an error.
	if err := store.Delete(ctx, "a.mp3"); err != nil {
		t.Fatalf("Delete missing: %v", err)
	}
}
