package errors

import (
	stderrors "errors"
	"fmt"
	"net/http"
	"testing"
)

func TestAppError_Error(t *testing.T) {
	e := New(ErrCodeProbe, "probe failed", http.StatusUnprocessableEntity)
	if got := e.Error(); got != "PROBE_ERROR: probe failed" {
		t.Fatalf("unexpected error string: %q", got)
	}

	cause := stderrors.New("exit status 1")
	e = e.WithCause(cause)
	want := "PROBE_ERROR: probe failed (cause: exit status 1)"
	if got := e.Error(); got != want {
		t.Fatalf("expected %q, got %q", want, got)
	}
}

func TestAppError_Unwrap(t *testing.T) {
	cause := stderrors.New("connection reset")
	e := Storage("signed URL", cause)

	if !stderrors.Is(e, cause) {
		t.Fatal("expected errors.Is to find the cause")
	}

	wrapped := fmt.Errorf("job failed: %w", e)
	appErr, ok := AsAppError(wrapped)
	if !ok {
		t.Fatalf("expected AsAppError to succeed on %v", wrapped)
	}
	if appErr.Code != ErrCodeStorage {
		t.Fatalf("expected STORAGE_ERROR, got %s", appErr.Code)
	}
}

func TestTranscription_CarriesSegmentIndex(t *testing.T) {
	e := Transcription(3, stderrors.New("bad audio"))
	if e.Code != ErrCodeTranscription {
		t.Fatalf("expected TRANSCRIPTION_ERROR, got %s", e.Code)
	}
	idx, ok := e.Details["segment_index"].(int)
	if !ok || idx != 3 {
		t.Fatalf("expected segment_index detail 3, got %v", e.Details["segment_index"])
	}
}

func TestRetryableCodes(t *testing.T) {
	tests := []struct {
		code      ErrorCode
		retryable bool
	}{
		{ErrCodeTimeout, true},
		{ErrCodeRateLimited, true},
		{ErrCodeConnectionFailed, true},
		{ErrCodeExternalService, true},
		{ErrCodeIntegrity, false},
		{ErrCodeProbe, false},
		{ErrCodeSegmentation, false},
		{ErrCodeInvalidInput, false},
		{ErrCodeInternal, false},
	}
	for _, tt := range tests {
		if got := IsRetryableCode(tt.code); got != tt.retryable {
			t.Errorf("IsRetryableCode(%s) = %v, want %v", tt.code, got, tt.retryable)
		}
	}
}

func TestIsRetryable(t *testing.T) {
	if !IsRetryable(RateLimited()) {
		t.Fatal("rate-limited errors should be retryable")
	}
	if IsRetryable(Integrity("/tmp/a.mp3", "zero length")) {
		t.Fatal("integrity errors should not be retryable")
	}
	if IsRetryable(stderrors.New("plain")) {
		t.Fatal("plain errors should not be retryable")
	}
}

func TestToResponse(t *testing.T) {
	e := Probe("/tmp/a.mp3", stderrors.New("exit status 1"))
	resp := e.ToResponse()
	if resp.Error.Code != ErrCodeProbe {
		t.Fatalf("expected PROBE_ERROR, got %s", resp.Error.Code)
	}
	if resp.Error.Retryable {
		t.Fatal("probe errors should not be retryable in response")
	}
	if resp.Error.Details["path"] != "/tmp/a.mp3" {
		t.Fatalf("expected path detail, got %v", resp.Error.Details)
	}
}
