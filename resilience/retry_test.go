package resilience

import (
	"context"
	"errors"
	"testing"
	"time"

	apperrors "github.com/skillsenselab/scribe/errors"
)

func fastConfig(maxAttempts int) RetryConfig {
	return RetryConfig{
		MaxAttempts:    maxAttempts,
		InitialBackoff: time.Millisecond,
		MaxBackoff:     5 * time.Millisecond,
		BackoffFactor:  2.0,
	}
}

func TestRetry_SucceedsFirstAttempt(t *testing.T) {
	calls := 0
	result, err := Retry(context.Background(), fastConfig(3), func() (string, error) {
		calls++
		return "ok", nil
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if result != "ok" || calls != 1 {
		t.Fatalf("expected one successful call, got result=%q calls=%d", result, calls)
	}
}

func TestRetry_SucceedsAfterRetries(t *testing.T) {
	calls := 0
	result, err := Retry(context.Background(), fastConfig(3), func() (int, error) {
		calls++
		if calls < 3 {
			return 0, errors.New("transient")
		}
		return 42, nil
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if result != 42 || calls != 3 {
		t.Fatalf("expected success on third call, got result=%d calls=%d", result, calls)
	}
}

func TestRetry_ExhaustsAttempts(t *testing.T) {
	calls := 0
	lastErr := errors.New("still broken")
	_, err := Retry(context.Background(), fastConfig(3), func() (int, error) {
		calls++
		return 0, lastErr
	})
	if !errors.Is(err, lastErr) {
		t.Fatalf("expected last error, got %v", err)
	}
	if calls != 3 {
		t.Fatalf("expected 3 attempts, got %d", calls)
	}
}

func TestRetryFunc_SucceedsAfterRetries(t *testing.T) {
	calls := 0
	err := RetryFunc(context.Background(), fastConfig(3), func() error {
		calls++
		if calls < 2 {
			return errors.New("transient")
		}
		return nil
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if calls != 2 {
		t.Fatalf("expected success on second call, got calls=%d", calls)
	}
}

func TestRetry_NonRetryableFailsImmediately(t *testing.T) {
	cfg := fastConfig(5)
	cfg.RetryIf = apperrors.IsRetryable

	calls := 0
	_, err := Retry(context.Background(), cfg, func() (int, error) {
		calls++
		return 0, apperrors.Integrity("/tmp/a.mp3", "zero length")
	})
	if err == nil {
		t.Fatal("expected error")
	}
	if calls != 1 {
		t.Fatalf("non-retryable error should not be retried, got %d calls", calls)
	}
}

func TestRetry_RetryableAppErrors(t *testing.T) {
	cfg := fastConfig(3)
	cfg.RetryIf = apperrors.IsRetryable

	calls := 0
	_, err := Retry(context.Background(), cfg, func() (int, error) {
		calls++
		return 0, apperrors.RateLimited()
	})
	if err == nil {
		t.Fatal("expected error after exhausting attempts")
	}
	if calls != 3 {
		t.Fatalf("retryable error should use all attempts, got %d calls", calls)
	}
}

func TestRetry_ContextCancellation(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())

	cfg := fastConfig(10)
	cfg.InitialBackoff = 50 * time.Millisecond

	calls := 0
	done := make(chan error, 1)
	go func() {
		_, err := Retry(ctx, cfg, func() (int, error) {
			calls++
			return 0, errors.New("transient")
		})
		done <- err
	}()

	time.Sleep(10 * time.Millisecond)
	cancel()

	select {
	case err := <-done:
		if !errors.Is(err, context.Canceled) {
			t.Fatalf("expected context.Canceled, got %v", err)
		}
	case <-time.After(time.Second):
		t.Fatal("retry did not observe cancellation")
	}
}

func TestRetry_OnRetryCallback(t *testing.T) {
	var attempts []int
	cfg := fastConfig(3)
	cfg.OnRetry = func(attempt int, err error, backoff time.Duration) {
		attempts = append(attempts, attempt)
	}

	_, _ = Retry(context.Background(), cfg, func() (int, error) {
		return 0, errors.New("transient")
	})

	// Called before each retry, never after the final attempt.
	if len(attempts) != 2 || attempts[0] != 1 || attempts[1] != 2 {
		t.Fatalf("expected callbacks for attempts [1 2], got %v", attempts)
	}
}

func TestCalculateBackoff_Doubles(t *testing.T) {
	cfg := RetryConfig{
		InitialBackoff: 100 * time.Millisecond,
		MaxBackoff:     10 * time.Second,
		BackoffFactor:  2.0,
	}
	first := calculateBackoff(1, cfg)
	second := calculateBackoff(2, cfg)
	third := calculateBackoff(3, cfg)
	if first != 100*time.Millisecond || second != 200*time.Millisecond || third != 400*time.Millisecond {
		t.Fatalf("expected doubling backoff, got %v %v %v", first, second, third)
	}
}

func TestCalculateBackoff_CappedAtMax(t *testing.T) {
	cfg := RetryConfig{
		InitialBackoff: time.Second,
		MaxBackoff:     2 * time.Second,
		BackoffFactor:  10.0,
	}
	if got := calculateBackoff(5, cfg); got != 2*time.Second {
		t.Fatalf("expected cap at 2s, got %v", got)
	}
}
