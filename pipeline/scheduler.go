package pipeline

import (
	"context"
	"os"
	"sync"
	"time"

	"github.com/skillsenselab/scribe/errors"
	"github.com/skillsenselab/scribe/logger"
	"github.com/skillsenselab/scribe/resilience"
	"github.com/skillsenselab/scribe/speech"
)

// SegmentResult is one transcribed segment, addressed by segment index so
// callers can reassemble text in time order regardless of completion order.
type SegmentResult struct {
	Index int
	Text  string
}

// ProgressFunc is invoked after each settled wave with the number of segments
// transcribed so far. Failures to record progress are the caller's concern;
// the scheduler never acts on its return.
type ProgressFunc func(done, total int)

// SchedulerConfig tunes the wave transcription scheduler.
type SchedulerConfig struct {
	// Concurrency caps how many segments are in flight at once.
	Concurrency int `mapstructure:"concurrency"`
	// Retry governs per-segment retries on transient provider failures.
	Retry resilience.RetryConfig `mapstructure:"retry"`
	// Language is forwarded to the speech provider, empty for auto-detect.
	Language string `mapstructure:"language"`
}

// ApplyDefaults fills in zero-valued fields.
func (c *SchedulerConfig) ApplyDefaults() {
	if c.Concurrency <= 0 {
		c.Concurrency = 10
	}
	if c.Retry.MaxAttempts <= 0 {
		c.Retry = resilience.DefaultRetryConfig()
	}
}

// Scheduler transcribes segments in fixed-size waves. A wave of up to
// Concurrency segments runs in parallel and fully settles before the next
// wave starts, keeping memory and provider pressure bounded and making
// progress reporting monotonic.
type Scheduler struct {
	provider speech.Provider
	cfg      SchedulerConfig
	log      *logger.Logger
}

// NewScheduler creates a Scheduler backed by the given speech provider.
func NewScheduler(provider speech.Provider, cfg SchedulerConfig, log *logger.Logger) *Scheduler {
	cfg.ApplyDefaults()
	return &Scheduler{
		provider: provider,
		cfg:      cfg,
		log:      log.WithComponent("scheduler"),
	}
}

// Transcribe runs every segment through the speech provider and returns the
// texts ordered by segment index. The first failing wave aborts the run: the
// error reported is the lowest-indexed failure in that wave, and no further
// waves start. Segment files are deleted as soon as their text is captured.
func (s *Scheduler) Transcribe(ctx context.Context, segments []Segment, onProgress ProgressFunc) ([]SegmentResult, error) {
	total := len(segments)
	results := make([]SegmentResult, total)
	completed := 0

	for waveStart := 0; waveStart < total; waveStart += s.cfg.Concurrency {
		waveEnd := waveStart + s.cfg.Concurrency
		if waveEnd > total {
			waveEnd = total
		}
		wave := segments[waveStart:waveEnd]

		waveErrs := make([]error, len(wave))
		var wg sync.WaitGroup
		for i, seg := range wave {
			wg.Add(1)
			go func() {
				defer wg.Done()
				text, err := s.transcribeSegment(ctx, seg)
				if err != nil {
					waveErrs[i] = err
					return
				}
				results[seg.Index] = SegmentResult{Index: seg.Index, Text: text}
				os.Remove(seg.Path)
			}()
		}
		wg.Wait()

		for i, err := range waveErrs {
			if err != nil {
				return nil, errors.Transcription(wave[i].Index, err)
			}
		}

		completed += len(wave)
		if onProgress != nil {
			onProgress(completed, total)
		}
	}

	return results, nil
}

func (s *Scheduler) transcribeSegment(ctx context.Context, seg Segment) (string, error) {
	attempt := 0
	cfg := s.cfg.Retry
	cfg.RetryIf = errors.IsRetryable
	cfg.OnRetry = func(n int, err error, backoff time.Duration) {
		s.log.Warn("segment transcription retrying", logger.Fields(
			logger.FieldSegment, seg.Index,
			logger.FieldAttempt, n,
			logger.FieldError, err.Error(),
			"backoff", backoff.String(),
		))
	}

	resp, err := resilience.Retry(ctx, cfg, func() (*speech.Response, error) {
		attempt++
		return s.provider.Transcribe(ctx, speech.Request{
			AudioPath: seg.Path,
			Language:  s.cfg.Language,
		})
	})
	if err != nil {
		return "", err
	}

	s.log.Debug("segment transcribed", logger.Fields(
		logger.FieldSegment, seg.Index,
		logger.FieldAttempt, attempt,
	))
	return resp.Text, nil
}
