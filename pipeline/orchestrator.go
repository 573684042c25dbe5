package pipeline

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/skillsenselab/scribe/errors"
	"github.com/skillsenselab/scribe/jobstore"
	"github.com/skillsenselab/scribe/logger"
	"github.com/skillsenselab/scribe/media"
	"github.com/skillsenselab/scribe/objectstore"
	"github.com/skillsenselab/scribe/resilience"
)

// Narrow views of the pipeline stages, so tests can substitute any stage
// without touching the others.
type acquirer interface {
	Acquire(ctx context.Context, recordingPath string, ws *Workspace) (string, error)
}

type prober interface {
	Probe(ctx context.Context, path string) (media.AudioInfo, error)
}

type segmenter interface {
	Segment(ctx context.Context, srcPath string, info media.AudioInfo, ws *Workspace) ([]Segment, error)
}

type transcriber interface {
	Transcribe(ctx context.Context, segments []Segment, onProgress ProgressFunc) ([]SegmentResult, error)
}

// Orchestrator drives a transcription job through its phases, recording each
// transition in the job store. Status writes are best effort: a flaky store
// never aborts a job that is otherwise making progress.
type Orchestrator struct {
	jobs        jobstore.Store
	objects     objectstore.Store
	acquirer    acquirer
	prober      prober
	segmenter   segmenter
	transcriber transcriber
	stitcher    *Stitcher
	workDir     string
	log         *logger.Logger
}

// OrchestratorConfig wires an Orchestrator.
type OrchestratorConfig struct {
	Jobs        jobstore.Store
	Objects     objectstore.Store
	Acquirer    acquirer
	Prober      prober
	Segmenter   segmenter
	Transcriber transcriber
	Stitcher    *Stitcher
	// WorkDir is the parent directory for per-job scratch workspaces.
	WorkDir string
	Logger  *logger.Logger
}

// NewOrchestrator creates an Orchestrator from its wired stages.
func NewOrchestrator(cfg OrchestratorConfig) *Orchestrator {
	return &Orchestrator{
		jobs:        cfg.Jobs,
		objects:     cfg.Objects,
		acquirer:    cfg.Acquirer,
		prober:      cfg.Prober,
		segmenter:   cfg.Segmenter,
		transcriber: cfg.Transcriber,
		stitcher:    cfg.Stitcher,
		workDir:     cfg.WorkDir,
		log:         cfg.Logger.WithComponent("orchestrator"),
	}
}

// Run executes the job with the given id to completion. It always leaves the
// record in a terminal state when it returns, unless the job store itself is
// unreachable. The returned error mirrors what was written to the record.
func (o *Orchestrator) Run(ctx context.Context, jobID string) error {
	log := o.log.WithJob(jobID)
	started := time.Now()

	rec, err := o.jobs.Get(ctx, jobID)
	if err != nil {
		log.Error("job record lookup failed", logger.ErrorFields("get", err))
		return err
	}

	ws, err := NewWorkspace(o.workDir, jobID)
	if err != nil {
		return o.fail(ctx, log, jobID, errors.Storage("create workspace", err))
	}
	defer ws.Cleanup(log)

	transcript, err := o.run(ctx, log, rec, ws)
	if err != nil {
		return o.fail(ctx, log, jobID, err)
	}

	if err := o.jobs.SetTranscript(ctx, jobID, transcript); err != nil {
		log.Error("storing transcript failed", logger.ErrorFields("set_transcript", err))
		// Don't leave the record stuck in stitching; the store may have
		// recovered enough to take the terminal write.
		return o.fail(ctx, log, jobID, err)
	}

	log.Info("job completed", logger.DurationFields("job", time.Since(started)))
	return nil
}

func (o *Orchestrator) run(ctx context.Context, log *logger.Logger, rec *jobstore.Record, ws *Workspace) (string, error) {
	o.setStatus(ctx, log, rec.ID, jobstore.StatusDownloading, "fetching recording")
	srcPath, err := o.acquirer.Acquire(ctx, rec.RecordingPath, ws)
	if err != nil {
		return "", err
	}

	o.setStatus(ctx, log, rec.ID, jobstore.StatusProbing, "inspecting audio")
	info, err := o.prober.Probe(ctx, srcPath)
	if err != nil {
		return "", err
	}
	log.Info("recording probed", logger.Fields(
		"duration_s", info.DurationSeconds,
		"format", info.Format,
	))

	o.setStatus(ctx, log, rec.ID, jobstore.StatusSegmenting, "splitting audio")
	segments, err := o.segmenter.Segment(ctx, srcPath, info, ws)
	if err != nil {
		return "", err
	}
	log.Info("recording segmented", logger.Fields("segments", len(segments)))

	o.setStatus(ctx, log, rec.ID, jobstore.StatusTranscribing,
		fmt.Sprintf("transcribing %d segments", len(segments)))
	o.setProgress(ctx, log, rec.ID, 0, len(segments))

	results, err := o.transcriber.Transcribe(ctx, segments, func(done, total int) {
		o.setProgress(ctx, log, rec.ID, done, total)
	})
	if err != nil {
		return "", err
	}

	o.setStatus(ctx, log, rec.ID, jobstore.StatusStitching, "assembling transcript")
	texts := make([]string, len(results))
	for i, r := range results {
		texts[i] = r.Text
	}
	transcript := o.stitcher.Stitch(texts)

	if rec.TranscriptPath != "" {
		err := resilience.RetryFunc(ctx, resilience.DefaultRetryConfig(), func() error {
			return o.objects.Upload(ctx, rec.TranscriptPath, strings.NewReader(transcript))
		})
		if err != nil {
			return "", errors.Storage("upload transcript", err)
		}
	}

	return transcript, nil
}

// fail records the failure and returns the original error. A job store write
// failure here is logged and swallowed; the pipeline error is what matters.
func (o *Orchestrator) fail(ctx context.Context, log *logger.Logger, jobID string, cause error) error {
	log.Error("job failed", logger.ErrorFields("pipeline", cause))
	if err := o.jobs.MarkFailed(ctx, jobID, cause.Error()); err != nil {
		log.Error("recording job failure failed", logger.ErrorFields("mark_failed", err))
	}
	return cause
}

func (o *Orchestrator) setStatus(ctx context.Context, log *logger.Logger, jobID string, status jobstore.Status, detail string) {
	log.Info("job status", logger.Fields(logger.FieldStatus, string(status)))
	if err := o.jobs.SetStatus(ctx, jobID, status, detail); err != nil {
		log.Warn("status update failed", logger.ErrorFields("set_status", err))
	}
}

func (o *Orchestrator) setProgress(ctx context.Context, log *logger.Logger, jobID string, done, total int) {
	if err := o.jobs.SetProgress(ctx, jobID, done, total); err != nil {
		log.Warn("progress update failed", logger.ErrorFields("set_progress", err))
	}
}
