package server

import (
	"context"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/skillsenselab/scribe/errors"
	"github.com/skillsenselab/scribe/jobstore"
	"github.com/skillsenselab/scribe/logger"
	"github.com/skillsenselab/scribe/version"
)

// JobRunner executes a transcription job to completion.
type JobRunner interface {
	Run(ctx context.Context, jobID string) error
}

// HealthChecker reports whether a dependency is reachable.
type HealthChecker func(ctx context.Context) error

// Handler serves the transcription HTTP API.
type Handler struct {
	jobs   jobstore.Store
	runner JobRunner
	health map[string]HealthChecker
	log    *logger.Logger
}

// NewHandler creates the API handler. The health map keys name dependencies
// in the /healthz response.
func NewHandler(jobs jobstore.Store, runner JobRunner, health map[string]HealthChecker, log *logger.Logger) *Handler {
	return &Handler{
		jobs:   jobs,
		runner: runner,
		health: health,
		log:    log.WithComponent("api"),
	}
}

// Register mounts the API routes on the engine. The submit route carries its
// own rate limit on top of the engine-wide middleware.
func (h *Handler) Register(engine *gin.Engine, submitLimit gin.HandlerFunc) {
	v1 := engine.Group("/v1")
	if submitLimit != nil {
		v1.POST("/transcriptions", submitLimit, h.submit)
	} else {
		v1.POST("/transcriptions", h.submit)
	}
	v1.GET("/transcriptions/:id", h.get)

	engine.GET("/healthz", h.healthz)
}

// submitRequest is the job submission payload.
type submitRequest struct {
	// RecordingPath is the object store key of the recording to transcribe.
	RecordingPath string `json:"recording_path" binding:"required,max=1024"`
	// TranscriptPath, when set, is the object store key the finished
	// transcript is also written to.
	TranscriptPath string `json:"transcript_path" binding:"omitempty,max=1024"`
	// Language is an optional ISO 639-1 hint for the speech API.
	Language string `json:"language" binding:"omitempty,max=16"`
}

func (h *Handler) submit(c *gin.Context) {
	var req submitRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		writeAppError(c, bindError(err))
		return
	}

	now := time.Now().UTC()
	rec := &jobstore.Record{
		ID:             uuid.New().String(),
		RecordingPath:  req.RecordingPath,
		TranscriptPath: req.TranscriptPath,
		Language:       req.Language,
		Status:         jobstore.StatusCreated,
		CreatedAt:      now,
		UpdatedAt:      now,
	}
	if err := h.jobs.Create(c.Request.Context(), rec); err != nil {
		writeError(c, err)
		return
	}

	h.log.Info("job accepted", logger.Fields(
		logger.FieldJobID, rec.ID,
		"recording_path", rec.RecordingPath,
	))

	// The job outlives this request: detach from the request context so the
	// client disconnecting does not cancel the pipeline. Detach before the
	// goroutine starts; gin recycles the context once this handler returns.
	ctx := context.WithoutCancel(c.Request.Context())
	go func() {
		if err := h.runner.Run(ctx, rec.ID); err != nil {
			h.log.Error("job run failed", logger.Fields(
				logger.FieldJobID, rec.ID,
				logger.FieldError, err.Error(),
			))
		}
	}()

	c.JSON(http.StatusAccepted, rec)
}

func (h *Handler) get(c *gin.Context) {
	rec, err := h.jobs.Get(c.Request.Context(), c.Param("id"))
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, rec)
}

func (h *Handler) healthz(c *gin.Context) {
	ctx, cancel := context.WithTimeout(c.Request.Context(), 5*time.Second)
	defer cancel()

	status := http.StatusOK
	deps := make(map[string]string, len(h.health))
	for name, check := range h.health {
		if err := check(ctx); err != nil {
			deps[name] = err.Error()
			status = http.StatusServiceUnavailable
			continue
		}
		deps[name] = "ok"
	}

	body := gin.H{"status": "ok", "version": version.Get(), "dependencies": deps}
	if status != http.StatusOK {
		body["status"] = "degraded"
	}
	c.JSON(status, body)
}

// writeError maps any error to its HTTP response, hiding internals behind a
// generic 500 unless the error carries its own classification.
func writeError(c *gin.Context, err error) {
	if appErr, ok := errors.AsAppError(err); ok {
		writeAppError(c, appErr)
		return
	}
	writeAppError(c, errors.Internal(err))
}

func writeAppError(c *gin.Context, appErr *errors.AppError) {
	status := appErr.HTTPStatus
	if status == 0 {
		status = http.StatusInternalServerError
	}
	c.JSON(status, appErr.ToResponse())
}
