package pipeline

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/skillsenselab/scribe/logger"
)

// Workspace is a job-private scratch directory holding the downloaded
// source file and segment files. It is torn down, best-effort, when the job
// reaches a terminal state.
type Workspace struct {
	root string
}

// NewWorkspace creates the scratch directory for a job under baseDir.
func NewWorkspace(baseDir, jobID string) (*Workspace, error) {
	root := filepath.Join(baseDir, "job-"+jobID)
	if err := os.MkdirAll(root, 0o700); err != nil {
		return nil, fmt.Errorf("workspace: create %s: %w", root, err)
	}
	return &Workspace{root: root}, nil
}

// Root returns the workspace directory.
func (w *Workspace) Root() string { return w.root }

// Path returns the absolute path for a file inside the workspace.
func (w *Workspace) Path(name string) string {
	return filepath.Join(w.root, name)
}

// SegmentPath returns the canonical path for the segment at index i.
func (w *Workspace) SegmentPath(i int) string {
	return filepath.Join(w.root, fmt.Sprintf("segment_%03d.mp3", i))
}

// Cleanup removes the workspace recursively. Failures are logged, never
// escalated: a cleanup error must not mask the job's actual outcome.
func (w *Workspace) Cleanup(log *logger.Logger) {
	if err := os.RemoveAll(w.root); err != nil {
		log.Warn("workspace cleanup failed", logger.ErrorFields("cleanup", err))
	}
}
