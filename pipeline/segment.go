package pipeline

import (
	"context"
	"fmt"
	"io"
	"math"
	"os"

	"github.com/skillsenselab/scribe/errors"
	"github.com/skillsenselab/scribe/logger"
	"github.com/skillsenselab/scribe/media"
)

// Segment is one time-bounded slice of the source audio, re-encoded and
// sized to fit the speech API's per-request ceiling. Index order is the only
// ordering guarantee the pipeline makes.
type Segment struct {
	Index           int
	StartSeconds    float64
	DurationSeconds float64
	Path            string
}

// SegmenterConfig tunes the adaptive segmentation.
type SegmenterConfig struct {
	// DefaultTargetSeconds is the target segment duration for small files.
	DefaultTargetSeconds float64 `mapstructure:"default_target_seconds"`
	// MinTargetSeconds is the floor the target never shrinks below.
	MinTargetSeconds float64 `mapstructure:"min_target_seconds"`
	// OverlapSeconds is the deliberate duplication between adjacent segments.
	OverlapSeconds float64 `mapstructure:"overlap_seconds"`
	// SizeCeilingBytes is the speech API's per-request size limit.
	SizeCeilingBytes int64 `mapstructure:"size_ceiling_bytes"`
	// MaxReplanDepth bounds the whole-file re-plan recursion.
	MaxReplanDepth int `mapstructure:"max_replan_depth"`
}

// ApplyDefaults fills in zero-valued fields.
func (c *SegmenterConfig) ApplyDefaults() {
	if c.DefaultTargetSeconds <= 0 {
		c.DefaultTargetSeconds = 300
	}
	if c.MinTargetSeconds <= 0 {
		c.MinTargetSeconds = 30
	}
	if c.OverlapSeconds <= 0 {
		c.OverlapSeconds = 10
	}
	if c.SizeCeilingBytes <= 0 {
		c.SizeCeilingBytes = 24 << 20
	}
	if c.MaxReplanDepth <= 0 {
		c.MaxReplanDepth = 5
	}
}

// cutter is the slice of media.Cutter the segmenter needs.
type cutter interface {
	Cut(ctx context.Context, spec media.CutSpec) error
}

// Segmenter cuts a source file into overlapping segments, re-planning with a
// tighter target whenever a produced segment overshoots the size ceiling.
// Re-encoding bitrate only estimates output size; the adaptive re-plan turns
// that estimate into a hard guarantee.
type Segmenter struct {
	cutter cutter
	cfg    SegmenterConfig
	log    *logger.Logger
}

// NewSegmenter creates a Segmenter using the given cutter.
func NewSegmenter(c cutter, cfg SegmenterConfig, log *logger.Logger) *Segmenter {
	cfg.ApplyDefaults()
	return &Segmenter{
		cutter: c,
		cfg:    cfg,
		log:    log.WithComponent("segmenter"),
	}
}

// Segment splits srcPath into segment files inside the workspace and returns
// them ordered by index. Indices are a contiguous range starting at zero.
func (s *Segmenter) Segment(ctx context.Context, srcPath string, info media.AudioInfo, ws *Workspace) ([]Segment, error) {
	fi, err := os.Stat(srcPath)
	if err != nil {
		return nil, errors.Segmentation("stat source file", err)
	}

	target := s.targetFor(fi.Size())
	s.log.Debug("segmentation planned", logger.Fields(
		"duration_s", info.DurationSeconds,
		"source_bytes", fi.Size(),
		"target_s", target,
	))

	return s.segmentWithTarget(ctx, srcPath, info.DurationSeconds, target, ws, 0)
}

// targetFor picks the base target segment duration from file-size tiers.
// Larger files get shorter segments so each re-encoded cut stays well under
// the size ceiling.
func (s *Segmenter) targetFor(sizeBytes int64) float64 {
	sizeMB := float64(sizeBytes) / (1 << 20)

	var target float64
	switch {
	case sizeMB > 100:
		target = 30
	case sizeMB > 50:
		target = 60
	case sizeMB > 30:
		target = 120
	default:
		target = s.cfg.DefaultTargetSeconds
	}
	return math.Max(target, s.cfg.MinTargetSeconds)
}

func (s *Segmenter) segmentWithTarget(ctx context.Context, srcPath string, duration, target float64, ws *Workspace, depth int) ([]Segment, error) {
	if depth > s.cfg.MaxReplanDepth {
		return nil, errors.Segmentation(
			fmt.Sprintf("segments still exceed the size ceiling after %d re-plans", s.cfg.MaxReplanDepth), nil)
	}

	// Whole file fits in one segment: duplicate it into slot 0, no cut.
	if duration <= target {
		seg := Segment{Index: 0, StartSeconds: 0, DurationSeconds: duration, Path: ws.SegmentPath(0)}
		if err := copyFile(srcPath, seg.Path); err != nil {
			return nil, errors.Segmentation("copy single segment", err)
		}
		return []Segment{seg}, nil
	}

	windows := planWindows(duration, target, s.cfg.OverlapSeconds)
	segments := make([]Segment, 0, len(windows))

	for i, win := range windows {
		seg := Segment{
			Index:           i,
			StartSeconds:    win.start,
			DurationSeconds: win.length,
			Path:            ws.SegmentPath(i),
		}
		if err := s.cutter.Cut(ctx, media.CutSpec{
			InputPath:       srcPath,
			StartSeconds:    seg.StartSeconds,
			DurationSeconds: seg.DurationSeconds,
			OutputPath:      seg.Path,
		}); err != nil {
			removeSegmentFiles(segments, seg)
			return nil, err
		}

		fi, err := os.Stat(seg.Path)
		if err != nil {
			removeSegmentFiles(segments, seg)
			return nil, errors.Segmentation("stat segment file", err)
		}

		if fi.Size() > s.cfg.SizeCeilingBytes {
			// Shrink proportionally to the overshoot and re-plan the
			// whole file with the tighter target.
			removeSegmentFiles(segments, seg)

			ratio := float64(fi.Size()) / float64(s.cfg.SizeCeilingBytes)
			newTarget := math.Floor(target / ratio)
			if newTarget < s.cfg.MinTargetSeconds {
				newTarget = s.cfg.MinTargetSeconds
			}
			if newTarget >= target {
				newTarget = target - 1
			}

			s.log.Warn("segment overshot size ceiling, re-planning", logger.Fields(
				"segment", i,
				"bytes", fi.Size(),
				"old_target_s", target,
				"new_target_s", newTarget,
				"replan", depth+1,
			))
			return s.segmentWithTarget(ctx, srcPath, duration, newTarget, ws, depth+1)
		}

		segments = append(segments, seg)
	}

	return segments, nil
}

// window is one planned cut: [start, start+length).
type window struct {
	start  float64
	length float64
}

// planWindows computes overlapping cut windows covering [0, duration).
// Every segment except the first starts OVERLAP seconds early; the last
// segment absorbs the remainder instead of extending past end of file.
func planWindows(duration, target, overlap float64) []window {
	count := int(math.Ceil(duration / target))
	windows := make([]window, count)

	for i := range count {
		start := float64(i)*target - overlap
		if start < 0 {
			start = 0
		}

		var length float64
		if i < count-1 {
			length = target + overlap
		} else {
			length = duration - start
		}

		windows[i] = window{start: start, length: length}
	}
	return windows
}

func removeSegmentFiles(produced []Segment, current Segment) {
	for _, seg := range produced {
		os.Remove(seg.Path)
	}
	os.Remove(current.Path)
}

func copyFile(src, dst string) error {
	in, err := os.Open(src)
	if err != nil {
		return err
	}
	defer in.Close()

	out, err := os.Create(dst)
	if err != nil {
		return err
	}
	defer out.Close()

	if _, err := io.Copy(out, in); err != nil {
		return err
	}
	return out.Sync()
}
