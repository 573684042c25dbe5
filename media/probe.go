// Package media wraps the external ffprobe/ffmpeg tools for audio
// inspection and segment extraction.
package media

import (
	"context"
	"encoding/json"
	"fmt"
	"strconv"

	"github.com/skillsenselab/scribe/errors"
	"github.com/skillsenselab/scribe/process"
)

// AudioInfo holds container-level metadata for a local audio file.
type AudioInfo struct {
	// DurationSeconds is the total audio duration.
	DurationSeconds float64
	// Format is the container format name reported by the probe tool.
	Format string
}

// Prober inspects audio files with ffprobe.
type Prober struct {
	binary string
}

// NewProber creates a Prober. An empty binary defaults to "ffprobe" on PATH.
func NewProber(binary string) *Prober {
	if binary == "" {
		binary = "ffprobe"
	}
	return &Prober{binary: binary}
}

// Probe returns duration and container format for the file at path.
// Probe failures are fatal for a job: duration drives all downstream
// planning, so there is no retry here.
func (p *Prober) Probe(ctx context.Context, path string) (AudioInfo, error) {
	out, err := process.Output(ctx, p.binary,
		"-v", "error",
		"-print_format", "json",
		"-show_format",
		path,
	)
	if err != nil {
		return AudioInfo{}, errors.Probe(path, err)
	}

	info, err := parseProbeOutput(out)
	if err != nil {
		return AudioInfo{}, errors.Probe(path, err)
	}
	return info, nil
}

// probeOutput mirrors the ffprobe -show_format JSON shape. Duration is a
// string-encoded number in ffprobe output.
type probeOutput struct {
	Format struct {
		Duration   string `json:"duration"`
		FormatName string `json:"format_name"`
	} `json:"format"`
}

func parseProbeOutput(data []byte) (AudioInfo, error) {
	var out probeOutput
	if err := json.Unmarshal(data, &out); err != nil {
		return AudioInfo{}, fmt.Errorf("parse probe output: %w", err)
	}
	if out.Format.Duration == "" {
		return AudioInfo{}, fmt.Errorf("probe output has no duration")
	}

	duration, err := strconv.ParseFloat(out.Format.Duration, 64)
	if err != nil {
		return AudioInfo{}, fmt.Errorf("parse probe duration %q: %w", out.Format.Duration, err)
	}
	if duration <= 0 {
		return AudioInfo{}, fmt.Errorf("probe reported non-positive duration %v", duration)
	}

	return AudioInfo{
		DurationSeconds: duration,
		Format:          out.Format.FormatName,
	}, nil
}
