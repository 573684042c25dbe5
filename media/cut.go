package media

import (
	"context"
	"fmt"
	"strconv"

	"github.com/skillsenselab/scribe/errors"
	"github.com/skillsenselab/scribe/process"
)

// Encoding parameters for extracted segments. Mono 16kHz at 32kbps keeps a
// five-minute segment near 1.2MB, well under the speech API request ceiling.
const (
	segmentChannels   = "1"
	segmentSampleRate = "16000"
	segmentBitrate    = "32k"
	segmentFormat     = "mp3"
)

// CutSpec describes one segment extraction.
type CutSpec struct {
	// InputPath is the source audio file.
	InputPath string
	// StartSeconds is the offset into the source to begin at.
	StartSeconds float64
	// DurationSeconds is the length of audio to extract.
	DurationSeconds float64
	// OutputPath is where the re-encoded segment is written.
	OutputPath string
}

// Cutter extracts time windows from audio files with ffmpeg, re-encoding to
// a fixed low-bitrate mono format.
type Cutter struct {
	binary string
}

// NewCutter creates a Cutter. An empty binary defaults to "ffmpeg" on PATH.
func NewCutter(binary string) *Cutter {
	if binary == "" {
		binary = "ffmpeg"
	}
	return &Cutter{binary: binary}
}

// Cut extracts one segment. A non-zero ffmpeg exit is fatal for the cut;
// whole-file re-planning on size overshoot is the segmenter's concern.
func (c *Cutter) Cut(ctx context.Context, spec CutSpec) error {
	args := []string{
		"-y",
		"-ss", formatSeconds(spec.StartSeconds),
		"-t", formatSeconds(spec.DurationSeconds),
		"-i", spec.InputPath,
		"-ac", segmentChannels,
		"-ar", segmentSampleRate,
		"-b:a", segmentBitrate,
		"-f", segmentFormat,
		spec.OutputPath,
	}

	if _, err := process.Output(ctx, c.binary, args...); err != nil {
		return errors.Segmentation(
			fmt.Sprintf("cut at %ss for %ss", formatSeconds(spec.StartSeconds), formatSeconds(spec.DurationSeconds)),
			err,
		)
	}
	return nil
}

// formatSeconds renders a duration for ffmpeg without scientific notation.
func formatSeconds(v float64) string {
	return strconv.FormatFloat(v, 'f', 3, 64)
}
