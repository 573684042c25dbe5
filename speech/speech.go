// Package speech defines the provider interface and common types for
// speech-to-text backends.
package speech

import "context"

// Request holds parameters for a transcription call.
type Request struct {
	// AudioPath is the path to the audio file to transcribe.
	AudioPath string `json:"audio_path"`
	// Language is the expected language of the audio (e.g. "en").
	Language string `json:"language,omitempty"`
	// Prompt is optional context text passed to the model.
	Prompt string `json:"prompt,omitempty"`
}

// Response holds the result of a transcription call.
type Response struct {
	// Text is the full transcription text.
	Text string `json:"text"`
}

// Provider is the interface that speech-to-text backends must implement.
// Each request is self-contained; no cross-request context is shared, which
// is why adjacent audio segments carry a deliberate time overlap.
type Provider interface {
	// Name returns the provider name.
	Name() string

	// IsAvailable reports whether the backend is reachable.
	IsAvailable(ctx context.Context) bool

	// Transcribe sends audio for transcription and returns the result.
	// Errors are classified retryable or fatal via the errors package.
	Transcribe(ctx context.Context, req Request) (*Response, error)
}
