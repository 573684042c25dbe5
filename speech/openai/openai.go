// Package openai implements speech.Provider against the OpenAI audio
// transcription endpoint.
package openai

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"os"
	"path/filepath"
	"time"

	"github.com/skillsenselab/scribe/errors"
	"github.com/skillsenselab/scribe/speech"
)

const (
	// ProviderName is the registered name for the OpenAI provider.
	ProviderName = "openai"

	defaultBaseURL = "https://api.openai.com/v1"
	defaultModel   = "whisper-1"
	defaultTimeout = 5 * time.Minute
)

// Config holds configuration for the OpenAI transcription provider.
type Config struct {
	APIKey  string        `json:"api_key" mapstructure:"api_key"`
	BaseURL string        `json:"base_url" mapstructure:"base_url"`
	Model   string        `json:"model" mapstructure:"model"`
	Timeout time.Duration `json:"timeout" mapstructure:"timeout"`
}

// Provider implements speech.Provider using the OpenAI transcriptions API.
type Provider struct {
	cfg    Config
	client *http.Client
}

// NewProvider creates a new OpenAI transcription provider.
func NewProvider(cfg Config) *Provider {
	if cfg.BaseURL == "" {
		cfg.BaseURL = defaultBaseURL
	}
	if cfg.Model == "" {
		cfg.Model = defaultModel
	}
	if cfg.Timeout == 0 {
		cfg.Timeout = defaultTimeout
	}
	return &Provider{
		cfg: cfg,
		client: &http.Client{
			Timeout: cfg.Timeout,
		},
	}
}

// Name returns the provider name.
func (p *Provider) Name() string { return ProviderName }

// IsAvailable reports whether the provider is configured.
func (p *Provider) IsAvailable(_ context.Context) bool {
	return p.cfg.APIKey != ""
}

// transcriptionResponse is the documented response schema for the
// transcriptions endpoint with the default json response format. Any
// deviation from this shape is a hard transcription failure, never a
// fallback chain.
type transcriptionResponse struct {
	Text string `json:"text"`
}

// Transcribe uploads one audio file and returns its transcript text.
func (p *Provider) Transcribe(ctx context.Context, req speech.Request) (*speech.Response, error) {
	audio, err := os.ReadFile(req.AudioPath)
	if err != nil {
		return nil, fmt.Errorf("read audio file: %w", err)
	}

	var body bytes.Buffer
	writer := multipart.NewWriter(&body)

	part, err := writer.CreateFormFile("file", filepath.Base(req.AudioPath))
	if err != nil {
		return nil, fmt.Errorf("create form file: %w", err)
	}
	if _, err := part.Write(audio); err != nil {
		return nil, fmt.Errorf("write audio data: %w", err)
	}

	_ = writer.WriteField("model", p.cfg.Model)
	_ = writer.WriteField("response_format", "json")
	if req.Language != "" {
		_ = writer.WriteField("language", req.Language)
	}
	if req.Prompt != "" {
		_ = writer.WriteField("prompt", req.Prompt)
	}
	writer.Close()

	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, p.cfg.BaseURL+"/audio/transcriptions", &body)
	if err != nil {
		return nil, fmt.Errorf("create request: %w", err)
	}
	httpReq.Header.Set("Authorization", "Bearer "+p.cfg.APIKey)
	httpReq.Header.Set("Content-Type", writer.FormDataContentType())

	resp, err := p.client.Do(httpReq)
	if err != nil {
		if ctx.Err() != nil {
			return nil, ctx.Err()
		}
		// Network-level failures are retryable.
		return nil, errors.ConnectionFailed("speech API").WithCause(err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		respBody, _ := io.ReadAll(io.LimitReader(resp.Body, 4096))
		return nil, classifyStatus(resp.StatusCode, respBody)
	}

	var result transcriptionResponse
	if err := json.NewDecoder(resp.Body).Decode(&result); err != nil {
		return nil, errors.New(errors.ErrCodeTranscription, "speech API returned an unparseable response", http.StatusBadGateway).WithCause(err)
	}
	if result.Text == "" {
		return nil, errors.New(errors.ErrCodeTranscription, "speech API response has no transcript text", http.StatusBadGateway)
	}

	return &speech.Response{Text: result.Text}, nil
}

// classifyStatus maps a non-2xx speech API status into a typed error.
// Timeouts, rate limits and server errors are retryable; everything else
// fails immediately.
func classifyStatus(statusCode int, body []byte) *errors.AppError {
	detail := string(bytes.TrimSpace(body))

	switch {
	case statusCode == http.StatusRequestTimeout:
		return errors.Timeout("speech API").WithDetail("body", detail)
	case statusCode == http.StatusTooManyRequests:
		return errors.RateLimited().WithDetail("body", detail)
	case statusCode == http.StatusServiceUnavailable:
		return errors.ServiceUnavailable("speech API").
			WithDetail("status_code", statusCode).
			WithDetail("body", detail)
	case statusCode >= 500:
		return errors.ExternalServiceError("speech API", nil).
			WithDetail("status_code", statusCode).
			WithDetail("body", detail)
	default:
		e := errors.New(errors.ErrCodeTranscription, fmt.Sprintf("speech API rejected the request (HTTP %d)", statusCode), http.StatusBadGateway)
		return e.WithDetail("status_code", statusCode).WithDetail("body", detail)
	}
}

// compile-time check
var _ speech.Provider = (*Provider)(nil)
