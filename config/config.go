// Package config loads and validates the service configuration from a YAML
// file, a .env file, and SCRIBE_-prefixed environment variables, in
// increasing order of precedence.
package config

import (
	"fmt"

	"github.com/skillsenselab/scribe/jobstore"
	"github.com/skillsenselab/scribe/logger"
	"github.com/skillsenselab/scribe/objectstore"
	"github.com/skillsenselab/scribe/pipeline"
	"github.com/skillsenselab/scribe/server"
	"github.com/skillsenselab/scribe/speech/openai"
)

// Config is the full service configuration.
type Config struct {
	// Name is the service name used in logs.
	Name string `yaml:"name" mapstructure:"name"`
	// Environment is one of development, staging, production.
	Environment string `yaml:"environment" mapstructure:"environment"`

	Log         logger.Config      `yaml:"log" mapstructure:"log"`
	Server      server.Config      `yaml:"server" mapstructure:"server"`
	ObjectStore objectstore.Config `yaml:"objectstore" mapstructure:"objectstore"`
	JobStore    jobstore.Config    `yaml:"jobstore" mapstructure:"jobstore"`
	Speech      openai.Config      `yaml:"speech" mapstructure:"speech"`
	Pipeline    PipelineConfig     `yaml:"pipeline" mapstructure:"pipeline"`
}

// PipelineConfig groups the transcription pipeline settings.
type PipelineConfig struct {
	// WorkDir is the parent directory for per-job scratch workspaces.
	WorkDir string `yaml:"work_dir" mapstructure:"work_dir"`
	// FFmpegBinary and FFprobeBinary override the tool lookup on PATH.
	FFmpegBinary  string `yaml:"ffmpeg_binary" mapstructure:"ffmpeg_binary"`
	FFprobeBinary string `yaml:"ffprobe_binary" mapstructure:"ffprobe_binary"`

	Segmenter pipeline.SegmenterConfig `yaml:"segmenter" mapstructure:"segmenter"`
	Scheduler pipeline.SchedulerConfig `yaml:"scheduler" mapstructure:"scheduler"`
}

// ApplyDefaults fills in zero-valued fields across all sections.
func (c *Config) ApplyDefaults() {
	if c.Name == "" {
		c.Name = "scribed"
	}
	if c.Environment == "" {
		c.Environment = "development"
	}
	if c.Pipeline.WorkDir == "" {
		c.Pipeline.WorkDir = "/tmp/scribe-work"
	}
	c.Log.ApplyDefaults()
	c.Server.ApplyDefaults()
	c.ObjectStore.ApplyDefaults()
	c.JobStore.ApplyDefaults()
	c.Pipeline.Segmenter.ApplyDefaults()
	c.Pipeline.Scheduler.ApplyDefaults()
}

// Validate checks all sections. Call ApplyDefaults first.
func (c *Config) Validate() error {
	switch c.Environment {
	case "development", "staging", "production":
	default:
		return fmt.Errorf("config: environment must be one of [development staging production] (got: %s)", c.Environment)
	}
	if err := c.Log.Validate(); err != nil {
		return fmt.Errorf("config: %w", err)
	}
	if err := c.Server.Validate(); err != nil {
		return fmt.Errorf("config: %w", err)
	}
	if err := c.ObjectStore.Validate(); err != nil {
		return fmt.Errorf("config: %w", err)
	}
	if c.Speech.APIKey == "" && c.Environment != "development" {
		return fmt.Errorf("config: speech.api_key is required outside development")
	}
	return nil
}
