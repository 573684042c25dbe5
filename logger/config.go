package logger

import "fmt"

// Config contains logging configuration.
type Config struct {
	Level     string `yaml:"level" mapstructure:"level"`
	Format    string `yaml:"format" mapstructure:"format"`
	Output    string `yaml:"output" mapstructure:"output"`
	NoColor bool `yaml:"no_color" mapstructure:"no_color"`
	// Timestamp controls the timestamp field on every entry. Unset means
	// enabled; an explicit false disables it.
	Timestamp *bool `yaml:"timestamp" mapstructure:"timestamp"`
	Caller    bool  `yaml:"caller" mapstructure:"caller"`
}

// ApplyDefaults applies default values to logging configuration.
func (c *Config) ApplyDefaults() {
	if c.Level == "" {
		c.Level = "info"
	}
	if c.Format == "" {
		c.Format = "console"
	}
	if c.Output == "" {
		c.Output = "stdout"
	}
	if c.Timestamp == nil {
		enabled := true
		c.Timestamp = &enabled
	}
}

// Validate validates logging configuration.
func (c *Config) Validate() error {
	switch c.Level {
	case "trace", "debug", "info", "warn", "error", "fatal":
	default:
		return fmt.Errorf("logging.level must be one of [trace debug info warn error fatal] (got: %s)", c.Level)
	}
	switch c.Format {
	case "console", "pretty", "json":
	default:
		return fmt.Errorf("logging.format must be one of [console pretty json] (got: %s)", c.Format)
	}
	return nil
}
