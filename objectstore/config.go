package objectstore

import "errors"

// Provider constants for supported backends.
const (
	ProviderLocal = "local"
	ProviderS3    = "s3"
)

// Config holds object store configuration.
type Config struct {
	// Provider selects the backend: "local" or "s3".
	Provider string `mapstructure:"provider" json:"provider"`

	// BasePath is the root directory for local storage.
	BasePath string `mapstructure:"base_path" json:"base_path"`

	// Bucket is the S3 bucket name.
	Bucket string `mapstructure:"bucket" json:"bucket"`

	// Region is the AWS region for S3.
	Region string `mapstructure:"region" json:"region"`

	// Endpoint is a custom S3-compatible endpoint (e.g. MinIO).
	Endpoint string `mapstructure:"endpoint" json:"endpoint"`

	// AccessKey is the AWS access key ID.
	AccessKey string `mapstructure:"access_key" json:"access_key"`

	// SecretKey is the AWS secret access key.
	SecretKey string `mapstructure:"secret_key" json:"secret_key"`

	// ForcePathStyle forces path-style S3 addressing (required by MinIO).
	ForcePathStyle bool `mapstructure:"force_path_style" json:"force_path_style"`
}

// ApplyDefaults fills in zero-valued fields with sensible defaults.
func (c *Config) ApplyDefaults() {
	if c.Provider == "" {
		c.Provider = ProviderLocal
	}
	if c.BasePath == "" {
		c.BasePath = "/tmp/scribe-objects"
	}
	if c.Region == "" {
		c.Region = "us-east-1"
	}
}

// Validate checks that the configuration is valid for the selected provider.
func (c *Config) Validate() error {
	switch c.Provider {
	case ProviderLocal:
		if c.BasePath == "" {
			return errors.New("objectstore: base_path is required for local provider")
		}
	case ProviderS3:
		if c.Bucket == "" {
			return errors.New("objectstore: bucket is required for s3 provider")
		}
	default:
		return errors.New("objectstore: provider must be one of [local s3]")
	}
	return nil
}
