package config

import (
	"fmt"
	"os"
	"strings"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

// envPrefix namespaces the environment variables this service reads,
// e.g. SCRIBE_JOBSTORE_ADDR or SCRIBE_SPEECH_API_KEY.
const envPrefix = "SCRIBE_"

// LoaderOption customizes Load.
type LoaderOption func(*loaderOptions)

type loaderOptions struct {
	configFile string
	envFile    string
}

// WithConfigFile sets an explicit config file path instead of searching.
func WithConfigFile(path string) LoaderOption {
	return func(o *loaderOptions) { o.configFile = path }
}

// WithEnvFile sets an explicit .env file path instead of searching.
func WithEnvFile(path string) LoaderOption {
	return func(o *loaderOptions) { o.envFile = path }
}

// Load reads the configuration: config.yml as the base, a .env file layered
// on top, then SCRIBE_-prefixed environment variables overriding both. The
// result has defaults applied and is validated.
func Load(opts ...LoaderOption) (*Config, error) {
	var o loaderOptions
	for _, opt := range opts {
		opt(&o)
	}
	if o.configFile == "" {
		o.configFile = findFile(configSearchPaths())
	}
	if o.envFile == "" {
		o.envFile = findFile(envSearchPaths())
	}

	v := viper.New()

	if o.configFile != "" {
		v.SetConfigFile(o.configFile)
		if err := v.ReadInConfig(); err != nil {
			return nil, fmt.Errorf("config: read %s: %w", o.configFile, err)
		}
	}

	if o.envFile != "" {
		if err := godotenv.Load(o.envFile); err != nil {
			return nil, fmt.Errorf("config: load %s: %w", o.envFile, err)
		}
	}
	bindEnvVars(v)

	cfg := &Config{}
	if err := v.Unmarshal(cfg); err != nil {
		return nil, fmt.Errorf("config: unmarshal: %w", err)
	}

	cfg.ApplyDefaults()
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func configSearchPaths() []string {
	return []string{
		"./config.yml",
		"./cmd/scribed/config.yml",
		"../cmd/scribed/config.yml",
		"/etc/scribe/config.yml",
	}
}

func envSearchPaths() []string {
	return []string{
		"./.env",
		"./cmd/scribed/.env",
		"../cmd/scribed/.env",
	}
}

func findFile(paths []string) string {
	for _, path := range paths {
		if _, err := os.Stat(path); err == nil {
			return path
		}
	}
	return ""
}

// bindEnvVars sets every SCRIBE_ environment variable into viper under each
// nested-key interpretation of its name. SCRIBE_SPEECH_API_KEY could mean
// speech.api_key or speech.api.key; setting all variants lets Unmarshal pick
// whichever matches a struct field, so variable names never need escaping.
func bindEnvVars(v *viper.Viper) {
	for _, env := range os.Environ() {
		key, value, ok := strings.Cut(env, "=")
		if !ok || !strings.HasPrefix(key, envPrefix) {
			continue
		}
		for _, variant := range keyVariants(strings.TrimPrefix(key, envPrefix)) {
			v.Set(variant, value)
		}
	}
}

// keyVariants lowercases an env var name and returns each way of splitting
// its underscores into nesting levels, outermost first.
// JOBSTORE_KEY_PREFIX -> [jobstore.key.prefix, jobstore.key_prefix,
// jobstore_key_prefix, ...].
func keyVariants(envKey string) []string {
	lower := strings.ToLower(envKey)
	parts := strings.Split(lower, "_")
	if len(parts) == 1 {
		return []string{lower}
	}

	variants := []string{
		strings.ReplaceAll(lower, "_", "."),
		lower,
	}
	for i := 1; i < len(parts); i++ {
		variant := strings.Join(parts[:i], ".") + "." + strings.Join(parts[i:], "_")
		variants = append(variants, variant)
	}

	seen := make(map[string]bool, len(variants))
	unique := variants[:0]
	for _, variant := range variants {
		if !seen[variant] {
			seen[variant] = true
			unique = append(unique, variant)
		}
	}
	return unique
}
