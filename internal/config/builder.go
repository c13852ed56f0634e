package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"

	"github.com/spf13/pflag"
)

// Builder provides a fluent interface for assembling a Config from defaults,
// environment variables and command-line flags, in that order of precedence.
type Builder struct {
	config Config
	useEnv bool
	flags  *pflag.FlagSet
}

// NewBuilder creates a new Config builder starting from Default.
func NewBuilder() *Builder {
	return &Builder{config: Default()}
}

// WithConfig replaces the base configuration.
func (b *Builder) WithConfig(config Config) *Builder {
	b.config = config
	return b
}

// WithEnv loads configuration from YOURPALETTE_* environment variables.
func (b *Builder) WithEnv() *Builder {
	b.useEnv = true
	return b
}

// WithFlags applies flags registered by BindFlags that were set explicitly.
func (b *Builder) WithFlags(fs *pflag.FlagSet) *Builder {
	b.flags = fs
	return b
}

// Build assembles and validates the configuration.
func (b *Builder) Build() (Config, error) {
	config := b.config
	config.AllowedExtensions = append([]string(nil), config.AllowedExtensions...)

	if b.useEnv {
		if err := applyEnv(&config); err != nil {
			return Config{}, err
		}
	}

	if b.flags != nil {
		if err := applyFlags(&config, b.flags); err != nil {
			return Config{}, err
		}
	}

	if err := config.Validate(); err != nil {
		return Config{}, fmt.Errorf("invalid configuration: %w", err)
	}
	return config, nil
}

func applyEnv(c *Config) error {
	env := func(key string) (string, bool) {
		v, ok := os.LookupEnv(EnvPrefix + key)
		return strings.TrimSpace(v), ok && strings.TrimSpace(v) != ""
	}

	if v, ok := env("ADDR"); ok {
		c.Addr = v
	}
	if v, ok := env("UPLOAD_DIR"); ok {
		c.UploadDir = v
	}
	if v, ok := env("ALLOWED_EXTENSIONS"); ok {
		c.AllowedExtensions = parseList(v)
	}
	if v, ok := env("LOG_LEVEL"); ok {
		c.LogLevel = v
	}

	var err error
	if v, ok := env("MAX_UPLOAD_BYTES"); ok {
		if c.MaxUploadBytes, err = strconv.ParseInt(v, 10, 64); err != nil {
			return envError("MAX_UPLOAD_BYTES", v, err)
		}
	}
	if v, ok := env("DEFAULT_COLOR_COUNT"); ok {
		if c.DefaultColorCount, err = strconv.Atoi(v); err != nil {
			return envError("DEFAULT_COLOR_COUNT", v, err)
		}
	}
	if v, ok := env("MAX_SAMPLE_PIXELS"); ok {
		if c.MaxSamplePixels, err = strconv.Atoi(v); err != nil {
			return envError("MAX_SAMPLE_PIXELS", v, err)
		}
	}
	if v, ok := env("SEED"); ok {
		if c.Seed, err = strconv.ParseInt(v, 10, 64); err != nil {
			return envError("SEED", v, err)
		}
	}
	if v, ok := env("LOG_JSON"); ok {
		if c.LogJSON, err = strconv.ParseBool(v); err != nil {
			return envError("LOG_JSON", v, err)
		}
	}
	if v, ok := env("UNIQUE_NAMES"); ok {
		if c.UniqueNames, err = strconv.ParseBool(v); err != nil {
			return envError("UNIQUE_NAMES", v, err)
		}
	}

	return nil
}

func envError(key, value string, err error) error {
	return fmt.Errorf("invalid %s%s value %q: %w", EnvPrefix, key, value, err)
}

// parseList parses a comma-separated list, dropping blanks and leading dots.
func parseList(s string) []string {
	parts := strings.Split(s, ",")
	result := make([]string, 0, len(parts))
	for _, part := range parts {
		trimmed := strings.TrimPrefix(strings.TrimSpace(part), ".")
		if trimmed != "" {
			result = append(result, strings.ToLower(trimmed))
		}
	}
	return result
}
