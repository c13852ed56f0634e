// Package config provides runtime configuration for the palette service.
package config

import (
	"errors"
	"fmt"
	"strings"

	"github.com/hashicorp/go-hclog"

	imageutil "github.com/jmylchreest/yourpalette/internal/image"
	"github.com/jmylchreest/yourpalette/internal/pipeline"
)

// EnvPrefix prefixes every environment variable the builder reads.
const EnvPrefix = "YOURPALETTE_"

// Config holds process-wide settings. It is built once at startup and passed
// to the components that need it.
type Config struct {
	// Addr is the listen address of the HTTP server.
	Addr string

	// UploadDir holds uploaded originals and rendered composites.
	UploadDir string

	// MaxUploadBytes caps the request body size.
	MaxUploadBytes int64

	// AllowedExtensions lists accepted upload extensions without dots.
	AllowedExtensions []string

	// DefaultColorCount is used when a request does not specify one.
	DefaultColorCount int

	// MaxSamplePixels downscales large images before clustering. Zero disables.
	MaxSamplePixels int

	// Seed fixes the clustering random source.
	Seed int64

	// LogLevel is an hclog level name (trace, debug, info, warn, error).
	LogLevel string

	// LogJSON switches log output to JSON lines.
	LogJSON bool

	// UniqueNames prefixes a random token to colliding upload names.
	UniqueNames bool
}

// Default returns the built-in configuration.
func Default() Config {
	return Config{
		Addr:              "127.0.0.1:8080",
		UploadDir:         "static/uploads",
		MaxUploadBytes:    16 << 20,
		AllowedExtensions: imageutil.DefaultAllowedExtensions(),
		DefaultColorCount: pipeline.DefaultColorCount,
		MaxSamplePixels:   0,
		Seed:              42,
		LogLevel:          "info",
		LogJSON:           false,
		UniqueNames:       true,
	}
}

// Validate checks that the configuration is usable.
func (c Config) Validate() error {
	var errs []error

	if strings.TrimSpace(c.Addr) == "" {
		errs = append(errs, errors.New("listen address cannot be empty"))
	}
	if strings.TrimSpace(c.UploadDir) == "" {
		errs = append(errs, errors.New("upload directory cannot be empty"))
	}
	if c.MaxUploadBytes <= 0 {
		errs = append(errs, fmt.Errorf("max upload size must be positive, got %d", c.MaxUploadBytes))
	}
	if len(c.AllowedExtensions) == 0 {
		errs = append(errs, errors.New("at least one allowed extension is required"))
	}
	if c.DefaultColorCount < pipeline.MinColorCount || c.DefaultColorCount > pipeline.MaxColorCount {
		errs = append(errs, fmt.Errorf("default colour count must be between %d and %d, got %d",
			pipeline.MinColorCount, pipeline.MaxColorCount, c.DefaultColorCount))
	}
	if c.MaxSamplePixels < 0 {
		errs = append(errs, fmt.Errorf("max sample pixels cannot be negative, got %d", c.MaxSamplePixels))
	}
	if hclog.LevelFromString(c.LogLevel) == hclog.NoLevel {
		errs = append(errs, fmt.Errorf("invalid log level: %s", c.LogLevel))
	}

	return errors.Join(errs...)
}

// DefaultParams returns the processing parameters applied when a request
// leaves a field empty.
func (c Config) DefaultParams() pipeline.Params {
	p := pipeline.DefaultParams()
	p.ColorCount = c.DefaultColorCount
	return p
}
