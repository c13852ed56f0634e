package config

import (
	"bytes"
	"encoding/json"
	"strings"
	"testing"

	"github.com/spf13/pflag"
)

func TestDefault(t *testing.T) {
	c := Default()
	if err := c.Validate(); err != nil {
		t.Fatalf("Default().Validate() error = %v", err)
	}
	if c.MaxUploadBytes != 16*1024*1024 {
		t.Errorf("MaxUploadBytes = %d, want 16 MiB", c.MaxUploadBytes)
	}
	if c.Addr != "127.0.0.1:8080" || c.UploadDir != "static/uploads" {
		t.Errorf("unexpected defaults: %+v", c)
	}
	if strings.Join(c.AllowedExtensions, ",") != "png,jpg,jpeg,gif" {
		t.Errorf("AllowedExtensions = %v", c.AllowedExtensions)
	}
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(*Config)
	}{
		{"empty addr", func(c *Config) { c.Addr = "" }},
		{"empty upload dir", func(c *Config) { c.UploadDir = " " }},
		{"zero upload size", func(c *Config) { c.MaxUploadBytes = 0 }},
		{"no extensions", func(c *Config) { c.AllowedExtensions = nil }},
		{"colour count too low", func(c *Config) { c.DefaultColorCount = 1 }},
		{"colour count too high", func(c *Config) { c.DefaultColorCount = 13 }},
		{"negative sample pixels", func(c *Config) { c.MaxSamplePixels = -1 }},
		{"bad log level", func(c *Config) { c.LogLevel = "loud" }},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c := Default()
			tt.mutate(&c)
			if err := c.Validate(); err == nil {
				t.Error("Validate() expected error")
			}
		})
	}
}

func TestBuilderEnv(t *testing.T) {
	t.Setenv("YOURPALETTE_ADDR", ":9000")
	t.Setenv("YOURPALETTE_UPLOAD_DIR", "/tmp/uploads")
	t.Setenv("YOURPALETTE_MAX_UPLOAD_BYTES", "1024")
	t.Setenv("YOURPALETTE_ALLOWED_EXTENSIONS", "PNG, .webp")
	t.Setenv("YOURPALETTE_SEED", "7")
	t.Setenv("YOURPALETTE_LOG_JSON", "true")
	t.Setenv("YOURPALETTE_MAX_SAMPLE_PIXELS", "50000")

	c, err := NewBuilder().WithEnv().Build()
	if err != nil {
		t.Fatalf("Build() error = %v", err)
	}

	if c.Addr != ":9000" || c.UploadDir != "/tmp/uploads" || c.MaxUploadBytes != 1024 {
		t.Errorf("unexpected config: %+v", c)
	}
	if strings.Join(c.AllowedExtensions, ",") != "png,webp" {
		t.Errorf("AllowedExtensions = %v", c.AllowedExtensions)
	}
	if c.Seed != 7 || !c.LogJSON || c.MaxSamplePixels != 50000 {
		t.Errorf("unexpected config: %+v", c)
	}
}

func TestBuilderIgnoresEnvWithoutWithEnv(t *testing.T) {
	t.Setenv("YOURPALETTE_ADDR", ":9000")

	c, err := NewBuilder().Build()
	if err != nil {
		t.Fatalf("Build() error = %v", err)
	}
	if c.Addr != Default().Addr {
		t.Errorf("Addr = %q, want default", c.Addr)
	}
}

func TestBuilderEnvInvalid(t *testing.T) {
	tests := []struct {
		key, value string
	}{
		{"YOURPALETTE_MAX_UPLOAD_BYTES", "lots"},
		{"YOURPALETTE_SEED", "x"},
		{"YOURPALETTE_LOG_JSON", "maybe"},
		{"YOURPALETTE_DEFAULT_COLOR_COUNT", "40"},
	}

	for _, tt := range tests {
		t.Run(tt.key, func(t *testing.T) {
			t.Setenv(tt.key, tt.value)
			if _, err := NewBuilder().WithEnv().Build(); err == nil {
				t.Errorf("Build() with %s=%s expected error", tt.key, tt.value)
			}
		})
	}
}

func TestBuilderFlagsOverrideEnv(t *testing.T) {
	t.Setenv("YOURPALETTE_ADDR", ":9000")
	t.Setenv("YOURPALETTE_UPLOAD_DIR", "/from/env")

	fs := pflag.NewFlagSet("test", pflag.ContinueOnError)
	BindFlags(fs)
	if err := fs.Parse([]string{"--addr", ":7000", "--log-level", "debug", "--allowed-extensions", "png,gif"}); err != nil {
		t.Fatalf("Parse() error = %v", err)
	}

	c, err := NewBuilder().WithEnv().WithFlags(fs).Build()
	if err != nil {
		t.Fatalf("Build() error = %v", err)
	}

	if c.Addr != ":7000" {
		t.Errorf("Addr = %q, want flag value", c.Addr)
	}
	if c.UploadDir != "/from/env" {
		t.Errorf("UploadDir = %q, want env value", c.UploadDir)
	}
	if c.LogLevel != "debug" {
		t.Errorf("LogLevel = %q, want debug", c.LogLevel)
	}
	if strings.Join(c.AllowedExtensions, ",") != "png,gif" {
		t.Errorf("AllowedExtensions = %v", c.AllowedExtensions)
	}
}

func TestBuilderWithConfig(t *testing.T) {
	base := Default()
	base.UploadDir = "/srv/palettes"
	base.DefaultColorCount = 6

	c, err := NewBuilder().WithConfig(base).Build()
	if err != nil {
		t.Fatalf("Build() error = %v", err)
	}
	if c.UploadDir != "/srv/palettes" || c.DefaultColorCount != 6 {
		t.Errorf("Build() = %+v, want the supplied base", c)
	}

	base.MaxUploadBytes = 0
	if _, err := NewBuilder().WithConfig(base).Build(); err == nil {
		t.Error("Build() expected validation error for zero upload limit")
	}
}

func TestDefaultParams(t *testing.T) {
	c := Default()
	c.DefaultColorCount = 6
	if got := c.DefaultParams().ColorCount; got != 6 {
		t.Errorf("DefaultParams().ColorCount = %d, want 6", got)
	}
}

func TestNewLogger(t *testing.T) {
	var buf bytes.Buffer
	c := Default()
	c.LogJSON = true
	c.LogLevel = "warn"

	logger := NewLogger(c, &buf)
	logger.Info("hidden")
	logger.Warn("shown", "key", "value")

	lines := strings.Split(strings.TrimSpace(buf.String()), "\n")
	if len(lines) != 1 {
		t.Fatalf("expected 1 log line, got %d: %q", len(lines), buf.String())
	}

	var entry map[string]any
	if err := json.Unmarshal([]byte(lines[0]), &entry); err != nil {
		t.Fatalf("log line is not JSON: %v", err)
	}
	if entry["@message"] != "shown" || entry["@module"] != AppName || entry["key"] != "value" {
		t.Errorf("unexpected log entry: %v", entry)
	}
}
