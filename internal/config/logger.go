package config

import (
	"io"
	"os"

	"github.com/hashicorp/go-hclog"
)

// AppName names the root logger.
const AppName = "yourpalette"

// NewLogger builds the root logger for c. A nil w writes to stderr.
func NewLogger(c Config, w io.Writer) hclog.Logger {
	if w == nil {
		w = os.Stderr
	}
	level := hclog.LevelFromString(c.LogLevel)
	if level == hclog.NoLevel {
		level = hclog.Info
	}
	return hclog.New(&hclog.LoggerOptions{
		Name:       AppName,
		Output:     w,
		Level:      level,
		JSONFormat: c.LogJSON,
	})
}
