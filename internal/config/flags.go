package config

import (
	"strings"

	"github.com/spf13/pflag"
)

// Flag names registered by BindFlags.
const (
	FlagAddr              = "addr"
	FlagUploadDir         = "upload-dir"
	FlagMaxUploadBytes    = "max-upload-bytes"
	FlagAllowedExtensions = "allowed-extensions"
	FlagColorCount        = "default-colours"
	FlagMaxSamplePixels   = "max-sample-pixels"
	FlagSeed              = "seed"
	FlagLogLevel          = "log-level"
	FlagLogJSON           = "log-json"
	FlagUniqueNames       = "unique-names"
)

// BindFlags registers the server configuration flags on fs. Defaults come
// from Default; only flags the user sets override env values at Build.
func BindFlags(fs *pflag.FlagSet) {
	d := Default()
	fs.String(FlagAddr, d.Addr, "listen address")
	fs.String(FlagUploadDir, d.UploadDir, "directory for uploaded and processed images")
	fs.Int64(FlagMaxUploadBytes, d.MaxUploadBytes, "maximum request body size in bytes")
	fs.StringSlice(FlagAllowedExtensions, d.AllowedExtensions, "accepted upload extensions")
	fs.Int(FlagColorCount, d.DefaultColorCount, "palette size when a request does not specify one")
	fs.Int(FlagMaxSamplePixels, d.MaxSamplePixels, "downscale images above this many pixels before clustering (0 disables)")
	fs.Int64(FlagSeed, d.Seed, "random seed for clustering")
	BindLogFlags(fs)
	fs.Bool(FlagUniqueNames, d.UniqueNames, "prefix a random token to colliding upload names")
}

// BindLogFlags registers only the logging flags.
func BindLogFlags(fs *pflag.FlagSet) {
	d := Default()
	fs.String(FlagLogLevel, d.LogLevel, "log level (trace, debug, info, warn, error)")
	fs.Bool(FlagLogJSON, d.LogJSON, "emit logs as JSON")
}

func applyFlags(c *Config, fs *pflag.FlagSet) error {
	var err error
	changed := func(name string) bool {
		f := fs.Lookup(name)
		return err == nil && f != nil && f.Changed
	}

	if changed(FlagAddr) {
		c.Addr, err = fs.GetString(FlagAddr)
	}
	if changed(FlagUploadDir) {
		c.UploadDir, err = fs.GetString(FlagUploadDir)
	}
	if changed(FlagMaxUploadBytes) {
		c.MaxUploadBytes, err = fs.GetInt64(FlagMaxUploadBytes)
	}
	if changed(FlagAllowedExtensions) {
		var exts []string
		if exts, err = fs.GetStringSlice(FlagAllowedExtensions); err == nil {
			c.AllowedExtensions = parseList(strings.Join(exts, ","))
		}
	}
	if changed(FlagColorCount) {
		c.DefaultColorCount, err = fs.GetInt(FlagColorCount)
	}
	if changed(FlagMaxSamplePixels) {
		c.MaxSamplePixels, err = fs.GetInt(FlagMaxSamplePixels)
	}
	if changed(FlagSeed) {
		c.Seed, err = fs.GetInt64(FlagSeed)
	}
	if changed(FlagLogLevel) {
		c.LogLevel, err = fs.GetString(FlagLogLevel)
	}
	if changed(FlagLogJSON) {
		c.LogJSON, err = fs.GetBool(FlagLogJSON)
	}
	if changed(FlagUniqueNames) {
		c.UniqueNames, err = fs.GetBool(FlagUniqueNames)
	}

	return err
}
