// Package export renders formatted palettes as stylesheet and text snippets.
package export

import (
	"bytes"
	"embed"
	"encoding/json"
	"errors"
	"fmt"
	"slices"
	"strings"
	"text/template"

	"github.com/jmylchreest/yourpalette/internal/colour"
)

//go:embed templates/*.tmpl
var templates embed.FS

// ErrUnsupportedFormat is returned for an export format that isn't known.
var ErrUnsupportedFormat = errors.New("unsupported export format")

// Format identifies an export representation.
type Format string

const (
	// FormatCSS is a :root block of custom properties.
	FormatCSS Format = "css"

	// FormatJSON is an indented array of colour records.
	FormatJSON Format = "json"

	// FormatSCSS is one Sass variable per colour plus a $palette list.
	FormatSCSS Format = "scss"

	// FormatText is one hex code per line.
	FormatText Format = "txt"
)

// ValidFormats returns every supported export format.
func ValidFormats() []Format {
	return []Format{FormatCSS, FormatJSON, FormatSCSS, FormatText}
}

// ParseFormat converts a format name to a Format.
func ParseFormat(s string) (Format, error) {
	f := Format(strings.ToLower(strings.TrimSpace(s)))
	if !slices.Contains(ValidFormats(), f) {
		return "", fmt.Errorf("%w: %q (valid formats: %v)", ErrUnsupportedFormat, s, ValidFormats())
	}
	return f, nil
}

// Extension returns the file extension conventionally used for the format.
func (f Format) Extension() string {
	return "." + string(f)
}

// ContentType returns the MIME type of the rendered output.
func (f Format) ContentType() string {
	switch f {
	case FormatCSS:
		return "text/css; charset=utf-8"
	case FormatJSON:
		return "application/json"
	case FormatSCSS:
		return "text/x-scss; charset=utf-8"
	default:
		return "text/plain; charset=utf-8"
	}
}

// Render renders records in the given format.
func Render(format Format, records []colour.ColorRecord) (string, error) {
	if records == nil {
		records = []colour.ColorRecord{}
	}

	switch format {
	case FormatJSON:
		data, err := json.MarshalIndent(records, "", "  ")
		if err != nil {
			return "", fmt.Errorf("failed to marshal palette: %w", err)
		}
		return string(data), nil
	case FormatCSS, FormatSCSS, FormatText:
		return renderTemplate(string(format)+".tmpl", records)
	default:
		return "", fmt.Errorf("%w: %q", ErrUnsupportedFormat, format)
	}
}

func renderTemplate(name string, records []colour.ColorRecord) (string, error) {
	tmplContent, err := templates.ReadFile("templates/" + name)
	if err != nil {
		return "", fmt.Errorf("failed to read %s template: %w", name, err)
	}

	tmpl, err := template.New(name).Parse(string(tmplContent))
	if err != nil {
		return "", fmt.Errorf("failed to parse %s template: %w", name, err)
	}

	var buf bytes.Buffer
	if err := tmpl.Execute(&buf, records); err != nil {
		return "", fmt.Errorf("failed to execute %s template: %w", name, err)
	}

	return buf.String(), nil
}
