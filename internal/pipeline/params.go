// Package pipeline runs palette extraction end to end: sampling, colour-space
// conversion, clustering, rendering and formatting.
package pipeline

import (
	"errors"
	"fmt"
	"strconv"
	"strings"

	"github.com/jmylchreest/yourpalette/internal/colour"
)

const (
	// MinColorCount is the smallest palette that can be requested.
	MinColorCount = 2

	// MaxColorCount is the largest palette that can be requested.
	MaxColorCount = 12

	// DefaultColorCount is used when no count is given.
	DefaultColorCount = 4
)

// Params are the per-request processing parameters.
type Params struct {
	ColorCount int           `json:"color_count"`
	Method     colour.Method `json:"clustering_method"`
	Space      colour.Space  `json:"color_space"`
}

// DefaultParams returns four colours, standard k-means, RGB.
func DefaultParams() Params {
	return Params{
		ColorCount: DefaultColorCount,
		Method:     colour.MethodKMeans,
		Space:      colour.SpaceRGB,
	}
}

// Normalize clamps the colour count into [MinColorCount, MaxColorCount] and
// replaces unknown methods and spaces with the defaults.
func (p Params) Normalize() Params {
	p.ColorCount = ClampColorCount(p.ColorCount)
	if !colour.IsValidMethod(p.Method) {
		p.Method = colour.MethodKMeans
	}
	if _, err := colour.ParseSpace(string(p.Space)); err != nil {
		p.Space = colour.SpaceRGB
	}
	return p
}

// ClampColorCount bounds n to the supported palette sizes.
func ClampColorCount(n int) int {
	return min(max(n, MinColorCount), MaxColorCount)
}

// ParseParams builds normalised Params from raw form values. Empty values take
// the defaults from base. Values that cannot be used are replaced and
// reported in the returned error, which is advisory: the Params are always
// usable.
func ParseParams(colorCount, method, space string, base Params) (Params, error) {
	p := base
	var errs []error

	if s := strings.TrimSpace(colorCount); s != "" {
		n, err := strconv.Atoi(s)
		if err != nil {
			errs = append(errs, fmt.Errorf("invalid colour count %q, using %d", colorCount, base.ColorCount))
		} else {
			p.ColorCount = n
		}
	}

	if strings.TrimSpace(method) != "" {
		m, err := colour.ParseMethod(method)
		if err != nil {
			errs = append(errs, fmt.Errorf("%w, using %s", err, colour.MethodKMeans))
			m = colour.MethodKMeans
		}
		p.Method = m
	}

	if strings.TrimSpace(space) != "" {
		sp, err := colour.ParseSpace(space)
		if err != nil {
			errs = append(errs, fmt.Errorf("%w, using %s", err, colour.SpaceRGB))
			sp = colour.SpaceRGB
		}
		p.Space = sp
	}

	return p.Normalize(), errors.Join(errs...)
}
