package colour

import (
	"fmt"
	"slices"
	"strings"

	"github.com/lucasb-eyer/go-colorful"
)

// Space identifies the working colour space clustering runs in.
type Space string

const (
	// SpaceRGB clusters on native 8-bit RGB channels (identity transform).
	SpaceRGB Space = "rgb"

	// SpaceHSV clusters on hue, saturation and value, each scaled to 0-255.
	SpaceHSV Space = "hsv"

	// SpaceLAB clusters on CIE L*a*b* (D65 white point).
	SpaceLAB Space = "lab"
)

// Point is a position in a working colour space: a sample after forward
// conversion, or a cluster centre.
type Point [3]float64

// distanceSq returns the squared Euclidean distance between two points.
func (p Point) distanceSq(o Point) float64 {
	d0 := p[0] - o[0]
	d1 := p[1] - o[1]
	d2 := p[2] - o[2]
	return d0*d0 + d1*d1 + d2*d2
}

// ValidSpaces returns the supported colour spaces.
func ValidSpaces() []Space {
	return []Space{SpaceRGB, SpaceHSV, SpaceLAB}
}

// ParseSpace converts a name to a Space. Matching is case-insensitive.
func ParseSpace(s string) (Space, error) {
	space := Space(strings.ToLower(strings.TrimSpace(s)))
	if slices.Contains(ValidSpaces(), space) {
		return space, nil
	}
	return "", fmt.Errorf("unknown colour space: %s (valid: %v)", s, ValidSpaces())
}

// String returns the space name.
func (sp Space) String() string {
	return string(sp)
}

// Forward converts every sample of the set into the working space.
func (sp Space) Forward(set *SampleSet) []Point {
	points := make([]Point, set.Len())
	for i, s := range set.All() {
		points[i] = sp.ToPoint(s)
	}
	return points
}

// ToPoint converts a single 8-bit sample into the working space.
func (sp Space) ToPoint(s Sample) Point {
	switch sp {
	case SpaceHSV:
		h, sat, v := sampleColorful(s).Hsv()
		return Point{h / 360 * 255, sat * 255, v * 255}
	case SpaceLAB:
		l, a, b := sampleColorful(s).Lab()
		return Point{l * 100, a * 100, b * 100}
	default:
		return Point{float64(s[0]), float64(s[1]), float64(s[2])}
	}
}

// Inverse converts a point in the working space back to normalised RGB.
// Centroids produced by averaging can sit slightly outside the displayable
// gamut, so the result is always clamped into [0,1].
func (sp Space) Inverse(p Point) Normalized {
	var c colorful.Color
	switch sp {
	case SpaceHSV:
		c = colorful.Hsv(p[0]/255*360, p[1]/255, p[2]/255)
	case SpaceLAB:
		c = colorful.Lab(p[0]/100, p[1]/100, p[2]/100)
	default:
		c = colorful.Color{R: p[0] / 255, G: p[1] / 255, B: p[2] / 255}
	}
	c = c.Clamped()
	return Normalized{R: c.R, G: c.G, B: c.B}
}

func sampleColorful(s Sample) colorful.Color {
	return colorful.Color{
		R: float64(s[0]) / 255,
		G: float64(s[1]) / 255,
		B: float64(s[2]) / 255,
	}
}
