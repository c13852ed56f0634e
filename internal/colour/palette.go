// Package colour provides colour-space conversion, palette extraction and palette formatting.
package colour

import (
	"fmt"
	"image/color"

	"github.com/jmylchreest/yourpalette/internal/security"
)

// Normalized is a colour with each channel in [0,1].
type Normalized struct {
	R float64 `json:"r"`
	G float64 `json:"g"`
	B float64 `json:"b"`
}

// RGB converts the colour to 8-bit channels. Each channel is truncated
// (int(channel * 255)) and clamped to 0-255.
func (n Normalized) RGB() RGB {
	return RGB{
		R: channelByte(n.R),
		G: channelByte(n.G),
		B: channelByte(n.B),
	}
}

// Color returns the colour as an opaque color.Color.
func (n Normalized) Color() color.Color {
	return RGBToColor(n.RGB())
}

// channelByte truncates a normalised channel to 8 bits.
func channelByte(v float64) uint8 {
	return security.SafeUint8(int(v * 255))
}

// Palette is an ordered set of normalised colours. Order follows cluster
// index and carries no perceptual meaning.
type Palette []Normalized

// PaletteFromCenters converts cluster centres in the given working space into
// a palette, preserving their order.
func PaletteFromCenters(space Space, centers []Point) Palette {
	p := make(Palette, len(centers))
	for i, c := range centers {
		p[i] = space.Inverse(c)
	}
	return p
}

// Len returns the number of colours in the palette.
func (p Palette) Len() int {
	return len(p)
}

// ToHex converts the palette colours to hex strings.
// Returns a slice of hex color codes (e.g., ["#1a2b3c", "#4d5e6f"]).
func (p Palette) ToHex() []string {
	hexColors := make([]string, len(p))
	for i, c := range p {
		hexColors[i] = c.RGB().Hex()
	}
	return hexColors
}

// String returns a human-readable string representation of the palette.
func (p Palette) String() string {
	if len(p) == 0 {
		return "Empty palette"
	}

	result := fmt.Sprintf("Palette with %d colors:\n", len(p))
	for _, rec := range FormatRecords(p) {
		result += fmt.Sprintf("  %2d: %s (%s)\n", rec.Index, rec.Hex, rec.RGB)
	}
	return result
}

// RGB represents a color in RGB format.
type RGB struct {
	R uint8 `json:"r"`
	G uint8 `json:"g"`
	B uint8 `json:"b"`
}

// String returns the RGB color as a string in the format "rgb(r, g, b)".
func (rgb RGB) String() string {
	return fmt.Sprintf("rgb(%d, %d, %d)", rgb.R, rgb.G, rgb.B)
}

// Hex returns the RGB color as a hex string (e.g., "#1a2b3c").
func (rgb RGB) Hex() string {
	return fmt.Sprintf("#%02x%02x%02x", rgb.R, rgb.G, rgb.B)
}

// ToRGB converts a color.Color to RGB.
func ToRGB(c color.Color) RGB {
	r, g, b, _ := c.RGBA()
	// RGBA returns values in the range [0, 65535], convert to [0, 255]
	return RGB{
		R: uint8(r >> 8),
		G: uint8(g >> 8),
		B: uint8(b >> 8),
	}
}

// RGBToColor converts an RGB value to a color.Color (RGBA).
func RGBToColor(rgb RGB) color.Color {
	return color.RGBA{R: rgb.R, G: rgb.G, B: rgb.B, A: 255}
}

// ColorRecord is the display view of one palette entry.
type ColorRecord struct {
	Index int    `json:"index"`
	Hex   string `json:"hex"`
	RGB   string `json:"rgb"`
	R     int    `json:"r"`
	G     int    `json:"g"`
	B     int    `json:"b"`
}

// FormatRecords returns one record per palette entry, in palette order,
// with 1-based indices.
func FormatRecords(p Palette) []ColorRecord {
	records := make([]ColorRecord, len(p))
	for i, c := range p {
		rgb := c.RGB()
		records[i] = ColorRecord{
			Index: i + 1,
			Hex:   rgb.Hex(),
			RGB:   rgb.String(),
			R:     int(rgb.R),
			G:     int(rgb.G),
			B:     int(rgb.B),
		}
	}
	return records
}
