package colour

import (
	"fmt"
	"math"
	"strings"

	"github.com/jmylchreest/yourpalette/internal/security"
)

// ANSI escape codes for terminal colours.
const (
	ansiReset    = "\033[0m"
	ansiFgPrefix = "\033[38;2;"
	ansiBgPrefix = "\033[48;2;"
	ansiSuffix   = "m"
	defaultWidth = 8
)

// ColourPreview returns an ANSI-coloured preview string for a colour.
// Width specifies how many characters wide the colour block should be.
// Uses background colour with spaces for a solid block.
func ColourPreview(c RGB, width int) string {
	if width <= 0 {
		width = defaultWidth
	}

	bgColour := fmt.Sprintf("%s%d;%d;%d%s", ansiBgPrefix, c.R, c.G, c.B, ansiSuffix)
	return bgColour + strings.Repeat(" ", width) + ansiReset
}

// ColourPreviewWithText returns a colour preview with text overlay.
// The text colour is black or white, whichever reads better on the swatch.
func ColourPreviewWithText(c RGB, text string, width int) string {
	if width <= 0 {
		width = defaultWidth
	}

	var fg RGB
	if relativeLuminance(c) <= 0.5 {
		fg = RGB{R: 255, G: 255, B: 255}
	}

	bgColour := fmt.Sprintf("%s%d;%d;%d%s", ansiBgPrefix, c.R, c.G, c.B, ansiSuffix)
	fgColour := fmt.Sprintf("%s%d;%d;%d%s", ansiFgPrefix, fg.R, fg.G, fg.B, ansiSuffix)

	// Pad or truncate text to fit width.
	displayText := text
	if len(text) > width {
		displayText = text[:width]
	} else if len(text) < width {
		padding := (width - len(text)) / 2
		displayText = strings.Repeat(" ", padding) + text + strings.Repeat(" ", width-len(text)-padding)
	}

	return bgColour + fgColour + displayText + ansiReset
}

// relativeLuminance is the WCAG 2.0 relative luminance of an 8-bit colour.
func relativeLuminance(rgb RGB) float64 {
	return 0.2126*linearise(rgb.R) + 0.7152*linearise(rgb.G) + 0.0722*linearise(rgb.B)
}

func linearise(v uint8) float64 {
	c := float64(v) / 255.0
	if c <= 0.03928 {
		return c / 12.92
	}
	return math.Pow((c+0.055)/1.055, 2.4)
}

// FormatRecordWithPreview formats a colour record as a swatch followed by its
// hex and rgb strings.
func FormatRecordWithPreview(rec ColorRecord, width int) string {
	rgb := RGB{R: security.SafeUint8(rec.R), G: security.SafeUint8(rec.G), B: security.SafeUint8(rec.B)}
	return fmt.Sprintf("%s %s  %s", ColourPreviewWithText(rgb, fmt.Sprintf("%d", rec.Index), width), rec.Hex, rec.RGB)
}
