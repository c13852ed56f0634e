// Package render draws palette visualisations: the source image above a strip
// of colour swatches.
package render

import (
	"errors"
	"fmt"
	"image"
	"io"

	"github.com/disintegration/imaging"
	"github.com/gogpu/gg"

	"github.com/jmylchreest/yourpalette/internal/colour"
)

const (
	// DefaultZoom is the scale applied to the finished composite.
	DefaultZoom = 0.5

	// stripRatio is the strip height as a fraction of the image height (4:1).
	stripRatio = 0.25

	// Horizontal layout in fractions of the canvas width.
	swatchMargin = 0.1
	swatchPitch  = 0.8
	swatchWidth  = 0.7

	// Vertical band of the strip the swatches occupy, measured from the top.
	swatchTop    = 0.0
	swatchBottom = 0.6
)

// ErrEmptyImage is returned when the source image has no pixels.
var ErrEmptyImage = errors.New("image has no pixels")

// Options configures composite rendering.
type Options struct {
	// Zoom scales the finished composite. Zero selects DefaultZoom; 1 keeps
	// the natural size.
	Zoom float64
}

func (o Options) zoom() float64 {
	if o.Zoom <= 0 {
		return DefaultZoom
	}
	return o.Zoom
}

// Layout describes where the image and each swatch land on the unscaled canvas.
type Layout struct {
	Width, Height int
	Image         image.Rectangle
	Swatches      []Rect
}

// Rect is a floating-point rectangle in canvas coordinates.
type Rect struct {
	X, Y, W, H float64
}

// ComputeLayout places an image of the given size and n swatches.
func ComputeLayout(width, height, n int) Layout {
	strip := max(1, int(float64(height)*stripRatio))
	l := Layout{
		Width:  width,
		Height: height + strip,
		Image:  image.Rect(0, 0, width, height),
	}
	if n == 0 {
		return l
	}

	w := float64(width)
	s := float64(strip)
	l.Swatches = make([]Rect, n)
	for i := range n {
		l.Swatches[i] = Rect{
			X: w * (swatchMargin + float64(i)*swatchPitch/float64(n)),
			Y: float64(height) + s*swatchTop,
			W: w * swatchWidth / float64(n),
			H: s * (swatchBottom - swatchTop),
		}
	}
	return l
}

// Composite draws img with a swatch per palette entry, in palette order,
// beneath it on a white background, then scales the result by opts.Zoom.
func Composite(img image.Image, palette colour.Palette, opts Options) (image.Image, error) {
	if img == nil {
		return nil, ErrEmptyImage
	}
	bounds := img.Bounds()
	if bounds.Empty() {
		return nil, ErrEmptyImage
	}

	layout := ComputeLayout(bounds.Dx(), bounds.Dy(), palette.Len())

	dc := gg.NewContext(layout.Width, layout.Height)
	defer dc.Close()

	dc.ClearWithColor(gg.White)
	dc.DrawImageEx(gg.ImageBufFromImage(img), gg.DrawImageOptions{
		X:         0,
		Y:         0,
		DstWidth:  float64(layout.Image.Dx()),
		DstHeight: float64(layout.Image.Dy()),
	})

	for i, sw := range layout.Swatches {
		dc.SetColor(palette[i].Color())
		dc.DrawRectangle(sw.X, sw.Y, sw.W, sw.H)
		if err := dc.Fill(); err != nil {
			return nil, fmt.Errorf("failed to draw swatch %d: %w", i+1, err)
		}
	}

	out := dc.Image()

	zoom := opts.zoom()
	if zoom == 1 {
		return out, nil
	}
	w := max(1, int(float64(layout.Width)*zoom))
	h := max(1, int(float64(layout.Height)*zoom))
	return imaging.Resize(out, w, h, imaging.Lanczos), nil
}

// EncodePNG writes img to w as PNG.
func EncodePNG(w io.Writer, img image.Image) error {
	if err := imaging.Encode(w, img, imaging.PNG); err != nil {
		return fmt.Errorf("failed to encode PNG: %w", err)
	}
	return nil
}

// Encode writes img to w in the format implied by name's extension.
// Unknown extensions fall back to PNG.
func Encode(w io.Writer, name string, img image.Image) error {
	format, err := imaging.FormatFromFilename(name)
	if err != nil {
		return EncodePNG(w, img)
	}
	if err := imaging.Encode(w, img, format); err != nil {
		return fmt.Errorf("failed to encode %s: %w", format, err)
	}
	return nil
}
