package image

import (
	"image"
	"math"

	"golang.org/x/image/draw"
)

// Downscale shrinks img so that it holds at most maxPixels pixels, keeping
// the aspect ratio. Images already within the limit, and a maxPixels of zero
// or less, are returned unchanged.
func Downscale(img image.Image, maxPixels int) image.Image {
	if img == nil || maxPixels <= 0 {
		return img
	}

	bounds := img.Bounds()
	w, h := bounds.Dx(), bounds.Dy()
	if w*h <= maxPixels {
		return img
	}

	scale := math.Sqrt(float64(maxPixels) / float64(w*h))
	dw := max(1, int(float64(w)*scale))
	dh := max(1, int(float64(h)*scale))

	dst := image.NewNRGBA(image.Rect(0, 0, dw, dh))
	draw.CatmullRom.Scale(dst, dst.Rect, img, bounds, draw.Src, nil)
	return dst
}
