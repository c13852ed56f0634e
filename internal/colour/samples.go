package colour

import (
	"fmt"
	"image"
	"image/color"
)

// Sample is a single pixel of an image sample set as 8-bit R, G, B channels.
type Sample [3]uint8

// SampleSet is the ordered, row-major flattening of an image's pixels.
// It is immutable once built.
type SampleSet struct {
	samples []Sample
}

// NewSampleSet flattens an image into a sample set.
// Alpha is discarded; pixels are read in row-major order.
func NewSampleSet(img image.Image) (*SampleSet, error) {
	if img == nil {
		return nil, fmt.Errorf("image cannot be nil")
	}

	bounds := img.Bounds()
	samples := make([]Sample, 0, bounds.Dx()*bounds.Dy())

	// Fast path for the decoded formats that dominate uploads.
	switch src := img.(type) {
	case *image.NRGBA:
		for y := bounds.Min.Y; y < bounds.Max.Y; y++ {
			row := src.Pix[src.PixOffset(bounds.Min.X, y):]
			for x := 0; x < bounds.Dx(); x++ {
				samples = append(samples, Sample{row[x*4], row[x*4+1], row[x*4+2]})
			}
		}
	default:
		for y := bounds.Min.Y; y < bounds.Max.Y; y++ {
			for x := bounds.Min.X; x < bounds.Max.X; x++ {
				samples = append(samples, sampleOf(img.At(x, y)))
			}
		}
	}

	return &SampleSet{samples: samples}, nil
}

// NewSampleSetFromSamples builds a sample set from raw pixel triples.
// The input slice is copied.
func NewSampleSetFromSamples(samples []Sample) *SampleSet {
	cp := make([]Sample, len(samples))
	copy(cp, samples)
	return &SampleSet{samples: cp}
}

func sampleOf(c color.Color) Sample {
	rgb := ToRGB(c)
	return Sample{rgb.R, rgb.G, rgb.B}
}

// Len returns the number of samples.
func (s *SampleSet) Len() int {
	if s == nil {
		return 0
	}
	return len(s.samples)
}

// At returns the sample at index i.
func (s *SampleSet) At(i int) Sample {
	return s.samples[i]
}

// Distinct returns the number of distinct pixel values in the set.
func (s *SampleSet) Distinct() int {
	seen := make(map[Sample]struct{}, 256)
	for _, p := range s.samples {
		seen[p] = struct{}{}
	}
	return len(seen)
}

// All returns an iterator over all samples in order.
func (s *SampleSet) All() func(func(int, Sample) bool) {
	return func(yield func(int, Sample) bool) {
		for i, p := range s.samples {
			if !yield(i, p) {
				return
			}
		}
	}
}
