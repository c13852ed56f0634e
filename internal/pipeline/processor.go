package pipeline

import (
	"context"
	"fmt"
	"image"
	"time"

	"github.com/hashicorp/go-hclog"

	"github.com/jmylchreest/yourpalette/internal/colour"
	imageutil "github.com/jmylchreest/yourpalette/internal/image"
	"github.com/jmylchreest/yourpalette/internal/render"
)

// Options configures a Processor.
type Options struct {
	// Seed fixes the clustering random source. Nil selects colour.DefaultSeed.
	Seed *int64

	// MaxSamplePixels downscales large images before sampling. Zero disables.
	MaxSamplePixels int

	// Render configures the composite.
	Render render.Options

	// Logger receives pipeline progress. Nil disables logging.
	Logger hclog.Logger
}

// Result is the output of one pipeline run.
type Result struct {
	Palette   colour.Palette
	Records   []colour.ColorRecord
	Composite image.Image
	Params    Params

	// SubsampleLabels is set by the spectral method only.
	SubsampleLabels []int
}

// Processor runs convert, extract, render and format for one image at a time.
// It holds no per-request state and is safe for concurrent use.
type Processor struct {
	opts   Options
	logger hclog.Logger
}

// NewProcessor creates a new Processor.
func NewProcessor(opts Options) *Processor {
	logger := opts.Logger
	if logger == nil {
		logger = hclog.NewNullLogger()
	}
	return &Processor{
		opts:   opts,
		logger: logger.Named("pipeline"),
	}
}

// Process extracts a palette from img and renders its composite.
func (p *Processor) Process(ctx context.Context, img image.Image, params Params) (*Result, error) {
	palette, clustering, params, err := p.Extract(ctx, img, params)
	if err != nil {
		return nil, err
	}

	start := time.Now()
	composite, err := render.Composite(img, palette, p.opts.Render)
	if err != nil {
		return nil, fmt.Errorf("failed to render palette: %w", err)
	}
	p.logger.Debug("composite rendered", "bounds", composite.Bounds().String(), "elapsed", time.Since(start))

	return &Result{
		Palette:         palette,
		Records:         colour.FormatRecords(palette),
		Composite:       composite,
		Params:          params,
		SubsampleLabels: clustering.SubsampleLabels,
	}, nil
}

// Extract runs the sampling and clustering steps only and returns the palette
// along with the raw clustering and the normalised params actually used.
func (p *Processor) Extract(ctx context.Context, img image.Image, params Params) (colour.Palette, *colour.Clustering, Params, error) {
	params = params.Normalize()

	sampled := imageutil.Downscale(img, p.opts.MaxSamplePixels)
	set, err := colour.NewSampleSet(sampled)
	if err != nil {
		return nil, nil, params, fmt.Errorf("failed to sample image: %w", err)
	}

	extractor, err := colour.NewExtractor(params.Method, colour.ExtractorOptions{
		Seed:   p.opts.Seed,
		Logger: p.logger,
	})
	if err != nil {
		return nil, nil, params, err
	}

	start := time.Now()
	points := params.Space.Forward(set)
	clustering, err := extractor.Extract(ctx, points, params.ColorCount)
	if err != nil {
		return nil, nil, params, fmt.Errorf("failed to extract %d colours: %w", params.ColorCount, err)
	}

	palette := colour.PaletteFromCenters(params.Space, clustering.Centers)
	p.logger.Debug("palette extracted",
		"palette", palette.ToHex(),
		"samples", set.Len(),
		"k", params.ColorCount,
		"method", params.Method,
		"space", params.Space,
		"iterations", clustering.Iterations,
		"elapsed", time.Since(start),
	)

	return palette, clustering, params, nil
}
