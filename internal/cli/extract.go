package cli

import (
	"bytes"
	"fmt"
	"image"
	"io"
	"os"
	"slices"
	"strings"

	"github.com/hashicorp/go-hclog"
	"github.com/spf13/cobra"
	"golang.org/x/term"

	"github.com/jmylchreest/yourpalette/internal/colour"
	"github.com/jmylchreest/yourpalette/internal/config"
	"github.com/jmylchreest/yourpalette/internal/export"
	imageutil "github.com/jmylchreest/yourpalette/internal/image"
	"github.com/jmylchreest/yourpalette/internal/pipeline"
	"github.com/jmylchreest/yourpalette/internal/render"
	"github.com/jmylchreest/yourpalette/internal/security"
	"github.com/jmylchreest/yourpalette/internal/util/imagecache"
)

// Output formats only the command line offers.
const (
	formatHex   = "hex"
	formatRGB   = "rgb"
	formatTable = "table"
)

// previewWidth is the swatch width, in cells, of --preview output.
const previewWidth = 8

type extractOptions struct {
	colours         int
	method          string
	space           string
	format          string
	output          string
	render          string
	zoom            float64
	preview         bool
	seed            int64
	maxSamplePixels int
	maxBytes        int64
	cache           bool
	cacheDir        string
}

func newExtractCmd() *cobra.Command {
	opts := &extractOptions{}

	cmd := &cobra.Command{
		Use:   "extract <image>",
		Short: "Extract a colour palette from an image",
		Long: `Extract a colour palette from an image file or HTTPS URL.

The image is clustered into the requested number of colours using k-means,
mini-batch k-means or spectral clustering, in RGB, HSV or LAB space.

Supported image formats: JPEG, PNG, GIF, WebP

Examples:
  # Extract 4 colours (default) from an image
  yourpalette extract photo.jpg

  # Extract 8 colours with mini-batch k-means in LAB space
  yourpalette extract -c 8 -m minibatch -s lab photo.png

  # Show colour swatches in the terminal
  yourpalette extract --preview photo.jpg

  # Export as CSS custom properties
  yourpalette extract -f css -o palette.css photo.jpg

  # Save the image with its palette rendered underneath
  yourpalette extract --render photo_palette.png photo.jpg

  # Extract from a remote image, caching the download
  yourpalette extract --cache https://example.com/wallpaper.jpg`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runExtract(cmd, args[0], opts)
		},
	}

	flags := cmd.Flags()
	flags.IntVarP(&opts.colours, "colours", "c", pipeline.DefaultColorCount,
		fmt.Sprintf("number of colours to extract (%d-%d)", pipeline.MinColorCount, pipeline.MaxColorCount))
	flags.StringVarP(&opts.method, "method", "m", string(colour.MethodKMeans),
		fmt.Sprintf("clustering method (%s)", joinStrings(colour.ValidMethods())))
	flags.StringVarP(&opts.space, "space", "s", string(colour.SpaceRGB),
		fmt.Sprintf("colour space (%s)", joinStrings(colour.ValidSpaces())))
	flags.StringVarP(&opts.format, "format", "f", formatHex,
		fmt.Sprintf("output format (%s)", strings.Join(outputFormats(), ", ")))
	flags.StringVarP(&opts.output, "output", "o", "", "output file (default: stdout)")
	flags.StringVar(&opts.render, "render", "", "write the image with its palette swatches to this file")
	flags.Float64Var(&opts.zoom, "zoom", render.DefaultZoom, "scale applied to the rendered image")
	flags.BoolVar(&opts.preview, "preview", false, "show colour previews in terminal")
	flags.Int64Var(&opts.seed, "seed", colour.DefaultSeed, "random seed for clustering")
	flags.IntVar(&opts.maxSamplePixels, "max-sample-pixels", 0, "downscale images above this many pixels before clustering (0 disables)")
	flags.Int64Var(&opts.maxBytes, "max-download-bytes", 32<<20, "maximum size of images fetched from a URL")
	flags.BoolVar(&opts.cache, "cache", false, "keep images fetched from a URL on disk and reuse them")
	flags.StringVar(&opts.cacheDir, "cache-dir", "", "directory for cached images (default: user cache directory)")

	return cmd
}

func runExtract(cmd *cobra.Command, source string, opts *extractOptions) error {
	params, err := opts.params()
	if err != nil {
		return err
	}
	if !isOutputFormat(opts.format) {
		return fmt.Errorf("unsupported format: %s (supported: %s)", opts.format, strings.Join(outputFormats(), ", "))
	}

	stderr := cmd.ErrOrStderr()
	logger := hclog.NewNullLogger()
	if verbose(cmd) {
		logger = config.NewLogger(config.Config{LogLevel: "debug"}, stderr)
		fmt.Fprintf(stderr, "Loading image: %s\n", source)
	}

	if !isRemote(source) && !imageutil.AllowedFile(source, imageutil.SupportedImageExtensions()) {
		return fmt.Errorf("unsupported image format: %s (supported: %s)", source, strings.Join(imageutil.SupportedImageExtensions(), ", "))
	}

	smart := imageutil.NewSmartLoader(opts.maxBytes)
	if opts.cache {
		smart.Cache = &imagecache.Cache{Dir: opts.cacheDir, MaxBytes: opts.maxBytes}
	}

	var loader imageutil.Loader = smart
	img, err := loader.LoadContext(cmd.Context(), source)
	if err != nil {
		return fmt.Errorf("failed to load image: %w", err)
	}

	if verbose(cmd) {
		b := img.Bounds()
		fmt.Fprintf(stderr, "Image loaded: %dx%d\n", b.Dx(), b.Dy())
		fmt.Fprintf(stderr, "Extracting %d colours using %s in %s space...\n", params.ColorCount, params.Method, params.Space)
	}

	processor := pipeline.NewProcessor(pipeline.Options{
		Seed:            &opts.seed,
		MaxSamplePixels: opts.maxSamplePixels,
		Render:          render.Options{Zoom: opts.zoom},
		Logger:          logger,
	})

	var palette colour.Palette
	if opts.render != "" {
		result, err := processor.Process(cmd.Context(), img, params)
		if err != nil {
			return fmt.Errorf("failed to extract colours: %w", err)
		}
		if err := writeComposite(opts.render, result.Composite); err != nil {
			return err
		}
		if verbose(cmd) {
			fmt.Fprintf(stderr, "Wrote rendered palette to %s\n", opts.render)
		}
		palette = result.Palette
	} else {
		palette, _, _, err = processor.Extract(cmd.Context(), img, params)
		if err != nil {
			return fmt.Errorf("failed to extract colours: %w", err)
		}
	}
	if verbose(cmd) {
		fmt.Fprint(stderr, palette)
	}
	records := colour.FormatRecords(palette)

	showPreview := opts.preview && opts.output == "" && isTerminal(cmd.OutOrStdout())
	if opts.preview && !showPreview && verbose(cmd) {
		fmt.Fprintln(stderr, "Preview disabled: output is not a terminal")
	}

	output, err := formatRecords(records, opts.format, showPreview)
	if err != nil {
		return fmt.Errorf("failed to format output: %w", err)
	}

	if opts.output == "" {
		_, err := io.WriteString(cmd.OutOrStdout(), output)
		return err
	}
	if err := os.WriteFile(opts.output, []byte(output), 0o644); err != nil { // #nosec G306 -- palette files are meant to be shared
		return fmt.Errorf("failed to write output file: %w", err)
	}
	if verbose(cmd) {
		fmt.Fprintf(stderr, "Successfully wrote palette to %s\n", opts.output)
	}
	return nil
}

// params validates the method and space strictly. The colour count is
// clamped into range like it is for web requests.
func (o *extractOptions) params() (pipeline.Params, error) {
	method, err := colour.ParseMethod(o.method)
	if err != nil {
		return pipeline.Params{}, err
	}
	space, err := colour.ParseSpace(o.space)
	if err != nil {
		return pipeline.Params{}, err
	}
	return pipeline.Params{
		ColorCount: o.colours,
		Method:     method,
		Space:      space,
	}.Normalize(), nil
}

func writeComposite(path string, img image.Image) error {
	var buf bytes.Buffer
	if err := render.Encode(&buf, path, img); err != nil {
		return err
	}
	if err := os.WriteFile(path, buf.Bytes(), 0o644); err != nil { // #nosec G306 -- rendered images are meant to be shared
		return fmt.Errorf("failed to write rendered image: %w", err)
	}
	return nil
}

// outputFormats lists every --format value.
func outputFormats() []string {
	formats := []string{formatHex, formatRGB, formatTable}
	for _, f := range export.ValidFormats() {
		formats = append(formats, string(f))
	}
	return formats
}

func isOutputFormat(format string) bool {
	return slices.Contains(outputFormats(), format)
}

// formatRecords renders records in one of the output formats.
func formatRecords(records []colour.ColorRecord, format string, showPreview bool) (string, error) {
	var b strings.Builder
	switch format {
	case formatHex:
		for _, rec := range records {
			if showPreview {
				b.WriteString(colour.FormatRecordWithPreview(rec, previewWidth))
			} else {
				b.WriteString(rec.Hex)
			}
			b.WriteString("\n")
		}
		return b.String(), nil
	case formatRGB:
		for _, rec := range records {
			if showPreview {
				b.WriteString(colour.ColourPreview(recordRGB(rec), previewWidth) + "  ")
			}
			b.WriteString(rec.RGB)
			b.WriteString("\n")
		}
		return b.String(), nil
	case formatTable:
		return paletteTable(records, showPreview).Render(), nil
	}

	f, err := export.ParseFormat(format)
	if err != nil {
		return "", err
	}
	out, err := export.Render(f, records)
	if err != nil {
		return "", err
	}
	if !strings.HasSuffix(out, "\n") {
		out += "\n"
	}
	return out, nil
}

func recordRGB(rec colour.ColorRecord) colour.RGB {
	return colour.RGB{R: security.SafeUint8(rec.R), G: security.SafeUint8(rec.G), B: security.SafeUint8(rec.B)}
}

func isRemote(source string) bool {
	return strings.HasPrefix(source, "https://") || strings.HasPrefix(source, "http://")
}

func isTerminal(w io.Writer) bool {
	f, ok := w.(*os.File)
	return ok && term.IsTerminal(int(f.Fd())) // #nosec G115 -- file descriptors fit in int
}

func joinStrings[T ~string](values []T) string {
	parts := make([]string, len(values))
	for i, v := range values {
		parts[i] = string(v)
	}
	return strings.Join(parts, ", ")
}
