package cli

import (
	"encoding/json"
	"fmt"
	"io"
	"os"

	"github.com/spf13/cobra"

	"github.com/jmylchreest/yourpalette/internal/colour"
	"github.com/jmylchreest/yourpalette/internal/export"
)

func newExportCmd() *cobra.Command {
	var format string

	cmd := &cobra.Command{
		Use:   "export [palette.json]",
		Short: "Convert a JSON palette to another format",
		Long: `Convert a palette in JSON form, as printed by "extract -f json" or returned by
the web API, into CSS, SCSS, JSON or plain text. Reads stdin when no file is
given or the file is "-".

Examples:
  yourpalette extract -f json photo.jpg | yourpalette export -f scss
  yourpalette export -f css palette.json`,
		Args: cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			src := "-"
			if len(args) == 1 {
				src = args[0]
			}
			return runExport(cmd, src, format)
		},
	}

	cmd.Flags().StringVarP(&format, "format", "f", string(export.FormatCSS),
		fmt.Sprintf("output format (%s)", joinStrings(export.ValidFormats())))
	return cmd
}

func runExport(cmd *cobra.Command, src, format string) error {
	f, err := export.ParseFormat(format)
	if err != nil {
		return err
	}

	var r io.Reader = cmd.InOrStdin()
	if src != "-" {
		file, err := os.Open(src) // #nosec G304 -- user-specified input file
		if err != nil {
			return fmt.Errorf("failed to open palette: %w", err)
		}
		defer file.Close()
		r = file
	}

	var records []colour.ColorRecord
	if err := json.NewDecoder(r).Decode(&records); err != nil {
		return fmt.Errorf("failed to parse palette: %w", err)
	}

	out, err := export.Render(f, records)
	if err != nil {
		return err
	}
	_, err = io.WriteString(cmd.OutOrStdout(), out)
	return err
}
