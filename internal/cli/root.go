// Package cli provides the command-line interface for YourPalette.
package cli

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/jmylchreest/yourpalette/internal/version"
)

// NewRootCmd builds the command tree.
func NewRootCmd() *cobra.Command {
	root := &cobra.Command{
		Use:   "yourpalette",
		Short: "Extract colour palettes from images",
		Long: `YourPalette extracts a dominant colour palette from an image by clustering
its pixels in RGB, HSV or LAB space, renders the image with its palette as
swatches, and exports the palette as CSS, SCSS, JSON or plain text.

Run "yourpalette serve" for the web interface, or "yourpalette extract" to
work from the command line.`,
		Version:      version.Short(),
		SilenceUsage: true,
	}

	root.PersistentFlags().BoolP("verbose", "v", false, "enable verbose output")
	root.SetVersionTemplate(version.String() + "\n")

	root.AddCommand(newVersionCmd())
	root.AddCommand(newServeCmd())
	root.AddCommand(newExtractCmd())
	root.AddCommand(newExportCmd())

	return root
}

// Execute runs the root command and exits non-zero on failure.
func Execute() {
	if err := NewRootCmd().Execute(); err != nil {
		os.Exit(1)
	}
}

func newVersionCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Print version information",
		Long:  `Print detailed version information including build date, commit hash, and Go version.`,
		Args:  cobra.NoArgs,
		Run: func(cmd *cobra.Command, _ []string) {
			fmt.Fprintln(cmd.OutOrStdout(), version.String())
		},
	}
}

func verbose(cmd *cobra.Command) bool {
	v, _ := cmd.Flags().GetBool("verbose")
	return v
}
