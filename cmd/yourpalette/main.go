// YourPalette - extract colour palettes from images
//
// YourPalette clusters an image's pixels into a small palette, renders the
// image with its palette as swatches, and serves both over a web interface.
//
// Copyright (c) 2025 John Mylchreest
// Licensed under the MIT License
package main

import (
	"os"

	"github.com/jmylchreest/yourpalette/internal/cli"
)

func main() {
	if err := cli.NewRootCmd().Execute(); err != nil {
		os.Exit(1)
	}
}
