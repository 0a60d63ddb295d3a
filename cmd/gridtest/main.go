// Command gridtest runs sprite segmentation and grid inference on a sheet and
// prints the regions, grid lines and validation result.
package main

import (
	"errors"
	"flag"
	"fmt"
	"os"
	"strings"

	"sprite-slicer/internal/detect"
	"sprite-slicer/internal/grid"
	"sprite-slicer/internal/monitoring"
	"sprite-slicer/internal/segment"
	"sprite-slicer/internal/sheet"
	"sprite-slicer/pkg/colorutil"
)

func main() {
	imagePath := flag.String("image", "", "Path to sprite sheet (PNG, WebP, GIF, JPEG, BMP or TIFF)")
	mode := flag.String("mode", "auto", "Segmentation mode: auto, alpha or color")
	alpha := flag.Float64("alpha-threshold", segment.DefaultAlphaThreshold, "Alpha threshold (fraction of full opacity)")
	bg := flag.String("bg", "", "Background color #rrggbb (default: top-left pixel)")
	colorTol := flag.Float64("color-tolerance", segment.DefaultColorTolerance, "Color tolerance")
	minSize := flag.Int("min-size", segment.DefaultMinSpriteSize, "Minimum sprite size in pixels")
	tol := flag.Float64("tolerance", grid.DefaultTolerance, "Grid line tolerance in pixels")
	flag.Parse()

	if *imagePath == "" {
		fmt.Println("Usage: gridtest -image <path> [-mode auto|alpha|color] [-tolerance 10]")
		os.Exit(1)
	}
	monitoring.SetLogger(nil)

	s, err := sheet.Load(*imagePath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to load sheet: %v\n", err)
		os.Exit(1)
	}
	fmt.Printf("Loaded %s image: %dx%d pixels\n", s.Format, s.Width(), s.Height())

	m, err := segment.ParseMode(*mode)
	if err != nil {
		fmt.Fprintf(os.Stderr, "%v\n", err)
		os.Exit(1)
	}
	cfg := detect.DefaultConfig().
		WithMode(m).
		WithAlphaThreshold(*alpha).
		WithColorTolerance(*colorTol).
		WithMinSpriteSize(*minSize).
		WithPositionTolerance(*tol)
	if *bg != "" {
		c, err := colorutil.ParseHex(*bg)
		if err != nil {
			fmt.Fprintf(os.Stderr, "-bg: %v\n", err)
			os.Exit(1)
		}
		cfg = cfg.WithBackground(c)
	}

	fmt.Printf("\nParameters:\n")
	fmt.Printf("  Mode: %s  Alpha threshold: %.2f  Color tolerance: %.0f\n", cfg.Mode, cfg.AlphaThreshold, cfg.ColorTolerance)
	fmt.Printf("  Min sprite size: %d px  Tolerance: %.1f px\n", cfg.MinSpriteSize, cfg.ColumnTolerance)

	seg, err := detect.Segment(s.Image, cfg)
	if seg != nil {
		fmt.Printf("\nResolved mode: %s, %d foreground pixels\n", seg.Mode, seg.ForegroundPixels)
	}
	if err != nil {
		fmt.Fprintf(os.Stderr, "Segmentation failed: %v\n", err)
		os.Exit(1)
	}

	fmt.Printf("\nFound %d regions:\n", len(seg.Regions))
	fmt.Printf("%-6s %8s %8s %8s %8s %10s\n", "#", "X", "Y", "Width", "Height", "Pixels")
	fmt.Println(strings.Repeat("-", 54))
	for i, r := range seg.Regions {
		fmt.Printf("%-6d %8d %8d %8d %8d %10d\n",
			i+1, r.Bounds.X, r.Bounds.Y, r.Bounds.Width, r.Bounds.Height, r.PixelCount)
	}

	lefts := make([]int, len(seg.Regions))
	tops := make([]int, len(seg.Regions))
	for i, r := range seg.Regions {
		lefts[i], tops[i] = r.Left(), r.Top()
	}
	printClusters("Columns", grid.ClusterValues(lefts, cfg.ColumnTolerance))
	printClusters("Rows", grid.ClusterValues(tops, cfg.RowTolerance))

	d, err := grid.Infer(seg.Regions, cfg.ColumnTolerance, cfg.RowTolerance)
	var ige *grid.IrregularGridError
	switch {
	case errors.As(err, &ige):
		fmt.Printf("\nIrregular grid: %d regions for %dx%d\n", ige.Regions, ige.Columns, ige.Rows)
		for _, c := range ige.Cells {
			fmt.Printf("  col %d row %d (x=%.1f y=%.1f): %d regions\n", c.Column, c.Row, c.X, c.Y, c.Count)
		}
		os.Exit(2)
	case err != nil:
		fmt.Fprintf(os.Stderr, "Grid inference failed: %v\n", err)
		os.Exit(1)
	}

	fmt.Printf("\nGrid: %d columns x %d rows, %d sprites\n", d.Columns, d.Rows, d.Len())
}

func printClusters(name string, clusters []grid.Cluster) {
	mean, std := grid.Pitch(clusters)
	fmt.Printf("\n%s: %d (pitch %.1f px, std-dev %.2f)\n", name, len(clusters), mean, std)
	for i, c := range clusters {
		fmt.Printf("  %2d: mean %.1f  members %d  range %d-%d\n", i, c.Mean, c.Count, c.Min, c.Max)
	}
}
