// Package main provides the sprite-slicer command: it slices a sprite sheet
// into frames, automatically or on an explicit grid, and writes an animated GIF.
package main

import (
	"errors"
	"flag"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
	"time"

	"sprite-slicer/internal/anim"
	"sprite-slicer/internal/config"
	"sprite-slicer/internal/detect"
	"sprite-slicer/internal/grid"
	"sprite-slicer/internal/manifest"
	"sprite-slicer/internal/monitoring"
	"sprite-slicer/internal/segment"
	"sprite-slicer/internal/sheet"
	"sprite-slicer/internal/version"
	"sprite-slicer/pkg/colorutil"
)

func main() {
	monitoring.Configure(os.Stderr, "sprite-slicer: ", false)
	if err := run(os.Args[1:], os.Stdout); err != nil {
		fmt.Fprintf(os.Stderr, "sprite-slicer: %v\n", err)
		os.Exit(1)
	}
}

// options is the parsed command line.
type options struct {
	in, out      string
	configPath   string
	writeJSON    bool
	columns      int
	rows         int
	quiet        bool
	showVersion  bool
	detect       detect.Config
	anim         anim.Options
	manifestMode string
}

func run(args []string, stdout io.Writer) error {
	opts, err := parseFlags(args)
	if err != nil {
		return err
	}
	if opts.showVersion {
		fmt.Fprintln(stdout, version.String())
		return nil
	}
	if opts.quiet {
		monitoring.SetLogger(nil)
	}

	s, err := sheet.Load(opts.in)
	if err != nil {
		return err
	}
	monitoring.Logf("Loaded %s image %s: %dx%d pixels", s.Format, s.Path, s.Width(), s.Height())

	d, mode, err := slice(s, opts)
	if err != nil {
		return err
	}
	opts.manifestMode = mode

	g, err := anim.Assemble(s.Image, d.Sprites, opts.anim)
	if err != nil {
		return fmt.Errorf("assemble animation: %w", err)
	}
	if err := anim.WriteFile(opts.out, g); err != nil {
		return err
	}
	fmt.Fprintf(stdout, "%s: %dx%d grid, %d frames -> %s\n", filepath.Base(opts.in), d.Columns, d.Rows, len(g.Image), opts.out)

	if opts.writeJSON {
		path := manifest.DefaultPath(opts.out)
		if err := newManifest(path, opts, d).Save(path); err != nil {
			return fmt.Errorf("write manifest: %w", err)
		}
		fmt.Fprintf(stdout, "manifest -> %s\n", path)
	}
	return nil
}

// slice produces the grid descriptor, either from explicit -cols/-rows or
// from automatic detection. It returns the mode name recorded in the manifest.
func slice(s *sheet.Sheet, opts *options) (*grid.Descriptor, string, error) {
	if opts.columns > 0 || opts.rows > 0 {
		if opts.columns < 1 || opts.rows < 1 {
			return nil, "", errors.New("manual mode needs both -cols and -rows")
		}
		d, err := detect.Manual(s.Image, opts.columns, opts.rows)
		if err != nil {
			return nil, "", err
		}
		return d, "manual", nil
	}

	res, err := detect.Run(s.Image, opts.detect)
	if err != nil {
		return nil, "", explain(err)
	}
	return res.Descriptor, res.Mode.String(), nil
}

// explain adds a retry hint to detection failures.
func explain(err error) error {
	var ige *grid.IrregularGridError
	switch {
	case errors.As(err, &ige):
		return fmt.Errorf("%w\nhint: adjust -tolerance (or -col-tolerance/-row-tolerance), or pass -cols and -rows", err)
	case errors.Is(err, segment.ErrEmptySegmentation):
		return fmt.Errorf("%w\nhint: adjust -alpha-threshold, -color-tolerance, -bg or -min-size", err)
	}
	return err
}

func newManifest(path string, opts *options, d *grid.Descriptor) *manifest.File {
	src, err := filepath.Abs(opts.in)
	if err != nil {
		src = opts.in
	}
	m := manifest.New(path, src, opts.manifestMode, d)
	m.Settings = manifest.Settings{
		FrameDelayMS: int(opts.anim.Delay / time.Millisecond),
		Scale:        opts.anim.Scale,
		Anchor:       opts.anim.Anchor.String(),
		Center:       opts.anim.Center.String(),
		Unified:      opts.anim.Unified,
		Transparent:  opts.anim.Transparent,
	}
	if opts.manifestMode != "manual" {
		c := opts.detect
		m.Settings.AlphaThreshold = c.AlphaThreshold
		m.Settings.ColorTolerance = c.ColorTolerance
		m.Settings.MinSpriteSize = c.MinSpriteSize
		m.Settings.ColumnTolerance = c.ColumnTolerance
		m.Settings.RowTolerance = c.RowTolerance
		if c.Background != nil {
			m.Settings.Background = colorutil.Hex(*c.Background)
		}
	}
	return m
}

func parseFlags(args []string) (*options, error) {
	fs := flag.NewFlagSet("sprite-slicer", flag.ContinueOnError)
	fs.Usage = func() {
		fmt.Fprintln(fs.Output(), "Usage: sprite-slicer [flags] <sheet.png>")
		fs.PrintDefaults()
	}

	defDetect := detect.DefaultConfig()
	defAnim := anim.DefaultOptions()

	opts := &options{}
	fs.StringVar(&opts.out, "out", "", "Output GIF path (default: <sheet>.gif)")
	fs.StringVar(&opts.configPath, "config", "", "JSON tuning file")
	fs.BoolVar(&opts.writeJSON, "json", false, "Also write a JSON manifest next to the GIF")
	fs.IntVar(&opts.columns, "cols", 0, "Manual mode: number of columns (skips detection)")
	fs.IntVar(&opts.rows, "rows", 0, "Manual mode: number of rows (skips detection)")
	fs.BoolVar(&opts.quiet, "quiet", false, "Suppress diagnostic logging")
	fs.BoolVar(&opts.showVersion, "version", false, "Print version and exit")

	mode := fs.String("mode", defDetect.Mode.String(), "Segmentation mode: auto, alpha or color")
	alpha := fs.Float64("alpha-threshold", defDetect.AlphaThreshold, "Alpha mode: foreground above this fraction of full opacity")
	bg := fs.String("bg", "", "Color mode: background color as #rrggbb (default: top-left pixel)")
	colorTol := fs.Float64("color-tolerance", defDetect.ColorTolerance, "Color mode: RGB distance from background that counts as foreground")
	minSize := fs.Int("min-size", defDetect.MinSpriteSize, "Minimum sprite size in pixels; smaller regions are noise")
	tol := fs.Float64("tolerance", defDetect.ColumnTolerance, "Grid line tolerance in pixels (columns and rows)")
	colTol := fs.Float64("col-tolerance", defDetect.ColumnTolerance, "Column tolerance in pixels (overrides -tolerance)")
	rowTol := fs.Float64("row-tolerance", defDetect.RowTolerance, "Row tolerance in pixels (overrides -tolerance)")

	delay := fs.Int("delay", int(defAnim.Delay/time.Millisecond), "Frame delay in milliseconds")
	loop := fs.Int("loop", defAnim.LoopCount, "Loop count: 0 forever, -1 once, n repeats")
	scale := fs.Int("scale", defAnim.Scale, "Integer upscale factor")
	anchor := fs.String("anchor", defAnim.Anchor.String(), "Frame anchor: bottom, center or topleft")
	pingPong := fs.Bool("pingpong", false, "Play frames forward then backward")
	dither := fs.Bool("dither", false, "Dither when reducing to the GIF palette")
	center := fs.String("center", defAnim.Center.String(), "Recenter sprite content on each frame: none, auto, alpha or color")
	unified := fs.Bool("unified", false, "With -center, use one content box for all frames")
	transparent := fs.Bool("transparent", false, "Make background pixels transparent in the GIF")

	if err := fs.Parse(args); err != nil {
		return nil, err
	}
	if opts.showVersion {
		return opts, nil
	}
	if fs.NArg() != 1 {
		fs.Usage()
		return nil, errors.New("expected exactly one sprite sheet")
	}
	opts.in = fs.Arg(0)
	if opts.out == "" {
		opts.out = strings.TrimSuffix(opts.in, filepath.Ext(opts.in)) + ".gif"
	}

	opts.detect = defDetect
	opts.anim = defAnim
	if opts.configPath != "" {
		tc, err := config.LoadTuningConfig(opts.configPath)
		if err != nil {
			return nil, err
		}
		if opts.detect, err = tc.ApplyDetect(opts.detect); err != nil {
			return nil, err
		}
		if opts.anim, err = tc.ApplyAnim(opts.anim); err != nil {
			return nil, err
		}
	}

	// Flags given explicitly win over the config file.
	set := map[string]bool{}
	fs.Visit(func(f *flag.Flag) { set[f.Name] = true })

	if set["mode"] {
		m, err := segment.ParseMode(*mode)
		if err != nil {
			return nil, err
		}
		opts.detect = opts.detect.WithMode(m)
	}
	if set["alpha-threshold"] {
		opts.detect = opts.detect.WithAlphaThreshold(*alpha)
	}
	if set["bg"] {
		c, err := colorutil.ParseHex(*bg)
		if err != nil {
			return nil, fmt.Errorf("-bg: %w", err)
		}
		opts.detect = opts.detect.WithBackground(c)
	}
	if set["color-tolerance"] {
		opts.detect = opts.detect.WithColorTolerance(*colorTol)
	}
	if set["min-size"] {
		opts.detect = opts.detect.WithMinSpriteSize(*minSize)
	}
	if set["tolerance"] {
		opts.detect = opts.detect.WithPositionTolerance(*tol)
	}
	if set["col-tolerance"] {
		opts.detect.ColumnTolerance = *colTol
	}
	if set["row-tolerance"] {
		opts.detect.RowTolerance = *rowTol
	}
	if set["delay"] {
		opts.anim.Delay = time.Duration(*delay) * time.Millisecond
	}
	if set["loop"] {
		opts.anim.LoopCount = *loop
	}
	if set["scale"] {
		opts.anim.Scale = *scale
	}
	if set["anchor"] {
		a, err := anim.ParseAnchor(*anchor)
		if err != nil {
			return nil, err
		}
		opts.anim.Anchor = a
	}
	if set["pingpong"] {
		opts.anim.PingPong = *pingPong
	}
	if set["dither"] {
		opts.anim.Dither = *dither
	}
	if set["center"] {
		c, err := anim.ParseCentering(*center)
		if err != nil {
			return nil, err
		}
		opts.anim.Center = c
	}
	if set["unified"] {
		opts.anim.Unified = *unified
	}
	if set["transparent"] {
		opts.anim.Transparent = *transparent
	}
	// Frame content is told from background the same way sprites are.
	opts.anim.Content = opts.detect.SegmentParams()

	if err := opts.detect.Validate(); err != nil {
		return nil, err
	}
	if err := opts.anim.Validate(); err != nil {
		return nil, fmt.Errorf("invalid animation options: %w", err)
	}
	return opts, nil
}
