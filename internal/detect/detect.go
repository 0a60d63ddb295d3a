package detect

import (
	"fmt"
	"image"

	"sprite-slicer/internal/grid"
	"sprite-slicer/internal/monitoring"
	"sprite-slicer/internal/segment"
)

// Result is a validated grid together with how it was found.
type Result struct {
	*grid.Descriptor
	Mode             segment.Mode // resolved segmentation mode
	ForegroundPixels int
	Config           Config
}

// Segmentation is the output of the segmentation half of the pipeline.
type Segmentation struct {
	Mode             segment.Mode
	Map              *segment.Map
	Regions          []segment.Region
	ForegroundPixels int
}

// Segment resolves the mode, builds the segmentation map and extracts
// regions. The config is validated before any pixel is read. When region
// extraction fails the partial Segmentation is returned with the error.
func Segment(img image.Image, cfg Config) (*Segmentation, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	params := cfg.SegmentParams()
	params.Mode = segment.ResolveMode(img, cfg.Mode)

	m, err := segment.BuildMap(img, params)
	if err != nil {
		return nil, fmt.Errorf("build segmentation map: %w", err)
	}
	seg := &Segmentation{
		Mode:             params.Mode,
		Map:              m,
		ForegroundPixels: m.Count(),
	}

	seg.Regions, err = segment.ExtractRegions(m, params.MinSpriteSize)
	return seg, err
}

// Run executes the full pipeline on img. It fails with
// *segment.EmptySegmentationError when nothing survives noise filtering and
// *grid.IrregularGridError when the regions are not a complete grid. Run is
// stateless; the caller decides whether to retry with other tolerances.
func Run(img image.Image, cfg Config) (*Result, error) {
	defer monitoring.Timed("detect")()

	seg, err := Segment(img, cfg)
	if err != nil {
		return nil, err
	}
	monitoring.Logf("detect: mode=%s foreground=%d regions=%d", seg.Mode, seg.ForegroundPixels, len(seg.Regions))

	d, err := grid.Infer(seg.Regions, cfg.ColumnTolerance, cfg.RowTolerance)
	if err != nil {
		return nil, err
	}
	colPitch, _ := grid.Pitch(d.ColumnClusters)
	rowPitch, _ := grid.Pitch(d.RowClusters)
	monitoring.Logf("detect: grid %dx%d (pitch %.1f x %.1f px)", d.Columns, d.Rows, colPitch, rowPitch)

	return &Result{
		Descriptor:       d,
		Mode:             seg.Mode,
		ForegroundPixels: seg.ForegroundPixels,
		Config:           cfg,
	}, nil
}

// Manual lays out an explicit columns x rows grid over the whole image,
// bypassing segmentation.
func Manual(img image.Image, columns, rows int) (*grid.Descriptor, error) {
	return grid.Uniform(img.Bounds(), columns, rows)
}
