// Package manifest reads and writes the JSON sidecar describing a sliced sheet.
package manifest

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"sprite-slicer/internal/grid"
	"sprite-slicer/pkg/geometry"
)

// CurrentVersion is the manifest schema version written by New.
const CurrentVersion = 1

// File is a sprite manifest (.json next to the generated GIF).
type File struct {
	Version int       `json:"version"`
	Source  string    `json:"source"` // sheet path, relative to the manifest
	Created time.Time `json:"created"`
	Mode    string    `json:"mode"` // "alpha", "color" or "manual"

	Columns int                `json:"columns"`
	Rows    int                `json:"rows"`
	Sprites []geometry.RectInt `json:"sprites"`

	Settings Settings `json:"settings"`
}

// Settings records the options used to produce the manifest.
type Settings struct {
	AlphaThreshold  float64 `json:"alpha_threshold,omitempty"`
	Background      string  `json:"background,omitempty"`
	ColorTolerance  float64 `json:"color_tolerance,omitempty"`
	MinSpriteSize   int     `json:"min_sprite_size,omitempty"`
	ColumnTolerance float64 `json:"column_tolerance,omitempty"`
	RowTolerance    float64 `json:"row_tolerance,omitempty"`
	FrameDelayMS    int     `json:"frame_delay_ms,omitempty"`
	Scale           int     `json:"scale,omitempty"`
	Anchor          string  `json:"anchor,omitempty"`
	Center          string  `json:"center,omitempty"`
	Unified         bool    `json:"unified,omitempty"`
	Transparent     bool    `json:"transparent,omitempty"`
}

// New creates a manifest for descriptor d. sourcePath is stored relative to
// manifestPath when possible.
func New(manifestPath, sourcePath, mode string, d *grid.Descriptor) *File {
	f := &File{
		Version: CurrentVersion,
		Created: time.Now().UTC(),
		Mode:    mode,
		Columns: d.Columns,
		Rows:    d.Rows,
		Sprites: append([]geometry.RectInt(nil), d.Sprites...),
	}
	f.SetSource(manifestPath, sourcePath)
	return f
}

// SetSource sets the sheet path (relative to the manifest).
func (f *File) SetSource(manifestPath, sourcePath string) {
	rel, err := filepath.Rel(filepath.Dir(manifestPath), sourcePath)
	if err != nil {
		f.Source = sourcePath
	} else {
		f.Source = rel
	}
}

// SourcePath returns the sheet path resolved against the manifest location.
func (f *File) SourcePath(manifestPath string) string {
	if f.Source == "" || filepath.IsAbs(f.Source) {
		return f.Source
	}
	return filepath.Join(filepath.Dir(manifestPath), f.Source)
}

// Descriptor rebuilds the grid descriptor stored in the manifest.
func (f *File) Descriptor() *grid.Descriptor {
	return &grid.Descriptor{
		Columns: f.Columns,
		Rows:    f.Rows,
		Sprites: append([]geometry.RectInt(nil), f.Sprites...),
	}
}

// Load loads a manifest from a .json file.
func Load(path string) (*File, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}

	var f File
	if err := json.Unmarshal(data, &f); err != nil {
		return nil, fmt.Errorf("failed to parse manifest %s: %w", path, err)
	}
	if f.Version > CurrentVersion {
		return nil, fmt.Errorf("manifest %s has unsupported version %d", path, f.Version)
	}
	if len(f.Sprites) != f.Columns*f.Rows {
		return nil, fmt.Errorf("manifest %s lists %d sprites for a %dx%d grid", path, len(f.Sprites), f.Columns, f.Rows)
	}
	return &f, nil
}

// Save writes the manifest to path.
func (f *File) Save(path string) error {
	data, err := json.MarshalIndent(f, "", "  ")
	if err != nil {
		return err
	}
	return os.WriteFile(path, data, 0644)
}

// DefaultPath returns the manifest path for an output file: same base name,
// .json extension.
func DefaultPath(outputPath string) string {
	return strings.TrimSuffix(outputPath, filepath.Ext(outputPath)) + ".json"
}
