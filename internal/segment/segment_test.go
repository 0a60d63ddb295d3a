package segment

import (
	"errors"
	"image"
	"image/color"
	"image/draw"
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"sprite-slicer/pkg/colorutil"
	"sprite-slicer/pkg/geometry"
)

// fillRect paints r on img with c.
func fillRect(img draw.Image, r image.Rectangle, c color.Color) {
	draw.Draw(img, r, image.NewUniform(c), image.Point{}, draw.Src)
}

func newOpaqueSheet(w, h int, bg color.Color) *image.RGBA {
	img := image.NewRGBA(image.Rect(0, 0, w, h))
	fillRect(img, img.Bounds(), bg)
	return img
}

// =============================================================================
// Mode and params
// =============================================================================

func TestParseMode(t *testing.T) {
	tests := map[string]Mode{
		"":       ModeAuto,
		"auto":   ModeAuto,
		"ALPHA":  ModeAlpha,
		"color":  ModeColor,
		"colour": ModeColor,
	}
	for in, want := range tests {
		got, err := ParseMode(in)
		require.NoError(t, err, in)
		assert.Equal(t, want, got, in)
	}

	_, err := ParseMode("grayscale")
	assert.Error(t, err)
}

func TestMode_String(t *testing.T) {
	assert.Equal(t, "auto", ModeAuto.String())
	assert.Equal(t, "alpha", ModeAlpha.String())
	assert.Equal(t, "color", ModeColor.String())
	assert.Equal(t, "unknown", Mode(42).String())
}

func TestDefaultParams(t *testing.T) {
	p := DefaultParams()
	assert.Equal(t, ModeAuto, p.Mode)
	assert.Equal(t, 0.10, p.AlphaThreshold)
	assert.Equal(t, 30.0, p.ColorTolerance)
	assert.Equal(t, 10, p.MinSpriteSize)
	assert.Nil(t, p.Background)
	assert.NoError(t, p.Validate())
}

func TestParams_Validate(t *testing.T) {
	base := DefaultParams()
	assert.Error(t, base.WithColorTolerance(-1).Validate())
	assert.Error(t, base.WithAlphaThreshold(-0.1).Validate())
	assert.Error(t, base.WithAlphaThreshold(1).Validate())
	assert.Error(t, base.WithMinSpriteSize(0).Validate())
	assert.Error(t, base.WithMode(Mode(7)).Validate())
	assert.Error(t, base.WithColorTolerance(math.NaN()).Validate())
	assert.Error(t, base.WithAlphaThreshold(math.NaN()).Validate())
	assert.NoError(t, base.WithColorTolerance(0).Validate())
}

func TestParams_BuildersCopy(t *testing.T) {
	base := DefaultParams()
	withBG := base.WithBackground(colorutil.Magenta)
	assert.Nil(t, base.Background, "builder must not mutate the receiver")
	require.NotNil(t, withBG.Background)
	assert.Equal(t, colorutil.Magenta, *withBG.Background)
}

// =============================================================================
// Mode resolution
// =============================================================================

func TestResolveMode(t *testing.T) {
	opaque := newOpaqueSheet(8, 8, colorutil.White)
	assert.Equal(t, ModeColor, ResolveMode(opaque, ModeAuto))

	transparent := image.NewNRGBA(image.Rect(0, 0, 8, 8))
	fillRect(transparent, image.Rect(2, 2, 4, 4), colorutil.Black)
	assert.Equal(t, ModeAlpha, ResolveMode(transparent, ModeAuto))

	// Explicit modes are never overridden.
	assert.Equal(t, ModeAlpha, ResolveMode(opaque, ModeAlpha))
	assert.Equal(t, ModeColor, ResolveMode(transparent, ModeColor))
}

func TestHasTransparency_GenericImage(t *testing.T) {
	// Wrapping hides the Opaque method and forces a pixel scan.
	img := struct{ image.Image }{newOpaqueSheet(4, 4, colorutil.White)}
	assert.False(t, HasTransparency(img))

	nrgba := image.NewNRGBA(image.Rect(0, 0, 4, 4))
	fillRect(nrgba, nrgba.Bounds(), colorutil.White)
	nrgba.SetNRGBA(3, 3, color.NRGBA{R: 255, A: 200})
	assert.True(t, HasTransparency(struct{ image.Image }{nrgba}))
}

// =============================================================================
// Map building
// =============================================================================

func TestBuildMap_RequiresResolvedMode(t *testing.T) {
	_, err := BuildMap(newOpaqueSheet(4, 4, colorutil.White), DefaultParams())
	assert.ErrorIs(t, err, ErrUnresolvedMode)
}

func TestBuildMap_RejectsInvalidParams(t *testing.T) {
	_, err := BuildMap(newOpaqueSheet(4, 4, colorutil.White), DefaultParams().WithMode(ModeColor).WithColorTolerance(-5))
	assert.Error(t, err)
}

func TestBuildMap_AlphaThreshold(t *testing.T) {
	img := image.NewNRGBA(image.Rect(0, 0, 3, 1))
	img.SetNRGBA(0, 0, color.NRGBA{A: 25})  // 9.8%: background
	img.SetNRGBA(1, 0, color.NRGBA{A: 26})  // 10.2%: foreground
	img.SetNRGBA(2, 0, color.NRGBA{A: 255}) // opaque

	m, err := BuildMap(img, DefaultParams().WithMode(ModeAlpha))
	require.NoError(t, err)
	assert.False(t, m.At(0, 0))
	assert.True(t, m.At(1, 0))
	assert.True(t, m.At(2, 0))
	assert.Equal(t, 2, m.Count())
}

func TestBuildMap_ColorUsesTopLeftBackground(t *testing.T) {
	img := newOpaqueSheet(4, 1, color.RGBA{R: 100, G: 100, B: 100, A: 255})
	img.Set(1, 0, color.RGBA{R: 130, G: 100, B: 100, A: 255}) // distance 30: background
	img.Set(2, 0, color.RGBA{R: 131, G: 100, B: 100, A: 255}) // distance 31: foreground
	img.Set(3, 0, colorutil.Black)

	m, err := BuildMap(img, DefaultParams().WithMode(ModeColor))
	require.NoError(t, err)
	assert.False(t, m.At(0, 0))
	assert.False(t, m.At(1, 0))
	assert.True(t, m.At(2, 0))
	assert.True(t, m.At(3, 0))
}

func TestBuildMap_ExplicitBackground(t *testing.T) {
	// Top-left is a sprite pixel; the real background is magenta.
	img := newOpaqueSheet(3, 1, colorutil.Magenta)
	img.Set(0, 0, colorutil.Black)

	m, err := BuildMap(img, DefaultParams().WithMode(ModeColor).WithBackground(colorutil.Magenta))
	require.NoError(t, err)
	assert.True(t, m.At(0, 0))
	assert.False(t, m.At(1, 0))
	assert.False(t, m.At(2, 0))
}

func TestBuildMap_NonZeroOrigin(t *testing.T) {
	img := newOpaqueSheet(10, 10, colorutil.White)
	img.Set(6, 7, colorutil.Black)
	sub := img.SubImage(image.Rect(5, 5, 10, 10))

	m, err := BuildMap(sub, DefaultParams().WithMode(ModeColor))
	require.NoError(t, err)
	assert.Equal(t, 5, m.Width)
	assert.Equal(t, image.Pt(5, 5), m.Origin)
	assert.True(t, m.At(1, 2))
	assert.Equal(t, 1, m.Count())
}

func TestMap_AtOutOfRange(t *testing.T) {
	m := NewMap(2, 2, image.Point{})
	m.Set(1, 1)
	assert.False(t, m.At(-1, 0))
	assert.False(t, m.At(2, 0))
	assert.False(t, m.At(0, 2))
	assert.True(t, m.At(1, 1))
}

func TestMap_Bounds(t *testing.T) {
	m := NewMap(8, 6, image.Pt(10, 20))
	_, ok := m.Bounds()
	assert.False(t, ok, "empty map has no bounds")

	m.Set(2, 1)
	m.Set(5, 4)
	m.Set(3, 3)
	r, ok := m.Bounds()
	require.True(t, ok)
	assert.Equal(t, image.Rect(12, 21, 16, 25), r)
}

// =============================================================================
// Region extraction
// =============================================================================

func mapFromRows(rows ...string) *Map {
	m := NewMap(len(rows[0]), len(rows), image.Point{})
	for y, row := range rows {
		for x, ch := range row {
			if ch == '#' {
				m.Set(x, y)
			}
		}
	}
	return m
}

func TestExtractRegions_RowMajorOrder(t *testing.T) {
	m := mapFromRows(
		"......",
		".##.##",
		".##.##",
		"......",
		"##....",
		"##....",
	)
	regions, err := ExtractRegions(m, 1)
	require.NoError(t, err)
	require.Len(t, regions, 3)

	assert.Equal(t, geometry.RectInt{X: 1, Y: 1, Width: 2, Height: 2}, regions[0].Bounds)
	assert.Equal(t, geometry.RectInt{X: 4, Y: 1, Width: 2, Height: 2}, regions[1].Bounds)
	assert.Equal(t, geometry.RectInt{X: 0, Y: 4, Width: 2, Height: 2}, regions[2].Bounds)
	for _, r := range regions {
		assert.Equal(t, 4, r.PixelCount)
	}
}

func TestExtractRegions_FourConnectivity(t *testing.T) {
	// Diagonal neighbours are separate regions.
	m := mapFromRows(
		"#.",
		".#",
	)
	regions, err := ExtractRegions(m, 1)
	require.NoError(t, err)
	assert.Len(t, regions, 2)
}

func TestExtractRegions_ConcaveShape(t *testing.T) {
	// The U is one region even though its arms are seeded first on row 0.
	m := mapFromRows(
		"#...#",
		"#...#",
		"#####",
	)
	regions, err := ExtractRegions(m, 1)
	require.NoError(t, err)
	require.Len(t, regions, 1)
	assert.Equal(t, geometry.RectInt{X: 0, Y: 0, Width: 5, Height: 3}, regions[0].Bounds)
	assert.Equal(t, 9, regions[0].PixelCount)
}

func TestExtractRegions_DropsNoise(t *testing.T) {
	m := mapFromRows(
		"#.....",
		"..####",
		"..####",
		"..####",
	)
	regions, err := ExtractRegions(m, 10)
	require.NoError(t, err)
	require.Len(t, regions, 1)
	assert.Equal(t, 12, regions[0].PixelCount)
	assert.Equal(t, 2, regions[0].Left())
	assert.Equal(t, 1, regions[0].Top())
}

func TestExtractRegions_EmptyMap(t *testing.T) {
	_, err := ExtractRegions(mapFromRows("....", "...."), 1)
	require.Error(t, err)
	assert.True(t, errors.Is(err, ErrEmptySegmentation))

	var ese *EmptySegmentationError
	require.ErrorAs(t, err, &ese)
	assert.Equal(t, 0, ese.ForegroundPixels)
}

func TestExtractRegions_AllNoise(t *testing.T) {
	_, err := ExtractRegions(mapFromRows("#.#", "..."), 10)
	var ese *EmptySegmentationError
	require.ErrorAs(t, err, &ese)
	assert.Equal(t, 2, ese.ForegroundPixels)
	assert.Equal(t, 2, ese.Discarded)
	assert.Equal(t, 10, ese.MinSpriteSize)
	assert.Contains(t, ese.Error(), "2 regions discarded")
}

func TestExtractRegions_ZeroSizeMap(t *testing.T) {
	_, err := ExtractRegions(NewMap(0, 0, image.Point{}), 1)
	assert.ErrorIs(t, err, ErrEmptySegmentation)
}

func TestExtractRegions_OriginOffset(t *testing.T) {
	m := NewMap(4, 4, image.Pt(100, 200))
	m.Set(1, 2)
	m.Set(2, 2)
	regions, err := ExtractRegions(m, 1)
	require.NoError(t, err)
	require.Len(t, regions, 1)
	assert.Equal(t, geometry.RectInt{X: 101, Y: 202, Width: 2, Height: 1}, regions[0].Bounds)
}

func TestExtractRegions_BoundsWithinImage(t *testing.T) {
	// Sprites touching every edge.
	m := mapFromRows(
		"##..##",
		"##..##",
		"......",
		"##..##",
		"##..##",
	)
	regions, err := ExtractRegions(m, 1)
	require.NoError(t, err)
	require.Len(t, regions, 4)
	outer := geometry.RectInt{Width: m.Width, Height: m.Height}
	for _, r := range regions {
		assert.True(t, r.Bounds.Within(outer), "region %+v outside image", r.Bounds)
	}
}

func TestExtractRegions_Deterministic(t *testing.T) {
	m := mapFromRows(
		"##.##.#",
		"##.##.#",
		".......",
		"###..##",
	)
	first, err := ExtractRegions(m, 1)
	require.NoError(t, err)
	second, err := ExtractRegions(m, 1)
	require.NoError(t, err)
	assert.Equal(t, first, second)
}

func BenchmarkExtractRegions(b *testing.B) {
	const size = 512
	m := NewMap(size, size, image.Point{})
	for y := 0; y < size; y++ {
		for x := 0; x < size; x++ {
			if x%32 < 24 && y%32 < 24 {
				m.Set(x, y)
			}
		}
	}
	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		_, _ = ExtractRegions(m, DefaultMinSpriteSize)
	}
}
