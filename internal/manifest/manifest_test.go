package manifest

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"sprite-slicer/internal/grid"
	"sprite-slicer/pkg/geometry"
)

func testDescriptor() *grid.Descriptor {
	return &grid.Descriptor{
		Columns: 2,
		Rows:    1,
		Sprites: []geometry.RectInt{
			{X: 0, Y: 0, Width: 16, Height: 16},
			{X: 20, Y: 0, Width: 16, Height: 16},
		},
	}
}

func TestSaveLoad(t *testing.T) {
	dir := t.TempDir()
	manifestPath := filepath.Join(dir, "out", "walk.json")
	require.NoError(t, os.MkdirAll(filepath.Dir(manifestPath), 0o755))
	sheetPath := filepath.Join(dir, "sheets", "walk.png")

	f := New(manifestPath, sheetPath, "alpha", testDescriptor())
	f.Settings.MinSpriteSize = 10
	f.Settings.Anchor = "bottom"
	require.NoError(t, f.Save(manifestPath))

	loaded, err := Load(manifestPath)
	require.NoError(t, err)
	assert.Equal(t, CurrentVersion, loaded.Version)
	assert.Equal(t, filepath.Join("..", "sheets", "walk.png"), loaded.Source)
	assert.Equal(t, sheetPath, loaded.SourcePath(manifestPath))
	assert.Equal(t, "alpha", loaded.Mode)
	assert.Equal(t, 10, loaded.Settings.MinSpriteSize)
	assert.True(t, f.Created.Equal(loaded.Created))

	if diff := cmp.Diff(testDescriptor(), loaded.Descriptor()); diff != "" {
		t.Errorf("descriptor mismatch (-want +got):\n%s", diff)
	}
}

func TestNew_CopiesSprites(t *testing.T) {
	d := testDescriptor()
	f := New("m.json", "s.png", "color", d)
	d.Sprites[0].X = 99
	assert.Equal(t, 0, f.Sprites[0].X)
}

func TestLoad_Rejects(t *testing.T) {
	dir := t.TempDir()

	bad := filepath.Join(dir, "bad.json")
	require.NoError(t, os.WriteFile(bad, []byte("{"), 0o644))
	_, err := Load(bad)
	assert.Error(t, err)

	short := filepath.Join(dir, "short.json")
	require.NoError(t, os.WriteFile(short, []byte(`{"version":1,"columns":2,"rows":2,"sprites":[]}`), 0o644))
	_, err = Load(short)
	assert.ErrorContains(t, err, "0 sprites for a 2x2 grid")

	future := filepath.Join(dir, "future.json")
	require.NoError(t, os.WriteFile(future, []byte(`{"version":9}`), 0o644))
	_, err = Load(future)
	assert.ErrorContains(t, err, "unsupported version")

	_, err = Load(filepath.Join(dir, "missing.json"))
	assert.Error(t, err)
}

func TestSourcePath_Absolute(t *testing.T) {
	f := &File{Source: "/abs/sheet.png"}
	assert.Equal(t, "/abs/sheet.png", f.SourcePath("/elsewhere/m.json"))
	assert.Equal(t, "", (&File{}).SourcePath("/x/m.json"))
}

func TestDefaultPath(t *testing.T) {
	assert.Equal(t, "out/walk.json", DefaultPath("out/walk.gif"))
	assert.Equal(t, "walk.json", DefaultPath("walk"))
}
