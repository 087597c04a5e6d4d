package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/jask/slicewidgets/internal/surface"
)

func TestLoadDefaults(t *testing.T) {
	t.Setenv("HOME", t.TempDir())
	t.Setenv("SLICEWIDGETS_CONFIG", filepath.Join(t.TempDir(), "missing.toml"))

	c, err := Load()
	require.NoError(t, err)
	require.Equal(t, "info", c.Log.Level)
	require.Equal(t, "text", c.Log.Format)
	require.Equal(t, 5*time.Second, c.Database.BusyTimeout)
	require.Equal(t, "WAL", c.Database.JournalMode)
	require.Equal(t, surface.Vec3{1, 1, 1}, c.Spacing())
	require.Equal(t, surface.Vec3{}, c.Slices())

	views, err := c.Views()
	require.NoError(t, err)
	require.Len(t, views, 4)
	require.Equal(t, ViewSpec{Name: "axial", Axis: surface.AxisZ, HasAxis: true, Type: surface.ViewTypeSlice}, views[0])
	require.Equal(t, ViewSpec{Name: "volume", Axis: surface.AxisInvalid, Type: surface.ViewTypeVolume}, views[3])
}

func TestSaveLoadRoundTrip(t *testing.T) {
	dir := t.TempDir()
	t.Setenv("SLICEWIDGETS_CONFIG", filepath.Join(dir, "nested", "config.toml"))

	in := Config{
		Database: DatabaseConfig{Path: filepath.Join(dir, "w.db"), BusyTimeout: 2 * time.Second, JournalMode: "DELETE"},
		Log:      LogConfig{Level: "debug", Format: "json", File: filepath.Join(dir, "w.log")},
		Scene:    SceneConfig{Spacing: []float64{0.5, 0.5, 2}, Slices: []float64{1, 2, 3}},
		UI:       UIConfig{Views: []string{"top:z", "side:x"}},
	}
	require.NoError(t, Save(in))

	out, err := Load()
	require.NoError(t, err)
	require.Equal(t, in.Database, out.Database)
	require.Equal(t, in.Log, out.Log)
	require.Equal(t, surface.Vec3{0.5, 0.5, 2}, out.Spacing())
	require.Equal(t, surface.Vec3{1, 2, 3}, out.Slices())
	require.Equal(t, in.UI.Views, out.UI.Views)
}

func TestEnvOverride(t *testing.T) {
	t.Setenv("SLICEWIDGETS_CONFIG", filepath.Join(t.TempDir(), "missing.toml"))
	t.Setenv("SLICEWIDGETS_LOG_LEVEL", "warn")

	c, err := Load()
	require.NoError(t, err)
	require.Equal(t, "warn", c.Log.Level)
}

func TestBrokenFileFails(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.toml")
	require.NoError(t, os.WriteFile(path, []byte("[log\nlevel = "), 0o644))
	t.Setenv("SLICEWIDGETS_CONFIG", path)

	_, err := Load()
	require.ErrorContains(t, err, "read config")
}

func TestViewsErrors(t *testing.T) {
	for _, views := range [][]string{{"axial"}, {":z"}, {"a:z", "a:x"}, {"a:w"}} {
		_, err := Config{UI: UIConfig{Views: views}}.Views()
		require.Error(t, err, "%v", views)
	}
}

func TestVecFillsMissing(t *testing.T) {
	c := Config{Scene: SceneConfig{Spacing: []float64{2}}}
	require.Equal(t, surface.Vec3{2, 1, 1}, c.Spacing())
}
