package snapshot

import (
	"bytes"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/jask/slicewidgets/internal/surface"
	"github.com/jask/slicewidgets/internal/widget"
)

func rulerRecord() widget.Record {
	return widget.Record{
		Version: "1.0",
		Type:    "Ruler",
		Name:    "ruler-1",
		Data: map[string]any{
			"coordinates": "World",
			"point1":      []float64{1, 2, 0},
			"point2":      []float64{4, 6, 0},
			"length":      5.0,
			"axis":        2,
			"slice":       0.0,
		},
	}
}

func TestFormatFor(t *testing.T) {
	f, err := FormatFor("a/b.TOML")
	require.NoError(t, err)
	require.Equal(t, FormatTOML, f)
	f, err = FormatFor("b.json")
	require.NoError(t, err)
	require.Equal(t, FormatJSON, f)
	_, err = FormatFor("b.yaml")
	require.Error(t, err)
}

func TestEncodeTOML(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, Encode(&buf, FormatTOML, []widget.Record{rulerRecord()}))
	out := buf.String()
	require.Contains(t, out, "[[records]]")
	require.Contains(t, out, `type = "Ruler"`)
	require.Contains(t, out, `coordinates = "World"`)
}

func TestEncodeEmptyJSON(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, Encode(&buf, FormatJSON, nil))
	require.JSONEq(t, `{"records": []}`, buf.String())
}

func TestEncodeUnknownFormat(t *testing.T) {
	require.ErrorContains(t, Encode(&bytes.Buffer{}, "yaml", nil), "unknown format")
	_, err := Decode(&bytes.Buffer{}, "yaml")
	require.ErrorContains(t, err, "unknown format")
}

// Numbers come back as whatever the codec prefers; the widget helpers must
// still read them.
func TestSaveLoadKeepsReadableData(t *testing.T) {
	for _, name := range []string{"w.toml", "w.json"} {
		t.Run(name, func(t *testing.T) {
			path := filepath.Join(t.TempDir(), "nested", name)
			require.NoError(t, Save(path, []widget.Record{rulerRecord()}))

			recs, err := Load(path)
			require.NoError(t, err)
			require.Len(t, recs, 1)
			rec := recs[0]
			require.Equal(t, "Ruler", rec.Type)
			require.Equal(t, "ruler-1", rec.Name)

			p2, ok := widget.Vec3(rec.Data["point2"])
			require.True(t, ok)
			require.Equal(t, surface.Vec3{4, 6, 0}, p2)
			axis, ok := widget.Int(rec.Data["axis"])
			require.True(t, ok)
			require.Equal(t, 2, axis)
			length, ok := widget.Float(rec.Data["length"])
			require.True(t, ok)
			require.InDelta(t, 5.0, length, 1e-12)

			_, err = os.Stat(path + ".tmp")
			require.True(t, os.IsNotExist(err))
		})
	}
}

func TestDecodeRejectsUntypedRecord(t *testing.T) {
	_, err := Decode(bytes.NewBufferString(`{"records": [{"version": "1.0"}]}`), FormatJSON)
	require.ErrorContains(t, err, "no type")
}

func TestLoadMissingFile(t *testing.T) {
	_, err := Load(filepath.Join(t.TempDir(), "missing.json"))
	require.True(t, os.IsNotExist(err))
}
