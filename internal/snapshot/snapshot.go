// Package snapshot moves widget records in and out of plain files, so saved
// widgets can be shared outside the database.
package snapshot

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/BurntSushi/toml"

	"github.com/jask/slicewidgets/internal/widget"
)

const (
	FormatTOML = "toml"
	FormatJSON = "json"
)

// File is the on-disk layout.
type File struct {
	Records []widget.Record `toml:"records" json:"records"`
}

// FormatFor picks the format from the file extension.
func FormatFor(path string) (string, error) {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".toml":
		return FormatTOML, nil
	case ".json":
		return FormatJSON, nil
	}
	return "", fmt.Errorf("snapshot: cannot tell format of %q (want .toml or .json)", path)
}

// Encode writes recs to w.
func Encode(w io.Writer, format string, recs []widget.Record) error {
	if recs == nil {
		recs = []widget.Record{}
	}
	switch format {
	case FormatTOML:
		return toml.NewEncoder(w).Encode(File{Records: recs})
	case FormatJSON:
		enc := json.NewEncoder(w)
		enc.SetIndent("", "  ")
		return enc.Encode(File{Records: recs})
	}
	return fmt.Errorf("snapshot: unknown format %q (want toml or json)", format)
}

// Decode reads records from r.
func Decode(r io.Reader, format string) ([]widget.Record, error) {
	var f File
	switch format {
	case FormatTOML:
		if _, err := toml.NewDecoder(r).Decode(&f); err != nil {
			return nil, fmt.Errorf("snapshot: decode toml: %w", err)
		}
	case FormatJSON:
		if err := json.NewDecoder(r).Decode(&f); err != nil {
			return nil, fmt.Errorf("snapshot: decode json: %w", err)
		}
	default:
		return nil, fmt.Errorf("snapshot: unknown format %q (want toml or json)", format)
	}
	for i, rec := range f.Records {
		if rec.Type == "" {
			return nil, fmt.Errorf("snapshot: record %d has no type", i)
		}
	}
	return f.Records, nil
}

// Save writes recs to path, replacing it atomically.
func Save(path string, recs []widget.Record) error {
	format, err := FormatFor(path)
	if err != nil {
		return err
	}
	var buf bytes.Buffer
	if err := Encode(&buf, format, recs); err != nil {
		return err
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return err
	}
	tmp := path + ".tmp"
	if err := os.WriteFile(tmp, buf.Bytes(), 0o600); err != nil {
		return err
	}
	return os.Rename(tmp, path)
}

// Load reads the records at path.
func Load(path string) ([]widget.Record, error) {
	format, err := FormatFor(path)
	if err != nil {
		return nil, err
	}
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()
	return Decode(f, format)
}
