// Package reftable loads the age-grading reference table from the bundled
// default or from an override file, validates it and builds the engine index.
package reftable

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/okian/agegrader/internal/domain/agegrade"
	"github.com/okian/agegrader/internal/domain/model"
	"gopkg.in/yaml.v3"
)

// Format selects the decoder for a table file.
type Format int

// Supported file formats.
const (
	FormatJSON Format = iota
	FormatYAML
)

// FormatFor picks a format from a file extension; anything that is not
// .yaml/.yml is read as JSON.
func FormatFor(path string) Format {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".yaml", ".yml":
		return FormatYAML
	default:
		return FormatJSON
	}
}

// fileEntry mirrors one row of a table file.
type fileEntry struct {
	Gender   string    `json:"gender" yaml:"gender"`
	Distance float64   `json:"distance" yaml:"distance"`
	Seconds  float64   `json:"seconds" yaml:"seconds"`
	Ages     []fileAge `json:"ages" yaml:"ages"`
}

type fileAge struct {
	Age     int     `json:"age" yaml:"age"`
	Seconds float64 `json:"seconds" yaml:"seconds"`
}

// Decode reads and validates table rows from r.
func Decode(r io.Reader, format Format) ([]model.ReferenceEntry, error) {
	var rows []fileEntry
	switch format {
	case FormatYAML:
		if err := yaml.NewDecoder(r).Decode(&rows); err != nil {
			return nil, fmt.Errorf("%w: decode yaml: %w", ErrLoadTable, err)
		}
	default:
		if err := json.NewDecoder(r).Decode(&rows); err != nil {
			return nil, fmt.Errorf("%w: decode json: %w", ErrLoadTable, err)
		}
	}

	entries := make([]model.ReferenceEntry, 0, len(rows))
	for i, row := range rows {
		g, err := model.ParseGender(row.Gender)
		if err != nil {
			return nil, fmt.Errorf("%w: entry %d: %w", ErrMalformedTable, i, err)
		}
		e := model.ReferenceEntry{
			Gender:   g,
			Distance: row.Distance,
			Seconds:  row.Seconds,
			Ages:     make([]model.AgeRecord, len(row.Ages)),
		}
		for j, a := range row.Ages {
			e.Ages[j] = model.AgeRecord{Age: a.Age, Seconds: a.Seconds}
		}
		entries = append(entries, e)
	}

	if err := Validate(entries); err != nil {
		return nil, err
	}
	return entries, nil
}

// Default returns the bundled reference entries.
func Default() ([]model.ReferenceEntry, error) {
	return Decode(bytes.NewReader(defaultTable), FormatJSON)
}

// LoadFile reads a table file, choosing the decoder from its extension.
func LoadFile(ctx context.Context, path string) ([]model.ReferenceEntry, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrLoadTable, err)
	}
	defer func() { _ = f.Close() }()
	return Decode(f, FormatFor(path))
}

// Load returns the table at path, or the bundled table when path is empty.
func Load(ctx context.Context, path string) (*agegrade.Table, error) {
	var (
		entries []model.ReferenceEntry
		err     error
	)
	if path == "" {
		entries, err = Default()
	} else {
		entries, err = LoadFile(ctx, path)
	}
	if err != nil {
		return nil, err
	}
	return agegrade.NewTable(entries), nil
}
