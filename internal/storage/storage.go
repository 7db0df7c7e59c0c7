// Package storage writes feature matrices as CSV, JSONL or SQLite.
package storage

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"github.com/matsen/citefeat/internal/feature"
	"github.com/matsen/citefeat/internal/reference"
)

// Format is an output file format.
type Format string

const (
	FormatCSV    Format = "csv"
	FormatJSONL  Format = "jsonl"
	FormatSQLite Format = "sqlite"
)

// ErrUnknownFormat is returned for an unsupported output format.
var ErrUnknownFormat = errors.New("unknown output format")

// ErrRowMismatch is returned when a matrix and its pairs differ in length.
var ErrRowMismatch = errors.New("matrix rows do not match pairs")

// ParseFormat validates a format name.
func ParseFormat(s string) (Format, error) {
	switch f := Format(s); f {
	case FormatCSV, FormatJSONL, FormatSQLite:
		return f, nil
	}
	return "", fmt.Errorf("%w: %q (want csv, jsonl or sqlite)", ErrUnknownFormat, s)
}

// Ext returns the file extension for the format.
func (f Format) Ext() string {
	if f == FormatSQLite {
		return ".db"
	}
	return "." + string(f)
}

// DBPath returns the SQLite feature store inside an output directory.
func DBPath(dir string) string {
	return filepath.Join(dir, "features"+FormatSQLite.Ext())
}

// SchemaFile describes the columns of a CSV or JSONL output. It is written
// next to the data file so matrices from separate runs can be compared.
type SchemaFile struct {
	Split       string   `json:"split"`
	Fingerprint string   `json:"fingerprint"`
	Rows        int      `json:"rows"`
	Columns     []string `json:"columns"`
}

// Result describes a written matrix.
type Result struct {
	Split       string `json:"split"`
	Path        string `json:"path"`
	Rows        int    `json:"rows"`
	Fingerprint string `json:"fingerprint"`
	RunID       string `json:"run_id,omitempty"`
}

// WriteMatrix writes one split's matrix into dir using format. CSV and
// JSONL outputs get a <split>.schema.json sidecar; SQLite outputs share one
// features.db with a run per split.
func WriteMatrix(dir, split string, format Format, m *feature.Matrix, pairs []reference.Pair) (Result, error) {
	if m.Rows() != len(pairs) {
		return Result{}, fmt.Errorf("%w: %d rows, %d pairs", ErrRowMismatch, m.Rows(), len(pairs))
	}
	if err := os.MkdirAll(dir, 0755); err != nil {
		return Result{}, fmt.Errorf("creating output directory: %w", err)
	}

	res := Result{Split: split, Rows: m.Rows(), Fingerprint: m.Schema().Fingerprint()}

	switch format {
	case FormatCSV:
		res.Path = filepath.Join(dir, split+format.Ext())
		if err := WriteCSVFile(res.Path, m, pairs); err != nil {
			return Result{}, err
		}
	case FormatJSONL:
		res.Path = filepath.Join(dir, split+format.Ext())
		if err := WriteAll(res.Path, Records(m, pairs)); err != nil {
			return Result{}, err
		}
	case FormatSQLite:
		res.Path = DBPath(dir)
		db, err := OpenDB(res.Path)
		if err != nil {
			return Result{}, err
		}
		defer db.Close()
		res.RunID, err = db.WriteRun(split, m, pairs)
		if err != nil {
			return Result{}, err
		}
		return res, nil
	default:
		return Result{}, fmt.Errorf("%w: %q", ErrUnknownFormat, format)
	}

	if err := WriteSchemaFile(filepath.Join(dir, split+".schema.json"), split, m); err != nil {
		return Result{}, err
	}
	return res, nil
}

// WriteSchemaFile writes the column sidecar for a matrix.
func WriteSchemaFile(path, split string, m *feature.Matrix) error {
	sf := SchemaFile{
		Split:       split,
		Fingerprint: m.Schema().Fingerprint(),
		Rows:        m.Rows(),
		Columns:     m.Schema().Names(),
	}
	data, err := json.MarshalIndent(sf, "", "  ")
	if err != nil {
		return fmt.Errorf("encoding schema: %w", err)
	}
	if err := os.WriteFile(path, append(data, '\n'), 0644); err != nil {
		return fmt.Errorf("writing schema file: %w", err)
	}
	return nil
}

// ReadSchemaFile reads a column sidecar.
func ReadSchemaFile(path string) (*SchemaFile, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading schema file: %w", err)
	}
	var sf SchemaFile
	if err := json.Unmarshal(data, &sf); err != nil {
		return nil, fmt.Errorf("parsing schema file: %w", err)
	}
	return &sf, nil
}

// labelField renders a pair label, empty for unlabeled pairs.
func labelField(p reference.Pair) string {
	if !p.Labeled {
		return ""
	}
	return fmt.Sprint(p.Label)
}
