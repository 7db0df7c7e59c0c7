package storage

import (
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"slices"

	"github.com/matsen/citefeat/internal/feature"
)

// ErrMissingOutput is returned when a split has not been written.
var ErrMissingOutput = errors.New("output not found")

// ErrInconsistentOutput is returned when stored rows disagree with their
// schema or row count.
var ErrInconsistentOutput = errors.New("inconsistent output")

// Summary describes a matrix read back from an output directory.
type Summary struct {
	Split       string   `json:"split"`
	Format      Format   `json:"format"`
	Path        string   `json:"path"`
	RunID       string   `json:"run_id,omitempty"`
	Rows        int      `json:"rows"`
	Fingerprint string   `json:"fingerprint"`
	Columns     []string `json:"columns"`
}

// Inspect reads back the matrix for split and checks that every row has one
// value per column, that the row count matches the recorded count and that
// the recorded fingerprint matches the stored column names. For SQLite the
// most recent run of the split is used.
func Inspect(dir, split string, format Format) (*Summary, error) {
	switch format {
	case FormatCSV, FormatJSONL:
		return inspectFile(dir, split, format)
	case FormatSQLite:
		return inspectDB(DBPath(dir), split)
	}
	return nil, fmt.Errorf("%w: %q", ErrUnknownFormat, format)
}

func inspectFile(dir, split string, format Format) (*Summary, error) {
	path := filepath.Join(dir, split+format.Ext())
	if _, err := os.Stat(path); err != nil {
		if os.IsNotExist(err) {
			return nil, fmt.Errorf("%w: %s", ErrMissingOutput, path)
		}
		return nil, fmt.Errorf("checking %s: %w", path, err)
	}
	sf, err := ReadSchemaFile(filepath.Join(dir, split+".schema.json"))
	if err != nil {
		return nil, err
	}

	var rows int
	if format == FormatCSV {
		rows, err = countCSVRows(path, sf.Columns)
	} else {
		rows, err = countJSONLRows(path, len(sf.Columns))
	}
	if err != nil {
		return nil, err
	}

	sum := &Summary{
		Split:       split,
		Format:      format,
		Path:        path,
		Rows:        rows,
		Fingerprint: sf.Fingerprint,
		Columns:     sf.Columns,
	}
	if err := checkSummary(sum, sf.Rows); err != nil {
		return nil, err
	}
	return sum, nil
}

func countCSVRows(path string, columns []string) (int, error) {
	f, err := os.Open(path)
	if err != nil {
		return 0, fmt.Errorf("opening csv file: %w", err)
	}
	defer f.Close()

	r := csv.NewReader(f)
	header, err := r.Read()
	if err != nil {
		return 0, fmt.Errorf("reading csv header: %w", err)
	}
	want := append(append([]string(nil), pairColumns...), columns...)
	if !slices.Equal(header, want) {
		return 0, fmt.Errorf("%w: csv header does not match schema file", ErrInconsistentOutput)
	}

	rows := 0
	for {
		_, err := r.Read()
		if err == io.EOF {
			return rows, nil
		}
		if err != nil {
			return 0, fmt.Errorf("%w: %v", ErrInconsistentOutput, err)
		}
		rows++
	}
}

func countJSONLRows(path string, width int) (int, error) {
	records, err := ReadAll(path)
	if err != nil {
		return 0, err
	}
	if err := checkWidths(records, width); err != nil {
		return 0, err
	}
	return len(records), nil
}

func inspectDB(path, split string) (*Summary, error) {
	if _, err := os.Stat(path); err != nil {
		if os.IsNotExist(err) {
			return nil, fmt.Errorf("%w: %s", ErrMissingOutput, path)
		}
		return nil, fmt.Errorf("checking %s: %w", path, err)
	}
	db, err := OpenDB(path)
	if err != nil {
		return nil, err
	}
	defer db.Close()

	runs, err := db.Runs()
	if err != nil {
		return nil, err
	}
	var latest *Run
	for i := range runs {
		if runs[i].Split == split {
			latest = &runs[i]
		}
	}
	if latest == nil {
		return nil, fmt.Errorf("%w: no %s run in %s", ErrMissingOutput, split, path)
	}

	columns, err := db.Columns(latest.ID)
	if err != nil {
		return nil, err
	}
	records, err := db.Records(latest.ID)
	if err != nil {
		return nil, err
	}
	if err := checkWidths(records, len(columns)); err != nil {
		return nil, err
	}

	sum := &Summary{
		Split:       split,
		Format:      FormatSQLite,
		Path:        path,
		RunID:       latest.ID,
		Rows:        len(records),
		Fingerprint: latest.Fingerprint,
		Columns:     columns,
	}
	if err := checkSummary(sum, latest.Rows); err != nil {
		return nil, err
	}
	return sum, nil
}

func checkWidths(records []Record, width int) error {
	for i, rec := range records {
		if len(rec.Features) != width {
			return fmt.Errorf("%w: row %d has %d values, want %d", ErrInconsistentOutput, i, len(rec.Features), width)
		}
	}
	return nil
}

func checkSummary(sum *Summary, recordedRows int) error {
	if sum.Rows != recordedRows {
		return fmt.Errorf("%w: %s has %d rows, %d recorded", ErrInconsistentOutput, sum.Path, sum.Rows, recordedRows)
	}
	if got := feature.FingerprintNames(sum.Columns); got != sum.Fingerprint {
		return fmt.Errorf("%w: recorded fingerprint %s, columns hash to %s", ErrInconsistentOutput, sum.Fingerprint, got)
	}
	return nil
}
