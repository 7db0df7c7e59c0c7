package storage

import (
	"encoding/csv"
	"fmt"
	"io"
	"os"
	"strconv"

	"github.com/matsen/citefeat/internal/feature"
	"github.com/matsen/citefeat/internal/reference"
)

// pairColumns lead every CSV row.
var pairColumns = []string{"source", "target", "label"}

// WriteCSV writes a header and one row per pair. Values use the shortest
// representation that round-trips.
func WriteCSV(w io.Writer, m *feature.Matrix, pairs []reference.Pair) error {
	cw := csv.NewWriter(w)

	header := append(append([]string(nil), pairColumns...), m.Schema().Names()...)
	if err := cw.Write(header); err != nil {
		return fmt.Errorf("writing header: %w", err)
	}

	record := make([]string, len(header))
	for r, p := range pairs {
		record[0] = strconv.Itoa(p.SourceID)
		record[1] = strconv.Itoa(p.TargetID)
		record[2] = labelField(p)
		for c, v := range m.Row(r) {
			record[len(pairColumns)+c] = strconv.FormatFloat(v, 'g', -1, 64)
		}
		if err := cw.Write(record); err != nil {
			return fmt.Errorf("writing row %d: %w", r, err)
		}
	}

	cw.Flush()
	return cw.Error()
}

// WriteCSVFile writes a matrix to path, replacing existing content.
func WriteCSVFile(path string, m *feature.Matrix, pairs []reference.Pair) error {
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("creating csv file: %w", err)
	}
	if err := WriteCSV(f, m, pairs); err != nil {
		f.Close()
		return err
	}
	return f.Close()
}
