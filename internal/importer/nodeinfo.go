// Package importer parses the flat-text inputs of a feature run: the
// node-information table and citation pair lists.
package importer

import (
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"

	"github.com/matsen/citefeat/internal/reference"
)

// Node-information column positions.
const (
	colID = iota
	colYear
	colTitle
	colAuthors
	colJournal
	colAbstract

	nodeInfoColumns
)

// ErrEmptyInput is returned when an input file has no records.
var ErrEmptyInput = errors.New("input has no records")

// ParseNodeInfo parses node-information CSV records:
// id, year, title, authors (comma separated), journal (optional), abstract.
//
// Malformed rows are reported and skipped; parsing continues.
func ParseNodeInfo(r io.Reader) ([]reference.Paper, []error) {
	cr := csv.NewReader(r)
	cr.FieldsPerRecord = -1
	cr.ReuseRecord = true

	var papers []reference.Paper
	var errs []error

	line := 0
	for {
		record, err := cr.Read()
		if err == io.EOF {
			break
		}
		line++
		if err != nil {
			errs = append(errs, fmt.Errorf("line %d: %w", line, err))
			continue
		}

		paper, err := recordToPaper(record)
		if err != nil {
			errs = append(errs, fmt.Errorf("line %d: %w", line, err))
			continue
		}
		papers = append(papers, paper)
	}

	if len(papers) == 0 && len(errs) == 0 {
		errs = append(errs, ErrEmptyInput)
	}
	return papers, errs
}

// recordToPaper converts one CSV record to a Paper.
func recordToPaper(record []string) (reference.Paper, error) {
	if len(record) != nodeInfoColumns {
		return reference.Paper{}, fmt.Errorf("expected %d fields, got %d", nodeInfoColumns, len(record))
	}

	id, err := strconv.Atoi(strings.TrimSpace(record[colID]))
	if err != nil {
		return reference.Paper{}, fmt.Errorf("invalid id %q", record[colID])
	}
	year, err := strconv.Atoi(strings.TrimSpace(record[colYear]))
	if err != nil {
		return reference.Paper{}, fmt.Errorf("invalid year %q for paper %d", record[colYear], id)
	}

	return reference.Paper{
		ID:       id,
		Year:     year,
		Title:    record[colTitle],
		Authors:  reference.ParseAuthors(record[colAuthors]),
		Journal:  record[colJournal],
		Abstract: record[colAbstract],
	}, nil
}

// ReadNodeInfoFile opens and parses a node-information file.
func ReadNodeInfoFile(path string) ([]reference.Paper, []error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, []error{fmt.Errorf("opening node information: %w", err)}
	}
	defer f.Close()
	return ParseNodeInfo(f)
}
