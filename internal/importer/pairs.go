package importer

import (
	"bufio"
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"

	"github.com/matsen/citefeat/internal/reference"
)

// MaxPairLineCapacity bounds the length of a pair-list line.
const MaxPairLineCapacity = 64 * 1024

// ParsePairs parses a pair list with one "source target [label]" per line.
// Lines with a third field are labeled training pairs. Blank lines are skipped.
func ParsePairs(r io.Reader) ([]reference.Pair, []error) {
	scanner := bufio.NewScanner(r)
	buf := make([]byte, MaxPairLineCapacity)
	scanner.Buffer(buf, MaxPairLineCapacity)

	var pairs []reference.Pair
	var errs []error

	lineNum := 0
	for scanner.Scan() {
		lineNum++
		line := strings.TrimSpace(scanner.Text())
		if line == "" {
			continue
		}

		pair, err := parsePairLine(line)
		if err != nil {
			errs = append(errs, fmt.Errorf("line %d: %w", lineNum, err))
			continue
		}
		pairs = append(pairs, pair)
	}

	if err := scanner.Err(); err != nil {
		errs = append(errs, fmt.Errorf("reading pairs: %w", err))
	}
	if len(pairs) == 0 && len(errs) == 0 {
		errs = append(errs, ErrEmptyInput)
	}
	return pairs, errs
}

func parsePairLine(line string) (reference.Pair, error) {
	fields := strings.Fields(line)
	if len(fields) != 2 && len(fields) != 3 {
		return reference.Pair{}, fmt.Errorf("expected 2 or 3 fields, got %d", len(fields))
	}

	source, err := strconv.Atoi(fields[0])
	if err != nil {
		return reference.Pair{}, fmt.Errorf("invalid source id %q", fields[0])
	}
	target, err := strconv.Atoi(fields[1])
	if err != nil {
		return reference.Pair{}, fmt.Errorf("invalid target id %q", fields[1])
	}

	pair := reference.Pair{SourceID: source, TargetID: target}
	if len(fields) == 3 {
		label, err := strconv.Atoi(fields[2])
		if err != nil {
			return reference.Pair{}, fmt.Errorf("invalid label %q", fields[2])
		}
		pair.Label = label
		pair.Labeled = true
	}
	return pair, nil
}

// ReadPairsFile opens and parses a pair-list file.
func ReadPairsFile(path string) ([]reference.Pair, []error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, []error{fmt.Errorf("opening pairs: %w", err)}
	}
	defer f.Close()
	return ParsePairs(f)
}
