// Package csv reads and writes the catalog.csv index of a model library.
package csv

import (
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"
)

// DefaultColumn is the flux variable read when a filename carries no selector.
const DefaultColumn = "FLUX"

var header = []string{"INDEX", "FILENAME"}

// Row is one raw index line.
type Row struct {
	Index    string // "<temperature>,<metallicity>,<log g>".
	Filename string // Path relative to the library, optionally suffixed "[column]".
}

// Entry is a parsed index line.
type Entry struct {
	Temperature float64
	Metallicity float64
	Gravity     float64
	File        string
	Column      string
}

// FormatIndex renders a grid key. gravityFormat is a verb such as "%2.1f".
func FormatIndex(temperature, metallicity, gravity float64, gravityFormat string) string {
	return fmt.Sprintf("%5.0f,%.1f,"+gravityFormat, temperature, metallicity, gravity)
}

// ParseIndex splits a grid key into its three axes. Surrounding whitespace
// on each field is ignored.
func ParseIndex(key string) (temperature, metallicity, gravity float64, err error) {
	parts := strings.Split(key, ",")
	if len(parts) != 3 {
		return 0, 0, 0, fmt.Errorf("invalid index %q: expected 3 comma-separated values", key)
	}
	var vals [3]float64
	for i, p := range parts {
		vals[i], err = strconv.ParseFloat(strings.TrimSpace(p), 64)
		if err != nil {
			return 0, 0, 0, fmt.Errorf("invalid index %q: %w", key, err)
		}
	}
	return vals[0], vals[1], vals[2], nil
}

// ParseFilename splits "file.nc[column]" into its parts.
func ParseFilename(s string) (file, column string) {
	s = strings.TrimSpace(s)
	if strings.HasSuffix(s, "]") {
		if i := strings.LastIndex(s, "["); i > 0 {
			return s[:i], s[i+1 : len(s)-1]
		}
	}
	return s, DefaultColumn
}

// ReadIndex loads and parses a catalog.csv file.
func ReadIndex(path string) ([]Entry, error) {
	//nolint:gosec // G304: path comes from configuration.
	file, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open catalog index: %w", err)
	}
	defer func() { _ = file.Close() }()

	return readIndex(file)
}

func readIndex(r io.Reader) ([]Entry, error) {
	reader := csv.NewReader(r)
	reader.TrimLeadingSpace = true

	got, err := reader.Read()
	if err != nil {
		return nil, fmt.Errorf("failed to read catalog header: %w", err)
	}
	if len(got) != len(header) || strings.TrimSpace(got[0]) != header[0] || strings.TrimSpace(got[1]) != header[1] {
		return nil, fmt.Errorf("invalid catalog header: expected %v, got %v", header, got)
	}

	entries := make([]Entry, 0)
	for {
		record, err := reader.Read()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("failed to read catalog record: %w", err)
		}
		if len(record) != 2 {
			return nil, fmt.Errorf("invalid catalog record: expected 2 columns, got %d", len(record))
		}

		t, m, g, err := ParseIndex(record[0])
		if err != nil {
			return nil, err
		}
		file, column := ParseFilename(record[1])
		entries = append(entries, Entry{
			Temperature: t,
			Metallicity: m,
			Gravity:     g,
			File:        file,
			Column:      column,
		})
	}
	return entries, nil
}

// WriteIndex writes rows to path, replacing any existing index.
func WriteIndex(path string, rows []Row) error {
	//nolint:gosec // G304: path comes from the caller.
	file, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("failed to create catalog index: %w", err)
	}
	if err := writeIndex(file, rows); err != nil {
		_ = file.Close()
		return err
	}
	return file.Close()
}

func writeIndex(w io.Writer, rows []Row) error {
	writer := csv.NewWriter(w)
	if err := writer.Write(header); err != nil {
		return fmt.Errorf("failed to write catalog header: %w", err)
	}
	for _, r := range rows {
		if err := writer.Write([]string{r.Index, r.Filename}); err != nil {
			return fmt.Errorf("failed to write catalog record: %w", err)
		}
	}
	writer.Flush()
	return writer.Error()
}
