// Package tabular loads and saves the flat tables the tools work on.
// Rows are kept as maps keyed by header so callers can address columns by
// name and still write them back in the original order.
package tabular

import (
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
)

const utf8BOM = "\uFEFF"

// Table is a header plus rows addressed by column name.
type Table struct {
	Header []string
	Rows   []map[string]string
}

// New returns an empty table with the given header.
func New(header ...string) *Table {
	return &Table{Header: append([]string(nil), header...)}
}

// HasColumn reports whether name is part of the header.
func (t *Table) HasColumn(name string) bool {
	for _, h := range t.Header {
		if h == name {
			return true
		}
	}
	return false
}

// RequireColumns returns an error naming every missing column.
func (t *Table) RequireColumns(names ...string) error {
	var missing []string
	for _, n := range names {
		if !t.HasColumn(n) {
			missing = append(missing, n)
		}
	}
	if len(missing) > 0 {
		return fmt.Errorf("missing columns: %s", strings.Join(missing, ", "))
	}
	return nil
}

// AddColumn appends name to the header unless it is already present.
func (t *Table) AddColumn(name string) {
	if !t.HasColumn(name) {
		t.Header = append(t.Header, name)
	}
}

// Append adds a row. Keys missing from the header are not written.
func (t *Table) Append(row map[string]string) {
	t.Rows = append(t.Rows, row)
}

// Column returns all values of a column in row order.
func (t *Table) Column(name string) []string {
	out := make([]string, len(t.Rows))
	for i, r := range t.Rows {
		out[i] = r[name]
	}
	return out
}

// Read loads a table, choosing the format by file extension.
func Read(path string) (*Table, error) {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".xlsx":
		return readXLSX(path)
	case ".tsv":
		return readDelimited(path, '\t')
	default:
		return readDelimited(path, ',')
	}
}

// Write saves a table, choosing the format by file extension.
func Write(path string, t *Table) error {
	if dir := filepath.Dir(path); dir != "" && dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return fmt.Errorf("create output dir: %w", err)
		}
	}
	switch strings.ToLower(filepath.Ext(path)) {
	case ".xlsx":
		return writeXLSX(path, t)
	case ".tsv":
		return writeDelimited(path, '\t', t)
	default:
		return writeDelimited(path, ',', t)
	}
}

func readDelimited(path string, comma rune) (*Table, error) {
	file, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open table: %w", err)
	}
	defer file.Close()

	reader := csv.NewReader(file)
	reader.Comma = comma
	reader.FieldsPerRecord = -1
	reader.LazyQuotes = true

	header, err := reader.Read()
	if errors.Is(err, io.EOF) {
		return nil, fmt.Errorf("read table %s: empty file", path)
	}
	if err != nil {
		return nil, fmt.Errorf("read header: %w", err)
	}
	header = cleanHeader(header)

	t := &Table{Header: header}
	line := 1
	for {
		record, err := reader.Read()
		if errors.Is(err, io.EOF) {
			break
		}
		line++
		if err != nil {
			return nil, fmt.Errorf("read line %d: %w", line, err)
		}
		if blankRecord(record) {
			continue
		}
		t.Rows = append(t.Rows, rowFromRecord(header, record))
	}
	return t, nil
}

func writeDelimited(path string, comma rune, t *Table) error {
	file, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("create table: %w", err)
	}
	defer file.Close()

	// spreadsheet tools need the BOM to read accents as UTF-8
	if _, err := file.WriteString(utf8BOM); err != nil {
		return fmt.Errorf("write table: %w", err)
	}

	writer := csv.NewWriter(file)
	writer.Comma = comma
	if err := writer.Write(t.Header); err != nil {
		return fmt.Errorf("write header: %w", err)
	}
	for _, row := range t.Rows {
		if err := writer.Write(recordFromRow(t.Header, row)); err != nil {
			return fmt.Errorf("write row: %w", err)
		}
	}
	writer.Flush()
	return writer.Error()
}

func cleanHeader(header []string) []string {
	out := make([]string, len(header))
	for i, h := range header {
		if i == 0 {
			h = strings.ReplaceAll(h, utf8BOM, "")
		}
		out[i] = strings.TrimSpace(h)
	}
	return out
}

func rowFromRecord(header, record []string) map[string]string {
	row := make(map[string]string, len(header))
	for i, h := range header {
		if i < len(record) {
			row[h] = strings.TrimSpace(record[i])
		} else {
			row[h] = ""
		}
	}
	return row
}

func recordFromRow(header []string, row map[string]string) []string {
	record := make([]string, len(header))
	for i, h := range header {
		record[i] = row[h]
	}
	return record
}

func blankRecord(record []string) bool {
	for _, v := range record {
		if strings.TrimSpace(v) != "" {
			return false
		}
	}
	return true
}
