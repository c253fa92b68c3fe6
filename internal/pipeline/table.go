package pipeline

import (
	"encoding/csv"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/xuri/excelize/v2"
)

// Table is a parsed feed file: a header row plus data rows. Rows may be
// ragged; missing trailing cells read as empty.
type Table struct {
	Headers []string
	Rows    [][]string
}

// ReadTable loads a feed file, dispatching on extension. Marketplace
// exports arrive as either .csv or .xlsx depending on the seller panel.
func ReadTable(path string) (*Table, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open %s: %w", path, err)
	}
	defer f.Close()

	switch strings.ToLower(filepath.Ext(path)) {
	case ".csv":
		return readCSV(f)
	case ".xlsx":
		return readXLSX(f)
	default:
		return nil, fmt.Errorf("unsupported file type %q (expected .csv or .xlsx)", filepath.Ext(path))
	}
}

func readCSV(r io.Reader) (*Table, error) {
	reader := csv.NewReader(r)
	reader.LazyQuotes = true
	reader.FieldsPerRecord = -1

	records, err := reader.ReadAll()
	if err != nil {
		return nil, fmt.Errorf("failed to parse CSV: %w", err)
	}

	return buildTable(records)
}

func readXLSX(r io.Reader) (*Table, error) {
	wb, err := excelize.OpenReader(r)
	if err != nil {
		return nil, fmt.Errorf("failed to open workbook: %w", err)
	}
	defer wb.Close()

	sheets := wb.GetSheetList()
	if len(sheets) == 0 {
		return nil, fmt.Errorf("workbook has no sheets")
	}

	rows, err := wb.GetRows(sheets[0])
	if err != nil {
		return nil, fmt.Errorf("failed to read sheet %q: %w", sheets[0], err)
	}

	return buildTable(rows)
}

func buildTable(rows [][]string) (*Table, error) {
	if len(rows) == 0 {
		return nil, fmt.Errorf("file is empty")
	}

	headers := make([]string, len(rows[0]))
	for i, h := range rows[0] {
		if i == 0 {
			h = strings.TrimPrefix(h, "\uFEFF")
		}
		headers[i] = strings.TrimSpace(h)
	}

	table := &Table{Headers: headers}
	for _, row := range rows[1:] {
		if isEmptyRow(row) {
			continue
		}
		table.Rows = append(table.Rows, row)
	}

	return table, nil
}

func isEmptyRow(row []string) bool {
	for _, cell := range row {
		if strings.TrimSpace(cell) != "" {
			return false
		}
	}
	return true
}

// Column finds a header by case-insensitive name, returning -1 when
// absent.
func (t *Table) Column(name string) int {
	for i, h := range t.Headers {
		if strings.EqualFold(h, name) {
			return i
		}
	}
	return -1
}

// Cell returns the trimmed value at (row, col), tolerating ragged rows.
func (t *Table) Cell(row []string, col int) string {
	if col < 0 || col >= len(row) {
		return ""
	}
	return strings.TrimSpace(row[col])
}
