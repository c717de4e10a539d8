// Package spreadsheet reads tabular uploads (.xlsx) into header-keyed rows.
package spreadsheet

import (
	"errors"
	"fmt"
	"io"
	"strings"

	"github.com/xuri/excelize/v2"
)

// ErrEmptySheet is returned when the workbook has no header row
var ErrEmptySheet = errors.New("spreadsheet: first sheet is empty")

// Row is one data row keyed by lower-cased header name. Number is the
// 1-based row number in the sheet, header included.
type Row struct {
	Number int
	Values map[string]string
}

// Get returns the trimmed value of a column
func (r Row) Get(column string) string {
	return strings.TrimSpace(r.Values[strings.ToLower(column)])
}

// ReadRows reads the first sheet of an .xlsx workbook. The first row is the
// header; every column in required must be present. Fully blank rows are
// skipped.
func ReadRows(r io.Reader, required ...string) ([]Row, error) {
	f, err := excelize.OpenReader(r)
	if err != nil {
		return nil, fmt.Errorf("spreadsheet: open workbook: %w", err)
	}
	defer f.Close()

	sheets := f.GetSheetList()
	if len(sheets) == 0 {
		return nil, ErrEmptySheet
	}
	raw, err := f.GetRows(sheets[0])
	if err != nil {
		return nil, fmt.Errorf("spreadsheet: read %s: %w", sheets[0], err)
	}
	if len(raw) == 0 {
		return nil, ErrEmptySheet
	}

	header := make([]string, len(raw[0]))
	present := make(map[string]bool, len(raw[0]))
	for i, h := range raw[0] {
		header[i] = strings.ToLower(strings.TrimSpace(h))
		present[header[i]] = true
	}
	var missing []string
	for _, col := range required {
		if !present[strings.ToLower(col)] {
			missing = append(missing, col)
		}
	}
	if len(missing) > 0 {
		return nil, fmt.Errorf("spreadsheet: missing columns: %s", strings.Join(missing, ", "))
	}

	rows := make([]Row, 0, len(raw)-1)
	for i, cells := range raw[1:] {
		values := make(map[string]string, len(header))
		blank := true
		for j, cell := range cells {
			if j >= len(header) || header[j] == "" {
				continue
			}
			values[header[j]] = cell
			if strings.TrimSpace(cell) != "" {
				blank = false
			}
		}
		if blank {
			continue
		}
		rows = append(rows, Row{Number: i + 2, Values: values})
	}
	return rows, nil
}

// WriteRows builds a single-sheet workbook from a header and rows. It is
// used for import templates and exports.
func WriteRows(w io.Writer, sheet string, header []string, rows [][]string) error {
	f := excelize.NewFile()
	defer f.Close()

	if sheet == "" {
		sheet = "Sheet1"
	}
	if err := f.SetSheetName(f.GetSheetName(0), sheet); err != nil {
		return err
	}

	all := append([][]string{header}, rows...)
	for i, row := range all {
		for j, value := range row {
			cell, err := excelize.CoordinatesToCellName(j+1, i+1)
			if err != nil {
				return err
			}
			if err := f.SetCellValue(sheet, cell, value); err != nil {
				return err
			}
		}
	}
	return f.Write(w)
}
