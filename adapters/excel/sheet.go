package excel

import (
	"fmt"
	"strings"

	"sheetqa/domain/workbook"
	"sheetqa/internal/errors"
)

// rawSheet is a sheet as read from the file: cell text, row-major
type rawSheet struct {
	name string
	rows [][]string
}

// buildSheet turns raw rows into a typed sheet. The first non-empty row
// is the header; empty headers become "Unnamed: <i>" and repeated ones get
// ".1", ".2" suffixes. Data rows are padded to the header width and
// trailing empty rows are dropped.
func buildSheet(raw rawSheet, coercer *TypeCoercer) *workbook.Sheet {
	sheet := &workbook.Sheet{Name: raw.name}

	start := 0
	for start < len(raw.rows) && isBlankRow(raw.rows[start]) {
		start++
	}
	end := len(raw.rows)
	for end > start && isBlankRow(raw.rows[end-1]) {
		end--
	}
	if start >= end {
		return sheet
	}

	header := raw.rows[start]
	body := raw.rows[start+1 : end]

	width := len(header)
	for _, row := range body {
		if len(row) > width {
			width = len(row)
		}
	}

	sheet.Columns = headerNames(header, width)
	sheet.Rows = make([]workbook.Row, 0, len(body))
	for _, cells := range body {
		row := make(workbook.Row, width)
		for i := 0; i < width; i++ {
			if i < len(cells) {
				row[i] = coercer.CoerceCell(cells[i])
			} else {
				row[i] = workbook.NewMissingValue()
			}
		}
		sheet.Rows = append(sheet.Rows, row)
	}

	sheet.Types = make([]workbook.ValueType, width)
	for i := range sheet.Types {
		sheet.Types[i] = coercer.ColumnType(sheet.Column(i))
	}
	return sheet
}

func headerNames(header []string, width int) []string {
	names := make([]string, width)
	used := make(map[string]bool, width)
	for i := 0; i < width; i++ {
		base := ""
		if i < len(header) {
			base = strings.TrimSpace(header[i])
		}
		if base == "" {
			base = fmt.Sprintf("Unnamed: %d", i)
		}
		name := base
		for n := 1; used[name]; n++ {
			name = fmt.Sprintf("%s.%d", base, n)
		}
		used[name] = true
		names[i] = name
	}
	return names
}

func isBlankRow(row []string) bool {
	for _, cell := range row {
		if strings.TrimSpace(cell) != "" {
			return false
		}
	}
	return true
}

func newWorkbook(fileName string, sheets []*workbook.Sheet) (*workbook.Workbook, error) {
	if len(sheets) == 0 {
		return nil, errors.ParseError("workbook contains no sheets", nil)
	}
	wb, err := workbook.New(fileName, sheets)
	if err != nil {
		return nil, errors.ParseError("invalid workbook", err)
	}
	return wb, nil
}
