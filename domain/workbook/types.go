package workbook

import (
	"fmt"
	"strconv"
	"time"
)

// ValueType defines the storage type of a cell
type ValueType string

const (
	ValueTypeMissing   ValueType = "missing"
	ValueTypeNumeric   ValueType = "numeric"
	ValueTypeBoolean   ValueType = "boolean"
	ValueTypeTimestamp ValueType = "timestamp"
	ValueTypeString    ValueType = "string"
)

// Value is one typed cell
type Value struct {
	Type         ValueType
	StringVal    string
	NumericVal   float64
	BooleanVal   bool
	TimestampVal time.Time
}

// NewStringValue creates a string value; the empty string is missing
func NewStringValue(s string) Value {
	if s == "" {
		return NewMissingValue()
	}
	return Value{Type: ValueTypeString, StringVal: s}
}

// NewNumericValue creates a numeric value
func NewNumericValue(n float64) Value {
	return Value{Type: ValueTypeNumeric, NumericVal: n}
}

// NewBooleanValue creates a boolean value
func NewBooleanValue(b bool) Value {
	return Value{Type: ValueTypeBoolean, BooleanVal: b}
}

// NewTimestampValue creates a timestamp value
func NewTimestampValue(t time.Time) Value {
	return Value{Type: ValueTypeTimestamp, TimestampVal: t}
}

// NewMissingValue creates a missing value
func NewMissingValue() Value {
	return Value{Type: ValueTypeMissing}
}

// IsMissing reports whether the cell is empty
func (v Value) IsMissing() bool {
	return v.Type == ValueTypeMissing || v.Type == ""
}

// String renders the value the way it is shown in previews
func (v Value) String() string {
	switch v.Type {
	case ValueTypeString:
		return v.StringVal
	case ValueTypeNumeric:
		return strconv.FormatFloat(v.NumericVal, 'f', -1, 64)
	case ValueTypeBoolean:
		return strconv.FormatBool(v.BooleanVal)
	case ValueTypeTimestamp:
		if v.TimestampVal.Hour() == 0 && v.TimestampVal.Minute() == 0 && v.TimestampVal.Second() == 0 {
			return v.TimestampVal.Format("2006-01-02")
		}
		return v.TimestampVal.Format("2006-01-02 15:04:05")
	}
	return ""
}

// Any returns the value as one of nil, float64, bool or string.
// Timestamps become RFC 3339 strings. These are the only shapes the query
// engines and JSON encoding see.
func (v Value) Any() any {
	switch v.Type {
	case ValueTypeString:
		return v.StringVal
	case ValueTypeNumeric:
		return v.NumericVal
	case ValueTypeBoolean:
		return v.BooleanVal
	case ValueTypeTimestamp:
		return v.TimestampVal.Format(time.RFC3339)
	}
	return nil
}

// Row is an ordered list of cells aligned with Sheet.Columns
type Row []Value

// Sheet is one named table of a workbook
type Sheet struct {
	Name    string
	Columns []string
	// Types is the dominant value type of each column, aligned with Columns
	Types []ValueType
	Rows  []Row
}

// Head returns a copy of the sheet limited to the first n rows
func (s *Sheet) Head(n int) *Sheet {
	if n < 0 {
		n = 0
	}
	if n > len(s.Rows) {
		n = len(s.Rows)
	}
	return &Sheet{
		Name:    s.Name,
		Columns: s.Columns,
		Types:   s.Types,
		Rows:    s.Rows[:n],
	}
}

// ColumnType returns the dominant type of column i, or ValueTypeMissing
// when unknown
func (s *Sheet) ColumnType(i int) ValueType {
	if i < 0 || i >= len(s.Types) {
		return ValueTypeMissing
	}
	return s.Types[i]
}

// NumRows returns the number of data rows (header excluded)
func (s *Sheet) NumRows() int {
	return len(s.Rows)
}

// NumColumns returns the number of columns
func (s *Sheet) NumColumns() int {
	return len(s.Columns)
}

// Column returns every value of the column at index i
func (s *Sheet) Column(i int) []Value {
	values := make([]Value, 0, len(s.Rows))
	for _, row := range s.Rows {
		if i < len(row) {
			values = append(values, row[i])
		} else {
			values = append(values, NewMissingValue())
		}
	}
	return values
}

// Records returns the rows as column-name keyed maps of Any values
func (s *Sheet) Records() []any {
	records := make([]any, 0, len(s.Rows))
	for _, row := range s.Rows {
		rec := make(map[string]any, len(s.Columns))
		for i, col := range s.Columns {
			if i < len(row) {
				rec[col] = row[i].Any()
			} else {
				rec[col] = nil
			}
		}
		records = append(records, rec)
	}
	return records
}

// Workbook is the ordered collection of sheets parsed from one upload
type Workbook struct {
	FileName string
	Sheets   []*Sheet
}

// New builds a workbook, rejecting duplicate sheet names
func New(fileName string, sheets []*Sheet) (*Workbook, error) {
	seen := make(map[string]bool, len(sheets))
	for _, s := range sheets {
		if seen[s.Name] {
			return nil, fmt.Errorf("duplicate sheet name %q", s.Name)
		}
		seen[s.Name] = true
	}
	return &Workbook{FileName: fileName, Sheets: sheets}, nil
}

// Len returns the number of sheets
func (w *Workbook) Len() int {
	if w == nil {
		return 0
	}
	return len(w.Sheets)
}

// Sheet looks a sheet up by name
func (w *Workbook) Sheet(name string) (*Sheet, bool) {
	if w == nil {
		return nil, false
	}
	for _, s := range w.Sheets {
		if s.Name == name {
			return s, true
		}
	}
	return nil, false
}

// Names returns sheet names in workbook order
func (w *Workbook) Names() []string {
	if w == nil {
		return nil
	}
	names := make([]string, len(w.Sheets))
	for i, s := range w.Sheets {
		names[i] = s.Name
	}
	return names
}
