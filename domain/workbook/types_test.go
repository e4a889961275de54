package workbook

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func sampleSheet(rows int) *Sheet {
	s := &Sheet{Name: "Staff", Columns: []string{"name", "salary"}}
	for i := 0; i < rows; i++ {
		s.Rows = append(s.Rows, Row{NewStringValue("p"), NewNumericValue(float64(i))})
	}
	return s
}

func TestHead_CapsRows(t *testing.T) {
	s := sampleSheet(12)

	head := s.Head(5)
	assert.Equal(t, 5, head.NumRows())
	assert.Equal(t, s.Columns, head.Columns)
	assert.Equal(t, 12, s.NumRows(), "head must not change the source sheet")

	assert.Equal(t, 3, sampleSheet(3).Head(5).NumRows())
	assert.Equal(t, 0, s.Head(-1).NumRows())
}

func TestValue_AnyAndString(t *testing.T) {
	ts := time.Date(2024, 3, 1, 0, 0, 0, 0, time.UTC)

	assert.Nil(t, NewMissingValue().Any())
	assert.Nil(t, NewStringValue("").Any())
	assert.Equal(t, 1.5, NewNumericValue(1.5).Any())
	assert.Equal(t, true, NewBooleanValue(true).Any())
	assert.Equal(t, "2024-03-01T00:00:00Z", NewTimestampValue(ts).Any())

	assert.Equal(t, "42", NewNumericValue(42).String())
	assert.Equal(t, "2024-03-01", NewTimestampValue(ts).String())
	assert.Equal(t, "", NewMissingValue().String())
	assert.True(t, Value{}.IsMissing())
}

func TestRecords_PadsShortRows(t *testing.T) {
	s := &Sheet{Name: "x", Columns: []string{"a", "b"}, Rows: []Row{{NewNumericValue(1)}}}
	recs := s.Records()
	require.Len(t, recs, 1)
	assert.Equal(t, map[string]any{"a": 1.0, "b": nil}, recs[0])

	col := s.Column(1)
	require.Len(t, col, 1)
	assert.True(t, col[0].IsMissing())
}

func TestNew_RejectsDuplicateNames(t *testing.T) {
	_, err := New("book.xlsx", []*Sheet{{Name: "A"}, {Name: "A"}})
	assert.Error(t, err)

	wb, err := New("book.xlsx", []*Sheet{{Name: "A"}, {Name: "B"}})
	require.NoError(t, err)
	assert.Equal(t, []string{"A", "B"}, wb.Names())
	_, ok := wb.Sheet("B")
	assert.True(t, ok)

	var empty *Workbook
	assert.Equal(t, 0, empty.Len())
}
