package excel

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/xuri/excelize/v2"

	"sheetqa/internal/errors"
	"sheetqa/internal/logging"
)

// buildXLSX writes a workbook with the given sheets, in order
func buildXLSX(t *testing.T, sheets map[string][][]any, order ...string) []byte {
	t.Helper()
	f := excelize.NewFile()
	defer f.Close()

	for i, name := range order {
		if i == 0 {
			require.NoError(t, f.SetSheetName("Sheet1", name))
		} else {
			_, err := f.NewSheet(name)
			require.NoError(t, err)
		}
		for r, row := range sheets[name] {
			cell, err := excelize.CoordinatesToCellName(1, r+1)
			require.NoError(t, err)
			require.NoError(t, f.SetSheetRow(name, cell, &row))
		}
	}

	buf, err := f.WriteToBuffer()
	require.NoError(t, err)
	return buf.Bytes()
}

func newTestReader(maxBytes int64) *DataReader {
	config := DefaultReaderConfig()
	config.MaxBytes = maxBytes
	return NewDataReader(config, logging.Discard())
}

func TestDataReader_XLSX(t *testing.T) {
	data := buildXLSX(t, map[string][][]any{
		"Employees": {
			{"name", "dept", "salary"},
			{"Ann", "ops", 5200},
			{"Bo", "eng", 6100},
		},
		"Depts": {
			{"dept", "floor"},
			{"ops", 1},
		},
	}, "Employees", "Depts")

	wb, err := newTestReader(0).Read(context.Background(), "staff.XLSX", data)
	require.NoError(t, err)

	assert.Equal(t, []string{"Employees", "Depts"}, wb.Names())
	emp, ok := wb.Sheet("Employees")
	require.True(t, ok)
	assert.Equal(t, []string{"name", "dept", "salary"}, emp.Columns)
	assert.Equal(t, 2, emp.NumRows())
	assert.Equal(t, 6100.0, emp.Rows[1][2].NumericVal)
}

func TestDataReader_RejectsExtension(t *testing.T) {
	_, err := newTestReader(0).Read(context.Background(), "data.csv", []byte("a,b\n1,2\n"))
	require.Error(t, err)
	assert.Equal(t, errors.CodeUnsupportedFormat, errors.GetCode(err))
}

func TestDataReader_RejectsMismatchedContent(t *testing.T) {
	_, err := newTestReader(0).Read(context.Background(), "report.xlsx", []byte("%PDF-1.4 not a workbook"))
	require.Error(t, err)
	assert.Equal(t, errors.CodeUnsupportedFormat, errors.GetCode(err))
}

func TestDataReader_RejectsEmptyAndOversized(t *testing.T) {
	_, err := newTestReader(0).Read(context.Background(), "empty.xlsx", nil)
	assert.Equal(t, errors.CodeInvalidInput, errors.GetCode(err))

	data := buildXLSX(t, map[string][][]any{"S": {{"a"}, {1}}}, "S")
	_, err = newTestReader(16).Read(context.Background(), "big.xlsx", data)
	assert.Equal(t, errors.CodeInvalidInput, errors.GetCode(err))
}

func TestDataReader_XLS(t *testing.T) {
	data, err := os.ReadFile(filepath.Join("testdata", "table.xls"))
	require.NoError(t, err)

	wb, err := newTestReader(0).Read(context.Background(), "Table.XLS", data)
	require.NoError(t, err)

	assert.Equal(t, []string{"Table"}, wb.Names())
	sheet := wb.Sheets[0]
	assert.Equal(t, []string{"Code", "Name", "Description"}, sheet.Columns)
	require.Equal(t, 11, sheet.NumRows())
	for i, row := range sheet.Rows {
		assert.Len(t, row, 3, "row %d", i)
	}
	assert.False(t, sheet.Rows[0][0].IsMissing())
}

func TestDataReader_CorruptXLS(t *testing.T) {
	// OLE signature with a truncated header
	data := append([]byte{0xD0, 0xCF, 0x11, 0xE0, 0xA1, 0xB1, 0x1A, 0xE1}, make([]byte, 16)...)

	_, err := newTestReader(0).Read(context.Background(), "old.xls", data)
	require.Error(t, err)
	assert.Equal(t, errors.CodeParseError, errors.GetCode(err))
}

func TestDataReader_Extensions(t *testing.T) {
	assert.Equal(t, []string{".xls", ".xlsx"}, newTestReader(0).Extensions())
}
