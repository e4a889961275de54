package query

import (
	"time"

	"sheetqa/domain/workbook"
)

func testWorkbook() *workbook.Workbook {
	employees := &workbook.Sheet{
		Name:    "Employees",
		Columns: []string{"name", "dept", "salary", "active", "Name"},
		Types: []workbook.ValueType{
			workbook.ValueTypeString, workbook.ValueTypeString, workbook.ValueTypeNumeric,
			workbook.ValueTypeBoolean, workbook.ValueTypeString,
		},
		Rows: []workbook.Row{
			{workbook.NewStringValue("Ann"), workbook.NewStringValue("ops"), workbook.NewNumericValue(5200), workbook.NewBooleanValue(true), workbook.NewMissingValue()},
			{workbook.NewStringValue("Bo"), workbook.NewStringValue("eng"), workbook.NewNumericValue(6100), workbook.NewBooleanValue(false), workbook.NewMissingValue()},
			{workbook.NewStringValue("Cy"), workbook.NewStringValue("eng"), workbook.NewNumericValue(7000), workbook.NewBooleanValue(true), workbook.NewMissingValue()},
		},
	}
	depts := &workbook.Sheet{
		Name:    "2024 Depts",
		Columns: []string{"dept", "opened"},
		Types:   []workbook.ValueType{workbook.ValueTypeString, workbook.ValueTypeTimestamp},
		Rows: []workbook.Row{
			{workbook.NewStringValue("ops"), workbook.NewTimestampValue(time.Date(2020, 1, 2, 0, 0, 0, 0, time.UTC))},
			{workbook.NewStringValue("eng"), workbook.NewTimestampValue(time.Date(2021, 5, 6, 0, 0, 0, 0, time.UTC))},
		},
	}
	empty := &workbook.Sheet{Name: "Notes"}

	wb, err := workbook.New("staff.xlsx", []*workbook.Sheet{employees, depts, empty})
	if err != nil {
		panic(err)
	}
	return wb
}
