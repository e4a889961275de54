package ports

import (
	"context"

	"sheetqa/domain/answer"
	"sheetqa/domain/workbook"
)

// Binding is how one sheet is addressed from a query program
type Binding struct {
	Sheet   string   // sheet name in the workbook
	Ref     string   // table name or path the program uses
	Columns []string // column references, aligned with the sheet's columns
}

// QueryExecutor runs a model-written query program against a workbook
type QueryExecutor interface {
	// Engine is the short engine name ("sql" or "jq")
	Engine() string

	// Dialect names the query language, as shown to the model
	Dialect() string

	// Bind returns the reference of every sheet, in workbook order
	Bind(wb *workbook.Workbook) []Binding

	// Execute runs program over every sheet and returns the result
	Execute(ctx context.Context, wb *workbook.Workbook, program string) (*answer.Result, error)
}
