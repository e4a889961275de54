package query

import (
	"context"
	"fmt"
	"log/slog"
	"strconv"
	"time"

	"github.com/itchyny/gojq"

	"sheetqa/domain/answer"
	"sheetqa/domain/workbook"
	"sheetqa/internal/errors"
	"sheetqa/ports"
)

// JQExecutor answers with jq programs over {"sheets": {name: [records]}}
type JQExecutor struct {
	maxResults int
	logger     *slog.Logger
}

// NewJQExecutor creates a jq executor keeping at most maxResults emitted
// values and table rows
func NewJQExecutor(maxResults int, logger *slog.Logger) *JQExecutor {
	return &JQExecutor{
		maxResults: maxResults,
		logger:     logger.With("component", "jq_executor"),
	}
}

// Engine implements ports.QueryExecutor
func (e *JQExecutor) Engine() string {
	return "jq"
}

// Dialect implements ports.QueryExecutor
func (e *JQExecutor) Dialect() string {
	return "jq"
}

// Bind implements ports.QueryExecutor
func (e *JQExecutor) Bind(wb *workbook.Workbook) []ports.Binding {
	bindings := make([]ports.Binding, wb.Len())
	for i, sheet := range wb.Sheets {
		columns := make([]string, len(sheet.Columns))
		for j, col := range sheet.Columns {
			columns[j] = fmt.Sprintf(".[%s]", strconv.Quote(col))
		}
		bindings[i] = ports.Binding{
			Sheet:   sheet.Name,
			Ref:     fmt.Sprintf(".sheets[%s]", strconv.Quote(sheet.Name)),
			Columns: columns,
		}
	}
	return bindings
}

// Execute implements ports.QueryExecutor
func (e *JQExecutor) Execute(ctx context.Context, wb *workbook.Workbook, program string) (*answer.Result, error) {
	parsed, err := gojq.Parse(program)
	if err != nil {
		return nil, errors.QueryError("invalid jq program", err)
	}
	code, err := gojq.Compile(parsed, gojq.WithEnvironLoader(func() []string { return nil }))
	if err != nil {
		return nil, errors.QueryError("invalid jq program", err)
	}

	startTime := time.Now()
	var outputs []any
	truncated := false
	iter := code.RunWithContext(ctx, jqInput(wb))
	for {
		v, ok := iter.Next()
		if !ok {
			break
		}
		if err, ok := v.(error); ok {
			if haltErr, ok := err.(*gojq.HaltError); ok && haltErr.Value() == nil {
				break
			}
			return nil, errors.QueryError("jq program failed", err)
		}
		if e.maxResults > 0 && len(outputs) >= e.maxResults {
			truncated = true
			break
		}
		outputs = append(outputs, v)
	}

	e.logger.Debug("jq program finished", "outputs", len(outputs), "truncated", truncated, "elapsed", time.Since(startTime))

	var result *answer.Result
	switch len(outputs) {
	case 0:
		result = answer.FromText("")
	case 1:
		result = answer.Classify(outputs[0])
	default:
		result = answer.Classify(outputs)
	}
	if result.Kind == answer.KindTable && e.maxResults > 0 && len(result.Table.Rows) > e.maxResults {
		result.Table.Rows = result.Table.Rows[:e.maxResults]
		truncated = true
	}
	result.Truncated = truncated
	return result, nil
}

func jqInput(wb *workbook.Workbook) map[string]any {
	sheets := make(map[string]any, wb.Len())
	for _, sheet := range wb.Sheets {
		sheets[sheet.Name] = sheet.Records()
	}
	return map[string]any{"sheets": sheets}
}
