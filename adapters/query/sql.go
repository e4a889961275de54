package query

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/jmoiron/sqlx"
	_ "modernc.org/sqlite" // registers the "sqlite" driver

	"sheetqa/domain/answer"
	"sheetqa/domain/workbook"
	"sheetqa/internal/errors"
	"sheetqa/ports"
)

// SQLExecutor answers with SQLite queries over a throwaway in-memory copy
// of the workbook, one table per sheet
type SQLExecutor struct {
	maxRows int
	logger  *slog.Logger
}

// NewSQLExecutor creates a SQL executor keeping at most maxRows result rows
func NewSQLExecutor(maxRows int, logger *slog.Logger) *SQLExecutor {
	return &SQLExecutor{
		maxRows: maxRows,
		logger:  logger.With("component", "sql_executor"),
	}
}

// Engine implements ports.QueryExecutor
func (e *SQLExecutor) Engine() string {
	return "sql"
}

// Dialect implements ports.QueryExecutor
func (e *SQLExecutor) Dialect() string {
	return "SQLite SQL"
}

// Bind implements ports.QueryExecutor
func (e *SQLExecutor) Bind(wb *workbook.Workbook) []ports.Binding {
	names := tableNames(wb.Names())
	bindings := make([]ports.Binding, wb.Len())
	for i, sheet := range wb.Sheets {
		bindings[i] = ports.Binding{Sheet: sheet.Name, Ref: names[i], Columns: columnIdentifiers(sheet.Columns)}
	}
	return bindings
}

// Execute implements ports.QueryExecutor
func (e *SQLExecutor) Execute(ctx context.Context, wb *workbook.Workbook, program string) (*answer.Result, error) {
	stmt, err := singleStatement(program)
	if err != nil {
		return nil, err
	}

	startTime := time.Now()
	db, err := sqlx.Open("sqlite", ":memory:")
	if err != nil {
		return nil, errors.Wrap(err, "failed to open query database")
	}
	defer db.Close()
	// Every pooled connection to :memory: is its own database
	db.SetMaxOpenConns(1)

	if err := e.load(ctx, db, wb); err != nil {
		return nil, err
	}
	if _, err := db.ExecContext(ctx, "PRAGMA query_only = 1"); err != nil {
		return nil, errors.Wrap(err, "failed to make query database read-only")
	}

	rows, err := db.QueryxContext(ctx, stmt)
	if err != nil {
		return nil, errors.QueryError("query failed", err)
	}
	defer rows.Close()

	columns, err := rows.Columns()
	if err != nil {
		return nil, errors.QueryError("failed to read result columns", err)
	}

	table := &answer.Table{Columns: columns, Rows: make([][]any, 0)}
	truncated := false
	for rows.Next() {
		if e.maxRows > 0 && len(table.Rows) >= e.maxRows {
			truncated = true
			break
		}
		values, err := rows.SliceScan()
		if err != nil {
			return nil, errors.QueryError("failed to read result row", err)
		}
		for i, v := range values {
			if b, ok := v.([]byte); ok {
				values[i] = string(b)
			}
		}
		table.Rows = append(table.Rows, values)
	}
	if err := rows.Err(); err != nil {
		return nil, errors.QueryError("query failed", err)
	}

	e.logger.Debug("sql query finished", "rows", len(table.Rows), "truncated", truncated, "elapsed", time.Since(startTime))

	result := answer.FromTable(table)
	result.Truncated = truncated
	return result, nil
}

// load creates and fills one table per sheet
func (e *SQLExecutor) load(ctx context.Context, db *sqlx.DB, wb *workbook.Workbook) error {
	tx, err := db.BeginTxx(ctx, nil)
	if err != nil {
		return errors.Wrap(err, "failed to begin load transaction")
	}
	defer tx.Rollback()

	for _, binding := range e.Bind(wb) {
		sheet, _ := wb.Sheet(binding.Sheet)
		if len(binding.Columns) == 0 {
			// SQLite has no zero-column tables
			binding.Columns = []string{quoteIdentifier("_empty")}
		}

		defs := make([]string, len(binding.Columns))
		for i, col := range binding.Columns {
			defs[i] = strings.TrimSpace(col + " " + columnAffinity(sheet.ColumnType(i)))
		}
		create := fmt.Sprintf("CREATE TABLE %s (%s)", quoteIdentifier(binding.Ref), strings.Join(defs, ", "))
		if _, err := tx.ExecContext(ctx, create); err != nil {
			return errors.Wrapf(err, "failed to create table for sheet %q", sheet.Name)
		}
		if sheet.NumColumns() == 0 {
			continue
		}

		placeholders := strings.TrimSuffix(strings.Repeat("?, ", len(binding.Columns)), ", ")
		insert, err := tx.PreparexContext(ctx, fmt.Sprintf("INSERT INTO %s VALUES (%s)", quoteIdentifier(binding.Ref), placeholders))
		if err != nil {
			return errors.Wrapf(err, "failed to prepare insert for sheet %q", sheet.Name)
		}
		args := make([]any, len(binding.Columns))
		for _, row := range sheet.Rows {
			for i := range args {
				args[i] = nil
				if i < len(row) {
					args[i] = sqlValue(row[i])
				}
			}
			if _, err := insert.ExecContext(ctx, args...); err != nil {
				insert.Close()
				return errors.Wrapf(err, "failed to load sheet %q", sheet.Name)
			}
		}
		insert.Close()
	}

	if err := tx.Commit(); err != nil {
		return errors.Wrap(err, "failed to commit load transaction")
	}
	return nil
}

func columnAffinity(t workbook.ValueType) string {
	switch t {
	case workbook.ValueTypeNumeric:
		return "REAL"
	case workbook.ValueTypeBoolean:
		return "INTEGER"
	case workbook.ValueTypeTimestamp, workbook.ValueTypeString:
		return "TEXT"
	}
	return ""
}

func sqlValue(v workbook.Value) any {
	switch v.Type {
	case workbook.ValueTypeNumeric:
		return v.NumericVal
	case workbook.ValueTypeBoolean:
		if v.BooleanVal {
			return int64(1)
		}
		return int64(0)
	case workbook.ValueTypeTimestamp, workbook.ValueTypeString:
		return v.Any()
	}
	return nil
}
