package excel

import (
	"bytes"
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/xuri/excelize/v2"

	"sheetqa/domain/workbook"
	"sheetqa/internal/errors"
)

// XLSXReader reads Office Open XML workbooks
type XLSXReader struct {
	coercer *TypeCoercer
	logger  *slog.Logger
}

// NewXLSXReader creates an .xlsx reader
func NewXLSXReader(config ReaderConfig, logger *slog.Logger) *XLSXReader {
	return &XLSXReader{
		coercer: NewTypeCoercer(config.Coercion),
		logger:  logger.With("component", "xlsx_reader"),
	}
}

// Extensions implements ports.WorkbookReader
func (r *XLSXReader) Extensions() []string {
	return []string{".xlsx"}
}

// Read parses every sheet in workbook order
func (r *XLSXReader) Read(ctx context.Context, fileName string, data []byte) (*workbook.Workbook, error) {
	startTime := time.Now()
	f, err := excelize.OpenReader(bytes.NewReader(data))
	if err != nil {
		return nil, errors.ParseError("failed to open xlsx workbook", err)
	}
	defer f.Close()

	names := f.GetSheetList()
	r.logger.Debug("workbook opened", "file", fileName, "sheets", len(names), "elapsed", time.Since(startTime))

	sheets := make([]*workbook.Sheet, 0, len(names))
	for _, name := range names {
		if err := ctx.Err(); err != nil {
			return nil, err
		}

		readStart := time.Now()
		rows, err := f.GetRows(name)
		if err != nil {
			return nil, errors.ParseError(fmt.Sprintf("failed to read sheet %q", name), err)
		}
		sheet := buildSheet(rawSheet{name: name, rows: rows}, r.coercer)
		r.logger.Debug("sheet read", "sheet", name, "rows", sheet.NumRows(), "columns", sheet.NumColumns(), "elapsed", time.Since(readStart))
		sheets = append(sheets, sheet)
	}

	return newWorkbook(fileName, sheets)
}
