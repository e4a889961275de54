package excel

import (
	"bytes"
	"context"
	"fmt"
	"log/slog"

	"github.com/extrame/xls"

	"sheetqa/domain/workbook"
	"sheetqa/internal/errors"
)

// XLSReader reads legacy BIFF (.xls) workbooks
type XLSReader struct {
	coercer *TypeCoercer
	charset string
	logger  *slog.Logger
}

// NewXLSReader creates an .xls reader
func NewXLSReader(config ReaderConfig, logger *slog.Logger) *XLSReader {
	return &XLSReader{
		coercer: NewTypeCoercer(config.Coercion),
		charset: config.XLSCharset,
		logger:  logger.With("component", "xls_reader"),
	}
}

// Extensions implements ports.WorkbookReader
func (r *XLSReader) Extensions() []string {
	return []string{".xls"}
}

// Read parses every sheet in workbook order
func (r *XLSReader) Read(ctx context.Context, fileName string, data []byte) (wb *workbook.Workbook, err error) {
	// The BIFF decoder panics on some truncated records.
	defer func() {
		if p := recover(); p != nil {
			wb = nil
			err = errors.ParseError("failed to decode xls workbook", fmt.Errorf("%v", p))
		}
	}()

	book, err := xls.OpenReader(bytes.NewReader(data), r.charset)
	if err != nil {
		return nil, errors.ParseError("failed to open xls workbook", err)
	}

	sheets := make([]*workbook.Sheet, 0, book.NumSheets())
	for i := 0; i < book.NumSheets(); i++ {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		ws := book.GetSheet(i)
		if ws == nil {
			continue
		}

		rows := make([][]string, 0, int(ws.MaxRow)+1)
		for rowIdx := 0; rowIdx <= int(ws.MaxRow); rowIdx++ {
			row := ws.Row(rowIdx)
			if row == nil {
				rows = append(rows, nil)
				continue
			}
			cells := make([]string, row.LastCol())
			for col := row.FirstCol(); col < row.LastCol(); col++ {
				cells[col] = row.Col(col)
			}
			rows = append(rows, cells)
		}

		sheet := buildSheet(rawSheet{name: ws.Name, rows: rows}, r.coercer)
		r.logger.Debug("sheet read", "sheet", ws.Name, "rows", sheet.NumRows(), "columns", sheet.NumColumns())
		sheets = append(sheets, sheet)
	}

	return newWorkbook(fileName, sheets)
}
