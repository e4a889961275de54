package app

import (
	"context"
	"log/slog"
	"path/filepath"

	"sheetqa/domain/workbook"
	"sheetqa/internal/errors"
	"sheetqa/ports"
)

// SheetPreview is one sheet as listed on the page
type SheetPreview struct {
	Name    string          `json:"name"`
	Rows    int             `json:"rows"`
	Columns int             `json:"columns"`
	Head    *workbook.Sheet `json:"-"`
}

// WorkbookService parses uploads and builds previews
type WorkbookService struct {
	reader      ports.WorkbookReader
	previewRows int
	logger      *slog.Logger
}

// NewWorkbookService creates a workbook service
func NewWorkbookService(reader ports.WorkbookReader, previewRows int, logger *slog.Logger) *WorkbookService {
	if previewRows <= 0 {
		previewRows = 5
	}
	return &WorkbookService{
		reader:      reader,
		previewRows: previewRows,
		logger:      logger.With("component", "workbook_service"),
	}
}

// AcceptedExtensions lists the upload extensions, e.g. for the file picker
func (s *WorkbookService) AcceptedExtensions() []string {
	return s.reader.Extensions()
}

// PreviewRows is the number of rows each preview shows
func (s *WorkbookService) PreviewRows() int {
	return s.previewRows
}

// Load parses one upload into a workbook. Nothing is kept on failure.
func (s *WorkbookService) Load(ctx context.Context, fileName string, data []byte) (*workbook.Workbook, error) {
	fileName = filepath.Base(fileName)
	if fileName == "." || fileName == string(filepath.Separator) {
		return nil, errors.InvalidInput("uploaded file has no name")
	}

	wb, err := s.reader.Read(ctx, fileName, data)
	if err != nil {
		return nil, err
	}
	s.logger.Info("workbook loaded", "file", fileName, "bytes", len(data), "sheets", wb.Names())
	return wb, nil
}

// Preview lists every sheet in workbook order with its first rows
func (s *WorkbookService) Preview(wb *workbook.Workbook) []SheetPreview {
	previews := make([]SheetPreview, 0, wb.Len())
	if wb == nil {
		return previews
	}
	for _, sheet := range wb.Sheets {
		previews = append(previews, SheetPreview{
			Name:    sheet.Name,
			Rows:    sheet.NumRows(),
			Columns: sheet.NumColumns(),
			Head:    sheet.Head(s.previewRows),
		})
	}
	return previews
}
