package excel

import (
	"context"
	"fmt"
	"log/slog"
	"path/filepath"
	"slices"
	"strings"
	"time"

	"github.com/gabriel-vasile/mimetype"

	"sheetqa/domain/workbook"
	"sheetqa/internal/errors"
	"sheetqa/ports"
)

// MIME types a sniffed upload may carry for each extension. Parents are
// accepted too, since some writers produce archives mimetype only
// recognizes as generic zip or OLE storage.
var acceptedMIMETypes = map[string][]string{
	".xlsx": {"application/vnd.openxmlformats-officedocument.spreadsheetml.sheet", "application/zip"},
	".xls":  {"application/vnd.ms-excel", "application/x-ole-storage"},
}

// DataReader picks the reader for an upload by extension and checks the
// bytes match it before parsing
type DataReader struct {
	readers  map[string]ports.WorkbookReader
	maxBytes int64
	logger   *slog.Logger
}

// NewDataReader creates a reader over .xlsx and .xls files
func NewDataReader(config ReaderConfig, logger *slog.Logger) *DataReader {
	return NewDataReaderWith(config, logger, NewXLSXReader(config, logger), NewXLSReader(config, logger))
}

// NewDataReaderWith creates a reader over the given format readers
func NewDataReaderWith(config ReaderConfig, logger *slog.Logger, readers ...ports.WorkbookReader) *DataReader {
	r := &DataReader{
		readers:  make(map[string]ports.WorkbookReader),
		maxBytes: config.MaxBytes,
		logger:   logger.With("component", "data_reader"),
	}
	for _, reader := range readers {
		for _, ext := range reader.Extensions() {
			r.readers[ext] = reader
		}
	}
	return r
}

// Extensions implements ports.WorkbookReader
func (r *DataReader) Extensions() []string {
	exts := make([]string, 0, len(r.readers))
	for ext := range r.readers {
		exts = append(exts, ext)
	}
	slices.Sort(exts)
	return exts
}

// Read implements ports.WorkbookReader
func (r *DataReader) Read(ctx context.Context, fileName string, data []byte) (*workbook.Workbook, error) {
	ext := strings.ToLower(filepath.Ext(fileName))
	reader, ok := r.readers[ext]
	if !ok {
		return nil, errors.UnsupportedFormat(fmt.Sprintf("unsupported file type %q: expected one of %s", ext, strings.Join(r.Extensions(), ", ")))
	}
	if len(data) == 0 {
		return nil, errors.InvalidInput("uploaded file is empty")
	}
	if r.maxBytes > 0 && int64(len(data)) > r.maxBytes {
		return nil, errors.InvalidInput(fmt.Sprintf("file size (%.1f MB) exceeds the %.0f MB limit", float64(len(data))/(1024*1024), float64(r.maxBytes)/(1024*1024)))
	}
	if err := checkContent(ext, data); err != nil {
		return nil, err
	}

	startTime := time.Now()
	wb, err := reader.Read(ctx, fileName, data)
	if err != nil {
		r.logger.Warn("workbook parse failed", "file", fileName, "error", err)
		return nil, err
	}
	r.logger.Info("workbook parsed", "file", fileName, "sheets", wb.Len(), "elapsed", time.Since(startTime))
	return wb, nil
}

// checkContent sniffs the bytes and rejects content that cannot be the
// declared format
func checkContent(ext string, data []byte) error {
	accepted, ok := acceptedMIMETypes[ext]
	if !ok {
		return nil
	}
	detected := mimetype.Detect(data)
	for m := detected; m != nil; m = m.Parent() {
		for _, want := range accepted {
			if m.Is(want) {
				return nil
			}
		}
	}
	return errors.UnsupportedFormat(fmt.Sprintf("file content (%s) does not match the %s extension", detected.String(), ext))
}
