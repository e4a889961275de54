package ports

import (
	"context"

	"sheetqa/domain/workbook"
)

// WorkbookReader parses the raw bytes of one uploaded workbook format
type WorkbookReader interface {
	// Extensions lists the lower-case file extensions this reader accepts
	Extensions() []string

	// Read parses every sheet of the file, in file order
	Read(ctx context.Context, fileName string, data []byte) (*workbook.Workbook, error)
}
