package excel

// ReaderConfig holds configuration shared by the workbook readers
type ReaderConfig struct {
	Coercion   CoercionConfig `json:"coercion"`
	XLSCharset string         `json:"xls_charset"` // charset for pre-BIFF8 .xls strings
	MaxBytes   int64          `json:"max_bytes"`   // 0 means unlimited
}

// DefaultReaderConfig returns sensible defaults for workbook parsing
func DefaultReaderConfig() ReaderConfig {
	return ReaderConfig{
		Coercion:   DefaultCoercionConfig(),
		XLSCharset: "utf-8",
	}
}
