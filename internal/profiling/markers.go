package profiling

import "sheetqa/domain/workbook"

// NumericSummary holds summary statistics of a numeric column
type NumericSummary struct {
	Mean     float64 `json:"mean"`
	StdDev   float64 `json:"std_dev"`
	Min      float64 `json:"min"`
	Max      float64 `json:"max"`
	Median   float64 `json:"median"`
	Q25      float64 `json:"q25"`
	Q75      float64 `json:"q75"`
	Skewness float64 `json:"skewness"`
	Outliers int     `json:"outliers"` // values beyond 1.5 IQR of the quartiles
}

// ColumnProfile describes one column of a sheet
type ColumnProfile struct {
	Name     string             `json:"name"`
	Type     workbook.ValueType `json:"type"`
	Count    int                `json:"count"`   // non-missing cells
	Missing  int                `json:"missing"` // missing cells
	Distinct int                `json:"distinct"`
	// TopValues lists the most frequent values of non-numeric columns
	TopValues []string        `json:"top_values,omitempty"`
	Numeric   *NumericSummary `json:"numeric,omitempty"`
}
