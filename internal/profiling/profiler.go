package profiling

import (
	"log/slog"

	"sheetqa/domain/workbook"
)

const defaultTopValues = 5

// DataProfiler profiles every column of a sheet
type DataProfiler struct {
	analyzer  *DistributionAnalyzer
	topValues int
	logger    *slog.Logger
}

// NewDataProfiler creates a new data profiler
func NewDataProfiler(logger *slog.Logger) *DataProfiler {
	return &DataProfiler{
		analyzer:  NewDistributionAnalyzer(),
		topValues: defaultTopValues,
		logger:    logger.With("component", "profiler"),
	}
}

// ProfileSheet profiles the columns of sheet, in column order
func (dp *DataProfiler) ProfileSheet(sheet *workbook.Sheet) []ColumnProfile {
	profiles := make([]ColumnProfile, 0, sheet.NumColumns())
	for i, name := range sheet.Columns {
		profiles = append(profiles, dp.ProfileColumn(name, sheet.ColumnType(i), sheet.Column(i)))
	}
	return profiles
}

// ProfileColumn profiles one column of values
func (dp *DataProfiler) ProfileColumn(name string, valueType workbook.ValueType, values []workbook.Value) ColumnProfile {
	profile := ColumnProfile{Name: name, Type: valueType}

	counts := make(map[string]int)
	numbers := make([]float64, 0, len(values))
	for _, v := range values {
		if v.IsMissing() {
			profile.Missing++
			continue
		}
		profile.Count++
		counts[v.String()]++
		if v.Type == workbook.ValueTypeNumeric {
			numbers = append(numbers, v.NumericVal)
		}
	}
	profile.Distinct = len(counts)

	if valueType == workbook.ValueTypeNumeric && len(numbers) > 0 {
		summary, err := dp.analyzer.AnalyzeDistribution(numbers)
		if err != nil {
			dp.logger.Warn("numeric profile failed", "column", name, "error", err)
		} else {
			profile.Numeric = &summary
		}
		return profile
	}

	if profile.Count > 0 {
		profile.TopValues = topValues(counts, dp.topValues)
	}
	return profile
}
