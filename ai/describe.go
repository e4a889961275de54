package ai

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/jedib0t/go-pretty/v6/table"

	"sheetqa/domain/workbook"
	"sheetqa/internal/profiling"
	"sheetqa/ports"
)

// SheetDescriber renders the per-sheet context given to the model
type SheetDescriber struct {
	profiler   *profiling.DataProfiler
	sampleRows int
}

// NewSheetDescriber creates a describer showing sampleRows rows per sheet
func NewSheetDescriber(profiler *profiling.DataProfiler, sampleRows int) *SheetDescriber {
	return &SheetDescriber{profiler: profiler, sampleRows: sampleRows}
}

// Describe renders every sheet, in workbook order. bindings must align
// with wb.Sheets.
func (d *SheetDescriber) Describe(wb *workbook.Workbook, bindings []ports.Binding) string {
	parts := make([]string, 0, wb.Len())
	for i, sheet := range wb.Sheets {
		var binding ports.Binding
		if i < len(bindings) {
			binding = bindings[i]
		}
		parts = append(parts, d.describeSheet(i+1, sheet, binding))
	}
	return strings.Join(parts, "\n\n")
}

func (d *SheetDescriber) describeSheet(n int, sheet *workbook.Sheet, binding ports.Binding) string {
	var b strings.Builder
	fmt.Fprintf(&b, "### Sheet %d: %q\n", n, sheet.Name)
	fmt.Fprintf(&b, "Reference: %s\n", binding.Ref)
	fmt.Fprintf(&b, "Rows: %d, columns: %d\n", sheet.NumRows(), sheet.NumColumns())
	if sheet.NumColumns() == 0 {
		b.WriteString("The sheet is empty.")
		return b.String()
	}

	columns := table.NewWriter()
	columns.AppendHeader(table.Row{"column", "reference", "type", "non-empty", "distinct", "summary"})
	for i, profile := range d.profiler.ProfileSheet(sheet) {
		ref := ""
		if i < len(binding.Columns) {
			ref = binding.Columns[i]
		}
		columns.AppendRow(table.Row{profile.Name, ref, string(profile.Type), profile.Count, profile.Distinct, summarize(profile)})
	}
	b.WriteString("\nColumns:\n")
	b.WriteString(columns.RenderMarkdown())
	b.WriteString("\n")

	head := sheet.Head(d.sampleRows)
	if head.NumRows() == 0 {
		b.WriteString("\nThe sheet has a header but no data rows.")
		return b.String()
	}

	sample := table.NewWriter()
	header := make(table.Row, len(head.Columns))
	for i, col := range head.Columns {
		header[i] = col
	}
	sample.AppendHeader(header)
	for _, row := range head.Rows {
		cells := make(table.Row, len(row))
		for i, v := range row {
			cells[i] = v.String()
		}
		sample.AppendRow(cells)
	}
	fmt.Fprintf(&b, "\nFirst %d rows:\n", head.NumRows())
	b.WriteString(sample.RenderMarkdown())
	return b.String()
}

func summarize(profile profiling.ColumnProfile) string {
	if s := profile.Numeric; s != nil {
		outliers := fmt.Sprintf("%d outliers", s.Outliers)
		if s.Outliers == 1 {
			outliers = "1 outlier"
		}
		return fmt.Sprintf("min %s, max %s, mean %s, median %s, std %s, q1 %s, q3 %s, skew %s, %s",
			formatNumber(s.Min), formatNumber(s.Max), formatNumber(s.Mean), formatNumber(s.Median),
			formatNumber(s.StdDev), formatNumber(s.Q25), formatNumber(s.Q75), formatNumber(s.Skewness), outliers)
	}
	if len(profile.TopValues) > 0 {
		quoted := make([]string, len(profile.TopValues))
		for i, v := range profile.TopValues {
			quoted[i] = strconv.Quote(v)
		}
		return "top: " + strings.Join(quoted, ", ")
	}
	return ""
}

func formatNumber(f float64) string {
	return strconv.FormatFloat(f, 'g', 6, 64)
}
