package answer

import (
	"encoding/json"
	"fmt"
	"math"
	"sort"
	"strconv"
)

// Kind is the rendering shape of a result
type Kind string

const (
	KindTable      Kind = "table"
	KindCollection Kind = "collection"
	KindText       Kind = "text"
)

// Table is a tabular result with ordered columns
type Table struct {
	Columns []string `json:"columns"`
	Rows    [][]any  `json:"rows"`
}

// Result is what a question produced
type Result struct {
	Kind       Kind   `json:"kind"`
	Table      *Table `json:"table,omitempty"`
	Collection any    `json:"collection,omitempty"`
	Text       string `json:"text,omitempty"`

	// Query is the engine program that produced the value, if any
	Query string `json:"query,omitempty"`
	// Explanation is the model's note on how it answered
	Explanation string `json:"explanation,omitempty"`
	// Truncated is set when the engine produced more rows than are kept
	Truncated bool `json:"truncated,omitempty"`
}

// FromTable wraps an engine table. A 1x1 table collapses to its scalar.
func FromTable(t *Table) *Result {
	if t != nil && len(t.Columns) == 1 && len(t.Rows) == 1 && len(t.Rows[0]) == 1 {
		return Classify(t.Rows[0][0])
	}
	return &Result{Kind: KindTable, Table: t}
}

// FromText wraps a plain text answer
func FromText(s string) *Result {
	return &Result{Kind: KindText, Text: s}
}

// Classify picks the rendering shape from the runtime type of v: a list
// of objects is a table, any other list or mapping is a collection and
// everything else is text.
func Classify(v any) *Result {
	switch val := v.(type) {
	case *Table:
		return FromTable(val)
	case []any:
		if t, ok := recordsToTable(val); ok {
			return &Result{Kind: KindTable, Table: t}
		}
		return &Result{Kind: KindCollection, Collection: val}
	case []map[string]any:
		items := make([]any, len(val))
		for i := range val {
			items[i] = val[i]
		}
		return Classify(items)
	case map[string]any:
		return &Result{Kind: KindCollection, Collection: val}
	default:
		return FromText(FormatScalar(val))
	}
}

// recordsToTable turns a non-empty list of objects into a table whose
// columns follow first-seen key order, sorted within each object.
func recordsToTable(items []any) (*Table, bool) {
	if len(items) == 0 {
		return nil, false
	}
	var columns []string
	seen := make(map[string]bool)
	for _, item := range items {
		rec, ok := item.(map[string]any)
		if !ok {
			return nil, false
		}
		keys := make([]string, 0, len(rec))
		for k := range rec {
			keys = append(keys, k)
		}
		sort.Strings(keys)
		for _, k := range keys {
			if !seen[k] {
				seen[k] = true
				columns = append(columns, k)
			}
		}
	}

	rows := make([][]any, 0, len(items))
	for _, item := range items {
		rec := item.(map[string]any)
		row := make([]any, len(columns))
		for i, col := range columns {
			row[i] = rec[col]
		}
		rows = append(rows, row)
	}
	return &Table{Columns: columns, Rows: rows}, true
}

// FormatScalar renders a primitive value for display
func FormatScalar(v any) string {
	switch val := v.(type) {
	case nil:
		return ""
	case string:
		return val
	case float64:
		if math.Trunc(val) == val && math.Abs(val) < 1e15 {
			return strconv.FormatInt(int64(val), 10)
		}
		return strconv.FormatFloat(val, 'f', -1, 64)
	case float32:
		return FormatScalar(float64(val))
	case int64:
		return strconv.FormatInt(val, 10)
	case int:
		return strconv.Itoa(val)
	case bool:
		return strconv.FormatBool(val)
	case []byte:
		return string(val)
	case fmt.Stringer:
		return val.String()
	default:
		raw, err := json.Marshal(val)
		if err != nil {
			return fmt.Sprintf("%v", val)
		}
		return string(raw)
	}
}

// PrettyJSON renders a collection result
func (r *Result) PrettyJSON() string {
	raw, err := json.MarshalIndent(r.Collection, "", "  ")
	if err != nil {
		return fmt.Sprintf("%v", r.Collection)
	}
	return string(raw)
}
