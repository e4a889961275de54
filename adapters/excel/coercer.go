package excel

import (
	"math"
	"strconv"
	"strings"
	"time"

	"sheetqa/domain/workbook"
)

// TypeCoercer converts the text form of a cell into a typed value
type TypeCoercer struct {
	config CoercionConfig
}

// CoercionConfig defines the column kind thresholds
type CoercionConfig struct {
	NumericThreshold   float64 `json:"numeric_threshold"`   // share of non-missing cells that must be numbers
	BooleanThreshold   float64 `json:"boolean_threshold"`   // share that must be booleans
	TimestampThreshold float64 `json:"timestamp_threshold"` // share that must be timestamps
}

// DefaultCoercionConfig returns sensible defaults
func DefaultCoercionConfig() CoercionConfig {
	return CoercionConfig{
		NumericThreshold:   0.8,
		BooleanThreshold:   0.9,
		TimestampThreshold: 0.8,
	}
}

// NewTypeCoercer creates a coercer with the given config
func NewTypeCoercer(config CoercionConfig) *TypeCoercer {
	return &TypeCoercer{config: config}
}

// Layouts tried for timestamp cells, in order. Includes the default
// formats excelize renders date cells with.
var timestampLayouts = []string{
	time.RFC3339,
	"2006-01-02T15:04:05",
	"2006-01-02 15:04:05",
	"2006-01-02",
	"2006/01/02",
	"01/02/2006",
	"1/2/2006",
	"01-02-06",
	"1/2/06 15:04",
	"02-Jan-2006",
	"2-Jan-06",
}

// CoerceCell converts raw cell text into a typed value
func (c *TypeCoercer) CoerceCell(raw string) workbook.Value {
	s := strings.TrimSpace(raw)
	if s == "" {
		return workbook.NewMissingValue()
	}
	if v, ok := c.tryParseNumeric(s); ok {
		return v
	}
	if v, ok := c.tryParseBoolean(s); ok {
		return v
	}
	if v, ok := c.tryParseTimestamp(s); ok {
		return v
	}
	return workbook.NewStringValue(s)
}

// ColumnType picks the dominant type of a column. Columns with no
// non-missing cell are ValueTypeMissing.
func (c *TypeCoercer) ColumnType(values []workbook.Value) workbook.ValueType {
	var valid, numeric, boolean, timestamp int
	for _, v := range values {
		switch v.Type {
		case workbook.ValueTypeNumeric:
			numeric++
		case workbook.ValueTypeBoolean:
			boolean++
		case workbook.ValueTypeTimestamp:
			timestamp++
		case workbook.ValueTypeString:
		default:
			continue
		}
		valid++
	}
	if valid == 0 {
		return workbook.ValueTypeMissing
	}

	n := float64(valid)
	switch {
	case float64(numeric)/n >= c.config.NumericThreshold:
		return workbook.ValueTypeNumeric
	case float64(boolean)/n >= c.config.BooleanThreshold:
		return workbook.ValueTypeBoolean
	case float64(timestamp)/n >= c.config.TimestampThreshold:
		return workbook.ValueTypeTimestamp
	}
	return workbook.ValueTypeString
}

// tryParseNumeric accepts plain numbers plus currency symbols, percent
// signs, thousands separators and parenthesized negatives.
func (c *TypeCoercer) tryParseNumeric(s string) (workbook.Value, bool) {
	clean := s

	isNegative := false
	if strings.HasPrefix(clean, "(") && strings.HasSuffix(clean, ")") {
		clean = strings.TrimSuffix(strings.TrimPrefix(clean, "("), ")")
		isNegative = true
	}

	for _, symbol := range []string{"$", "€", "£", "¥", "￥"} {
		clean = strings.ReplaceAll(clean, symbol, "")
	}

	isPercent := false
	if strings.HasSuffix(clean, "%") {
		clean = strings.TrimSuffix(clean, "%")
		isPercent = true
	}

	clean = strings.TrimSpace(clean)
	if clean == "" {
		return workbook.Value{}, false
	}

	// Thousands separators only count when they sit in groups of three.
	if strings.Contains(clean, ",") {
		intPart := clean
		if idx := strings.Index(clean, "."); idx >= 0 {
			intPart = clean[:idx]
		}
		groups := strings.Split(strings.TrimLeft(intPart, "+-"), ",")
		for i, g := range groups {
			if (i == 0 && (len(g) == 0 || len(g) > 3)) || (i > 0 && len(g) != 3) {
				return workbook.Value{}, false
			}
		}
		clean = strings.ReplaceAll(clean, ",", "")
	}

	val, err := strconv.ParseFloat(clean, 64)
	if err != nil || math.IsInf(val, 0) || math.IsNaN(val) {
		return workbook.Value{}, false
	}
	if isNegative {
		val = -val
	}
	if isPercent {
		val = val / 100
	}
	return workbook.NewNumericValue(val), true
}

func (c *TypeCoercer) tryParseBoolean(s string) (workbook.Value, bool) {
	switch strings.ToLower(s) {
	case "true":
		return workbook.NewBooleanValue(true), true
	case "false":
		return workbook.NewBooleanValue(false), true
	}
	return workbook.Value{}, false
}

func (c *TypeCoercer) tryParseTimestamp(s string) (workbook.Value, bool) {
	for _, layout := range timestampLayouts {
		if t, err := time.Parse(layout, s); err == nil {
			return workbook.NewTimestampValue(t), true
		}
	}
	return workbook.Value{}, false
}
