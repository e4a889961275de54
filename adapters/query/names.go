package query

import (
	"fmt"
	"strings"
	"unicode"
)

// tableNames maps sheet names to unique SQL-safe identifiers, in order
func tableNames(sheets []string) []string {
	names := make([]string, len(sheets))
	used := make(map[string]bool, len(sheets))
	for i, sheet := range sheets {
		base := sanitizeIdentifier(sheet)
		name := base
		for n := 2; used[strings.ToLower(name)]; n++ {
			name = fmt.Sprintf("%s_%d", base, n)
		}
		used[strings.ToLower(name)] = true
		names[i] = name
	}
	return names
}

// columnIdentifiers quotes column names, suffixing names that only differ
// by case since SQLite identifiers are case-insensitive
func columnIdentifiers(columns []string) []string {
	idents := make([]string, len(columns))
	used := make(map[string]bool, len(columns))
	for i, col := range columns {
		name := col
		for n := 2; used[strings.ToLower(name)]; n++ {
			name = fmt.Sprintf("%s_%d", col, n)
		}
		used[strings.ToLower(name)] = true
		idents[i] = quoteIdentifier(name)
	}
	return idents
}

// sanitizeIdentifier keeps letters, digits and underscores. Names that
// would be empty, start with a digit or collide with sqlite's internal
// prefix get a "t_" prefix.
func sanitizeIdentifier(s string) string {
	var b strings.Builder
	lastUnderscore := false
	for _, r := range strings.TrimSpace(s) {
		if unicode.IsLetter(r) || unicode.IsDigit(r) || r == '_' {
			b.WriteRune(r)
			lastUnderscore = r == '_'
			continue
		}
		if !lastUnderscore {
			b.WriteByte('_')
			lastUnderscore = true
		}
	}
	name := strings.Trim(b.String(), "_")
	if name == "" || unicode.IsDigit([]rune(name)[0]) || strings.HasPrefix(strings.ToLower(name), "sqlite_") {
		name = "t_" + name
	}
	return name
}

// quoteIdentifier renders a double-quoted SQL identifier
func quoteIdentifier(s string) string {
	return `"` + strings.ReplaceAll(s, `"`, `""`) + `"`
}
