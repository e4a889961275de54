package query

import (
	"strings"
	"unicode"

	"sheetqa/internal/errors"
)

// singleStatement checks that program is exactly one read statement and
// returns it without trailing semicolons. Quotes and comments are skipped
// when looking for statement separators.
func singleStatement(program string) (string, error) {
	stmt := strings.TrimSpace(program)
	for strings.HasSuffix(stmt, ";") {
		stmt = strings.TrimSpace(strings.TrimSuffix(stmt, ";"))
	}
	if stmt == "" {
		return "", errors.QueryError("query is empty", nil)
	}

	var quote rune
	inLineComment, inBlockComment := false, false
	runes := []rune(stmt)
	for i := 0; i < len(runes); i++ {
		r := runes[i]
		switch {
		case inLineComment:
			if r == '\n' {
				inLineComment = false
			}
		case inBlockComment:
			if r == '*' && i+1 < len(runes) && runes[i+1] == '/' {
				inBlockComment = false
				i++
			}
		case quote != 0:
			if r == quote {
				quote = 0
			}
		case r == '\'' || r == '"' || r == '`':
			quote = r
		case r == '[':
			quote = ']'
		case r == '-' && i+1 < len(runes) && runes[i+1] == '-':
			inLineComment = true
		case r == '/' && i+1 < len(runes) && runes[i+1] == '*':
			inBlockComment = true
		case r == ';':
			return "", errors.QueryError("only a single statement is allowed", nil)
		}
	}
	if quote != 0 || inBlockComment {
		return "", errors.QueryError("query has an unterminated quote or comment", nil)
	}

	switch strings.ToUpper(firstKeyword(stmt)) {
	case "SELECT", "WITH":
		return stmt, nil
	}
	return "", errors.QueryError("only SELECT or WITH queries are allowed", nil)
}

// firstKeyword returns the first word of s after leading comments
func firstKeyword(s string) string {
	for {
		s = strings.TrimSpace(s)
		switch {
		case strings.HasPrefix(s, "--"):
			idx := strings.IndexByte(s, '\n')
			if idx < 0 {
				return ""
			}
			s = s[idx+1:]
		case strings.HasPrefix(s, "/*"):
			idx := strings.Index(s, "*/")
			if idx < 0 {
				return ""
			}
			s = s[idx+2:]
		case strings.HasPrefix(s, "("):
			s = s[1:]
		default:
			end := strings.IndexFunc(s, func(r rune) bool { return !unicode.IsLetter(r) })
			if end < 0 {
				return s
			}
			return s[:end]
		}
	}
}
