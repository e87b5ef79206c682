package judge

import (
	"errors"
	"regexp"
	"strings"
)

// prepareSelectionSolution drops surrounding whitespace, trailing comments and
// trailing semicolons.
func prepareSelectionSolution(query string) string {
	for {
		query = strings.TrimSpace(trimTrailingComments(query))
		if !strings.HasSuffix(query, ";") {
			return query
		}
		query = strings.TrimSuffix(query, ";")
	}
}

var (
	errEmptySolution      = errors.New("solution is empty")
	errNotSelection       = errors.New("only SELECT queries are allowed")
	errMultipleStatements = errors.New("only a single statement is allowed")
)

var leadingKeyword = regexp.MustCompile(`^[A-Za-z]+`)

// checkSelection rejects anything other than a single SELECT (or WITH ...
// SELECT) statement. query must already be prepared.
func checkSelection(query string) error {
	body := stripComments(query)
	if strings.TrimSpace(body) == "" {
		return errEmptySolution
	}
	switch strings.ToUpper(leadingKeyword.FindString(strings.TrimLeft(body, " \t\r\n("))) {
	case "SELECT", "WITH":
	default:
		return errNotSelection
	}
	if strings.Contains(strings.TrimRight(body, " \t\r\n;"), ";") {
		return errMultipleStatements
	}
	return nil
}

// trimTrailingComments cuts query after its last character that is neither
// whitespace nor part of a comment.
func trimTrailingComments(query string) string {
	end := 0
	for i := 0; i < len(query); i++ {
		c := query[i]
		switch {
		case c == '-' && i+1 < len(query) && query[i+1] == '-':
			for i < len(query) && query[i] != '\n' {
				i++
			}
		case c == '/' && i+1 < len(query) && query[i+1] == '*':
			n := strings.Index(query[i+2:], "*/")
			if n < 0 {
				i = len(query)
			} else {
				i += n + 3
			}
		case c == '\'' || c == '"' || c == '`':
			n := strings.IndexByte(query[i+1:], c)
			if n < 0 {
				i = len(query) - 1
			} else {
				i += n + 1
			}
			end = i + 1
		case c != ' ' && c != '\t' && c != '\r' && c != '\n':
			end = i + 1
		}
	}
	return query[:end]
}

// stripComments removes comments and the contents of quoted literals and
// identifiers, leaving the statement's keywords and punctuation.
func stripComments(query string) string {
	var b strings.Builder
	for i := 0; i < len(query); i++ {
		c := query[i]
		switch {
		case c == '-' && i+1 < len(query) && query[i+1] == '-':
			for i < len(query) && query[i] != '\n' {
				i++
			}
			b.WriteByte(' ')
		case c == '/' && i+1 < len(query) && query[i+1] == '*':
			end := strings.Index(query[i+2:], "*/")
			if end < 0 {
				i = len(query)
			} else {
				i += end + 3
			}
			b.WriteByte(' ')
		case c == '\'' || c == '"' || c == '`':
			end := strings.IndexByte(query[i+1:], c)
			if end < 0 {
				i = len(query)
			} else {
				i += end + 1
			}
			b.WriteString("''")
		default:
			b.WriteByte(c)
		}
	}
	return b.String()
}
