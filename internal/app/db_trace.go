package app

import (
	"regexp"
	"strings"
)

const maxTracedQueryLength = 512

var (
	sqlLineCommentRegex  = regexp.MustCompile(`--[^\n]*`)
	queryWhitespaceRegex = regexp.MustCompile(`\s+`)
)

// formatDBQueryForTrace collapses a query onto one line for the db.statement
// span attribute. Line comments are dropped and long statements truncated.
func formatDBQueryForTrace(query string) string {
	query = sqlLineCommentRegex.ReplaceAllString(query, " ")
	query = strings.TrimSpace(queryWhitespaceRegex.ReplaceAllString(query, " "))
	if len(query) <= maxTracedQueryLength {
		return query
	}
	return query[:maxTracedQueryLength] + "..."
}
