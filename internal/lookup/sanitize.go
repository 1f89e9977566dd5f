package lookup

import (
	"fmt"
	"strings"
)

// The backend query language quotes string literals with single quotes;
// escaping them is the only thing standing between user input and the filter
// syntax.
func escapeQuotes(s string) string {
	return strings.ReplaceAll(s, "'", `\'`)
}

// sanitizeOrderName strips a single leading "#" marker and escapes quotes.
func sanitizeOrderName(raw string) string {
	name := strings.TrimSpace(raw)
	name = strings.TrimPrefix(name, "#")
	return escapeQuotes(name)
}

// sanitizeEmail trims, lowercases, and escapes quotes.
func sanitizeEmail(raw string) string {
	return escapeQuotes(strings.ToLower(strings.TrimSpace(raw)))
}

// buildQuery composes the backend filter expression. Both values must already
// be sanitized; the expression is used exactly once per request.
func buildQuery(order, email string) string {
	return fmt.Sprintf("email:'%s' AND name:'%s'", sanitizeEmail(email), sanitizeOrderName(order))
}
