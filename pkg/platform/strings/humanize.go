// Package strings holds small string utilities shared across the gateway.
package strings

import "strings"

// HumanizeEnum turns a SCREAMING_SNAKE enumeration value into display text:
// underscores become spaces, the value is lowercased, and the first letter of
// each whitespace-delimited word is capitalized. "IN_TRANSIT" → "In Transit".
func HumanizeEnum(raw string) string {
	words := strings.Fields(strings.ToLower(strings.ReplaceAll(raw, "_", " ")))
	for i, w := range words {
		words[i] = strings.ToUpper(w[:1]) + w[1:]
	}
	return strings.Join(words, " ")
}
