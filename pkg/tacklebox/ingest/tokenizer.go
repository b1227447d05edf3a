package ingest

import "strings"

// delimiters in priority order. The first one present in a line wins;
// the choice is made once per line, never per field.
var delimiters = []string{"|", "\t", ","}

// Tokenize splits a line into ordered fields. If the line contains a pipe
// it splits on pipe; else if it contains a tab it splits on tab; else it
// splits on comma. Each field is trimmed. There is no escaping mechanism:
// a delimiter character cannot appear inside a field value.
func Tokenize(text string) []string {
	delim := delimiters[len(delimiters)-1]
	for _, d := range delimiters {
		if strings.Contains(text, d) {
			delim = d
			break
		}
	}

	parts := strings.Split(text, delim)
	for i := range parts {
		parts[i] = strings.TrimSpace(parts[i])
	}
	return parts
}
