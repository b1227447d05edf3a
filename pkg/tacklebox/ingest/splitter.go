// Package ingest implements the bulk-paste ingestion pipeline: raw pasted
// text is split into lines, tokenized on a priority-ordered delimiter,
// normalized against a per-surface schema, optionally resolved against
// reference collections, and validated into an insert-eligible batch.
package ingest

import "strings"

// Line is a single trimmed, non-empty, non-comment line of pasted input.
// Number is the 1-based position of the line in the ORIGINAL input, before
// blank and comment filtering, so error messages map back to what the user
// sees in their editor.
type Line struct {
	Number int
	Text   string
}

// SplitLines breaks raw pasted text into logical lines. Lines are trimmed;
// lines that are empty after trimming or start with '#' are dropped. CRLF
// and LF inputs are both accepted.
func SplitLines(raw string) []Line {
	if raw == "" {
		return nil
	}

	var lines []Line
	for i, text := range strings.Split(strings.ReplaceAll(raw, "\r\n", "\n"), "\n") {
		text = strings.TrimSpace(text)
		if text == "" || strings.HasPrefix(text, "#") {
			continue
		}
		lines = append(lines, Line{Number: i + 1, Text: text})
	}
	return lines
}
