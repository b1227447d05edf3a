package ingest

import "testing"

func TestSplitLinesDropsBlanksAndComments(t *testing.T) {
	raw := "first\n\n   \n# a comment\nsecond\n"
	lines := SplitLines(raw)

	if len(lines) != 2 {
		t.Fatalf("SplitLines produced %d lines, want 2: %v", len(lines), lines)
	}
	if lines[0].Text != "first" || lines[1].Text != "second" {
		t.Errorf("unexpected line texts: %v", lines)
	}
}

func TestSplitLinesNumbersAgainstOriginalInput(t *testing.T) {
	// Blank and comment lines consume a line number so errors map back to
	// what the user sees in the editor.
	raw := "first\n\n# skip me\nfourth"
	lines := SplitLines(raw)

	if len(lines) != 2 {
		t.Fatalf("SplitLines produced %d lines, want 2", len(lines))
	}
	if lines[0].Number != 1 {
		t.Errorf("first line numbered %d, want 1", lines[0].Number)
	}
	if lines[1].Number != 4 {
		t.Errorf("fourth line numbered %d, want 4", lines[1].Number)
	}
}

func TestSplitLinesCRLF(t *testing.T) {
	lines := SplitLines("one\r\ntwo\r\n")
	if len(lines) != 2 || lines[0].Text != "one" || lines[1].Text != "two" {
		t.Errorf("CRLF input mishandled: %v", lines)
	}
}

func TestSplitLinesTrimsEachLine(t *testing.T) {
	lines := SplitLines("  padded  ")
	if len(lines) != 1 || lines[0].Text != "padded" {
		t.Errorf("expected one trimmed line, got %v", lines)
	}
}

func TestSplitLinesCommentAfterIndent(t *testing.T) {
	lines := SplitLines("   # indented comment\nreal")
	if len(lines) != 1 || lines[0].Text != "real" {
		t.Errorf("indented comment should be dropped, got %v", lines)
	}
}

func TestSplitLinesEmptyInput(t *testing.T) {
	if lines := SplitLines(""); len(lines) != 0 {
		t.Errorf("empty input should produce no lines, got %v", lines)
	}
}
