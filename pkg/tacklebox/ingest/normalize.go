package ingest

import (
	"fmt"
	"math"
	"strconv"
	"strings"
)

// Gear statuses. Anything a user types that isn't a recognized wishlist
// synonym normalizes to owned.
const (
	StatusOwned    = "owned"
	StatusWishlist = "wishlist"
)

// ParseError is a per-line failure. Errors are accumulated across the batch;
// a bad line never stops processing of subsequent lines.
type ParseError struct {
	Line    int
	Field   string
	Message string
}

func (e ParseError) String() string {
	if e.Field == "" {
		return fmt.Sprintf("line %d: %s", e.Line, e.Message)
	}
	return fmt.Sprintf("line %d: %s: %s", e.Line, e.Field, e.Message)
}

// Record is the typed, cleaned representation of one input line. Strings
// holds schema string fields by name (empty values omitted); Numbers holds
// the numeric fields that parsed.
type Record struct {
	Line    int
	Name    string
	Status  string
	Strings map[string]string
	Numbers map[string]float64
}

// Normalize turns a tokenized line into a Record according to the schema.
// The first failure wins: a line yields either one Record or one ParseError.
func Normalize(lineNo int, tokens []string, s Schema) (Record, *ParseError) {
	if len(tokens) < 2 {
		return Record{}, &ParseError{Line: lineNo, Message: "needs at least two fields"}
	}

	rec := Record{
		Line:    lineNo,
		Status:  StatusOwned,
		Strings: make(map[string]string),
		Numbers: make(map[string]float64),
	}

	var explicitName string
	for i, f := range s.Fields {
		var tok string
		if i < len(tokens) {
			tok = tokens[i]
		}

		switch f.Kind {
		case KindRequiredString, KindReference:
			if tok == "" {
				return Record{}, &ParseError{Line: lineNo, Field: f.Name, Message: "required"}
			}
			rec.Strings[f.Name] = tok
		case KindOptionalString:
			if tok != "" {
				rec.Strings[f.Name] = tok
			}
		case KindStatus:
			rec.Status = NormalizeStatus(tok)
		case KindEnum:
			rec.Strings[f.Name] = normalizeEnum(tok, f.Allowed, f.Default)
		case KindOptionalNumber:
			if v, ok := parseOptionalNumber(tok); ok {
				rec.Numbers[f.Name] = v
			}
		case KindComposedName:
			explicitName = tok
		}
	}

	rec.Name = explicitName
	if rec.Name == "" {
		rec.Name = composeName(rec, s.ComposeFrom)
	}
	if rec.Name == "" {
		return Record{}, &ParseError{Line: lineNo, Field: "name", Message: "empty after composing"}
	}

	return rec, nil
}

// NormalizeStatus maps status synonyms case-insensitively. Unrecognized
// input defaults to owned.
func NormalizeStatus(s string) string {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "wishlist", "wish list", "wish", "planned":
		return StatusWishlist
	default:
		return StatusOwned
	}
}

// normalizeEnum lowercases the token and falls back to the field default
// when the value isn't in the allowed set. Enum typos never block a batch.
func normalizeEnum(tok string, allowed []string, def string) string {
	v := strings.ToLower(strings.TrimSpace(tok))
	for _, a := range allowed {
		if v == a {
			return v
		}
	}
	return def
}

// parseOptionalNumber parses an optional numeric field. Empty or malformed
// input yields no value; the leniency is deliberate so that bad numbers in
// a paste never block the whole batch.
func parseOptionalNumber(tok string) (float64, bool) {
	if tok == "" {
		return 0, false
	}
	v, err := strconv.ParseFloat(tok, 64)
	if err != nil || math.IsInf(v, 0) || math.IsNaN(v) {
		return 0, false
	}
	return v, true
}

// composeName joins the named string fields with single spaces, skipping
// empty parts.
func composeName(rec Record, from []string) string {
	var parts []string
	for _, name := range from {
		if v := rec.Strings[name]; v != "" {
			parts = append(parts, v)
		}
	}
	return strings.Join(parts, " ")
}
