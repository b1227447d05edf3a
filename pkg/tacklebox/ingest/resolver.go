package ingest

import "strings"

// Ref is one record of a reference collection, loaded read-only to resolve
// name-based cross-references.
type Ref struct {
	ID    string
	Name  string
	Brand string
	Model string
}

// KeyIndex maps matchable keys to record ids.
type KeyIndex map[string]string

// MatchKey derives the lookup key for a display name: lowercased with runs
// of whitespace collapsed to single spaces.
func MatchKey(s string) string {
	return strings.ToLower(strings.Join(strings.Fields(s), " "))
}

// BuildKeyIndex builds the lookup index for a reference collection. The key
// is the record's name; records with a blank name fall back to brand+model.
// Collisions resolve last write wins. The index is built once per batch and
// reused for every line.
func BuildKeyIndex(refs []Ref) KeyIndex {
	ix := make(KeyIndex, len(refs))
	for _, r := range refs {
		name := r.Name
		if name == "" {
			name = strings.TrimSpace(r.Brand + " " + r.Model)
		}
		key := MatchKey(name)
		if key == "" {
			continue
		}
		ix[key] = r.ID
	}
	return ix
}

// Resolve looks a free-text name up by case-insensitive exact match. There
// is no fuzzy or partial matching: a near-miss returns no id and the row is
// marked missing rather than silently dropped.
func (ix KeyIndex) Resolve(name string) (string, bool) {
	id, ok := ix[MatchKey(name)]
	return id, ok
}
