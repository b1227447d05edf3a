package ingest

// DefaultErrorLimit bounds how many parse errors are shown at once; the
// remainder is reported as a count so long error lists never truncate
// silently.
const DefaultErrorLimit = 20

// PreviewRow is one normalized record plus, on resolving surfaces, the
// resolved foreign ids and a per-row match flag.
type PreviewRow struct {
	Record
	Refs    map[string]string
	Missing bool
}

// PreviewResult is the full recomputed state of one paste: every valid row,
// every parse error, and whether the batch may be committed. It is a pure
// function of the raw text plus the loaded reference collections and is
// rebuilt from scratch on every relevant input change.
type PreviewResult struct {
	Rows           []PreviewRow
	Errors         []ParseError
	Missing        int
	InsertEligible bool
	Reason         string
}

// VisibleErrors returns at most limit errors plus the count of those hidden.
// A limit <= 0 falls back to DefaultErrorLimit.
func (p PreviewResult) VisibleErrors(limit int) ([]ParseError, int) {
	if limit <= 0 {
		limit = DefaultErrorLimit
	}
	if len(p.Errors) <= limit {
		return p.Errors, 0
	}
	return p.Errors[:limit], len(p.Errors) - limit
}

// ComputePreview runs the whole pipeline over raw pasted text: split,
// tokenize, normalize, and, where the schema declares reference fields,
// resolve against the given reference collections (keyed by collection
// name). Parse errors accumulate; they never stop later lines.
func ComputePreview(raw string, s Schema, refs map[string][]Ref) PreviewResult {
	indices := make(map[string]KeyIndex)
	for _, name := range s.RefNames() {
		indices[name] = BuildKeyIndex(refs[name])
	}

	var res PreviewResult
	for _, line := range SplitLines(raw) {
		rec, perr := Normalize(line.Number, Tokenize(line.Text), s)
		if perr != nil {
			res.Errors = append(res.Errors, *perr)
			continue
		}

		row := PreviewRow{Record: rec}
		for _, f := range s.Fields {
			if f.Kind != KindReference {
				continue
			}
			if row.Refs == nil {
				row.Refs = make(map[string]string)
			}
			id, ok := indices[f.Ref].Resolve(rec.Strings[f.Name])
			row.Refs[f.Name] = id
			if !ok {
				row.Missing = true
			}
		}
		if row.Missing {
			res.Missing++
		}
		res.Rows = append(res.Rows, row)
	}

	switch {
	case len(res.Errors) > 0:
		res.Reason = "parse errors present"
	case len(res.Rows) == 0:
		res.Reason = "no valid rows"
	case res.Missing > 0:
		res.Reason = "unresolved references"
	default:
		res.InsertEligible = true
	}
	return res
}
