package config

import (
	"testing"

	"github.com/anglerlog/tacklebox/pkg/tacklebox/ingest"
)

const fliesSchema = `
surfaces:
  - surface: flies
    category: fly
    compose_from: [brand, pattern]
    fields:
      - name: brand
        kind: requiredString
      - name: pattern
        kind: requiredString
      - name: status
        kind: status
      - name: style
        kind: enumString
        allowed: [dry, nymph, streamer]
        default: dry
      - name: hook_size
        kind: optionalNumber
`

func TestLoadSchemas(t *testing.T) {
	path := writeFile(t, "schemas.yaml", fliesSchema)

	schemas, err := LoadSchemas(path)
	if err != nil {
		t.Fatalf("LoadSchemas: %v", err)
	}
	if len(schemas) != 1 {
		t.Fatalf("got %d schemas, want 1", len(schemas))
	}

	s := schemas[0]
	if s.Surface != "flies" || s.Category != "fly" {
		t.Errorf("schema header = %+v", s)
	}
	if len(s.Fields) != 5 {
		t.Fatalf("got %d fields, want 5", len(s.Fields))
	}
	if s.Fields[3].Kind != ingest.KindEnum || s.Fields[3].Default != "dry" {
		t.Errorf("enum field = %+v", s.Fields[3])
	}

	// A loaded surface drives the pipeline like a builtin.
	res := ingest.ComputePreview("Orvis | Parachute Adams | owned | dry | 14", s, nil)
	if !res.InsertEligible {
		t.Fatalf("preview not eligible: %q %v", res.Reason, res.Errors)
	}
	if res.Rows[0].Name != "Orvis Parachute Adams" {
		t.Errorf("name = %q", res.Rows[0].Name)
	}
	if res.Rows[0].Numbers["hook_size"] != 14 {
		t.Errorf("hook_size = %v", res.Rows[0].Numbers["hook_size"])
	}
}

func TestLoadSchemasRejectsInvalid(t *testing.T) {
	path := writeFile(t, "schemas.yaml", `
surfaces:
  - surface: broken
    fields:
      - name: only_one
        kind: requiredString
`)
	if _, err := LoadSchemas(path); err == nil {
		t.Error("one-field surface should be rejected")
	}
}

func TestLoaderMergesBuiltins(t *testing.T) {
	path := writeFile(t, "schemas.yaml", fliesSchema)
	l := &Loader{SchemasPath: path}

	schemas, err := l.Load()
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	for _, want := range []string{"reels", "rods", "lures", "combos", "flies"} {
		if _, ok := schemas[want]; !ok {
			t.Errorf("surface %q missing", want)
		}
	}
}

func TestLoaderNoFile(t *testing.T) {
	schemas, err := (&Loader{}).Load()
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if len(schemas) != len(ingest.BuiltinSchemas()) {
		t.Errorf("got %d schemas, want builtins only", len(schemas))
	}
}
