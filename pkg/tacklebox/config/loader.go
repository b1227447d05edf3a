package config

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"

	"github.com/anglerlog/tacklebox/pkg/tacklebox/ingest"
)

// SchemaFile is the YAML layout for extra ingestion surfaces.
type SchemaFile struct {
	Surfaces []SurfaceDef `yaml:"surfaces"`
}

// SurfaceDef declares one ingestion surface in YAML.
type SurfaceDef struct {
	Surface     string     `yaml:"surface"`
	Category    string     `yaml:"category"`
	ComposeFrom []string   `yaml:"compose_from"`
	Fields      []FieldDef `yaml:"fields"`
}

// FieldDef declares one positional field in YAML.
type FieldDef struct {
	Name    string   `yaml:"name"`
	Kind    string   `yaml:"kind"`
	Allowed []string `yaml:"allowed"`
	Default string   `yaml:"default"`
	Ref     string   `yaml:"ref"`
}

// LoadSchemas loads surface definitions from a YAML file.
func LoadSchemas(path string) ([]ingest.Schema, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}

	var file SchemaFile
	if err := yaml.Unmarshal(data, &file); err != nil {
		return nil, err
	}

	schemas := make([]ingest.Schema, 0, len(file.Surfaces))
	for _, def := range file.Surfaces {
		s := ingest.Schema{
			Surface:     def.Surface,
			Category:    def.Category,
			ComposeFrom: def.ComposeFrom,
		}
		for _, f := range def.Fields {
			s.Fields = append(s.Fields, ingest.Field{
				Name:    f.Name,
				Kind:    ingest.Kind(f.Kind),
				Allowed: f.Allowed,
				Default: f.Default,
				Ref:     f.Ref,
			})
		}
		if err := s.Validate(); err != nil {
			return nil, fmt.Errorf("load schemas: %w", err)
		}
		schemas = append(schemas, s)
	}
	return schemas, nil
}

// Loader assembles the surface set: builtins plus any file-defined surfaces.
// A file surface with a builtin's name overrides the builtin.
type Loader struct {
	SchemasPath string
}

// Load returns the surface schemas keyed by surface name.
func (l *Loader) Load() (map[string]ingest.Schema, error) {
	schemas := ingest.BuiltinSchemas()

	if l.SchemasPath != "" {
		extra, err := LoadSchemas(l.SchemasPath)
		if err != nil {
			return nil, err
		}
		for _, s := range extra {
			schemas[s.Surface] = s
		}
	}
	return schemas, nil
}
