package ingest

import (
	"fmt"

	"github.com/anglerlog/tacklebox/pkg/tacklebox/internalerr"
)

// Kind describes how a schema field coerces its token.
type Kind string

const (
	// KindRequiredString rejects the row when the token is empty.
	KindRequiredString Kind = "requiredString"
	// KindOptionalString stores the trimmed token as-is, empty allowed.
	KindOptionalString Kind = "optionalString"
	// KindEnum lowercases the token and checks it against an allowed set;
	// unrecognized values fall back to the field default rather than erroring.
	KindEnum Kind = "enumString"
	// KindOptionalNumber parses the token as a number; empty or malformed
	// input yields no value and never blocks the batch.
	KindOptionalNumber Kind = "optionalNumber"
	// KindStatus maps owned/wishlist synonyms, defaulting to owned.
	KindStatus Kind = "status"
	// KindComposedName is an explicit display name; when blank the name is
	// composed from the schema's ComposeFrom fields instead.
	KindComposedName Kind = "composedName"
	// KindReference is a free-text name resolved against a reference
	// collection by case-insensitive exact match.
	KindReference Kind = "reference"
)

// Field declares one positional field of an ingestion surface.
type Field struct {
	Name    string
	Kind    Kind
	Allowed []string // KindEnum only
	Default string   // KindEnum fallback
	Ref     string   // KindReference: gear category of the reference collection
}

// Schema binds the pipeline to one ingestion surface: an ordered field
// layout plus the fixed discriminator stamped on committed records.
type Schema struct {
	Surface     string
	Category    string
	Fields      []Field
	ComposeFrom []string
}

// RefNames returns the reference collections this surface resolves against,
// in field order. Empty for plain gear surfaces.
func (s Schema) RefNames() []string {
	var names []string
	for _, f := range s.Fields {
		if f.Kind == KindReference && f.Ref != "" {
			names = append(names, f.Ref)
		}
	}
	return names
}

// Validate checks that a schema is usable by the pipeline.
func (s Schema) Validate() error {
	if s.Surface == "" {
		return fmt.Errorf("%w: surface name required", internalerr.ErrInvalidSchema)
	}
	if len(s.Fields) < 2 {
		return fmt.Errorf("%w: surface %q needs at least two fields", internalerr.ErrInvalidSchema, s.Surface)
	}
	seen := make(map[string]struct{}, len(s.Fields))
	for _, f := range s.Fields {
		if f.Name == "" {
			return fmt.Errorf("%w: surface %q has an unnamed field", internalerr.ErrInvalidSchema, s.Surface)
		}
		if _, dup := seen[f.Name]; dup {
			return fmt.Errorf("%w: surface %q declares field %q twice", internalerr.ErrInvalidSchema, s.Surface, f.Name)
		}
		seen[f.Name] = struct{}{}
		switch f.Kind {
		case KindRequiredString, KindOptionalString, KindOptionalNumber, KindStatus, KindComposedName:
		case KindEnum:
			if len(f.Allowed) == 0 {
				return fmt.Errorf("%w: enum field %q has no allowed values", internalerr.ErrInvalidSchema, f.Name)
			}
		case KindReference:
			if f.Ref == "" {
				return fmt.Errorf("%w: reference field %q names no collection", internalerr.ErrInvalidSchema, f.Name)
			}
		default:
			return fmt.Errorf("%w: field %q has unknown kind %q", internalerr.ErrInvalidSchema, f.Name, f.Kind)
		}
	}
	for _, name := range s.ComposeFrom {
		if _, ok := seen[name]; !ok {
			return fmt.Errorf("%w: compose_from names unknown field %q", internalerr.ErrInvalidSchema, name)
		}
	}
	return nil
}

// ReelSchema is the builtin reel bulk-add surface:
// Brand | Model | Status | Type | Hand | Ratio | IPT | WeightOz | DragLb |
// Bearings | LineCap | Brake | Notes | Storage.
func ReelSchema() Schema {
	return Schema{
		Surface:  "reels",
		Category: "reel",
		Fields: []Field{
			{Name: "brand", Kind: KindRequiredString},
			{Name: "model", Kind: KindRequiredString},
			{Name: "status", Kind: KindStatus},
			{Name: "reel_type", Kind: KindEnum, Allowed: []string{"baitcaster", "spinning", "conventional", "fly"}, Default: "baitcaster"},
			{Name: "reel_hand", Kind: KindEnum, Allowed: []string{"right", "left"}, Default: "right"},
			{Name: "gear_ratio", Kind: KindOptionalString},
			{Name: "ipt", Kind: KindOptionalNumber},
			{Name: "weight", Kind: KindOptionalNumber},
			{Name: "max_drag", Kind: KindOptionalNumber},
			{Name: "bearings", Kind: KindOptionalString},
			{Name: "line_capacity", Kind: KindOptionalString},
			{Name: "brake_system", Kind: KindOptionalString},
			{Name: "notes", Kind: KindOptionalString},
			{Name: "storage_note", Kind: KindOptionalString},
		},
		ComposeFrom: []string{"brand", "model"},
	}
}

// RodSchema is the builtin rod bulk-add surface:
// Brand | Model | Status | Length | Power | Action | LineRating | LureRating |
// Pieces | Notes | Storage.
func RodSchema() Schema {
	return Schema{
		Surface:  "rods",
		Category: "rod",
		Fields: []Field{
			{Name: "brand", Kind: KindRequiredString},
			{Name: "model", Kind: KindRequiredString},
			{Name: "status", Kind: KindStatus},
			{Name: "length", Kind: KindOptionalString},
			{Name: "power", Kind: KindEnum, Allowed: []string{"ultralight", "light", "medium-light", "medium", "medium-heavy", "heavy", "extra-heavy"}, Default: "medium"},
			{Name: "action", Kind: KindEnum, Allowed: []string{"slow", "moderate", "moderate-fast", "fast", "extra-fast"}, Default: "fast"},
			{Name: "line_rating", Kind: KindOptionalString},
			{Name: "lure_rating", Kind: KindOptionalString},
			{Name: "pieces", Kind: KindOptionalNumber},
			{Name: "notes", Kind: KindOptionalString},
			{Name: "storage_note", Kind: KindOptionalString},
		},
		ComposeFrom: []string{"brand", "model"},
	}
}

// LureSchema is the builtin lure bulk-add surface:
// Brand | Name | Status | Kind | Color | WeightOz | Depth | Qty | Notes.
func LureSchema() Schema {
	return Schema{
		Surface:  "lures",
		Category: "lure",
		Fields: []Field{
			{Name: "brand", Kind: KindRequiredString},
			{Name: "name", Kind: KindComposedName},
			{Name: "status", Kind: KindStatus},
			{Name: "lure_kind", Kind: KindOptionalString},
			{Name: "color", Kind: KindOptionalString},
			{Name: "weight", Kind: KindOptionalNumber},
			{Name: "depth", Kind: KindOptionalString},
			{Name: "quantity", Kind: KindOptionalNumber},
			{Name: "notes", Kind: KindOptionalString},
		},
		ComposeFrom: []string{"brand", "name"},
	}
}

// ComboSchema is the builtin combo pairing surface:
// Rod | Reel | Name | Notes. Rod and reel names are resolved against the
// user's existing rods and reels.
func ComboSchema() Schema {
	return Schema{
		Surface:  "combos",
		Category: "combo",
		Fields: []Field{
			{Name: "rod", Kind: KindReference, Ref: "rod"},
			{Name: "reel", Kind: KindReference, Ref: "reel"},
			{Name: "name", Kind: KindComposedName},
			{Name: "notes", Kind: KindOptionalString},
		},
		ComposeFrom: []string{"rod", "reel"},
	}
}

// BuiltinSchemas returns the surfaces compiled into the binary, keyed by
// surface name.
func BuiltinSchemas() map[string]Schema {
	out := make(map[string]Schema)
	for _, s := range []Schema{ReelSchema(), RodSchema(), LureSchema(), ComboSchema()} {
		out[s.Surface] = s
	}
	return out
}
