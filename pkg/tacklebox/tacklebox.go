// Package tacklebox is the application facade: it binds the ingestion
// pipeline to a record store and an identity provider and exposes the
// preview/commit operations the UI layers call.
package tacklebox

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/anglerlog/tacklebox/pkg/tacklebox/identity"
	"github.com/anglerlog/tacklebox/pkg/tacklebox/ingest"
	"github.com/anglerlog/tacklebox/pkg/tacklebox/internalerr"
	"github.com/anglerlog/tacklebox/pkg/tacklebox/store"
)

// DefaultTimeout bounds store-backed operations.
const DefaultTimeout = 8 * time.Second

// Options configures a Tacklebox instance.
type Options struct {
	Store    store.Store
	Identity identity.Provider
	Schemas  map[string]ingest.Schema // defaults to ingest.BuiltinSchemas
	Timeout  time.Duration            // defaults to DefaultTimeout
}

// Tacklebox is the gear-catalog engine.
type Tacklebox struct {
	store    store.Store
	identity identity.Provider
	schemas  map[string]ingest.Schema
	timeout  time.Duration

	// reference cache: refGen increases on every load so a slow fetch that
	// finishes after a newer one started is discarded, never applied.
	refMu   sync.Mutex
	refGen  uint64
	refFor  string
	refSets map[string][]ingest.Ref
}

// New creates a Tacklebox instance with the given dependencies.
func New(opts Options) *Tacklebox {
	schemas := opts.Schemas
	if schemas == nil {
		schemas = ingest.BuiltinSchemas()
	}
	timeout := opts.Timeout
	if timeout <= 0 {
		timeout = DefaultTimeout
	}
	return &Tacklebox{
		store:    opts.Store,
		identity: opts.Identity,
		schemas:  schemas,
		timeout:  timeout,
	}
}

// Close cleanly shuts down the instance.
func (t *Tacklebox) Close() error {
	return t.store.Close()
}

// Schema returns the surface schema by name.
func (t *Tacklebox) Schema(surface string) (ingest.Schema, error) {
	s, ok := t.schemas[surface]
	if !ok {
		return ingest.Schema{}, fmt.Errorf("%w: unknown surface %q", internalerr.ErrInvalidSchema, surface)
	}
	return s, nil
}

// Surfaces returns the names of all registered ingestion surfaces.
func (t *Tacklebox) Surfaces() []string {
	names := make([]string, 0, len(t.schemas))
	for name := range t.schemas {
		names = append(names, name)
	}
	return names
}

// Preview runs the full pipeline over raw pasted text for one surface. For
// resolving surfaces the owner's reference collections are loaded first;
// owner may be empty, in which case every reference row previews as
// missing. Preview itself never requires identity.
func (t *Tacklebox) Preview(ctx context.Context, owner, surface, raw string) (ingest.PreviewResult, error) {
	schema, err := t.Schema(surface)
	if err != nil {
		return ingest.PreviewResult{}, err
	}

	var refs map[string][]ingest.Ref
	if names := schema.RefNames(); len(names) > 0 {
		refs, err = t.loadRefs(ctx, owner, names)
		if err != nil {
			return ingest.PreviewResult{}, err
		}
	}

	return ingest.ComputePreview(raw, schema, refs), nil
}

// Commit re-validates the batch and issues exactly one batch insert tagged
// with the owner id. The raw text is never mutated here: on any failure the
// caller still holds the user's paste.
func (t *Tacklebox) Commit(ctx context.Context, token, surface, raw string) (int, error) {
	user, err := t.identity.Current(ctx, token)
	if err != nil {
		return 0, err
	}

	schema, err := t.Schema(surface)
	if err != nil {
		return 0, err
	}

	preview, err := t.Preview(ctx, user.ID, surface, raw)
	if err != nil {
		return 0, err
	}
	if !preview.InsertEligible {
		return 0, fmt.Errorf("%w: %s", internalerr.ErrNotEligible, preview.Reason)
	}

	opCtx, cancel := context.WithTimeout(ctx, t.timeout)
	defer cancel()

	if len(schema.RefNames()) > 0 {
		combos := make([]store.Combo, 0, len(preview.Rows))
		for _, row := range preview.Rows {
			combos = append(combos, store.Combo{
				Owner:  user.ID,
				Name:   row.Name,
				RodID:  row.Refs["rod"],
				ReelID: row.Refs["reel"],
				Notes:  row.Strings["notes"],
			})
		}
		ids, err := t.store.InsertComboBatch(opCtx, combos)
		if err != nil {
			return 0, wrapStoreErr(err)
		}
		return len(ids), nil
	}

	items := make([]store.GearItem, 0, len(preview.Rows))
	for _, row := range preview.Rows {
		items = append(items, gearFromRecord(user.ID, schema.Category, row.Record))
	}
	ids, err := t.store.InsertGearBatch(opCtx, items)
	if err != nil {
		return 0, wrapStoreErr(err)
	}
	return len(ids), nil
}

// gearFromRecord maps a normalized record onto a store item. Brand and
// model get dedicated columns; remaining string fields land in Specs.
func gearFromRecord(owner, category string, rec ingest.Record) store.GearItem {
	item := store.GearItem{
		Owner:    owner,
		Category: category,
		Name:     rec.Name,
		Status:   rec.Status,
		Brand:    rec.Strings["brand"],
		Model:    rec.Strings["model"],
	}

	for k, v := range rec.Strings {
		if k == "brand" || k == "model" {
			continue
		}
		if item.Specs == nil {
			item.Specs = make(map[string]string)
		}
		item.Specs[k] = v
	}
	if len(rec.Numbers) > 0 {
		item.Numbers = make(map[string]float64, len(rec.Numbers))
		for k, v := range rec.Numbers {
			item.Numbers[k] = v
		}
	}
	return item
}

// loadRefs fetches the named reference collections concurrently; both
// fetches must complete before any key index is built. Results from a load
// that was superseded while in flight update nothing shared.
func (t *Tacklebox) loadRefs(ctx context.Context, owner string, categories []string) (map[string][]ingest.Ref, error) {
	t.refMu.Lock()
	t.refGen++
	gen := t.refGen
	t.refMu.Unlock()

	opCtx, cancel := context.WithTimeout(ctx, t.timeout)
	defer cancel()

	var mu sync.Mutex
	out := make(map[string][]ingest.Ref, len(categories))

	eg, egCtx := errgroup.WithContext(opCtx)
	for _, category := range categories {
		eg.Go(func() error {
			items, err := t.store.ListGear(egCtx, owner, category)
			if err != nil {
				return err
			}
			refs := make([]ingest.Ref, len(items))
			for i, item := range items {
				refs[i] = ingest.Ref{ID: item.ID, Name: item.Name, Brand: item.Brand, Model: item.Model}
			}
			mu.Lock()
			out[category] = refs
			mu.Unlock()
			return nil
		})
	}
	if err := eg.Wait(); err != nil {
		return nil, wrapStoreErr(err)
	}

	t.refMu.Lock()
	if gen == t.refGen {
		t.refFor = owner
		t.refSets = out
	}
	t.refMu.Unlock()

	return out, nil
}

// CachedRefs returns the last reference collections applied to the shared
// cache and the owner they belong to.
func (t *Tacklebox) CachedRefs() (string, map[string][]ingest.Ref) {
	t.refMu.Lock()
	defer t.refMu.Unlock()
	return t.refFor, t.refSets
}

func wrapStoreErr(err error) error {
	if errors.Is(err, context.DeadlineExceeded) {
		return fmt.Errorf("%w: %v", internalerr.ErrTimeout, err)
	}
	return err
}
