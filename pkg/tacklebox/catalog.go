package tacklebox

import (
	"context"
	"sort"
	"strings"

	"github.com/anglerlog/tacklebox/pkg/tacklebox/ingest"
	"github.com/anglerlog/tacklebox/pkg/tacklebox/store"
)

// Query filters an in-memory gear list. Zero values match everything.
type Query struct {
	Text     string // case-insensitive substring over name, brand, model
	Status   string
	Category string
}

// Filter returns the items matching the query, preserving input order.
func Filter(items []store.GearItem, q Query) []store.GearItem {
	text := strings.ToLower(strings.TrimSpace(q.Text))

	var out []store.GearItem
	for _, item := range items {
		if q.Status != "" && item.Status != q.Status {
			continue
		}
		if q.Category != "" && item.Category != q.Category {
			continue
		}
		if text != "" {
			hay := strings.ToLower(item.Name + " " + item.Brand + " " + item.Model)
			if !strings.Contains(hay, text) {
				continue
			}
		}
		out = append(out, item)
	}
	return out
}

// Sort keys accepted by SortItems.
const (
	SortByName     = "name"
	SortByBrand    = "brand"
	SortByStatus   = "status"
	SortByCategory = "category"
)

// SortItems orders a copy of items by the given key; unknown keys sort by
// name. The sort is stable so equal keys keep their relative order.
func SortItems(items []store.GearItem, key string, desc bool) []store.GearItem {
	out := make([]store.GearItem, len(items))
	copy(out, items)

	less := func(a, b store.GearItem) bool {
		switch key {
		case SortByBrand:
			if a.Brand != b.Brand {
				return a.Brand < b.Brand
			}
		case SortByStatus:
			if a.Status != b.Status {
				return a.Status < b.Status
			}
		case SortByCategory:
			if a.Category != b.Category {
				return a.Category < b.Category
			}
		}
		return a.Name < b.Name
	}

	sort.SliceStable(out, func(i, j int) bool {
		if desc {
			return less(out[j], out[i])
		}
		return less(out[i], out[j])
	})
	return out
}

// GroupByCategory buckets items by category, preserving input order within
// each bucket.
func GroupByCategory(items []store.GearItem) map[string][]store.GearItem {
	out := make(map[string][]store.GearItem)
	for _, item := range items {
		out[item.Category] = append(out[item.Category], item)
	}
	return out
}

// Restock is the computed shopping list: every wishlist item, sorted by
// category then name, with per-category counts.
type Restock struct {
	Items  []store.GearItem
	Counts map[string]int
}

// RestockList derives the restock view from a gear list.
func RestockList(items []store.GearItem) Restock {
	wish := Filter(items, Query{Status: ingest.StatusWishlist})
	wish = SortItems(wish, SortByCategory, false)

	counts := make(map[string]int)
	for _, item := range wish {
		counts[item.Category]++
	}
	return Restock{Items: wish, Counts: counts}
}

// Gear loads the owner's gear and applies the query and sort key in memory.
func (t *Tacklebox) Gear(ctx context.Context, owner string, q Query, sortKey string, desc bool) ([]store.GearItem, error) {
	opCtx, cancel := context.WithTimeout(ctx, t.timeout)
	defer cancel()

	items, err := t.store.ListGear(opCtx, owner, q.Category)
	if err != nil {
		return nil, wrapStoreErr(err)
	}
	q.Category = "" // already applied by the store query
	return SortItems(Filter(items, q), sortKey, desc), nil
}

// RestockFor loads the owner's gear and derives the restock list.
func (t *Tacklebox) RestockFor(ctx context.Context, owner string) (Restock, error) {
	opCtx, cancel := context.WithTimeout(ctx, t.timeout)
	defer cancel()

	items, err := t.store.ListGear(opCtx, owner, "")
	if err != nil {
		return Restock{}, wrapStoreErr(err)
	}
	return RestockList(items), nil
}
