package tacklebox

import (
	"context"
	"errors"
	"sync"
	"testing"

	"github.com/anglerlog/tacklebox/pkg/tacklebox/identity"
	"github.com/anglerlog/tacklebox/pkg/tacklebox/ingest"
	"github.com/anglerlog/tacklebox/pkg/tacklebox/internalerr"
	"github.com/anglerlog/tacklebox/pkg/tacklebox/store"
	"github.com/anglerlog/tacklebox/pkg/tacklebox/store/memstore"
)

func newTestBox(s store.Store) *Tacklebox {
	return New(Options{
		Store:    s,
		Identity: identity.Static{User: identity.User{ID: "u1", Email: "angler@example.com"}},
	})
}

func TestCommitReelBatch(t *testing.T) {
	ctx := context.Background()
	mem := memstore.New()
	box := newTestBox(mem)

	raw := "Shimano | Curado DC 150HG | owned | baitcaster | right | 7.4:1 | 30 | 7.8 | 11 | 6+1 | 12/120 | DC | JDM spool | In black case\n" +
		"Daiwa | Tatula SV | wish list"
	count, err := box.Commit(ctx, "any", "reels", raw)
	if err != nil {
		t.Fatalf("Commit: %v", err)
	}
	if count != 2 {
		t.Fatalf("inserted %d, want 2", count)
	}

	items, err := mem.ListGear(ctx, "u1", "reel")
	if err != nil {
		t.Fatalf("ListGear: %v", err)
	}
	if len(items) != 2 {
		t.Fatalf("store holds %d reels, want 2", len(items))
	}
	for _, item := range items {
		if item.Owner != "u1" || item.Category != "reel" {
			t.Errorf("row not tagged with owner and category: %+v", item)
		}
	}
	if items[0].Name != "Daiwa Tatula SV" || items[0].Status != ingest.StatusWishlist {
		t.Errorf("wishlist row = %+v", items[0])
	}
	if items[1].Specs["brake_system"] != "DC" || items[1].Numbers["ipt"] != 30 {
		t.Errorf("spec fields lost: %+v", items[1])
	}
}

func TestCommitRequiresIdentity(t *testing.T) {
	mem := memstore.New()
	box := New(Options{Store: mem, Identity: identity.Static{}})

	_, err := box.Commit(context.Background(), "", "reels", "Shimano | Curado")
	if !errors.Is(err, internalerr.ErrNotSignedIn) {
		t.Fatalf("err = %v, want ErrNotSignedIn", err)
	}
	if mem.GearCount() != 0 {
		t.Error("commit without identity must not write")
	}
}

func TestCommitBlocksIneligibleBatch(t *testing.T) {
	ctx := context.Background()
	mem := memstore.New()
	box := newTestBox(mem)

	// Rod resolves, reel doesn't: fail-closed, no insert call at all.
	if _, err := mem.InsertGearBatch(ctx, []store.GearItem{
		{Owner: "u1", Category: "rod", Name: "St Croix Jig Rod", Status: "owned"},
	}); err != nil {
		t.Fatalf("seed: %v", err)
	}

	_, err := box.Commit(ctx, "any", "combos", "St Croix Jig Rod | Shimano Curado DC 100HG")
	if !errors.Is(err, internalerr.ErrNotEligible) {
		t.Fatalf("err = %v, want ErrNotEligible", err)
	}
	if mem.ComboCount() != 0 {
		t.Error("ineligible batch must not reach the store")
	}
}

func TestCommitParseErrorsBlock(t *testing.T) {
	mem := memstore.New()
	box := newTestBox(mem)

	_, err := box.Commit(context.Background(), "any", "reels", "Shimano | Curado\njustonefield")
	if !errors.Is(err, internalerr.ErrNotEligible) {
		t.Fatalf("err = %v, want ErrNotEligible", err)
	}
	if mem.GearCount() != 0 {
		t.Error("batch with parse errors must not reach the store")
	}
}

func TestCommitRemoteFailureLeavesNothingBehind(t *testing.T) {
	ctx := context.Background()
	mem := memstore.New()
	box := newTestBox(mem)

	boom := errors.New("permission denied")
	mem.FailNext(boom)

	_, err := box.Commit(ctx, "any", "reels", "Shimano | Curado\nDaiwa | Tatula")
	if !errors.Is(err, boom) {
		t.Fatalf("err = %v, want store failure surfaced", err)
	}
	if mem.GearCount() != 0 {
		t.Error("failed commit must leave zero rows committed")
	}

	// User-initiated retry with the same (preserved) text succeeds.
	count, err := box.Commit(ctx, "any", "reels", "Shimano | Curado\nDaiwa | Tatula")
	if err != nil || count != 2 {
		t.Fatalf("retry = (%d, %v), want (2, nil)", count, err)
	}
}

func TestCommitCombos(t *testing.T) {
	ctx := context.Background()
	mem := memstore.New()
	box := newTestBox(mem)

	if _, err := mem.InsertGearBatch(ctx, []store.GearItem{
		{Owner: "u1", Category: "rod", Name: "St Croix Jig Rod", Status: "owned"},
		{Owner: "u1", Category: "reel", Name: "Shimano Curado DC 150HG", Status: "owned"},
	}); err != nil {
		t.Fatalf("seed: %v", err)
	}

	count, err := box.Commit(ctx, "any", "combos", "st croix jig rod | SHIMANO curado dc 150hg | Jig Setup | tournament rig")
	if err != nil {
		t.Fatalf("Commit: %v", err)
	}
	if count != 1 {
		t.Fatalf("inserted %d combos, want 1", count)
	}

	combos, err := mem.ListCombos(ctx, "u1")
	if err != nil {
		t.Fatalf("ListCombos: %v", err)
	}
	c := combos[0]
	if c.Name != "Jig Setup" || c.Notes != "tournament rig" {
		t.Errorf("combo = %+v", c)
	}
	if c.RodID == "" || c.ReelID == "" {
		t.Errorf("foreign ids not resolved: %+v", c)
	}
}

func TestPreviewUnknownSurface(t *testing.T) {
	box := newTestBox(memstore.New())
	if _, err := box.Preview(context.Background(), "u1", "kayaks", "a | b"); !errors.Is(err, internalerr.ErrInvalidSchema) {
		t.Errorf("err = %v, want ErrInvalidSchema", err)
	}
}

// gatedStore delays ListGear calls for one owner until released, to
// simulate a slow load racing a newer one.
type gatedStore struct {
	*memstore.Store
	slowOwner string
	entered   sync.WaitGroup
	release   chan struct{}
}

func (g *gatedStore) ListGear(ctx context.Context, owner, category string) ([]store.GearItem, error) {
	if owner == g.slowOwner {
		g.entered.Done()
		<-g.release
	}
	return g.Store.ListGear(ctx, owner, category)
}

func TestStaleReferenceLoadDiscarded(t *testing.T) {
	ctx := context.Background()
	mem := memstore.New()
	if _, err := mem.InsertGearBatch(ctx, []store.GearItem{
		{Owner: "old", Category: "rod", Name: "Old Rod", Status: "owned"},
		{Owner: "new", Category: "rod", Name: "New Rod", Status: "owned"},
	}); err != nil {
		t.Fatalf("seed: %v", err)
	}

	gs := &gatedStore{Store: mem, slowOwner: "old", release: make(chan struct{})}
	gs.entered.Add(2) // combos surface loads rods and reels
	box := New(Options{Store: gs, Identity: identity.Static{User: identity.User{ID: "u1"}}})

	done := make(chan error, 1)
	go func() {
		_, err := box.Preview(ctx, "old", "combos", "New Rod | Some Reel")
		done <- err
	}()

	// A newer load starts (and finishes) while the first is still gated.
	gs.entered.Wait()
	if _, err := box.Preview(ctx, "new", "combos", "New Rod | Some Reel"); err != nil {
		t.Fatalf("newer preview: %v", err)
	}

	close(gs.release)
	if err := <-done; err != nil {
		t.Fatalf("stale preview: %v", err)
	}

	owner, refs := box.CachedRefs()
	if owner != "new" {
		t.Fatalf("cache owner = %q, want the newer load", owner)
	}
	if len(refs["rod"]) != 1 || refs["rod"][0].Name != "New Rod" {
		t.Errorf("cache refs = %+v, want the newer owner's rods", refs["rod"])
	}
}
