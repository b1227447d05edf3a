package identity

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/anglerlog/tacklebox/pkg/tacklebox/internalerr"
	"github.com/anglerlog/tacklebox/pkg/tacklebox/store"
	"github.com/anglerlog/tacklebox/pkg/tacklebox/store/memstore"
)

func TestStoreProviderResolvesSession(t *testing.T) {
	ctx := context.Background()
	s := memstore.New()
	if err := s.CreateSession(ctx, store.Session{
		Token:     "tok",
		UserID:    "u1",
		Email:     "angler@example.com",
		ExpiresAt: time.Now().Add(time.Hour),
	}); err != nil {
		t.Fatalf("CreateSession: %v", err)
	}

	p := &StoreProvider{Store: s}
	user, err := p.Current(ctx, "tok")
	if err != nil {
		t.Fatalf("Current: %v", err)
	}
	if user.ID != "u1" || user.Email != "angler@example.com" {
		t.Errorf("user = %+v", user)
	}
}

func TestStoreProviderMissingToken(t *testing.T) {
	p := &StoreProvider{Store: memstore.New()}

	if _, err := p.Current(context.Background(), ""); !errors.Is(err, internalerr.ErrNotSignedIn) {
		t.Errorf("empty token: err = %v, want ErrNotSignedIn", err)
	}
	if _, err := p.Current(context.Background(), "unknown"); !errors.Is(err, internalerr.ErrNotSignedIn) {
		t.Errorf("unknown token: err = %v, want ErrNotSignedIn", err)
	}
}

func TestStoreProviderExpiredSession(t *testing.T) {
	ctx := context.Background()
	s := memstore.New()
	expiry := time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)
	if err := s.CreateSession(ctx, store.Session{Token: "tok", UserID: "u1", ExpiresAt: expiry}); err != nil {
		t.Fatalf("CreateSession: %v", err)
	}

	p := &StoreProvider{Store: s, Now: func() time.Time { return expiry.Add(time.Minute) }}
	if _, err := p.Current(ctx, "tok"); !errors.Is(err, internalerr.ErrNotSignedIn) {
		t.Errorf("expired session: err = %v, want ErrNotSignedIn", err)
	}

	p.Now = func() time.Time { return expiry.Add(-time.Minute) }
	if _, err := p.Current(ctx, "tok"); err != nil {
		t.Errorf("live session: err = %v", err)
	}
}

func TestStaticProvider(t *testing.T) {
	p := Static{User: User{ID: "cli", Email: "cli@local"}}
	user, err := p.Current(context.Background(), "")
	if err != nil || user.ID != "cli" {
		t.Errorf("Static.Current = %+v, %v", user, err)
	}

	if _, err := (Static{}).Current(context.Background(), ""); !errors.Is(err, internalerr.ErrNotSignedIn) {
		t.Errorf("zero Static: err = %v, want ErrNotSignedIn", err)
	}
}
