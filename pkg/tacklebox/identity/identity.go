// Package identity resolves the current user for commit gating. The
// pipeline itself never touches ambient auth state; a Provider is injected
// wherever a write needs an owner.
package identity

import (
	"context"
	"time"

	"github.com/anglerlog/tacklebox/pkg/tacklebox/internalerr"
	"github.com/anglerlog/tacklebox/pkg/tacklebox/store"
)

// User is an authenticated user.
type User struct {
	ID    string
	Email string
}

// Provider resolves a bearer token to the current user. A missing or
// expired session yields internalerr.ErrNotSignedIn.
type Provider interface {
	Current(ctx context.Context, token string) (User, error)
}

// StoreProvider resolves tokens against sessions persisted in the record
// store.
type StoreProvider struct {
	Store store.Store
	Now   func() time.Time // defaults to time.Now
}

// Current implements Provider.
func (p *StoreProvider) Current(ctx context.Context, token string) (User, error) {
	if token == "" {
		return User{}, internalerr.ErrNotSignedIn
	}

	sess, found, err := p.Store.GetSession(ctx, token)
	if err != nil {
		return User{}, err
	}
	if !found {
		return User{}, internalerr.ErrNotSignedIn
	}

	now := time.Now
	if p.Now != nil {
		now = p.Now
	}
	if !sess.ExpiresAt.IsZero() && !now().Before(sess.ExpiresAt) {
		return User{}, internalerr.ErrNotSignedIn
	}

	return User{ID: sess.UserID, Email: sess.Email}, nil
}

// Static always returns the same user. Used by the offline import CLI and
// by tests.
type Static struct {
	User User
}

// Current implements Provider.
func (s Static) Current(ctx context.Context, token string) (User, error) {
	if s.User.ID == "" {
		return User{}, internalerr.ErrNotSignedIn
	}
	return s.User, nil
}
