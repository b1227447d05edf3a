package store

import (
	"context"
	"time"
)

// Store is the record-store interface the application persists through.
// Batch inserts are atomic: either every row in the batch is written or
// none are.
type Store interface {
	Close() error

	// Gear items
	ListGear(ctx context.Context, owner, category string) ([]GearItem, error)
	GetGear(ctx context.Context, id string) (GearItem, bool, error)
	InsertGearBatch(ctx context.Context, items []GearItem) ([]string, error)
	UpdateGear(ctx context.Context, item GearItem) error
	DeleteGear(ctx context.Context, id string) error

	// Combos
	ListCombos(ctx context.Context, owner string) ([]Combo, error)
	InsertComboBatch(ctx context.Context, combos []Combo) ([]string, error)
	DeleteCombo(ctx context.Context, id string) error

	// Sessions
	CreateSession(ctx context.Context, s Session) error
	GetSession(ctx context.Context, token string) (Session, bool, error)
	DeleteSession(ctx context.Context, token string) error
}

// GearItem is one cataloged piece of gear. Category discriminates the gear
// type within the shared collection (rod, reel, lure, ...). Specs and
// Numbers carry the per-category detail fields; Extra is a passthrough bag
// for fields the application doesn't model and never validates against.
type GearItem struct {
	ID        string
	Owner     string
	Category  string
	Name      string
	Status    string
	Brand     string
	Model     string
	Specs     map[string]string
	Numbers   map[string]float64
	Extra     map[string]string
	CreatedAt time.Time
}

// Combo pairs a rod and a reel by id.
type Combo struct {
	ID        string
	Owner     string
	Name      string
	RodID     string
	ReelID    string
	Notes     string
	CreatedAt time.Time
}

// Session is an authenticated user session resolved from a bearer token.
type Session struct {
	Token     string
	UserID    string
	Email     string
	ExpiresAt time.Time
}
