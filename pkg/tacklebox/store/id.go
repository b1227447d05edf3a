package store

import (
	"crypto/rand"
	"sync"

	"github.com/oklog/ulid/v2"
)

// IDGen mints sortable record ids. Safe for concurrent use.
type IDGen struct {
	mu      sync.Mutex
	entropy *ulid.MonotonicEntropy
}

// NewIDGen creates an id generator backed by monotonic ULID entropy.
func NewIDGen() *IDGen {
	return &IDGen{entropy: ulid.Monotonic(rand.Reader, 0)}
}

// Next returns a fresh ULID string.
func (g *IDGen) Next() string {
	g.mu.Lock()
	defer g.mu.Unlock()
	return ulid.MustNew(ulid.Now(), g.entropy).String()
}
