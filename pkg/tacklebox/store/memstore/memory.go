// Package memstore is an in-memory implementation of store.Store for tests.
package memstore

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/anglerlog/tacklebox/pkg/tacklebox/internalerr"
	"github.com/anglerlog/tacklebox/pkg/tacklebox/store"
)

// Store is an in-memory store.Store. Values are deep-copied in and out so
// callers can't alias internal state.
type Store struct {
	mu       sync.RWMutex
	ids      *store.IDGen
	gear     map[string]store.GearItem
	combos   map[string]store.Combo
	sessions map[string]store.Session

	// failNext, when set, makes the next mutating call fail with that error.
	failNext error
}

// New creates a new in-memory store.
func New() *Store {
	return &Store{
		ids:      store.NewIDGen(),
		gear:     make(map[string]store.GearItem),
		combos:   make(map[string]store.Combo),
		sessions: make(map[string]store.Session),
	}
}

// FailNext arranges for the next mutating call to fail with err. Used by
// tests to simulate remote failures.
func (s *Store) FailNext(err error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.failNext = err
}

func (s *Store) takeFailure() error {
	err := s.failNext
	s.failNext = nil
	return err
}

// Close implements store.Store.
func (s *Store) Close() error { return nil }

// ListGear returns the owner's gear, optionally filtered to one category,
// ordered by name.
func (s *Store) ListGear(ctx context.Context, owner, category string) ([]store.GearItem, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var out []store.GearItem
	for _, item := range s.gear {
		if item.Owner != owner {
			continue
		}
		if category != "" && item.Category != category {
			continue
		}
		out = append(out, copyGear(item))
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Name < out[j].Name })
	return out, nil
}

// GetGear returns a gear item by id.
func (s *Store) GetGear(ctx context.Context, id string) (store.GearItem, bool, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	if item, ok := s.gear[id]; ok {
		return copyGear(item), true, nil
	}
	return store.GearItem{}, false, nil
}

// InsertGearBatch inserts all items or none of them.
func (s *Store) InsertGearBatch(ctx context.Context, items []store.GearItem) ([]string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if err := s.takeFailure(); err != nil {
		return nil, err
	}

	ids := make([]string, 0, len(items))
	for _, item := range items {
		if item.ID == "" {
			item.ID = s.ids.Next()
		}
		if item.CreatedAt.IsZero() {
			item.CreatedAt = time.Now()
		}
		s.gear[item.ID] = copyGear(item)
		ids = append(ids, item.ID)
	}
	return ids, nil
}

// UpdateGear replaces an existing item.
func (s *Store) UpdateGear(ctx context.Context, item store.GearItem) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if err := s.takeFailure(); err != nil {
		return err
	}
	if _, ok := s.gear[item.ID]; !ok {
		return internalerr.ErrNotFound
	}
	s.gear[item.ID] = copyGear(item)
	return nil
}

// DeleteGear removes an item by id.
func (s *Store) DeleteGear(ctx context.Context, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if err := s.takeFailure(); err != nil {
		return err
	}
	if _, ok := s.gear[id]; !ok {
		return internalerr.ErrNotFound
	}
	delete(s.gear, id)
	return nil
}

// ListCombos returns the owner's combos ordered by name.
func (s *Store) ListCombos(ctx context.Context, owner string) ([]store.Combo, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var out []store.Combo
	for _, c := range s.combos {
		if c.Owner == owner {
			out = append(out, c)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Name < out[j].Name })
	return out, nil
}

// InsertComboBatch inserts all combos or none of them.
func (s *Store) InsertComboBatch(ctx context.Context, combos []store.Combo) ([]string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if err := s.takeFailure(); err != nil {
		return nil, err
	}

	ids := make([]string, 0, len(combos))
	for _, c := range combos {
		if c.ID == "" {
			c.ID = s.ids.Next()
		}
		if c.CreatedAt.IsZero() {
			c.CreatedAt = time.Now()
		}
		s.combos[c.ID] = c
		ids = append(ids, c.ID)
	}
	return ids, nil
}

// DeleteCombo removes a combo by id.
func (s *Store) DeleteCombo(ctx context.Context, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if err := s.takeFailure(); err != nil {
		return err
	}
	if _, ok := s.combos[id]; !ok {
		return internalerr.ErrNotFound
	}
	delete(s.combos, id)
	return nil
}

// CreateSession stores a session keyed by token.
func (s *Store) CreateSession(ctx context.Context, sess store.Session) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.sessions[sess.Token] = sess
	return nil
}

// GetSession returns a session by token.
func (s *Store) GetSession(ctx context.Context, token string) (store.Session, bool, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	if sess, ok := s.sessions[token]; ok {
		return sess, true, nil
	}
	return store.Session{}, false, nil
}

// DeleteSession removes a session by token.
func (s *Store) DeleteSession(ctx context.Context, token string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.sessions, token)
	return nil
}

// GearCount reports how many gear items are stored. Test helper.
func (s *Store) GearCount() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.gear)
}

// ComboCount reports how many combos are stored. Test helper.
func (s *Store) ComboCount() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.combos)
}

func copyGear(item store.GearItem) store.GearItem {
	copyMap := func(in map[string]string) map[string]string {
		if in == nil {
			return nil
		}
		out := make(map[string]string, len(in))
		for k, v := range in {
			out[k] = v
		}
		return out
	}

	var nums map[string]float64
	if item.Numbers != nil {
		nums = make(map[string]float64, len(item.Numbers))
		for k, v := range item.Numbers {
			nums[k] = v
		}
	}

	out := item
	out.Specs = copyMap(item.Specs)
	out.Extra = copyMap(item.Extra)
	out.Numbers = nums
	return out
}
