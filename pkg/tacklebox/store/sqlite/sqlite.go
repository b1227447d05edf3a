// Package sqlite implements store.Store on SQLite via modernc.org/sqlite.
package sqlite

import (
	"context"
	"database/sql"
	"time"

	_ "modernc.org/sqlite"

	"github.com/anglerlog/tacklebox/pkg/tacklebox/internalerr"
	"github.com/anglerlog/tacklebox/pkg/tacklebox/store"
)

// sqliteStore implements the Store interface using SQLite
type sqliteStore struct {
	db  *sql.DB
	ids *store.IDGen
}

// OpenSQLite opens a SQLite database with WAL mode enabled and initializes
// the schema.
func OpenSQLite(ctx context.Context, path string) (store.Store, error) {
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, err
	}

	// Enable WAL mode for better concurrency
	if _, err := db.ExecContext(ctx, "PRAGMA journal_mode=WAL"); err != nil {
		db.Close()
		return nil, err
	}

	// Enable foreign keys
	if _, err := db.ExecContext(ctx, "PRAGMA foreign_keys=ON"); err != nil {
		db.Close()
		return nil, err
	}

	if err := initSchema(ctx, db); err != nil {
		db.Close()
		return nil, err
	}

	return &sqliteStore{db: db, ids: store.NewIDGen()}, nil
}

// Close closes the database connection
func (s *sqliteStore) Close() error {
	return s.db.Close()
}

// initSchema creates tables if they don't exist
func initSchema(ctx context.Context, db *sql.DB) error {
	schema := `
CREATE TABLE IF NOT EXISTS gear_items (
	id TEXT PRIMARY KEY,
	owner TEXT NOT NULL,
	category TEXT NOT NULL,
	name TEXT NOT NULL,
	status TEXT NOT NULL,
	brand TEXT,
	model TEXT,
	created_at TEXT NOT NULL
);

CREATE INDEX IF NOT EXISTS idx_gear_owner_category ON gear_items(owner, category);

CREATE TABLE IF NOT EXISTS gear_specs (
	item_id TEXT NOT NULL,
	key TEXT NOT NULL,
	value TEXT NOT NULL,
	UNIQUE(item_id, key),
	FOREIGN KEY(item_id) REFERENCES gear_items(id) ON DELETE CASCADE
);

CREATE TABLE IF NOT EXISTS gear_numbers (
	item_id TEXT NOT NULL,
	key TEXT NOT NULL,
	value REAL NOT NULL,
	UNIQUE(item_id, key),
	FOREIGN KEY(item_id) REFERENCES gear_items(id) ON DELETE CASCADE
);

CREATE TABLE IF NOT EXISTS gear_extra (
	item_id TEXT NOT NULL,
	key TEXT NOT NULL,
	value TEXT NOT NULL,
	UNIQUE(item_id, key),
	FOREIGN KEY(item_id) REFERENCES gear_items(id) ON DELETE CASCADE
);

CREATE TABLE IF NOT EXISTS combos (
	id TEXT PRIMARY KEY,
	owner TEXT NOT NULL,
	name TEXT NOT NULL,
	rod_id TEXT NOT NULL,
	reel_id TEXT NOT NULL,
	notes TEXT,
	created_at TEXT NOT NULL,
	FOREIGN KEY(rod_id) REFERENCES gear_items(id),
	FOREIGN KEY(reel_id) REFERENCES gear_items(id)
);

CREATE INDEX IF NOT EXISTS idx_combos_owner ON combos(owner);

CREATE TABLE IF NOT EXISTS sessions (
	token TEXT PRIMARY KEY,
	user_id TEXT NOT NULL,
	email TEXT NOT NULL,
	expires_at TEXT NOT NULL
);
`
	_, err := db.ExecContext(ctx, schema)
	return err
}

// ListGear returns the owner's gear ordered by name, optionally filtered to
// one category.
func (s *sqliteStore) ListGear(ctx context.Context, owner, category string) ([]store.GearItem, error) {
	query := `SELECT id, owner, category, name, status, brand, model, created_at
	          FROM gear_items WHERE owner = ?`
	args := []any{owner}
	if category != "" {
		query += ` AND category = ?`
		args = append(args, category)
	}
	query += ` ORDER BY name`

	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var items []store.GearItem
	for rows.Next() {
		item, err := scanGear(rows)
		if err != nil {
			return nil, err
		}
		items = append(items, item)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}

	for i := range items {
		if err := s.loadDetail(ctx, &items[i]); err != nil {
			return nil, err
		}
	}
	return items, nil
}

// GetGear returns a gear item by id.
func (s *sqliteStore) GetGear(ctx context.Context, id string) (store.GearItem, bool, error) {
	row := s.db.QueryRowContext(ctx,
		`SELECT id, owner, category, name, status, brand, model, created_at
		 FROM gear_items WHERE id = ?`, id)

	item, err := scanGear(row)
	if err == sql.ErrNoRows {
		return store.GearItem{}, false, nil
	}
	if err != nil {
		return store.GearItem{}, false, err
	}
	if err := s.loadDetail(ctx, &item); err != nil {
		return store.GearItem{}, false, err
	}
	return item, true, nil
}

// InsertGearBatch writes all items in one transaction; a failure on any row
// rolls the whole batch back.
func (s *sqliteStore) InsertGearBatch(ctx context.Context, items []store.GearItem) ([]string, error) {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return nil, err
	}
	defer tx.Rollback()

	ids := make([]string, 0, len(items))
	for _, item := range items {
		if item.ID == "" {
			item.ID = s.ids.Next()
		}
		if item.CreatedAt.IsZero() {
			item.CreatedAt = time.Now()
		}

		if _, err := tx.ExecContext(ctx,
			`INSERT INTO gear_items (id, owner, category, name, status, brand, model, created_at)
			 VALUES (?, ?, ?, ?, ?, ?, ?, ?)`,
			item.ID, item.Owner, item.Category, item.Name, item.Status,
			item.Brand, item.Model, item.CreatedAt.UTC().Format(time.RFC3339Nano)); err != nil {
			return nil, err
		}
		if err := insertDetail(ctx, tx, item); err != nil {
			return nil, err
		}
		ids = append(ids, item.ID)
	}

	if err := tx.Commit(); err != nil {
		return nil, err
	}
	return ids, nil
}

// UpdateGear replaces an existing item and its detail rows.
func (s *sqliteStore) UpdateGear(ctx context.Context, item store.GearItem) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	defer tx.Rollback()

	res, err := tx.ExecContext(ctx,
		`UPDATE gear_items SET category = ?, name = ?, status = ?, brand = ?, model = ?
		 WHERE id = ?`,
		item.Category, item.Name, item.Status, item.Brand, item.Model, item.ID)
	if err != nil {
		return err
	}
	if n, err := res.RowsAffected(); err == nil && n == 0 {
		return internalerr.ErrNotFound
	}

	for _, table := range []string{"gear_specs", "gear_numbers", "gear_extra"} {
		if _, err := tx.ExecContext(ctx, `DELETE FROM `+table+` WHERE item_id = ?`, item.ID); err != nil {
			return err
		}
	}
	if err := insertDetail(ctx, tx, item); err != nil {
		return err
	}
	return tx.Commit()
}

// DeleteGear removes an item; detail rows cascade.
func (s *sqliteStore) DeleteGear(ctx context.Context, id string) error {
	res, err := s.db.ExecContext(ctx, `DELETE FROM gear_items WHERE id = ?`, id)
	if err != nil {
		return err
	}
	if n, err := res.RowsAffected(); err == nil && n == 0 {
		return internalerr.ErrNotFound
	}
	return nil
}

// ListCombos returns the owner's combos ordered by name.
func (s *sqliteStore) ListCombos(ctx context.Context, owner string) ([]store.Combo, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT id, owner, name, rod_id, reel_id, notes, created_at
		 FROM combos WHERE owner = ? ORDER BY name`, owner)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var combos []store.Combo
	for rows.Next() {
		var c store.Combo
		var notes sql.NullString
		var created string
		if err := rows.Scan(&c.ID, &c.Owner, &c.Name, &c.RodID, &c.ReelID, &notes, &created); err != nil {
			return nil, err
		}
		c.Notes = notes.String
		c.CreatedAt, _ = time.Parse(time.RFC3339Nano, created)
		combos = append(combos, c)
	}
	return combos, rows.Err()
}

// InsertComboBatch writes all combos in one transaction.
func (s *sqliteStore) InsertComboBatch(ctx context.Context, combos []store.Combo) ([]string, error) {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return nil, err
	}
	defer tx.Rollback()

	ids := make([]string, 0, len(combos))
	for _, c := range combos {
		if c.ID == "" {
			c.ID = s.ids.Next()
		}
		if c.CreatedAt.IsZero() {
			c.CreatedAt = time.Now()
		}
		if _, err := tx.ExecContext(ctx,
			`INSERT INTO combos (id, owner, name, rod_id, reel_id, notes, created_at)
			 VALUES (?, ?, ?, ?, ?, ?, ?)`,
			c.ID, c.Owner, c.Name, c.RodID, c.ReelID, c.Notes,
			c.CreatedAt.UTC().Format(time.RFC3339Nano)); err != nil {
			return nil, err
		}
		ids = append(ids, c.ID)
	}

	if err := tx.Commit(); err != nil {
		return nil, err
	}
	return ids, nil
}

// DeleteCombo removes a combo by id.
func (s *sqliteStore) DeleteCombo(ctx context.Context, id string) error {
	res, err := s.db.ExecContext(ctx, `DELETE FROM combos WHERE id = ?`, id)
	if err != nil {
		return err
	}
	if n, err := res.RowsAffected(); err == nil && n == 0 {
		return internalerr.ErrNotFound
	}
	return nil
}

// CreateSession stores a session keyed by token.
func (s *sqliteStore) CreateSession(ctx context.Context, sess store.Session) error {
	_, err := s.db.ExecContext(ctx,
		`INSERT OR REPLACE INTO sessions (token, user_id, email, expires_at) VALUES (?, ?, ?, ?)`,
		sess.Token, sess.UserID, sess.Email, sess.ExpiresAt.UTC().Format(time.RFC3339Nano))
	return err
}

// GetSession returns a session by token.
func (s *sqliteStore) GetSession(ctx context.Context, token string) (store.Session, bool, error) {
	var sess store.Session
	var expires string
	err := s.db.QueryRowContext(ctx,
		`SELECT token, user_id, email, expires_at FROM sessions WHERE token = ?`, token).
		Scan(&sess.Token, &sess.UserID, &sess.Email, &expires)
	if err == sql.ErrNoRows {
		return store.Session{}, false, nil
	}
	if err != nil {
		return store.Session{}, false, err
	}
	sess.ExpiresAt, _ = time.Parse(time.RFC3339Nano, expires)
	return sess, true, nil
}

// DeleteSession removes a session by token.
func (s *sqliteStore) DeleteSession(ctx context.Context, token string) error {
	_, err := s.db.ExecContext(ctx, `DELETE FROM sessions WHERE token = ?`, token)
	return err
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanGear(r rowScanner) (store.GearItem, error) {
	var item store.GearItem
	var brand, model sql.NullString
	var created string
	if err := r.Scan(&item.ID, &item.Owner, &item.Category, &item.Name,
		&item.Status, &brand, &model, &created); err != nil {
		return store.GearItem{}, err
	}
	item.Brand = brand.String
	item.Model = model.String
	item.CreatedAt, _ = time.Parse(time.RFC3339Nano, created)
	return item, nil
}

// loadDetail fills an item's spec, number, and extra maps.
func (s *sqliteStore) loadDetail(ctx context.Context, item *store.GearItem) error {
	load := func(table string, assign func(key, value string)) error {
		rows, err := s.db.QueryContext(ctx,
			`SELECT key, value FROM `+table+` WHERE item_id = ?`, item.ID)
		if err != nil {
			return err
		}
		defer rows.Close()
		for rows.Next() {
			var k, v string
			if err := rows.Scan(&k, &v); err != nil {
				return err
			}
			assign(k, v)
		}
		return rows.Err()
	}

	if err := load("gear_specs", func(k, v string) {
		if item.Specs == nil {
			item.Specs = make(map[string]string)
		}
		item.Specs[k] = v
	}); err != nil {
		return err
	}
	if err := load("gear_extra", func(k, v string) {
		if item.Extra == nil {
			item.Extra = make(map[string]string)
		}
		item.Extra[k] = v
	}); err != nil {
		return err
	}

	rows, err := s.db.QueryContext(ctx,
		`SELECT key, value FROM gear_numbers WHERE item_id = ?`, item.ID)
	if err != nil {
		return err
	}
	defer rows.Close()
	for rows.Next() {
		var k string
		var v float64
		if err := rows.Scan(&k, &v); err != nil {
			return err
		}
		if item.Numbers == nil {
			item.Numbers = make(map[string]float64)
		}
		item.Numbers[k] = v
	}
	return rows.Err()
}

func insertDetail(ctx context.Context, tx *sql.Tx, item store.GearItem) error {
	for k, v := range item.Specs {
		if _, err := tx.ExecContext(ctx,
			`INSERT INTO gear_specs (item_id, key, value) VALUES (?, ?, ?)`, item.ID, k, v); err != nil {
			return err
		}
	}
	for k, v := range item.Numbers {
		if _, err := tx.ExecContext(ctx,
			`INSERT INTO gear_numbers (item_id, key, value) VALUES (?, ?, ?)`, item.ID, k, v); err != nil {
			return err
		}
	}
	for k, v := range item.Extra {
		if _, err := tx.ExecContext(ctx,
			`INSERT INTO gear_extra (item_id, key, value) VALUES (?, ?, ?)`, item.ID, k, v); err != nil {
			return err
		}
	}
	return nil
}
