// Package localstore is the on-disk fallback store.
//
// Batches and records are JSON documents in a single SQLite key-value
// table, keyed "batch:{periodKey}" and "slip:{recordID}". Writes upsert.
// The database is opened in WAL mode; a RWMutex serializes writers.
package localstore

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"sync"
	"time"

	_ "github.com/mattn/go-sqlite3"

	"github.com/JonMunkholm/payroll-import/internal/config"
	"github.com/JonMunkholm/payroll-import/internal/core"
	"github.com/JonMunkholm/payroll-import/internal/store"
)

// Name is the registry name of this store.
const Name = config.StoreLocal

func init() {
	store.Register(Name, func(ctx context.Context, cfg *config.Config) (store.Store, error) {
		return New(cfg.Local.Path)
	})
}

const (
	batchPrefix = "batch:"
	slipPrefix  = "slip:"
)

// Store implements store.Store on SQLite.
type Store struct {
	db *sql.DB
	mu sync.RWMutex
}

var _ store.Store = (*Store)(nil)

// New opens (creating if needed) the database at path.
// Use ":memory:" for an in-memory database.
func New(path string) (*Store, error) {
	db, err := sql.Open("sqlite3", path+"?_foreign_keys=on&_journal_mode=WAL&_busy_timeout=5000")
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}
	// One connection keeps ":memory:" databases shared across calls.
	db.SetMaxOpenConns(1)

	s := &Store{db: db}
	if err := s.migrate(); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to migrate database: %w", err)
	}
	return s, nil
}

func (s *Store) migrate() error {
	const schema = `
	CREATE TABLE IF NOT EXISTS kv (
		key TEXT PRIMARY KEY,
		value TEXT NOT NULL,
		updated_at TEXT NOT NULL
	);`
	_, err := s.db.Exec(schema)
	return err
}

// Name returns the registry name.
func (s *Store) Name() string { return Name }

// Initialize reports whether the database answers a ping.
func (s *Store) Initialize(ctx context.Context) bool {
	return s.db.PingContext(ctx) == nil
}

// WriteBatch stores the batch document under its period key.
func (s *Store) WriteBatch(ctx context.Context, periodKey string, batch *core.Batch) error {
	return s.put(ctx, batchPrefix+periodKey, batch)
}

// WriteRecord stores one record under its id.
func (s *Store) WriteRecord(ctx context.Context, rec core.Record) error {
	return s.put(ctx, slipPrefix+rec.ID, rec)
}

// ReadBatch loads the batch stored under periodKey.
func (s *Store) ReadBatch(ctx context.Context, periodKey string) (*core.Batch, error) {
	var b core.Batch
	if err := s.get(ctx, batchPrefix+periodKey, &b); err != nil {
		return nil, err
	}
	b.Reindex()
	return &b, nil
}

// ReadRecord loads one record by id.
func (s *Store) ReadRecord(ctx context.Context, id string) (core.Record, error) {
	var rec core.Record
	err := s.get(ctx, slipPrefix+id, &rec)
	return rec, err
}

// Close closes the database connection.
func (s *Store) Close() error {
	return s.db.Close()
}

func (s *Store) put(ctx context.Context, key string, v any) error {
	data, err := json.Marshal(v)
	if err != nil {
		return fmt.Errorf("encode %s: %w", key, err)
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	_, err = s.db.ExecContext(ctx, `
		INSERT INTO kv (key, value, updated_at) VALUES (?, ?, ?)
		ON CONFLICT(key) DO UPDATE SET value = excluded.value, updated_at = excluded.updated_at`,
		key, string(data), time.Now().UTC().Format(time.RFC3339Nano))
	if err != nil {
		return fmt.Errorf("put %s: %w", key, err)
	}
	return nil
}

func (s *Store) get(ctx context.Context, key string, v any) error {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var data string
	err := s.db.QueryRowContext(ctx, `SELECT value FROM kv WHERE key = ?`, key).Scan(&data)
	if errors.Is(err, sql.ErrNoRows) {
		return fmt.Errorf("%s: %w", key, store.ErrNotFound)
	}
	if err != nil {
		return fmt.Errorf("get %s: %w", key, err)
	}
	if err := json.Unmarshal([]byte(data), v); err != nil {
		return fmt.Errorf("decode %s: %w", key, err)
	}
	return nil
}
