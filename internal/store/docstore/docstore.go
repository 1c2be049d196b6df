// Package docstore is the remote document store, backed by PostgreSQL.
//
// Batches and records are stored as JSONB documents in two collections:
//
//	payroll_batches(period_key PK, batch_id, doc, updated_at)
//	payroll_slips(id PK, period_key, doc, updated_at)
//
// Both upsert by key. The schema is created by Initialize.
package docstore

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"sync/atomic"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/JonMunkholm/payroll-import/internal/config"
	"github.com/JonMunkholm/payroll-import/internal/core"
	"github.com/JonMunkholm/payroll-import/internal/store"
)

// Name is the registry name of this store.
const Name = config.StoreRemote

func init() {
	store.Register(Name, func(ctx context.Context, cfg *config.Config) (store.Store, error) {
		return Open(ctx, cfg.Database)
	})
}

const schema = `
CREATE TABLE IF NOT EXISTS payroll_batches (
	period_key TEXT PRIMARY KEY,
	batch_id   UUID NOT NULL,
	doc        JSONB NOT NULL,
	updated_at TIMESTAMPTZ NOT NULL DEFAULT now()
);

CREATE TABLE IF NOT EXISTS payroll_slips (
	id         TEXT PRIMARY KEY,
	period_key TEXT NOT NULL,
	doc        JSONB NOT NULL,
	updated_at TIMESTAMPTZ NOT NULL DEFAULT now()
);

CREATE INDEX IF NOT EXISTS idx_payroll_slips_period ON payroll_slips (period_key);
`

// Store implements store.Store on a pgx pool.
type Store struct {
	pool        *pgxpool.Pool
	schemaReady atomic.Bool
}

var _ store.Store = (*Store)(nil)

// Open creates a connection pool. Connections are made lazily, so an
// unreachable server surfaces in Initialize rather than here.
func Open(ctx context.Context, cfg config.DatabaseConfig) (*Store, error) {
	if cfg.URL == "" {
		return nil, errors.New("DATABASE_URL is not set")
	}

	poolConfig, err := pgxpool.ParseConfig(cfg.URL)
	if err != nil {
		return nil, fmt.Errorf("parse database URL: %w", err)
	}
	if cfg.MaxConns > 0 {
		poolConfig.MaxConns = int32(cfg.MaxConns)
	}
	poolConfig.MinConns = int32(cfg.MinConns)
	if cfg.MaxConnLifetime > 0 {
		poolConfig.MaxConnLifetime = cfg.MaxConnLifetime
	}
	if cfg.MaxConnIdleTime > 0 {
		poolConfig.MaxConnIdleTime = cfg.MaxConnIdleTime
	}

	pool, err := pgxpool.NewWithConfig(ctx, poolConfig)
	if err != nil {
		return nil, fmt.Errorf("create pool: %w", err)
	}
	return New(pool), nil
}

// New wraps an existing pool.
func New(pool *pgxpool.Pool) *Store {
	return &Store{pool: pool}
}

// Name returns the registry name.
func (s *Store) Name() string { return Name }

// Initialize pings the server and creates the schema on first success.
func (s *Store) Initialize(ctx context.Context) bool {
	if err := s.pool.Ping(ctx); err != nil {
		return false
	}
	if s.schemaReady.Load() {
		return true
	}
	if _, err := s.pool.Exec(ctx, schema); err != nil {
		return false
	}
	s.schemaReady.Store(true)
	return true
}

// WriteBatch upserts the batch document under its period key.
func (s *Store) WriteBatch(ctx context.Context, periodKey string, batch *core.Batch) error {
	doc, err := json.Marshal(batch)
	if err != nil {
		return fmt.Errorf("encode batch %s: %w", periodKey, err)
	}
	_, err = s.pool.Exec(ctx, `
		INSERT INTO payroll_batches (period_key, batch_id, doc, updated_at)
		VALUES ($1, $2, $3, now())
		ON CONFLICT (period_key)
		DO UPDATE SET batch_id = EXCLUDED.batch_id, doc = EXCLUDED.doc, updated_at = now()
	`, periodKey, batch.ID, doc)
	if err != nil {
		return fmt.Errorf("upsert batch %s: %w", periodKey, err)
	}
	return nil
}

// WriteRecord upserts one record document under its id.
func (s *Store) WriteRecord(ctx context.Context, rec core.Record) error {
	doc, err := json.Marshal(rec)
	if err != nil {
		return fmt.Errorf("encode record %s: %w", rec.ID, err)
	}
	periodKey := core.Period{Month: rec.Month, Year: rec.Year}.Key()
	_, err = s.pool.Exec(ctx, `
		INSERT INTO payroll_slips (id, period_key, doc, updated_at)
		VALUES ($1, $2, $3, now())
		ON CONFLICT (id)
		DO UPDATE SET period_key = EXCLUDED.period_key, doc = EXCLUDED.doc, updated_at = now()
	`, rec.ID, periodKey, doc)
	if err != nil {
		return fmt.Errorf("upsert record %s: %w", rec.ID, err)
	}
	return nil
}

// ReadBatch loads the batch document for periodKey.
func (s *Store) ReadBatch(ctx context.Context, periodKey string) (*core.Batch, error) {
	var doc []byte
	err := s.pool.QueryRow(ctx,
		`SELECT doc FROM payroll_batches WHERE period_key = $1`, periodKey,
	).Scan(&doc)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, fmt.Errorf("batch %s: %w", periodKey, store.ErrNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("read batch %s: %w", periodKey, err)
	}

	var b core.Batch
	if err := json.Unmarshal(doc, &b); err != nil {
		return nil, fmt.Errorf("decode batch %s: %w", periodKey, err)
	}
	b.Reindex()
	return &b, nil
}

// ReadRecord loads one record document by id.
func (s *Store) ReadRecord(ctx context.Context, id string) (core.Record, error) {
	var doc []byte
	err := s.pool.QueryRow(ctx, `SELECT doc FROM payroll_slips WHERE id = $1`, id).Scan(&doc)
	if errors.Is(err, pgx.ErrNoRows) {
		return core.Record{}, fmt.Errorf("slip %s: %w", id, store.ErrNotFound)
	}
	if err != nil {
		return core.Record{}, fmt.Errorf("read slip %s: %w", id, err)
	}

	var rec core.Record
	if err := json.Unmarshal(doc, &rec); err != nil {
		return core.Record{}, fmt.Errorf("decode slip %s: %w", id, err)
	}
	return rec, nil
}

// Close closes the pool.
func (s *Store) Close() error {
	s.pool.Close()
	return nil
}
