package store

// router.go implements primary/secondary persistence.
//
// Write sequence per store attempt:
//  1. Initialize (panics recovered, bounded by the init timeout)
//  2. WriteBatch under the period key
//  3. WriteRecord for every record, fanned out up to the write concurrency
//  4. Flush, for adapters that buffer writes
//
// Each attempt runs under its own write timeout. Any failure in the primary
// attempt abandons it and replays the complete sequence against the
// secondary. The secondary attempt is detached from the caller's
// cancellation so a primary that stalls until the import deadline still
// leaves the fallback a full write timeout. Nothing written to the primary
// before the failure is rolled back or reconciled.

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/JonMunkholm/payroll-import/internal/core"
	"github.com/JonMunkholm/payroll-import/internal/logging"
)

// DefaultWriteConcurrency bounds parallel record writes per store attempt.
const DefaultWriteConcurrency = 8

// DefaultInitTimeout bounds a single Initialize call.
const DefaultInitTimeout = 5 * time.Second

// DefaultWriteTimeout bounds one store attempt, Initialize through Flush.
const DefaultWriteTimeout = 30 * time.Second

// Role names which store served a request.
type Role string

const (
	RolePrimary   Role = "primary"
	RoleSecondary Role = "secondary"
)

// Status is the terminal state of a write.
type Status string

const (
	StatusPersisted Status = "persisted"
	StatusFailed    Status = "failed"
)

// Outcome is the result of Router.Write.
type Outcome struct {
	Status    Status
	Store     Role   // set when persisted
	StoreName string // adapter name that holds the batch
	BatchID   string
	Reason    string // set when failed

	// Err is the terminal error when failed.
	Err error

	// FallbackErr is why the primary was abandoned, if it was.
	FallbackErr error

	// Batch is handed back unchanged when failed so the caller can retry.
	Batch *core.Batch
}

// Persisted reports whether some store holds the batch.
func (o Outcome) Persisted() bool {
	return o.Status == StatusPersisted
}

// Router writes batches to a primary store with a complete fallback to a
// secondary store. It holds no state across writes and is safe for
// concurrent use when its adapters are.
type Router struct {
	primary     Adapter
	secondary   Adapter
	concurrency  int
	initTimeout  time.Duration
	writeTimeout time.Duration
}

// Option configures a Router.
type Option func(*Router)

// WithWriteConcurrency bounds parallel record writes. Values below 1 are ignored.
func WithWriteConcurrency(n int) Option {
	return func(r *Router) {
		if n > 0 {
			r.concurrency = n
		}
	}
}

// WithInitTimeout bounds each Initialize call. Non-positive values are ignored.
func WithInitTimeout(d time.Duration) Option {
	return func(r *Router) {
		if d > 0 {
			r.initTimeout = d
		}
	}
}

// WithWriteTimeout bounds each store attempt. Non-positive values are ignored.
func WithWriteTimeout(d time.Duration) Option {
	return func(r *Router) {
		if d > 0 {
			r.writeTimeout = d
		}
	}
}

// NewRouter creates a router. primary may be nil, in which case every write
// goes straight to secondary.
func NewRouter(primary, secondary Adapter, opts ...Option) *Router {
	r := &Router{
		primary:      primary,
		secondary:    secondary,
		concurrency:  DefaultWriteConcurrency,
		initTimeout:  DefaultInitTimeout,
		writeTimeout: DefaultWriteTimeout,
	}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

// Primary returns the primary adapter, or nil.
func (r *Router) Primary() Adapter { return r.primary }

// Secondary returns the secondary adapter, or nil.
func (r *Router) Secondary() Adapter { return r.secondary }

// Write persists batch and all its records. It never returns a partial
// success: the outcome is persisted in one store or failed.
func (r *Router) Write(ctx context.Context, batch *core.Batch) Outcome {
	logger := logging.WithFields(ctx, "period", batch.PeriodKey, "batch_id", batch.ID)

	var fallbackErr error
	if r.primary == nil {
		fallbackErr = errors.New("no primary store configured")
	} else {
		err := r.attempt(ctx, r.primary, batch)
		if err == nil {
			logger.Info("batch persisted", "store", r.primary.Name(), "role", RolePrimary, "records", len(batch.Records))
			return Outcome{
				Status:    StatusPersisted,
				Store:     RolePrimary,
				StoreName: r.primary.Name(),
				BatchID:   batch.ID,
			}
		}
		fallbackErr = err
		logger.Warn("falling back to secondary store",
			"primary", r.primary.Name(),
			"unavailable", errors.Is(err, ErrStoreUnavailable),
			"error", err,
		)
	}

	if r.secondary == nil {
		err := fmt.Errorf("no secondary store configured: %w", ErrStoreUnavailable)
		logger.Error("secondary store write failed", "error", err)
		return failed(batch, err, fallbackErr)
	}

	if err := r.attempt(context.WithoutCancel(ctx), r.secondary, batch); err != nil {
		logger.Error("secondary store write failed", "store", r.secondary.Name(), "error", err)
		return failed(batch, err, fallbackErr)
	}

	logger.Info("batch persisted", "store", r.secondary.Name(), "role", RoleSecondary, "records", len(batch.Records))
	return Outcome{
		Status:      StatusPersisted,
		Store:       RoleSecondary,
		StoreName:   r.secondary.Name(),
		BatchID:     batch.ID,
		FallbackErr: fallbackErr,
	}
}

func failed(batch *core.Batch, err, fallbackErr error) Outcome {
	return Outcome{
		Status:      StatusFailed,
		Reason:      err.Error(),
		Err:         err,
		FallbackErr: fallbackErr,
		Batch:       batch,
	}
}

// attempt runs persist under the write timeout.
func (r *Router) attempt(ctx context.Context, a Adapter, batch *core.Batch) error {
	ctx, cancel := context.WithTimeout(ctx, r.writeTimeout)
	defer cancel()
	return r.persist(ctx, a, batch)
}

// persist runs the full write sequence against one adapter.
func (r *Router) persist(ctx context.Context, a Adapter, batch *core.Batch) error {
	if ready, err := r.initialize(ctx, a); !ready {
		if err != nil {
			return fmt.Errorf("%s: %w: %v", a.Name(), ErrStoreUnavailable, err)
		}
		return fmt.Errorf("%s: %w", a.Name(), ErrStoreUnavailable)
	}

	if err := a.WriteBatch(ctx, batch.PeriodKey, batch); err != nil {
		return wrapWrite(a.Name(), "batch", batch.PeriodKey, err)
	}

	var (
		mu   sync.Mutex
		errs []error
	)
	var g errgroup.Group
	g.SetLimit(r.concurrency)
	for _, rec := range batch.Records {
		g.Go(func() error {
			if err := a.WriteRecord(ctx, rec); err != nil {
				mu.Lock()
				errs = append(errs, wrapWrite(a.Name(), "record", rec.ID, err))
				mu.Unlock()
			}
			return nil
		})
	}
	_ = g.Wait()

	if len(errs) > 0 {
		return errors.Join(errs...)
	}
	if f, ok := a.(Flusher); ok {
		if err := f.Flush(ctx); err != nil {
			return wrapWrite(a.Name(), "flush", batch.PeriodKey, err)
		}
	}
	return nil
}

// initialize calls a.Initialize, treating a panic as not ready.
func (r *Router) initialize(ctx context.Context, a Adapter) (ready bool, err error) {
	defer func() {
		if p := recover(); p != nil {
			ready = false
			err = fmt.Errorf("initialize panicked: %v", p)
		}
	}()

	initCtx, cancel := context.WithTimeout(ctx, r.initTimeout)
	defer cancel()

	return a.Initialize(initCtx), nil
}

// ReadBatch loads a batch from the primary when it is ready and holds the
// period, otherwise from the secondary. Adapters that cannot read are skipped.
func (r *Router) ReadBatch(ctx context.Context, periodKey string) (*core.Batch, Role, error) {
	logger := logging.WithFields(ctx, "period", periodKey)

	var errs []error
	for _, c := range []struct {
		role Role
		a    Adapter
	}{{RolePrimary, r.primary}, {RoleSecondary, r.secondary}} {
		if c.a == nil {
			continue
		}
		reader, ok := c.a.(Reader)
		if !ok {
			continue
		}
		if ready, _ := r.initialize(ctx, c.a); !ready {
			logger.Debug("store not ready for read", "store", c.a.Name(), "role", c.role)
			continue
		}

		b, err := reader.ReadBatch(ctx, periodKey)
		if err == nil {
			return b, c.role, nil
		}
		if !errors.Is(err, ErrNotFound) {
			logger.Warn("store read failed", "store", c.a.Name(), "role", c.role, "error", err)
			errs = append(errs, fmt.Errorf("%s: %w", c.a.Name(), err))
		}
	}

	if len(errs) > 0 {
		return nil, "", errors.Join(errs...)
	}
	return nil, "", fmt.Errorf("batch %q: %w", periodKey, ErrNotFound)
}
