// Package importer runs the payroll import pipeline: parse, resolve
// columns, normalize rows, aggregate a batch and persist it through a
// [store.Router].
//
// Callers get a definite [Result] for every import. Failures carry a
// user-facing message from core.FormatUserError and never include a
// partial record list.
package importer

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/JonMunkholm/payroll-import/internal/core"
	"github.com/JonMunkholm/payroll-import/internal/logging"
	"github.com/JonMunkholm/payroll-import/internal/store"
)

// DefaultTimeout bounds one import including persistence.
const DefaultTimeout = 2 * time.Minute

// PreviewRecords is how many records a preview returns.
const PreviewRecords = 10

var (
	errEmptyFile  = errors.New("empty file: no rows found")
	errNoDataRows = errors.New("no data rows found below the header")
	errFileTooBig = errors.New("file too large")
	errNoFile     = errors.New("no file provided")
)

// Persister stores batches and reads them back. *store.Router implements it.
type Persister interface {
	Write(ctx context.Context, batch *core.Batch) store.Outcome
	ReadBatch(ctx context.Context, periodKey string) (*core.Batch, store.Role, error)
}

// Result is the outcome of one import.
type Result struct {
	Success     bool              `json:"success"`
	RecordCount int               `json:"recordCount"`
	BatchID     *string           `json:"batchId"`
	Message     string            `json:"message"`
	Period      string            `json:"period,omitempty"`
	Store       store.Role        `json:"store,omitempty"`
	StoreName   string            `json:"storeName,omitempty"`
	Warnings    []core.Warning    `json:"warnings,omitempty"`
	Skipped     []core.SkippedRow `json:"skipped,omitempty"`
	Summary     *core.Summary     `json:"summary,omitempty"`
	Records     []core.Record     `json:"records,omitempty"`

	// Batch is the persisted batch on success. When every store failed it
	// is the unsaved batch, handed back so the caller can retry.
	Batch *core.Batch `json:"-"`

	// Err is the technical cause of a failure.
	Err error `json:"-"`
}

// Preview describes what an import would do without writing anything.
type Preview struct {
	Period       string                `json:"period"`
	Headers      []string              `json:"headers"`
	Mapping      map[core.Field]string `json:"mapping"`
	Unmapped     []core.Field          `json:"unmapped"`
	Warnings     []core.Warning        `json:"warnings"`
	Skipped      []core.SkippedRow     `json:"skipped"`
	RecordCount  int                   `json:"recordCount"`
	DuplicateIDs []string              `json:"duplicateIds"`
	Summary      core.Summary          `json:"summary"`
	Records      []core.Record         `json:"records"`
}

// Service runs imports. It is safe for concurrent use.
type Service struct {
	router  Persister
	aliases core.AliasTable
	limiter *Limiter
	timeout time.Duration
	maxSize int64
	now     func() time.Time
}

// Option configures a Service.
type Option func(*Service)

// WithAliases replaces the built-in header alias table.
func WithAliases(t core.AliasTable) Option {
	return func(s *Service) { s.aliases = t }
}

// WithLimiter bounds concurrent imports. Without one imports are unbounded.
func WithLimiter(l *Limiter) Option {
	return func(s *Service) { s.limiter = l }
}

// WithTimeout bounds each import. Zero disables the bound.
func WithTimeout(d time.Duration) Option {
	return func(s *Service) { s.timeout = d }
}

// WithMaxFileSize rejects raw input larger than n bytes. Zero disables.
func WithMaxFileSize(n int64) Option {
	return func(s *Service) { s.maxSize = n }
}

// WithClock sets the time source for record and batch timestamps.
func WithClock(now func() time.Time) Option {
	return func(s *Service) { s.now = now }
}

// New creates a Service that persists through router.
func New(router Persister, opts ...Option) *Service {
	s := &Service{
		router:  router,
		aliases: core.DefaultAliases(),
		timeout: DefaultTimeout,
		now:     time.Now,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Limiter returns the import limiter, or nil.
func (s *Service) Limiter() *Limiter {
	return s.limiter
}

// WaitForImports blocks until running imports finish or ctx ends.
func (s *Service) WaitForImports(ctx context.Context) error {
	if s.limiter == nil {
		return nil
	}
	return s.limiter.WaitForDrain(ctx)
}

// ImportFile imports raw bytes of the given kind as the payroll for period.
func (s *Service) ImportFile(ctx context.Context, raw []byte, kind core.SourceKind, period core.Period) Result {
	period = trimPeriod(period)
	log := logging.WithFields(ctx, "period", period.Key(), "kind", kind)
	start := time.Now()
	log.Info("import started", "bytes", len(raw))

	if err := s.checkInput(raw, kind, period); err != nil {
		return s.fail(log, period, err)
	}

	if s.limiter != nil {
		if err := s.limiter.Acquire(ctx); err != nil {
			return s.fail(log, period, err)
		}
		defer s.limiter.Release()
	}

	if s.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, s.timeout)
		defer cancel()
	}

	a, err := s.analyze(raw, kind, period)
	if err != nil {
		return s.fail(log, period, err)
	}
	if len(a.batch.Records) == 0 {
		return s.fail(log, period, errNoDataRows)
	}
	for _, w := range a.warnings {
		log.Warn("import warning", "code", w.Code, "warning", w.Message)
	}

	out := s.router.Write(ctx, a.batch)
	if !out.Persisted() {
		log.Error("import failed", "error", out.Err, "records", len(a.batch.Records))
		return Result{
			Success:  false,
			Message:  core.FormatUserError(out.Err),
			Period:   period.String(),
			Warnings: a.warnings,
			Batch:    out.Batch,
			Err:      out.Err,
		}
	}

	batchID := out.BatchID
	summary := a.batch.Summary
	log.Info("import completed",
		"records", len(a.batch.Records),
		"store", out.StoreName,
		"role", out.Store,
		"collisions", a.batch.Collisions,
		"skipped", len(a.normalized.Skipped),
		"duration", time.Since(start),
	)

	return Result{
		Success:     true,
		RecordCount: len(a.batch.Records),
		BatchID:     &batchID,
		Message:     successMessage(period, a, out),
		Period:      period.String(),
		Store:       out.Store,
		StoreName:   out.StoreName,
		Warnings:    a.warnings,
		Skipped:     a.normalized.Skipped,
		Summary:     &summary,
		Records:     a.batch.Records,
		Batch:       a.batch,
	}
}

// Preview runs the pipeline up to aggregation and reports the column
// mapping and what would be imported. Nothing is written.
func (s *Service) Preview(ctx context.Context, raw []byte, kind core.SourceKind, period core.Period) (*Preview, error) {
	period = trimPeriod(period)
	if err := s.checkInput(raw, kind, period); err != nil {
		return nil, err
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	a, err := s.analyze(raw, kind, period)
	if err != nil {
		return nil, err
	}

	p := &Preview{
		Period:       period.String(),
		Headers:      a.resolution.Headers,
		Mapping:      a.resolution.MappedHeaders(),
		Warnings:     a.warnings,
		Skipped:      a.normalized.Skipped,
		RecordCount:  len(a.batch.Records),
		DuplicateIDs: a.batch.DuplicateIDs(),
		Summary:      a.batch.Summary,
		Records:      a.batch.Records,
	}
	if len(p.Records) > PreviewRecords {
		p.Records = p.Records[:PreviewRecords]
	}
	for _, spec := range core.Fields() {
		if _, ok := a.resolution.Mapping[spec.Field]; !ok {
			p.Unmapped = append(p.Unmapped, spec.Field)
		}
	}

	logging.WithFields(ctx, "period", period.Key(), "kind", kind).
		Debug("import previewed", "records", p.RecordCount, "mapped", len(p.Mapping))
	return p, nil
}

// Batch loads the stored batch for a period key.
func (s *Service) Batch(ctx context.Context, periodKey string) (*core.Batch, store.Role, error) {
	return s.router.ReadBatch(ctx, strings.TrimSpace(periodKey))
}

// Slip loads one record of a stored batch.
func (s *Service) Slip(ctx context.Context, periodKey, recordID string) (core.Record, error) {
	b, _, err := s.Batch(ctx, periodKey)
	if err != nil {
		return core.Record{}, err
	}
	rec, ok := b.Record(recordID)
	if !ok {
		return core.Record{}, fmt.Errorf("slip %s in %s: %w", recordID, periodKey, store.ErrNotFound)
	}
	return rec, nil
}

// analysis is everything computed from the input before persistence.
type analysis struct {
	resolution core.Resolution
	normalized core.NormalizeResult
	batch      *core.Batch
	warnings   []core.Warning
}

func (s *Service) analyze(raw []byte, kind core.SourceKind, period core.Period) (*analysis, error) {
	grid, err := core.Parse(raw, kind)
	if err != nil {
		return nil, err
	}
	if len(grid) == 0 {
		return nil, errEmptyFile
	}

	res := s.aliases.Resolve(grid.Header())
	norm := core.Normalizer{Now: s.now}.Normalize(grid, res.Mapping, period)

	batch := core.Aggregate(period, norm.Records)
	batch.CreatedAt = s.now().UTC()

	warnings := make([]core.Warning, 0, len(res.Warnings)+len(norm.Warnings)+1)
	warnings = append(warnings, res.Warnings...)
	warnings = append(warnings, norm.Warnings...)
	if dups := batch.DuplicateIDs(); len(dups) > 0 {
		msg := fmt.Sprintf("%d rows repeat an earlier teacher id (%s); later rows replace earlier ones",
			batch.Collisions, strings.Join(dups, ", "))
		warnings = append(warnings, core.Warning{Code: core.WarnDuplicateID, Message: msg})
	}

	return &analysis{
		resolution: res,
		normalized: norm,
		batch:      batch,
		warnings:   warnings,
	}, nil
}

func (s *Service) checkInput(raw []byte, kind core.SourceKind, period core.Period) error {
	if err := period.Validate(); err != nil {
		return err
	}
	if !kind.Valid() {
		return fmt.Errorf("unsupported file type %q", kind)
	}
	if raw == nil {
		return errNoFile
	}
	if s.maxSize > 0 && int64(len(raw)) > s.maxSize {
		return fmt.Errorf("%w: %d bytes exceeds %d", errFileTooBig, len(raw), s.maxSize)
	}
	return nil
}

func (s *Service) fail(log *slog.Logger, period core.Period, err error) Result {
	log.Warn("import rejected", "error", err)
	return Result{
		Success: false,
		Message: core.FormatUserError(err),
		Period:  period.String(),
		Err:     err,
	}
}

func successMessage(period core.Period, a *analysis, out store.Outcome) string {
	var b strings.Builder
	n := len(a.batch.Records)
	fmt.Fprintf(&b, "Imported %d %s for %s.", n, plural(n, "record", "records"), period)

	if out.Store == store.RoleSecondary {
		fmt.Fprintf(&b, " Saved to the fallback store (%s) because the primary store failed.", out.StoreName)
	}
	if k := len(a.normalized.Skipped); k > 0 {
		fmt.Fprintf(&b, " Skipped %d incomplete %s.", k, plural(k, "row", "rows"))
	}
	if len(a.warnings) > 0 {
		msgs := make([]string, len(a.warnings))
		for i, w := range a.warnings {
			msgs[i] = w.Message
		}
		fmt.Fprintf(&b, " Warnings: %s.", strings.Join(msgs, "; "))
	}
	return b.String()
}

func plural(n int, one, many string) string {
	if n == 1 {
		return one
	}
	return many
}

func trimPeriod(p core.Period) core.Period {
	return core.Period{Month: strings.TrimSpace(p.Month), Year: strings.TrimSpace(p.Year)}
}
