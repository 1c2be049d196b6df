// Package sheetstore keeps payroll in an .xlsx workbook.
//
// The workbook has two sheets. "Batches" holds one summary row per period
// and "Slips" one row per record, the last column carrying the record as
// JSON so it can be read back losslessly. Rows upsert by their first
// column. Writing a batch drops the slips left from any earlier import of
// the same period.
//
// Writes stay in memory until Flush or Close saves the workbook.
//
// ReadBatch rebuilds the record list from the Slips sheet in row order, so
// records that shared an id come back once, as last written.
package sheetstore

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"strconv"
	"sync"
	"time"

	"github.com/xuri/excelize/v2"

	"github.com/JonMunkholm/payroll-import/internal/config"
	"github.com/JonMunkholm/payroll-import/internal/core"
	"github.com/JonMunkholm/payroll-import/internal/store"
)

// Name is the registry name of this store.
const Name = config.StoreSheet

func init() {
	store.Register(Name, func(ctx context.Context, cfg *config.Config) (store.Store, error) {
		return Open(cfg.Sheet.Path)
	})
}

const (
	batchSheet = "Batches"
	slipSheet  = "Slips"
)

var batchHeader = []string{
	"Period Key", "Batch ID", "Month", "Year", "Records",
	"Total Gross", "Total Deductions", "Total Net", "Collisions", "Created At",
}

// Batches sheet columns.
const (
	bcKey = iota
	bcID
	bcMonth
	bcYear
	bcCount
	bcGross
	bcDeductions
	bcNet
	bcCollisions
	bcCreatedAt
)

var slipHeader = []string{
	"Record ID", "Period Key", "Teacher ID", "Teacher Name",
	"Gross Total", "Total Deductions", "Net Pay", "Status", "Document",
}

// Slips sheet columns.
const (
	scID = iota
	scPeriod
	_
	_
	_
	_
	_
	_
	scDocument
)

// Store implements store.Store on an excelize workbook.
type Store struct {
	path string

	mu    sync.Mutex
	f     *excelize.File
	rows  map[string]map[string]int // sheet -> key -> 1-based row
	next  map[string]int            // sheet -> next free 1-based row
	dirty bool
}

var (
	_ store.Store   = (*Store)(nil)
	_ store.Flusher = (*Store)(nil)
)

// Open loads the workbook at path, or starts a new one if it does not exist.
// Nothing is written until Initialize, Flush or Close.
func Open(path string) (*Store, error) {
	if path == "" {
		return nil, errors.New("sheet store path is empty")
	}

	var f *excelize.File
	if _, err := os.Stat(path); err == nil {
		f, err = excelize.OpenFile(path)
		if err != nil {
			return nil, fmt.Errorf("open workbook: %w", err)
		}
	} else if errors.Is(err, os.ErrNotExist) {
		f = excelize.NewFile()
		if err := f.SetSheetName(f.GetSheetName(0), batchSheet); err != nil {
			_ = f.Close()
			return nil, fmt.Errorf("create workbook: %w", err)
		}
	} else {
		return nil, fmt.Errorf("stat workbook: %w", err)
	}

	s := &Store{
		path: path,
		f:    f,
		rows: make(map[string]map[string]int),
		next: make(map[string]int),
	}
	for sheet, header := range map[string][]string{batchSheet: batchHeader, slipSheet: slipHeader} {
		if err := s.prepareSheet(sheet, header); err != nil {
			_ = f.Close()
			return nil, err
		}
	}
	return s, nil
}

// prepareSheet creates the sheet with its header if missing and indexes
// existing rows by their first cell.
func (s *Store) prepareSheet(sheet string, header []string) error {
	idx, err := s.f.GetSheetIndex(sheet)
	if err != nil {
		return fmt.Errorf("sheet %s: %w", sheet, err)
	}
	if idx < 0 {
		if _, err := s.f.NewSheet(sheet); err != nil {
			return fmt.Errorf("sheet %s: %w", sheet, err)
		}
	}

	rows, err := s.f.GetRows(sheet)
	if err != nil {
		return fmt.Errorf("sheet %s: %w", sheet, err)
	}
	if len(rows) == 0 {
		if err := s.setRow(sheet, 1, toCells(header)); err != nil {
			return err
		}
		rows = [][]string{header}
	}
	s.index(sheet, rows)
	return nil
}

// index maps the first cell of each data row to its row number.
func (s *Store) index(sheet string, rows [][]string) {
	index := make(map[string]int, len(rows))
	for i, r := range rows {
		if i == 0 || len(r) == 0 || r[0] == "" {
			continue
		}
		index[r[0]] = i + 1
	}
	s.rows[sheet] = index
	s.next[sheet] = len(rows) + 1
}

// Name returns the registry name.
func (s *Store) Name() string { return Name }

// Initialize saves the workbook, reporting whether the path is writable.
func (s *Store) Initialize(ctx context.Context) bool {
	if ctx.Err() != nil {
		return false
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.f.SaveAs(s.path); err != nil {
		return false
	}
	s.dirty = false
	return true
}

// WriteBatch upserts the period's summary row and removes the period's
// existing slips, which the batch's records then replace.
func (s *Store) WriteBatch(ctx context.Context, periodKey string, batch *core.Batch) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	if err := s.dropSlips(periodKey); err != nil {
		return err
	}
	values := []interface{}{
		periodKey,
		batch.ID,
		batch.Month,
		batch.Year,
		batch.Summary.Count,
		batch.Summary.TotalGross,
		batch.Summary.TotalDeductions,
		batch.Summary.TotalNet,
		batch.Collisions,
		batch.CreatedAt.UTC().Format(time.RFC3339Nano),
	}
	return s.upsert(batchSheet, periodKey, values)
}

// WriteRecord upserts the record's slip row.
func (s *Store) WriteRecord(ctx context.Context, rec core.Record) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	doc, err := json.Marshal(rec)
	if err != nil {
		return fmt.Errorf("encode record %s: %w", rec.ID, err)
	}
	values := []interface{}{
		rec.ID,
		core.Period{Month: rec.Month, Year: rec.Year}.Key(),
		rec.TeacherID,
		rec.TeacherName,
		rec.GrossTotal,
		rec.TotalDeductions,
		rec.NetPay,
		rec.Status,
		string(doc),
	}
	return s.upsert(slipSheet, rec.ID, values)
}

// ReadBatch loads the summary row for periodKey and every slip of that period.
func (s *Store) ReadBatch(ctx context.Context, periodKey string) (*core.Batch, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	n, ok := s.rows[batchSheet][periodKey]
	if !ok {
		return nil, fmt.Errorf("batch %s: %w", periodKey, store.ErrNotFound)
	}

	opts := excelize.Options{RawCellValue: true}
	batchRows, err := s.f.GetRows(batchSheet, opts)
	if err != nil {
		return nil, fmt.Errorf("read %s: %w", batchSheet, err)
	}
	row := batchRows[n-1]

	b := &core.Batch{
		ID:        cellAt(row, bcID),
		PeriodKey: periodKey,
		Month:     cellAt(row, bcMonth),
		Year:      cellAt(row, bcYear),
		Summary: core.Summary{
			Count:           int(number(cellAt(row, bcCount))),
			TotalGross:      number(cellAt(row, bcGross)),
			TotalDeductions: number(cellAt(row, bcDeductions)),
			TotalNet:        number(cellAt(row, bcNet)),
		},
	}
	if t, err := time.Parse(time.RFC3339Nano, cellAt(row, bcCreatedAt)); err == nil {
		b.CreatedAt = t
	}

	slipRows, err := s.f.GetRows(slipSheet, opts)
	if err != nil {
		return nil, fmt.Errorf("read %s: %w", slipSheet, err)
	}
	for i, r := range slipRows {
		if i == 0 || cellAt(r, scPeriod) != periodKey {
			continue
		}
		var rec core.Record
		if err := json.Unmarshal([]byte(cellAt(r, scDocument)), &rec); err != nil {
			return nil, fmt.Errorf("decode slip %s: %w", cellAt(r, scID), err)
		}
		b.Records = append(b.Records, rec)
	}

	b.Reindex()
	b.Collisions = int(number(cellAt(row, bcCollisions)))
	return b, nil
}

// ReadRecord loads one slip by record id.
func (s *Store) ReadRecord(ctx context.Context, id string) (core.Record, error) {
	if err := ctx.Err(); err != nil {
		return core.Record{}, err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	n, ok := s.rows[slipSheet][id]
	if !ok {
		return core.Record{}, fmt.Errorf("slip %s: %w", id, store.ErrNotFound)
	}
	cell, err := excelize.CoordinatesToCellName(scDocument+1, n)
	if err != nil {
		return core.Record{}, err
	}
	doc, err := s.f.GetCellValue(slipSheet, cell, excelize.Options{RawCellValue: true})
	if err != nil {
		return core.Record{}, fmt.Errorf("read slip %s: %w", id, err)
	}

	var rec core.Record
	if err := json.Unmarshal([]byte(doc), &rec); err != nil {
		return core.Record{}, fmt.Errorf("decode slip %s: %w", id, err)
	}
	return rec, nil
}

// Flush saves the workbook if anything changed since the last save.
func (s *Store) Flush(ctx context.Context) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.save()
}

// Close saves pending writes and releases the workbook.
func (s *Store) Close() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return errors.Join(s.save(), s.f.Close())
}

func (s *Store) save() error {
	if !s.dirty {
		return nil
	}
	if err := s.f.SaveAs(s.path); err != nil {
		return fmt.Errorf("save workbook: %w", err)
	}
	s.dirty = false
	return nil
}

// dropSlips removes every Slips row belonging to periodKey.
func (s *Store) dropSlips(periodKey string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	rows, err := s.f.GetRows(slipSheet, excelize.Options{RawCellValue: true})
	if err != nil {
		return fmt.Errorf("read %s: %w", slipSheet, err)
	}
	var stale []int
	for i, r := range rows {
		if i > 0 && cellAt(r, scPeriod) == periodKey {
			stale = append(stale, i+1)
		}
	}
	if len(stale) == 0 {
		return nil
	}

	// Bottom up, so earlier row numbers stay valid.
	for i := len(stale) - 1; i >= 0; i-- {
		if err := s.f.RemoveRow(slipSheet, stale[i]); err != nil {
			return fmt.Errorf("remove %s row %d: %w", slipSheet, stale[i], err)
		}
	}
	s.dirty = true

	rows, err = s.f.GetRows(slipSheet)
	if err != nil {
		return fmt.Errorf("read %s: %w", slipSheet, err)
	}
	s.index(slipSheet, rows)
	return nil
}

// upsert writes values to the row keyed by key.
func (s *Store) upsert(sheet, key string, values []interface{}) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	n, ok := s.rows[sheet][key]
	if !ok {
		n = s.next[sheet]
	}
	if err := s.setRow(sheet, n, values); err != nil {
		return err
	}
	if !ok {
		s.rows[sheet][key] = n
		s.next[sheet] = n + 1
	}
	s.dirty = true
	return nil
}

func (s *Store) setRow(sheet string, n int, values []interface{}) error {
	cell, err := excelize.CoordinatesToCellName(1, n)
	if err != nil {
		return err
	}
	if err := s.f.SetSheetRow(sheet, cell, &values); err != nil {
		return fmt.Errorf("write %s!%s: %w", sheet, cell, err)
	}
	return nil
}

func toCells(header []string) []interface{} {
	out := make([]interface{}, len(header))
	for i, h := range header {
		out[i] = h
	}
	return out
}

func cellAt(row []string, i int) string {
	if i < len(row) {
		return row[i]
	}
	return ""
}

func number(s string) float64 {
	v, _ := strconv.ParseFloat(s, 64)
	return v
}
