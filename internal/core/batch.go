package core

import (
	"time"

	"github.com/google/uuid"
)

// Summary holds the totals of a batch.
type Summary struct {
	Count           int     `json:"count"`
	TotalGross      float64 `json:"totalGross"`
	TotalDeductions float64 `json:"totalDeductions"`
	TotalNet        float64 `json:"totalNet"`
}

// Batch is the set of records produced by one import for one period.
type Batch struct {
	ID         string    `json:"id"`
	PeriodKey  string    `json:"periodKey"`
	Month      string    `json:"month"`
	Year       string    `json:"year"`
	Records    []Record  `json:"records"`
	Summary    Summary   `json:"summary"`
	Collisions int       `json:"collisions"`
	CreatedAt  time.Time `json:"createdAt"`

	// Index maps record id to record. Later records replace earlier ones
	// with the same id.
	Index      map[string]Record `json:"-"`
	duplicates []string
}

// Aggregate folds records into a new batch for period.
func Aggregate(period Period, records []Record) *Batch {
	b := &Batch{
		ID:        uuid.NewString(),
		PeriodKey: period.Key(),
		Month:     period.Month,
		Year:      period.Year,
		Records:   records,
		Summary:   Summarize(records),
		CreatedAt: time.Now().UTC(),
	}
	b.Reindex()
	return b
}

// Summarize returns count and totals over records.
func Summarize(records []Record) Summary {
	s := Summary{Count: len(records)}
	for _, r := range records {
		s.TotalGross += r.GrossTotal
		s.TotalDeductions += r.TotalDeductions
		s.TotalNet += r.NetPay
	}
	return s
}

// Reindex rebuilds Index and the collision count from Records.
// Call it after decoding a stored batch.
func (b *Batch) Reindex() {
	b.Index = make(map[string]Record, len(b.Records))
	b.Collisions = 0
	b.duplicates = nil

	seen := make(map[string]bool)
	for _, r := range b.Records {
		if _, exists := b.Index[r.ID]; exists {
			b.Collisions++
			if !seen[r.ID] {
				seen[r.ID] = true
				b.duplicates = append(b.duplicates, r.ID)
			}
		}
		b.Index[r.ID] = r
	}
}

// DuplicateIDs returns each identifier that occurred more than once,
// in first-collision order.
func (b *Batch) DuplicateIDs() []string {
	return append([]string(nil), b.duplicates...)
}

// Record looks up a record by id.
func (b *Batch) Record(id string) (Record, bool) {
	if b.Index == nil {
		b.Reindex()
	}
	r, ok := b.Index[id]
	return r, ok
}
