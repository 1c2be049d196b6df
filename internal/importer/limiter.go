package importer

// limiter.go bounds how many imports run at once.
//
// A buffered channel is the semaphore: a send takes a slot, a receive frees
// it. Callers that cannot get a slot within the wait time fail with
// ErrTooManyImports. WaitForDrain lets shutdown wait for running imports.

import (
	"context"
	"errors"
	"time"
)

// ErrTooManyImports is returned when every import slot stays busy for the
// whole wait time. Clients should retry after a short delay.
var ErrTooManyImports = errors.New("too many concurrent imports, please try again later")

// DefaultMaxConcurrentImports is the default limit for parallel imports.
const DefaultMaxConcurrentImports = 4

// DefaultMaxWaitTime is how long to wait for a slot before rejecting.
const DefaultMaxWaitTime = 30 * time.Second

// drainPollInterval is how often WaitForDrain checks for idle.
const drainPollInterval = 50 * time.Millisecond

// Limiter is a counting semaphore for imports.
type Limiter struct {
	slots   chan struct{}
	maxWait time.Duration
}

// NewLimiter allows at most maxConcurrent imports. Requests that cannot get
// a slot within maxWait fail with ErrTooManyImports.
func NewLimiter(maxConcurrent int, maxWait time.Duration) *Limiter {
	if maxConcurrent <= 0 {
		maxConcurrent = DefaultMaxConcurrentImports
	}
	if maxWait <= 0 {
		maxWait = DefaultMaxWaitTime
	}
	return &Limiter{
		slots:   make(chan struct{}, maxConcurrent),
		maxWait: maxWait,
	}
}

// Acquire takes a slot, waiting up to the limiter's max wait.
// A successful Acquire must be paired with exactly one Release.
func (l *Limiter) Acquire(ctx context.Context) error {
	select {
	case l.slots <- struct{}{}:
		return nil
	default:
	}

	timer := time.NewTimer(l.maxWait)
	defer timer.Stop()

	select {
	case l.slots <- struct{}{}:
		return nil
	case <-timer.C:
		return ErrTooManyImports
	case <-ctx.Done():
		return ctx.Err()
	}
}

// TryAcquire takes a slot only if one is free right now.
func (l *Limiter) TryAcquire() bool {
	select {
	case l.slots <- struct{}{}:
		return true
	default:
		return false
	}
}

// Release frees a slot taken by Acquire or TryAcquire.
func (l *Limiter) Release() {
	<-l.slots
}

// Active returns the number of running imports.
func (l *Limiter) Active() int {
	return len(l.slots)
}

// Capacity returns the maximum number of concurrent imports.
func (l *Limiter) Capacity() int {
	return cap(l.slots)
}

// WaitForDrain blocks until no import is running or ctx ends.
func (l *Limiter) WaitForDrain(ctx context.Context) error {
	if l.Active() == 0 {
		return nil
	}

	ticker := time.NewTicker(drainPollInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-ticker.C:
			if l.Active() == 0 {
				return nil
			}
		}
	}
}

// LimiterStatus is a snapshot of limiter occupancy.
type LimiterStatus struct {
	Active    int `json:"active"`
	Available int `json:"available"`
	Capacity  int `json:"capacity"`
}

// Status returns current occupancy for health reporting.
func (l *Limiter) Status() LimiterStatus {
	active := len(l.slots)
	return LimiterStatus{
		Active:    active,
		Available: cap(l.slots) - active,
		Capacity:  cap(l.slots),
	}
}
