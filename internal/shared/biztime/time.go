// Package biztime centralizes the clock. Storage uses UTC unix seconds; the
// business location only affects how the scheduler and panel render times.
package biztime

import (
	"fmt"
	"sync"
	"time"
)

const DefaultTimezone = "UTC"

var (
	bizLocation *time.Location
	locMu       sync.RWMutex
)

// Init sets the business timezone. Empty tz selects UTC.
func Init(tz string) error {
	if tz == "" {
		tz = DefaultTimezone
	}
	loc, err := time.LoadLocation(tz)
	if err != nil {
		return fmt.Errorf("load timezone %q: %w", tz, err)
	}
	locMu.Lock()
	bizLocation = loc
	locMu.Unlock()
	return nil
}

// Location returns the business timezone, UTC until Init is called.
func Location() *time.Location {
	locMu.RLock()
	defer locMu.RUnlock()
	if bizLocation == nil {
		return time.UTC
	}
	return bizLocation
}

// NowUTC returns current time in UTC.
func NowUTC() time.Time {
	return time.Now().UTC()
}

// Clock abstracts the current time for code that needs deterministic tests.
type Clock interface {
	Now() time.Time
}

type systemClock struct{}

func (systemClock) Now() time.Time { return NowUTC() }

// SystemClock returns a Clock backed by the wall clock.
func SystemClock() Clock { return systemClock{} }

// FixedClock always returns the same instant.
type FixedClock struct {
	T time.Time
}

func (c FixedClock) Now() time.Time { return c.T }
