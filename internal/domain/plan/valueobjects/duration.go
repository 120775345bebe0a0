package valueobjects

import (
	"fmt"
	"time"
)

const (
	// ForeverMonths marks a plan whose subscription never expires.
	ForeverMonths = -1
	// ForeverExpiry is the stored expire_date of a never-expiring subscription.
	ForeverExpiry int64 = -1
	// SecondsPerMonth is the fixed 30-day month used for expiry arithmetic.
	SecondsPerMonth int64 = 30 * 24 * 60 * 60
)

// Duration is a plan length in 30-day months, or ForeverMonths.
type Duration struct {
	months int
}

func NewDuration(months int) (Duration, error) {
	if months != ForeverMonths && months <= 0 {
		return Duration{}, fmt.Errorf("duration must be a positive number of months or %d, got %d", ForeverMonths, months)
	}
	return Duration{months: months}, nil
}

func Forever() Duration {
	return Duration{months: ForeverMonths}
}

func (d Duration) Months() int {
	return d.months
}

func (d Duration) IsForever() bool {
	return d.months == ForeverMonths
}

// ExpiryFrom returns the unix expiry for a subscription starting at start.
func (d Duration) ExpiryFrom(start time.Time) int64 {
	if d.IsForever() {
		return ForeverExpiry
	}
	return start.Unix() + int64(d.months)*SecondsPerMonth
}

// Label renders the suffix shown next to a price, e.g. "/month".
func (d Duration) Label() string {
	switch {
	case d.IsForever():
		return "/forever"
	case d.months == 1:
		return "/month"
	case d.months == 12:
		return "/year"
	default:
		return fmt.Sprintf("/%d months", d.months)
	}
}
