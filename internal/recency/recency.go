// Package recency classifies record dates into coarse age buckets used for
// report row coloring.
package recency

import (
	"errors"
	"time"

	"github.com/rotisserie/eris"
)

// DateLayout is the calendar date format carried by vehicle records.
const DateLayout = "2006-01-02"

// ErrInvalidDate marks a date string that could not be parsed. Callers that
// only style output should fall back to BucketNone instead of aborting.
var ErrInvalidDate = errors.New("invalid date")

// Bucket is a coarse age classification derived from a date field.
type Bucket int

const (
	// BucketNone covers current-month and future dates; no coloring applies.
	BucketNone Bucket = iota
	// BucketRecent covers dates up to 3 whole months old.
	BucketRecent
	// BucketAging covers dates older than 3 and up to 12 whole months.
	BucketAging
	// BucketStale covers dates older than 12 whole months.
	BucketStale
)

// String returns the bucket name for logging.
func (b Bucket) String() string {
	switch b {
	case BucketRecent:
		return "recent"
	case BucketAging:
		return "aging"
	case BucketStale:
		return "stale"
	default:
		return "none"
	}
}

// Classify maps a date string to its age bucket relative to today. Age is the
// whole-month difference; the day of month is deliberately ignored, so the
// first and last day of a month bucket identically.
func Classify(dateStr string, today time.Time) (Bucket, error) {
	d, err := time.Parse(DateLayout, dateStr)
	if err != nil {
		return BucketNone, eris.Wrapf(ErrInvalidDate, "recency: parse %q: %v", dateStr, err)
	}

	monthsOld := (today.Year()-d.Year())*12 + int(today.Month()) - int(d.Month())
	switch {
	case monthsOld <= 0:
		return BucketNone, nil
	case monthsOld <= 3:
		return BucketRecent, nil
	case monthsOld <= 12:
		return BucketAging, nil
	default:
		return BucketStale, nil
	}
}
