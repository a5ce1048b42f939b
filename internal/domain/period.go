package domain

import "time"

// PeriodState is the lifecycle state of an accounting period.
type PeriodState string

const (
	PeriodOpen   PeriodState = "open"
	PeriodClosed PeriodState = "closed"
)

// Period is an accounting period. Entries are posted into exactly one period,
// and a period is sealed forever once it transitions to closed.
type Period struct {
	ID             string
	Name           string
	Start          time.Time
	End            time.Time
	State          PeriodState
	ClosingEntryID *string
	// OpeningEntryID references the system entry generated for the successor
	// period, recorded retroactively on this period once it is closed.
	OpeningEntryID *string
	CreatedAt      time.Time
	UpdatedAt      time.Time
}

// Contains reports whether d falls within the period range, inclusive on both
// ends. Comparison is by calendar day.
func (p *Period) Contains(d time.Time) bool {
	day := truncateToDay(d)

	return !day.Before(truncateToDay(p.Start)) && !day.After(truncateToDay(p.End))
}

// Overlaps reports whether two date ranges intersect.
func (p *Period) Overlaps(start, end time.Time) bool {
	return !truncateToDay(end).Before(truncateToDay(p.Start)) &&
		!truncateToDay(start).After(truncateToDay(p.End))
}

// ValidateRange checks that a period date range starts no later than it ends.
func ValidateRange(start, end time.Time) error {
	if truncateToDay(start).After(truncateToDay(end)) {
		return ErrInvalidDateRange
	}

	return nil
}

// ValidateRange checks the period's own date range.
func (p *Period) ValidateRange() error {
	return ValidateRange(p.Start, p.End)
}

func truncateToDay(t time.Time) time.Time {
	y, m, d := t.UTC().Date()

	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}
