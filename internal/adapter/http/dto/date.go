package dto

import (
	"fmt"
	"strconv"
	"time"
)

// Date is a calendar day in API payloads, serialized as "2006-01-02". Entry
// and period dates have day granularity, so the wire format carries no time
// of day or zone.
type Date struct {
	time.Time
}

// NewDate wraps a time.Time, keeping only its UTC calendar day.
func NewDate(t time.Time) Date {
	y, m, d := t.UTC().Date()
	return Date{time.Date(y, m, d, 0, 0, 0, 0, time.UTC)}
}

// MarshalJSON implements json.Marshaler.
func (d Date) MarshalJSON() ([]byte, error) {
	return []byte(strconv.Quote(d.Format(time.DateOnly))), nil
}

// UnmarshalJSON implements json.Unmarshaler.
func (d *Date) UnmarshalJSON(data []byte) error {
	s, err := strconv.Unquote(string(data))
	if err != nil {
		return fmt.Errorf("invalid date: %s", data)
	}

	t, err := time.ParseInLocation(time.DateOnly, s, time.UTC)
	if err != nil {
		return fmt.Errorf("invalid date %q: expected YYYY-MM-DD", s)
	}

	d.Time = t

	return nil
}
