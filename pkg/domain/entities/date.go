package entities

import (
	"encoding/json"
	"time"
)

const (
	dateLayout     = "2006-01-02"
	dateTimeLayout = "2006-01-02 15:04:05"
)

// Date is a movement date that may be absent when the source value could
// not be parsed. Absent dates order after every present date.
type Date struct {
	t     time.Time
	valid bool
}

// NoDate is the absent date.
var NoDate = Date{}

// NewDate wraps a parsed time
func NewDate(t time.Time) Date {
	return Date{t: t, valid: true}
}

// D creates a valid midnight UTC date, mostly for tests
func D(year int, month time.Month, day int) Date {
	return NewDate(time.Date(year, month, day, 0, 0, 0, 0, time.UTC))
}

func (d Date) Valid() bool     { return d.valid }
func (d Date) Time() time.Time { return d.t }

// Before orders dates chronologically with absent dates last.
func (d Date) Before(o Date) bool {
	switch {
	case !d.valid:
		return false
	case !o.valid:
		return true
	default:
		return d.t.Before(o.t)
	}
}

// Equal reports whether both dates are absent or denote the same instant.
func (d Date) Equal(o Date) bool {
	if d.valid != o.valid {
		return false
	}
	return !d.valid || d.t.Equal(o.t)
}

// String renders midnight values as a calendar date and anything else with
// its time of day; absent dates render empty.
func (d Date) String() string {
	if !d.valid {
		return ""
	}
	h, m, s := d.t.Clock()
	if h == 0 && m == 0 && s == 0 && d.t.Nanosecond() == 0 {
		return d.t.Format(dateLayout)
	}
	return d.t.Format(dateTimeLayout)
}

func (d Date) MarshalJSON() ([]byte, error) {
	if !d.valid {
		return []byte("null"), nil
	}
	return json.Marshal(d.t.Format(time.RFC3339))
}

func (d *Date) UnmarshalJSON(data []byte) error {
	if string(data) == "null" {
		*d = NoDate
		return nil
	}
	var s string
	if err := json.Unmarshal(data, &s); err != nil {
		return err
	}
	t, err := time.Parse(time.RFC3339, s)
	if err != nil {
		return err
	}
	*d = NewDate(t)
	return nil
}
