package domain

import (
	"math"
	"strconv"
	"time"
)

// Expiry classifies an item's best-before date relative to today.
type Expiry int

const (
	ExpiryNormal Expiry = iota
	ExpiryWarning
	ExpiryExpired
)

func (e Expiry) String() string {
	switch e {
	case ExpiryWarning:
		return "warning"
	case ExpiryExpired:
		return "expired"
	}
	return "normal"
}

// DateLayout is the wire format of bestBeforeDate and openDate.
const DateLayout = "2006-01-02"

// ExpiryStatus returns expired when date is before today, warning when it is
// at most one day ahead, and normal otherwise. Empty or unparsable dates are
// normal.
func ExpiryStatus(date string, now time.Time) Expiry {
	if date == "" {
		return ExpiryNormal
	}
	loc := now.Location()
	target, err := time.ParseInLocation(DateLayout, date, loc)
	if err != nil {
		ts, err2 := time.Parse(time.RFC3339, date)
		if err2 != nil {
			return ExpiryNormal
		}
		ts = ts.In(loc)
		target = time.Date(ts.Year(), ts.Month(), ts.Day(), 0, 0, 0, 0, loc)
	}
	today := time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, loc)

	days := target.Sub(today).Hours() / 24
	switch {
	case days < 0:
		return ExpiryExpired
	case days <= 1:
		return ExpiryWarning
	}
	return ExpiryNormal
}

// FormatAmount renders an amount: integers without decimals, everything else
// with two. Missing amounts render as "-"; non-numeric strings pass through.
func FormatAmount(v any) string {
	if v == nil {
		return "-"
	}
	f, ok := Number(v)
	if !ok || math.IsNaN(f) || math.IsInf(f, 0) {
		if s := Text(v); s != "" {
			return s
		}
		return "-"
	}
	if f == math.Trunc(f) {
		return strconv.FormatFloat(f, 'f', 0, 64)
	}
	return strconv.FormatFloat(f, 'f', 2, 64)
}
