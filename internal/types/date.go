package types

import (
	"fmt"
	"time"
)

const DateLayout = "2006-01-02"

// CheckTripDate accepts a YYYY-MM-DD date that is today or later in tz.
func CheckTripDate(raw string, now time.Time, tz *time.Location) error {
	if tz == nil {
		tz = time.UTC
	}
	day, err := time.ParseInLocation(DateLayout, raw, tz)
	if err != nil {
		return fmt.Errorf("%w: date must be YYYY-MM-DD", ErrValidation)
	}
	now = now.In(tz)
	today := time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, tz)
	if day.Before(today) {
		return fmt.Errorf("%w: date %s is in the past", ErrValidation, raw)
	}
	return nil
}
