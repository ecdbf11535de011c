package timezone

import (
	"time"
	_ "time/tzdata"
)

const (
	DefaultTimezone = "UTC"
	DateLayout      = "2006-01-02"
	ClockLayout     = "15:04"
)

func IsValid(tz string) bool {
	if tz == "" {
		return false
	}
	_, err := time.LoadLocation(tz)
	return err == nil
}

func Location(tz string) *time.Location {
	if IsValid(tz) {
		if loc, err := time.LoadLocation(tz); err == nil {
			return loc
		}
	}

	loc, _ := time.LoadLocation(DefaultTimezone)
	return loc
}

func NowIn(tz string) time.Time {
	return time.Now().In(Location(tz))
}

// Today formats the calendar date of now in tz.
func Today(tz string, now time.Time) string {
	return now.In(Location(tz)).Format(DateLayout)
}

func IsValidDate(s string) bool {
	_, err := time.Parse(DateLayout, s)
	return err == nil
}

func IsValidClock(s string) bool {
	_, err := time.Parse(ClockLayout, s)
	return err == nil
}
