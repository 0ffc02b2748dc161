// utils/dates.go
package utils

import (
	"fmt"
	"strings"
	"time"
)

const clockLayout = "3:04 PM"

func BeginningOfDay(t time.Time) time.Time {
	year, month, day := t.Date()
	return time.Date(year, month, day, 0, 0, 0, 0, t.Location())
}

func DaysBetween(start, end time.Time) int {
	start = BeginningOfDay(start)
	end = BeginningOfDay(end)
	return int(end.Sub(start).Hours() / 24)
}

// WeekdayName returns the weekday key used by WeekSchedule ("Monday").
func WeekdayName(t time.Time) string {
	return t.Weekday().String()
}

// ClockRange is a wall-clock interval in minutes from midnight.
type ClockRange struct {
	Start int
	End   int
}

// ParseClock parses "9:00 AM" into minutes from midnight.
func ParseClock(s string) (int, error) {
	t, err := time.Parse(clockLayout, strings.TrimSpace(s))
	if err != nil {
		return 0, fmt.Errorf("invalid clock time %q: %w", s, err)
	}
	return t.Hour()*60 + t.Minute(), nil
}

// ParseClockRange parses "9:00 AM - 5:00 PM" into a ClockRange.
func ParseClockRange(s string) (ClockRange, error) {
	parts := strings.Split(s, "-")
	if len(parts) != 2 {
		return ClockRange{}, fmt.Errorf("invalid time range %q", s)
	}
	start, err := ParseClock(parts[0])
	if err != nil {
		return ClockRange{}, err
	}
	end, err := ParseClock(parts[1])
	if err != nil {
		return ClockRange{}, err
	}
	if end <= start {
		return ClockRange{}, fmt.Errorf("time range %q ends before it starts", s)
	}
	return ClockRange{Start: start, End: end}, nil
}

// AtMinutes anchors minutes-from-midnight onto a calendar day.
func AtMinutes(day time.Time, minutes int) time.Time {
	return BeginningOfDay(day).Add(time.Duration(minutes) * time.Minute)
}

// FormatClock renders a timestamp back to "3:04 PM" form.
func FormatClock(t time.Time) string {
	return t.Format(clockLayout)
}
