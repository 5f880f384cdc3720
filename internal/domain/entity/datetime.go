package entity

import (
	"errors"
	"time"
)

// Wire formats for dates and wall-clock times
const (
	DateLayout  = "2006-01-02"
	ClockLayout = "15:04"
)

var (
	ErrInvalidDate  = errors.New("invalid date format, use YYYY-MM-DD")
	ErrInvalidClock = errors.New("invalid time format, use HH:MM")
)

// ParseDate validates a YYYY-MM-DD string
func ParseDate(date string) (time.Time, error) {
	t, err := time.Parse(DateLayout, date)
	if err != nil || t.Format(DateLayout) != date {
		return time.Time{}, ErrInvalidDate
	}
	return t, nil
}

// ParseClock validates a 24-hour HH:MM string
func ParseClock(clock string) (time.Time, error) {
	t, err := time.Parse(ClockLayout, clock)
	if err != nil || t.Format(ClockLayout) != clock {
		return time.Time{}, ErrInvalidClock
	}
	return t, nil
}

// CombineDateClock returns the instant a date and time denote in loc
func CombineDateClock(date, clock string, loc *time.Location) (time.Time, error) {
	if _, err := ParseDate(date); err != nil {
		return time.Time{}, err
	}
	if _, err := ParseClock(clock); err != nil {
		return time.Time{}, err
	}
	return time.ParseInLocation(DateLayout+" "+ClockLayout, date+" "+clock, loc)
}
