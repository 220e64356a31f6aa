package common

import (
	"strings"
	"time"
)

const DateFormat = "2006-01-02"

func NowWithLocation(tz string) (*time.Time, error) {
	loc, err := time.LoadLocation(strings.TrimSpace(tz))
	if err != nil {
		return nil, err
	}

	n := time.Now().In(loc)

	return &n, nil
}

func ToDay(tz string) (string, error) {
	n, err := NowWithLocation(tz)
	if err != nil {
		return "", err
	}

	return n.Format(DateFormat), nil
}

// DayBounds returns midnight of the given day and midnight of the next day.
func DayBounds(day time.Time) (time.Time, time.Time) {
	start := time.Date(day.Year(), day.Month(), day.Day(), 0, 0, 0, 0, day.Location())
	return start, start.AddDate(0, 0, 1)
}

// WeekBounds returns midnight of the Monday of the week containing day and
// midnight of the following Monday.
func WeekBounds(day time.Time) (time.Time, time.Time) {
	start, _ := DayBounds(day)
	weekday := int(start.Weekday())
	if weekday == 0 {
		weekday = 7
	}
	start = start.AddDate(0, 0, 1-weekday)
	return start, start.AddDate(0, 0, 7)
}
