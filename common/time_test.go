package common

import (
	"testing"
	"time"
)

func TestToDayKnownTimezone(t *testing.T) {
	day, err := ToDay("UTC")
	if err != nil {
		t.Fatal(err)
	}
	if _, err := time.Parse(DateFormat, day); err != nil {
		t.Errorf("ToDay returned %q, not a %s date", day, DateFormat)
	}
}

func TestToDayBadTimezone(t *testing.T) {
	if _, err := ToDay("Mars/Olympus"); err == nil {
		t.Error("expected an error for an unknown timezone")
	}
}

func TestWeekBounds(t *testing.T) {
	cases := []struct {
		day   string
		start string
		end   string
	}{
		{"2022-03-23", "2022-03-21", "2022-03-28"}, // wednesday
		{"2022-03-21", "2022-03-21", "2022-03-28"}, // monday
		{"2022-03-27", "2022-03-21", "2022-03-28"}, // sunday
	}

	for _, c := range cases {
		day, _ := time.Parse(DateFormat, c.day)
		start, end := WeekBounds(day)
		if start.Format(DateFormat) != c.start {
			t.Errorf("WeekBounds(%s) start = %s, want %s", c.day, start.Format(DateFormat), c.start)
		}
		if end.Format(DateFormat) != c.end {
			t.Errorf("WeekBounds(%s) end = %s, want %s", c.day, end.Format(DateFormat), c.end)
		}
	}
}
