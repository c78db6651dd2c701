package report

import (
	"fmt"
	"strings"
	"time"
)

type Period string

const (
	PeriodDay   Period = "day"
	PeriodWeek  Period = "week"
	PeriodMonth Period = "month"
	PeriodYear  Period = "year"
)

// ParsePeriod accepts day, week, month or year; empty means day.
func ParsePeriod(raw string) (Period, error) {
	switch p := Period(strings.ToLower(strings.TrimSpace(raw))); p {
	case "":
		return PeriodDay, nil
	case PeriodDay, PeriodWeek, PeriodMonth, PeriodYear:
		return p, nil
	default:
		return "", fmt.Errorf("unknown period %q", raw)
	}
}

// LoadLocation resolves an IANA zone name, using UTC when it is unknown.
func LoadLocation(tz string) *time.Location {
	loc, err := time.LoadLocation(strings.TrimSpace(tz))
	if err != nil || tz == "" {
		return time.UTC
	}
	return loc
}

func startOfDay(t time.Time) time.Time {
	y, m, d := t.Date()
	return time.Date(y, m, d, 0, 0, 0, 0, t.Location())
}

// Window returns the [from, to) range of the period containing now, in now's location.
// Weeks start on Sunday.
func Window(p Period, now time.Time) (time.Time, time.Time) {
	today := startOfDay(now)
	switch p {
	case PeriodWeek:
		from := today.AddDate(0, 0, -int(today.Weekday()))
		return from, from.AddDate(0, 0, 7)
	case PeriodMonth:
		from := time.Date(today.Year(), today.Month(), 1, 0, 0, 0, 0, today.Location())
		return from, from.AddDate(0, 1, 0)
	case PeriodYear:
		from := time.Date(today.Year(), time.January, 1, 0, 0, 0, 0, today.Location())
		return from, from.AddDate(1, 0, 0)
	default:
		return today, today.AddDate(0, 0, 1)
	}
}

// Days is the divisor used for per day averages of the period starting at from.
func Days(p Period, from time.Time) int {
	switch p {
	case PeriodWeek:
		return 7
	case PeriodMonth:
		return from.AddDate(0, 1, -1).Day()
	case PeriodYear:
		return 365
	default:
		return 1
	}
}
