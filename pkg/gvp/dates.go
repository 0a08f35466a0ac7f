package gvp

import (
	"fmt"
	"strconv"
	"strings"
	"time"
)

type SchoolYear struct {
	StartYear int
	EndYear   int
	StartTime time.Time
}

// GetSchoolYear gets the current school year, or if on summer break, the
// school year that is about to end. School years start on the 1st of August
// here so that events planned over the summer land in the coming year.
func GetSchoolYear(now time.Time, loc *time.Location) SchoolYear {
	now = now.In(loc)
	year := now.Year()

	// encompasses the first semester
	if now.Month() >= time.August {
		return SchoolYear{
			StartYear: year,
			EndYear:   year + 1,
			StartTime: time.Date(year, time.August, 1, 0, 0, 0, 0, loc),
		}
	}

	// encompasses the second semester & summer break
	return SchoolYear{
		StartYear: year - 1,
		EndYear:   year,
		StartTime: time.Date(year-1, time.August, 1, 0, 0, 0, 0, loc),
	}
}

// YearOf returns the calendar year a month falls into within the school year.
func (y SchoolYear) YearOf(month time.Month) int {
	if month >= time.August {
		return y.StartYear
	}
	return y.EndYear
}

// parseHumanDate parses dates like "po 12.10." (weekday, day, month) the way
// the event calendar prints them. The weekday is optional, a year after the
// month is honored, otherwise the school year decides it. ok is false for a
// blank date.
func parseHumanDate(value string, year SchoolYear, loc *time.Location) (t time.Time, ok bool, err error) {
	fields := strings.Fields(value)
	if len(fields) == 0 {
		return time.Time{}, false, nil
	}
	if len(fields) > 2 {
		return time.Time{}, false, fmt.Errorf("unrecognized date %q", value)
	}

	parts := strings.Split(fields[len(fields)-1], ".")
	if len(parts) < 2 {
		return time.Time{}, false, fmt.Errorf("unrecognized date %q", value)
	}
	day, err := strconv.Atoi(parts[0])
	if err != nil {
		return time.Time{}, false, fmt.Errorf("parse day of %q: %w", value, err)
	}
	monthNo, err := strconv.Atoi(parts[1])
	if err != nil {
		return time.Time{}, false, fmt.Errorf("parse month of %q: %w", value, err)
	}
	if monthNo < 1 || monthNo > 12 || day < 1 || day > 31 {
		return time.Time{}, false, fmt.Errorf("date %q is out of range", value)
	}
	month := time.Month(monthNo)

	calendarYear := year.YearOf(month)
	if len(parts) > 2 && parts[2] != "" {
		calendarYear, err = strconv.Atoi(parts[2])
		if err != nil {
			return time.Time{}, false, fmt.Errorf("parse year of %q: %w", value, err)
		}
	}

	t = time.Date(calendarYear, month, day, 0, 0, 0, 0, loc)
	if t.Day() != day {
		return time.Time{}, false, fmt.Errorf("date %q does not exist", value)
	}
	return t, true, nil
}

// parseClock parses "HH:MM" into hours and minutes.
func parseClock(value string) (hour, minute int, err error) {
	t, err := time.Parse("15:04", strings.TrimSpace(value))
	if err != nil {
		return 0, 0, fmt.Errorf("unrecognized time %q", value)
	}
	return t.Hour(), t.Minute(), nil
}

// atClock moves day to the given wall clock time, which differs from adding
// a duration on days when the offset changes.
func atClock(day time.Time, hour, minute int) time.Time {
	return time.Date(day.Year(), day.Month(), day.Day(), hour, minute, 0, 0, day.Location())
}

// preliminaryMonth resolves the month picker of the calendar, where 1 is
// August and 12 is July of the school year.
func preliminaryMonth(index int, year SchoolYear, loc *time.Location) (time.Time, error) {
	if index < 1 || index > 12 {
		return time.Time{}, fmt.Errorf("preliminary month %d is out of range", index)
	}
	month := time.Month((index+6)%12 + 1)
	return time.Date(year.YearOf(month), month, 1, 0, 0, 0, 0, loc), nil
}
