package utils

import (
	"fmt"
	"time"
)

const dateOnlyLayout = "2006-01-02"

// DateRange is an inclusive reporting window
type DateRange struct {
	Start time.Time
	End   time.Time
}

// DateRangeError reports a malformed or inverted range parameter
type DateRangeError struct {
	Param   string
	Message string
}

func (e *DateRangeError) Error() string {
	return e.Message
}

// ParseDateRange builds a range from the raw start and end parameters.
// It returns nil when either bound is missing. Values may be RFC3339
// timestamps or YYYY-MM-DD dates in loc; a date-only end bound covers the
// whole day.
func ParseDateRange(start, end string, loc *time.Location) (*DateRange, error) {
	if start == "" || end == "" {
		if err := checkBound("start", start, loc); err != nil {
			return nil, err
		}
		if err := checkBound("end", end, loc); err != nil {
			return nil, err
		}
		return nil, nil
	}

	from, _, err := parseBound("start", start, loc)
	if err != nil {
		return nil, err
	}
	to, dateOnly, err := parseBound("end", end, loc)
	if err != nil {
		return nil, err
	}
	if dateOnly {
		to = to.AddDate(0, 0, 1).Add(-time.Nanosecond)
	}
	if to.Before(from) {
		return nil, &DateRangeError{Param: "end", Message: "end date must not be before start date"}
	}
	return &DateRange{Start: from, End: to}, nil
}

// DayRange returns local midnight through 23:59:59.999 of the day containing now
func DayRange(now time.Time) DateRange {
	y, m, d := now.Date()
	start := time.Date(y, m, d, 0, 0, 0, 0, now.Location())
	return DateRange{
		Start: start,
		End:   start.AddDate(0, 0, 1).Add(-time.Millisecond),
	}
}

// UTC returns the range with both bounds converted to UTC
func (r DateRange) UTC() DateRange {
	return DateRange{Start: r.Start.UTC(), End: r.End.UTC()}
}

func checkBound(param, value string, loc *time.Location) error {
	if value == "" {
		return nil
	}
	_, _, err := parseBound(param, value, loc)
	return err
}

func parseBound(param, value string, loc *time.Location) (time.Time, bool, error) {
	if t, err := time.Parse(time.RFC3339Nano, value); err == nil {
		return t, false, nil
	}
	if t, err := time.ParseInLocation(dateOnlyLayout, value, loc); err == nil {
		return t, true, nil
	}
	return time.Time{}, false, &DateRangeError{
		Param:   param,
		Message: fmt.Sprintf("invalid %s date %q: use YYYY-MM-DD or RFC3339", param, value),
	}
}
