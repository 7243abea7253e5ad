package wms

import (
	"regexp"
	"strconv"
	"strings"
	"time"

	"github.com/pkg/errors"
)

// DateLayout is the format of every date produced by ParseTimeDimension.
const DateLayout = "2006-01-02"

// ErrUnsupportedPeriod is returned for an interval step that is not a whole
// number of days, months or years.
var ErrUnsupportedPeriod = errors.New("unsupported time period")

var dateLayouts = []string{
	DateLayout,
	"2006-01-02T15:04:05Z",
	"2006-01-02T15:04:05.999999999Z",
	time.RFC3339,
}

var periodPattern = regexp.MustCompile(`^P([1-9][0-9]*)([DMY])$`)

// Period is a step between two dates of a time dimension.
type Period struct {
	N    int
	Unit byte // 'D', 'M' or 'Y'
}

// ParsePeriod accepts P<n>D, P<n>M and P<n>Y.
func ParsePeriod(s string) (Period, error) {
	match := periodPattern.FindStringSubmatch(strings.TrimSpace(s))
	if match == nil {
		return Period{}, errors.Wrapf(ErrUnsupportedPeriod, "%q", s)
	}
	n, err := strconv.Atoi(match[1])
	if err != nil {
		return Period{}, errors.Wrapf(ErrUnsupportedPeriod, "%q", s)
	}
	return Period{N: n, Unit: match[2][0]}, nil
}

// ParseDate parses a dimension value and truncates it to the day.
func ParseDate(s string) (time.Time, error) {
	s = strings.TrimSpace(s)
	for _, layout := range dateLayouts {
		if t, err := time.Parse(layout, s); err == nil {
			return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, time.UTC), nil
		}
	}
	return time.Time{}, errors.Errorf("could not parse date %q", s)
}

// ParseTimeDimension expands a comma separated list of start/end/period
// intervals into every date they cover, start and end included. A value
// without slashes is a single date.
func ParseTimeDimension(dimension string) ([]string, error) {
	dates := []string{}
	if strings.TrimSpace(dimension) == "" {
		return dates, nil
	}

	for _, interval := range strings.Split(dimension, ",") {
		interval = strings.TrimSpace(interval)
		if interval == "" {
			continue
		}

		elements := strings.Split(interval, "/")
		switch len(elements) {
		case 1:
			date, err := ParseDate(elements[0])
			if err != nil {
				return nil, err
			}
			dates = append(dates, date.Format(DateLayout))
		case 3:
			start, err := ParseDate(elements[0])
			if err != nil {
				return nil, err
			}
			end, err := ParseDate(elements[1])
			if err != nil {
				return nil, err
			}
			period, err := ParsePeriod(elements[2])
			if err != nil {
				return nil, err
			}
			dates = append(dates, expand(start, end, period)...)
		default:
			return nil, errors.Errorf("malformed interval %q", interval)
		}
	}

	return dates, nil
}

// expand follows recurrence rule semantics: monthly and yearly steps keep the
// start day and skip months that do not have it.
func expand(start, end time.Time, period Period) []string {
	var dates []string
	for i := 0; ; i++ {
		var date time.Time
		switch period.Unit {
		case 'D':
			date = start.AddDate(0, 0, i*period.N)
		case 'M':
			date = time.Date(start.Year(), start.Month()+time.Month(i*period.N), 1, 0, 0, 0, 0, time.UTC)
		case 'Y':
			date = time.Date(start.Year()+i*period.N, start.Month(), 1, 0, 0, 0, 0, time.UTC)
		}
		if date.After(end) {
			return dates
		}
		if period.Unit == 'D' {
			dates = append(dates, date.Format(DateLayout))
			continue
		}

		if start.Day() > daysIn(date.Year(), date.Month()) {
			continue
		}
		date = time.Date(date.Year(), date.Month(), start.Day(), 0, 0, 0, 0, time.UTC)
		if date.After(end) {
			return dates
		}
		dates = append(dates, date.Format(DateLayout))
	}
}

func daysIn(year int, month time.Month) int {
	return time.Date(year, month+1, 0, 0, 0, 0, 0, time.UTC).Day()
}
