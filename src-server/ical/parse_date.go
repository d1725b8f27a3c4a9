package ical

import (
	"fmt"
	"regexp"
	"strings"
	"time"
)

var (
	datePattern      = regexp.MustCompile(`^\d{8}$`)
	localTimePattern = regexp.MustCompile(`^\d{8}T\d{6}$`)
	utcTimePattern   = regexp.MustCompile(`^\d{8}T\d{6}Z$`)
)

// Split an unfolded content line into name, parameters and value. Example:
//
//	DTSTART;TZID=Europe/Berlin:20240101T100000
//
// -> "DTSTART", {"TZID": "Europe/Berlin"}, "20240101T100000"
func splitContentLine(line string) (string, map[string]string, string, error) {
	slice := strings.SplitN(line, ":", 2)
	if len(slice) != 2 {
		return "", nil, "", fmt.Errorf("must be splitable by ':', got %s", line)
	}

	params := make(map[string]string)
	nameAndParams := strings.Split(slice[0], ";")
	for _, param := range nameAndParams[1:] {
		if parts := strings.SplitN(param, "=", 2); len(parts) == 2 {
			params[strings.ToUpper(strings.TrimSpace(parts[0]))] = parts[1]
		}
	}

	name := strings.ToUpper(strings.TrimSpace(nameAndParams[0]))
	return name, params, strings.TrimSpace(slice[1]), nil
}

// Parse one iCalendar date/date-time value.
//
//   - `20240101` -> midnight in the fallback timezone, date-only
//   - `20240101T100000Z` -> UTC
//   - `20240101T100000` + TZID param -> that timezone
//   - `20240101T100000` without TZID -> the fallback timezone
//
// The returned bool reports whether the value was date-only (all-day).
func parseDate(params map[string]string, value string, loc *time.Location) (time.Time, bool, error) {
	switch {
	case datePattern.MatchString(value):
		result, err := time.ParseInLocation("20060102", value, loc)
		if err != nil {
			return time.Time{}, false, err
		}
		return result, true, nil
	case utcTimePattern.MatchString(value):
		result, err := time.Parse("20060102T150405Z", value)
		if err != nil {
			return time.Time{}, false, err
		}
		return result, false, nil
	case localTimePattern.MatchString(value):
		if tzid, ok := params["TZID"]; ok {
			location, err := time.LoadLocation(tzid)
			if err != nil {
				return time.Time{}, false, fmt.Errorf("invalid TZID: %w", err)
			}
			loc = location
		}
		result, err := time.ParseInLocation("20060102T150405", value, loc)
		if err != nil {
			return time.Time{}, false, err
		}
		return result, false, nil
	default:
		return time.Time{}, false, fmt.Errorf("unrecognized date format: %s", value)
	}
}

// Convert a timestamp into an iCalendar DATE or DATE-TIME property suffix,
// e.g. `;TZID=Europe/Berlin:20240101T100000` or `;VALUE=DATE:20240101`.
func formatDate(t time.Time, dateOnly bool, loc *time.Location) string {
	if dateOnly {
		return fmt.Sprintf(";VALUE=DATE:%s", t.In(loc).Format("20060102"))
	}
	return fmt.Sprintf(";TZID=%s:%s", loc.String(), t.In(loc).Format("20060102T150405"))
}
