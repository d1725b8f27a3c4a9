// The `model` package holds the canonical event every source maps into,
// plus the sqlite-backed announcement history.
package model

import (
	"fmt"
	"strings"
	"time"
)

// The second-precision format start/end are stored in. All times are
// expressed in the configured local timezone; no timezone suffix is
// carried, the zone is implicit.
const TimeLayout = "2006-01-02T15:04:05"

// The canonical normalized event. Optional fields are omitted from the
// JSON output instead of being written as empty strings.
type Event struct {
	Title       string `json:"title"`
	Description string `json:"description,omitempty"`
	Location    string `json:"location,omitempty"`
	URL         string `json:"url,omitempty"`
	Start       string `json:"start"`
	End         string `json:"end"`
	AllDay      bool   `json:"allDay,omitempty"`
}

// Parse the start timestamp as a wall-clock time
func (e *Event) StartTime() (time.Time, error) {
	t, err := time.Parse(TimeLayout, e.Start)
	if err != nil {
		return time.Time{}, fmt.Errorf("(*Event).StartTime: %w", err)
	}
	return t, nil
}

// Parse the end timestamp as a wall-clock time
func (e *Event) EndTime() (time.Time, error) {
	t, err := time.Parse(TimeLayout, e.End)
	if err != nil {
		return time.Time{}, fmt.Errorf("(*Event).EndTime: %w", err)
	}
	return t, nil
}

// The calendar date of the start, used for date-grained override
// matching. An override may shift the time-of-day, never the day.
func (e *Event) StartDay() (string, error) {
	t, err := e.StartTime()
	if err != nil {
		return "", err
	}
	return t.Format(time.DateOnly), nil
}

func (e *Event) Validate() error {
	switch {
	case strings.TrimSpace(e.Title) == "":
		return fmt.Errorf("(*Event).Validate: title is blank")
	}
	start, err := e.StartTime()
	if err != nil {
		return fmt.Errorf("(*Event).Validate: %w", err)
	}
	end, err := e.EndTime()
	if err != nil {
		return fmt.Errorf("(*Event).Validate: %w", err)
	}
	if end.Before(start) {
		return fmt.Errorf("(*Event).Validate: end is before start")
	}
	return nil
}
