// The `normalize` package maps source-specific raw records into the
// canonical event model: timezone conversion into the configured local
// timezone, all-day midnight semantics, end-date defaulting and iCalendar
// TEXT unescaping.
package normalize

import (
	"fmt"
	"strings"
	"time"

	"commcal/src-server/ical"
	"commcal/src-server/model"
)

// A partially-populated record as emitted by a source adapter. Timestamps
// carry their own location: values with explicit timezone information were
// parsed into it, naive values were parsed in the configured local
// timezone by the adapter.
type RawEvent struct {
	Title       string
	Description string
	Location    string
	URL         string

	Start  time.Time // required
	End    time.Time // zero value means "no explicit end"
	AllDay bool
}

// A normalized record that is missing required fields or breaks the
// start/end invariant. The enclosing adapter call drops the single record
// and moves on; it never aborts the whole source.
type ValidationError struct {
	Field  string
	Reason string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("invalid event: %s %s", e.Field, e.Reason)
}

// Map one raw record into the canonical event model.
//
//   - start/end are converted into loc and formatted with second precision,
//     no timezone suffix
//   - all-day records use midnight-to-midnight date semantics
//   - a missing end defaults to the start
//   - text fields are unescaped from the iCalendar TEXT encoding
func Normalize(raw RawEvent, loc *time.Location) (model.Event, error) {
	title := strings.TrimSpace(ical.UnescapeText(raw.Title))
	if title == "" {
		return model.Event{}, &ValidationError{Field: "title", Reason: "is blank"}
	}
	if raw.Start.IsZero() {
		return model.Event{}, &ValidationError{Field: "start", Reason: "is missing"}
	}

	start := raw.Start.In(loc)
	end := raw.End
	if end.IsZero() {
		end = raw.Start
	}
	end = end.In(loc)

	if raw.AllDay {
		start = midnight(start, loc)
		end = midnight(end, loc)
	}
	if end.Before(start) {
		return model.Event{}, &ValidationError{Field: "end", Reason: "is before start"}
	}

	return model.Event{
		Title:       title,
		Description: ical.UnescapeText(raw.Description),
		Location:    ical.UnescapeText(raw.Location),
		URL:         strings.TrimSpace(ical.UnescapeText(raw.URL)),
		Start:       start.Format(model.TimeLayout),
		End:         end.Format(model.TimeLayout),
		AllDay:      raw.AllDay,
	}, nil
}

func midnight(t time.Time, loc *time.Location) time.Time {
	t = t.In(loc)
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, loc)
}
