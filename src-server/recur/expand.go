// The `recur` package turns recurring calendar items into concrete
// occurrence instances and collapses duplicate instances where a feed
// carries both a computed recurrence and an explicit override for the
// same day.
package recur

import (
	"fmt"
	"time"

	"github.com/xyedo/rrule"
)

const (
	// how far back from today the expansion horizon reaches
	windowBackDays = 60
	// how far ahead from today the expansion horizon reaches
	windowAheadDays = 180
)

// The bounded expansion horizon. Start is inclusive, End is exclusive.
type Window struct {
	Start time.Time
	End   time.Time
}

// Compute the expansion horizon relative to now: [today_midnight - 60d,
// today_midnight + 180d) with "today" taken in the given timezone.
func WindowAround(now time.Time, loc *time.Location) Window {
	local := now.In(loc)
	midnight := time.Date(local.Year(), local.Month(), local.Day(), 0, 0, 0, 0, loc)
	return Window{
		Start: midnight.AddDate(0, 0, -windowBackDays),
		End:   midnight.AddDate(0, 0, windowAheadDays),
	}
}

func (w Window) Contains(t time.Time) bool {
	return !t.Before(w.Start) && t.Before(w.End)
}

// Expand a recurrence rule into concrete occurrence anchors inside the
// window. Exception dates are excluded before materialization; an anchor
// matching an exception date-time is never emitted.
//
// A malformed rule is a parse failure the caller is expected to log and
// treat as a source-level error.
func Expand(rule string, dtstart time.Time, exDates []time.Time, w Window) ([]time.Time, error) {
	parsed, err := rrule.StrToRRule(rule)
	if err != nil {
		return nil, fmt.Errorf("recur.Expand: can't parse rrule %q: %w", rule, err)
	}

	var set rrule.Set
	set.RRule(parsed)
	set.DTStart(dtstart)
	for _, exDate := range exDates {
		set.ExDate(exDate)
	}

	anchors := make([]time.Time, 0)
	for _, anchor := range set.Between(w.Start, w.End, true) {
		// Between is inclusive on both ends; the window end is exclusive
		if !anchor.Before(w.End) {
			continue
		}
		anchors = append(anchors, anchor)
	}
	return anchors, nil
}
