package recur

import (
	"commcal/src-server/model"
)

// One concrete instance of a calendar item, tagged with enough identity to
// recognize "this occurrence is an override of that occurrence".
type Occurrence struct {
	// stable key of the parent calendar item, e.g. an iCalendar UID;
	// non-recurring records get a unique identity each
	Identity string
	// true when the record carries an explicit override marker
	// (RECURRENCE-ID) instead of being a computed recurrence instance
	IsOverride bool
	// the canonical payload for this instance
	Event model.Event
}

// Collapse same-day duplicates for the same identity into a single
// instance, preferring the override.
//
// Matching is date-grained on the start date, not the full timestamp: an
// override usually shifts the time-of-day, so it would never match its
// base instance otherwise. When a match is found and the new occurrence is
// the override, the kept one is removed and the override appended; when
// the new occurrence is not an override, the kept one stays. Two overrides
// colliding on the same (identity, date) resolve last-write-wins, since an
// override always replaces whatever is kept for its day.
//
// The fold is pure: the input slice is never mutated, non-conflicting
// occurrences keep their insertion order, and running Resolve on its own
// output is a no-op.
func Resolve(occurrences []Occurrence) []Occurrence {
	kept := make([]Occurrence, 0, len(occurrences))

	for _, next := range occurrences {
		nextDay, err := next.Event.StartDay()
		if err != nil {
			// unparseable start; nothing to match against, keep as-is
			kept = append(kept, next)
			continue
		}

		matched := -1
		for i := range kept {
			if kept[i].Identity != next.Identity {
				continue
			}
			keptDay, err := kept[i].Event.StartDay()
			if err != nil || keptDay != nextDay {
				continue
			}
			matched = i
			break
		}

		switch {
		case matched == -1:
			kept = append(kept, next)
		case next.IsOverride:
			// override wins: drop the kept instance, append the override
			kept = append(kept[:matched:matched], kept[matched+1:]...)
			kept = append(kept, next)
		default:
			// the kept one is authoritative, discard the new one
		}
	}

	return kept
}

// Extract the payload portion of resolved occurrences, in the order kept.
func Events(occurrences []Occurrence) []model.Event {
	events := make([]model.Event, 0, len(occurrences))
	for _, occurrence := range occurrences {
		events = append(events, occurrence.Event)
	}
	return events
}
