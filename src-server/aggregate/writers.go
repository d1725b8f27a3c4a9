package aggregate

import (
	"encoding/json"
	"fmt"
	"path/filepath"
	"time"

	"commcal/src-server/ical"
	"commcal/src-server/model"
)

const (
	manifestFilename = "_sources.json"
	combinedFilename = "all.ics"
	prodID           = "-//commcal//community calendar//EN"
)

// Write the _sources.json manifest, one entry per top-level source in
// declaration order.
func WriteManifest(dataDir string, entries []ManifestEntry) error {
	raw, err := json.MarshalIndent(entries, "", "  ")
	if err != nil {
		return &PersistenceError{Path: manifestFilename, Err: err}
	}
	return writeFileAtomic(filepath.Join(dataDir, manifestFilename), raw)
}

// Regenerate all.ics from the merged event list. Events that don't
// survive the round-trip into the iCalendar model are skipped, not fatal.
func WriteCombinedIcal(dataDir, calName string, events []model.Event, loc *time.Location) error {
	cal := ical.NewCalendar()
	cal.SetProdID(prodID)
	cal.SetName(calName)

	for i := range events {
		icalEvent, err := combinedIcalEvent(&events[i], loc)
		if err != nil {
			return fmt.Errorf("WriteCombinedIcal: %w", err)
		}
		if err := cal.AddEvent(icalEvent); err != nil {
			return fmt.Errorf("WriteCombinedIcal: %w", err)
		}
	}

	payload, icalErr := cal.ToIcal(loc)
	if icalErr != nil {
		return fmt.Errorf("WriteCombinedIcal: %w", icalErr)
	}
	return writeFileAtomic(filepath.Join(dataDir, combinedFilename), []byte(payload))
}

func combinedIcalEvent(event *model.Event, loc *time.Location) (ical.Event, error) {
	start, err := time.ParseInLocation(model.TimeLayout, event.Start, loc)
	if err != nil {
		return ical.Event{}, err
	}
	end, err := time.ParseInLocation(model.TimeLayout, event.End, loc)
	if err != nil {
		return ical.Event{}, err
	}

	icalEvent := ical.NewEvent()
	icalEvent.
		SetSummary(event.Title).
		SetDescription(event.Description).
		SetLocation(event.Location).
		SetURL(event.URL).
		SetStartDate(start).
		SetEndDate(end).
		SetAllDay(event.AllDay)
	return icalEvent, nil
}
