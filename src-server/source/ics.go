package source

import (
	"bytes"
	"context"
	"fmt"
	"log/slog"

	"commcal/src-server/ical"
	"commcal/src-server/normalize"
	"commcal/src-server/recur"
)

// Fetch an iCalendar feed and turn every VEVENT into occurrence instances:
// recurring events are expanded inside the window (minus exception dates),
// override events keep their RECURRENCE-ID marker so the resolver can
// collapse them against the expanded instances.
func (f *Fetcher) ICS(ctx context.Context, url string) ([]recur.Occurrence, error) {
	resp, err := f.client.R().SetContext(ctx).Get(url)
	if err != nil {
		return nil, &FetchError{URL: url, Err: err}
	}
	if resp.IsError() {
		return nil, &FetchError{URL: url, Err: fmt.Errorf("unexpected status %s", resp.Status())}
	}

	cal, calErr := ical.FromReader(bytes.NewReader(resp.Body()), f.loc)
	if calErr != nil {
		return nil, &ParseError{Context: url, Err: calErr}
	}

	occurrences := make([]recur.Occurrence, 0)

	for _, ev := range cal.GetEvents() {
		ev := ev
		base := normalize.RawEvent{
			Title:       ev.GetSummary(),
			Description: ev.GetDescription(),
			Location:    ev.GetLocation(),
			URL:         ev.GetURL(),
			AllDay:      ev.IsAllDay(),
		}

		if rule := ev.GetRRule(); rule != "" && !ev.IsOverride() {
			anchors, err := recur.Expand(rule, ev.GetStartDate(), ev.GetExDates(), f.window)
			if err != nil {
				return nil, &ParseError{Context: url, Err: err}
			}
			duration := ev.GetEndDate().Sub(ev.GetStartDate())
			for _, anchor := range anchors {
				raw := base
				raw.Start = anchor
				raw.End = anchor.Add(duration)
				event, err := normalize.Normalize(raw, f.loc)
				if err != nil {
					slog.Warn("skipping recurrence instance", "url", url, "uid", ev.GetID(), "error", err)
					continue
				}
				occurrences = append(occurrences, recur.Occurrence{
					Identity: ev.GetID(),
					Event:    event,
				})
			}
			continue
		}

		raw := base
		raw.Start = ev.GetStartDate()
		raw.End = ev.GetEndDate()
		event, err := normalize.Normalize(raw, f.loc)
		if err != nil {
			slog.Warn("skipping event", "url", url, "uid", ev.GetID(), "error", err)
			continue
		}
		occurrences = append(occurrences, recur.Occurrence{
			Identity:   ev.GetID(),
			IsOverride: ev.IsOverride(),
			Event:      event,
		})
	}

	return occurrences, nil
}
