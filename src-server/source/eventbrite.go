package source

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"

	"commcal/src-server/normalize"
	"commcal/src-server/recur"
)

const eventbriteAPI = "https://www.eventbriteapi.com/v3"

// the naive local-time format the Eventbrite API uses
const eventbriteTimeLayout = "2006-01-02T15:04:05"

type eventbriteEvent struct {
	ID   string `json:"id"`
	Name struct {
		Text string `json:"text"`
	} `json:"name"`
	Description struct {
		Text string `json:"text"`
	} `json:"description"`
	Start struct {
		Local string `json:"local"`
	} `json:"start"`
	End struct {
		Local string `json:"local"`
	} `json:"end"`
	URL     string `json:"url"`
	VenueID string `json:"venue_id"`
}

type eventbritePage struct {
	Events     []eventbriteEvent `json:"events"`
	Pagination struct {
		HasMoreItems bool   `json:"has_more_items"`
		Continuation string `json:"continuation"`
	} `json:"pagination"`
}

type eventbriteVenue struct {
	Name    string `json:"name"`
	Address struct {
		Address1   string `json:"address_1"`
		PostalCode string `json:"postal_code"`
		City       string `json:"city"`
	} `json:"address"`
}

// Fetch all upcoming events of one Eventbrite organizer. Venue lookups are
// cached per call since an organizer usually reuses a handful of venues.
func (f *Fetcher) Eventbrite(ctx context.Context, organizer string) ([]recur.Occurrence, error) {
	if f.eventbriteToken == "" {
		return nil, &FetchError{URL: eventbriteAPI, Err: fmt.Errorf("no eventbrite token configured")}
	}

	occurrences := make([]recur.Occurrence, 0)
	venues := make(map[string]string)
	continuation := ""

	for {
		var page eventbritePage
		req := f.client.R().
			SetContext(ctx).
			SetAuthToken(f.eventbriteToken).
			SetQueryParam("status", "live").
			SetQueryParam("order_by", "start_asc").
			SetResult(&page)
		if continuation != "" {
			req.SetQueryParam("continuation", continuation)
		}

		url := fmt.Sprintf("%s/organizers/%s/events/", eventbriteAPI, organizer)
		resp, err := req.Get(url)
		if err != nil {
			return nil, &FetchError{URL: url, Err: err}
		}
		if resp.IsError() {
			return nil, &FetchError{URL: url, Err: fmt.Errorf("unexpected status %s", resp.Status())}
		}

		for _, apiEvent := range page.Events {
			raw := normalize.RawEvent{
				Title:       apiEvent.Name.Text,
				Description: apiEvent.Description.Text,
				URL:         apiEvent.URL,
				Location:    f.eventbriteVenue(ctx, apiEvent.VenueID, venues),
			}

			// the API reports naive venue-local times; treat them as
			// already local, records without a parseable start are dropped
			start, err := time.ParseInLocation(eventbriteTimeLayout, apiEvent.Start.Local, f.loc)
			if err != nil {
				slog.Warn("skipping eventbrite event without parseable start",
					"organizer", organizer, "event", apiEvent.ID, "error", err)
				continue
			}
			raw.Start = start
			if end, err := time.ParseInLocation(eventbriteTimeLayout, apiEvent.End.Local, f.loc); err == nil {
				raw.End = end
			}

			event, err := normalize.Normalize(raw, f.loc)
			if err != nil {
				slog.Warn("skipping eventbrite event", "organizer", organizer, "event", apiEvent.ID, "error", err)
				continue
			}
			occurrences = append(occurrences, recur.Occurrence{
				Identity: uuid.NewString(),
				Event:    event,
			})
		}

		if !page.Pagination.HasMoreItems || page.Pagination.Continuation == "" {
			break
		}
		continuation = page.Pagination.Continuation
	}

	return occurrences, nil
}

// Resolve a venue id into a display string, through the per-call cache. A
// failed venue lookup degrades to "no location", never fails the source.
func (f *Fetcher) eventbriteVenue(ctx context.Context, venueID string, cache map[string]string) string {
	if venueID == "" {
		return ""
	}
	if cached, ok := cache[venueID]; ok {
		return cached
	}

	var venue eventbriteVenue
	resp, err := f.client.R().
		SetContext(ctx).
		SetAuthToken(f.eventbriteToken).
		SetResult(&venue).
		Get(fmt.Sprintf("%s/venues/%s/", eventbriteAPI, venueID))
	if err != nil || resp.IsError() {
		slog.Warn("can't resolve eventbrite venue", "venue", venueID, "error", err)
		cache[venueID] = ""
		return ""
	}

	location := fmt.Sprintf("%s, %s, %s %s",
		venue.Name, venue.Address.Address1, venue.Address.PostalCode, venue.Address.City)
	cache[venueID] = location
	return location
}
