// The `announce` package selects the events starting in a near-future
// window from the persisted per-source listings and posts one short
// message per event to each configured platform. Posting failures are
// logged, never retried; the sqlite history keeps a rerun on the same day
// from posting the same event twice.
package announce

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/uptrace/bun"

	"commcal/src-server/aggregate"
	"commcal/src-server/model"
	"commcal/src-server/source"
)

// the human-facing timestamp leading every message
const messageTimeLayout = "02.01.2006 15:04"

// Per message, the timestamp, separators and a shortened link take a
// fixed slice of the platform budget; only the title is elastic.
const reservedLength = 23 + 6 + 16

// One event due for announcement, with the source labeling it needs
type Candidate struct {
	SourceName  string
	SourceTitle string
	Website     string
	Event       model.Event
}

// Load each top-level source's persisted listing and select the events
// starting in [today+N, today+N+1) local days. A source without a listing
// contributes nothing; it was either never fetched or is empty.
func UpcomingEvents(dataDir string, sources []source.Source, daysAhead int, now time.Time, loc *time.Location) []Candidate {
	now = now.In(loc)
	today := time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, loc)
	timeMin := today.AddDate(0, 0, daysAhead)
	timeMax := today.AddDate(0, 0, daysAhead+1)

	candidates := make([]Candidate, 0)
	for i := range sources {
		src := &sources[i]
		events, err := aggregate.LoadSnapshot(aggregate.SnapshotPath(dataDir, src.Name))
		if err != nil {
			slog.Debug("no listing for source", "source", src.Name, "error", err)
			continue
		}

		for _, event := range events {
			start, err := time.ParseInLocation(model.TimeLayout, event.Start, loc)
			if err != nil {
				slog.Warn("listing entry has unparseable start", "source", src.Name, "start", event.Start)
				continue
			}
			if start.Before(timeMin) || !start.Before(timeMax) {
				continue
			}
			candidates = append(candidates, Candidate{
				SourceName:  src.Name,
				SourceTitle: src.Title,
				Website:     src.Website,
				Event:       event,
			})
		}
	}
	return candidates
}

// Render one candidate into "<start>: <title> @ <source title> <link>",
// ellipsizing the title so the whole message fits the platform limit. The
// link falls back from the event URL to the source website and may be
// absent entirely.
func FormatMessage(candidate *Candidate, limit int) string {
	start, err := candidate.Event.StartTime()
	if err != nil {
		return ""
	}

	title := candidate.Event.Title
	maxTitle := limit - reservedLength - len(candidate.SourceTitle)
	switch runes := []rune(title); {
	case maxTitle <= 3:
		// an oversized source title eats the whole budget; the final
		// clamp below keeps the message inside the limit
		title = "..."
	case len(runes) > maxTitle:
		title = string(runes[:maxTitle-3]) + "..."
	}

	link := candidate.Event.URL
	if link == "" {
		link = candidate.Website
	}

	message := fmt.Sprintf("%s: %s @ %s", start.Format(messageTimeLayout), title, candidate.SourceTitle)
	if link != "" {
		message += " " + link
	}
	if runes := []rune(message); len(runes) > limit {
		message = string(runes[:limit])
	}
	return message
}

type Announcer struct {
	db      *bun.DB
	posters []Poster
}

func NewAnnouncer(db *bun.DB, posters ...Poster) *Announcer {
	return &Announcer{
		db:      db,
		posters: posters,
	}
}

// Post every candidate to every platform, at most once each. A failure on
// one platform never blocks the others, and only successful posts enter
// the history.
func (a *Announcer) Announce(ctx context.Context, candidates []Candidate) {
	for i := range candidates {
		candidate := &candidates[i]
		for _, poster := range a.posters {
			message := FormatMessage(candidate, poster.Limit())
			if message == "" {
				continue
			}

			announcement := &model.Announcement{
				ID: model.AnnouncementID(
					candidate.SourceName,
					poster.Platform(),
					candidate.Event.Start,
					candidate.Event.Title),
				Source:   candidate.SourceName,
				Platform: poster.Platform(),
				Message:  message,
				PostedAt: time.Now().Unix(),
			}

			exists, err := announcement.Exists(ctx, a.db)
			if err != nil {
				slog.Warn("can't check announcement history", "platform", poster.Platform(), "error", err)
				continue
			}
			if exists {
				slog.Debug("already announced",
					"platform", poster.Platform(),
					"source", candidate.SourceName,
					"title", candidate.Event.Title)
				continue
			}

			if err := poster.Post(ctx, message); err != nil {
				slog.Error("can't post announcement", "platform", poster.Platform(), "error", err)
				continue
			}
			slog.Info("announcement posted", "platform", poster.Platform(), "length", len(message))

			if err := announcement.Insert(ctx, a.db); err != nil {
				slog.Warn("can't record announcement", "platform", poster.Platform(), "error", err)
			}
		}
	}
}
