package announce_test

import (
	"context"
	"database/sql"
	"fmt"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
	"github.com/uptrace/bun"
	"github.com/uptrace/bun/dialect/sqlitedialect"
	"github.com/uptrace/bun/driver/sqliteshim"

	"commcal/src-server/aggregate"
	"commcal/src-server/announce"
	"commcal/src-server/model"
	"commcal/src-server/source"
)

func candidate(title, start, url string) announce.Candidate {
	return announce.Candidate{
		SourceName:  "one-club",
		SourceTitle: "One Club",
		Website:     "https://example.org",
		Event: model.Event{
			Title: title,
			URL:   url,
			Start: start,
			End:   start,
		},
	}
}

func TestFormatMessage(t *testing.T) {
	c := candidate("Concert", "2024-06-01T19:00:00", "https://example.org/e/1")
	message := announce.FormatMessage(&c, 500)
	require.Equal(t, "01.06.2024 19:00: Concert @ One Club https://example.org/e/1", message)
}

func TestFormatMessageWebsiteFallback(t *testing.T) {
	c := candidate("Concert", "2024-06-01T19:00:00", "")
	message := announce.FormatMessage(&c, 500)
	require.Equal(t, "01.06.2024 19:00: Concert @ One Club https://example.org", message)
}

func TestFormatMessageNoLink(t *testing.T) {
	c := candidate("Concert", "2024-06-01T19:00:00", "")
	c.Website = ""
	message := announce.FormatMessage(&c, 500)
	require.Equal(t, "01.06.2024 19:00: Concert @ One Club", message)
}

func TestFormatMessageTruncatesTitle(t *testing.T) {
	longTitle := strings.Repeat("x", 100)
	c := candidate(longTitle, "2024-06-01T19:00:00", "https://e.org/1")
	message := announce.FormatMessage(&c, 140)

	// budget: 140 total - 23 link - 6 separators - 16 timestamp
	// - 8 source title = 87, minus 3 for the ellipsis
	require.Contains(t, message, strings.Repeat("x", 84)+"...")
	require.NotContains(t, message, strings.Repeat("x", 85))
	require.LessOrEqual(t, len(message), 140)
}

func TestFormatMessageOversizedSourceTitle(t *testing.T) {
	c := candidate(strings.Repeat("x", 50), "2024-06-01T19:00:00", "https://e.org/1")
	c.SourceTitle = strings.Repeat("s", 120)

	// the source title alone exceeds the budget; the message must still
	// come out, capped at the limit
	message := announce.FormatMessage(&c, 140)
	require.NotEmpty(t, message)
	require.LessOrEqual(t, len([]rune(message)), 140)
}

func TestFormatMessageUnparseableStart(t *testing.T) {
	c := candidate("Concert", "someday", "")
	require.Empty(t, announce.FormatMessage(&c, 500))
}

func TestUpcomingEvents(t *testing.T) {
	dataDir := t.TempDir()
	loc := time.UTC
	now := time.Date(2024, 5, 31, 15, 30, 0, 0, loc)

	require.NoError(t, aggregate.WriteSnapshot(aggregate.SnapshotPath(dataDir, "one-club"), []model.Event{
		{Title: "Tomorrow Evening", Start: "2024-06-01T19:00:00", End: "2024-06-01T21:00:00"},
		{Title: "Tomorrow Midnight", Start: "2024-06-01T00:00:00", End: "2024-06-01T00:00:00"},
		{Title: "Today", Start: "2024-05-31T19:00:00", End: "2024-05-31T20:00:00"},
		{Title: "Day After", Start: "2024-06-02T00:00:00", End: "2024-06-02T00:00:00"},
	}))

	sources := []source.Source{
		{Name: "one-club", Title: "One Club", Spec: source.ICS{URL: "https://example.org/x.ics"}},
		{Name: "no-listing", Title: "No Listing", Spec: source.ICS{URL: "https://example.org/y.ics"}},
	}

	candidates := announce.UpcomingEvents(dataDir, sources, 1, now, loc)
	require.Len(t, candidates, 2)
	require.Equal(t, "Tomorrow Evening", candidates[0].Event.Title)
	require.Equal(t, "Tomorrow Midnight", candidates[1].Event.Title)
	require.Equal(t, "One Club", candidates[0].SourceTitle)
}

type fakePoster struct {
	platform string
	messages []string
	fail     bool
}

func (p *fakePoster) Platform() string { return p.platform }
func (p *fakePoster) Limit() int       { return 500 }
func (p *fakePoster) Post(_ context.Context, message string) error {
	if p.fail {
		return fmt.Errorf("platform unavailable")
	}
	p.messages = append(p.messages, message)
	return nil
}

func testDB(t *testing.T) *bun.DB {
	t.Helper()
	db, err := sql.Open(sqliteshim.ShimName, ":memory:")
	require.NoError(t, err)
	bundb := bun.NewDB(db, sqlitedialect.New())
	require.NoError(t, model.CreateSchema(context.Background(), bundb))
	return bundb
}

func TestAnnouncerPostsOnce(t *testing.T) {
	bundb := testDB(t)
	poster := &fakePoster{platform: "test"}
	announcer := announce.NewAnnouncer(bundb, poster)

	candidates := []announce.Candidate{candidate("Concert", "2024-06-01T19:00:00", "https://e.org/1")}
	announcer.Announce(context.Background(), candidates)
	require.Len(t, poster.messages, 1)

	// a rerun the same day must not repost
	announcer.Announce(context.Background(), candidates)
	require.Len(t, poster.messages, 1)
}

func TestAnnouncerFailureNotRecorded(t *testing.T) {
	bundb := testDB(t)
	poster := &fakePoster{platform: "test", fail: true}
	announcer := announce.NewAnnouncer(bundb, poster)

	candidates := []announce.Candidate{candidate("Concert", "2024-06-01T19:00:00", "https://e.org/1")}
	announcer.Announce(context.Background(), candidates)
	require.Empty(t, poster.messages)

	// the failed post never entered the history, so a later run tries again
	poster.fail = false
	announcer.Announce(context.Background(), candidates)
	require.Len(t, poster.messages, 1)
}

func TestAnnouncerIndependentPlatforms(t *testing.T) {
	bundb := testDB(t)
	broken := &fakePoster{platform: "broken", fail: true}
	working := &fakePoster{platform: "working"}
	announcer := announce.NewAnnouncer(bundb, broken, working)

	candidates := []announce.Candidate{candidate("Concert", "2024-06-01T19:00:00", "https://e.org/1")}
	announcer.Announce(context.Background(), candidates)
	require.Empty(t, broken.messages)
	require.Len(t, working.messages, 1)
}
