// The `aggregate` package drives one pipeline run: fan out over the
// configured sources, fall back to cached snapshots for unreachable ones,
// merge everything into one combined event set and write the combined
// artifacts. A single broken source never aborts the run.
package aggregate

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"time"

	"commcal/src-server/metric"
	"commcal/src-server/model"
	"commcal/src-server/recur"
	"commcal/src-server/source"
)

// One line of the _sources.json manifest, the frontend's index of which
// per-source file to fetch and how to label it
type ManifestEntry struct {
	URL   string `json:"url"`
	Title string `json:"title"`
	Color string `json:"color"`
}

// Everything one pipeline run produced. Events keep source declaration
// order, with each source's events in resolver order.
type RunContext struct {
	Events   []model.Event
	Manifest []ManifestEntry
}

type Driver struct {
	fetcher *source.Fetcher
	dataDir string
	now     func() time.Time
}

func NewDriver(fetcher *source.Fetcher, dataDir string) *Driver {
	return &Driver{
		fetcher: fetcher,
		dataDir: dataDir,
		now:     time.Now,
	}
}

// Process every configured source in declaration order and merge the
// results. Terminal per-source outcomes are: fresh events, a stale
// snapshot, or nothing; all of them feed the merge.
func (d *Driver) Run(ctx context.Context, sources []source.Source) *RunContext {
	runCtx := &RunContext{
		Events:   make([]model.Event, 0),
		Manifest: make([]ManifestEntry, 0, len(sources)),
	}

	for i := range sources {
		src := &sources[i]
		events := d.collect(ctx, src)
		metric.SourceEvents.WithLabelValues(src.Name).Set(float64(len(events)))
		slog.Info("source processed", "source", src.Name, "events", len(events))

		runCtx.Events = append(runCtx.Events, events...)
		runCtx.Manifest = append(runCtx.Manifest, ManifestEntry{
			URL:   src.Name + ".json",
			Title: src.Title,
			Color: src.Color,
		})
	}

	return runCtx
}

func (d *Driver) collect(ctx context.Context, src *source.Source) []model.Event {
	composite, ok := src.Spec.(source.Composite)
	if !ok {
		return d.leaf(ctx, src)
	}

	events := make([]model.Event, 0)
	for i := range composite.Sources {
		events = append(events, d.collect(ctx, &composite.Sources[i])...)
	}

	// the combined listing is a frontend artifact under the composite's
	// own name; it is never read back as a fallback cache
	if err := WriteSnapshot(SnapshotPath(d.dataDir, src.Name), events); err != nil {
		slog.Warn("can't write combined source file", "source", src.Name, "error", err)
	}
	return events
}

// One leaf source, one run: fetch, resolve, persist; or serve the
// previous snapshot when the fetch fails or comes back empty.
func (d *Driver) leaf(ctx context.Context, src *source.Source) []model.Event {
	path := SnapshotPath(d.dataDir, src.Name)

	occurrences, err := d.fetch(ctx, src)
	if err == nil && len(occurrences) > 0 {
		metric.SourceStaleHours.WithLabelValues(src.Name).Set(0)
		events := recur.Events(recur.Resolve(occurrences))
		if err := WriteSnapshot(path, events); err != nil {
			// this run still has the data in memory, the next one won't
			slog.Warn("can't persist snapshot", "source", src.Name, "error", err)
		}
		return events
	}
	if err != nil {
		metric.SourceFailuresTotal.WithLabelValues(src.Name).Inc()
		slog.Warn("source fetch failed, trying snapshot", "source", src.Name, "error", err)
	} else {
		slog.Warn("source returned no events, trying snapshot", "source", src.Name)
	}

	info, err := os.Stat(path)
	if err != nil {
		slog.Warn("no snapshot, source contributes nothing", "source", src.Name)
		return nil
	}
	hours := StaleHours(info.ModTime(), d.now())
	metric.SourceStaleHours.WithLabelValues(src.Name).Set(float64(hours))
	if ShouldWarnStale(hours) {
		slog.Warn("serving stale snapshot", "source", src.Name, "hours", hours)
	}

	events, loadErr := LoadSnapshot(path)
	if loadErr != nil {
		slog.Warn("can't read snapshot, source contributes nothing", "source", src.Name, "error", loadErr)
		return nil
	}
	return events
}

func (d *Driver) fetch(ctx context.Context, src *source.Source) ([]recur.Occurrence, error) {
	switch spec := src.Spec.(type) {
	case source.ICS:
		return d.fetcher.ICS(ctx, spec.URL)
	case source.Eventbrite:
		return d.fetcher.Eventbrite(ctx, spec.Organizer)
	case source.Facebook:
		return d.fetcher.Facebook(ctx, spec.PageID)
	case source.Microdata:
		return d.fetcher.Microdata(ctx, spec.URL)
	default:
		return nil, fmt.Errorf("(*Driver).fetch: unhandled source type %T", spec)
	}
}
