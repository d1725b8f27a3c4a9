package source

import (
	"context"
	"fmt"
	"log/slog"
	"net/url"
	"strings"
	"time"

	"github.com/google/uuid"
	"golang.org/x/net/html"

	"commcal/src-server/normalize"
	"commcal/src-server/recur"
)

const schemaOrgEvent = "schema.org/Event"

// the datetime formats seen in schema.org startDate/endDate values
var microdataTimeLayouts = []string{
	time.RFC3339,
	"2006-01-02T15:04:05Z",
	"2006-01-02T15:04:05",
	"2006-01-02T15:04",
	"2006-01-02",
}

// Extract schema.org/Event microdata items from a web page. Event URLs are
// resolved against the page URL since microdata links are usually
// relative.
func (f *Fetcher) Microdata(ctx context.Context, pageURL string) ([]recur.Occurrence, error) {
	doc, err := f.fetchHTML(ctx, pageURL)
	if err != nil {
		return nil, err
	}

	base, err2 := url.Parse(pageURL)
	if err2 != nil {
		return nil, &ParseError{Context: pageURL, Err: err2}
	}

	occurrences := make([]recur.Occurrence, 0)

	walkHTML(doc, func(n *html.Node) bool {
		if n.Type != html.ElementNode || !hasHTMLAttr(n, "itemscope") {
			return true
		}
		if !strings.Contains(htmlAttr(n, "itemtype"), schemaOrgEvent) {
			return true
		}

		item := parseMicrodataItem(n)
		start, ok := parseMicrodataTime(item["startdate"])
		if !ok {
			// a record lacking a parseable start never reaches normalization
			slog.Warn("skipping microdata item without parseable start", "url", pageURL, "name", item["name"])
			return false
		}

		raw := normalize.RawEvent{
			Title:    item["name"],
			Location: item["location"],
			Start:    start.In(f.loc),
			End:      start.In(f.loc).Add(time.Hour),
		}
		if end, ok := parseMicrodataTime(item["enddate"]); ok {
			raw.End = end.In(f.loc)
		}
		if href := item["url"]; href != "" {
			if resolved, err := base.Parse(href); err == nil {
				raw.URL = resolved.String()
			}
		}

		event, err := normalize.Normalize(raw, f.loc)
		if err != nil {
			slog.Warn("skipping microdata item", "url", pageURL, "name", item["name"], "error", err)
			return false
		}
		occurrences = append(occurrences, recur.Occurrence{
			Identity: uuid.NewString(),
			Event:    event,
		})
		return false
	})

	if len(occurrences) == 0 {
		return nil, &ParseError{Context: pageURL, Err: fmt.Errorf("no %s items found", schemaOrgEvent)}
	}
	return occurrences, nil
}

// Collect the itemprops below one itemscope into a flat map. Nested
// itemscopes (like the Place under location) contribute their own name
// under the outer prop.
func parseMicrodataItem(item *html.Node) map[string]string {
	props := make(map[string]string)

	var walk func(n *html.Node, insideNested bool)
	walk = func(n *html.Node, insideNested bool) {
		for child := n.FirstChild; child != nil; child = child.NextSibling {
			if child.Type != html.ElementNode {
				continue
			}
			prop := strings.ToLower(htmlAttr(child, "itemprop"))
			nested := hasHTMLAttr(child, "itemscope")

			if prop != "" && !insideNested {
				if _, ok := props[prop]; !ok {
					props[prop] = microdataValue(child)
				}
			}
			walk(child, insideNested || nested)
		}
	}
	walk(item, false)
	return props
}

// The value of one itemprop element, following the microdata value rules
// for the elements that matter here.
func microdataValue(n *html.Node) string {
	if content := htmlAttr(n, "content"); content != "" {
		return content
	}
	switch n.Data {
	case "a", "link":
		if href := htmlAttr(n, "href"); href != "" {
			return href
		}
	case "time":
		if datetime := htmlAttr(n, "datetime"); datetime != "" {
			return datetime
		}
	case "meta":
		return htmlAttr(n, "content")
	}
	// nested Place/Organization: its own name prop is the display value
	if hasHTMLAttr(n, "itemscope") {
		var name string
		walkHTML(n, func(inner *html.Node) bool {
			if name != "" {
				return false
			}
			if inner != n && strings.EqualFold(htmlAttr(inner, "itemprop"), "name") {
				name = htmlText(inner)
				return false
			}
			return true
		})
		return name
	}
	return htmlText(n)
}

func parseMicrodataTime(value string) (time.Time, bool) {
	value = strings.TrimSpace(value)
	if value == "" {
		return time.Time{}, false
	}
	for _, layout := range microdataTimeLayouts {
		if t, err := time.Parse(layout, value); err == nil {
			return t, true
		}
	}
	return time.Time{}, false
}
