package source

import (
	"bytes"
	"context"
	"fmt"
	"log/slog"
	"regexp"
	"strings"
	"time"

	"golang.org/x/net/html"

	"commcal/src-server/normalize"
	"commcal/src-server/recur"
	"commcal/src-server/utils"
)

const facebookMobileBase = "https://mbasic.facebook.com"

var (
	fbEventHrefRe    = regexp.MustCompile(`/events/(\d+)`)
	fbSubEventHrefRe = regexp.MustCompile(`event_time_id=\d+`)
	// the visible time line always carries a UTC offset, e.g.
	// "Friday, September 20 at 12:00 PM UTC+02"
	fbTimeLineRe = regexp.MustCompile(`UTC[+-]\d{1,2}`)
	fbUTCRe      = regexp.MustCompile(`\s*UTC([+-])(\d{1,2})`)
)

// Scrape the public event listing of one Facebook page through the mbasic
// pages. A page whose events carry multiple dates links sub-event pages
// (event_time_id); those are followed one level deep, mirroring how the
// listing itself presents them.
func (f *Fetcher) Facebook(ctx context.Context, pageID string) ([]recur.Occurrence, error) {
	listURL := fmt.Sprintf("%s/%s/events/", facebookMobileBase, pageID)
	doc, err := f.fetchHTML(ctx, listURL)
	if err != nil {
		return nil, err
	}

	eventURLs := collectFacebookEventLinks(doc)
	if len(eventURLs) == 0 {
		return nil, &ParseError{Context: listURL, Err: fmt.Errorf("no event links found")}
	}

	occurrences := make([]recur.Occurrence, 0)
	for _, eventURL := range eventURLs {
		occs, err := f.facebookEventPage(ctx, pageID, eventURL, true)
		if err != nil {
			// one broken event page never fails the whole listing
			slog.Warn("skipping facebook event page", "page_id", pageID, "url", eventURL, "error", err)
			continue
		}
		occurrences = append(occurrences, occs...)
	}

	return occurrences, nil
}

func (f *Fetcher) fetchHTML(ctx context.Context, url string) (*html.Node, error) {
	resp, err := f.client.R().
		SetContext(ctx).
		SetHeader("Accept-Language", "en-US,en").
		Get(url)
	if err != nil {
		return nil, &FetchError{URL: url, Err: err}
	}
	if resp.IsError() {
		return nil, &FetchError{URL: url, Err: fmt.Errorf("unexpected status %s", resp.Status())}
	}
	doc, err := html.Parse(bytes.NewReader(resp.Body()))
	if err != nil {
		return nil, &ParseError{Context: url, Err: err}
	}
	return doc, nil
}

// Parse one event page into occurrences. followSubEvents guards the
// recursion depth: sub-event pages never recurse further.
func (f *Fetcher) facebookEventPage(ctx context.Context, pageID, url string, followSubEvents bool) ([]recur.Occurrence, error) {
	doc, err := f.fetchHTML(ctx, url)
	if err != nil {
		return nil, err
	}

	// an event with several dates links each date as its own page
	if followSubEvents {
		subEventURLs := make([]string, 0)
		walkHTML(doc, func(n *html.Node) bool {
			if n.Type == html.ElementNode && n.Data == "a" && fbSubEventHrefRe.MatchString(htmlAttr(n, "href")) {
				subEventURLs = append(subEventURLs, facebookMobileBase+htmlAttr(n, "href"))
			}
			return true
		})
		if len(subEventURLs) > 0 {
			slog.Warn("facebook event has sub-events", "page_id", pageID, "url", url)
			occurrences := make([]recur.Occurrence, 0)
			for _, subEventURL := range subEventURLs {
				occs, err := f.facebookEventPage(ctx, pageID, subEventURL, false)
				if err != nil {
					slog.Warn("skipping facebook sub-event", "page_id", pageID, "url", subEventURL, "error", err)
					continue
				}
				occurrences = append(occurrences, occs...)
			}
			return occurrences, nil
		}
	}

	title := facebookPageTitle(doc)
	if title == "" {
		return nil, &ParseError{Context: url, Err: fmt.Errorf("no title found")}
	}

	timeLine := facebookTimeLine(doc)
	if timeLine == "" {
		return nil, &ParseError{Context: url, Err: fmt.Errorf("no time line found")}
	}

	start, end, err := f.parseFacebookTime(timeLine)
	if err != nil {
		return nil, &ParseError{Context: url, Err: err}
	}

	match := fbEventHrefRe.FindStringSubmatch(url)
	if match == nil {
		return nil, &ParseError{Context: url, Err: fmt.Errorf("no event id in url")}
	}

	event, err := normalize.Normalize(normalize.RawEvent{
		Title: utils.CleanupString(title),
		URL:   fmt.Sprintf("https://www.facebook.com/events/%s", match[1]),
		Start: start,
		End:   end,
	}, f.loc)
	if err != nil {
		return nil, &ParseError{Context: url, Err: err}
	}

	return []recur.Occurrence{{
		Identity: "fb-" + match[1],
		Event:    event,
	}}, nil
}

func facebookPageTitle(doc *html.Node) string {
	var title string
	walkHTML(doc, func(n *html.Node) bool {
		if title != "" {
			return false
		}
		if n.Type == html.ElementNode && n.Data == "title" {
			title = htmlText(n)
			return false
		}
		return true
	})
	return strings.TrimSuffix(title, " | Facebook")
}

// Find the first div whose text mentions a UTC offset; that is the line
// carrying the event date and time.
func facebookTimeLine(doc *html.Node) string {
	var line string
	walkHTML(doc, func(n *html.Node) bool {
		if line != "" {
			return false
		}
		if n.Type == html.ElementNode && n.Data == "div" {
			if text := htmlText(n); fbTimeLineRe.MatchString(text) && len(text) < 120 {
				line = text
				return false
			}
		}
		return true
	})
	return line
}

// Parse a scraped time line like
//
//	"Friday, September 20, 2024 from 12:00 PM to 3:00 PM UTC+02"
//	"Saturday, June 1 at 7:00 PM UTC+02"
//
// into start/end. A line without an explicit end gets the one-hour
// default. The natural-language part is handed to the `when` parser with
// the UTC offset applied afterwards.
func (f *Fetcher) parseFacebookTime(line string) (time.Time, time.Time, error) {
	offsetMatch := fbUTCRe.FindStringSubmatch(line)
	if offsetMatch == nil {
		return time.Time{}, time.Time{}, fmt.Errorf("no UTC offset in %q", line)
	}
	loc := facebookOffsetLocation(offsetMatch[1], offsetMatch[2])
	line = fbUTCRe.ReplaceAllString(line, "")

	startText := line
	endText := ""
	for _, sep := range []string{" – ", " - "} {
		if idx := strings.Index(line, sep); idx >= 0 {
			startText, endText = line[:idx], line[idx+len(sep):]
			break
		}
	}
	// "<date> from <start> to <end>" carries the date once, for both ends
	if idx := strings.Index(line, " from "); idx >= 0 {
		if to := strings.Index(line, " to "); to > idx {
			startText = line[:idx] + " at " + line[idx+len(" from "):to]
			endText = line[:idx] + " at " + line[to+len(" to "):]
		}
	}

	now := time.Now().In(loc)
	startResult, err := f.when.Parse(startText, now)
	if err != nil || startResult == nil {
		return time.Time{}, time.Time{}, fmt.Errorf("can't parse start from %q", startText)
	}
	start := time.Date(
		startResult.Time.Year(), startResult.Time.Month(), startResult.Time.Day(),
		startResult.Time.Hour(), startResult.Time.Minute(), 0, 0, loc)

	end := start.Add(time.Hour)
	if endText != "" {
		if endResult, err := f.when.Parse(endText, now); err == nil && endResult != nil {
			end = time.Date(
				endResult.Time.Year(), endResult.Time.Month(), endResult.Time.Day(),
				endResult.Time.Hour(), endResult.Time.Minute(), 0, 0, loc)
			if end.Before(start) {
				end = start.Add(time.Hour)
			}
		}
	}

	return start, end, nil
}

func facebookOffsetLocation(sign, hours string) *time.Location {
	offset := 0
	for _, c := range hours {
		offset = offset*10 + int(c-'0')
	}
	offset *= 3600
	if sign == "-" {
		offset = -offset
	}
	return time.FixedZone(fmt.Sprintf("UTC%s%s", sign, hours), offset)
}

func collectFacebookEventLinks(doc *html.Node) []string {
	seen := make(map[string]struct{})
	urls := make([]string, 0)
	walkHTML(doc, func(n *html.Node) bool {
		if n.Type != html.ElementNode || n.Data != "a" {
			return true
		}
		href := htmlAttr(n, "href")
		match := fbEventHrefRe.FindStringSubmatch(href)
		if match == nil || fbSubEventHrefRe.MatchString(href) {
			return true
		}
		if _, ok := seen[match[1]]; ok {
			return true
		}
		seen[match[1]] = struct{}{}
		urls = append(urls, facebookMobileBase+href)
		return true
	})
	return urls
}
