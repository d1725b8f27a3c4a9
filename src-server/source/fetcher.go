package source

import (
	"time"

	"github.com/go-resty/resty/v2"
	"github.com/olebedev/when"
	"github.com/olebedev/when/rules/common"
	"github.com/olebedev/when/rules/en"

	"commcal/src-server/recur"
)

// Some feed hosts (Meetup among them) refuse requests without a browser
// User-Agent.
const browserUserAgent = "Mozilla/5.0 (X11; Linux x86_64; rv:109.0) Gecko/20100101 Firefox/115.0"

// Fetcher holds everything the leaf adapters share: the HTTP client with a
// bounded timeout, the local timezone, the expansion window and API
// credentials.
type Fetcher struct {
	client          *resty.Client
	loc             *time.Location
	window          recur.Window
	eventbriteToken string
	when            *when.Parser
}

func NewFetcher(loc *time.Location, window recur.Window, eventbriteToken string, timeout time.Duration) *Fetcher {
	if timeout <= 0 {
		timeout = 30 * time.Second
	}

	// date parser for scraped pages
	w := when.New(nil)
	w.Add(en.All...)
	w.Add(common.All...)

	return &Fetcher{
		client: resty.New().
			SetTimeout(timeout).
			SetHeader("User-Agent", browserUserAgent),
		loc:             loc,
		window:          window,
		eventbriteToken: eventbriteToken,
		when:            w,
	}
}
