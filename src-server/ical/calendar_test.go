package ical_test

import (
	"strings"
	"testing"
	"time"
	"unicode/utf8"

	"github.com/stretchr/testify/require"

	"commcal/src-server/ical"
)

var berlin = time.FixedZone("UTC+1", 3600)

const sampleFeed = "BEGIN:VCALENDAR\r\n" +
	"PRODID:-//example//feed//EN\r\n" +
	"VERSION:2.0\r\n" +
	"X-WR-CALNAME:Test Feed\r\n" +
	"BEGIN:VTIMEZONE\r\n" +
	"TZID:Europe/Berlin\r\n" +
	"BEGIN:STANDARD\r\n" +
	"DTSTART:19701025T030000\r\n" +
	"END:STANDARD\r\n" +
	"END:VTIMEZONE\r\n" +
	"BEGIN:VEVENT\r\n" +
	"UID:recurring@example.org\r\n" +
	"SUMMARY:Weekly meetup with a deliberately long summary line that will ha\r\n" +
	" ve been folded by the producer onto a continuation line\r\n" +
	"DTSTART:20240101T100000\r\n" +
	"DTEND:20240101T110000\r\n" +
	"RRULE:FREQ=WEEKLY;COUNT=3\r\n" +
	"EXDATE:20240108T100000,20240115T100000\r\n" +
	"END:VEVENT\r\n" +
	"BEGIN:VEVENT\r\n" +
	"UID:recurring@example.org\r\n" +
	"SUMMARY:Moved meetup\r\n" +
	"DESCRIPTION:Line one\\nLine two\\, with comma\r\n" +
	"RECURRENCE-ID:20240108T100000\r\n" +
	"DTSTART:20240108T140000\r\n" +
	"DTEND:20240108T150000\r\n" +
	"END:VEVENT\r\n" +
	"BEGIN:VEVENT\r\n" +
	"UID:untitled@example.org\r\n" +
	"DTSTART:20240201T190000Z\r\n" +
	"END:VEVENT\r\n" +
	"END:VCALENDAR\r\n"

func TestFromReader(t *testing.T) {
	cal, err := ical.FromReader(strings.NewReader(sampleFeed), berlin)
	require.Nil(t, err)
	require.Equal(t, "Test Feed", cal.GetName())
	require.Equal(t, "-//example//feed//EN", cal.GetProdID())

	events := cal.GetEvents()
	require.Len(t, events, 3)

	recurring := events[0]
	require.Equal(t, "recurring@example.org", recurring.GetID())
	require.Equal(t,
		"Weekly meetup with a deliberately long summary line that will have been folded by the producer onto a continuation line",
		recurring.GetSummary())
	require.Equal(t, "FREQ=WEEKLY;COUNT=3", recurring.GetRRule())
	require.False(t, recurring.IsOverride())
	require.True(t, recurring.GetStartDate().Equal(time.Date(2024, 1, 1, 10, 0, 0, 0, berlin)))
	require.Equal(t, time.Hour, recurring.GetEndDate().Sub(recurring.GetStartDate()))

	exDates := recurring.GetExDates()
	require.Len(t, exDates, 2)
	require.True(t, exDates[0].Equal(time.Date(2024, 1, 8, 10, 0, 0, 0, berlin)))
	require.True(t, exDates[1].Equal(time.Date(2024, 1, 15, 10, 0, 0, 0, berlin)))

	override := events[1]
	require.True(t, override.IsOverride())
	require.True(t, override.GetRecurrenceID().Equal(time.Date(2024, 1, 8, 10, 0, 0, 0, berlin)))
	require.True(t, override.GetStartDate().Equal(time.Date(2024, 1, 8, 14, 0, 0, 0, berlin)))
	// values stay raw until normalization
	require.Equal(t, `Line one\nLine two\, with comma`, override.GetDescription())

	untitled := events[2]
	require.Equal(t, "(no title)", untitled.GetSummary())
	require.True(t, untitled.GetStartDate().Equal(time.Date(2024, 2, 1, 19, 0, 0, 0, time.UTC)))
	require.True(t, untitled.GetEndDate().Equal(untitled.GetStartDate()))
}

func TestFromReaderUnterminated(t *testing.T) {
	payload := "BEGIN:VCALENDAR\nBEGIN:VEVENT\nUID:x\nSUMMARY:x\nDTSTART:20240101T100000\n"
	_, err := ical.FromReader(strings.NewReader(payload), berlin)
	require.NotNil(t, err)
}

func TestToIcal(t *testing.T) {
	cal := ical.NewCalendar()
	cal.SetProdID("-//example//writer//EN")
	cal.SetName("Combined")

	long := ical.NewEvent()
	long.SetSummary("An event, with a comma; and a summary long enough that the writer has to fold the content line at seventy-five octets").
		SetStartDate(time.Date(2024, 6, 1, 18, 0, 0, 0, berlin)).
		SetEndDate(time.Date(2024, 6, 1, 20, 0, 0, 0, berlin))
	require.NoError(t, cal.AddEvent(long))

	allDay := ical.NewEvent()
	allDay.SetSummary("Street Fest").
		SetStartDate(time.Date(2024, 6, 2, 0, 0, 0, 0, berlin)).
		SetAllDay(true)
	require.NoError(t, cal.AddEvent(allDay))

	payload, icalErr := cal.ToIcal(berlin)
	require.Nil(t, icalErr)

	require.True(t, strings.HasPrefix(payload, "BEGIN:VCALENDAR\n"))
	require.Contains(t, payload, "VERSION:2.0\n")
	require.Contains(t, payload, "X-WR-CALNAME:Combined\n")
	require.Contains(t, payload, `An event\, with a comma\;`)
	require.Contains(t, payload, "DTSTART;TZID=UTC+1:20240601T180000\n")
	require.Contains(t, payload, "DTSTART;VALUE=DATE:20240602\n")
	require.True(t, strings.HasSuffix(payload, "END:VCALENDAR\n"))

	for _, line := range strings.Split(strings.TrimSuffix(payload, "\n"), "\n") {
		require.LessOrEqual(t, len(line), 76, "line too long: %q", line)
	}
	require.Contains(t, payload, "\n ", "long summary should carry a folded continuation line")
}

func TestToIcalFoldsOnRuneBoundaries(t *testing.T) {
	cal := ical.NewCalendar()
	cal.SetProdID("-//example//writer//EN")

	// 120 two-byte characters; a byte-offset fold would cut one in half
	summary := strings.Repeat("ü", 120)
	event := ical.NewEvent()
	event.SetSummary(summary).
		SetStartDate(time.Date(2024, 6, 1, 19, 0, 0, 0, time.UTC))
	require.NoError(t, cal.AddEvent(event))

	payload, icalErr := cal.ToIcal(time.UTC)
	require.Nil(t, icalErr)

	for _, line := range strings.Split(strings.TrimSuffix(payload, "\n"), "\n") {
		require.True(t, utf8.ValidString(line), "folded line splits a character: %q", line)
		require.LessOrEqual(t, len(line), 76)
	}

	parsed, parseErr := ical.FromReader(strings.NewReader(payload), time.UTC)
	require.Nil(t, parseErr)
	require.Len(t, parsed.GetEvents(), 1)
	require.Equal(t, summary, parsed.GetEvents()[0].GetSummary())
}

func TestToIcalRoundTrip(t *testing.T) {
	cal := ical.NewCalendar()
	cal.SetProdID("-//example//writer//EN")

	event := ical.NewEvent()
	event.SetSummary("Movie night: shorts, features; Q&A").
		SetDescription("Doors at 19:00\nFilm at 20:00").
		SetLocation("Kino, Hall 2").
		SetStartDate(time.Date(2024, 6, 1, 19, 0, 0, 0, time.UTC)).
		SetEndDate(time.Date(2024, 6, 1, 23, 0, 0, 0, time.UTC))
	require.NoError(t, cal.AddEvent(event))

	payload, icalErr := cal.ToIcal(time.UTC)
	require.Nil(t, icalErr)

	parsed, parseErr := ical.FromReader(strings.NewReader(payload), time.UTC)
	require.Nil(t, parseErr)
	events := parsed.GetEvents()
	require.Len(t, events, 1)

	// text comes back escaped; unescaping is normalization's job
	require.Equal(t, `Movie night: shorts\, features\; Q&A`, events[0].GetSummary())
	require.Equal(t, `Doors at 19:00\nFilm at 20:00`, events[0].GetDescription())
	require.True(t, events[0].GetStartDate().Equal(event.GetStartDate()))
	require.True(t, events[0].GetEndDate().Equal(event.GetEndDate()))
}

func TestEscapeUnescapeText(t *testing.T) {
	original := "a,b;c\\d\ne"
	escaped := ical.EscapeText(original)
	require.Equal(t, `a\,b\;c\\d\ne`, escaped)
	require.Equal(t, original, ical.UnescapeText(escaped))
}
