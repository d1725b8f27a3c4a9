package ical

import (
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/google/uuid"
)

// One VEVENT as it appears in the feed. Recurrence is NOT expanded here;
// the rrule string, exception dates and the RECURRENCE-ID marker are kept
// as-is for the recurrence pipeline to act on.
type Event struct {
	id          string // UID, required; generated if the feed omits it
	summary     string // required
	description string
	location    string
	url         string

	startDate time.Time // required
	endDate   time.Time
	allDay    bool
	sequence  int

	rruleStr     string
	exDates      []time.Time
	recurrenceID time.Time
}

// Initialize a new event struct
func NewEvent() Event {
	return Event{
		id: uuid.NewString(),
	}
}

// #region Getters

func (e *Event) GetID() string {
	return e.id
}

func (e *Event) GetSummary() string {
	return e.summary
}

func (e *Event) GetDescription() string {
	return e.description
}

func (e *Event) GetLocation() string {
	return e.location
}

func (e *Event) GetURL() string {
	return e.url
}

func (e *Event) GetStartDate() time.Time {
	return e.startDate
}

// Get the event end date; defaults to the start date when the feed
// provides no DTEND.
func (e *Event) GetEndDate() time.Time {
	if e.endDate.IsZero() {
		return e.startDate
	}
	return e.endDate
}

func (e *Event) IsAllDay() bool {
	return e.allDay
}

func (e *Event) GetSequence() int {
	return e.sequence
}

// Get the raw RRULE value; blank for non-recurring events.
func (e *Event) GetRRule() string {
	return e.rruleStr
}

func (e *Event) GetExDates() []time.Time {
	return e.exDates
}

func (e *Event) GetRecurrenceID() time.Time {
	return e.recurrenceID
}

// Whether this event replaces one occurrence of a recurring event with the
// same UID (it carries a RECURRENCE-ID marker).
func (e *Event) IsOverride() bool {
	return !e.recurrenceID.IsZero()
}

// #endregion

// #region Setters

func (e *Event) SetID(id string) *Event {
	e.id = id
	return e
}

func (e *Event) SetSummary(summary string) *Event {
	e.summary = summary
	return e
}

func (e *Event) SetDescription(description string) *Event {
	e.description = description
	return e
}

func (e *Event) SetLocation(location string) *Event {
	e.location = location
	return e
}

func (e *Event) SetURL(url string) *Event {
	e.url = url
	return e
}

func (e *Event) SetStartDate(startDate time.Time) *Event {
	e.startDate = startDate
	return e
}

func (e *Event) SetEndDate(endDate time.Time) *Event {
	e.endDate = endDate
	return e
}

func (e *Event) SetAllDay(allDay bool) *Event {
	e.allDay = allDay
	return e
}

// #endregion

func (e *Event) Validate() error {
	switch {
	case e.id == "":
		return fmt.Errorf("(*Event).Validate: id is blank")
	case e.summary == "":
		return fmt.Errorf("(*Event).Validate: summary is blank")
	case e.startDate.IsZero():
		return fmt.Errorf("(*Event).Validate: start date is blank")
	case !e.endDate.IsZero() && e.endDate.Before(e.startDate):
		return fmt.Errorf("(*Event).Validate: end date must not be before start date")
	}
	return nil
}

// Apply one unfolded content line to the event being parsed. Values are
// stored raw; TEXT unescaping happens during normalization.
func (e *Event) addProperty(line string, loc *time.Location) error {
	name, params, value, err := splitContentLine(line)
	if err != nil {
		return err
	}

	switch name {
	case "UID":
		e.id = value
	case "SUMMARY":
		e.summary = value
	case "DESCRIPTION":
		e.description = value
	case "LOCATION":
		e.location = value
	case "URL":
		e.url = value
	case "DTSTART":
		parsed, dateOnly, err := parseDate(params, value, loc)
		if err != nil {
			return fmt.Errorf("can't parse DTSTART: %w", err)
		}
		e.startDate = parsed
		e.allDay = dateOnly
	case "DTEND":
		parsed, _, err := parseDate(params, value, loc)
		if err != nil {
			return fmt.Errorf("can't parse DTEND: %w", err)
		}
		e.endDate = parsed
	case "RRULE":
		e.rruleStr = value
	case "EXDATE":
		// EXDATE may carry several comma-separated values on one line
		for _, one := range strings.Split(value, ",") {
			parsed, _, err := parseDate(params, strings.TrimSpace(one), loc)
			if err != nil {
				return fmt.Errorf("can't parse EXDATE: %w", err)
			}
			e.exDates = append(e.exDates, parsed)
		}
	case "RECURRENCE-ID":
		parsed, _, err := parseDate(params, value, loc)
		if err != nil {
			return fmt.Errorf("can't parse RECURRENCE-ID: %w", err)
		}
		e.recurrenceID = parsed
	case "SEQUENCE":
		if n, err := strconv.Atoi(value); err == nil {
			e.sequence = n
		}
	}
	return nil
}

// Convert the event into an iCalendar VEVENT block. This method is intended
// to be used internally only; check the usage in calendar.go.
func (e *Event) toIcal(writer func(string) (int, error), loc *time.Location) error {
	if err := e.Validate(); err != nil {
		return err
	}

	writer("BEGIN:VEVENT\n")
	writer(fmt.Sprintf("UID:%s\n", e.id))
	writer(fmt.Sprintf("SUMMARY:%s\n", EscapeText(e.summary)))
	if e.description != "" {
		writer(fmt.Sprintf("DESCRIPTION:%s\n", EscapeText(e.description)))
	}
	if e.location != "" {
		writer(fmt.Sprintf("LOCATION:%s\n", EscapeText(e.location)))
	}
	if e.url != "" {
		writer(fmt.Sprintf("URL:%s\n", e.url))
	}
	writer(fmt.Sprintf("DTSTART%s\n", formatDate(e.startDate, e.allDay, loc)))
	writer(fmt.Sprintf("DTEND%s\n", formatDate(e.GetEndDate(), e.allDay, loc)))
	writer("END:VEVENT\n")

	return nil
}
