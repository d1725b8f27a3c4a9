// The `ical` package parses and serializes iCalendar files.
//
// # References:
// - RFC5545: https://datatracker.ietf.org/doc/html/rfc5545
//
// # Notes:
// - Only the properties the aggregation pipeline needs are parsed
//   (UID, SUMMARY, DESCRIPTION, LOCATION, URL, DTSTART, DTEND, RRULE,
//   EXDATE, RECURRENCE-ID, SEQUENCE); everything else is skipped.
// - VTIMEZONE and VALARM sections, including their sub-sections, are
//   ignored. TZID parameters on date-time values are still honored.
// - Recurrence is not expanded here. Events keep their raw RRULE string,
//   exception dates and RECURRENCE-ID marker so the recurrence pipeline
//   can expand and resolve overrides itself.
// - Events are kept in feed order; override resolution depends on it.
//
// # Example usage:
//
// Parse from a reader
//	calendar, _ := ical.FromReader(resp.Body, loc)
//
// Create a new Calendar struct and serialize it
//	calendar := ical.NewCalendar()
//	output, _ := calendar.ToIcal(loc)
//	_ = os.WriteFile("path/to/output/all.ics", []byte(output), 0644)

package ical

import (
	"bufio"
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/google/uuid"
)

// The main struct of the package
type Calendar struct {
	id     string
	prodID string
	name   string
	events []Event
}

// Initialize a new Calendar{} struct
func NewCalendar() Calendar {
	return Calendar{
		id:     uuid.NewString(),
		events: make([]Event, 0),
	}
}

// #region Getters

func (c *Calendar) GetID() string {
	return c.id
}

func (c *Calendar) GetProdID() string {
	return c.prodID
}

// Get the calendar name
func (c *Calendar) GetName() string {
	return c.name
}

// Get the events in feed order
func (c *Calendar) GetEvents() []Event {
	return c.events
}

// #endregion

// #region Setters

func (c *Calendar) SetProdID(prodID string) {
	c.prodID = prodID
}

// Set the calendar name
func (c *Calendar) SetName(name string) {
	c.name = name
}

// #endregion

// Validate the event and add it to the calendar
func (c *Calendar) AddEvent(event Event) error {
	if err := event.Validate(); err != nil {
		return err
	}
	c.events = append(c.events, event)
	return nil
}

// Unmarshal an iCalendar payload into a Calendar{} struct. Naive local
// date-times in the payload are interpreted in the given timezone.
func FromReader(r io.Reader, loc *time.Location) (*Calendar, *CustomError) {
	cal := NewCalendar()
	var mode string
	lineCount := 0

	blankEvent := NewEvent()

	scanner := bufio.NewScanner(r)
	scanner.Buffer(make([]byte, 0, 64*1024), 1024*1024)

	// "lookahead" to merge lines that are folded
	var lastLine string
	var haveLast bool

	handleLine := func(line string) *CustomError {
		lineCount++
		slice := strings.SplitN(line, ":", 2)
		if len(slice) != 2 {
			if mode == "event" {
				if err := blankEvent.addProperty(line, loc); err != nil {
					return NewCustomError("can't add property to event", map[string]any{
						"line":    lineCount,
						"content": line,
						"err":     err,
					})
				}
				return nil
			}
			return nil
		}
		key := strings.ToUpper(strings.TrimSpace(strings.SplitN(slice[0], ";", 2)[0]))
		value := strings.TrimSpace(slice[1])

		switch key {
		case "BEGIN":
			switch value {
			case "VCALENDAR":
				if mode == "calendar" {
					return NewCustomError("nested VCALENDAR block", map[string]any{
						"line": lineCount,
					})
				}
				mode = "calendar"
			case "VEVENT":
				if mode == "event" {
					return NewCustomError("nested VEVENT block", map[string]any{
						"line": lineCount,
					})
				}
				mode = "event"
				blankEvent = NewEvent()
			case "VTIMEZONE", "STANDARD", "DAYLIGHT":
				mode = "timezone"
			case "VALARM":
				if mode != "event" {
					return NewCustomError("VALARM block not in VEVENT block", map[string]any{
						"line": lineCount,
					})
				}
				mode = "alarm"
			default:
				// unknown component, skip until its END
			}
		case "END":
			switch value {
			case "VCALENDAR":
				mode = ""
			case "VEVENT":
				if mode != "event" {
					return NewCustomError("unexpected END:VEVENT", map[string]any{
						"line": lineCount,
					})
				}
				mode = "calendar"
				if blankEvent.GetSummary() == "" {
					blankEvent.SetSummary("(no title)")
				}
				if err := blankEvent.Validate(); err != nil {
					return NewCustomError("invalid event", map[string]any{
						"line": lineCount,
						"uid":  blankEvent.GetID(),
						"err":  err,
					})
				}
				cal.events = append(cal.events, blankEvent)
			case "VTIMEZONE", "STANDARD", "DAYLIGHT":
				mode = "calendar"
			case "VALARM":
				mode = "event"
			}
		default:
			switch mode {
			case "timezone", "alarm":
				// ignored sections
			case "calendar":
				switch key {
				case "VERSION", "CALSCALE", "METHOD", "X-WR-TIMEZONE":
				case "PRODID":
					cal.prodID = value
				case "X-WR-CALNAME":
					cal.SetName(value)
				}
			case "event":
				if err := blankEvent.addProperty(line, loc); err != nil {
					return NewCustomError("can't add property to event", map[string]any{
						"line":    lineCount,
						"content": line,
						"err":     err,
					})
				}
			}
		}
		return nil
	}

	for scanner.Scan() {
		currentLine := strings.TrimSuffix(scanner.Text(), "\r")
		if strings.HasPrefix(currentLine, " ") || strings.HasPrefix(currentLine, "\t") {
			lastLine += currentLine[1:]
			continue
		}
		if haveLast {
			if err := handleLine(lastLine); err != nil {
				return nil, err
			}
		}
		lastLine = currentLine
		haveLast = true
	}
	if haveLast {
		if err := handleLine(lastLine); err != nil {
			return nil, err
		}
	}
	if err := scanner.Err(); err != nil {
		return nil, NewCustomError("can't read payload", map[string]any{
			"err": err,
		})
	}

	if mode != "" {
		return nil, NewCustomError("unterminated block", map[string]any{
			"mode": mode,
		})
	}

	return &cal, nil
}

// Marshal a Calendar{} struct into an iCalendar string. All date-times are
// expressed in the given timezone.
func (c *Calendar) ToIcal(loc *time.Location) (string, *CustomError) {
	var sb strings.Builder
	writer := foldWriter(sb.WriteString)

	writer("BEGIN:VCALENDAR\n")
	writer(fmt.Sprintf("PRODID:%s\n", c.prodID))
	writer("VERSION:2.0\n")
	if c.name != "" {
		writer(fmt.Sprintf("X-WR-CALNAME:%s\n", c.name))
	}

	for i := range c.events {
		if err := c.events[i].toIcal(writer, loc); err != nil {
			return "", NewCustomError("can't marshal event", map[string]any{
				"eventID": c.events[i].GetID(),
				"err":     err,
			})
		}
	}
	writer("END:VCALENDAR\n")

	return sb.String(), nil
}
