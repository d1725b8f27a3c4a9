package model_test

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/require"

	"commcal/src-server/model"
)

func TestEventJSONOmitsBlankOptionals(t *testing.T) {
	event := model.Event{
		Title: "Bare",
		Start: "2024-01-01T10:00:00",
		End:   "2024-01-01T11:00:00",
	}

	raw, err := json.Marshal(&event)
	require.NoError(t, err)

	fields := make(map[string]any)
	require.NoError(t, json.Unmarshal(raw, &fields))
	require.Contains(t, fields, "title")
	require.Contains(t, fields, "start")
	require.Contains(t, fields, "end")
	require.NotContains(t, fields, "description")
	require.NotContains(t, fields, "location")
	require.NotContains(t, fields, "url")
	require.NotContains(t, fields, "allDay")
}

func TestEventJSONRoundTrip(t *testing.T) {
	event := model.Event{
		Title:       "Full House",
		Description: "every field set",
		Location:    "Hall 1",
		URL:         "https://example.org/e/1",
		Start:       "2024-01-01T10:00:00",
		End:         "2024-01-01T12:00:00",
		AllDay:      false,
	}

	raw, err := json.Marshal(&event)
	require.NoError(t, err)

	var decoded model.Event
	require.NoError(t, json.Unmarshal(raw, &decoded))
	require.Equal(t, event, decoded)
}

func TestEventStartDay(t *testing.T) {
	event := model.Event{Title: "x", Start: "2024-01-08T14:00:00", End: "2024-01-08T15:00:00"}
	day, err := event.StartDay()
	require.NoError(t, err)
	require.Equal(t, "2024-01-08", day)
}

func TestEventValidate(t *testing.T) {
	valid := model.Event{Title: "ok", Start: "2024-01-01T10:00:00", End: "2024-01-01T10:00:00"}
	require.NoError(t, valid.Validate())

	blankTitle := model.Event{Title: " ", Start: "2024-01-01T10:00:00", End: "2024-01-01T10:00:00"}
	require.Error(t, blankTitle.Validate())

	badStart := model.Event{Title: "ok", Start: "yesterday", End: "2024-01-01T10:00:00"}
	require.Error(t, badStart.Validate())

	endBeforeStart := model.Event{Title: "ok", Start: "2024-01-01T10:00:00", End: "2024-01-01T09:00:00"}
	require.Error(t, endBeforeStart.Validate())
}
