package recur_test

import (
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"commcal/src-server/recur"
)

func TestExpandWeeklyCount(t *testing.T) {
	dtstart := time.Date(2024, 1, 1, 10, 0, 0, 0, time.UTC)
	window := recur.Window{
		Start: time.Date(2023, 12, 1, 0, 0, 0, 0, time.UTC),
		End:   time.Date(2024, 6, 1, 0, 0, 0, 0, time.UTC),
	}

	anchors, err := recur.Expand("FREQ=WEEKLY;COUNT=3", dtstart, nil, window)
	require.NoError(t, err)
	require.Len(t, anchors, 3)
	for i, expected := range []time.Time{
		dtstart,
		dtstart.AddDate(0, 0, 7),
		dtstart.AddDate(0, 0, 14),
	} {
		require.True(t, anchors[i].Equal(expected), "anchor %d: got %s, want %s", i, anchors[i], expected)
	}
}

func TestExpandExceptionDate(t *testing.T) {
	dtstart := time.Date(2024, 1, 1, 10, 0, 0, 0, time.UTC)
	window := recur.Window{
		Start: time.Date(2023, 12, 1, 0, 0, 0, 0, time.UTC),
		End:   time.Date(2024, 6, 1, 0, 0, 0, 0, time.UTC),
	}
	exDates := []time.Time{time.Date(2024, 1, 8, 10, 0, 0, 0, time.UTC)}

	anchors, err := recur.Expand("FREQ=WEEKLY;COUNT=3", dtstart, exDates, window)
	require.NoError(t, err)
	require.Len(t, anchors, 2)
	require.True(t, anchors[0].Equal(dtstart))
	require.True(t, anchors[1].Equal(dtstart.AddDate(0, 0, 14)))
}

func TestExpandWindowEndExclusive(t *testing.T) {
	dtstart := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	window := recur.Window{
		Start: dtstart,
		End:   time.Date(2024, 1, 4, 0, 0, 0, 0, time.UTC),
	}

	anchors, err := recur.Expand("FREQ=DAILY;COUNT=10", dtstart, nil, window)
	require.NoError(t, err)
	require.Len(t, anchors, 3)
	require.True(t, anchors[len(anchors)-1].Equal(time.Date(2024, 1, 3, 0, 0, 0, 0, time.UTC)))
}

func TestExpandMalformedRule(t *testing.T) {
	window := recur.Window{
		Start: time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC),
		End:   time.Date(2024, 2, 1, 0, 0, 0, 0, time.UTC),
	}

	_, err := recur.Expand("FREQ=EVERY-FULL-MOON", time.Date(2024, 1, 1, 10, 0, 0, 0, time.UTC), nil, window)
	require.Error(t, err)
}

func TestWindowAround(t *testing.T) {
	loc := time.FixedZone("UTC+2", 2*3600)
	now := time.Date(2024, 5, 15, 17, 30, 42, 0, loc)

	window := recur.WindowAround(now, loc)
	require.True(t, window.Start.Equal(time.Date(2024, 3, 16, 0, 0, 0, 0, loc)))
	require.True(t, window.End.Equal(time.Date(2024, 11, 11, 0, 0, 0, 0, loc)))

	require.True(t, window.Contains(time.Date(2024, 5, 15, 0, 0, 0, 0, loc)))
	require.True(t, window.Contains(window.Start))
	require.False(t, window.Contains(window.End))
}
