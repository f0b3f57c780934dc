package summary

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ponto-app/registro/internal/models"
	"github.com/ponto-app/registro/internal/timecalc"
)

func TestParseDay(t *testing.T) {
	_, err := ParseDay("2025-09-09")
	require.NoError(t, err)

	_, err = ParseDay("09/09/2025")
	assert.ErrorIs(t, err, timecalc.ErrInvalidTimeValue)
}

func TestAddDays(t *testing.T) {
	got, err := AddDays("2025-09-09", 1)
	require.NoError(t, err)
	assert.Equal(t, "2025-09-10", got)

	got, err = AddDays("2025-09-01", -1)
	require.NoError(t, err)
	assert.Equal(t, "2025-08-31", got)

	got, err = AddDays("2024-02-28", 1)
	require.NoError(t, err)
	assert.Equal(t, "2024-02-29", got)
}

func TestWeekStart(t *testing.T) {
	tests := []struct {
		day  string
		want string
	}{
		{"2025-09-08", "2025-09-08"}, // Monday maps to itself
		{"2025-09-09", "2025-09-08"}, // Tuesday
		{"2025-09-13", "2025-09-08"}, // Saturday
		{"2025-09-14", "2025-09-08"}, // Sunday belongs to the preceding Monday
		{"2025-09-15", "2025-09-15"},
	}
	for _, tt := range tests {
		got, err := WeekStart(tt.day)
		require.NoError(t, err)
		assert.Equal(t, tt.want, got, "week start of %s", tt.day)
	}
}

func TestWeekOf(t *testing.T) {
	entries := map[string][]models.Pair{
		"2025-09-08": {{In: "09:00", Out: "12:00"}, {In: "13:00", Out: "18:00"}}, // 480
		"2025-09-09": {{In: "09:00", Out: "13:00"}},                              // 240
		"2025-09-20": {{In: "09:00", Out: "10:00"}},                              // other week
	}

	w, err := WeekOf(entries, "2025-09-10")
	require.NoError(t, err)

	assert.Equal(t, "2025-09-08", w.Start)
	assert.Equal(t, "2025-09-14", w.End)
	require.Len(t, w.Days, 7)
	assert.Equal(t, 480, w.Days[0].Total)
	assert.Equal(t, 2, w.Days[0].Pairs)
	assert.Equal(t, 240, w.Days[1].Total)
	assert.Equal(t, 0, w.Days[2].Total)
	assert.Equal(t, 720, w.Total)
	assert.Equal(t, 2, w.DaysWorked)
	assert.InDelta(t, 360.0, w.AvgPerDay, 0.001)
}

func TestWeekOfEmpty(t *testing.T) {
	w, err := WeekOf(map[string][]models.Pair{}, "2025-09-10")
	require.NoError(t, err)
	assert.Equal(t, 0, w.Total)
	assert.Equal(t, 0, w.DaysWorked)
	assert.Equal(t, 0.0, w.AvgPerDay)
}

func TestHistory(t *testing.T) {
	entries := map[string][]models.Pair{
		"2025-09-10": {{In: "09:00", Out: "17:00"}},
		"2025-09-03": {{In: "09:00", Out: "13:00"}},
	}

	weeks, err := History(entries, "2025-09-10", 3)
	require.NoError(t, err)
	require.Len(t, weeks, 3)

	// Newest first, stepping back a week at a time.
	assert.Equal(t, "2025-09-08", weeks[0].Start)
	assert.Equal(t, "2025-09-01", weeks[1].Start)
	assert.Equal(t, "2025-08-25", weeks[2].Start)
	assert.Equal(t, 480, weeks[0].Total)
	assert.Equal(t, 240, weeks[1].Total)
	assert.Equal(t, 0, weeks[2].Total)
}

func TestHistoryMinimumOneWeek(t *testing.T) {
	weeks, err := History(nil, "2025-09-10", 0)
	require.NoError(t, err)
	assert.Len(t, weeks, 1)
}

func TestIncompleteCount(t *testing.T) {
	pairs := []models.Pair{
		{In: "09:00", Out: "12:00"},
		{In: "13:00", Out: ""},
		{In: "", Out: "18:00"},
		{In: "", Out: ""},
	}
	assert.Equal(t, 3, IncompleteCount(pairs))
	assert.Equal(t, 0, IncompleteCount(nil))
}

func TestInvalidCount(t *testing.T) {
	pairs := []models.Pair{
		{In: "09:00", Out: "12:00"}, // fine
		{In: "09:00", Out: "09:00"}, // zero length
		{In: "22:00", Out: "15:00"}, // 17h over midnight
		{In: "22:00", Out: "06:00"}, // 8h over midnight, fine
		{In: "9h00", Out: "12:00"},  // unparsable
		{In: "13:00", Out: ""},      // incomplete, not invalid
	}
	assert.Equal(t, 3, InvalidCount(pairs))
}
