package escalation

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestWorkingHoursWindow(t *testing.T) {
	hours, err := NewWorkingHours("Africa/Nairobi")
	require.NoError(t, err)
	loc := hours.Location()

	monday := func(hour int) time.Time {
		return time.Date(2024, time.January, 8, hour, 30, 0, 0, loc)
	}

	assert.False(t, hours.Open(monday(8)))
	assert.True(t, hours.Open(monday(9)))
	assert.True(t, hours.Open(monday(13)))
	// Hour 17 is inside the window.
	assert.True(t, hours.Open(monday(17)))
	assert.False(t, hours.Open(monday(18)))
}

func TestWorkingHoursWeekend(t *testing.T) {
	hours, err := NewWorkingHours("Africa/Nairobi")
	require.NoError(t, err)
	loc := hours.Location()

	saturday := time.Date(2024, time.January, 6, 12, 0, 0, 0, loc)
	sunday := time.Date(2024, time.January, 7, 12, 0, 0, 0, loc)

	assert.False(t, hours.Open(saturday))
	assert.False(t, hours.Open(sunday))
}

func TestWorkingHoursConvertsFromUTC(t *testing.T) {
	hours, err := NewWorkingHours("Africa/Nairobi")
	require.NoError(t, err)

	// 06:30 UTC is 09:30 in Nairobi (UTC+3).
	utcMorning := time.Date(2024, time.January, 8, 6, 30, 0, 0, time.UTC)
	assert.True(t, hours.Open(utcMorning))

	// 15:30 UTC is 18:30 in Nairobi.
	utcEvening := time.Date(2024, time.January, 8, 15, 30, 0, 0, time.UTC)
	assert.False(t, hours.Open(utcEvening))
}

func TestWorkingHoursUnknownTimezone(t *testing.T) {
	_, err := NewWorkingHours("Nowhere/Invalid")
	assert.Error(t, err)
}
