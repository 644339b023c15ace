package schedule_test

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/reportdeck/internal/schedule"
)

// Cairo resolves to a fixed UTC+2 offset.
const cairo = "Africa/Cairo"

func TestNextExecution_Deterministic(t *testing.T) {
	now := time.Date(2025, 3, 10, 6, 0, 0, 0, time.UTC)

	first, err := schedule.NextExecution("30 9 * * *", cairo, now)
	require.NoError(t, err)
	second, err := schedule.NextExecution("30 9 * * *", cairo, now)
	require.NoError(t, err)

	assert.Equal(t, first, second)
}

func TestNextExecution_DailyBeforeTarget(t *testing.T) {
	// 08:00 local in Cairo is 06:00 UTC.
	now := time.Date(2025, 3, 10, 6, 0, 0, 0, time.UTC)

	next, err := schedule.NextExecution("30 9 * * *", cairo, now)
	require.NoError(t, err)

	// Today at 09:30 local = 07:30 UTC.
	assert.Equal(t, time.Date(2025, 3, 10, 7, 30, 0, 0, time.UTC), next)
}

func TestNextExecution_DailyAfterTarget(t *testing.T) {
	// 10:00 local in Cairo is 08:00 UTC.
	now := time.Date(2025, 3, 10, 8, 0, 0, 0, time.UTC)

	next, err := schedule.NextExecution("30 9 * * *", cairo, now)
	require.NoError(t, err)

	// Tomorrow at 09:30 local.
	assert.Equal(t, time.Date(2025, 3, 11, 7, 30, 0, 0, time.UTC), next)
}

func TestNextExecution_WeeklyRollsForward(t *testing.T) {
	// 2025-03-10 is a Monday; 10:00 local is past the 09:00 target.
	now := time.Date(2025, 3, 10, 8, 0, 0, 0, time.UTC)

	next, err := schedule.NextExecution("0 9 * * 1", cairo, now)
	require.NoError(t, err)

	// Next Monday at 09:00 local = 07:00 UTC.
	assert.Equal(t, time.Date(2025, 3, 17, 7, 0, 0, 0, time.UTC), next)
	assert.Equal(t, time.Monday, next.In(schedule.Zone(cairo)).Weekday())
}

func TestNextExecution_WeeklySameDayBeforeTarget(t *testing.T) {
	// Monday 08:00 local, target Monday 09:00 local: fires today.
	now := time.Date(2025, 3, 10, 6, 0, 0, 0, time.UTC)

	next, err := schedule.NextExecution("0 9 * * 1", cairo, now)
	require.NoError(t, err)

	assert.Equal(t, time.Date(2025, 3, 10, 7, 0, 0, 0, time.UTC), next)
}

func TestNextExecution_MonthlyBoundary(t *testing.T) {
	// The 20th is past day 15, so the run moves to next month.
	now := time.Date(2025, 3, 20, 12, 0, 0, 0, time.UTC)

	next, err := schedule.NextExecution("0 9 15 * *", cairo, now)
	require.NoError(t, err)

	assert.Equal(t, time.Date(2025, 4, 15, 7, 0, 0, 0, time.UTC), next)
}

func TestNextExecution_IntervalMinutes(t *testing.T) {
	now := time.Date(2025, 3, 10, 12, 7, 30, 0, time.UTC)

	next, err := schedule.NextExecution("*/15 * * * *", "UTC", now)
	require.NoError(t, err)
	assert.Equal(t, time.Date(2025, 3, 10, 12, 15, 0, 0, time.UTC), next)
}

func TestNextExecution_IntervalRollsIntoNextHour(t *testing.T) {
	now := time.Date(2025, 3, 10, 12, 50, 0, 0, time.UTC)

	next, err := schedule.NextExecution("*/20 * * * *", "UTC", now)
	require.NoError(t, err)
	assert.Equal(t, time.Date(2025, 3, 10, 13, 0, 0, 0, time.UTC), next)
}

func TestNextExecution_IntervalStrictlyAfterNow(t *testing.T) {
	// Exactly on a boundary: the boundary itself must not be returned.
	now := time.Date(2025, 3, 10, 12, 30, 0, 0, time.UTC)

	next, err := schedule.NextExecution("*/15 * * * *", "UTC", now)
	require.NoError(t, err)
	assert.Equal(t, time.Date(2025, 3, 10, 12, 45, 0, 0, time.UTC), next)
}

func TestNextExecution_CompositeFallsBackToNextHour(t *testing.T) {
	// Both day-of-month and day-of-week fixed is outside the supported
	// subset and falls back to the top of the next hour.
	now := time.Date(2025, 3, 10, 12, 40, 0, 0, time.UTC)

	next, err := schedule.NextExecution("0 9 15 * 1", "UTC", now)
	require.NoError(t, err)
	assert.Equal(t, time.Date(2025, 3, 10, 13, 0, 0, 0, time.UTC), next)
}

func TestNextExecution_MalformedExpression(t *testing.T) {
	now := time.Date(2025, 3, 10, 12, 0, 0, 0, time.UTC)

	_, err := schedule.NextExecution("garbage", cairo, now)
	assert.ErrorIs(t, err, schedule.ErrInvalidExpression)

	_, err = schedule.NextExecution("61 9 * * *", cairo, now)
	assert.ErrorIs(t, err, schedule.ErrInvalidExpression)

	_, err = schedule.NextExecution("0 9 * *", cairo, now)
	assert.ErrorIs(t, err, schedule.ErrInvalidExpression)
}

func TestNextExecutionOrFallback_NeverFails(t *testing.T) {
	now := time.Date(2025, 3, 10, 12, 0, 0, 0, time.UTC)

	next := schedule.NextExecutionOrFallback("garbage", cairo, now)
	assert.Equal(t, now.Add(time.Hour), next)
}

func TestNextExecution_UnknownZoneDefaultsToUTC(t *testing.T) {
	now := time.Date(2025, 3, 10, 6, 0, 0, 0, time.UTC)

	next, err := schedule.NextExecution("30 9 * * *", "Mars/Olympus", now)
	require.NoError(t, err)
	assert.Equal(t, time.Date(2025, 3, 10, 9, 30, 0, 0, time.UTC), next)
}

func TestDescribe(t *testing.T) {
	tests := []struct {
		name string
		expr string
		tz   string
		want string
	}{
		{"daily", "30 9 * * *", cairo, "Every day at 9:30 AM (Cairo)"},
		{"weekly", "0 9 * * 1", cairo, "Every Monday at 9:00 AM (Cairo)"},
		{"monthly", "0 9 15 * *", cairo, "Monthly on day 15 at 9:00 AM (Cairo)"},
		{"interval", "*/15 * * * *", "UTC", "Every 15 minutes"},
		{"every minute", "*/1 * * * *", "UTC", "Every minute"},
		{"afternoon", "0 14 * * *", "America/New_York", "Every day at 2:00 PM (New York)"},
		{"midnight", "0 0 * * *", "UTC", "Every day at 12:00 AM (UTC)"},
		{"composite", "0 9 15 * 1", "UTC", "Every hour"},
		{"malformed comes back verbatim", "garbage", cairo, "garbage"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, schedule.Describe(tt.expr, tt.tz))
		})
	}
}

func TestValidate(t *testing.T) {
	assert.NoError(t, schedule.Validate("30 9 * * *"))
	assert.NoError(t, schedule.Validate("*/5 * * * *"))
	assert.Error(t, schedule.Validate(""))
	assert.Error(t, schedule.Validate("a b c d e"))
	assert.Error(t, schedule.Validate("0 24 * * *"))
}
