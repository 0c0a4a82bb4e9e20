package schedule

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/sarafrika/elimika-availability-api/internal/models"
)

func date(y int, m time.Month, d int) time.Time {
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

func intPtr(v int) *int { return &v }

func strPtr(v string) *string { return &v }

func weeklyRule(id string, dayOfWeek, interval int) models.AvailabilityRule {
	return models.AvailabilityRule{
		ID:                 id,
		OwnerID:            "instructor-1",
		Kind:               models.RuleKindWeekly,
		DayOfWeek:          intPtr(dayOfWeek),
		StartTime:          "09:00",
		EndTime:            "10:00",
		IsAvailable:        true,
		RecurrenceInterval: interval,
		Timezone:           "UTC",
		CreatedAt:          date(2025, time.September, 29),
	}
}

func TestExpandWeeklyFidelity(t *testing.T) {
	// Tuesdays every 2 weeks over an 8-week window: exactly 4 instances,
	// each 14 days apart.
	rule := weeklyRule("rule-1", 2, 2)
	window := Window{Start: date(2025, time.September, 30), End: date(2025, time.November, 24)}

	instances, diags, err := Expand([]models.AvailabilityRule{rule}, window)
	require.NoError(t, err)
	require.Empty(t, diags)
	require.Len(t, instances, 4)

	expected := []time.Time{
		date(2025, time.September, 30),
		date(2025, time.October, 14),
		date(2025, time.October, 28),
		date(2025, time.November, 11),
	}
	for i, inst := range instances {
		assert.Equal(t, expected[i], inst.Date)
		assert.Equal(t, models.InstanceAvailable, inst.Status)
		assert.Equal(t, "rule-1", inst.SourceRuleID)
		if i > 0 {
			assert.Equal(t, 14*24*time.Hour, inst.Start.Sub(instances[i-1].Start))
		}
	}
}

func TestExpandWeeklyPhaseIndependentOfWindow(t *testing.T) {
	// An every-2-weeks rule must cover the same calendar dates no matter
	// where the query window starts.
	rule := weeklyRule("rule-1", 2, 2)

	full := Window{Start: date(2025, time.September, 30), End: date(2025, time.November, 24)}
	shifted := Window{Start: date(2025, time.October, 7), End: date(2025, time.November, 24)}

	fromFull, _, err := Expand([]models.AvailabilityRule{rule}, full)
	require.NoError(t, err)
	fromShifted, _, err := Expand([]models.AvailabilityRule{rule}, shifted)
	require.NoError(t, err)

	covered := map[string]bool{}
	for _, inst := range fromFull {
		covered[inst.Date.Format("2006-01-02")] = true
	}
	require.NotEmpty(t, fromShifted)
	for _, inst := range fromShifted {
		assert.True(t, covered[inst.Date.Format("2006-01-02")],
			"date %s appears only when the window shifts", inst.Date.Format("2006-01-02"))
		assert.NotEqual(t, date(2025, time.October, 7), inst.Date)
	}
}

func TestExpandIdempotent(t *testing.T) {
	rules := []models.AvailabilityRule{weeklyRule("rule-1", 1, 1), weeklyRule("rule-2", 4, 2)}
	window := Window{Start: date(2025, time.October, 1), End: date(2025, time.October, 31)}

	first, firstDiags, err := Expand(rules, window)
	require.NoError(t, err)
	second, secondDiags, err := Expand(rules, window)
	require.NoError(t, err)

	assert.Equal(t, first, second)
	assert.Equal(t, firstDiags, secondDiags)
}

func TestExpandCustomSingleShot(t *testing.T) {
	rule := models.AvailabilityRule{
		ID:           "custom-1",
		OwnerID:      "instructor-1",
		Kind:         models.RuleKindCustom,
		SpecificDate: timePtr(date(2025, time.October, 15)),
		StartTime:    "13:00",
		EndTime:      "15:00",
		IsAvailable:  false,
		BlockReason:  strPtr("manual block"),
		Timezone:     "UTC",
	}

	inside := Window{Start: date(2025, time.October, 1), End: date(2025, time.October, 31)}
	instances, diags, err := Expand([]models.AvailabilityRule{rule}, inside)
	require.NoError(t, err)
	require.Empty(t, diags)
	require.Len(t, instances, 1)
	assert.Equal(t, models.InstanceBlocked, instances[0].Status)
	assert.Equal(t, "manual block", *instances[0].BlockReason)

	outside := Window{Start: date(2025, time.November, 1), End: date(2025, time.November, 30)}
	instances, diags, err = Expand([]models.AvailabilityRule{rule}, outside)
	require.NoError(t, err)
	require.Empty(t, diags)
	assert.Empty(t, instances)
}

func TestExpandZeroLengthRuleIsMalformed(t *testing.T) {
	rule := weeklyRule("rule-1", 2, 1)
	rule.StartTime = "09:00"
	rule.EndTime = "09:00"
	window := Window{Start: date(2025, time.October, 1), End: date(2025, time.October, 31)}

	instances, diags, err := Expand([]models.AvailabilityRule{rule}, window)
	require.NoError(t, err)
	assert.Empty(t, instances)
	require.Len(t, diags, 1)
	assert.Equal(t, "MALFORMED_RULE", diags[0].Code)
	assert.Equal(t, "rule-1", diags[0].RuleID)
}

func TestExpandMalformedRulesReported(t *testing.T) {
	missingDay := weeklyRule("no-day", 0, 1)
	missingDay.DayOfWeek = nil
	badClock := weeklyRule("bad-clock", 3, 1)
	badClock.StartTime = "25:99"
	healthy := weeklyRule("healthy", 3, 1)

	window := Window{Start: date(2025, time.October, 1), End: date(2025, time.October, 14)}
	instances, diags, err := Expand([]models.AvailabilityRule{missingDay, badClock, healthy}, window)
	require.NoError(t, err)
	require.Len(t, diags, 2)
	for _, inst := range instances {
		assert.Equal(t, "healthy", inst.SourceRuleID)
	}
	assert.NotEmpty(t, instances)
}

func TestExpandAllDayRule(t *testing.T) {
	rule := weeklyRule("all-day", 5, 1)
	rule.AllDay = true
	rule.StartTime = ""
	rule.EndTime = ""

	window := Window{Start: date(2025, time.October, 1), End: date(2025, time.October, 7)}
	instances, diags, err := Expand([]models.AvailabilityRule{rule}, window)
	require.NoError(t, err)
	require.Empty(t, diags)
	require.Len(t, instances, 1)
	assert.Equal(t, 24*time.Hour, instances[0].End.Sub(instances[0].Start))
}

func TestExpandEffectiveRangeClamps(t *testing.T) {
	rule := weeklyRule("bounded", 2, 1)
	rule.EffectiveFrom = timePtr(date(2025, time.October, 7))
	rule.EffectiveUntil = timePtr(date(2025, time.October, 21))

	window := Window{Start: date(2025, time.September, 1), End: date(2025, time.November, 30)}
	instances, diags, err := Expand([]models.AvailabilityRule{rule}, window)
	require.NoError(t, err)
	require.Empty(t, diags)
	require.Len(t, instances, 3)
	assert.Equal(t, date(2025, time.October, 7), instances[0].Date)
	assert.Equal(t, date(2025, time.October, 21), instances[2].Date)
}

func TestExpandMonthlyDayOfMonthAnchor(t *testing.T) {
	rule := models.AvailabilityRule{
		ID:                 "monthly-1",
		OwnerID:            "instructor-1",
		Kind:               models.RuleKindMonthly,
		StartTime:          "10:00",
		EndTime:            "11:30",
		IsAvailable:        true,
		RecurrenceInterval: 1,
		EffectiveFrom:      timePtr(date(2025, time.January, 15)),
		Timezone:           "UTC",
	}

	window := Window{Start: date(2025, time.March, 1), End: date(2025, time.May, 31)}
	instances, diags, err := Expand([]models.AvailabilityRule{rule}, window)
	require.NoError(t, err)
	require.Empty(t, diags)
	require.Len(t, instances, 3)
	for _, inst := range instances {
		assert.Equal(t, 15, inst.Date.Day())
	}
}

func TestExpandInvalidTimezoneFailsFast(t *testing.T) {
	rule := weeklyRule("rule-1", 2, 1)
	rule.Timezone = "Not/AZone"
	window := Window{Start: date(2025, time.October, 1), End: date(2025, time.October, 31)}

	_, _, err := Expand([]models.AvailabilityRule{rule}, window)
	require.ErrorIs(t, err, ErrInvalidTimezone)
}

func TestExpandLocalTimesFollowRuleTimezone(t *testing.T) {
	rule := weeklyRule("nairobi", 3, 1)
	rule.Timezone = "Africa/Nairobi"

	window := Window{Start: date(2025, time.October, 1), End: date(2025, time.October, 7)}
	instances, diags, err := Expand([]models.AvailabilityRule{rule}, window)
	require.NoError(t, err)
	require.Empty(t, diags)
	require.Len(t, instances, 1)
	// 09:00 in Nairobi is 06:00 UTC.
	assert.Equal(t, 6, instances[0].Start.UTC().Hour())
}

func timePtr(t time.Time) *time.Time { return &t }
