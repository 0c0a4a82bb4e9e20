package schedule

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/sarafrika/elimika-availability-api/internal/models"
)

func instance(ruleID string, status models.InstanceStatus, kind models.RuleKind, start, end time.Time) models.ScheduleInstance {
	return models.ScheduleInstance{
		SourceRuleID: ruleID,
		OwnerID:      "instructor-1",
		Date:         dateOnly(start),
		Start:        start,
		End:          end,
		Status:       status,
		RuleKind:     kind,
	}
}

func TestMergeBookedOverridesAvailable(t *testing.T) {
	start := time.Date(2025, time.October, 7, 9, 0, 0, 0, time.UTC)
	end := start.Add(time.Hour)

	expanded := []models.ScheduleInstance{instance("rule-1", models.InstanceAvailable, models.RuleKindWeekly, start, end)}
	oneOffs := []models.ScheduleInstance{instance("booking-1", models.InstanceBooked, "", start, end)}

	merged := Merge(expanded, oneOffs)
	require.Len(t, merged, 1)
	assert.Equal(t, models.InstanceBooked, merged[0].Status)
	assert.Equal(t, "booking-1", merged[0].SourceRuleID)
}

func TestMergePartialOverlapStillOverrides(t *testing.T) {
	avStart := time.Date(2025, time.October, 7, 9, 0, 0, 0, time.UTC)
	expanded := []models.ScheduleInstance{instance("rule-1", models.InstanceAvailable, models.RuleKindWeekly, avStart, avStart.Add(2*time.Hour))}
	oneOffs := []models.ScheduleInstance{instance("block-1", models.InstanceBlocked, "", avStart.Add(time.Hour), avStart.Add(3*time.Hour))}

	merged := Merge(expanded, oneOffs)
	require.Len(t, merged, 1)
	assert.Equal(t, models.InstanceBlocked, merged[0].Status)
}

func TestMergeRecurringBlockSurvivesBooking(t *testing.T) {
	start := time.Date(2025, time.October, 7, 9, 0, 0, 0, time.UTC)
	end := start.Add(time.Hour)

	expanded := []models.ScheduleInstance{instance("rule-1", models.InstanceBlocked, models.RuleKindWeekly, start, end)}
	oneOffs := []models.ScheduleInstance{instance("booking-1", models.InstanceBooked, "", start, end)}

	merged := Merge(expanded, oneOffs)
	// Only a recurring AVAILABLE yields to a one-off; both occupied entries stay.
	require.Len(t, merged, 2)
}

func TestMergeCustomWinsOverWeeklyDuplicate(t *testing.T) {
	start := time.Date(2025, time.October, 7, 9, 0, 0, 0, time.UTC)
	end := start.Add(time.Hour)

	expanded := []models.ScheduleInstance{
		instance("weekly-1", models.InstanceAvailable, models.RuleKindWeekly, start, end),
		instance("custom-1", models.InstanceBlocked, models.RuleKindCustom, start, end),
	}

	merged := Merge(expanded, nil)
	require.Len(t, merged, 1)
	assert.Equal(t, "custom-1", merged[0].SourceRuleID)
}

func TestMergeSameKindDuplicateKeepsFirstSorted(t *testing.T) {
	start := time.Date(2025, time.October, 7, 9, 0, 0, 0, time.UTC)
	end := start.Add(time.Hour)

	expanded := []models.ScheduleInstance{
		instance("weekly-b", models.InstanceAvailable, models.RuleKindWeekly, start, end),
		instance("weekly-a", models.InstanceAvailable, models.RuleKindWeekly, start, end),
	}

	merged := Merge(expanded, nil)
	require.Len(t, merged, 1)
	assert.Equal(t, "weekly-a", merged[0].SourceRuleID)
}

func TestMergeKeepsSortOrder(t *testing.T) {
	nine := time.Date(2025, time.October, 7, 9, 0, 0, 0, time.UTC)
	eleven := nine.Add(2 * time.Hour)
	thirteen := nine.Add(4 * time.Hour)

	expanded := []models.ScheduleInstance{
		instance("rule-1", models.InstanceAvailable, models.RuleKindWeekly, thirteen, thirteen.Add(time.Hour)),
		instance("rule-1", models.InstanceAvailable, models.RuleKindWeekly, nine, nine.Add(time.Hour)),
	}
	oneOffs := []models.ScheduleInstance{instance("booking-1", models.InstanceBooked, "", eleven, eleven.Add(time.Hour))}

	merged := Merge(expanded, oneOffs)
	require.Len(t, merged, 3)
	assert.True(t, merged[0].Start.Before(merged[1].Start))
	assert.True(t, merged[1].Start.Before(merged[2].Start))
}

func TestMergeIgnoresOtherOwnersOneOffs(t *testing.T) {
	start := time.Date(2025, time.October, 7, 9, 0, 0, 0, time.UTC)
	end := start.Add(time.Hour)

	expanded := []models.ScheduleInstance{instance("rule-1", models.InstanceAvailable, models.RuleKindWeekly, start, end)}
	foreign := instance("booking-1", models.InstanceBooked, "", start, end)
	foreign.OwnerID = "instructor-2"

	merged := Merge(expanded, []models.ScheduleInstance{foreign})
	require.Len(t, merged, 2)
	for _, inst := range merged {
		if inst.SourceRuleID == "rule-1" {
			assert.Equal(t, models.InstanceAvailable, inst.Status)
		}
	}
}
