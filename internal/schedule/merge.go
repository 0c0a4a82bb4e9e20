package schedule

import "github.com/sarafrika/elimika-availability-api/internal/models"

// Merge overlays one-off instances (confirmed bookings, explicit blocks)
// onto rule-derived instances, producing the final occupied/available
// timeline for an owner.
//
// Precedence: a one-off BOOKED or BLOCKED instance always overrides a
// recurring AVAILABLE instance it overlaps. Two recurring instances
// covering the same interval are not expected, but when they occur the
// more specific kind (CUSTOM over WEEKLY/MONTHLY) wins; same kind keeps
// the first in sorted order. Output retains expansion sort order.
func Merge(expanded, oneOffs []models.ScheduleInstance) []models.ScheduleInstance {
	deduped := dedupeRecurring(expanded)

	merged := make([]models.ScheduleInstance, 0, len(deduped)+len(oneOffs))
	for _, inst := range deduped {
		if inst.Status == models.InstanceAvailable && overriddenByOneOff(inst, oneOffs) {
			continue
		}
		merged = append(merged, inst)
	}
	merged = append(merged, oneOffs...)

	sortInstances(merged)
	return merged
}

func overriddenByOneOff(inst models.ScheduleInstance, oneOffs []models.ScheduleInstance) bool {
	for _, off := range oneOffs {
		if off.OwnerID != inst.OwnerID {
			continue
		}
		if off.Status.Occupies() && inst.Overlaps(off) {
			return true
		}
	}
	return false
}

type intervalKey struct {
	owner      string
	start, end int64
}

func dedupeRecurring(expanded []models.ScheduleInstance) []models.ScheduleInstance {
	sorted := make([]models.ScheduleInstance, len(expanded))
	copy(sorted, expanded)
	sortInstances(sorted)

	kept := make([]models.ScheduleInstance, 0, len(sorted))
	index := make(map[intervalKey]int, len(sorted))
	for _, inst := range sorted {
		key := intervalKey{owner: inst.OwnerID, start: inst.Start.Unix(), end: inst.End.Unix()}
		at, exists := index[key]
		if !exists {
			index[key] = len(kept)
			kept = append(kept, inst)
			continue
		}
		// CUSTOM beats recurring kinds; otherwise first encountered stays.
		if inst.RuleKind == models.RuleKindCustom && kept[at].RuleKind != models.RuleKindCustom {
			kept[at] = inst
		}
	}
	return kept
}
