package schedule

import (
	"fmt"
	"sort"
	"time"

	"github.com/teambition/rrule-go"

	"github.com/sarafrika/elimika-availability-api/internal/models"
)

// Window is the calendar-date range over which expansion is requested.
// Both bounds are inclusive dates; time-of-day components are ignored.
type Window struct {
	Start time.Time
	End   time.Time
}

// Diagnostic reports a rule that was excluded from expansion. Malformed
// rules are never silently dropped.
type Diagnostic struct {
	RuleID  string `json:"rule_id"`
	OwnerID string `json:"owner_id"`
	Code    string `json:"code"`
	Reason  string `json:"reason"`
}

const diagMalformedRule = "MALFORMED_RULE"

// dayOfWeek 0=Sunday..6=Saturday mapped onto rrule weekday constants.
var rruleWeekdays = []rrule.Weekday{rrule.SU, rrule.MO, rrule.TU, rrule.WE, rrule.TH, rrule.FR, rrule.SA}

// Expand materializes concrete schedule instances for every rule over the
// window. It is pure: no clock reads, no mutation of input. Malformed
// rules come back as diagnostics; an invalid timezone on any rule fails
// the whole call before expansion, since instants cannot be compared
// without it.
func Expand(rules []models.AvailabilityRule, window Window) ([]models.ScheduleInstance, []Diagnostic, error) {
	if window.End.Before(window.Start) {
		return nil, nil, fmt.Errorf("%w: window end before start", ErrUnparsableTimestamp)
	}

	var instances []models.ScheduleInstance
	var diags []Diagnostic

	for _, rule := range rules {
		loc, err := LoadLocation(rule.Timezone)
		if err != nil {
			return nil, nil, fmt.Errorf("rule %s: %w", rule.ID, err)
		}

		start, end, reason := validateRule(rule)
		if reason != "" {
			diags = append(diags, Diagnostic{RuleID: rule.ID, OwnerID: rule.OwnerID, Code: diagMalformedRule, Reason: reason})
			continue
		}

		var dates []time.Time
		switch rule.Kind {
		case models.RuleKindWeekly:
			dates = weeklyDates(rule, window, loc)
		case models.RuleKindMonthly:
			dates = monthlyDates(rule, window, loc)
		case models.RuleKindCustom:
			dates = customDates(rule, window, loc)
		}

		for _, day := range dates {
			instances = append(instances, buildInstance(rule, day, start, end))
		}
	}

	sortInstances(instances)
	return instances, diags, nil
}

// validateRule classifies malformed rules and returns the parsed clocks for
// well-formed ones. All-day rules skip time parsing entirely.
func validateRule(rule models.AvailabilityRule) (clock, clock, string) {
	switch rule.Kind {
	case models.RuleKindWeekly:
		if rule.DayOfWeek == nil {
			return clock{}, clock{}, "weekly rule missing day_of_week"
		}
		if *rule.DayOfWeek < 0 || *rule.DayOfWeek > 6 {
			return clock{}, clock{}, fmt.Sprintf("day_of_week %d outside 0-6", *rule.DayOfWeek)
		}
	case models.RuleKindMonthly:
		if rule.EffectiveFrom == nil {
			return clock{}, clock{}, "monthly rule missing effective_from anchor"
		}
	case models.RuleKindCustom:
		if rule.SpecificDate == nil {
			return clock{}, clock{}, "custom rule missing specific_date"
		}
	default:
		return clock{}, clock{}, fmt.Sprintf("unknown rule kind %q", rule.Kind)
	}

	if rule.AllDay {
		return clock{}, clock{hour: 24}, ""
	}

	start, err := parseClock(rule.StartTime)
	if err != nil {
		return clock{}, clock{}, fmt.Sprintf("unparsable start_time %q", rule.StartTime)
	}
	end, err := parseClock(rule.EndTime)
	if err != nil {
		return clock{}, clock{}, fmt.Sprintf("unparsable end_time %q", rule.EndTime)
	}
	if !start.before(end) {
		return clock{}, clock{}, "start_time must be before end_time"
	}
	return start, end, ""
}

// effectiveBounds clamps the window against the rule's effective range.
// The second return is false when the two do not intersect.
func effectiveBounds(rule models.AvailabilityRule, window Window) (time.Time, time.Time, bool) {
	lower := window.Start
	if rule.EffectiveFrom != nil && rule.EffectiveFrom.After(lower) {
		lower = *rule.EffectiveFrom
	}
	upper := window.End
	if rule.EffectiveUntil != nil && rule.EffectiveUntil.Before(upper) {
		upper = *rule.EffectiveUntil
	}
	if upper.Before(lower) {
		return time.Time{}, time.Time{}, false
	}
	return lower, upper, true
}

// weeklyDates emits every date in the clamped window whose weekday matches
// the rule and whose week offset from the anchor week is a multiple of the
// recurrence interval. The anchor belongs to the rule, not the query: the
// first matching day on or after effective_from when set, else on or after
// the rule's creation date. Overlapping windows therefore always agree on
// which weeks an every-N-weeks rule covers.
func weeklyDates(rule models.AvailabilityRule, window Window, loc *time.Location) []time.Time {
	lower, upper, ok := effectiveBounds(rule, window)
	if !ok {
		return nil
	}

	anchor := rule.CreatedAt
	if rule.EffectiveFrom != nil {
		anchor = *rule.EffectiveFrom
	}
	day := time.Weekday(*rule.DayOfWeek)
	dtstart := midnight(anchor, loc)
	for dtstart.Weekday() != day {
		dtstart = dtstart.AddDate(0, 0, 1)
	}

	step := interval(rule)
	// Fast-forward in whole interval-weeks so iteration starts near the
	// window without shifting the rule's phase.
	if first := midnight(lower, loc); dtstart.Before(first) {
		weeks := int(first.Sub(dtstart).Hours()/(24*7)) / step * step
		dtstart = dtstart.AddDate(0, 0, weeks*7)
	}

	r, err := rrule.NewRRule(rrule.ROption{
		Freq:      rrule.WEEKLY,
		Interval:  step,
		Dtstart:   dtstart,
		Byweekday: []rrule.Weekday{rruleWeekdays[*rule.DayOfWeek]},
	})
	if err != nil {
		return nil
	}
	return r.Between(midnight(lower, loc), midnight(upper, loc), true)
}

// monthlyDates anchors on the day-of-month of effective_from and steps
// every N months. Months lacking the anchor day are skipped rather than
// rolled over.
func monthlyDates(rule models.AvailabilityRule, window Window, loc *time.Location) []time.Time {
	lower, upper, ok := effectiveBounds(rule, window)
	if !ok {
		return nil
	}

	r, err := rrule.NewRRule(rrule.ROption{
		Freq:     rrule.MONTHLY,
		Interval: interval(rule),
		Dtstart:  midnight(*rule.EffectiveFrom, loc),
	})
	if err != nil {
		return nil
	}
	return r.Between(midnight(lower, loc), midnight(upper, loc), true)
}

// customDates emits the single explicit date when it falls inside the
// window; a CUSTOM rule never recurs.
func customDates(rule models.AvailabilityRule, window Window, loc *time.Location) []time.Time {
	lower, upper, ok := effectiveBounds(rule, window)
	if !ok {
		return nil
	}
	day := midnight(*rule.SpecificDate, loc)
	if day.Before(midnight(lower, loc)) || day.After(midnight(upper, loc)) {
		return nil
	}
	return []time.Time{day}
}

func buildInstance(rule models.AvailabilityRule, day time.Time, start, end clock) models.ScheduleInstance {
	status := models.InstanceAvailable
	var reason *string
	if !rule.IsAvailable {
		status = models.InstanceBlocked
		reason = rule.BlockReason
	}

	var startAt, endAt time.Time
	if rule.AllDay {
		startAt = day
		endAt = day.AddDate(0, 0, 1)
	} else {
		startAt = at(day, start)
		endAt = at(day, end)
	}

	return models.ScheduleInstance{
		SourceRuleID: rule.ID,
		OwnerID:      rule.OwnerID,
		Date:         dateOnly(day),
		Start:        startAt,
		End:          endAt,
		Status:       status,
		RuleKind:     rule.Kind,
		BlockReason:  reason,
	}
}

func interval(rule models.AvailabilityRule) int {
	if rule.RecurrenceInterval < 1 {
		return 1
	}
	return rule.RecurrenceInterval
}

// sortInstances orders ascending by start, ties broken by source rule ID
// for deterministic output.
func sortInstances(instances []models.ScheduleInstance) {
	sort.SliceStable(instances, func(i, j int) bool {
		if !instances[i].Start.Equal(instances[j].Start) {
			return instances[i].Start.Before(instances[j].Start)
		}
		return instances[i].SourceRuleID < instances[j].SourceRuleID
	})
}
