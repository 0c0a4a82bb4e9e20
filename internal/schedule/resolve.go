package schedule

import (
	"fmt"
	"sort"
	"time"

	"github.com/teambition/rrule-go"

	"github.com/sarafrika/elimika-availability-api/internal/models"
)

// lookaheadFactor bounds WEEKLY candidate generation: a weekly template
// whose days_of_week and interval cannot realize the occurrence count
// within occurrenceCount*lookaheadFactor weeks is degenerate. Other
// cadences carry an occurrence count on the rule itself and always
// realize it directly.
const lookaheadFactor = 10

var rruleFreqs = map[models.RecurrenceType]rrule.Frequency{
	models.RecurrenceDaily:   rrule.DAILY,
	models.RecurrenceWeekly:  rrule.WEEKLY,
	models.RecurrenceMonthly: rrule.MONTHLY,
	models.RecurrenceYearly:  rrule.YEARLY,
}

// Resolve materializes the template's candidate occurrences and tests them
// against the owner's timeline, applying the template's conflict policy.
// Identical inputs always yield an identical report: candidates are
// generated deterministically and collisions are matched against the
// timeline in sorted order regardless of how it was produced.
func Resolve(template models.SessionTemplate, ownerTimeline []models.ScheduleInstance) (models.ConflictReport, error) {
	if err := validateTemplate(template); err != nil {
		return models.ConflictReport{Outcome: models.OutcomeRejected}, err
	}

	candidates, err := materializeCandidates(template)
	if err != nil {
		return models.ConflictReport{Outcome: models.OutcomeRejected}, err
	}

	occupied := occupiedSorted(ownerTimeline)

	type collision struct {
		candidate models.ScheduleInstance
		hit       *models.ScheduleInstance
	}
	collisions := make([]collision, 0, len(candidates))
	anyHit := false
	for _, cand := range candidates {
		hit := firstCollision(cand, occupied)
		if hit != nil {
			anyHit = true
		}
		collisions = append(collisions, collision{candidate: cand, hit: hit})
	}

	report := models.ConflictReport{}
	switch template.ConflictResolution {
	case models.PolicyFail:
		if anyHit {
			// A series is atomic: every candidate is rejected, clean
			// ones included.
			report.Outcome = models.OutcomeRejected
			for _, c := range collisions {
				report.Rejected = append(report.Rejected, models.RejectedOccurrence{Candidate: c.candidate, CollidingInstance: c.hit})
			}
			return report, nil
		}
		report.Outcome = models.OutcomeCommitted
		report.Accepted = candidates
	case models.PolicySkip:
		for _, c := range collisions {
			if c.hit != nil {
				report.Rejected = append(report.Rejected, models.RejectedOccurrence{Candidate: c.candidate, CollidingInstance: c.hit})
				continue
			}
			report.Accepted = append(report.Accepted, c.candidate)
		}
		if len(report.Rejected) > 0 {
			report.Outcome = models.OutcomePartial
		} else {
			report.Outcome = models.OutcomeCommitted
		}
	case models.PolicyOverride:
		report.Accepted = candidates
		report.Outcome = models.OutcomeCommitted
		seen := make(map[string]bool)
		for _, c := range collisions {
			if c.hit != nil && !seen[c.hit.Key()] {
				seen[c.hit.Key()] = true
				report.Superseded = append(report.Superseded, *c.hit)
			}
		}
	}
	return report, nil
}

func validateTemplate(t models.SessionTemplate) error {
	if _, ok := rruleFreqs[t.Recurrence.Type]; !ok {
		return fmt.Errorf("%w: unknown recurrence type %q", ErrDegenerateRecurrence, t.Recurrence.Type)
	}
	switch t.ConflictResolution {
	case models.PolicyFail, models.PolicySkip, models.PolicyOverride:
	default:
		return fmt.Errorf("%w: unknown conflict policy %q", ErrDegenerateRecurrence, t.ConflictResolution)
	}
	if t.Recurrence.Interval < 1 {
		return fmt.Errorf("%w: interval must be >= 1", ErrDegenerateRecurrence)
	}
	if t.Recurrence.OccurrenceCount < 1 {
		return fmt.Errorf("%w: occurrence_count must be >= 1", ErrDegenerateRecurrence)
	}
	if !t.WindowEnd.After(t.WindowStart) {
		return fmt.Errorf("%w: window_end must be after window_start", ErrUnparsableTimestamp)
	}
	for _, day := range t.Recurrence.DaysOfWeek {
		if day < 0 || day > 6 {
			return fmt.Errorf("%w: days_of_week entry %d outside 0-6", ErrDegenerateRecurrence, day)
		}
	}
	return nil
}

// materializeCandidates produces exactly occurrenceCount candidates from
// the template cadence, each keeping the first occurrence's duration.
func materializeCandidates(t models.SessionTemplate) ([]models.ScheduleInstance, error) {
	duration := t.WindowEnd.Sub(t.WindowStart)
	count := t.Recurrence.OccurrenceCount

	opt := rrule.ROption{
		Freq:     rruleFreqs[t.Recurrence.Type],
		Interval: t.Recurrence.Interval,
		Dtstart:  t.WindowStart,
		Count:    count,
	}
	if t.Recurrence.Type == models.RecurrenceWeekly && len(t.Recurrence.DaysOfWeek) > 0 {
		for _, day := range t.Recurrence.DaysOfWeek {
			opt.Byweekday = append(opt.Byweekday, rruleWeekdays[day])
		}
	}

	r, err := rrule.NewRRule(opt)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrDegenerateRecurrence, err)
	}

	// Only WEEKLY can fall short: days_of_week and interval may never line
	// up again, so its search is bounded. Every other cadence terminates at
	// the rrule count.
	bounded := t.Recurrence.Type == models.RecurrenceWeekly
	var limit time.Time
	if bounded {
		limit = lookaheadLimit(t)
	}
	candidates := make([]models.ScheduleInstance, 0, count)
	iter := r.Iterator()
	for {
		start, ok := iter()
		if !ok || (bounded && start.After(limit)) {
			break
		}
		candidates = append(candidates, models.ScheduleInstance{
			OwnerID:  t.OwnerID,
			Date:     dateOnly(start),
			Start:    start,
			End:      start.Add(duration),
			Status:   models.InstanceReserved,
			RuleKind: "",
		})
		if len(candidates) == count {
			break
		}
	}

	if len(candidates) < count {
		return nil, fmt.Errorf("%w: produced %d of %d occurrences within look-ahead", ErrDegenerateRecurrence, len(candidates), count)
	}
	return candidates, nil
}

// ResolutionHorizon returns the calendar window a caller must load the
// owner's timeline over so that every candidate the template can produce is
// covered.
func ResolutionHorizon(t models.SessionTemplate) (time.Time, time.Time) {
	duration := t.WindowEnd.Sub(t.WindowStart)
	return dateOnly(t.WindowStart), dateOnly(lastCandidateStart(t).Add(duration)).AddDate(0, 0, 1)
}

// lastCandidateStart bounds the start of the final candidate occurrence.
func lastCandidateStart(t models.SessionTemplate) time.Time {
	steps := t.Recurrence.Interval * (t.Recurrence.OccurrenceCount - 1)
	switch t.Recurrence.Type {
	case models.RecurrenceDaily:
		return t.WindowStart.AddDate(0, 0, steps)
	case models.RecurrenceWeekly:
		return lookaheadLimit(t)
	case models.RecurrenceMonthly:
		return t.WindowStart.AddDate(0, steps, 0)
	default:
		return t.WindowStart.AddDate(steps, 0, 0)
	}
}

func lookaheadLimit(t models.SessionTemplate) time.Time {
	return t.WindowStart.AddDate(0, 0, t.Recurrence.OccurrenceCount*lookaheadFactor*7)
}

// occupiedSorted filters the timeline down to blocking instances and
// orders them independently of input order. AVAILABLE never blocks.
func occupiedSorted(timeline []models.ScheduleInstance) []models.ScheduleInstance {
	occupied := make([]models.ScheduleInstance, 0, len(timeline))
	for _, inst := range timeline {
		if inst.Status.Occupies() {
			occupied = append(occupied, inst)
		}
	}
	sort.SliceStable(occupied, func(i, j int) bool {
		if !occupied[i].Start.Equal(occupied[j].Start) {
			return occupied[i].Start.Before(occupied[j].Start)
		}
		return occupied[i].SourceRuleID < occupied[j].SourceRuleID
	})
	return occupied
}

func firstCollision(cand models.ScheduleInstance, occupied []models.ScheduleInstance) *models.ScheduleInstance {
	for i := range occupied {
		if cand.Overlaps(occupied[i]) {
			hit := occupied[i]
			return &hit
		}
	}
	return nil
}
