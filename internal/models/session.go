package models

import "time"

// RecurrenceType is the cadence of a session template.
type RecurrenceType string

const (
	RecurrenceDaily   RecurrenceType = "DAILY"
	RecurrenceWeekly  RecurrenceType = "WEEKLY"
	RecurrenceMonthly RecurrenceType = "MONTHLY"
	RecurrenceYearly  RecurrenceType = "YEARLY"
)

// ConflictPolicy selects how collisions with booked/blocked time are handled.
type ConflictPolicy string

const (
	PolicyFail     ConflictPolicy = "FAIL"
	PolicySkip     ConflictPolicy = "SKIP"
	PolicyOverride ConflictPolicy = "OVERRIDE"
)

// Recurrence describes the cadence of a recurring class series.
type Recurrence struct {
	Type            RecurrenceType `json:"type"`
	Interval        int            `json:"interval"`
	DaysOfWeek      []int          `json:"days_of_week,omitempty"`
	OccurrenceCount int            `json:"occurrence_count"`
}

// SessionTemplate is the recurrence request for a new class series. The
// window bounds describe the first occurrence; subsequent occurrences keep
// its duration.
type SessionTemplate struct {
	OwnerID            string         `json:"owner_id"`
	WindowStart        time.Time      `json:"window_start"`
	WindowEnd          time.Time      `json:"window_end"`
	Recurrence         Recurrence     `json:"recurrence"`
	ConflictResolution ConflictPolicy `json:"conflict_resolution"`
}

// ReportOutcome summarises conflict resolution for a whole series.
type ReportOutcome string

const (
	OutcomeCommitted ReportOutcome = "COMMITTED"
	OutcomeRejected  ReportOutcome = "REJECTED"
	OutcomePartial   ReportOutcome = "PARTIAL"
)

// RejectedOccurrence pairs a rejected candidate with the instance it hit.
// CollidingInstance is nil for candidates rejected only by FAIL atomicity.
type RejectedOccurrence struct {
	Candidate         ScheduleInstance  `json:"candidate"`
	CollidingInstance *ScheduleInstance `json:"colliding_instance,omitempty"`
}

// ConflictReport is the result of resolving a SessionTemplate against an
// owner's timeline. Superseded lists the existing instances an OVERRIDE
// resolution displaced; retiring them is the caller's responsibility.
type ConflictReport struct {
	Accepted   []ScheduleInstance   `json:"accepted_occurrences"`
	Rejected   []RejectedOccurrence `json:"rejected_occurrences"`
	Superseded []ScheduleInstance   `json:"superseded_instances,omitempty"`
	Outcome    ReportOutcome        `json:"outcome"`
}
