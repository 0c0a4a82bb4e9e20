package models

import "time"

// RuleKind classifies how an availability rule recurs.
type RuleKind string

const (
	RuleKindWeekly  RuleKind = "WEEKLY"
	RuleKindMonthly RuleKind = "MONTHLY"
	RuleKindCustom  RuleKind = "CUSTOM"
)

// AvailabilityRule is a declared, possibly-recurring availability or block
// pattern owned by a single instructor. Day-of-week uses 0=Sunday..6=Saturday
// everywhere in this service; boundary adapters convert into it.
type AvailabilityRule struct {
	ID                 string     `db:"id" json:"id"`
	OwnerID            string     `db:"owner_id" json:"owner_id"`
	Kind               RuleKind   `db:"kind" json:"kind"`
	DayOfWeek          *int       `db:"day_of_week" json:"day_of_week,omitempty"`
	SpecificDate       *time.Time `db:"specific_date" json:"specific_date,omitempty"`
	StartTime          string     `db:"start_time" json:"start_time"`
	EndTime            string     `db:"end_time" json:"end_time"`
	AllDay             bool       `db:"all_day" json:"all_day"`
	IsAvailable        bool       `db:"is_available" json:"is_available"`
	BlockReason        *string    `db:"block_reason" json:"block_reason,omitempty"`
	RecurrenceInterval int        `db:"recurrence_interval" json:"recurrence_interval"`
	EffectiveFrom      *time.Time `db:"effective_from" json:"effective_from,omitempty"`
	EffectiveUntil     *time.Time `db:"effective_until" json:"effective_until,omitempty"`
	Timezone           string     `db:"timezone" json:"timezone"`
	CreatedAt          time.Time  `db:"created_at" json:"created_at"`
	UpdatedAt          time.Time  `db:"updated_at" json:"updated_at"`
}

// RuleFilter narrows down availability rules.
type RuleFilter struct {
	OwnerID     string
	Kind        RuleKind
	IsAvailable *bool
	Page        int
	PageSize    int
}
