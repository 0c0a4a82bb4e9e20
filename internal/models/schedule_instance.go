package models

import (
	"fmt"
	"time"
)

// InstanceStatus describes how a concrete time range is occupied.
type InstanceStatus string

const (
	InstanceAvailable  InstanceStatus = "AVAILABLE"
	InstanceBlocked    InstanceStatus = "BLOCKED"
	InstanceBooked     InstanceStatus = "BOOKED"
	InstanceReserved   InstanceStatus = "RESERVED"
	InstanceSuperseded InstanceStatus = "SUPERSEDED"
)

// Occupies reports whether the status blocks other activity in its range.
func (s InstanceStatus) Occupies() bool {
	return s == InstanceBooked || s == InstanceBlocked
}

// ScheduleInstance is a concrete, dated occurrence materialized from a rule
// or a one-off booking/block. Rule-derived instances are never persisted;
// they are regenerated per query window.
type ScheduleInstance struct {
	SourceRuleID string         `json:"source_rule_id,omitempty"`
	OwnerID      string         `json:"owner_id"`
	Date         time.Time      `json:"date"`
	Start        time.Time      `json:"start"`
	End          time.Time      `json:"end"`
	Status       InstanceStatus `json:"status"`
	RuleKind     RuleKind       `json:"rule_kind,omitempty"`
	BlockReason  *string        `json:"block_reason,omitempty"`
}

// Key returns the stable de-duplication identity: source rule + date.
func (i ScheduleInstance) Key() string {
	return fmt.Sprintf("%s|%s", i.SourceRuleID, i.Date.Format("2006-01-02"))
}

// Overlaps reports whether the two instances share any time.
func (i ScheduleInstance) Overlaps(other ScheduleInstance) bool {
	return i.Start.Before(other.End) && i.End.After(other.Start)
}

// Booking is a stored one-off instance: a confirmed booking or an explicit
// date-bound block that is not derived from a recurring rule.
type Booking struct {
	ID        string         `db:"id" json:"id"`
	OwnerID   string         `db:"owner_id" json:"owner_id"`
	Date      time.Time      `db:"date" json:"date"`
	StartAt   time.Time      `db:"start_at" json:"start_at"`
	EndAt     time.Time      `db:"end_at" json:"end_at"`
	Status    InstanceStatus `db:"status" json:"status"`
	Reason    *string        `db:"reason" json:"reason,omitempty"`
	SessionID *string        `db:"session_id" json:"session_id,omitempty"`
	CreatedAt time.Time      `db:"created_at" json:"created_at"`
	UpdatedAt time.Time      `db:"updated_at" json:"updated_at"`
}

// Instance converts the stored booking into its timeline representation.
func (b Booking) Instance() ScheduleInstance {
	return ScheduleInstance{
		SourceRuleID: b.ID,
		OwnerID:      b.OwnerID,
		Date:         b.Date,
		Start:        b.StartAt,
		End:          b.EndAt,
		Status:       b.Status,
		BlockReason:  b.Reason,
	}
}

// BookingFilter narrows stored bookings to a window.
type BookingFilter struct {
	OwnerID string
	From    *time.Time
	To      *time.Time
}
