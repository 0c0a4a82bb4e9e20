package dto

import "time"

// CreateRuleRequest declares a new availability or block pattern.
type CreateRuleRequest struct {
	OwnerID            string     `json:"owner_id" validate:"required"`
	Kind               string     `json:"kind" validate:"required,oneof=WEEKLY MONTHLY CUSTOM"`
	DayOfWeek          *int       `json:"day_of_week" validate:"omitempty,min=0,max=6"`
	SpecificDate       *time.Time `json:"specific_date"`
	StartTime          string     `json:"start_time"`
	EndTime            string     `json:"end_time"`
	AllDay             bool       `json:"all_day"`
	IsAvailable        *bool      `json:"is_available" validate:"required"`
	BlockReason        *string    `json:"block_reason"`
	RecurrenceInterval int        `json:"recurrence_interval" validate:"omitempty,min=1"`
	EffectiveFrom      *time.Time `json:"effective_from"`
	EffectiveUntil     *time.Time `json:"effective_until"`
	Timezone           string     `json:"timezone" validate:"required"`
}

// UpdateRuleRequest carries partial modifications to an existing rule.
type UpdateRuleRequest struct {
	Kind               *string    `json:"kind" validate:"omitempty,oneof=WEEKLY MONTHLY CUSTOM"`
	DayOfWeek          *int       `json:"day_of_week" validate:"omitempty,min=0,max=6"`
	SpecificDate       *time.Time `json:"specific_date"`
	StartTime          *string    `json:"start_time"`
	EndTime            *string    `json:"end_time"`
	AllDay             *bool      `json:"all_day"`
	IsAvailable        *bool      `json:"is_available"`
	BlockReason        *string    `json:"block_reason"`
	RecurrenceInterval *int       `json:"recurrence_interval" validate:"omitempty,min=1"`
	EffectiveFrom      *time.Time `json:"effective_from"`
	EffectiveUntil     *time.Time `json:"effective_until"`
	Timezone           *string    `json:"timezone"`
}

// CreateBookingRequest stores a one-off booking or an explicit dated block.
type CreateBookingRequest struct {
	OwnerID string    `json:"owner_id" validate:"required"`
	StartAt time.Time `json:"start_at" validate:"required"`
	EndAt   time.Time `json:"end_at" validate:"required,gtfield=StartAt"`
	Status  string    `json:"status" validate:"required,oneof=BOOKED BLOCKED"`
	Reason  *string   `json:"reason"`
}
