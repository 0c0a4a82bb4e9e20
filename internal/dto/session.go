package dto

import (
	"time"

	"github.com/sarafrika/elimika-availability-api/internal/models"
)

// RecurrenceRequest is the wire form of a session cadence.
type RecurrenceRequest struct {
	Type            string `json:"type" validate:"required,oneof=DAILY WEEKLY MONTHLY YEARLY"`
	Interval        int    `json:"interval" validate:"omitempty,min=1"`
	DaysOfWeek      []int  `json:"days_of_week" validate:"omitempty,dive,min=0,max=6"`
	OccurrenceCount int    `json:"occurrence_count" validate:"required,min=1"`
}

// SessionRequest asks for a recurring class series to be previewed or
// committed against the owner's timeline.
type SessionRequest struct {
	OwnerID            string            `json:"owner_id" validate:"required"`
	WindowStart        time.Time         `json:"window_start" validate:"required"`
	WindowEnd          time.Time         `json:"window_end" validate:"required,gtfield=WindowStart"`
	Recurrence         RecurrenceRequest `json:"recurrence" validate:"required"`
	ConflictResolution string            `json:"conflict_resolution" validate:"required,oneof=FAIL SKIP OVERRIDE"`
}

// Template converts the request into the domain session template.
func (r SessionRequest) Template() models.SessionTemplate {
	interval := r.Recurrence.Interval
	if interval == 0 {
		interval = 1
	}
	return models.SessionTemplate{
		OwnerID:     r.OwnerID,
		WindowStart: r.WindowStart,
		WindowEnd:   r.WindowEnd,
		Recurrence: models.Recurrence{
			Type:            models.RecurrenceType(r.Recurrence.Type),
			Interval:        interval,
			DaysOfWeek:      r.Recurrence.DaysOfWeek,
			OccurrenceCount: r.Recurrence.OccurrenceCount,
		},
		ConflictResolution: models.ConflictPolicy(r.ConflictResolution),
	}
}

// SessionResponse reports the outcome of a preview or commit.
type SessionResponse struct {
	SessionID string                `json:"session_id,omitempty"`
	Committed bool                  `json:"committed"`
	Report    models.ConflictReport `json:"report"`
}
