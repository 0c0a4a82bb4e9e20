package dto

import (
	"time"

	"github.com/sarafrika/elimika-availability-api/internal/models"
	"github.com/sarafrika/elimika-availability-api/internal/schedule"
)

// TimelineRequest captures the query parameters for an owner timeline.
type TimelineRequest struct {
	OwnerID     string
	Start       time.Time
	End         time.Time
	Granularity string
	Timezone    string
}

// TimelineResponse is the computed, merged schedule for one owner and window.
// Version is a digest of the content; clients echo it back via If-Match when
// committing session series against this view.
type TimelineResponse struct {
	OwnerID     string                    `json:"owner_id"`
	WindowStart time.Time                 `json:"window_start"`
	WindowEnd   time.Time                 `json:"window_end"`
	Granularity string                    `json:"granularity"`
	Timezone    string                    `json:"timezone"`
	Version     string                    `json:"version"`
	Buckets     []schedule.Bucket         `json:"buckets"`
	Instances   []models.ScheduleInstance `json:"instances"`
	Diagnostics []schedule.Diagnostic     `json:"diagnostics,omitempty"`
}
