package handler

import (
	"context"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/sarafrika/elimika-availability-api/internal/dto"
	"github.com/sarafrika/elimika-availability-api/internal/middleware"
	"github.com/sarafrika/elimika-availability-api/internal/schedule"
	appErrors "github.com/sarafrika/elimika-availability-api/pkg/errors"
	"github.com/sarafrika/elimika-availability-api/pkg/response"
)

type timelineService interface {
	Compute(ctx context.Context, req dto.TimelineRequest) (*dto.TimelineResponse, bool, error)
}

type cacheRecorder interface {
	RecordCacheOperation(hit bool)
}

// TimelineHandler serves the merged schedule view.
type TimelineHandler struct {
	service timelineService
	metrics cacheRecorder
}

// NewTimelineHandler builds a new handler.
func NewTimelineHandler(service timelineService, metrics cacheRecorder) *TimelineHandler {
	return &TimelineHandler{service: service, metrics: metrics}
}

// Get godoc
// @Summary Compute an owner's timeline for a window
// @Tags Timeline
// @Produce json
// @Param id path string true "Owner ID"
// @Param start query string true "Window start (YYYY-MM-DD)"
// @Param end query string true "Window end (YYYY-MM-DD)"
// @Param granularity query string false "DAY, WEEK or MONTH (default WEEK)"
// @Param tz query string false "IANA timezone for bucketing (default UTC)"
// @Success 200 {object} response.Envelope
// @Router /owners/{id}/timeline [get]
func (h *TimelineHandler) Get(c *gin.Context) {
	start, err := parseWindowBound(c.Query("start"))
	if err != nil {
		response.Error(c, appErrors.Clone(appErrors.ErrUnparsableTimestamp, "start must be YYYY-MM-DD or RFC3339"))
		return
	}
	end, err := parseWindowBound(c.Query("end"))
	if err != nil {
		response.Error(c, appErrors.Clone(appErrors.ErrUnparsableTimestamp, "end must be YYYY-MM-DD or RFC3339"))
		return
	}

	req := dto.TimelineRequest{
		OwnerID:     c.Param("id"),
		Start:       start,
		End:         end,
		Granularity: c.Query("granularity"),
		Timezone:    c.Query("tz"),
	}
	resp, hit, err := h.service.Compute(c.Request.Context(), req)
	if err != nil {
		response.Error(c, err)
		return
	}

	if h.metrics != nil {
		h.metrics.RecordCacheOperation(hit)
	}
	middleware.SetCacheHit(c, hit)
	middleware.SetTimelineVersion(c, resp.Version)
	c.Header("ETag", resp.Version)
	response.JSON(c, http.StatusOK, resp, nil, middleware.ExtractMeta(c))
}

// parseWindowBound accepts a plain calendar date or a full RFC3339 instant.
func parseWindowBound(raw string) (time.Time, error) {
	if t, err := schedule.ParseDate(raw); err == nil {
		return t, nil
	}
	return schedule.ParseDateTime(raw)
}
