package handler

import (
	"context"
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/sarafrika/elimika-availability-api/internal/dto"
	"github.com/sarafrika/elimika-availability-api/internal/models"
	appErrors "github.com/sarafrika/elimika-availability-api/pkg/errors"
	"github.com/sarafrika/elimika-availability-api/pkg/response"
)

type sessionService interface {
	Preview(ctx context.Context, req dto.SessionRequest) (*dto.SessionResponse, string, error)
	Commit(ctx context.Context, req dto.SessionRequest, ifMatch string) (*dto.SessionResponse, error)
}

type resolutionRecorder interface {
	RecordResolution(outcome models.ReportOutcome)
}

// SessionHandler previews and commits recurring class series.
type SessionHandler struct {
	service sessionService
	metrics resolutionRecorder
}

// NewSessionHandler builds a new handler.
func NewSessionHandler(service sessionService, metrics resolutionRecorder) *SessionHandler {
	return &SessionHandler{service: service, metrics: metrics}
}

// Preview godoc
// @Summary Resolve a session series without persisting it
// @Tags Sessions
// @Accept json
// @Produce json
// @Param payload body dto.SessionRequest true "Session payload"
// @Success 200 {object} response.Envelope
// @Router /sessions/preview [post]
func (h *SessionHandler) Preview(c *gin.Context) {
	var req dto.SessionRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, appErrors.Wrap(err, appErrors.ErrValidation.Code, http.StatusBadRequest, "invalid session payload"))
		return
	}
	resp, version, err := h.service.Preview(c.Request.Context(), req)
	if err != nil {
		response.Error(c, err)
		return
	}
	if h.metrics != nil {
		h.metrics.RecordResolution(resp.Report.Outcome)
	}
	c.Header("ETag", version)
	response.JSON(c, http.StatusOK, resp, nil)
}

// Commit godoc
// @Summary Commit a session series against the owner's timeline
// @Tags Sessions
// @Accept json
// @Produce json
// @Param If-Match header string false "Timeline version from preview"
// @Param payload body dto.SessionRequest true "Session payload"
// @Success 201 {object} response.Envelope
// @Failure 409 {object} response.Envelope
// @Failure 412 {object} response.Envelope
// @Router /sessions [post]
func (h *SessionHandler) Commit(c *gin.Context) {
	var req dto.SessionRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, appErrors.Wrap(err, appErrors.ErrValidation.Code, http.StatusBadRequest, "invalid session payload"))
		return
	}
	resp, err := h.service.Commit(c.Request.Context(), req, c.GetHeader("If-Match"))
	if err != nil {
		if resp != nil && h.metrics != nil {
			h.metrics.RecordResolution(resp.Report.Outcome)
		}
		var appErr *appErrors.Error
		if resp != nil && errors.As(err, &appErr) && appErr.Code == appErrors.ErrConflict.Code {
			// Rejected series: the client needs the full report to see what
			// collided.
			response.ErrorWithData(c, err, resp)
			return
		}
		response.Error(c, err)
		return
	}
	if h.metrics != nil {
		h.metrics.RecordResolution(resp.Report.Outcome)
	}
	response.Created(c, resp)
}
