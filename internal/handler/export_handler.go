package handler

import (
	"context"
	"fmt"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/sarafrika/elimika-availability-api/internal/dto"
	"github.com/sarafrika/elimika-availability-api/internal/service"
	appErrors "github.com/sarafrika/elimika-availability-api/pkg/errors"
	"github.com/sarafrika/elimika-availability-api/pkg/response"
)

type exportService interface {
	Generate(ctx context.Context, req dto.TimelineRequest, format string) (*service.ExportResult, error)
}

// ExportHandler serves rendered schedule exports.
type ExportHandler struct {
	service exportService
}

// NewExportHandler builds a new handler.
func NewExportHandler(service exportService) *ExportHandler {
	return &ExportHandler{service: service}
}

// Download godoc
// @Summary Export an owner's schedule window
// @Tags Exports
// @Produce octet-stream
// @Param id path string true "Owner ID"
// @Param start query string true "Window start (YYYY-MM-DD)"
// @Param end query string true "Window end (YYYY-MM-DD)"
// @Param format query string true "csv, pdf or ics"
// @Param tz query string false "IANA timezone (default UTC)"
// @Success 200 {file} binary
// @Router /owners/{id}/schedule/export [get]
func (h *ExportHandler) Download(c *gin.Context) {
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
		OwnerID:  c.Param("id"),
		Start:    start,
		End:      end,
		Timezone: c.Query("tz"),
	}
	result, err := h.service.Generate(c.Request.Context(), req, c.Query("format"))
	if err != nil {
		response.Error(c, err)
		return
	}

	c.Header("Content-Disposition", fmt.Sprintf("attachment; filename=%q", result.Filename))
	c.Data(http.StatusOK, result.ContentType, result.Payload)
}
