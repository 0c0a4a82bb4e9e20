package handler

import (
	"context"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"github.com/sarafrika/elimika-availability-api/internal/dto"
	"github.com/sarafrika/elimika-availability-api/internal/models"
	"github.com/sarafrika/elimika-availability-api/internal/schedule"
	appErrors "github.com/sarafrika/elimika-availability-api/pkg/errors"
	"github.com/sarafrika/elimika-availability-api/pkg/response"
)

type availabilityService interface {
	ListRules(ctx context.Context, filter models.RuleFilter) ([]models.AvailabilityRule, *models.Pagination, error)
	GetRule(ctx context.Context, id string) (*models.AvailabilityRule, error)
	CreateRule(ctx context.Context, req dto.CreateRuleRequest) (*models.AvailabilityRule, error)
	UpdateRule(ctx context.Context, id string, req dto.UpdateRuleRequest) (*models.AvailabilityRule, error)
	DeleteRule(ctx context.Context, id string) error
	CreateBooking(ctx context.Context, req dto.CreateBookingRequest) (*models.Booking, error)
	ListBookings(ctx context.Context, filter models.BookingFilter) ([]models.Booking, error)
	DeleteBooking(ctx context.Context, id string) error
}

// AvailabilityHandler exposes rule and booking endpoints.
type AvailabilityHandler struct {
	service availabilityService
}

// NewAvailabilityHandler builds a new handler.
func NewAvailabilityHandler(service availabilityService) *AvailabilityHandler {
	return &AvailabilityHandler{service: service}
}

// ListRules godoc
// @Summary List availability rules
// @Tags Availability
// @Produce json
// @Param owner_id query string false "Filter by owner"
// @Param kind query string false "Filter by rule kind"
// @Success 200 {object} response.Envelope
// @Router /availability-rules [get]
func (h *AvailabilityHandler) ListRules(c *gin.Context) {
	filter := models.RuleFilter{
		OwnerID: c.Query("owner_id"),
		Kind:    models.RuleKind(c.Query("kind")),
	}
	if page, err := strconv.Atoi(c.Query("page")); err == nil {
		filter.Page = page
	}
	if size, err := strconv.Atoi(c.Query("page_size")); err == nil {
		filter.PageSize = size
	}
	if raw := c.Query("is_available"); raw != "" {
		v, err := strconv.ParseBool(raw)
		if err != nil {
			response.Error(c, appErrors.Clone(appErrors.ErrValidation, "is_available must be a boolean"))
			return
		}
		filter.IsAvailable = &v
	}
	rules, pagination, err := h.service.ListRules(c.Request.Context(), filter)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, rules, pagination)
}

// GetRule godoc
// @Summary Get availability rule by id
// @Tags Availability
// @Produce json
// @Param id path string true "Rule ID"
// @Success 200 {object} response.Envelope
// @Router /availability-rules/{id} [get]
func (h *AvailabilityHandler) GetRule(c *gin.Context) {
	rule, err := h.service.GetRule(c.Request.Context(), c.Param("id"))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, rule, nil)
}

// CreateRule godoc
// @Summary Declare an availability or block rule
// @Tags Availability
// @Accept json
// @Produce json
// @Param payload body dto.CreateRuleRequest true "Rule payload"
// @Success 201 {object} response.Envelope
// @Router /availability-rules [post]
func (h *AvailabilityHandler) CreateRule(c *gin.Context) {
	var req dto.CreateRuleRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, appErrors.Wrap(err, appErrors.ErrValidation.Code, http.StatusBadRequest, "invalid rule payload"))
		return
	}
	rule, err := h.service.CreateRule(c.Request.Context(), req)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Created(c, rule)
}

// UpdateRule godoc
// @Summary Update an availability rule
// @Tags Availability
// @Accept json
// @Produce json
// @Param id path string true "Rule ID"
// @Param payload body dto.UpdateRuleRequest true "Rule payload"
// @Success 200 {object} response.Envelope
// @Router /availability-rules/{id} [put]
func (h *AvailabilityHandler) UpdateRule(c *gin.Context) {
	var req dto.UpdateRuleRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, appErrors.Wrap(err, appErrors.ErrValidation.Code, http.StatusBadRequest, "invalid rule payload"))
		return
	}
	rule, err := h.service.UpdateRule(c.Request.Context(), c.Param("id"), req)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, rule, nil)
}

// DeleteRule godoc
// @Summary Delete an availability rule
// @Tags Availability
// @Param id path string true "Rule ID"
// @Success 204
// @Router /availability-rules/{id} [delete]
func (h *AvailabilityHandler) DeleteRule(c *gin.Context) {
	if err := h.service.DeleteRule(c.Request.Context(), c.Param("id")); err != nil {
		response.Error(c, err)
		return
	}
	response.NoContent(c)
}

// ListBookings godoc
// @Summary List an owner's stored bookings
// @Tags Bookings
// @Produce json
// @Param id path string true "Owner ID"
// @Param start query string false "Window start (YYYY-MM-DD)"
// @Param end query string false "Window end (YYYY-MM-DD)"
// @Success 200 {object} response.Envelope
// @Router /owners/{id}/bookings [get]
func (h *AvailabilityHandler) ListBookings(c *gin.Context) {
	filter := models.BookingFilter{OwnerID: c.Param("id")}
	if raw := c.Query("start"); raw != "" {
		t, err := schedule.ParseDate(raw)
		if err != nil {
			response.Error(c, appErrors.Clone(appErrors.ErrUnparsableTimestamp, "start must be YYYY-MM-DD"))
			return
		}
		filter.From = &t
	}
	if raw := c.Query("end"); raw != "" {
		t, err := schedule.ParseDate(raw)
		if err != nil {
			response.Error(c, appErrors.Clone(appErrors.ErrUnparsableTimestamp, "end must be YYYY-MM-DD"))
			return
		}
		filter.To = &t
	}
	bookings, err := h.service.ListBookings(c.Request.Context(), filter)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, bookings, nil)
}

// CreateBooking godoc
// @Summary Store a one-off booking or explicit block
// @Tags Bookings
// @Accept json
// @Produce json
// @Param payload body dto.CreateBookingRequest true "Booking payload"
// @Success 201 {object} response.Envelope
// @Router /bookings [post]
func (h *AvailabilityHandler) CreateBooking(c *gin.Context) {
	var req dto.CreateBookingRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, appErrors.Wrap(err, appErrors.ErrValidation.Code, http.StatusBadRequest, "invalid booking payload"))
		return
	}
	booking, err := h.service.CreateBooking(c.Request.Context(), req)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Created(c, booking)
}

// DeleteBooking godoc
// @Summary Delete a booking
// @Tags Bookings
// @Param id path string true "Booking ID"
// @Success 204
// @Router /bookings/{id} [delete]
func (h *AvailabilityHandler) DeleteBooking(c *gin.Context) {
	if err := h.service.DeleteBooking(c.Request.Context(), c.Param("id")); err != nil {
		response.Error(c, err)
		return
	}
	response.NoContent(c)
}
