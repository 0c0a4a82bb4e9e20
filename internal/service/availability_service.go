package service

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/go-playground/validator/v10"
	"go.uber.org/zap"

	"github.com/sarafrika/elimika-availability-api/internal/dto"
	"github.com/sarafrika/elimika-availability-api/internal/models"
	appErrors "github.com/sarafrika/elimika-availability-api/pkg/errors"
)

type ruleRepository interface {
	List(ctx context.Context, filter models.RuleFilter) ([]models.AvailabilityRule, int, error)
	GetByID(ctx context.Context, id string) (*models.AvailabilityRule, error)
	Create(ctx context.Context, rule *models.AvailabilityRule) error
	Update(ctx context.Context, rule *models.AvailabilityRule) error
	Delete(ctx context.Context, id string) error
}

type bookingRepository interface {
	ListByOwner(ctx context.Context, filter models.BookingFilter) ([]models.Booking, error)
	GetByID(ctx context.Context, id string) (*models.Booking, error)
	Create(ctx context.Context, booking *models.Booking) error
	Delete(ctx context.Context, id string) error
}

type timelineInvalidator interface {
	DeleteByPattern(ctx context.Context, pattern string) error
}

// AvailabilityService manages declared rules and one-off bookings. Every
// write invalidates the owner's cached timelines.
type AvailabilityService struct {
	rules     ruleRepository
	bookings  bookingRepository
	cache     timelineInvalidator
	validator *validator.Validate
	logger    *zap.Logger
}

// NewAvailabilityService constructs the service.
func NewAvailabilityService(rules ruleRepository, bookings bookingRepository, cache timelineInvalidator, validate *validator.Validate, logger *zap.Logger) *AvailabilityService {
	if validate == nil {
		validate = validator.New()
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &AvailabilityService{rules: rules, bookings: bookings, cache: cache, validator: validate, logger: logger}
}

// ListRules returns rules with pagination metadata.
func (s *AvailabilityService) ListRules(ctx context.Context, filter models.RuleFilter) ([]models.AvailabilityRule, *models.Pagination, error) {
	if filter.Page < 1 {
		filter.Page = 1
	}
	if filter.PageSize <= 0 {
		filter.PageSize = 50
	}
	rules, total, err := s.rules.List(ctx, filter)
	if err != nil {
		return nil, nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to list availability rules")
	}
	pagination := &models.Pagination{Page: filter.Page, PageSize: filter.PageSize, TotalCount: total}
	return rules, pagination, nil
}

// GetRule returns a single rule.
func (s *AvailabilityService) GetRule(ctx context.Context, id string) (*models.AvailabilityRule, error) {
	rule, err := s.rules.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, appErrors.Clone(appErrors.ErrNotFound, "availability rule not found")
		}
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load availability rule")
	}
	return rule, nil
}

// CreateRule validates and stores a new rule.
func (s *AvailabilityService) CreateRule(ctx context.Context, req dto.CreateRuleRequest) (*models.AvailabilityRule, error) {
	if err := s.validator.Struct(req); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid availability rule payload")
	}
	rule := models.AvailabilityRule{
		OwnerID:            req.OwnerID,
		Kind:               models.RuleKind(req.Kind),
		DayOfWeek:          req.DayOfWeek,
		SpecificDate:       req.SpecificDate,
		StartTime:          req.StartTime,
		EndTime:            req.EndTime,
		AllDay:             req.AllDay,
		IsAvailable:        req.IsAvailable != nil && *req.IsAvailable,
		BlockReason:        req.BlockReason,
		RecurrenceInterval: req.RecurrenceInterval,
		EffectiveFrom:      req.EffectiveFrom,
		EffectiveUntil:     req.EffectiveUntil,
		Timezone:           req.Timezone,
	}
	if rule.RecurrenceInterval == 0 {
		rule.RecurrenceInterval = 1
	}
	if err := validateRuleShape(&rule); err != nil {
		return nil, err
	}
	if err := s.rules.Create(ctx, &rule); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to create availability rule")
	}
	s.invalidateOwner(ctx, rule.OwnerID)
	s.logger.Info("availability rule created", zap.String("rule_id", rule.ID), zap.String("owner_id", rule.OwnerID), zap.String("kind", string(rule.Kind)))
	return &rule, nil
}

// UpdateRule applies a partial update to an existing rule.
func (s *AvailabilityService) UpdateRule(ctx context.Context, id string, req dto.UpdateRuleRequest) (*models.AvailabilityRule, error) {
	if err := s.validator.Struct(req); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid availability rule payload")
	}
	rule, err := s.GetRule(ctx, id)
	if err != nil {
		return nil, err
	}
	applyRuleUpdate(rule, req)
	if err := validateRuleShape(rule); err != nil {
		return nil, err
	}
	if err := s.rules.Update(ctx, rule); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to update availability rule")
	}
	s.invalidateOwner(ctx, rule.OwnerID)
	return rule, nil
}

// DeleteRule removes a rule.
func (s *AvailabilityService) DeleteRule(ctx context.Context, id string) error {
	rule, err := s.GetRule(ctx, id)
	if err != nil {
		return err
	}
	if err := s.rules.Delete(ctx, id); err != nil {
		return appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to delete availability rule")
	}
	s.invalidateOwner(ctx, rule.OwnerID)
	return nil
}

// CreateBooking stores a one-off booking or explicit block.
func (s *AvailabilityService) CreateBooking(ctx context.Context, req dto.CreateBookingRequest) (*models.Booking, error) {
	if err := s.validator.Struct(req); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid booking payload")
	}
	booking := models.Booking{
		OwnerID: req.OwnerID,
		Date:    time.Date(req.StartAt.Year(), req.StartAt.Month(), req.StartAt.Day(), 0, 0, 0, 0, time.UTC),
		StartAt: req.StartAt,
		EndAt:   req.EndAt,
		Status:  models.InstanceStatus(req.Status),
		Reason:  req.Reason,
	}
	if err := s.bookings.Create(ctx, &booking); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to create booking")
	}
	s.invalidateOwner(ctx, booking.OwnerID)
	return &booking, nil
}

// ListBookings returns an owner's stored bookings in a window.
func (s *AvailabilityService) ListBookings(ctx context.Context, filter models.BookingFilter) ([]models.Booking, error) {
	bookings, err := s.bookings.ListByOwner(ctx, filter)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to list bookings")
	}
	return bookings, nil
}

// DeleteBooking removes a one-off booking.
func (s *AvailabilityService) DeleteBooking(ctx context.Context, id string) error {
	booking, err := s.bookings.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return appErrors.Clone(appErrors.ErrNotFound, "booking not found")
		}
		return appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load booking")
	}
	if err := s.bookings.Delete(ctx, id); err != nil {
		return appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to delete booking")
	}
	s.invalidateOwner(ctx, booking.OwnerID)
	return nil
}

func (s *AvailabilityService) invalidateOwner(ctx context.Context, ownerID string) {
	if s.cache == nil {
		return
	}
	pattern := fmt.Sprintf("timeline:%s:*", ownerID)
	if err := s.cache.DeleteByPattern(ctx, pattern); err != nil {
		s.logger.Warn("timeline cache invalidation failed", zap.String("owner_id", ownerID), zap.Error(err))
	}
}

func applyRuleUpdate(rule *models.AvailabilityRule, req dto.UpdateRuleRequest) {
	if req.Kind != nil {
		rule.Kind = models.RuleKind(*req.Kind)
	}
	if req.DayOfWeek != nil {
		rule.DayOfWeek = req.DayOfWeek
	}
	if req.SpecificDate != nil {
		rule.SpecificDate = req.SpecificDate
	}
	if req.StartTime != nil {
		rule.StartTime = *req.StartTime
	}
	if req.EndTime != nil {
		rule.EndTime = *req.EndTime
	}
	if req.AllDay != nil {
		rule.AllDay = *req.AllDay
	}
	if req.IsAvailable != nil {
		rule.IsAvailable = *req.IsAvailable
	}
	if req.BlockReason != nil {
		rule.BlockReason = req.BlockReason
	}
	if req.RecurrenceInterval != nil {
		rule.RecurrenceInterval = *req.RecurrenceInterval
	}
	if req.EffectiveFrom != nil {
		rule.EffectiveFrom = req.EffectiveFrom
	}
	if req.EffectiveUntil != nil {
		rule.EffectiveUntil = req.EffectiveUntil
	}
	if req.Timezone != nil {
		rule.Timezone = *req.Timezone
	}
}

// validateRuleShape rejects rules that could never expand. Expansion applies
// the same checks per window; failing here surfaces the problem at write time.
func validateRuleShape(rule *models.AvailabilityRule) error {
	if _, err := time.LoadLocation(rule.Timezone); err != nil {
		return appErrors.Clone(appErrors.ErrInvalidTimezone, fmt.Sprintf("unknown timezone %q", rule.Timezone))
	}
	switch rule.Kind {
	case models.RuleKindWeekly:
		if rule.DayOfWeek == nil || *rule.DayOfWeek < 0 || *rule.DayOfWeek > 6 {
			return appErrors.Clone(appErrors.ErrValidation, "weekly rules require day_of_week between 0 and 6")
		}
	case models.RuleKindMonthly:
		if rule.EffectiveFrom == nil {
			return appErrors.Clone(appErrors.ErrValidation, "monthly rules require effective_from to anchor the day of month")
		}
	case models.RuleKindCustom:
		if rule.SpecificDate == nil {
			return appErrors.Clone(appErrors.ErrValidation, "custom rules require specific_date")
		}
	default:
		return appErrors.Clone(appErrors.ErrValidation, fmt.Sprintf("unknown rule kind %q", rule.Kind))
	}
	if !rule.AllDay {
		start, err := parseClockValue(rule.StartTime)
		if err != nil {
			return appErrors.Clone(appErrors.ErrUnparsableTimestamp, fmt.Sprintf("unparsable start_time %q", rule.StartTime))
		}
		end, err := parseClockValue(rule.EndTime)
		if err != nil {
			return appErrors.Clone(appErrors.ErrUnparsableTimestamp, fmt.Sprintf("unparsable end_time %q", rule.EndTime))
		}
		if !end.After(start) {
			return appErrors.Clone(appErrors.ErrValidation, "end_time must be after start_time")
		}
	}
	if rule.EffectiveFrom != nil && rule.EffectiveUntil != nil && rule.EffectiveUntil.Before(*rule.EffectiveFrom) {
		return appErrors.Clone(appErrors.ErrValidation, "effective_until precedes effective_from")
	}
	return nil
}

func parseClockValue(value string) (time.Time, error) {
	for _, layout := range []string{"15:04:05", "15:04"} {
		if t, err := time.Parse(layout, value); err == nil {
			return t, nil
		}
	}
	return time.Time{}, fmt.Errorf("unparsable clock %q", value)
}
