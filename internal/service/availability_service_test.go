package service

import (
	"context"
	"database/sql"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/sarafrika/elimika-availability-api/internal/dto"
	"github.com/sarafrika/elimika-availability-api/internal/models"
	appErrors "github.com/sarafrika/elimika-availability-api/pkg/errors"
)

type ruleRepoStub struct {
	rules   map[string]models.AvailabilityRule
	created []models.AvailabilityRule
}

func newRuleRepoStub() *ruleRepoStub {
	return &ruleRepoStub{rules: map[string]models.AvailabilityRule{}}
}

func (s *ruleRepoStub) List(ctx context.Context, filter models.RuleFilter) ([]models.AvailabilityRule, int, error) {
	var out []models.AvailabilityRule
	for _, r := range s.rules {
		if filter.OwnerID != "" && r.OwnerID != filter.OwnerID {
			continue
		}
		out = append(out, r)
	}
	return out, len(out), nil
}

func (s *ruleRepoStub) GetByID(ctx context.Context, id string) (*models.AvailabilityRule, error) {
	r, ok := s.rules[id]
	if !ok {
		return nil, sql.ErrNoRows
	}
	return &r, nil
}

func (s *ruleRepoStub) Create(ctx context.Context, rule *models.AvailabilityRule) error {
	if rule.ID == "" {
		rule.ID = "rule-generated"
	}
	s.rules[rule.ID] = *rule
	s.created = append(s.created, *rule)
	return nil
}

func (s *ruleRepoStub) Update(ctx context.Context, rule *models.AvailabilityRule) error {
	s.rules[rule.ID] = *rule
	return nil
}

func (s *ruleRepoStub) Delete(ctx context.Context, id string) error {
	delete(s.rules, id)
	return nil
}

type bookingRepoStub struct {
	bookings map[string]models.Booking
}

func newBookingRepoStub() *bookingRepoStub {
	return &bookingRepoStub{bookings: map[string]models.Booking{}}
}

func (s *bookingRepoStub) ListByOwner(ctx context.Context, filter models.BookingFilter) ([]models.Booking, error) {
	var out []models.Booking
	for _, b := range s.bookings {
		if b.OwnerID == filter.OwnerID {
			out = append(out, b)
		}
	}
	return out, nil
}

func (s *bookingRepoStub) GetByID(ctx context.Context, id string) (*models.Booking, error) {
	b, ok := s.bookings[id]
	if !ok {
		return nil, sql.ErrNoRows
	}
	return &b, nil
}

func (s *bookingRepoStub) Create(ctx context.Context, booking *models.Booking) error {
	if booking.ID == "" {
		booking.ID = "booking-generated"
	}
	s.bookings[booking.ID] = *booking
	return nil
}

func (s *bookingRepoStub) Delete(ctx context.Context, id string) error {
	delete(s.bookings, id)
	return nil
}

type invalidatorStub struct {
	patterns []string
}

func (s *invalidatorStub) DeleteByPattern(ctx context.Context, pattern string) error {
	s.patterns = append(s.patterns, pattern)
	return nil
}

func boolPtr(v bool) *bool { return &v }

func validCreateRequest() dto.CreateRuleRequest {
	day := 2
	return dto.CreateRuleRequest{
		OwnerID:     "instructor-1",
		Kind:        "WEEKLY",
		DayOfWeek:   &day,
		StartTime:   "09:00",
		EndTime:     "10:00",
		IsAvailable: boolPtr(true),
		Timezone:    "UTC",
	}
}

func TestAvailabilityServiceCreateRule(t *testing.T) {
	rules := newRuleRepoStub()
	cache := &invalidatorStub{}
	svc := NewAvailabilityService(rules, newBookingRepoStub(), cache, nil, nil)

	rule, err := svc.CreateRule(context.Background(), validCreateRequest())
	require.NoError(t, err)
	assert.NotEmpty(t, rule.ID)
	assert.Equal(t, 1, rule.RecurrenceInterval)
	require.Len(t, cache.patterns, 1)
	assert.Equal(t, "timeline:instructor-1:*", cache.patterns[0])
}

func TestAvailabilityServiceCreateRuleRejectsBadTimezone(t *testing.T) {
	svc := NewAvailabilityService(newRuleRepoStub(), newBookingRepoStub(), &invalidatorStub{}, nil, nil)

	req := validCreateRequest()
	req.Timezone = "Not/AZone"
	_, err := svc.CreateRule(context.Background(), req)
	require.Error(t, err)
	assert.Equal(t, appErrors.ErrInvalidTimezone.Code, appErrors.FromError(err).Code)
}

func TestAvailabilityServiceCreateRuleKindChecks(t *testing.T) {
	svc := NewAvailabilityService(newRuleRepoStub(), newBookingRepoStub(), &invalidatorStub{}, nil, nil)

	weekly := validCreateRequest()
	weekly.DayOfWeek = nil
	_, err := svc.CreateRule(context.Background(), weekly)
	require.Error(t, err)

	monthly := validCreateRequest()
	monthly.Kind = "MONTHLY"
	monthly.DayOfWeek = nil
	_, err = svc.CreateRule(context.Background(), monthly)
	require.Error(t, err)
	assert.Contains(t, appErrors.FromError(err).Message, "effective_from")

	custom := validCreateRequest()
	custom.Kind = "CUSTOM"
	custom.DayOfWeek = nil
	_, err = svc.CreateRule(context.Background(), custom)
	require.Error(t, err)
	assert.Contains(t, appErrors.FromError(err).Message, "specific_date")
}

func TestAvailabilityServiceCreateRuleRejectsInvertedClocks(t *testing.T) {
	svc := NewAvailabilityService(newRuleRepoStub(), newBookingRepoStub(), &invalidatorStub{}, nil, nil)

	req := validCreateRequest()
	req.StartTime = "10:00"
	req.EndTime = "09:00"
	_, err := svc.CreateRule(context.Background(), req)
	require.Error(t, err)
	assert.Equal(t, appErrors.ErrValidation.Code, appErrors.FromError(err).Code)
}

func TestAvailabilityServiceUpdateRuleMergesFields(t *testing.T) {
	rules := newRuleRepoStub()
	cache := &invalidatorStub{}
	svc := NewAvailabilityService(rules, newBookingRepoStub(), cache, nil, nil)

	created, err := svc.CreateRule(context.Background(), validCreateRequest())
	require.NoError(t, err)

	newEnd := "11:00"
	updated, err := svc.UpdateRule(context.Background(), created.ID, dto.UpdateRuleRequest{EndTime: &newEnd})
	require.NoError(t, err)
	assert.Equal(t, "11:00", updated.EndTime)
	assert.Equal(t, "09:00", updated.StartTime)
	assert.Len(t, cache.patterns, 2)
}

func TestAvailabilityServiceGetRuleNotFound(t *testing.T) {
	svc := NewAvailabilityService(newRuleRepoStub(), newBookingRepoStub(), &invalidatorStub{}, nil, nil)

	_, err := svc.GetRule(context.Background(), "missing")
	require.Error(t, err)
	assert.Equal(t, appErrors.ErrNotFound.Code, appErrors.FromError(err).Code)
}

func TestAvailabilityServiceCreateBookingInvalidatesCache(t *testing.T) {
	cache := &invalidatorStub{}
	svc := NewAvailabilityService(newRuleRepoStub(), newBookingRepoStub(), cache, nil, nil)

	start := time.Date(2025, time.October, 7, 9, 0, 0, 0, time.UTC)
	booking, err := svc.CreateBooking(context.Background(), dto.CreateBookingRequest{
		OwnerID: "instructor-1",
		StartAt: start,
		EndAt:   start.Add(time.Hour),
		Status:  "BLOCKED",
	})
	require.NoError(t, err)
	assert.Equal(t, models.InstanceBlocked, booking.Status)
	assert.Equal(t, start.Truncate(24*time.Hour), booking.Date)
	require.Len(t, cache.patterns, 1)
}

func TestAvailabilityServiceCreateBookingRejectsInvertedWindow(t *testing.T) {
	svc := NewAvailabilityService(newRuleRepoStub(), newBookingRepoStub(), &invalidatorStub{}, nil, nil)

	start := time.Date(2025, time.October, 7, 9, 0, 0, 0, time.UTC)
	_, err := svc.CreateBooking(context.Background(), dto.CreateBookingRequest{
		OwnerID: "instructor-1",
		StartAt: start,
		EndAt:   start.Add(-time.Hour),
		Status:  "BOOKED",
	})
	require.Error(t, err)
	assert.Equal(t, appErrors.ErrValidation.Code, appErrors.FromError(err).Code)
}
