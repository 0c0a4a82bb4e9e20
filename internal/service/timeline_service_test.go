package service

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/sarafrika/elimika-availability-api/internal/dto"
	"github.com/sarafrika/elimika-availability-api/internal/models"
	appErrors "github.com/sarafrika/elimika-availability-api/pkg/errors"
)

type ownerRulesStub struct {
	rules []models.AvailabilityRule
}

func (s ownerRulesStub) ListByOwner(ctx context.Context, ownerID string) ([]models.AvailabilityRule, error) {
	return s.rules, nil
}

type ownerBookingsStub struct {
	bookings []models.Booking
}

func (s ownerBookingsStub) ListByOwner(ctx context.Context, filter models.BookingFilter) ([]models.Booking, error) {
	return s.bookings, nil
}

type cacheStub struct {
	entries map[string][]byte
	gets    int
	hits    int
}

func newCacheStub() *cacheStub {
	return &cacheStub{entries: map[string][]byte{}}
}

func (s *cacheStub) Get(ctx context.Context, key string, dest interface{}) error {
	s.gets++
	raw, ok := s.entries[key]
	if !ok {
		return appErrors.ErrCacheMiss
	}
	s.hits++
	return json.Unmarshal(raw, dest)
}

func (s *cacheStub) Set(ctx context.Context, key string, value interface{}, ttl time.Duration) error {
	raw, err := json.Marshal(value)
	if err != nil {
		return err
	}
	s.entries[key] = raw
	return nil
}

func tuesdayRule(id string) models.AvailabilityRule {
	day := 2
	return models.AvailabilityRule{
		ID:                 id,
		OwnerID:            "instructor-1",
		Kind:               models.RuleKindWeekly,
		DayOfWeek:          &day,
		StartTime:          "09:00",
		EndTime:            "10:00",
		IsAvailable:        true,
		RecurrenceInterval: 1,
		Timezone:           "UTC",
	}
}

func timelineRequest() dto.TimelineRequest {
	return dto.TimelineRequest{
		OwnerID:     "instructor-1",
		Start:       time.Date(2025, time.October, 1, 0, 0, 0, 0, time.UTC),
		End:         time.Date(2025, time.October, 31, 0, 0, 0, 0, time.UTC),
		Granularity: "WEEK",
	}
}

func TestTimelineServiceComputeAndCache(t *testing.T) {
	cache := newCacheStub()
	svc := NewTimelineService(ownerRulesStub{rules: []models.AvailabilityRule{tuesdayRule("rule-1")}}, ownerBookingsStub{}, cache, nil, TimelineConfig{}, nil)

	resp, hit, err := svc.Compute(context.Background(), timelineRequest())
	require.NoError(t, err)
	assert.False(t, hit)
	// October 2025 has four Tuesdays on or after the 1st: 7, 14, 21, 28.
	assert.Len(t, resp.Instances, 4)
	assert.NotEmpty(t, resp.Version)
	assert.Equal(t, "UTC", resp.Timezone)
	assert.NotEmpty(t, resp.Buckets)

	again, hit, err := svc.Compute(context.Background(), timelineRequest())
	require.NoError(t, err)
	assert.True(t, hit)
	assert.Equal(t, resp.Version, again.Version)
	assert.Equal(t, 1, cache.hits)
}

func TestTimelineServiceBookingOverridesRule(t *testing.T) {
	booked := models.Booking{
		ID:      "booking-1",
		OwnerID: "instructor-1",
		Date:    time.Date(2025, time.October, 7, 0, 0, 0, 0, time.UTC),
		StartAt: time.Date(2025, time.October, 7, 9, 0, 0, 0, time.UTC),
		EndAt:   time.Date(2025, time.October, 7, 10, 0, 0, 0, time.UTC),
		Status:  models.InstanceBooked,
	}
	svc := NewTimelineService(ownerRulesStub{rules: []models.AvailabilityRule{tuesdayRule("rule-1")}}, ownerBookingsStub{bookings: []models.Booking{booked}}, nil, nil, TimelineConfig{}, nil)

	resp, _, err := svc.Compute(context.Background(), timelineRequest())
	require.NoError(t, err)
	assert.Len(t, resp.Instances, 4)
	var bookedSeen bool
	for _, inst := range resp.Instances {
		if inst.SourceRuleID == "booking-1" {
			bookedSeen = true
			assert.Equal(t, models.InstanceBooked, inst.Status)
		}
		if inst.SourceRuleID == "rule-1" {
			assert.NotEqual(t, time.Date(2025, time.October, 7, 0, 0, 0, 0, time.UTC), inst.Date)
		}
	}
	assert.True(t, bookedSeen)
}

func TestTimelineServiceVersionTracksContent(t *testing.T) {
	base := ownerRulesStub{rules: []models.AvailabilityRule{tuesdayRule("rule-1")}}
	svc := NewTimelineService(base, ownerBookingsStub{}, nil, nil, TimelineConfig{}, nil)
	first, _, err := svc.Compute(context.Background(), timelineRequest())
	require.NoError(t, err)

	blocked := models.Booking{
		ID:      "block-1",
		OwnerID: "instructor-1",
		StartAt: time.Date(2025, time.October, 14, 9, 0, 0, 0, time.UTC),
		EndAt:   time.Date(2025, time.October, 14, 10, 0, 0, 0, time.UTC),
		Status:  models.InstanceBlocked,
	}
	changed := NewTimelineService(base, ownerBookingsStub{bookings: []models.Booking{blocked}}, nil, nil, TimelineConfig{}, nil)
	second, _, err := changed.Compute(context.Background(), timelineRequest())
	require.NoError(t, err)
	assert.NotEqual(t, first.Version, second.Version)
}

func TestTimelineServiceRejectsOversizedWindow(t *testing.T) {
	svc := NewTimelineService(ownerRulesStub{}, ownerBookingsStub{}, nil, nil, TimelineConfig{MaxWindowDays: 30}, nil)

	req := timelineRequest()
	req.End = req.Start.AddDate(0, 2, 0)
	_, _, err := svc.Compute(context.Background(), req)
	require.Error(t, err)
	assert.Equal(t, appErrors.ErrValidation.Code, appErrors.FromError(err).Code)
}

func TestTimelineServiceRejectsUnknownGranularity(t *testing.T) {
	svc := NewTimelineService(ownerRulesStub{}, ownerBookingsStub{}, nil, nil, TimelineConfig{}, nil)

	req := timelineRequest()
	req.Granularity = "HOUR"
	_, _, err := svc.Compute(context.Background(), req)
	require.Error(t, err)
}

func TestTimelineServiceRejectsUnknownTimezone(t *testing.T) {
	svc := NewTimelineService(ownerRulesStub{}, ownerBookingsStub{}, nil, nil, TimelineConfig{}, nil)

	req := timelineRequest()
	req.Timezone = "Mars/Olympus"
	_, _, err := svc.Compute(context.Background(), req)
	require.Error(t, err)
	assert.Equal(t, appErrors.ErrInvalidTimezone.Code, appErrors.FromError(err).Code)
}

func TestTimelineServiceRecordsComputeAndQueryMetrics(t *testing.T) {
	metrics := NewMetricsService()
	svc := NewTimelineService(ownerRulesStub{rules: []models.AvailabilityRule{tuesdayRule("rule-1")}}, ownerBookingsStub{}, nil, metrics, TimelineConfig{}, nil)

	_, _, err := svc.Compute(context.Background(), timelineRequest())
	require.NoError(t, err)

	snap := metrics.Snapshot()
	assert.Equal(t, uint64(2), snap.DBQueryCount)

	rec := httptest.NewRecorder()
	metrics.Handler().ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/metrics", nil))
	body := rec.Body.String()
	assert.Contains(t, body, "timeline_expand_duration_seconds_count 1")
	assert.Contains(t, body, `db_query_duration_seconds_count{query="timeline_rules"} 1`)
	assert.Contains(t, body, `db_query_duration_seconds_count{query="timeline_bookings"} 1`)
}

func TestTimelineServiceSurfacesDiagnostics(t *testing.T) {
	malformed := tuesdayRule("broken")
	malformed.DayOfWeek = nil
	svc := NewTimelineService(ownerRulesStub{rules: []models.AvailabilityRule{malformed}}, ownerBookingsStub{}, nil, nil, TimelineConfig{}, nil)

	resp, _, err := svc.Compute(context.Background(), timelineRequest())
	require.NoError(t, err)
	assert.Empty(t, resp.Instances)
	require.Len(t, resp.Diagnostics, 1)
	assert.Equal(t, "broken", resp.Diagnostics[0].RuleID)
}
