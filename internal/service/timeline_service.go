package service

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"fmt"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/sarafrika/elimika-availability-api/internal/dto"
	"github.com/sarafrika/elimika-availability-api/internal/models"
	"github.com/sarafrika/elimika-availability-api/internal/schedule"
	appErrors "github.com/sarafrika/elimika-availability-api/pkg/errors"
)

type ownerRuleLister interface {
	ListByOwner(ctx context.Context, ownerID string) ([]models.AvailabilityRule, error)
}

type ownerBookingLister interface {
	ListByOwner(ctx context.Context, filter models.BookingFilter) ([]models.Booking, error)
}

type timelineCache interface {
	Get(ctx context.Context, key string, dest interface{}) error
	Set(ctx context.Context, key string, value interface{}, ttl time.Duration) error
}

// TimelineConfig tunes timeline computation.
type TimelineConfig struct {
	CacheTTL      time.Duration
	MaxWindowDays int
}

// TimelineService computes the merged schedule view for an owner: recurring
// rules expanded over the window, one-off bookings layered on top, grouped
// into calendar buckets. Results are cached per owner+window+view; any write
// through AvailabilityService invalidates them.
type TimelineService struct {
	rules    ownerRuleLister
	bookings ownerBookingLister
	cache    timelineCache
	metrics  *MetricsService
	cfg      TimelineConfig
	logger   *zap.Logger
}

// NewTimelineService constructs the service.
func NewTimelineService(rules ownerRuleLister, bookings ownerBookingLister, cache timelineCache, metrics *MetricsService, cfg TimelineConfig, logger *zap.Logger) *TimelineService {
	if cfg.CacheTTL <= 0 {
		cfg.CacheTTL = 5 * time.Minute
	}
	if cfg.MaxWindowDays <= 0 {
		cfg.MaxWindowDays = 366
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &TimelineService{rules: rules, bookings: bookings, cache: cache, metrics: metrics, cfg: cfg, logger: logger}
}

// Compute returns the timeline for the request window. The second return
// reports whether the response came from cache.
func (s *TimelineService) Compute(ctx context.Context, req dto.TimelineRequest) (*dto.TimelineResponse, bool, error) {
	if req.OwnerID == "" {
		return nil, false, appErrors.Clone(appErrors.ErrValidation, "owner_id is required")
	}
	if !req.End.After(req.Start) {
		return nil, false, appErrors.Clone(appErrors.ErrValidation, "window end must be after window start")
	}
	if int(req.End.Sub(req.Start).Hours()/24) > s.cfg.MaxWindowDays {
		return nil, false, appErrors.Clone(appErrors.ErrValidation, fmt.Sprintf("window exceeds %d days", s.cfg.MaxWindowDays))
	}
	granularity := schedule.Granularity(strings.ToUpper(req.Granularity))
	if granularity == "" {
		granularity = schedule.GranularityWeek
	}
	switch granularity {
	case schedule.GranularityDay, schedule.GranularityWeek, schedule.GranularityMonth:
	default:
		return nil, false, appErrors.Clone(appErrors.ErrValidation, fmt.Sprintf("unknown granularity %q", req.Granularity))
	}
	tz := req.Timezone
	if tz == "" {
		tz = "UTC"
	}
	loc, err := schedule.LoadLocation(tz)
	if err != nil {
		return nil, false, appErrors.Clone(appErrors.ErrInvalidTimezone, fmt.Sprintf("unknown timezone %q", tz))
	}

	key := timelineCacheKey(req.OwnerID, req.Start, req.End, string(granularity), tz)
	if s.cache != nil {
		var cached dto.TimelineResponse
		if err := s.cache.Get(ctx, key, &cached); err == nil {
			return &cached, true, nil
		} else if !errors.Is(err, appErrors.ErrCacheMiss) {
			s.logger.Warn("timeline cache read failed", zap.String("key", key), zap.Error(err))
		}
	}

	computeStart := time.Now()
	instances, diags, err := s.mergedWindow(ctx, req.OwnerID, req.Start, req.End)
	if err != nil {
		return nil, false, err
	}

	buckets, err := schedule.Project(instances, granularity, loc)
	if err != nil {
		return nil, false, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to project timeline")
	}
	if s.metrics != nil {
		s.metrics.ObserveTimelineCompute(time.Since(computeStart))
	}

	resp := &dto.TimelineResponse{
		OwnerID:     req.OwnerID,
		WindowStart: req.Start,
		WindowEnd:   req.End,
		Granularity: string(granularity),
		Timezone:    tz,
		Version:     TimelineVersion(instances),
		Buckets:     buckets,
		Instances:   instances,
		Diagnostics: diags,
	}

	if s.cache != nil {
		if err := s.cache.Set(ctx, key, resp, s.cfg.CacheTTL); err != nil {
			s.logger.Warn("timeline cache write failed", zap.String("key", key), zap.Error(err))
		}
	}
	return resp, false, nil
}

// MergedWindow exposes the raw merged instances plus the content version for
// a window. The session flow uses it to resolve new series against the same
// view the client saw.
func (s *TimelineService) MergedWindow(ctx context.Context, ownerID string, start, end time.Time) ([]models.ScheduleInstance, string, error) {
	instances, _, err := s.mergedWindow(ctx, ownerID, start, end)
	if err != nil {
		return nil, "", err
	}
	return instances, TimelineVersion(instances), nil
}

func (s *TimelineService) mergedWindow(ctx context.Context, ownerID string, start, end time.Time) ([]models.ScheduleInstance, []schedule.Diagnostic, error) {
	queryStart := time.Now()
	rules, err := s.rules.ListByOwner(ctx, ownerID)
	if err != nil {
		return nil, nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load availability rules")
	}
	if s.metrics != nil {
		s.metrics.ObserveDBQuery("timeline_rules", time.Since(queryStart))
	}

	queryStart = time.Now()
	bookings, err := s.bookings.ListByOwner(ctx, models.BookingFilter{OwnerID: ownerID, From: &start, To: &end})
	if err != nil {
		return nil, nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load bookings")
	}
	if s.metrics != nil {
		s.metrics.ObserveDBQuery("timeline_bookings", time.Since(queryStart))
	}

	expanded, diags, err := schedule.Expand(rules, schedule.Window{Start: start, End: end})
	if err != nil {
		switch {
		case errors.Is(err, schedule.ErrInvalidTimezone):
			return nil, nil, appErrors.Wrap(err, appErrors.ErrInvalidTimezone.Code, appErrors.ErrInvalidTimezone.Status, "a rule carries an invalid timezone")
		case errors.Is(err, schedule.ErrUnparsableTimestamp):
			return nil, nil, appErrors.Wrap(err, appErrors.ErrUnparsableTimestamp.Code, appErrors.ErrUnparsableTimestamp.Status, "invalid window bounds")
		default:
			return nil, nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to expand availability rules")
		}
	}

	oneOffs := make([]models.ScheduleInstance, 0, len(bookings))
	for _, b := range bookings {
		oneOffs = append(oneOffs, b.Instance())
	}
	return schedule.Merge(expanded, oneOffs), diags, nil
}

// TimelineVersion digests the merged instances into an opaque version tag.
// Equal timelines always produce equal tags, so clients can use it for
// optimistic concurrency via If-Match.
func TimelineVersion(instances []models.ScheduleInstance) string {
	h := sha256.New()
	for _, inst := range instances {
		fmt.Fprintf(h, "%s|%s|%s|%s|%s\n",
			inst.SourceRuleID,
			inst.Start.UTC().Format(time.RFC3339),
			inst.End.UTC().Format(time.RFC3339),
			inst.Status,
			inst.OwnerID,
		)
	}
	return hex.EncodeToString(h.Sum(nil))[:16]
}

func timelineCacheKey(ownerID string, start, end time.Time, granularity, tz string) string {
	return fmt.Sprintf("timeline:%s:%s:%s:%s:%s",
		ownerID, start.Format("2006-01-02"), end.Format("2006-01-02"), granularity, tz)
}
