package service

import (
	"context"
	"errors"
	"fmt"

	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"
	"go.uber.org/zap"

	"github.com/sarafrika/elimika-availability-api/internal/dto"
	"github.com/sarafrika/elimika-availability-api/internal/models"
	"github.com/sarafrika/elimika-availability-api/internal/schedule"
	appErrors "github.com/sarafrika/elimika-availability-api/pkg/errors"
)

type sessionBookingRepository interface {
	BeginTx(ctx context.Context) (*sqlx.Tx, error)
	BulkCreateWithTx(ctx context.Context, tx *sqlx.Tx, bookings []models.Booking) error
	RetireWithTx(ctx context.Context, tx *sqlx.Tx, ids []string) error
	GetByID(ctx context.Context, id string) (*models.Booking, error)
}

// SessionService previews and commits recurring class series against an
// owner's timeline. Commits are transactional: either the whole accepted set
// lands, or nothing does.
type SessionService struct {
	timeline  *TimelineService
	bookings  sessionBookingRepository
	cache     timelineInvalidator
	validator *validator.Validate
	logger    *zap.Logger
}

// NewSessionService constructs the service.
func NewSessionService(timeline *TimelineService, bookings sessionBookingRepository, cache timelineInvalidator, validate *validator.Validate, logger *zap.Logger) *SessionService {
	if validate == nil {
		validate = validator.New()
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &SessionService{timeline: timeline, bookings: bookings, cache: cache, validator: validate, logger: logger}
}

// Preview resolves the series without writing anything. The response carries
// the timeline version clients should echo back via If-Match on commit.
func (s *SessionService) Preview(ctx context.Context, req dto.SessionRequest) (*dto.SessionResponse, string, error) {
	template, instances, version, err := s.resolveInputs(ctx, req)
	if err != nil {
		return nil, "", err
	}
	report, err := schedule.Resolve(template, instances)
	if err != nil {
		return nil, "", mapResolveError(err)
	}
	return &dto.SessionResponse{Committed: false, Report: report}, version, nil
}

// Commit resolves the series and persists the accepted occurrences. When
// ifMatch is non-empty it must equal the current timeline version; a stale
// version means the owner's schedule changed since the client previewed it.
func (s *SessionService) Commit(ctx context.Context, req dto.SessionRequest, ifMatch string) (*dto.SessionResponse, error) {
	template, instances, version, err := s.resolveInputs(ctx, req)
	if err != nil {
		return nil, err
	}
	if ifMatch != "" && ifMatch != version {
		return nil, appErrors.Clone(appErrors.ErrPreconditionFailed, "timeline changed since preview; fetch it again")
	}

	report, err := schedule.Resolve(template, instances)
	if err != nil {
		return nil, mapResolveError(err)
	}
	if report.Outcome == models.OutcomeRejected {
		// Nothing to persist; the handler attaches the report to the 409.
		return &dto.SessionResponse{Committed: false, Report: report}, appErrors.Clone(appErrors.ErrConflict, "series conflicts with existing schedule")
	}

	sessionID := uuid.NewString()
	bookings := make([]models.Booking, 0, len(report.Accepted))
	for _, occ := range report.Accepted {
		bookings = append(bookings, models.Booking{
			OwnerID:   occ.OwnerID,
			Date:      occ.Date,
			StartAt:   occ.Start,
			EndAt:     occ.End,
			Status:    models.InstanceBooked,
			SessionID: &sessionID,
		})
	}

	retire := s.supersededBookingIDs(ctx, report.Superseded)

	tx, err := s.bookings.BeginTx(ctx)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to open transaction")
	}
	defer func() {
		_ = tx.Rollback()
	}()

	if err := s.bookings.BulkCreateWithTx(ctx, tx, bookings); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to persist session occurrences")
	}
	if len(retire) > 0 {
		if err := s.bookings.RetireWithTx(ctx, tx, retire); err != nil {
			return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to retire superseded bookings")
		}
	}
	if err := tx.Commit(); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to commit session")
	}

	if s.cache != nil {
		pattern := fmt.Sprintf("timeline:%s:*", template.OwnerID)
		if err := s.cache.DeleteByPattern(ctx, pattern); err != nil {
			s.logger.Warn("timeline cache invalidation failed", zap.String("owner_id", template.OwnerID), zap.Error(err))
		}
	}
	s.logger.Info("session committed",
		zap.String("session_id", sessionID),
		zap.String("owner_id", template.OwnerID),
		zap.Int("occurrences", len(bookings)),
		zap.String("outcome", string(report.Outcome)))

	return &dto.SessionResponse{SessionID: sessionID, Committed: true, Report: report}, nil
}

func (s *SessionService) resolveInputs(ctx context.Context, req dto.SessionRequest) (models.SessionTemplate, []models.ScheduleInstance, string, error) {
	if err := s.validator.Struct(req); err != nil {
		return models.SessionTemplate{}, nil, "", appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid session payload")
	}
	template := req.Template()
	horizonStart, horizonEnd := schedule.ResolutionHorizon(template)
	instances, version, err := s.timeline.MergedWindow(ctx, template.OwnerID, horizonStart, horizonEnd)
	if err != nil {
		return models.SessionTemplate{}, nil, "", err
	}
	return template, instances, version, nil
}

// supersededBookingIDs keeps only displaced instances that are stored
// bookings. Rule-derived instances have no row to retire; overriding them is
// already reflected by the new BOOKED occurrences winning the merge.
func (s *SessionService) supersededBookingIDs(ctx context.Context, superseded []models.ScheduleInstance) []string {
	var ids []string
	for _, inst := range superseded {
		if inst.RuleKind != "" {
			continue
		}
		if _, err := s.bookings.GetByID(ctx, inst.SourceRuleID); err != nil {
			continue
		}
		ids = append(ids, inst.SourceRuleID)
	}
	return ids
}

func mapResolveError(err error) error {
	switch {
	case errors.Is(err, schedule.ErrDegenerateRecurrence):
		return appErrors.Wrap(err, appErrors.ErrDegenerateRecurrence.Code, appErrors.ErrDegenerateRecurrence.Status, "recurrence cannot produce the requested occurrences")
	case errors.Is(err, schedule.ErrUnparsableTimestamp):
		return appErrors.Wrap(err, appErrors.ErrUnparsableTimestamp.Code, appErrors.ErrUnparsableTimestamp.Status, "invalid session window")
	default:
		return appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to resolve session series")
	}
}
