package repository

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"

	"github.com/sarafrika/elimika-availability-api/internal/models"
)

const bookingColumns = `id, owner_id, date, start_at, end_at, status, reason, session_id, created_at, updated_at`

// BookingRepository persists one-off bookings and explicit date-bound blocks.
type BookingRepository struct {
	db *sqlx.DB
}

// NewBookingRepository constructs the repository.
func NewBookingRepository(db *sqlx.DB) *BookingRepository {
	return &BookingRepository{db: db}
}

// BeginTx opens a transaction for multi-step booking writes.
func (r *BookingRepository) BeginTx(ctx context.Context) (*sqlx.Tx, error) {
	return r.db.BeginTxx(ctx, nil)
}

// ListByOwner returns an owner's stored bookings, optionally bounded to a
// window. SUPERSEDED rows are excluded; they no longer occupy the timeline.
func (r *BookingRepository) ListByOwner(ctx context.Context, filter models.BookingFilter) ([]models.Booking, error) {
	where := []string{"owner_id = $1", "status <> 'SUPERSEDED'"}
	args := []interface{}{filter.OwnerID}
	if filter.From != nil {
		where = append(where, fmt.Sprintf("end_at > $%d", len(args)+1))
		args = append(args, *filter.From)
	}
	if filter.To != nil {
		where = append(where, fmt.Sprintf("start_at < $%d", len(args)+1))
		args = append(args, *filter.To)
	}
	query := fmt.Sprintf(`SELECT %s FROM schedule_bookings WHERE %s ORDER BY start_at ASC, id ASC`,
		bookingColumns, strings.Join(where, " AND "))
	var bookings []models.Booking
	if err := r.db.SelectContext(ctx, &bookings, query, args...); err != nil {
		return nil, fmt.Errorf("list bookings: %w", err)
	}
	return bookings, nil
}

// GetByID fetches a single booking.
func (r *BookingRepository) GetByID(ctx context.Context, id string) (*models.Booking, error) {
	query := fmt.Sprintf(`SELECT %s FROM schedule_bookings WHERE id = $1`, bookingColumns)
	var booking models.Booking
	if err := r.db.GetContext(ctx, &booking, query, id); err != nil {
		return nil, err
	}
	return &booking, nil
}

// Create inserts a booking outside any transaction.
func (r *BookingRepository) Create(ctx context.Context, booking *models.Booking) error {
	prepareBooking(booking)
	if _, err := r.db.NamedExecContext(ctx, insertBookingQuery, booking); err != nil {
		return fmt.Errorf("create booking: %w", err)
	}
	return nil
}

// Delete removes a booking.
func (r *BookingRepository) Delete(ctx context.Context, id string) error {
	if _, err := r.db.ExecContext(ctx, "DELETE FROM schedule_bookings WHERE id = $1", id); err != nil {
		return fmt.Errorf("delete booking: %w", err)
	}
	return nil
}

// BulkCreateWithTx inserts a committed series of occurrences inside tx.
func (r *BookingRepository) BulkCreateWithTx(ctx context.Context, tx *sqlx.Tx, bookings []models.Booking) error {
	for i := range bookings {
		prepareBooking(&bookings[i])
		if _, err := tx.NamedExecContext(ctx, insertBookingQuery, &bookings[i]); err != nil {
			return fmt.Errorf("bulk create booking: %w", err)
		}
	}
	return nil
}

// RetireWithTx flips displaced bookings to SUPERSEDED inside tx. Rule-derived
// instances have no stored row, so only booking IDs are retired here.
func (r *BookingRepository) RetireWithTx(ctx context.Context, tx *sqlx.Tx, ids []string) error {
	if len(ids) == 0 {
		return nil
	}
	query, args, err := sqlx.In(
		"UPDATE schedule_bookings SET status = 'SUPERSEDED', updated_at = ? WHERE id IN (?)",
		time.Now().UTC(), ids)
	if err != nil {
		return fmt.Errorf("retire bookings: %w", err)
	}
	if _, err := tx.ExecContext(ctx, tx.Rebind(query), args...); err != nil {
		return fmt.Errorf("retire bookings: %w", err)
	}
	return nil
}

const insertBookingQuery = `INSERT INTO schedule_bookings (id, owner_id, date, start_at, end_at, status, reason, session_id, created_at, updated_at)
VALUES (:id, :owner_id, :date, :start_at, :end_at, :status, :reason, :session_id, :created_at, :updated_at)`

func prepareBooking(b *models.Booking) {
	if b.ID == "" {
		b.ID = uuid.NewString()
	}
	now := time.Now().UTC()
	if b.CreatedAt.IsZero() {
		b.CreatedAt = now
	}
	b.UpdatedAt = now
}
