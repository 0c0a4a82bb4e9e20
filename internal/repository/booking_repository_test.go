package repository

import (
	"context"
	"testing"
	"time"

	sqlmock "github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/sarafrika/elimika-availability-api/internal/models"
)

func bookingRows() *sqlmock.Rows {
	return sqlmock.NewRows([]string{
		"id", "owner_id", "date", "start_at", "end_at", "status", "reason", "session_id", "created_at", "updated_at",
	})
}

func TestBookingRepositoryListByOwnerWindow(t *testing.T) {
	db, mock, cleanup := newRepoMock(t)
	defer cleanup()
	repo := NewBookingRepository(db)

	from := time.Date(2025, time.October, 1, 0, 0, 0, 0, time.UTC)
	to := time.Date(2025, time.October, 31, 0, 0, 0, 0, time.UTC)
	rows := bookingRows().
		AddRow("b1", "instructor-1", from, from.Add(9*time.Hour), from.Add(10*time.Hour),
			"BOOKED", nil, "sess-1", time.Now(), time.Now())
	mock.ExpectQuery(`SELECT id, owner_id, date(?s:.+)FROM schedule_bookings WHERE owner_id = \$1 AND status <> 'SUPERSEDED' AND end_at > \$2 AND start_at < \$3 ORDER BY start_at ASC, id ASC`).
		WithArgs("instructor-1", from, to).
		WillReturnRows(rows)

	bookings, err := repo.ListByOwner(context.Background(), models.BookingFilter{OwnerID: "instructor-1", From: &from, To: &to})
	require.NoError(t, err)
	require.Len(t, bookings, 1)
	assert.Equal(t, models.InstanceBooked, bookings[0].Status)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestBookingRepositoryCreateAssignsID(t *testing.T) {
	db, mock, cleanup := newRepoMock(t)
	defer cleanup()
	repo := NewBookingRepository(db)

	mock.ExpectExec("INSERT INTO schedule_bookings").
		WillReturnResult(sqlmock.NewResult(1, 1))

	booking := models.Booking{
		OwnerID: "instructor-1",
		Date:    time.Date(2025, time.October, 7, 0, 0, 0, 0, time.UTC),
		StartAt: time.Date(2025, time.October, 7, 9, 0, 0, 0, time.UTC),
		EndAt:   time.Date(2025, time.October, 7, 10, 0, 0, 0, time.UTC),
		Status:  models.InstanceBooked,
	}
	require.NoError(t, repo.Create(context.Background(), &booking))
	assert.NotEmpty(t, booking.ID)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestBookingRepositoryBulkCreateWithTx(t *testing.T) {
	db, mock, cleanup := newRepoMock(t)
	defer cleanup()
	repo := NewBookingRepository(db)

	mock.ExpectBegin()
	mock.ExpectExec("INSERT INTO schedule_bookings").WillReturnResult(sqlmock.NewResult(1, 1))
	mock.ExpectExec("INSERT INTO schedule_bookings").WillReturnResult(sqlmock.NewResult(1, 1))
	mock.ExpectCommit()

	tx, err := repo.BeginTx(context.Background())
	require.NoError(t, err)

	start := time.Date(2025, time.October, 7, 9, 0, 0, 0, time.UTC)
	bookings := []models.Booking{
		{OwnerID: "instructor-1", Date: start, StartAt: start, EndAt: start.Add(time.Hour), Status: models.InstanceBooked},
		{OwnerID: "instructor-1", Date: start.AddDate(0, 0, 7), StartAt: start.AddDate(0, 0, 7), EndAt: start.AddDate(0, 0, 7).Add(time.Hour), Status: models.InstanceBooked},
	}
	require.NoError(t, repo.BulkCreateWithTx(context.Background(), tx, bookings))
	require.NoError(t, tx.Commit())
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestBookingRepositoryRetireWithTx(t *testing.T) {
	db, mock, cleanup := newRepoMock(t)
	defer cleanup()
	repo := NewBookingRepository(db)

	mock.ExpectBegin()
	mock.ExpectExec(`UPDATE schedule_bookings SET status = 'SUPERSEDED'`).
		WithArgs(sqlmock.AnyArg(), "b1", "b2").
		WillReturnResult(sqlmock.NewResult(0, 2))
	mock.ExpectCommit()

	tx, err := repo.BeginTx(context.Background())
	require.NoError(t, err)
	require.NoError(t, repo.RetireWithTx(context.Background(), tx, []string{"b1", "b2"}))
	require.NoError(t, tx.Commit())
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestBookingRepositoryRetireWithTxNoIDs(t *testing.T) {
	db, mock, cleanup := newRepoMock(t)
	defer cleanup()
	repo := NewBookingRepository(db)

	mock.ExpectBegin()
	mock.ExpectCommit()

	tx, err := repo.BeginTx(context.Background())
	require.NoError(t, err)
	require.NoError(t, repo.RetireWithTx(context.Background(), tx, nil))
	require.NoError(t, tx.Commit())
	assert.NoError(t, mock.ExpectationsWereMet())
}
