package review

import (
	"context"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/jmoiron/sqlx"
	"github.com/lib/pq"
	"github.com/stretchr/testify/require"
)

func setupMock(t *testing.T) (Repository, sqlmock.Sqlmock, func()) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)

	sqlxDB := sqlx.NewDb(db, "sqlmock")
	repo := NewRepository(sqlxDB)

	return repo, mock, func() { sqlxDB.Close() }
}

var reviewRows = []string{
	"id", "booking_id", "customer_id", "provider_id", "rating", "comment", "created_at", "updated_at",
}

func TestCreateForCompletedBooking(t *testing.T) {
	repo, mock, close := setupMock(t)
	defer close()

	now := time.Now()
	mock.ExpectQuery("INSERT INTO reviews").
		WithArgs(5, "Mycket nöjd", 10, 1).
		WillReturnRows(sqlmock.NewRows(reviewRows).AddRow(1, 10, 1, 2, 5, "Mycket nöjd", now, now))

	created, err := repo.CreateForCompletedBooking(context.Background(), 1, CreateReviewRequest{
		BookingID: 10,
		Rating:    5,
		Comment:   "Mycket nöjd",
	})
	require.NoError(t, err)
	require.NotNil(t, created)
	require.Equal(t, 5, created.Rating)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestCreateForCompletedBooking_GuardFailsSilently(t *testing.T) {
	repo, mock, close := setupMock(t)
	defer close()

	// Booking missing, foreign or not completed: the fused INSERT...SELECT
	// inserts nothing and reveals nothing.
	mock.ExpectQuery("INSERT INTO reviews").
		WithArgs(5, "", 10, 1).
		WillReturnRows(sqlmock.NewRows(reviewRows))

	created, err := repo.CreateForCompletedBooking(context.Background(), 1, CreateReviewRequest{
		BookingID: 10,
		Rating:    5,
	})
	require.NoError(t, err)
	require.Nil(t, created)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestCreateForCompletedBooking_Duplicate(t *testing.T) {
	repo, mock, close := setupMock(t)
	defer close()

	mock.ExpectQuery("INSERT INTO reviews").
		WillReturnError(&pq.Error{Code: "23505"})

	created, err := repo.CreateForCompletedBooking(context.Background(), 1, CreateReviewRequest{
		BookingID: 10,
		Rating:    5,
	})
	require.ErrorIs(t, err, ErrAlreadyReviewed)
	require.Nil(t, created)
}

func TestUpdateWithAuth_ZeroRowsIsNil(t *testing.T) {
	repo, mock, close := setupMock(t)
	defer close()

	mock.ExpectQuery("UPDATE reviews").
		WithArgs(4, "Ändrade mig", 1, 99).
		WillReturnRows(sqlmock.NewRows(reviewRows))

	updated, err := repo.UpdateWithAuth(context.Background(), 1, 99, UpdateReviewRequest{
		Rating:  4,
		Comment: "Ändrade mig",
	})
	require.NoError(t, err)
	require.Nil(t, updated)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestDeleteWithAuth(t *testing.T) {
	repo, mock, close := setupMock(t)
	defer close()

	mock.ExpectExec("DELETE FROM reviews").
		WithArgs(1, 1).
		WillReturnResult(sqlmock.NewResult(0, 1))

	deleted, err := repo.DeleteWithAuth(context.Background(), 1, 1)
	require.NoError(t, err)
	require.True(t, deleted)

	mock.ExpectExec("DELETE FROM reviews").
		WithArgs(1, 2).
		WillReturnResult(sqlmock.NewResult(0, 0))

	deleted, err = repo.DeleteWithAuth(context.Background(), 1, 2)
	require.NoError(t, err)
	require.False(t, deleted)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestRatingSummary(t *testing.T) {
	repo, mock, close := setupMock(t)
	defer close()

	mock.ExpectQuery("FROM reviews").
		WithArgs(2).
		WillReturnRows(sqlmock.NewRows([]string{"provider_id", "review_count", "average_rating"}).
			AddRow(2, 3, 4.33))

	summary, err := repo.RatingSummary(context.Background(), 2)
	require.NoError(t, err)
	require.Equal(t, 3, summary.ReviewCount)
	require.InDelta(t, 4.33, summary.AverageRating, 0.001)
}

func TestValidateRating(t *testing.T) {
	require.True(t, ValidateRating(1, "").IsOK())
	require.True(t, ValidateRating(5, "bra").IsOK())

	v := ValidateRating(0, "")
	require.True(t, v.IsFail())
	require.Equal(t, "rating must be between 1 and 5, got 0", v.Err())

	v = ValidateRating(6, "")
	require.True(t, v.IsFail())
	require.Contains(t, v.Err(), "rating")
}
