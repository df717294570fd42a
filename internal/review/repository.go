package review

import (
	"context"
	"database/sql"
	"errors"

	"github.com/jmoiron/sqlx"
	"github.com/lib/pq"
)

// ErrAlreadyReviewed surfaces the unique index on booking_id.
var ErrAlreadyReviewed = errors.New("booking already reviewed")

type repository struct {
	db *sqlx.DB
}

func NewRepository(db *sqlx.DB) Repository {
	return &repository{db: db}
}

const reviewColumns = `id, booking_id, customer_id, provider_id, rating, comment, created_at, updated_at`

// CreateForCompletedBooking inserts through a SELECT on bookings so the
// existence, ownership and completed-status checks happen in the same
// statement as the write. Zero rows inserted means one of them failed;
// the caller cannot tell which.
func (r *repository) CreateForCompletedBooking(ctx context.Context, customerID int, req CreateReviewRequest) (*Review, error) {
	var rev Review
	err := r.db.QueryRowxContext(ctx, `
		INSERT INTO reviews (booking_id, customer_id, provider_id, rating, comment)
		SELECT b.id, b.customer_id, b.provider_id, $1, $2
		FROM bookings b
		WHERE b.id = $3 AND b.customer_id = $4 AND b.status = 'completed'
		RETURNING `+reviewColumns+`
	`, req.Rating, req.Comment, req.BookingID, customerID).StructScan(&rev)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	var pqErr *pq.Error
	if errors.As(err, &pqErr) && pqErr.Code == "23505" {
		return nil, ErrAlreadyReviewed
	}
	if err != nil {
		return nil, err
	}
	return &rev, nil
}

func (r *repository) GetByID(ctx context.Context, id int) (*Review, error) {
	var rev Review
	err := r.db.GetContext(ctx, &rev, `SELECT `+reviewColumns+` FROM reviews WHERE id = $1`, id)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &rev, nil
}

func (r *repository) ListByProvider(ctx context.Context, providerID int) ([]ReviewWithCustomer, error) {
	var reviews []ReviewWithCustomer
	err := r.db.SelectContext(ctx, &reviews, `
		SELECT r.id, r.booking_id, r.customer_id, r.provider_id, r.rating, r.comment,
			r.created_at, r.updated_at,
			u.name AS customer_name
		FROM reviews r
		JOIN users u ON r.customer_id = u.id
		WHERE r.provider_id = $1
		ORDER BY r.created_at DESC
	`, providerID)
	if err != nil {
		return nil, err
	}
	return reviews, nil
}

func (r *repository) RatingSummary(ctx context.Context, providerID int) (*ProviderRatingSummary, error) {
	var summary ProviderRatingSummary
	err := r.db.GetContext(ctx, &summary, `
		SELECT $1::int AS provider_id,
			COUNT(*) AS review_count,
			COALESCE(AVG(rating), 0) AS average_rating
		FROM reviews
		WHERE provider_id = $1
	`, providerID)
	if err != nil {
		return nil, err
	}
	return &summary, nil
}

func (r *repository) UpdateWithAuth(ctx context.Context, id, customerID int, req UpdateReviewRequest) (*Review, error) {
	var rev Review
	err := r.db.QueryRowxContext(ctx, `
		UPDATE reviews
		SET rating = $1, comment = $2, updated_at = NOW()
		WHERE id = $3 AND customer_id = $4
		RETURNING `+reviewColumns+`
	`, req.Rating, req.Comment, id, customerID).StructScan(&rev)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &rev, nil
}

func (r *repository) DeleteWithAuth(ctx context.Context, id, customerID int) (bool, error) {
	result, err := r.db.ExecContext(ctx,
		`DELETE FROM reviews WHERE id = $1 AND customer_id = $2`, id, customerID)
	if err != nil {
		return false, err
	}

	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return false, err
	}

	return rowsAffected > 0, nil
}
