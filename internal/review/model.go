package review

import (
	"time"

	"stallbook/internal/result"
)

const (
	MinRating = 1
	MaxRating = 5

	maxCommentLength = 2000
)

// Review is a customer's rating of a completed booking. A booking can be
// reviewed at most once, enforced by a unique index on booking_id.
type Review struct {
	ID         int       `db:"id" json:"id"`
	BookingID  int       `db:"booking_id" json:"booking_id"`
	CustomerID int       `db:"customer_id" json:"customer_id"`
	ProviderID int       `db:"provider_id" json:"provider_id"`
	Rating     int       `db:"rating" json:"rating"`
	Comment    string    `db:"comment" json:"comment"`
	CreatedAt  time.Time `db:"created_at" json:"created_at"`
	UpdatedAt  time.Time `db:"updated_at" json:"updated_at"`
}

// ReviewWithCustomer is the public listing projection.
type ReviewWithCustomer struct {
	Review
	CustomerName string `db:"customer_name" json:"customer_name"`
}

// ProviderRatingSummary aggregates a provider's reviews.
type ProviderRatingSummary struct {
	ProviderID    int     `db:"provider_id" json:"provider_id"`
	ReviewCount   int     `db:"review_count" json:"review_count"`
	AverageRating float64 `db:"average_rating" json:"average_rating"`
}

type CreateReviewRequest struct {
	BookingID int    `json:"booking_id" binding:"required"`
	Rating    int    `json:"rating" binding:"required"`
	Comment   string `json:"comment"`
}

type UpdateReviewRequest struct {
	Rating  int    `json:"rating" binding:"required"`
	Comment string `json:"comment"`
}

// ValidateRating checks the rating and comment bounds with deterministic
// messages, first failure wins.
func ValidateRating(rating int, comment string) result.Result[result.Void] {
	return result.Guards(
		result.InRange(float64(rating), MinRating, MaxRating, "rating"),
		result.LengthInRange(comment, 0, maxCommentLength, "comment"),
	)
}
