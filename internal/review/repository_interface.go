package review

import "context"

// Repository stores reviews.
//
// CreateForCompletedBooking inserts only when the booking exists, belongs
// to the customer and is completed; it returns (nil, nil) otherwise. The
// guarded mutations fold customer ownership into the WHERE clause and
// merge not-found with unauthorized.
type Repository interface {
	CreateForCompletedBooking(ctx context.Context, customerID int, req CreateReviewRequest) (*Review, error)
	GetByID(ctx context.Context, id int) (*Review, error)
	ListByProvider(ctx context.Context, providerID int) ([]ReviewWithCustomer, error)
	RatingSummary(ctx context.Context, providerID int) (*ProviderRatingSummary, error)
	UpdateWithAuth(ctx context.Context, id, customerID int, req UpdateReviewRequest) (*Review, error)
	DeleteWithAuth(ctx context.Context, id, customerID int) (bool, error)
}
