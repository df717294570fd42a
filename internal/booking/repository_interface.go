package booking

import (
	"context"
	"time"
)

// Repository is the command side of the booking store.
//
// CreateWithOverlapCheck returns (nil, nil) when the requested slot
// conflicts with an active booking: a conflict is an expected business
// outcome, not an error. UpdateStatusWithAuth returns (nil, nil) both when
// the booking does not exist and when the actor does not own it; the two
// cases are deliberately indistinguishable.
type Repository interface {
	CreateWithOverlapCheck(ctx context.Context, params CreateParams) (*BookingWithRelations, error)
	FindActiveByProviderAndDate(ctx context.Context, providerID int, date time.Time) ([]Booking, error)
	FindByProviderIDWithDetails(ctx context.Context, providerID int) ([]ProviderBookingView, error)
	FindByCustomerIDWithDetails(ctx context.Context, customerID int) ([]CustomerBookingView, error)
	UpdateStatusWithAuth(ctx context.Context, id int, status Status, actor Actor) (*Booking, error)
	DeleteWithAuth(ctx context.Context, id int, actor Actor) (bool, error)
}
