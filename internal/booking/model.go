package booking

import "time"

// Status is the booking lifecycle state. Only pending and confirmed
// bookings block a provider's time slot.
type Status string

const (
	StatusPending   Status = "pending"
	StatusConfirmed Status = "confirmed"
	StatusCancelled Status = "cancelled"
	StatusCompleted Status = "completed"
	StatusNoShow    Status = "no_show"
)

// ActiveStatuses are the statuses that count for the overlap check.
var ActiveStatuses = []Status{StatusPending, StatusConfirmed}

// allowedFrom maps a target status to the statuses a booking may hold
// before the transition. cancelled is reachable from both active states.
var allowedFrom = map[Status][]Status{
	StatusConfirmed: {StatusPending},
	StatusCancelled: {StatusPending, StatusConfirmed},
	StatusCompleted: {StatusConfirmed},
	StatusNoShow:    {StatusConfirmed},
}

func (s Status) Valid() bool {
	switch s {
	case StatusPending, StatusConfirmed, StatusCancelled, StatusCompleted, StatusNoShow:
		return true
	}
	return false
}

// TransitionSources returns the statuses from which s may be reached.
// An empty slice means s is never a legal transition target.
func TransitionSources(s Status) []Status {
	return allowedFrom[s]
}

type Booking struct {
	ID                int       `db:"id" json:"id"`
	CustomerID        int       `db:"customer_id" json:"customer_id"`
	ProviderID        int       `db:"provider_id" json:"provider_id"`
	ServiceID         int       `db:"service_id" json:"service_id"`
	BookingDate       time.Time `db:"booking_date" json:"booking_date"`
	StartTime         string    `db:"start_time" json:"start_time"`
	EndTime           string    `db:"end_time" json:"end_time"`
	Status            Status    `db:"status" json:"status"`
	HorseID           *int      `db:"horse_id" json:"horse_id,omitempty"`
	HorseName         *string   `db:"horse_name" json:"horse_name,omitempty"`
	RouteOrderID      *int      `db:"route_order_id" json:"route_order_id,omitempty"`
	TravelTimeMinutes int       `db:"travel_time_minutes" json:"travel_time_minutes"`
	IsManual          bool      `db:"is_manual" json:"is_manual"`
	CreatedAt         time.Time `db:"created_at" json:"created_at"`
	UpdatedAt         time.Time `db:"updated_at" json:"updated_at"`
}

// BookingWithRelations is the denormalized creation payload: just enough
// relation data for a confirmation view, nothing more.
type BookingWithRelations struct {
	Booking
	CustomerName           string `db:"customer_name" json:"customer_name"`
	ServiceName            string `db:"service_name" json:"service_name"`
	ServicePriceCents      int64  `db:"service_price_cents" json:"service_price_cents"`
	ServiceDurationMinutes int    `db:"service_duration_minutes" json:"service_duration_minutes"`
	ProviderBusinessName   string `db:"provider_business_name" json:"provider_business_name"`
}

// ProviderBookingView is the provider-facing projection. It includes the
// customer's contact details so the provider can reach them.
type ProviderBookingView struct {
	Booking
	CustomerName  string `db:"customer_name" json:"customer_name"`
	CustomerEmail string `db:"customer_email" json:"customer_email"`
	CustomerPhone string `db:"customer_phone" json:"customer_phone"`
	ServiceName   string `db:"service_name" json:"service_name"`
}

// CustomerBookingView is the customer-facing projection. Provider contact
// details are deliberately not selected: customers reach providers through
// the platform, never directly.
type CustomerBookingView struct {
	Booking
	ServiceName            string `db:"service_name" json:"service_name"`
	ServicePriceCents      int64  `db:"service_price_cents" json:"service_price_cents"`
	ServiceDurationMinutes int    `db:"service_duration_minutes" json:"service_duration_minutes"`
	ProviderBusinessName   string `db:"provider_business_name" json:"provider_business_name"`
}

// Actor identifies the caller for guarded mutations. Exactly one of the
// two ids is set; it becomes part of the WHERE predicate so ownership is
// checked by the store in the same statement as the mutation.
type Actor struct {
	CustomerID *int
	ProviderID *int
}

func CustomerActor(customerID int) Actor {
	return Actor{CustomerID: &customerID}
}

func ProviderActor(providerID int) Actor {
	return Actor{ProviderID: &providerID}
}

// CreateParams is the validated input for the overlap-checked create path.
type CreateParams struct {
	CustomerID        int
	ProviderID        int
	ServiceID         int
	BookingDate       time.Time
	StartTime         string
	EndTime           string
	HorseID           *int
	HorseName         *string
	TravelTimeMinutes int
	// IsManual marks a booking entered by the provider on behalf of a
	// customer; it is created confirmed instead of pending.
	IsManual bool
}

type CreateBookingRequest struct {
	ProviderID      int      `json:"provider_id" binding:"required"`
	ServiceID       int      `json:"service_id" binding:"required"`
	BookingDate     string   `json:"booking_date" binding:"required"`
	StartTime       string   `json:"start_time" binding:"required"`
	EndTime         string   `json:"end_time"`
	DurationMinutes int      `json:"duration_minutes"`
	HorseID         *int     `json:"horse_id"`
	HorseName       *string  `json:"horse_name"`
	Latitude        *float64 `json:"latitude"`
	Longitude       *float64 `json:"longitude"`
	Address         string   `json:"address"`
}

// ManualBookingRequest is a booking entered by the provider on behalf of
// a customer, e.g. one taken over the phone. It is created confirmed.
type ManualBookingRequest struct {
	CustomerID      int      `json:"customer_id" binding:"required"`
	ServiceID       int      `json:"service_id" binding:"required"`
	BookingDate     string   `json:"booking_date" binding:"required"`
	StartTime       string   `json:"start_time" binding:"required"`
	EndTime         string   `json:"end_time"`
	DurationMinutes int      `json:"duration_minutes"`
	HorseID         *int     `json:"horse_id"`
	HorseName       *string  `json:"horse_name"`
	Latitude        *float64 `json:"latitude"`
	Longitude       *float64 `json:"longitude"`
	Address         string   `json:"address"`
}

type UpdateStatusRequest struct {
	Status Status `json:"status" binding:"required"`
}
