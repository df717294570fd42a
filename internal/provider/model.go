package provider

import "time"

// Provider is a service provider profile (farrier, trainer) owned by a
// user account. Coordinates are the provider's base of operations and
// feed the travel-time feasibility check on bookings.
type Provider struct {
	ID           int       `db:"id" json:"id"`
	UserID       int       `db:"user_id" json:"user_id"`
	BusinessName string    `db:"business_name" json:"business_name"`
	Description  string    `db:"description" json:"description"`
	Phone        string    `db:"phone" json:"phone"`
	Address      string    `db:"address" json:"address"`
	Latitude     *float64  `db:"latitude" json:"latitude,omitempty"`
	Longitude    *float64  `db:"longitude" json:"longitude,omitempty"`
	CreatedAt    time.Time `db:"created_at" json:"created_at"`
	UpdatedAt    time.Time `db:"updated_at" json:"updated_at"`
}

// Service is an offering in a provider's catalog. Its duration is the
// default slot length when a booking request does not specify one.
type Service struct {
	ID              int       `db:"id" json:"id"`
	ProviderID      int       `db:"provider_id" json:"provider_id"`
	Name            string    `db:"name" json:"name"`
	PriceCents      int64     `db:"price_cents" json:"price_cents"`
	DurationMinutes int       `db:"duration_minutes" json:"duration_minutes"`
	CreatedAt       time.Time `db:"created_at" json:"created_at"`
}

type CreateProviderRequest struct {
	BusinessName string   `json:"business_name" binding:"required"`
	Description  string   `json:"description"`
	Phone        string   `json:"phone"`
	Address      string   `json:"address"`
	Latitude     *float64 `json:"latitude"`
	Longitude    *float64 `json:"longitude"`
}

type UpdateProviderRequest struct {
	BusinessName string   `json:"business_name" binding:"required"`
	Description  string   `json:"description"`
	Phone        string   `json:"phone"`
	Address      string   `json:"address"`
	Latitude     *float64 `json:"latitude"`
	Longitude    *float64 `json:"longitude"`
}

type CreateServiceRequest struct {
	Name            string `json:"name" binding:"required"`
	PriceCents      int64  `json:"price_cents" binding:"required,min=1"`
	DurationMinutes int    `json:"duration_minutes" binding:"required,min=15,max=480"`
}
