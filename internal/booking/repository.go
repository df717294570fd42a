package booking

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/jmoiron/sqlx"
	"github.com/lib/pq"

	"stallbook/internal/timeslot"
)

// maxCreateAttempts bounds the retry loop around serialization failures.
// The overlap check runs under serializable isolation, so concurrent
// creates for the same provider/date can abort each other; retrying is
// safe because the check is re-run from scratch.
const maxCreateAttempts = 3

var ErrInvalidStatus = errors.New("invalid booking status transition target")

type repository struct {
	db *sqlx.DB
}

func NewRepository(db *sqlx.DB) Repository {
	return &repository{db: db}
}

const bookingColumns = `id, customer_id, provider_id, service_id, booking_date, start_time, end_time,
		status, horse_id, horse_name, route_order_id, travel_time_minutes, is_manual, created_at, updated_at`

func isSerializationFailure(err error) bool {
	var pqErr *pq.Error
	if errors.As(err, &pqErr) {
		// serialization_failure and deadlock_detected
		return pqErr.Code == "40001" || pqErr.Code == "40P01"
	}
	return false
}

func (r *repository) CreateWithOverlapCheck(ctx context.Context, params CreateParams) (*BookingWithRelations, error) {
	var lastErr error
	for attempt := 0; attempt < maxCreateAttempts; attempt++ {
		created, err := r.createOnce(ctx, params)
		if err == nil {
			return created, nil
		}
		if !isSerializationFailure(err) {
			return nil, err
		}
		lastErr = err
	}
	return nil, fmt.Errorf("booking create aborted after %d attempts: %w", maxCreateAttempts, lastErr)
}

func (r *repository) createOnce(ctx context.Context, params CreateParams) (*BookingWithRelations, error) {
	requested := timeslot.New(params.StartTime, params.EndTime)
	if requested.IsFail() {
		return nil, fmt.Errorf("invalid time slot reached repository: %s", requested.Err())
	}

	tx, err := r.db.BeginTxx(ctx, &sql.TxOptions{Isolation: sql.LevelSerializable})
	if err != nil {
		return nil, err
	}
	defer tx.Rollback()

	// Re-check inside the transaction: two concurrent requests for
	// overlapping slots must not both observe "no conflict".
	var existing []Booking
	err = tx.SelectContext(ctx, &existing, `
		SELECT `+bookingColumns+`
		FROM bookings
		WHERE provider_id = $1 AND booking_date = $2 AND status IN ('pending', 'confirmed')
	`, params.ProviderID, params.BookingDate)
	if err != nil {
		return nil, err
	}

	for _, b := range existing {
		slot := timeslot.New(b.StartTime, b.EndTime)
		if slot.IsFail() {
			return nil, fmt.Errorf("stored booking %d has invalid slot: %s", b.ID, slot.Err())
		}
		if slot.Value().Overlaps(requested.Value()) {
			return nil, nil
		}
	}

	status := StatusPending
	if params.IsManual {
		status = StatusConfirmed
	}

	var created BookingWithRelations
	err = tx.QueryRowxContext(ctx, `
		INSERT INTO bookings (customer_id, provider_id, service_id, booking_date, start_time, end_time,
			status, horse_id, horse_name, travel_time_minutes, is_manual)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11)
		RETURNING `+bookingColumns+`
	`, params.CustomerID, params.ProviderID, params.ServiceID, params.BookingDate,
		params.StartTime, params.EndTime, status, params.HorseID, params.HorseName,
		params.TravelTimeMinutes, params.IsManual,
	).StructScan(&created.Booking)
	if err != nil {
		return nil, err
	}

	err = tx.QueryRowxContext(ctx, `
		SELECT
			u.name AS customer_name,
			s.name AS service_name,
			s.price_cents AS service_price_cents,
			s.duration_minutes AS service_duration_minutes,
			p.business_name AS provider_business_name
		FROM users u, services s, providers p
		WHERE u.id = $1 AND s.id = $2 AND p.id = $3
	`, params.CustomerID, params.ServiceID, params.ProviderID).Scan(
		&created.CustomerName,
		&created.ServiceName,
		&created.ServicePriceCents,
		&created.ServiceDurationMinutes,
		&created.ProviderBusinessName,
	)
	if err != nil {
		return nil, err
	}

	if err := tx.Commit(); err != nil {
		return nil, err
	}

	return &created, nil
}

func (r *repository) FindActiveByProviderAndDate(ctx context.Context, providerID int, date time.Time) ([]Booking, error) {
	var bookings []Booking
	err := r.db.SelectContext(ctx, &bookings, `
		SELECT `+bookingColumns+`
		FROM bookings
		WHERE provider_id = $1 AND booking_date = $2 AND status IN ('pending', 'confirmed')
		ORDER BY start_time
	`, providerID, date)
	if err != nil {
		return nil, err
	}
	return bookings, nil
}

// FindByProviderIDWithDetails selects the customer's contact details: the
// provider needs to reach the customer at the booked address.
func (r *repository) FindByProviderIDWithDetails(ctx context.Context, providerID int) ([]ProviderBookingView, error) {
	var views []ProviderBookingView
	err := r.db.SelectContext(ctx, &views, `
		SELECT
			b.id, b.customer_id, b.provider_id, b.service_id, b.booking_date, b.start_time, b.end_time,
			b.status, b.horse_id, b.horse_name, b.route_order_id, b.travel_time_minutes, b.is_manual,
			b.created_at, b.updated_at,
			u.name AS customer_name,
			u.email AS customer_email,
			u.phone AS customer_phone,
			s.name AS service_name
		FROM bookings b
		JOIN users u ON b.customer_id = u.id
		JOIN services s ON b.service_id = s.id
		WHERE b.provider_id = $1
		ORDER BY b.booking_date DESC, b.start_time
	`, providerID)
	if err != nil {
		return nil, err
	}
	return views, nil
}

// FindByCustomerIDWithDetails never selects provider contact columns.
// Customers reach providers through the platform, not directly.
func (r *repository) FindByCustomerIDWithDetails(ctx context.Context, customerID int) ([]CustomerBookingView, error) {
	var views []CustomerBookingView
	err := r.db.SelectContext(ctx, &views, `
		SELECT
			b.id, b.customer_id, b.provider_id, b.service_id, b.booking_date, b.start_time, b.end_time,
			b.status, b.horse_id, b.horse_name, b.route_order_id, b.travel_time_minutes, b.is_manual,
			b.created_at, b.updated_at,
			s.name AS service_name,
			s.price_cents AS service_price_cents,
			s.duration_minutes AS service_duration_minutes,
			p.business_name AS provider_business_name
		FROM bookings b
		JOIN services s ON b.service_id = s.id
		JOIN providers p ON b.provider_id = p.id
		WHERE b.customer_id = $1
		ORDER BY b.booking_date DESC, b.start_time
	`, customerID)
	if err != nil {
		return nil, err
	}
	return views, nil
}

func ownerPredicate(actor Actor) (string, int, error) {
	switch {
	case actor.CustomerID != nil:
		return "customer_id", *actor.CustomerID, nil
	case actor.ProviderID != nil:
		return "provider_id", *actor.ProviderID, nil
	default:
		return "", 0, errors.New("actor must carry a customer or provider id")
	}
}

// UpdateStatusWithAuth folds the ownership check and the legal-transition
// check into the UPDATE's WHERE clause. Zero rows affected collapses
// "does not exist", "not yours" and "wrong current status" into one nil
// answer so callers cannot probe for other people's bookings.
func (r *repository) UpdateStatusWithAuth(ctx context.Context, id int, status Status, actor Actor) (*Booking, error) {
	sources := TransitionSources(status)
	if len(sources) == 0 {
		return nil, fmt.Errorf("%w: %q", ErrInvalidStatus, status)
	}

	ownerColumn, ownerID, err := ownerPredicate(actor)
	if err != nil {
		return nil, err
	}

	from := make([]string, len(sources))
	for i, s := range sources {
		from[i] = string(s)
	}

	var updated Booking
	err = r.db.QueryRowxContext(ctx, `
		UPDATE bookings
		SET status = $1, updated_at = NOW()
		WHERE id = $2 AND status = ANY($3) AND `+ownerColumn+` = $4
		RETURNING `+bookingColumns+`
	`, status, id, pq.Array(from), ownerID).StructScan(&updated)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &updated, nil
}

// DeleteWithAuth deletes in a single statement whose WHERE carries the
// ownership check. false means not-found-or-unauthorized, merged.
func (r *repository) DeleteWithAuth(ctx context.Context, id int, actor Actor) (bool, error) {
	ownerColumn, ownerID, err := ownerPredicate(actor)
	if err != nil {
		return false, err
	}

	result, err := r.db.ExecContext(ctx,
		`DELETE FROM bookings WHERE id = $1 AND `+ownerColumn+` = $2`,
		id, ownerID)
	if err != nil {
		return false, err
	}

	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return false, err
	}

	return rowsAffected > 0, nil
}
