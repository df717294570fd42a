package provider

import (
	"context"
	"database/sql"
	"errors"

	"github.com/jmoiron/sqlx"
)

type repository struct {
	db *sqlx.DB
}

func NewRepository(db *sqlx.DB) Repository {
	return &repository{db: db}
}

const providerColumns = `id, user_id, business_name, description, phone, address, latitude, longitude, created_at, updated_at`

func (r *repository) Create(ctx context.Context, userID int, req CreateProviderRequest) (*Provider, error) {
	var p Provider
	err := r.db.QueryRowxContext(ctx, `
		INSERT INTO providers (user_id, business_name, description, phone, address, latitude, longitude)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
		RETURNING `+providerColumns+`
	`, userID, req.BusinessName, req.Description, req.Phone, req.Address, req.Latitude, req.Longitude).StructScan(&p)
	if err != nil {
		return nil, err
	}
	return &p, nil
}

func (r *repository) GetByID(ctx context.Context, id int) (*Provider, error) {
	var p Provider
	err := r.db.GetContext(ctx, &p, `SELECT `+providerColumns+` FROM providers WHERE id = $1`, id)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &p, nil
}

func (r *repository) GetByUserID(ctx context.Context, userID int) (*Provider, error) {
	var p Provider
	err := r.db.GetContext(ctx, &p, `SELECT `+providerColumns+` FROM providers WHERE user_id = $1`, userID)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &p, nil
}

func (r *repository) List(ctx context.Context) ([]Provider, error) {
	var providers []Provider
	err := r.db.SelectContext(ctx, &providers,
		`SELECT `+providerColumns+` FROM providers ORDER BY business_name`)
	if err != nil {
		return nil, err
	}
	return providers, nil
}

// UpdateWithAuth carries the owning user id in the WHERE clause. Zero rows
// means not-found-or-unauthorized, merged.
func (r *repository) UpdateWithAuth(ctx context.Context, id, userID int, req UpdateProviderRequest) (*Provider, error) {
	var p Provider
	err := r.db.QueryRowxContext(ctx, `
		UPDATE providers
		SET business_name = $1, description = $2, phone = $3, address = $4,
			latitude = $5, longitude = $6, updated_at = NOW()
		WHERE id = $7 AND user_id = $8
		RETURNING `+providerColumns+`
	`, req.BusinessName, req.Description, req.Phone, req.Address,
		req.Latitude, req.Longitude, id, userID).StructScan(&p)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &p, nil
}

func (r *repository) DeleteWithAuth(ctx context.Context, id, userID int) (bool, error) {
	result, err := r.db.ExecContext(ctx,
		`DELETE FROM providers WHERE id = $1 AND user_id = $2`, id, userID)
	if err != nil {
		return false, err
	}

	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return false, err
	}

	return rowsAffected > 0, nil
}

const serviceColumns = `id, provider_id, name, price_cents, duration_minutes, created_at`

func (r *repository) CreateService(ctx context.Context, providerID int, req CreateServiceRequest) (*Service, error) {
	var s Service
	err := r.db.QueryRowxContext(ctx, `
		INSERT INTO services (provider_id, name, price_cents, duration_minutes)
		VALUES ($1, $2, $3, $4)
		RETURNING `+serviceColumns+`
	`, providerID, req.Name, req.PriceCents, req.DurationMinutes).StructScan(&s)
	if err != nil {
		return nil, err
	}
	return &s, nil
}

func (r *repository) GetServiceByID(ctx context.Context, id int) (*Service, error) {
	var s Service
	err := r.db.GetContext(ctx, &s, `SELECT `+serviceColumns+` FROM services WHERE id = $1`, id)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &s, nil
}

func (r *repository) ListServices(ctx context.Context, providerID int) ([]Service, error) {
	var services []Service
	err := r.db.SelectContext(ctx, &services,
		`SELECT `+serviceColumns+` FROM services WHERE provider_id = $1 ORDER BY name`, providerID)
	if err != nil {
		return nil, err
	}
	return services, nil
}

// DeleteServiceWithAuth checks catalog ownership through the providers
// join inside the DELETE itself.
func (r *repository) DeleteServiceWithAuth(ctx context.Context, serviceID, userID int) (bool, error) {
	result, err := r.db.ExecContext(ctx, `
		DELETE FROM services s
		USING providers p
		WHERE s.id = $1 AND s.provider_id = p.id AND p.user_id = $2
	`, serviceID, userID)
	if err != nil {
		return false, err
	}

	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return false, err
	}

	return rowsAffected > 0, nil
}
