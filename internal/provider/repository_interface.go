package provider

import "context"

// Repository stores provider profiles and their service catalogs.
//
// Lookups return (nil, nil) when nothing matches. The guarded mutations
// fold the owning user id into the WHERE clause and report
// not-found-or-unauthorized as a single merged outcome.
type Repository interface {
	Create(ctx context.Context, userID int, req CreateProviderRequest) (*Provider, error)
	GetByID(ctx context.Context, id int) (*Provider, error)
	GetByUserID(ctx context.Context, userID int) (*Provider, error)
	List(ctx context.Context) ([]Provider, error)
	UpdateWithAuth(ctx context.Context, id, userID int, req UpdateProviderRequest) (*Provider, error)
	DeleteWithAuth(ctx context.Context, id, userID int) (bool, error)

	CreateService(ctx context.Context, providerID int, req CreateServiceRequest) (*Service, error)
	GetServiceByID(ctx context.Context, id int) (*Service, error)
	ListServices(ctx context.Context, providerID int) ([]Service, error)
	DeleteServiceWithAuth(ctx context.Context, serviceID, userID int) (bool, error)
}
