package notify

import (
	"context"
	"fmt"

	"stallbook/internal/provider"
	"stallbook/internal/user"
)

// repoRecipients resolves notification addresses through the user and
// provider stores.
type repoRecipients struct {
	users     user.Repository
	providers provider.Repository
}

func NewRecipients(users user.Repository, providers provider.Repository) Recipients {
	return &repoRecipients{users: users, providers: providers}
}

func (r *repoRecipients) CustomerEmail(ctx context.Context, customerID int) (string, string, error) {
	u, err := r.users.FindByID(ctx, customerID)
	if err != nil {
		return "", "", err
	}
	return u.Email, u.Name, nil
}

func (r *repoRecipients) ProviderEmail(ctx context.Context, providerID int) (string, string, error) {
	p, err := r.providers.GetByID(ctx, providerID)
	if err != nil {
		return "", "", err
	}
	if p == nil {
		return "", "", fmt.Errorf("provider %d not found", providerID)
	}

	u, err := r.users.FindByID(ctx, p.UserID)
	if err != nil {
		return "", "", err
	}
	return u.Email, p.BusinessName, nil
}
