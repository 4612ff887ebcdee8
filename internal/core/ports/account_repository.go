package ports

import (
	"context"

	"github.com/p3biosecurity/portal/internal/core/domain"
)

// AccountRepository defines the persistence operations of the accounts backend.
type AccountRepository interface {
	// Create stores a new account and returns it with its ID populated.
	// Returns domain.ErrAccountExists when the email is taken.
	Create(ctx context.Context, account *domain.Account) (*domain.Account, error)
	FindByEmail(ctx context.Context, email string) (*domain.Account, error)
	FindByID(ctx context.Context, id string) (*domain.Account, error)
	// List returns accounts ordered by creation time. An empty role lists all.
	List(ctx context.Context, role domain.Role) ([]*domain.Account, error)
}
