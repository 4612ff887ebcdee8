package ports

import (
	"context"

	"github.com/p3biosecurity/portal/internal/core/domain"
)

// AccountService is the accounts backend: it authenticates, answers identity
// checks and lists accounts for administrators.
type AccountService interface {
	Authenticator
	IdentityChecker
	List(ctx context.Context, role domain.Role) ([]domain.Identity, error)
}
