// Package identity turns a stored session into the identity the shell acts on.
package identity

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/rs/zerolog"

	"github.com/p3biosecurity/portal/internal/core/domain"
	"github.com/p3biosecurity/portal/internal/core/ports"
	"github.com/p3biosecurity/portal/internal/core/session"
)

const defaultCheckTimeout = 10 * time.Second

// Resolver turns a loaded session into an identity. Callers treat every
// error as "no identity".
type Resolver interface {
	Resolve(ctx context.Context, s session.Session) (*domain.Identity, error)
}

// StoredResolver trusts the identity persisted next to the credential. It
// performs no I/O and backs the offline mode.
type StoredResolver struct{}

func (StoredResolver) Resolve(_ context.Context, s session.Session) (*domain.Identity, error) {
	if s.Credential == "" {
		return nil, domain.ErrCredentialRejected
	}
	id := s.Identity
	return &id, nil
}

// RemoteResolver asks an identity checker who the credential belongs to.
type RemoteResolver struct {
	checker ports.IdentityChecker
	timeout time.Duration
	log     zerolog.Logger
}

// NewRemoteResolver wraps checker. A non-positive timeout uses the default.
func NewRemoteResolver(checker ports.IdentityChecker, timeout time.Duration, log zerolog.Logger) *RemoteResolver {
	if timeout <= 0 {
		timeout = defaultCheckTimeout
	}
	return &RemoteResolver{checker: checker, timeout: timeout, log: log}
}

// Resolve performs the identity check. Errors are normalised to
// domain.ErrCredentialRejected or domain.ErrIdentityUnavailable; storage is
// never touched.
func (r *RemoteResolver) Resolve(ctx context.Context, s session.Session) (*domain.Identity, error) {
	if s.Credential == "" {
		return nil, domain.ErrCredentialRejected
	}

	ctx, cancel := context.WithTimeout(ctx, r.timeout)
	defer cancel()

	id, err := r.checker.Me(ctx, s.Credential)
	if err != nil {
		err = Classify(err)
		r.log.Info().Err(err).Msg("identity check failed")
		return nil, err
	}
	if id == nil {
		return nil, fmt.Errorf("identity check: empty payload: %w", domain.ErrIdentityUnavailable)
	}
	return id, nil
}

// Classify folds an identity-check failure into one of the two outcomes the
// shell distinguishes in logs and metrics.
func Classify(err error) error {
	switch {
	case err == nil:
		return nil
	case errors.Is(err, domain.ErrCredentialRejected), errors.Is(err, domain.ErrIdentityUnavailable):
		return err
	case errors.Is(err, domain.ErrInvalidCredentials), errors.Is(err, domain.ErrAccountNotFound):
		return fmt.Errorf("%w: %v", domain.ErrCredentialRejected, err)
	default:
		return fmt.Errorf("%w: %v", domain.ErrIdentityUnavailable, err)
	}
}
