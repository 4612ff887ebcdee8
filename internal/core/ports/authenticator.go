package ports

import (
	"context"

	"github.com/p3biosecurity/portal/internal/core/domain"
)

// LoginInput carries the sign-in form.
type LoginInput struct {
	Email    string
	Password string
}

// RegisterInput carries the role-tagged registration form. Only the fields
// belonging to Role are required.
type RegisterInput struct {
	Email        string
	Password     string
	FullName     string
	MobileNumber string
	Role         string

	MinistryID       string
	Designation      string
	JurisdictionArea string

	LicenseNumber  string
	Specialization string
	PracticeArea   string

	FarmName      string
	FarmSize      string
	LivestockType string
	Location      string
}

// Authenticator is the login/registration collaborator. On success it
// yields a fresh credential and the identity behind it. Failures that
// should reach the user are *domain.ValidationError or
// domain.ErrInvalidCredentials.
type Authenticator interface {
	Login(ctx context.Context, in LoginInput) (domain.Credential, *domain.Identity, error)
	Register(ctx context.Context, in RegisterInput) (domain.Credential, *domain.Identity, error)
}

// IdentityChecker is the "/me" collaborator: it turns a credential into the
// identity it was issued for.
type IdentityChecker interface {
	Me(ctx context.Context, credential domain.Credential) (*domain.Identity, error)
}
