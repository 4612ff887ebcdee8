package metrics

import (
	"errors"
	"fmt"
	"testing"

	"github.com/p3biosecurity/portal/internal/core/domain"
)

func TestResolutionResult(t *testing.T) {
	cases := map[string]error{
		"ok":          nil,
		"rejected":    fmt.Errorf("%w: bad token", domain.ErrCredentialRejected),
		"unavailable": errors.New("dial tcp: refused"),
	}
	for want, err := range cases {
		if got := ResolutionResult(err); got != want {
			t.Fatalf("ResolutionResult(%v) = %q, want %q", err, got, want)
		}
	}
}

func TestAuthResult(t *testing.T) {
	cases := []struct {
		err  error
		want string
	}{
		{nil, "ok"},
		{domain.NewValidationError("Please enter email and password"), "invalid"},
		{domain.ErrInvalidCredentials, "rejected"},
		{domain.ErrAccountNotFound, "rejected"},
		{domain.ErrAccountExists, "conflict"},
		{errors.New("boom"), "error"},
	}
	for _, tc := range cases {
		if got := AuthResult(tc.err); got != tc.want {
			t.Fatalf("AuthResult(%v) = %q, want %q", tc.err, got, tc.want)
		}
	}
}
