package service

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/rs/zerolog"

	"github.com/p3biosecurity/portal/internal/core/domain"
	"github.com/p3biosecurity/portal/internal/core/ports"
	"github.com/p3biosecurity/portal/pkg/idx"
)

// DemoAuthenticator signs anyone in without a backend. Logins always yield
// the farmer demo identity; registrations echo the submitted form.
type DemoAuthenticator struct {
	log zerolog.Logger
	now func() time.Time
}

var _ ports.Authenticator = (*DemoAuthenticator)(nil)

func NewDemoAuthenticator(log zerolog.Logger) *DemoAuthenticator {
	return &DemoAuthenticator{log: log, now: time.Now}
}

func (d *DemoAuthenticator) Login(_ context.Context, in ports.LoginInput) (domain.Credential, *domain.Identity, error) {
	if err := checkLogin(in); err != nil {
		return "", nil, err
	}

	id := &domain.Identity{
		ID:           "1",
		Email:        strings.TrimSpace(in.Email),
		FullName:     "Demo User",
		MobileNumber: "1234567890",
		Role:         domain.RoleFarmer,
	}
	d.log.Debug().Str("email", id.Email).Msg("demo login")
	return d.credential(), id, nil
}

func (d *DemoAuthenticator) Register(_ context.Context, in ports.RegisterInput) (domain.Credential, *domain.Identity, error) {
	role, err := checkRegistration(in)
	if err != nil {
		return "", nil, err
	}

	admin, vet, farmer := profiles(in)
	id := domain.Identity{
		ID:           idx.NewAt(d.now().UTC()),
		Email:        strings.TrimSpace(in.Email),
		FullName:     strings.TrimSpace(in.FullName),
		MobileNumber: strings.TrimSpace(in.MobileNumber),
		Role:         role,
	}.WithProfile(admin, vet, farmer)

	d.log.Debug().Str("email", id.Email).Str("role", string(role)).Msg("demo registration")
	return d.credential(), &id, nil
}

func (d *DemoAuthenticator) credential() domain.Credential {
	return domain.Credential(fmt.Sprintf("mock-token-%d", d.now().UnixMilli()))
}
