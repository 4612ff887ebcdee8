package service

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/rs/zerolog"
	"golang.org/x/crypto/bcrypt"

	"github.com/p3biosecurity/portal/internal/core/domain"
	"github.com/p3biosecurity/portal/internal/core/ports"
)

// AccountService implements registration, login and identity checks on top
// of an account repository. Credentials are HS256 JWTs.
type AccountService struct {
	repo      ports.AccountRepository
	jwtSecret string
	tokenTTL  time.Duration
	log       zerolog.Logger
	now       func() time.Time
}

var _ ports.AccountService = (*AccountService)(nil)

func NewAccountService(repo ports.AccountRepository, jwtSecret string, tokenTTL time.Duration, log zerolog.Logger) *AccountService {
	if tokenTTL <= 0 {
		tokenTTL = 24 * time.Hour
	}
	return &AccountService{repo: repo, jwtSecret: jwtSecret, tokenTTL: tokenTTL, log: log, now: time.Now}
}

func (s *AccountService) Register(ctx context.Context, in ports.RegisterInput) (domain.Credential, *domain.Identity, error) {
	role, err := checkRegistration(in)
	if err != nil {
		return "", nil, err
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(in.Password), bcrypt.DefaultCost)
	if err != nil {
		return "", nil, fmt.Errorf("hash password: %w", err)
	}

	admin, vet, farmer := profiles(in)
	now := s.now().UTC()
	account := &domain.Account{
		Email:        normalizeEmail(in.Email),
		PasswordHash: string(hash),
		FullName:     strings.TrimSpace(in.FullName),
		MobileNumber: strings.TrimSpace(in.MobileNumber),
		Role:         role,
		CreatedAt:    now,
		UpdatedAt:    now,
	}
	switch role {
	case domain.RoleAdmin:
		account.Admin = admin
	case domain.RoleVet:
		account.Vet = vet
	case domain.RoleFarmer:
		account.Farmer = farmer
	}

	created, err := s.repo.Create(ctx, account)
	if err != nil {
		return "", nil, err
	}

	token, err := s.issue(created)
	if err != nil {
		return "", nil, err
	}

	s.log.Info().Str("account_id", created.ID).Str("role", string(role)).Msg("account registered")
	id := created.Identity()
	return token, &id, nil
}

func (s *AccountService) Login(ctx context.Context, in ports.LoginInput) (domain.Credential, *domain.Identity, error) {
	if err := checkLogin(in); err != nil {
		return "", nil, err
	}

	account, err := s.repo.FindByEmail(ctx, normalizeEmail(in.Email))
	if errors.Is(err, domain.ErrAccountNotFound) {
		// Unknown emails fail like a wrong password so accounts cannot be enumerated.
		return "", nil, domain.ErrInvalidCredentials
	}
	if err != nil {
		return "", nil, err
	}

	if bcrypt.CompareHashAndPassword([]byte(account.PasswordHash), []byte(in.Password)) != nil {
		return "", nil, domain.ErrInvalidCredentials
	}

	token, err := s.issue(account)
	if err != nil {
		return "", nil, err
	}

	id := account.Identity()
	return token, &id, nil
}

// Me returns the identity a credential was issued for. Malformed, expired or
// orphaned credentials yield domain.ErrCredentialRejected.
func (s *AccountService) Me(ctx context.Context, credential domain.Credential) (*domain.Identity, error) {
	claims := jwt.MapClaims{}
	tkn, err := jwt.ParseWithClaims(string(credential), claims, func(token *jwt.Token) (interface{}, error) {
		if token.Method.Alg() != jwt.SigningMethodHS256.Alg() {
			return nil, jwt.ErrTokenSignatureInvalid
		}
		return []byte(s.jwtSecret), nil
	}, jwt.WithTimeFunc(s.now))
	if err != nil || !tkn.Valid {
		return nil, domain.ErrCredentialRejected
	}

	sub, err := claims.GetSubject()
	if err != nil || sub == "" {
		return nil, domain.ErrCredentialRejected
	}

	account, err := s.repo.FindByID(ctx, sub)
	if err != nil {
		if errors.Is(err, domain.ErrAccountNotFound) {
			return nil, domain.ErrCredentialRejected
		}
		return nil, fmt.Errorf("identity check: %w", err)
	}

	id := account.Identity()
	return &id, nil
}

// List returns the identities of registered accounts, optionally filtered by role.
func (s *AccountService) List(ctx context.Context, role domain.Role) ([]domain.Identity, error) {
	accounts, err := s.repo.List(ctx, role)
	if err != nil {
		return nil, fmt.Errorf("list accounts: %w", err)
	}
	out := make([]domain.Identity, 0, len(accounts))
	for _, a := range accounts {
		out = append(out, a.Identity())
	}
	return out, nil
}

func (s *AccountService) issue(account *domain.Account) (domain.Credential, error) {
	now := s.now()
	claims := jwt.MapClaims{
		"sub":   account.ID,
		"email": account.Email,
		"role":  string(account.Role),
		"iat":   now.Unix(),
		"exp":   now.Add(s.tokenTTL).Unix(),
	}

	signed, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString([]byte(s.jwtSecret))
	if err != nil {
		return "", fmt.Errorf("sign token: %w", err)
	}
	return domain.Credential(signed), nil
}
