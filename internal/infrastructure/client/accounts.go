// Package client talks to a remote accounts service over HTTP.
package client

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/rs/zerolog"

	"github.com/p3biosecurity/portal/internal/core/domain"
	"github.com/p3biosecurity/portal/internal/core/ports"
)

const defaultTimeout = 10 * time.Second

// Accounts is the HTTP client of the accounts service. It serves both the
// login/registration and the identity check collaborators of the portal.
type Accounts struct {
	BaseURL    string
	HTTPClient *http.Client
	log        zerolog.Logger
}

var (
	_ ports.Authenticator   = (*Accounts)(nil)
	_ ports.IdentityChecker = (*Accounts)(nil)
)

// NewAccounts builds a client rooted at baseURL. A nil httpClient gets a
// default with a 10s timeout.
func NewAccounts(baseURL string, httpClient *http.Client, log zerolog.Logger) *Accounts {
	if httpClient == nil {
		httpClient = &http.Client{Timeout: defaultTimeout}
	}
	return &Accounts{
		BaseURL:    strings.TrimRight(baseURL, "/"),
		HTTPClient: httpClient,
		log:        log,
	}
}

type loginBody struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

type registerBody struct {
	Email        string `json:"email"`
	Password     string `json:"password"`
	FullName     string `json:"full_name"`
	MobileNumber string `json:"mobile_number"`
	Role         string `json:"role"`

	MinistryID       string `json:"ministry_id,omitempty"`
	Designation      string `json:"designation,omitempty"`
	JurisdictionArea string `json:"jurisdiction_area,omitempty"`

	LicenseNumber  string `json:"license_number,omitempty"`
	Specialization string `json:"specialization,omitempty"`
	PracticeArea   string `json:"practice_area,omitempty"`

	FarmName      string `json:"farm_name,omitempty"`
	FarmSize      string `json:"farm_size,omitempty"`
	LivestockType string `json:"livestock_type,omitempty"`
	Location      string `json:"location,omitempty"`
}

type authResult struct {
	Token string           `json:"token"`
	User  *domain.Identity `json:"user"`
}

type errorBody struct {
	Error string `json:"error"`
}

func (a *Accounts) Login(ctx context.Context, in ports.LoginInput) (domain.Credential, *domain.Identity, error) {
	return a.authenticate(ctx, "/auth/login", http.StatusOK, loginBody{Email: in.Email, Password: in.Password})
}

func (a *Accounts) Register(ctx context.Context, in ports.RegisterInput) (domain.Credential, *domain.Identity, error) {
	body := registerBody{
		Email:            in.Email,
		Password:         in.Password,
		FullName:         in.FullName,
		MobileNumber:     in.MobileNumber,
		Role:             in.Role,
		MinistryID:       in.MinistryID,
		Designation:      in.Designation,
		JurisdictionArea: in.JurisdictionArea,
		LicenseNumber:    in.LicenseNumber,
		Specialization:   in.Specialization,
		PracticeArea:     in.PracticeArea,
		FarmName:         in.FarmName,
		FarmSize:         in.FarmSize,
		LivestockType:    in.LivestockType,
		Location:         in.Location,
	}
	return a.authenticate(ctx, "/auth/register", http.StatusCreated, body)
}

// Me calls GET /auth/me with the credential as bearer token. 401 and 403
// answers map to domain.ErrCredentialRejected; anything else that is not a
// 200 with a user payload maps to domain.ErrIdentityUnavailable.
func (a *Accounts) Me(ctx context.Context, credential domain.Credential) (*domain.Identity, error) {
	resp, err := a.do(ctx, http.MethodGet, "/auth/me", nil, string(credential))
	if err != nil {
		return nil, fmt.Errorf("%w: %v", domain.ErrIdentityUnavailable, err)
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("%w: read body: %v", domain.ErrIdentityUnavailable, err)
	}

	switch resp.StatusCode {
	case http.StatusOK:
	case http.StatusUnauthorized, http.StatusForbidden:
		return nil, domain.ErrCredentialRejected
	default:
		return nil, fmt.Errorf("%w: status %d", domain.ErrIdentityUnavailable, resp.StatusCode)
	}

	var id domain.Identity
	if err := json.Unmarshal(raw, &id); err != nil {
		return nil, fmt.Errorf("%w: decode identity: %v", domain.ErrIdentityUnavailable, err)
	}
	return &id, nil
}

func (a *Accounts) authenticate(ctx context.Context, path string, expected int, payload any) (domain.Credential, *domain.Identity, error) {
	buf, err := json.Marshal(payload)
	if err != nil {
		return "", nil, fmt.Errorf("encode request: %w", err)
	}

	resp, err := a.do(ctx, http.MethodPost, path, bytes.NewReader(buf), "")
	if err != nil {
		return "", nil, err
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(resp.Body)
	if err != nil {
		return "", nil, fmt.Errorf("read response: %w", err)
	}

	if resp.StatusCode != expected {
		return "", nil, a.statusError(path, resp.StatusCode, raw)
	}

	var out authResult
	if err := json.Unmarshal(raw, &out); err != nil {
		return "", nil, fmt.Errorf("decode response: %w", err)
	}
	if out.Token == "" || out.User == nil {
		return "", nil, errors.New("accounts service returned no credential")
	}
	return domain.Credential(out.Token), out.User, nil
}

// statusError turns a non-success answer into a domain error. A 400 carries
// a message meant for the user and is passed through verbatim.
func (a *Accounts) statusError(path string, status int, raw []byte) error {
	var body errorBody
	_ = json.Unmarshal(raw, &body)

	switch status {
	case http.StatusBadRequest:
		if body.Error != "" {
			return domain.NewValidationError(body.Error)
		}
		return domain.NewValidationError("Invalid request")
	case http.StatusUnauthorized:
		return domain.ErrInvalidCredentials
	case http.StatusNotFound:
		return domain.ErrAccountNotFound
	case http.StatusConflict:
		return domain.ErrAccountExists
	}

	a.log.Warn().Str("path", path).Int("status", status).Str("error", body.Error).Msg("accounts service error")
	return fmt.Errorf("accounts service %s: status %d", path, status)
}

func (a *Accounts) do(ctx context.Context, method, path string, body io.Reader, bearer string) (*http.Response, error) {
	req, err := http.NewRequestWithContext(ctx, method, a.BaseURL+path, body)
	if err != nil {
		return nil, fmt.Errorf("create request: %w", err)
	}
	req.Header.Set("Accept", "application/json")
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if bearer != "" {
		req.Header.Set("Authorization", "Bearer "+bearer)
	}

	resp, err := a.HTTPClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("send request: %w", err)
	}
	return resp, nil
}
