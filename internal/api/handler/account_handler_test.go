package handler

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/labstack/echo/v4"

	"github.com/p3biosecurity/portal/internal/api/middleware"
	"github.com/p3biosecurity/portal/internal/core/domain"
	"github.com/p3biosecurity/portal/internal/core/ports"
)

type stubAccountService struct {
	stubAuthenticator
	meFn   func(ctx context.Context, cred domain.Credential) (*domain.Identity, error)
	listFn func(ctx context.Context, role domain.Role) ([]domain.Identity, error)
}

func (s *stubAccountService) Me(ctx context.Context, cred domain.Credential) (*domain.Identity, error) {
	return s.meFn(ctx, cred)
}

func (s *stubAccountService) List(ctx context.Context, role domain.Role) ([]domain.Identity, error) {
	return s.listFn(ctx, role)
}

func newAccountContext(method, target, body string) (echo.Context, *httptest.ResponseRecorder) {
	e := echo.New()
	e.Validator = NewValidator()
	req := httptest.NewRequest(method, target, strings.NewReader(body))
	req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
	rec := httptest.NewRecorder()
	return e.NewContext(req, rec), rec
}

func TestAccountHandler_Register_Success(t *testing.T) {
	stub := &stubAccountService{}
	stub.registerFn = func(ctx context.Context, in ports.RegisterInput) (domain.Credential, *domain.Identity, error) {
		if in.Role != "vet" || in.LicenseNumber != "L-1" || in.FullName != "Dr Vet" {
			t.Fatalf("unexpected input: %+v", in)
		}
		return "jwt", &domain.Identity{ID: "a1", Role: domain.RoleVet, VetProfile: &domain.VetProfile{LicenseNumber: in.LicenseNumber}}, nil
	}
	handler := NewAccountHandler(stub)

	c, rec := newAccountContext(http.MethodPost, "/auth/register",
		`{"email":"v@x.io","password":"p","full_name":"Dr Vet","mobile_number":"1","role":"vet","license_number":"L-1"}`)
	if err := handler.Register(c); err != nil {
		t.Fatalf("handler error: %v", err)
	}

	if rec.Code != http.StatusCreated {
		t.Fatalf("expected 201, got %d", rec.Code)
	}
	var resp map[string]any
	if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
		t.Fatalf("invalid json: %v", err)
	}
	user, ok := resp["user"].(map[string]any)
	if resp["token"] != "jwt" || !ok || user["role"] != "vet" || user["license_number"] != "L-1" {
		t.Fatalf("unexpected payload: %+v", resp)
	}
}

func TestAccountHandler_Register_Errors(t *testing.T) {
	stub := &stubAccountService{}
	stub.registerFn = func(ctx context.Context, in ports.RegisterInput) (domain.Credential, *domain.Identity, error) {
		return "", nil, domain.ErrAccountExists
	}
	handler := NewAccountHandler(stub)

	c, _ := newAccountContext(http.MethodPost, "/auth/register", `{"email":"v@x.io"}`)
	if err := handler.Register(c); !errors.Is(err, domain.ErrAccountExists) {
		t.Fatalf("expected ErrAccountExists, got %v", err)
	}

	c, rec := newAccountContext(http.MethodPost, "/auth/register", "not-json")
	_ = handler.Register(c)
	if rec.Code != http.StatusBadRequest {
		t.Fatalf("expected 400, got %d", rec.Code)
	}
}

func TestAccountHandler_Login(t *testing.T) {
	stub := &stubAccountService{}
	stub.loginFn = func(ctx context.Context, in ports.LoginInput) (domain.Credential, *domain.Identity, error) {
		if in.Password != "secret" {
			return "", nil, domain.ErrInvalidCredentials
		}
		return "token123", &domain.Identity{ID: "a1", Email: in.Email, Role: domain.RoleAdmin}, nil
	}
	handler := NewAccountHandler(stub)

	c, rec := newAccountContext(http.MethodPost, "/auth/login", `{"email":"a@x.io","password":"secret"}`)
	if err := handler.Login(c); err != nil {
		t.Fatalf("handler error: %v", err)
	}
	var resp authResponse
	if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
		t.Fatalf("invalid json: %v", err)
	}
	if rec.Code != http.StatusOK || resp.Token != "token123" || resp.User.Role != domain.RoleAdmin {
		t.Fatalf("unexpected response %d %+v", rec.Code, resp)
	}

	c, _ = newAccountContext(http.MethodPost, "/auth/login", `{"email":"a@x.io","password":"bad"}`)
	if err := handler.Login(c); !errors.Is(err, domain.ErrInvalidCredentials) {
		t.Fatalf("expected ErrInvalidCredentials, got %v", err)
	}
}

func TestAccountHandler_Me(t *testing.T) {
	stub := &stubAccountService{
		meFn: func(ctx context.Context, cred domain.Credential) (*domain.Identity, error) {
			if cred != "jwt" {
				return nil, domain.ErrCredentialRejected
			}
			return &domain.Identity{ID: "a1", Role: domain.RoleFarmer}, nil
		},
	}
	handler := NewAccountHandler(stub)

	c, rec := newAccountContext(http.MethodGet, "/auth/me", "")
	c.Set(middleware.KeyCredential, domain.Credential("jwt"))
	if err := handler.Me(c); err != nil {
		t.Fatalf("handler error: %v", err)
	}
	if rec.Code != http.StatusOK || !strings.Contains(rec.Body.String(), `"role":"farmer"`) {
		t.Fatalf("unexpected response %d %s", rec.Code, rec.Body.String())
	}

	c, _ = newAccountContext(http.MethodGet, "/auth/me", "")
	if err := handler.Me(c); !isHTTPStatus(err, http.StatusUnauthorized) {
		t.Fatalf("expected 401 without credential, got %v", err)
	}
}

func TestAccountHandler_List(t *testing.T) {
	var gotRole domain.Role
	stub := &stubAccountService{
		listFn: func(ctx context.Context, role domain.Role) ([]domain.Identity, error) {
			gotRole = role
			return nil, nil
		},
	}
	handler := NewAccountHandler(stub)

	c, rec := newAccountContext(http.MethodGet, "/auth/accounts?role=vet", "")
	if err := handler.List(c); err != nil {
		t.Fatalf("handler error: %v", err)
	}
	if gotRole != domain.RoleVet {
		t.Fatalf("expected vet filter, got %q", gotRole)
	}
	if strings.TrimSpace(rec.Body.String()) != `{"accounts":[]}` {
		t.Fatalf("unexpected body %s", rec.Body.String())
	}

	c, _ = newAccountContext(http.MethodGet, "/auth/accounts?role=minister", "")
	if err := handler.List(c); !isHTTPStatus(err, http.StatusBadRequest) {
		t.Fatalf("expected 400 for unknown role filter, got %v", err)
	}
}
