package client

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/rs/zerolog"

	"github.com/p3biosecurity/portal/internal/core/domain"
	"github.com/p3biosecurity/portal/internal/core/ports"
)

func newTestClient(t *testing.T, h http.HandlerFunc) *Accounts {
	t.Helper()
	srv := httptest.NewServer(h)
	t.Cleanup(srv.Close)
	return NewAccounts(srv.URL+"/", srv.Client(), zerolog.Nop())
}

func TestAccounts_Me_Success(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodGet || r.URL.Path != "/auth/me" {
			t.Fatalf("unexpected request %s %s", r.Method, r.URL.Path)
		}
		if got := r.Header.Get("Authorization"); got != "Bearer tok-1" {
			t.Fatalf("unexpected authorization header %q", got)
		}
		_ = json.NewEncoder(w).Encode(domain.Identity{ID: "7", Email: "v@x.io", Role: domain.RoleVet})
	})

	id, err := c.Me(context.Background(), "tok-1")
	if err != nil {
		t.Fatalf("Me failed: %v", err)
	}
	if id.ID != "7" || id.Role != domain.RoleVet {
		t.Fatalf("unexpected identity: %+v", id)
	}
}

func TestAccounts_Me_Classification(t *testing.T) {
	cases := []struct {
		status int
		body   string
		want   error
	}{
		{http.StatusUnauthorized, `{"error":"invalid token"}`, domain.ErrCredentialRejected},
		{http.StatusForbidden, `{}`, domain.ErrCredentialRejected},
		{http.StatusInternalServerError, `{}`, domain.ErrIdentityUnavailable},
		{http.StatusOK, `not-json`, domain.ErrIdentityUnavailable},
	}

	for _, tc := range cases {
		c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
			w.WriteHeader(tc.status)
			_, _ = w.Write([]byte(tc.body))
		})

		if _, err := c.Me(context.Background(), "tok"); !errors.Is(err, tc.want) {
			t.Fatalf("status %d: expected %v, got %v", tc.status, tc.want, err)
		}
	}
}

func TestAccounts_Me_Unreachable(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(http.ResponseWriter, *http.Request) {}))
	srv.Close()

	c := NewAccounts(srv.URL, nil, zerolog.Nop())
	if _, err := c.Me(context.Background(), "tok"); !errors.Is(err, domain.ErrIdentityUnavailable) {
		t.Fatalf("expected ErrIdentityUnavailable, got %v", err)
	}
}

func TestAccounts_Login(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		var body loginBody
		if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
			t.Fatalf("decode body: %v", err)
		}
		if body.Email == "bad@x.io" {
			w.WriteHeader(http.StatusUnauthorized)
			return
		}
		_ = json.NewEncoder(w).Encode(authResult{
			Token: "jwt",
			User:  &domain.Identity{ID: "1", Email: body.Email, Role: domain.RoleAdmin},
		})
	})

	token, id, err := c.Login(context.Background(), ports.LoginInput{Email: "a@x.io", Password: "p"})
	if err != nil {
		t.Fatalf("login failed: %v", err)
	}
	if token != "jwt" || id.Role != domain.RoleAdmin {
		t.Fatalf("unexpected result %q %+v", token, id)
	}

	if _, _, err := c.Login(context.Background(), ports.LoginInput{Email: "bad@x.io", Password: "p"}); err != domain.ErrInvalidCredentials {
		t.Fatalf("expected ErrInvalidCredentials, got %v", err)
	}
}

func TestAccounts_Register_PassesMessageThrough(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/auth/register" {
			t.Fatalf("unexpected path %s", r.URL.Path)
		}
		w.WriteHeader(http.StatusBadRequest)
		_, _ = w.Write([]byte(`{"error":"Please fill in all farmer fields"}`))
	})

	_, _, err := c.Register(context.Background(), ports.RegisterInput{Role: "farmer"})
	var ve *domain.ValidationError
	if !errors.As(err, &ve) || ve.Message != "Please fill in all farmer fields" {
		t.Fatalf("expected verbatim validation message, got %v", err)
	}
}

func TestAccounts_Register_Conflict(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusConflict)
	})

	if _, _, err := c.Register(context.Background(), ports.RegisterInput{}); err != domain.ErrAccountExists {
		t.Fatalf("expected ErrAccountExists, got %v", err)
	}
}
