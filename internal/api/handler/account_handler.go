package handler

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/p3biosecurity/portal/internal/api/metrics"
	"github.com/p3biosecurity/portal/internal/core/domain"
	"github.com/p3biosecurity/portal/internal/core/ports"
)

// AccountHandler serves the accounts backend used by the portal for
// sign-in, registration and identity checks.
type AccountHandler struct {
	accounts ports.AccountService
}

func NewAccountHandler(accounts ports.AccountService) *AccountHandler {
	return &AccountHandler{accounts: accounts}
}

// Register creates a new account.
//
// @Summary      Register a new account
// @Tags         auth
// @Accept       json
// @Produce      json
// @Param        body  body      registerRequest  true  "Registration form"
// @Success      201   {object}  authResponse
// @Failure      400   {object}  map[string]string
// @Failure      409   {object}  map[string]string
// @Failure      500   {object}  map[string]string
// @Router       /auth/register [post]
func (h *AccountHandler) Register(c echo.Context) error {
	var req registerRequest
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, map[string]string{"error": "invalid payload"})
	}

	token, id, err := h.accounts.Register(c.Request().Context(), req.toInput())
	metrics.AuthAttemptsTotal.WithLabelValues("api", "register", metrics.AuthResult(err)).Inc()
	if err != nil {
		return err
	}

	return c.JSON(http.StatusCreated, authResponse{Token: string(token), User: id})
}

// Login authenticates an account and returns a JWT.
//
// @Summary      Login
// @Tags         auth
// @Accept       json
// @Produce      json
// @Param        body  body      loginRequest  true  "Login credentials"
// @Success      200   {object}  authResponse
// @Failure      400   {object}  map[string]string
// @Failure      401   {object}  map[string]string
// @Failure      404   {object}  map[string]string
// @Router       /auth/login [post]
func (h *AccountHandler) Login(c echo.Context) error {
	var req loginRequest
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, map[string]string{"error": "invalid payload"})
	}

	token, id, err := h.accounts.Login(c.Request().Context(), req.toInput())
	metrics.AuthAttemptsTotal.WithLabelValues("api", "login", metrics.AuthResult(err)).Inc()
	if err != nil {
		return err
	}

	return c.JSON(http.StatusOK, authResponse{Token: string(token), User: id})
}

// Me returns the identity behind the bearer token.
//
// @Summary      Current identity
// @Tags         auth
// @Produce      json
// @Security     BearerAuth
// @Success      200  {object}  domain.Identity
// @Failure      401  {object}  map[string]string
// @Router       /auth/me [get]
func (h *AccountHandler) Me(c echo.Context) error {
	cred, err := ctxCredential(c)
	if err != nil {
		return err
	}

	id, err := h.accounts.Me(c.Request().Context(), cred)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, id)
}

// List returns the account directory, optionally filtered by role.
//
// @Summary      List accounts
// @Tags         auth
// @Produce      json
// @Security     BearerAuth
// @Param        role  query     string  false  "Role filter"  Enums(admin, vet, farmer)
// @Success      200   {object}  listAccountsResponse
// @Failure      400   {object}  map[string]string
// @Failure      401   {object}  map[string]string
// @Failure      403   {object}  map[string]string
// @Router       /auth/accounts [get]
func (h *AccountHandler) List(c echo.Context) error {
	var req listAccountsRequest
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, map[string]string{"error": "invalid query"})
	}
	if err := c.Validate(req); err != nil {
		return err
	}

	ids, err := h.accounts.List(c.Request().Context(), domain.Role(req.Role))
	if err != nil {
		return err
	}
	if ids == nil {
		ids = []domain.Identity{}
	}
	return c.JSON(http.StatusOK, listAccountsResponse{Accounts: ids})
}
