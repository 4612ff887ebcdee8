package handler

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/rs/zerolog"

	"github.com/p3biosecurity/portal/internal/api/metrics"
	"github.com/p3biosecurity/portal/internal/core/composer"
	"github.com/p3biosecurity/portal/internal/core/domain"
	"github.com/p3biosecurity/portal/internal/core/identity"
	"github.com/p3biosecurity/portal/internal/core/navigation"
	"github.com/p3biosecurity/portal/internal/core/ports"
	"github.com/p3biosecurity/portal/internal/core/session"
)

// ViewPath is where foreign-role screen requests are redirected.
const ViewPath = "/portal/view"

// PortalConfig wires the portal shell.
type PortalConfig struct {
	Sessions      ports.KeyValue
	Resolver      identity.Resolver
	Authenticator ports.Authenticator
	Policy        composer.UnknownRolePolicy
	SessionPrefix string
	SessionTTL    time.Duration
	Log           zerolog.Logger
}

// PortalHandler hosts the portal shell. Every request mounts a composer for
// the caller's browser scope.
type PortalHandler struct {
	kv       ports.KeyValue
	resolver identity.Resolver
	auth     ports.Authenticator
	policy   composer.UnknownRolePolicy
	prefix   string
	ttl      time.Duration
	log      zerolog.Logger
}

func NewPortalHandler(cfg PortalConfig) *PortalHandler {
	return &PortalHandler{
		kv:       cfg.Sessions,
		resolver: meteredResolver{next: cfg.Resolver},
		auth:     cfg.Authenticator,
		policy:   cfg.Policy,
		prefix:   cfg.SessionPrefix,
		ttl:      cfg.SessionTTL,
		log:      cfg.Log,
	}
}

// View returns the screen and navigation for the caller.
//
// @Summary      Current portal view
// @Tags         portal
// @Produce      json
// @Success      200  {object}  viewResponse
// @Router       /portal/view [get]
func (h *PortalHandler) View(c echo.Context) error {
	comp, err := h.mount(c)
	if err != nil {
		return err
	}
	defer comp.Close()

	return c.JSON(http.StatusOK, render(comp))
}

// Screen resolves a sidebar path for the signed-in role. Paths owned by
// another role redirect to the view.
//
// @Summary      Open a screen
// @Tags         portal
// @Produce      json
// @Param        path  query     string  true  "Screen path"
// @Success      200   {object}  screenResponse
// @Success      303   {string}  string  "foreign-role path, redirected to /portal/view"
// @Failure      400   {object}  map[string]string
// @Failure      401   {object}  map[string]string
// @Failure      404   {object}  map[string]string
// @Router       /portal/screen [get]
func (h *PortalHandler) Screen(c echo.Context) error {
	var req screenRequest
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, map[string]string{"error": "invalid query"})
	}
	if err := c.Validate(req); err != nil {
		return err
	}

	comp, err := h.mount(c)
	if err != nil {
		return err
	}
	defer comp.Close()

	st := comp.Status()
	if st.State != composer.Authenticated {
		return echo.NewHTTPError(http.StatusUnauthorized, "sign in required")
	}
	if !navigation.Allowed(st.Role, req.Path) {
		return c.Redirect(http.StatusSeeOther, ViewPath)
	}

	entry, ok := navigation.Find(st.Role, req.Path)
	if !ok {
		return echo.NewHTTPError(http.StatusNotFound, "screen not found")
	}
	return c.JSON(http.StatusOK, screenResponse{Role: st.Role, Entry: entry})
}

// Login signs the caller in through the configured authenticator.
//
// @Summary      Sign in
// @Tags         portal
// @Accept       json
// @Produce      json
// @Param        body  body      loginRequest  true  "Login credentials"
// @Success      200   {object}  viewResponse
// @Failure      400   {object}  map[string]string
// @Failure      401   {object}  map[string]string
// @Failure      409   {object}  map[string]string
// @Router       /portal/login [post]
func (h *PortalHandler) Login(c echo.Context) error {
	var req loginRequest
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, map[string]string{"error": "invalid payload"})
	}

	return h.signIn(c, "login", func(ctx context.Context) (domain.Credential, *domain.Identity, error) {
		return h.auth.Login(ctx, req.toInput())
	})
}

// Register creates an account and signs the caller in.
//
// @Summary      Register and sign in
// @Tags         portal
// @Accept       json
// @Produce      json
// @Param        body  body      registerRequest  true  "Registration form"
// @Success      200   {object}  viewResponse
// @Failure      400   {object}  map[string]string
// @Failure      409   {object}  map[string]string
// @Router       /portal/register [post]
func (h *PortalHandler) Register(c echo.Context) error {
	var req registerRequest
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, map[string]string{"error": "invalid payload"})
	}

	return h.signIn(c, "register", func(ctx context.Context) (domain.Credential, *domain.Identity, error) {
		return h.auth.Register(ctx, req.toInput())
	})
}

// Logout clears the caller's session.
//
// @Summary      Sign out
// @Tags         portal
// @Produce      json
// @Success      200  {object}  viewResponse
// @Failure      409  {object}  map[string]string
// @Router       /portal/logout [post]
func (h *PortalHandler) Logout(c echo.Context) error {
	comp, err := h.mount(c)
	if err != nil {
		return err
	}
	defer comp.Close()

	if err := comp.Logout(c.Request().Context()); err != nil {
		return err
	}
	return c.JSON(http.StatusOK, render(comp))
}

type authenticate func(ctx context.Context) (domain.Credential, *domain.Identity, error)

// signIn runs the collaborator only while signed out. On failure the session
// is left untouched and the error reaches the user.
func (h *PortalHandler) signIn(c echo.Context, action string, run authenticate) error {
	comp, err := h.mount(c)
	if err != nil {
		return err
	}
	defer comp.Close()

	if st := comp.Status().State; st != composer.Unauthenticated {
		return fmt.Errorf("%s from %s: %w", action, st, domain.ErrInvalidTransition)
	}

	ctx := c.Request().Context()
	cred, id, err := run(ctx)
	metrics.AuthAttemptsTotal.WithLabelValues("portal", action, metrics.AuthResult(err)).Inc()
	if err != nil {
		return err
	}
	if id == nil {
		return fmt.Errorf("%s: authenticator returned no identity", action)
	}

	if err := comp.SignIn(ctx, cred, *id); err != nil {
		return err
	}
	return c.JSON(http.StatusOK, render(comp))
}

func (h *PortalHandler) mount(c echo.Context) (*composer.Composer, error) {
	scope, err := ctxScope(c)
	if err != nil {
		return nil, err
	}

	log := h.log.With().Str("scope", scope).Logger()
	store := session.NewStore(h.kv, scope, session.Options{Prefix: h.prefix, TTL: h.ttl, Log: log})
	comp := composer.New(store, h.resolver,
		composer.WithUnknownRolePolicy(h.policy),
		composer.WithObserver(observeTransition),
		composer.WithLogger(log),
	)
	comp.Mount(c.Request().Context())
	return comp, nil
}

func render(comp *composer.Composer) viewResponse {
	st := comp.Status()
	resp := viewResponse{State: st.State.String(), Screen: string(comp.Screen())}
	if st.State != composer.Authenticated {
		return resp
	}

	settings := navigation.Settings()
	resp.User = st.Identity
	resp.Role = st.Role
	resp.RoleLabel = st.Role.DisplayName()
	if st.Identity != nil {
		resp.RoleLabel = st.Identity.Role.DisplayName()
	}
	resp.Navigation = comp.Navigation()
	resp.Settings = &settings
	return resp
}

func observeTransition(from, to composer.Status) {
	metrics.ViewTransitionsTotal.WithLabelValues(from.State.String(), to.State.String(), string(to.Role)).Inc()
}

// meteredResolver records the outcome and latency of every resolution.
type meteredResolver struct {
	next identity.Resolver
}

func (m meteredResolver) Resolve(ctx context.Context, s session.Session) (*domain.Identity, error) {
	start := time.Now()
	id, err := m.next.Resolve(ctx, s)
	metrics.IdentityResolutionDuration.Observe(time.Since(start).Seconds())
	metrics.IdentityResolutionsTotal.WithLabelValues(metrics.ResolutionResult(err)).Inc()
	return id, err
}
