// Package composer decides which top-level screen a browser scope sees,
// driven by the session store and the identity resolver.
package composer

import (
	"context"
	"fmt"
	"strings"
	"sync"

	"github.com/rs/zerolog"

	"github.com/p3biosecurity/portal/internal/core/domain"
	"github.com/p3biosecurity/portal/internal/core/identity"
	"github.com/p3biosecurity/portal/internal/core/navigation"
	"github.com/p3biosecurity/portal/internal/core/session"
)

// State is the lifecycle state of a composer.
type State int

const (
	Loading State = iota
	Unauthenticated
	Authenticated
)

func (s State) String() string {
	switch s {
	case Loading:
		return "loading"
	case Unauthenticated:
		return "unauthenticated"
	case Authenticated:
		return "authenticated"
	default:
		return "unknown"
	}
}

// validTransitions is the complete transition table.
var validTransitions = map[State][]State{
	Loading:         {Unauthenticated, Authenticated},
	Unauthenticated: {Authenticated},
	Authenticated:   {Unauthenticated},
}

// CanTransitionTo reports whether moving from s to next is defined.
func (s State) CanTransitionTo(next State) bool {
	for _, allowed := range validTransitions[s] {
		if allowed == next {
			return true
		}
	}
	return false
}

// Screen names the top-level subtree mounted for a status.
type Screen string

const (
	ScreenLoading         Screen = "loading"
	ScreenLanding         Screen = "landing"
	ScreenAdminDashboard  Screen = "admin_dashboard"
	ScreenVetDashboard    Screen = "vet_dashboard"
	ScreenFarmerDashboard Screen = "farmer_dashboard"
)

// UnknownRolePolicy decides what happens to identities whose role tag is not
// admin, vet or farmer.
type UnknownRolePolicy int

const (
	// UnknownRoleFarmer signs the identity in with the farmer view.
	UnknownRoleFarmer UnknownRolePolicy = iota
	// UnknownRoleReject treats the identity as absent.
	UnknownRoleReject
)

// ParseUnknownRolePolicy maps "farmer" and "reject" onto a policy.
func ParseUnknownRolePolicy(s string) (UnknownRolePolicy, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "", "farmer":
		return UnknownRoleFarmer, nil
	case "reject":
		return UnknownRoleReject, nil
	default:
		return 0, fmt.Errorf("unknown role policy %q", s)
	}
}

// Status is a snapshot of the composer. Role is the effective role and is
// only meaningful when State is Authenticated.
type Status struct {
	State    State
	Role     domain.Role
	Identity *domain.Identity
}

// SessionStore is the subset of *session.Store the composer relies on.
type SessionStore interface {
	Load(ctx context.Context) (session.Session, bool)
	Save(ctx context.Context, credential domain.Credential, identity domain.Identity) error
	Clear(ctx context.Context) error
	Subscribe(l session.Listener) (unsubscribe func())
}

// Observer is told about every state change.
type Observer func(from, to Status)

// Option configures a Composer.
type Option func(*Composer)

// WithUnknownRolePolicy overrides the default UnknownRoleFarmer policy.
func WithUnknownRolePolicy(p UnknownRolePolicy) Option {
	return func(c *Composer) { c.policy = p }
}

// WithObserver registers fn to run after each transition.
func WithObserver(fn Observer) Option {
	return func(c *Composer) { c.observer = fn }
}

// WithLogger sets the composer's logger.
func WithLogger(log zerolog.Logger) Option {
	return func(c *Composer) { c.log = log }
}

// Composer runs the Loading -> Unauthenticated <-> Authenticated machine for
// one browser scope. Transitions after Mount are driven by store events.
type Composer struct {
	store    SessionStore
	resolver identity.Resolver
	policy   UnknownRolePolicy
	observer Observer
	log      zerolog.Logger

	mu          sync.Mutex
	status      Status
	unsubscribe func()
}

// New returns a composer in the Loading state, subscribed to store.
func New(store SessionStore, resolver identity.Resolver, opts ...Option) *Composer {
	c := &Composer{
		store:    store,
		resolver: resolver,
		log:      zerolog.Nop(),
		status:   Status{State: Loading},
	}
	for _, opt := range opts {
		opt(c)
	}
	c.unsubscribe = store.Subscribe(c.onSessionEvent)
	return c
}

// Mount resolves the stored session once. Without a stored session the
// resolver is not consulted. Calling Mount after it has left Loading just
// returns the current status.
func (c *Composer) Mount(ctx context.Context) Status {
	if c.Status().State != Loading {
		return c.Status()
	}

	stored, ok := c.store.Load(ctx)
	if !ok {
		c.transition(Status{State: Unauthenticated})
		return c.Status()
	}

	id, err := c.resolver.Resolve(ctx, stored)
	if err != nil {
		c.log.Info().Err(err).Msg("stored session did not resolve to an identity")
		c.transition(Status{State: Unauthenticated})
		return c.Status()
	}

	c.enter(*id)
	return c.Status()
}

// SignIn records a credential produced by the login or registration
// collaborator. It is only valid while Unauthenticated.
func (c *Composer) SignIn(ctx context.Context, credential domain.Credential, id domain.Identity) error {
	if st := c.Status().State; st != Unauthenticated {
		return fmt.Errorf("sign in from %s: %w", st, domain.ErrInvalidTransition)
	}
	if !id.Role.Known() && c.policy == UnknownRoleReject {
		return domain.NewValidationError("This account has no portal role.")
	}
	if err := c.store.Save(ctx, credential, id); err != nil {
		return fmt.Errorf("sign in: %w", err)
	}
	return nil
}

// Logout clears the session. It is only valid while Authenticated.
func (c *Composer) Logout(ctx context.Context) error {
	if st := c.Status().State; st != Authenticated {
		return fmt.Errorf("logout from %s: %w", st, domain.ErrInvalidTransition)
	}
	if err := c.store.Clear(ctx); err != nil {
		return fmt.Errorf("logout: %w", err)
	}
	return nil
}

// Status returns a snapshot of the current status.
func (c *Composer) Status() Status {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.status
}

// Screen selects the top-level subtree for the current status.
func (c *Composer) Screen() Screen {
	st := c.Status()
	switch st.State {
	case Loading:
		return ScreenLoading
	case Unauthenticated:
		return ScreenLanding
	}
	switch st.Role {
	case domain.RoleAdmin:
		return ScreenAdminDashboard
	case domain.RoleVet:
		return ScreenVetDashboard
	default:
		return ScreenFarmerDashboard
	}
}

// Navigation returns the sidebar for the signed-in role, or nil.
func (c *Composer) Navigation() []navigation.Entry {
	st := c.Status()
	if st.State != Authenticated {
		return nil
	}
	return navigation.ForRole(st.Role)
}

// Close detaches the composer from its store.
func (c *Composer) Close() {
	if c.unsubscribe != nil {
		c.unsubscribe()
	}
}

func (c *Composer) onSessionEvent(ev session.Event) {
	switch ev.Kind {
	case session.EventSaved:
		if ev.Identity != nil {
			c.enter(*ev.Identity)
		}
	case session.EventCleared:
		c.transition(Status{State: Unauthenticated})
	}
}

func (c *Composer) enter(id domain.Identity) {
	if !id.Role.Known() {
		if c.policy == UnknownRoleReject {
			c.log.Warn().Str("role", string(id.Role)).Msg("unrecognised role rejected")
			c.transition(Status{State: Unauthenticated})
			return
		}
		c.log.Warn().Str("role", string(id.Role)).Msg("unrecognised role, using farmer view")
	}
	c.transition(Status{State: Authenticated, Role: id.Role.Effective(), Identity: &id})
}

func (c *Composer) transition(next Status) {
	c.mu.Lock()
	prev := c.status
	if prev.State == next.State && next.State != Authenticated {
		c.mu.Unlock()
		return
	}
	if !prev.State.CanTransitionTo(next.State) {
		c.mu.Unlock()
		c.log.Warn().Str("from", prev.State.String()).Str("to", next.State.String()).Msg("ignored invalid view transition")
		return
	}
	c.status = next
	c.mu.Unlock()

	c.log.Debug().Str("from", prev.State.String()).Str("to", next.State.String()).Str("role", string(next.Role)).Msg("view transition")
	if c.observer != nil {
		c.observer(prev, next)
	}
}
