package composer

import (
	"context"
	"errors"
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/p3biosecurity/portal/internal/core/domain"
	"github.com/p3biosecurity/portal/internal/core/identity"
	"github.com/p3biosecurity/portal/internal/core/navigation"
	"github.com/p3biosecurity/portal/internal/core/session"
)

type countingResolver struct {
	calls int
	next  identity.Resolver
	err   error
}

func (r *countingResolver) Resolve(ctx context.Context, s session.Session) (*domain.Identity, error) {
	r.calls++
	if r.err != nil {
		return nil, r.err
	}
	return r.next.Resolve(ctx, s)
}

func newStore(kv *session.MemoryKV) *session.Store {
	return session.NewStore(kv, "browser-1", session.Options{Log: zerolog.Nop()})
}

func labelsOf(entries []navigation.Entry) []string {
	out := make([]string, 0, len(entries))
	for _, e := range entries {
		out = append(out, e.Label)
	}
	return out
}

func TestComposer_StartsLoading(t *testing.T) {
	c := New(newStore(session.NewMemoryKV()), identity.StoredResolver{})
	defer c.Close()

	assert.Equal(t, Loading, c.Status().State)
	assert.Equal(t, ScreenLoading, c.Screen())
	assert.Nil(t, c.Navigation())
}

func TestComposer_StoredVetSessionReachesAuthenticated(t *testing.T) {
	kv := session.NewMemoryKV()
	store := newStore(kv)
	ctx := context.Background()
	require.NoError(t, store.Save(ctx, "tok1", domain.Identity{ID: "7", Email: "vet@example.com", Role: domain.RoleVet}))

	c := New(newStore(kv), identity.StoredResolver{})
	defer c.Close()

	st := c.Mount(ctx)
	assert.Equal(t, Authenticated, st.State)
	assert.Equal(t, domain.RoleVet, st.Role)
	assert.Equal(t, ScreenVetDashboard, c.Screen())

	got := labelsOf(c.Navigation())
	assert.Contains(t, got, "Risk Assessment")
	assert.NotContains(t, got, "Emergency Response")
}

func TestComposer_NoSessionSkipsIdentityCheck(t *testing.T) {
	resolver := &countingResolver{next: identity.StoredResolver{}}
	c := New(newStore(session.NewMemoryKV()), resolver)
	defer c.Close()

	st := c.Mount(context.Background())
	assert.Equal(t, Unauthenticated, st.State)
	assert.Equal(t, ScreenLanding, c.Screen())
	assert.Zero(t, resolver.calls)
}

func TestComposer_ResolverFailureMeansLoggedOutWithoutClearing(t *testing.T) {
	kv := session.NewMemoryKV()
	ctx := context.Background()
	require.NoError(t, newStore(kv).Save(ctx, "tok1", domain.Identity{Role: domain.RoleAdmin}))

	resolver := &countingResolver{err: domain.ErrIdentityUnavailable}
	c := New(newStore(kv), resolver)
	defer c.Close()

	st := c.Mount(ctx)
	assert.Equal(t, Unauthenticated, st.State)
	assert.Equal(t, 1, resolver.calls)
	assert.Equal(t, 2, kv.Len(), "identity-check failure must not mutate storage")
}

func TestComposer_LogoutFromAdmin(t *testing.T) {
	kv := session.NewMemoryKV()
	ctx := context.Background()
	require.NoError(t, newStore(kv).Save(ctx, "tok1", domain.Identity{Role: domain.RoleAdmin}))

	c := New(newStore(kv), identity.StoredResolver{})
	defer c.Close()
	require.Equal(t, Authenticated, c.Mount(ctx).State)
	require.Equal(t, domain.RoleAdmin, c.Status().Role)

	require.NoError(t, c.Logout(ctx))

	assert.Equal(t, Unauthenticated, c.Status().State)
	assert.Equal(t, 0, kv.Len())
}

func TestComposer_SignInTransitionsThroughStoreEvent(t *testing.T) {
	kv := session.NewMemoryKV()
	ctx := context.Background()
	store := newStore(kv)

	var seen []State
	c := New(store, identity.StoredResolver{}, WithObserver(func(_, to Status) {
		seen = append(seen, to.State)
	}))
	defer c.Close()
	c.Mount(ctx)

	require.NoError(t, c.SignIn(ctx, "tok9", domain.Identity{ID: "9", Role: domain.RoleFarmer}))

	assert.Equal(t, Authenticated, c.Status().State)
	assert.Equal(t, ScreenFarmerDashboard, c.Screen())
	assert.Equal(t, []State{Unauthenticated, Authenticated}, seen)

	stored, ok := store.Load(ctx)
	require.True(t, ok)
	assert.Equal(t, domain.Credential("tok9"), stored.Credential)
}

func TestComposer_InvalidTransitions(t *testing.T) {
	ctx := context.Background()
	c := New(newStore(session.NewMemoryKV()), identity.StoredResolver{})
	defer c.Close()

	err := c.SignIn(ctx, "tok", domain.Identity{Role: domain.RoleVet})
	assert.True(t, errors.Is(err, domain.ErrInvalidTransition), "sign in while loading")

	c.Mount(ctx)
	assert.ErrorIs(t, c.Logout(ctx), domain.ErrInvalidTransition)

	require.NoError(t, c.SignIn(ctx, "tok", domain.Identity{Role: domain.RoleVet}))
	assert.ErrorIs(t, c.SignIn(ctx, "tok2", domain.Identity{Role: domain.RoleAdmin}), domain.ErrInvalidTransition)
	assert.Equal(t, domain.RoleVet, c.Status().Role)
}

func TestComposer_UnknownRoleDefaultsToFarmer(t *testing.T) {
	kv := session.NewMemoryKV()
	ctx := context.Background()
	require.NoError(t, newStore(kv).Save(ctx, "tok", domain.Identity{Role: "inspector"}))

	c := New(newStore(kv), identity.StoredResolver{})
	defer c.Close()

	st := c.Mount(ctx)
	assert.Equal(t, Authenticated, st.State)
	assert.Equal(t, domain.RoleFarmer, st.Role)
	assert.Equal(t, domain.Role("inspector"), st.Identity.Role)
	assert.Equal(t, navigation.ForRole(domain.RoleFarmer), c.Navigation())
}

func TestComposer_UnknownRoleRejected(t *testing.T) {
	kv := session.NewMemoryKV()
	ctx := context.Background()
	require.NoError(t, newStore(kv).Save(ctx, "tok", domain.Identity{Role: "inspector"}))

	c := New(newStore(kv), identity.StoredResolver{}, WithUnknownRolePolicy(UnknownRoleReject))
	defer c.Close()

	assert.Equal(t, Unauthenticated, c.Mount(ctx).State)

	var ve *domain.ValidationError
	assert.ErrorAs(t, c.SignIn(ctx, "tok2", domain.Identity{Role: "inspector"}), &ve)
	assert.Equal(t, Unauthenticated, c.Status().State)
}

func TestComposer_CorruptSessionLandsUnauthenticated(t *testing.T) {
	kv := session.NewMemoryKV()
	ctx := context.Background()
	require.NoError(t, kv.SetAll(ctx, map[string]string{
		"p3:{browser-1}:token": "tok",
		"p3:{browser-1}:user":  "<<<",
	}, 0))

	resolver := &countingResolver{next: identity.StoredResolver{}}
	c := New(newStore(kv), resolver)
	defer c.Close()

	assert.Equal(t, Unauthenticated, c.Mount(ctx).State)
	assert.Zero(t, resolver.calls)
	assert.Equal(t, 0, kv.Len())
}

func TestComposer_CloseStopsNotifications(t *testing.T) {
	kv := session.NewMemoryKV()
	ctx := context.Background()
	store := newStore(kv)

	c := New(store, identity.StoredResolver{})
	c.Mount(ctx)
	c.Close()

	require.NoError(t, store.Save(ctx, "tok", domain.Identity{Role: domain.RoleVet}))
	assert.Equal(t, Unauthenticated, c.Status().State)
}

func TestParseUnknownRolePolicy(t *testing.T) {
	p, err := ParseUnknownRolePolicy("Reject")
	require.NoError(t, err)
	assert.Equal(t, UnknownRoleReject, p)

	p, err = ParseUnknownRolePolicy("")
	require.NoError(t, err)
	assert.Equal(t, UnknownRoleFarmer, p)

	_, err = ParseUnknownRolePolicy("guest")
	assert.Error(t, err)
}

func TestState_TransitionTable(t *testing.T) {
	assert.True(t, Loading.CanTransitionTo(Authenticated))
	assert.True(t, Unauthenticated.CanTransitionTo(Authenticated))
	assert.True(t, Authenticated.CanTransitionTo(Unauthenticated))
	assert.False(t, Authenticated.CanTransitionTo(Loading))
	assert.False(t, Unauthenticated.CanTransitionTo(Loading))
}
