// Package session keeps the credential and identity of one browser scope in
// persistent key/value storage and tells subscribers when they change.
package session

import (
	"context"
	"encoding/json"
	"fmt"
	"sync"
	"time"

	"github.com/rs/zerolog"

	"github.com/p3biosecurity/portal/internal/core/domain"
	"github.com/p3biosecurity/portal/internal/core/ports"
)

const defaultPrefix = "p3"

// Session is what a successful Load yields.
type Session struct {
	Credential domain.Credential
	Identity   domain.Identity
}

// EventKind tells subscribers what happened to the stored session.
type EventKind int

const (
	EventSaved EventKind = iota + 1
	EventCleared
)

func (k EventKind) String() string {
	switch k {
	case EventSaved:
		return "saved"
	case EventCleared:
		return "cleared"
	default:
		return "unknown"
	}
}

// Event is published after every Save and Clear. Identity is set for
// EventSaved only.
type Event struct {
	Kind     EventKind
	Identity *domain.Identity
}

// Listener receives store events synchronously on the writer's goroutine.
type Listener func(Event)

// Options configures a Store.
type Options struct {
	// Prefix namespaces every key. Defaults to "p3".
	Prefix string
	// TTL is applied to both keys on Save. Zero keeps them until Clear.
	TTL time.Duration
	Log zerolog.Logger
}

// Store is the single access point to the two persisted session keys of a
// scope. Both keys are always written and removed together.
type Store struct {
	kv          ports.KeyValue
	credKey     string
	identityKey string
	ttl         time.Duration
	log         zerolog.Logger

	mu     sync.Mutex
	subs   map[int]Listener
	nextID int
}

// NewStore returns a Store for the given scope.
func NewStore(kv ports.KeyValue, scope string, opts Options) *Store {
	prefix := opts.Prefix
	if prefix == "" {
		prefix = defaultPrefix
	}
	return &Store{
		kv:          kv,
		credKey:     fmt.Sprintf("%s:{%s}:token", prefix, scope),
		identityKey: fmt.Sprintf("%s:{%s}:user", prefix, scope),
		ttl:         opts.TTL,
		log:         opts.Log,
		subs:        make(map[int]Listener),
	}
}

// Save persists the credential and identity together and publishes EventSaved.
func (s *Store) Save(ctx context.Context, credential domain.Credential, identity domain.Identity) error {
	if credential == "" {
		return fmt.Errorf("save session: empty credential")
	}
	raw, err := json.Marshal(identity)
	if err != nil {
		return fmt.Errorf("save session: encode identity: %w", err)
	}

	err = s.kv.SetAll(ctx, map[string]string{
		s.credKey:     string(credential),
		s.identityKey: string(raw),
	}, s.ttl)
	if err != nil {
		return fmt.Errorf("save session: %w", err)
	}

	saved := identity
	s.publish(Event{Kind: EventSaved, Identity: &saved})
	return nil
}

// Load returns the stored session. It never fails: storage errors and missing
// keys yield false, and an undecodable or half-written session is removed
// before returning false.
func (s *Store) Load(ctx context.Context) (Session, bool) {
	credential, hasCred, err := s.kv.Get(ctx, s.credKey)
	if err != nil {
		s.log.Warn().Err(err).Str("key", s.credKey).Msg("session credential read failed")
		return Session{}, false
	}
	raw, hasIdentity, err := s.kv.Get(ctx, s.identityKey)
	if err != nil {
		s.log.Warn().Err(err).Str("key", s.identityKey).Msg("session identity read failed")
		return Session{}, false
	}

	if !hasCred && !hasIdentity {
		return Session{}, false
	}
	if !hasCred || credential == "" || !hasIdentity {
		s.drop(ctx, "incomplete session")
		return Session{}, false
	}

	var identity *domain.Identity
	if err := json.Unmarshal([]byte(raw), &identity); err != nil || identity == nil {
		s.log.Warn().Err(err).Msg("stored identity is corrupt")
		s.drop(ctx, "corrupt identity")
		return Session{}, false
	}

	return Session{Credential: domain.Credential(credential), Identity: *identity}, true
}

// Clear removes both keys and publishes EventCleared.
func (s *Store) Clear(ctx context.Context) error {
	if err := s.kv.Delete(ctx, s.credKey, s.identityKey); err != nil {
		return fmt.Errorf("clear session: %w", err)
	}
	s.publish(Event{Kind: EventCleared})
	return nil
}

// Subscribe registers l and returns a function that removes it.
func (s *Store) Subscribe(l Listener) (unsubscribe func()) {
	s.mu.Lock()
	id := s.nextID
	s.nextID++
	s.subs[id] = l
	s.mu.Unlock()

	return func() {
		s.mu.Lock()
		delete(s.subs, id)
		s.mu.Unlock()
	}
}

func (s *Store) drop(ctx context.Context, reason string) {
	if err := s.Clear(ctx); err != nil {
		s.log.Error().Err(err).Str("reason", reason).Msg("failed to drop broken session")
		return
	}
	s.log.Info().Str("reason", reason).Msg("broken session dropped")
}

func (s *Store) publish(ev Event) {
	s.mu.Lock()
	listeners := make([]Listener, 0, len(s.subs))
	for _, l := range s.subs {
		listeners = append(listeners, l)
	}
	s.mu.Unlock()

	for _, l := range listeners {
		l(ev)
	}
}
