// Package metrics defines and registers all custom Prometheus metrics of the
// biosecurity portal. It is the single source of truth for metric names,
// labels, and help strings.
//
// Metrics are registered with the default Prometheus registry on package
// initialisation via promauto.
package metrics

import (
	"errors"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"

	"github.com/p3biosecurity/portal/internal/core/domain"
)

const namespace = "biosecurity"

// ── View metrics ──────────────────────────────────────────────────────────────

// ViewTransitionsTotal counts composer state changes.
// Labels:
//   - from, to: "loading", "unauthenticated" or "authenticated"
//   - role: effective role after the transition, empty when signed out
var ViewTransitionsTotal = promauto.NewCounterVec(
	prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "view_transitions_total",
		Help:      "Total number of portal view state transitions.",
	},
	[]string{"from", "to", "role"},
)

// ── Identity metrics ──────────────────────────────────────────────────────────

// IdentityResolutionsTotal counts identity checks performed on mount.
// Label:
//   - result: "ok", "rejected" or "unavailable"
var IdentityResolutionsTotal = promauto.NewCounterVec(
	prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "identity_resolutions_total",
		Help:      "Total number of stored-session identity resolutions, by result.",
	},
	[]string{"result"},
)

// IdentityResolutionDuration measures identity check latency.
var IdentityResolutionDuration = promauto.NewHistogram(
	prometheus.HistogramOpts{
		Namespace: namespace,
		Name:      "identity_resolution_duration_seconds",
		Help:      "Duration of stored-session identity resolutions.",
		Buckets:   prometheus.DefBuckets,
	},
)

// ── Auth metrics ──────────────────────────────────────────────────────────────

// AuthAttemptsTotal counts login and registration attempts.
// Labels:
//   - surface: "portal" for the browser flow, "api" for /auth
//   - action: "login" or "register"
//   - result: "ok", "invalid", "rejected", "conflict" or "error"
var AuthAttemptsTotal = promauto.NewCounterVec(
	prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "auth_attempts_total",
		Help:      "Total number of login and registration attempts, by outcome.",
	},
	[]string{"surface", "action", "result"},
)

// ResolutionResult maps an identity resolution error onto its label value.
func ResolutionResult(err error) string {
	switch {
	case err == nil:
		return "ok"
	case errors.Is(err, domain.ErrCredentialRejected):
		return "rejected"
	default:
		return "unavailable"
	}
}

// AuthResult maps an authenticator error onto its label value.
func AuthResult(err error) string {
	var ve *domain.ValidationError
	switch {
	case err == nil:
		return "ok"
	case errors.As(err, &ve):
		return "invalid"
	case errors.Is(err, domain.ErrInvalidCredentials), errors.Is(err, domain.ErrAccountNotFound):
		return "rejected"
	case errors.Is(err, domain.ErrAccountExists):
		return "conflict"
	default:
		return "error"
	}
}
