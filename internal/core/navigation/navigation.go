// Package navigation maps a role onto the sidebar entries and guards the
// role-prefixed screen paths.
package navigation

import (
	"strings"

	"github.com/p3biosecurity/portal/internal/core/domain"
)

// Entry is a single sidebar link. Entries are derived on every render and
// never persisted.
type Entry struct {
	Label  string `json:"label"`
	Target string `json:"target"`
	Icon   string `json:"icon"`
}

// Root is the dashboard every role lands on.
const Root = "/"

var dashboard = Entry{Label: "Dashboard", Target: Root, Icon: "home"}

var settings = Entry{Label: "Settings", Target: "/settings", Icon: "cog-6-tooth"}

var roleEntries = map[domain.Role][]Entry{
	domain.RoleAdmin: {
		{Label: "Emergency Response", Target: "/admin/emergency", Icon: "exclamation-triangle"},
		{Label: "Compliance Tracking", Target: "/admin/compliance", Icon: "document-check"},
		{Label: "Notifications", Target: "/admin/notifications", Icon: "bell"},
		{Label: "Analytics", Target: "/admin/analytics", Icon: "chart-bar"},
	},
	domain.RoleVet: {
		{Label: "Risk Assessment", Target: "/vet/risk-assessment", Icon: "shield-check"},
		{Label: "Protection Hub", Target: "/vet/protection-hub", Icon: "user-group"},
		{Label: "Health Predictor", Target: "/vet/health-predictor", Icon: "chart-bar"},
		{Label: "Image Classifier", Target: "/vet/image-classifier", Icon: "camera"},
		{Label: "Appointments", Target: "/vet/appointments", Icon: "calendar"},
	},
	domain.RoleFarmer: {
		{Label: "Image Classifier", Target: "/farmer/image-classifier", Icon: "camera"},
		{Label: "Farmer Network", Target: "/farmer/network", Icon: "user-group"},
		{Label: "Compliance Tracker", Target: "/farmer/compliance", Icon: "clipboard-document-list"},
		{Label: "Training Modules", Target: "/farmer/training", Icon: "academic-cap"},
		{Label: "Community Forum", Target: "/farmer/forum", Icon: "chat-bubble-left-right"},
	},
}

// ForRole returns the ordered sidebar for role. Unknown roles get the farmer
// sidebar. The returned slice is owned by the caller.
func ForRole(role domain.Role) []Entry {
	specific := roleEntries[role.Effective()]
	out := make([]Entry, 0, len(specific)+1)
	out = append(out, dashboard)
	return append(out, specific...)
}

// Settings is the footer entry shared by every role.
func Settings() Entry { return settings }

// Allowed reports whether role may open path. Paths under another role's
// prefix are refused; everything else is open to any signed-in role.
func Allowed(role domain.Role, path string) bool {
	owner, ok := ownerOf(path)
	if !ok {
		return true
	}
	return owner == role.Effective()
}

// Find returns the entry of role's sidebar (or the settings entry) whose
// target matches path.
func Find(role domain.Role, path string) (Entry, bool) {
	path = clean(path)
	for _, e := range ForRole(role) {
		if e.Target == path {
			return e, true
		}
	}
	if path == settings.Target {
		return settings, true
	}
	return Entry{}, false
}

func ownerOf(path string) (domain.Role, bool) {
	trimmed := strings.TrimPrefix(clean(path), "/")
	segment, _, _ := strings.Cut(trimmed, "/")
	role, ok := domain.ParseRole(segment)
	if !ok || segment != string(role) {
		return "", false
	}
	return role, true
}

func clean(path string) string {
	if path == "" {
		return Root
	}
	if !strings.HasPrefix(path, "/") {
		path = "/" + path
	}
	if len(path) > 1 {
		path = strings.TrimSuffix(path, "/")
	}
	return path
}
