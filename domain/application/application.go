// Package application provides the dashboard application value type.
package application

import (
	"github.com/jihun-01/scratcha-dashboard/domain/key"
)

// Status is the derived activation state of an application.
type Status string

const (
	StatusActive   Status = "active"
	StatusInactive Status = "inactive"
)

// Settings holds per-application CAPTCHA tuning.
type Settings struct {
	Model          string `json:"model"`
	NoiseLevel     string `json:"noise_level"`
	HeuristicLevel string `json:"heuristic_level"`
}

// DefaultSettings are applied to applications the backend returns without
// explicit settings.
func DefaultSettings() Settings {
	return Settings{Model: "gpt-4", NoiseLevel: "중", HeuristicLevel: "중"}
}

// Application is a customer application registered with the CAPTCHA
// service (value type). Status is never stored: it is derived from the
// application's keys (active iff any owned key is active).
type Application struct {
	ID          int64    `json:"id"`
	Name        string   `json:"name"`
	Description string   `json:"description"`
	Status      Status   `json:"status"`
	Settings    Settings `json:"settings"`
	CreatedAt   string   `json:"created_at"`
}

// DeriveStatus computes the application status from its keys: active when
// at least one owned key is active, inactive when it has no keys or only
// inactive ones. This is a PURE function.
func DeriveStatus(keys []key.Key) Status {
	if key.AnyActive(keys) {
		return StatusActive
	}
	return StatusInactive
}

// WithDerivedStatus returns a copy of apps with each Status recomputed
// from the key list. This is a PURE function.
func WithDerivedStatus(apps []Application, keys []key.Key) []Application {
	out := make([]Application, len(apps))
	for i, a := range apps {
		a.Status = DeriveStatus(key.FilterByApp(keys, a.ID))
		out[i] = a
	}
	return out
}

// Find looks an application up by ID.
// This is a PURE function.
func Find(apps []Application, id int64) (Application, bool) {
	for _, a := range apps {
		if a.ID == id {
			return a, true
		}
	}
	return Application{}, false
}
