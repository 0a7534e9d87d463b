// Package ports defines interfaces (contracts) between layers.
// These interfaces enable dependency injection and testability.
// Implementations live in adapters/.
package ports

import (
	"context"
	"time"

	"github.com/jihun-01/scratcha-dashboard/domain/application"
	"github.com/jihun-01/scratcha-dashboard/domain/key"
	"github.com/jihun-01/scratcha-dashboard/domain/usage"
)

// -----------------------------------------------------------------------------
// Infrastructure Ports
// -----------------------------------------------------------------------------

// Clock abstracts time for testability.
type Clock interface {
	Now() time.Time
}

// IDGenerator generates unique identifiers.
type IDGenerator interface {
	New() string
}

// -----------------------------------------------------------------------------
// Local Store Ports
// -----------------------------------------------------------------------------

// EventStore holds the session-fixed usage event pool.
// The pool is written once (seed) and only ever read afterwards.
type EventStore interface {
	// List returns the full pool, newest first.
	List(ctx context.Context) ([]usage.Event, error)

	// Replace swaps the stored pool for a freshly generated one.
	Replace(ctx context.Context, events []usage.Event) error

	// Count returns the pool size.
	Count(ctx context.Context) (int, error)
}

// SettingsStore persists small local key-value state: the session token,
// the dark-mode flag, and similar UI preferences. It is not part of the
// derivation core.
type SettingsStore interface {
	Get(ctx context.Context, name string) (string, error)
	Set(ctx context.Context, name, value string) error
	Delete(ctx context.Context, name string) error
}

// DatasetGenerator produces the deterministic scenario datasets the
// dashboard serves. Implementations must be pure: randomness is allowed
// only in one-off pool construction, never here.
type DatasetGenerator interface {
	// ScenarioDataset builds the session dataset for a scenario.
	ScenarioDataset(sc usage.Scenario, now time.Time, limit int64, avgTokens int) []usage.Event

	// SynthesizeMonthToDate builds count successful calls spread over the
	// current month.
	SynthesizeMonthToDate(count int, now time.Time) []usage.Event

	// ScenarioPercent maps a scenario to its target usage percentage.
	ScenarioPercent(sc usage.Scenario) int

	// TargetCalls converts a usage percentage into a monthly call count.
	TargetCalls(limit int64, percent, avgTokens int) int
}

// -----------------------------------------------------------------------------
// Backend (Scratcha API) Ports
// -----------------------------------------------------------------------------

// Profile is the signed-in user's account as the backend reports it.
type Profile struct {
	ID       int64
	Email    string
	UserName string
	PlanName string
}

// AccountAPI is the session/profile surface of the Scratcha backend.
type AccountAPI interface {
	// Login exchanges credentials for a bearer token.
	Login(ctx context.Context, email, password string) (token string, err error)

	// Signup registers a new account.
	Signup(ctx context.Context, email, password, userName string) error

	// Me fetches the current profile.
	Me(ctx context.Context) (Profile, error)

	// UpdateUserName renames the account.
	UpdateUserName(ctx context.Context, userName string) error

	// Delete soft-deletes the account.
	Delete(ctx context.Context) error
}

// ApplicationAPI is the application CRUD surface of the Scratcha backend.
// ListAll returns applications (status not yet derived) together with the
// de-duplicated keys the backend nests inside them.
type ApplicationAPI interface {
	ListAll(ctx context.Context) ([]application.Application, []key.Key, error)
	Create(ctx context.Context, name, description string) (application.Application, error)
	Delete(ctx context.Context, id int64) error
}

// KeyAPI is the API-key surface of the Scratcha backend.
type KeyAPI interface {
	Create(ctx context.Context, appID int64, expiresPolicy int) (key.Key, error)
	Delete(ctx context.Context, id int64) error

	// SetActive activates or deactivates a key. The dashboard applies the
	// new state optimistically and rolls back when this call fails.
	SetActive(ctx context.Context, id int64, active bool) error
}
