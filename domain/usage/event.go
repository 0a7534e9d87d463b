// Package usage provides the API-call event pool and the pure derivation
// functions over it: log filtering, time bucketing, and stat cards.
// All functions here are pure - no side effects, no hidden state.
package usage

import "time"

// Result classifies the outcome of a CAPTCHA verification call.
type Result string

const (
	ResultSuccess   Result = "success"
	ResultFailure   Result = "failure"
	ResultTimeout   Result = "timeout"
	ResultAuthError Result = "auth_error"
)

// Scenario selects one of the pre-generated session datasets used to
// exercise plan-usage thresholds.
type Scenario string

const (
	ScenarioLow  Scenario = "low"  // ~25% of the plan limit
	ScenarioMid  Scenario = "mid"  // ~45% of the plan limit
	ScenarioHigh Scenario = "high" // ~75% of the plan limit
)

// Scenarios lists all dataset scenarios.
var Scenarios = []Scenario{ScenarioLow, ScenarioMid, ScenarioHigh}

// Event is a single API-call log entry (immutable value type).
// The pool it belongs to is generated once per process lifetime and never
// mutated; every derivation is a read-only projection over it.
//
// OccurredAt is kept in its wire form (RFC 3339). A malformed timestamp
// makes the event invisible to derivations instead of aborting them.
type Event struct {
	ID             int64
	AppID          int64
	AppName        string
	KeyID          int64
	APIKey         string
	OccurredAt     string
	Result         Result
	ResponseTimeMs int
}

// Time parses the event timestamp. ok is false for malformed timestamps;
// such events are skipped by every derivation.
func (e Event) Time() (time.Time, bool) {
	t, err := time.Parse(time.RFC3339, e.OccurredAt)
	if err != nil {
		return time.Time{}, false
	}
	return t, true
}

// IsError reports whether the call did not verify successfully.
func (e Event) IsError() bool {
	return e.Result != ResultSuccess
}
