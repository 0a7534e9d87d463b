// Package key provides API key value types and pure helpers.
package key

// Status is the activation state of an API key.
type Status string

const (
	StatusActive   Status = "active"
	StatusInactive Status = "inactive"
)

// Toggle returns the opposite status.
func (s Status) Toggle() Status {
	if s == StatusActive {
		return StatusInactive
	}
	return StatusActive
}

// Key is an API key owned by an application (value type).
// Secret is the full key material as issued by the backend; the dashboard
// shows it masked except at creation time.
type Key struct {
	ID       int64  `json:"id"`
	AppID    int64  `json:"app_id"`
	Name     string `json:"name"`
	Secret   string `json:"secret"`
	Status   Status `json:"status"`
	LastUsed string `json:"last_used"`
}

// IsActive reports whether the key can serve verification calls.
func (k Key) IsActive() bool {
	return k.Status == StatusActive
}

// Masked returns the secret with everything but the prefix and the last
// four characters hidden.
func (k Key) Masked() string {
	const keep = 4
	s := k.Secret
	if len(s) <= keep*2 {
		return s
	}
	masked := make([]byte, len(s))
	for i := range masked {
		if i < keep || i >= len(s)-keep {
			masked[i] = s[i]
		} else {
			masked[i] = '*'
		}
	}
	return string(masked)
}

// FilterByApp returns the keys owned by appID.
// This is a PURE function.
func FilterByApp(keys []Key, appID int64) []Key {
	var out []Key
	for _, k := range keys {
		if k.AppID == appID {
			out = append(out, k)
		}
	}
	return out
}

// AnyActive reports whether at least one key in the list is active.
// This is a PURE function.
func AnyActive(keys []Key) bool {
	for _, k := range keys {
		if k.IsActive() {
			return true
		}
	}
	return false
}
