// Package session keeps the backend-issued bearer token and the local UI
// preferences that live alongside it. The token is parsed (never
// verified - the backend owns the signing secret) so the dashboard can
// show expiry information and drop sessions proactively.
package session

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/golang-jwt/jwt/v5"

	"github.com/jihun-01/scratcha-dashboard/ports"
)

// Settings-store key names.
const (
	settingToken    = "session_token"
	settingDarkMode = "dark_mode"
)

// Info describes the current token.
type Info struct {
	IssuedAt  time.Time
	ExpiresAt time.Time
	Subject   string
}

// TimeUntilExpiry returns how long the token remains valid at now.
func (i Info) TimeUntilExpiry(now time.Time) time.Duration {
	return i.ExpiresAt.Sub(now)
}

// Expired reports whether the token is past its expiry at now.
func (i Info) Expired(now time.Time) bool {
	return !i.ExpiresAt.IsZero() && !now.Before(i.ExpiresAt)
}

// Manager holds the session token in memory and mirrors it into the
// settings store so a restart keeps the session.
type Manager struct {
	mu    sync.RWMutex
	token string
	store ports.SettingsStore
	clock ports.Clock
}

// NewManager creates a session manager and restores any persisted token.
func NewManager(ctx context.Context, store ports.SettingsStore, clock ports.Clock) (*Manager, error) {
	m := &Manager{store: store, clock: clock}

	token, err := store.Get(ctx, settingToken)
	if err != nil {
		return nil, fmt.Errorf("restore session: %w", err)
	}
	if token != "" {
		if info, err := Inspect(token); err == nil && !info.Expired(clock.Now()) {
			m.token = token
		} else {
			// Stale token: drop it rather than sending it to the backend.
			_ = store.Delete(ctx, settingToken)
		}
	}

	return m, nil
}

// Token returns the current bearer token, or "" when signed out.
func (m *Manager) Token() string {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.token
}

// SignedIn reports whether a token is held.
func (m *Manager) SignedIn() bool {
	return m.Token() != ""
}

// Store saves a freshly issued token.
func (m *Manager) Store(ctx context.Context, token string) error {
	m.mu.Lock()
	m.token = token
	m.mu.Unlock()
	return m.store.Set(ctx, settingToken, token)
}

// Clear forgets the token (sign-out or expiry).
func (m *Manager) Clear(ctx context.Context) error {
	m.mu.Lock()
	m.token = ""
	m.mu.Unlock()
	return m.store.Delete(ctx, settingToken)
}

// Info inspects the current token. ok is false when signed out or the
// token is unparseable.
func (m *Manager) Info() (Info, bool) {
	token := m.Token()
	if token == "" {
		return Info{}, false
	}
	info, err := Inspect(token)
	if err != nil {
		return Info{}, false
	}
	return info, true
}

// DarkMode returns the persisted dark-mode flag.
func (m *Manager) DarkMode(ctx context.Context) (bool, error) {
	v, err := m.store.Get(ctx, settingDarkMode)
	if err != nil {
		return false, err
	}
	return v == "true", nil
}

// SetDarkMode persists the dark-mode flag.
func (m *Manager) SetDarkMode(ctx context.Context, on bool) error {
	v := "false"
	if on {
		v = "true"
	}
	return m.store.Set(ctx, settingDarkMode, v)
}

// Inspect decodes the claims of a backend-issued JWT without verifying
// it. Verification is the backend's job; the dashboard only reads the
// registered timestamp claims.
func Inspect(token string) (Info, error) {
	parser := jwt.NewParser()
	claims := jwt.MapClaims{}
	if _, _, err := parser.ParseUnverified(token, claims); err != nil {
		return Info{}, fmt.Errorf("parse token: %w", err)
	}

	var info Info
	if exp, err := claims.GetExpirationTime(); err == nil && exp != nil {
		info.ExpiresAt = exp.Time
	}
	if iat, err := claims.GetIssuedAt(); err == nil && iat != nil {
		info.IssuedAt = iat.Time
	}
	if sub, err := claims.GetSubject(); err == nil {
		info.Subject = sub
	}
	return info, nil
}
