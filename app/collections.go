package app

import (
	"context"
	"fmt"

	"github.com/jihun-01/scratcha-dashboard/domain/application"
	"github.com/jihun-01/scratcha-dashboard/domain/key"
)

// RefreshApplications reloads the application and key collections from
// the backend. On failure the previous collections stay in place.
func (d *Dashboard) RefreshApplications(ctx context.Context) error {
	d.mu.Lock()
	d.appsLoading = true
	d.mu.Unlock()

	apps, keys, err := d.appsAPI.ListAll(ctx)

	d.mu.Lock()
	defer d.mu.Unlock()
	d.appsLoading = false
	if err != nil {
		d.observeBackend("list_applications", err)
		d.log.Error().Err(err).Msg("application refresh failed")
		d.recompute("apps")
		return fmt.Errorf("refresh applications: %w", err)
	}
	d.observeBackend("list_applications", nil)

	// Application status is derived: active iff at least one of its
	// keys is active.
	d.apps = application.WithDerivedStatus(apps, keys)
	d.keys = keys
	d.recompute("apps")
	return nil
}

// CreateApplication registers a new application with the backend, then
// refreshes the collections so the new application and its auto-issued
// key appear.
func (d *Dashboard) CreateApplication(ctx context.Context, name, description string) error {
	_, err := d.appsAPI.Create(ctx, name, description)
	d.observeBackend("create_application", err)
	if err != nil {
		return fmt.Errorf("create application: %w", err)
	}
	d.AddActivity("success", fmt.Sprintf("애플리케이션 '%s' 생성됨", name), "")
	return d.RefreshApplications(ctx)
}

// DeleteApplication removes an application and everything under it.
func (d *Dashboard) DeleteApplication(ctx context.Context, id int64) error {
	err := d.appsAPI.Delete(ctx, id)
	d.observeBackend("delete_application", err)
	if err != nil {
		return fmt.Errorf("delete application: %w", err)
	}

	d.mu.Lock()
	var name string
	if a, ok := application.Find(d.apps, id); ok {
		name = a.Name
	}
	d.mu.Unlock()
	if name != "" {
		d.AddActivity("warning", fmt.Sprintf("애플리케이션 '%s' 삭제됨", name), "")
	}
	return d.RefreshApplications(ctx)
}

// CreateKey issues a new API key for an application.
func (d *Dashboard) CreateKey(ctx context.Context, appID int64, expiresPolicy int) error {
	_, err := d.keysAPI.Create(ctx, appID, expiresPolicy)
	d.observeBackend("create_key", err)
	if err != nil {
		return fmt.Errorf("create api key: %w", err)
	}
	d.AddActivity("success", "새 API 키 발급됨", "")
	return d.RefreshApplications(ctx)
}

// DeleteKey revokes an API key.
func (d *Dashboard) DeleteKey(ctx context.Context, keyID int64) error {
	err := d.keysAPI.Delete(ctx, keyID)
	d.observeBackend("delete_key", err)
	if err != nil {
		return fmt.Errorf("delete api key: %w", err)
	}
	d.AddActivity("warning", "API 키 삭제됨", "")
	return d.RefreshApplications(ctx)
}

// ToggleKey flips a key between active and inactive, optimistically.
// The local state flips immediately; the backend is told afterwards. If
// the backend call fails, the flip is rolled back, unless a newer toggle
// of the same key already confirmed a later state. The per-key version
// counter makes the rollback apply only to its own attempt.
func (d *Dashboard) ToggleKey(ctx context.Context, keyID int64) error {
	d.mu.Lock()
	idx := -1
	for i := range d.keys {
		if d.keys[i].ID == keyID {
			idx = i
			break
		}
	}
	if idx < 0 {
		d.mu.Unlock()
		return fmt.Errorf("api key %d not found", keyID)
	}

	previous := d.keys[idx].Status
	next := previous.Toggle()
	d.keys[idx].Status = next
	d.keyVersions[keyID]++
	version := d.keyVersions[keyID]
	d.refreshAppStatuses()
	d.recompute("key_toggle")
	d.mu.Unlock()

	err := d.keysAPI.SetActive(ctx, keyID, next == key.StatusActive)
	d.observeBackend("toggle_key", err)

	d.mu.Lock()
	defer d.mu.Unlock()
	if err != nil {
		if d.keyVersions[keyID] == version {
			for i := range d.keys {
				if d.keys[i].ID == keyID {
					d.keys[i].Status = previous
					break
				}
			}
			d.refreshAppStatuses()
			d.recompute("key_toggle_rollback")
			if d.metrics != nil {
				d.metrics.ToggleRollbacks.Inc()
			}
			d.log.Warn().Int64("key_id", keyID).Err(err).Msg("key toggle rolled back")
		} else {
			d.log.Warn().Int64("key_id", keyID).Err(err).Msg("stale key toggle failure ignored")
		}
		return fmt.Errorf("toggle api key: %w", err)
	}
	return nil
}

// ToggleApplication flips the local status of an application and every
// key under it. This is a purely local state change.
func (d *Dashboard) ToggleApplication(id int64) error {
	d.mu.Lock()
	defer d.mu.Unlock()

	idx := -1
	for i := range d.apps {
		if d.apps[i].ID == id {
			idx = i
			break
		}
	}
	if idx < 0 {
		return fmt.Errorf("application %d not found", id)
	}

	active := d.apps[idx].Status != application.StatusActive
	status := key.StatusInactive
	if active {
		status = key.StatusActive
	}
	for i := range d.keys {
		if d.keys[i].AppID == id {
			d.keys[i].Status = status
			d.keyVersions[d.keys[i].ID]++
		}
	}
	d.refreshAppStatuses()
	d.recompute("app_toggle")
	return nil
}

// UpdateAppSettings replaces the CAPTCHA settings of an application.
func (d *Dashboard) UpdateAppSettings(id int64, s application.Settings) error {
	d.mu.Lock()
	defer d.mu.Unlock()

	for i := range d.apps {
		if d.apps[i].ID == id {
			d.apps[i].Settings = s
			d.recompute("app_settings")
			return nil
		}
	}
	return fmt.Errorf("application %d not found", id)
}

// AddActivity prepends an entry to the recent-activity feed, keeping the
// newest entries only.
func (d *Dashboard) AddActivity(kind, title, count string) {
	d.mu.Lock()
	defer d.mu.Unlock()

	a := Activity{
		ID:    d.ids.New(),
		Type:  kind,
		Title: title,
		Count: count,
		At:    d.clock.Now(),
	}
	d.activities = append([]Activity{a}, d.activities...)
	if len(d.activities) > maxActivities {
		d.activities = d.activities[:maxActivities]
	}
	d.recompute("activity")
}

// refreshAppStatuses re-derives every application status from the
// current key set. Must be called with mu held.
func (d *Dashboard) refreshAppStatuses() {
	d.apps = application.WithDerivedStatus(d.apps, d.keys)
}

// observeBackend records a backend call outcome metric.
func (d *Dashboard) observeBackend(operation string, err error) {
	if d.metrics == nil {
		return
	}
	outcome := "ok"
	if err != nil {
		outcome = "error"
	}
	d.metrics.BackendRequests.WithLabelValues(operation, outcome).Inc()
}
