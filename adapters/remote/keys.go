package remote

import (
	"context"
	"fmt"

	"github.com/jihun-01/scratcha-dashboard/domain/key"
	"github.com/jihun-01/scratcha-dashboard/ports"
)

// KeyAPI delegates API-key operations to the backend.
//
// API contract:
//
//	POST   /dashboard/api-keys/?appId={id}&expiresPolicy={n}
//	DELETE /dashboard/api-keys/{id}
//	PUT    /dashboard/api-keys/{id}/activate
//	PUT    /dashboard/api-keys/{id}/deactivate
type KeyAPI struct {
	client *Client
}

// NewKeyAPI creates the key adapter.
func NewKeyAPI(client *Client) *KeyAPI {
	return &KeyAPI{client: client}
}

// Create issues a new key for an application.
func (a *KeyAPI) Create(ctx context.Context, appID int64, expiresPolicy int) (key.Key, error) {
	var wk wireKey
	path := fmt.Sprintf("/dashboard/api-keys/?appId=%d&expiresPolicy=%d", appID, expiresPolicy)
	if err := a.client.Request(ctx, "POST", path, nil, &wk); err != nil {
		return key.Key{}, err
	}

	status := key.StatusInactive
	if wk.IsActive {
		status = key.StatusActive
	}
	return key.Key{
		ID:     wk.ID,
		AppID:  appID,
		Name:   fmt.Sprintf("API Key %d", wk.ID),
		Secret: wk.Key,
		Status: status,
	}, nil
}

// Delete revokes a key.
func (a *KeyAPI) Delete(ctx context.Context, id int64) error {
	return a.client.Request(ctx, "DELETE", fmt.Sprintf("/dashboard/api-keys/%d", id), nil, nil)
}

// SetActive flips a key's activation state on the backend.
func (a *KeyAPI) SetActive(ctx context.Context, id int64, active bool) error {
	action := "deactivate"
	if active {
		action = "activate"
	}
	return a.client.Request(ctx, "PUT", fmt.Sprintf("/dashboard/api-keys/%d/%s", id, action), nil, nil)
}

var _ ports.KeyAPI = (*KeyAPI)(nil)
