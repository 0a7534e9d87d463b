package remote

import (
	"context"
	"fmt"

	"github.com/jihun-01/scratcha-dashboard/domain/application"
	"github.com/jihun-01/scratcha-dashboard/domain/key"
	"github.com/jihun-01/scratcha-dashboard/ports"
)

// ApplicationAPI delegates application CRUD to the backend.
//
// API contract:
//
//	GET    /dashboard/applications/all  -> {"data": [{id, appName, description, keys: [...]}]}
//	POST   /dashboard/applications/     {"appName", "description"}
//	DELETE /dashboard/applications/{id}
type ApplicationAPI struct {
	client *Client
}

// NewApplicationAPI creates the application adapter.
func NewApplicationAPI(client *Client) *ApplicationAPI {
	return &ApplicationAPI{client: client}
}

type wireKey struct {
	ID       int64  `json:"id"`
	Key      string `json:"key"`
	IsActive bool   `json:"isActive"`
}

type wireApplication struct {
	ID          int64     `json:"id"`
	AppName     string    `json:"appName"`
	Description string    `json:"description"`
	Keys        []wireKey `json:"keys"`
	Key         *wireKey  `json:"key"`
	CreatedAt   string    `json:"createdAt"`
}

type listResponse struct {
	Data []wireApplication `json:"data"`
}

// ListAll fetches every application with its nested keys. Keys are
// de-duplicated by ID (the backend may nest a key both as "key" and in
// "keys"); application status is left for the caller to derive.
func (a *ApplicationAPI) ListAll(ctx context.Context) ([]application.Application, []key.Key, error) {
	var resp listResponse
	if err := a.client.Request(ctx, "GET", "/dashboard/applications/all", nil, &resp); err != nil {
		return nil, nil, err
	}

	seen := make(map[int64]bool)
	var apps []application.Application
	var keys []key.Key

	for _, wa := range resp.Data {
		apps = append(apps, application.Application{
			ID:          wa.ID,
			Name:        wa.AppName,
			Description: wa.Description,
			Settings:    application.DefaultSettings(),
			CreatedAt:   wa.CreatedAt,
		})

		wireKeys := wa.Keys
		if len(wireKeys) == 0 && wa.Key != nil {
			wireKeys = []wireKey{*wa.Key}
		}
		for _, wk := range wireKeys {
			if seen[wk.ID] {
				continue
			}
			seen[wk.ID] = true

			status := key.StatusInactive
			if wk.IsActive {
				status = key.StatusActive
			}
			keys = append(keys, key.Key{
				ID:     wk.ID,
				AppID:  wa.ID,
				Name:   fmt.Sprintf("API Key %d", wk.ID),
				Secret: wk.Key,
				Status: status,
			})
		}
	}

	return apps, keys, nil
}

type createApplicationRequest struct {
	AppName     string `json:"appName"`
	Description string `json:"description"`
}

// Create registers a new application.
func (a *ApplicationAPI) Create(ctx context.Context, name, description string) (application.Application, error) {
	var wa wireApplication
	err := a.client.Request(ctx, "POST", "/dashboard/applications/", createApplicationRequest{
		AppName:     name,
		Description: description,
	}, &wa)
	if err != nil {
		return application.Application{}, err
	}
	return application.Application{
		ID:          wa.ID,
		Name:        wa.AppName,
		Description: wa.Description,
		Settings:    application.DefaultSettings(),
		CreatedAt:   wa.CreatedAt,
	}, nil
}

// Delete removes an application.
func (a *ApplicationAPI) Delete(ctx context.Context, id int64) error {
	return a.client.Request(ctx, "DELETE", fmt.Sprintf("/dashboard/applications/%d", id), nil, nil)
}

var _ ports.ApplicationAPI = (*ApplicationAPI)(nil)
