package remote

import (
	"context"

	"github.com/jihun-01/scratcha-dashboard/ports"
)

// AccountAPI delegates session and profile operations to the backend.
//
// API contract (from the Scratcha dashboard API):
//
//	POST   /dashboard/auth/login    {"email", "password"} -> {"token"}
//	POST   /dashboard/users/signup  {"email", "password", "userName"}
//	GET    /dashboard/users/me      -> profile
//	PATCH  /dashboard/users/me      {"userName"}
//	DELETE /dashboard/users/me      (soft delete)
type AccountAPI struct {
	client *Client
}

// NewAccountAPI creates the account adapter.
func NewAccountAPI(client *Client) *AccountAPI {
	return &AccountAPI{client: client}
}

type loginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

type loginResponse struct {
	Token string `json:"token"`
}

// Login exchanges credentials for a bearer token.
func (a *AccountAPI) Login(ctx context.Context, email, password string) (string, error) {
	var resp loginResponse
	err := a.client.Request(ctx, "POST", "/dashboard/auth/login", loginRequest{Email: email, Password: password}, &resp)
	if err != nil {
		return "", err
	}
	return resp.Token, nil
}

type signupRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
	UserName string `json:"userName"`
}

// Signup registers a new account.
func (a *AccountAPI) Signup(ctx context.Context, email, password, userName string) error {
	return a.client.Request(ctx, "POST", "/dashboard/users/signup", signupRequest{
		Email:    email,
		Password: password,
		UserName: userName,
	}, nil)
}

type profileResponse struct {
	ID       int64  `json:"id"`
	Email    string `json:"email"`
	UserName string `json:"userName"`
	PlanName string `json:"planName"`
}

// Me fetches the current profile.
func (a *AccountAPI) Me(ctx context.Context) (ports.Profile, error) {
	var resp profileResponse
	if err := a.client.Request(ctx, "GET", "/dashboard/users/me", nil, &resp); err != nil {
		return ports.Profile{}, err
	}
	return ports.Profile{
		ID:       resp.ID,
		Email:    resp.Email,
		UserName: resp.UserName,
		PlanName: resp.PlanName,
	}, nil
}

// UpdateUserName renames the account.
func (a *AccountAPI) UpdateUserName(ctx context.Context, userName string) error {
	return a.client.Request(ctx, "PATCH", "/dashboard/users/me", map[string]string{"userName": userName}, nil)
}

// Delete soft-deletes the account.
func (a *AccountAPI) Delete(ctx context.Context) error {
	return a.client.Request(ctx, "DELETE", "/dashboard/users/me", nil, nil)
}

var _ ports.AccountAPI = (*AccountAPI)(nil)
