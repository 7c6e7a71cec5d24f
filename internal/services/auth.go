package services

import (
	"context"
	"encoding/base64"
	"net/http"

	"reelist/internal/models"
	"reelist/internal/shared"
)

// AuthAPI wraps the auth collaborator endpoints (/auth/*).
//
// The rest of the application only consumes the resulting [models.User] shape
// and the failure signal; token handling is the session manager's business.
type AuthAPI struct {
	client *Client
}

// NewAuthAPI creates an AuthAPI issuing requests through the shared client.
func NewAuthAPI(client *Client) *AuthAPI {
	return &AuthAPI{client: client}
}

type authResponse struct {
	User  models.User `json:"user"`
	Token string      `json:"token"`
}

// Signup registers a new account and returns the user plus bearer token.
func (a *AuthAPI) Signup(ctx context.Context, username, password string) (*models.User, string, error) {
	var resp authResponse
	body := map[string]string{"username": username, "password": password}
	if err := a.client.Do(ctx, http.MethodPost, "/auth/signup", body, &resp); err != nil {
		return nil, "", err
	}
	return &resp.User, resp.Token, nil
}

// Login authenticates an existing account and returns the user plus bearer token.
func (a *AuthAPI) Login(ctx context.Context, username, password string) (*models.User, string, error) {
	var resp authResponse
	body := map[string]string{"username": username, "password": password}
	if err := a.client.Do(ctx, http.MethodPost, "/auth/login", body, &resp); err != nil {
		return nil, "", err
	}
	return &resp.User, resp.Token, nil
}

// UpdateProfile changes the username on the current account.
func (a *AuthAPI) UpdateProfile(ctx context.Context, username string) (*models.User, error) {
	var resp struct {
		User models.User `json:"user"`
	}
	body := map[string]string{"username": username}
	if err := a.client.Do(ctx, http.MethodPut, "/auth/profile", body, &resp); err != nil {
		return nil, err
	}
	return &resp.User, nil
}

// UploadAvatar sends avatar image bytes and returns the refreshed user.
func (a *AuthAPI) UploadAvatar(ctx context.Context, path string) (*models.User, error) {
	data, err := shared.VerifyAndReadFile(path)
	if err != nil {
		return nil, err
	}

	var resp struct {
		User models.User `json:"user"`
	}
	body := map[string]string{"avatar": base64.StdEncoding.EncodeToString(data)}
	if err := a.client.Do(ctx, http.MethodPost, "/auth/avatar", body, &resp); err != nil {
		return nil, err
	}
	return &resp.User, nil
}

// RemoveAvatar clears the avatar on the current account.
func (a *AuthAPI) RemoveAvatar(ctx context.Context) (*models.User, error) {
	var resp struct {
		User models.User `json:"user"`
	}
	if err := a.client.Do(ctx, http.MethodDelete, "/auth/avatar", nil, &resp); err != nil {
		return nil, err
	}
	return &resp.User, nil
}

// DeleteAccount removes the account on the server. Local teardown is the
// session manager's responsibility afterwards.
func (a *AuthAPI) DeleteAccount(ctx context.Context) error {
	return a.client.Do(ctx, http.MethodDelete, "/auth/account", nil, nil)
}
