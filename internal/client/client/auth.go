package client

import (
	"context"
	"net/http"

	"github.com/dmitrijs2005/brokerdesk/internal/client/models"
)

const (
	loginPath      = "/auth/login"
	adminLoginPath = "/auth/admin/login"
	profilePath    = "/auth/profile"
	healthPath     = "/health"
)

type authData struct {
	User  models.Principal `json:"user"`
	Token string           `json:"token"`
}

// Login authenticates against the backend. Admin logins use the admin
// endpoint. The returned token is not installed; see SetToken.
func (c *Client) Login(ctx context.Context, creds models.Credentials, admin bool) (models.Principal, string, error) {
	path := loginPath
	if admin {
		path = adminLoginPath
	}

	data, err := c.do(ctx, http.MethodPost, path, nil, creds)
	if err != nil {
		return models.Principal{}, "", err
	}

	var out authData
	if err := decodeInto(data, &out); err != nil {
		return models.Principal{}, "", err
	}
	if out.Token == "" {
		return models.Principal{}, "", &APIError{Status: http.StatusBadGateway, Message: "login response carries no token"}
	}
	return out.User, out.Token, nil
}

// Profile fetches the principal owning the current token.
func (c *Client) Profile(ctx context.Context) (models.Principal, error) {
	data, err := c.do(ctx, http.MethodGet, profilePath, nil, nil)
	if err != nil {
		return models.Principal{}, err
	}
	var p models.Principal
	if err := member(data, "user", &p); err != nil {
		return models.Principal{}, err
	}
	return p, nil
}

// Ping checks backend liveness.
func (c *Client) Ping(ctx context.Context) error {
	_, err := c.do(ctx, http.MethodGet, healthPath, nil, nil)
	return err
}
