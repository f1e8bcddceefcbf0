package backend

import (
	"context"
	"net/http"
	"net/url"

	"github.com/hongminglow/loyalty-console/internal/models"
)

// User fetches a user profile by id.
func (c *Client) User(ctx context.Context, creds Credentials, id string) (models.User, error) {
	var user models.User
	err := c.do(ctx, call{method: http.MethodGet, endpoint: "/users/:id", path: "/users/" + url.PathEscape(id), creds: &creds, out: &user})
	return user, err
}

// Me fetches the profile of the operator behind creds.
func (c *Client) Me(ctx context.Context, creds Credentials) (models.User, error) {
	var user models.User
	err := c.do(ctx, call{method: http.MethodGet, endpoint: "/users/me", path: "/users/me", creds: &creds, out: &user})
	return user, err
}
