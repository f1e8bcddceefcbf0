package backend

import (
	"context"
	"net/http"

	"github.com/hongminglow/loyalty-console/internal/models"
	"github.com/hongminglow/loyalty-console/internal/models/dto"
)

// Register creates an account; the backend then emails an OTP.
func (c *Client) Register(ctx context.Context, req dto.RegisterRequest) (models.User, error) {
	var user models.User
	err := c.do(ctx, call{method: http.MethodPost, endpoint: "/auth/register", path: "/auth/register", body: req, out: &user})
	return user, err
}

// Verify submits the emailed OTP.
func (c *Client) Verify(ctx context.Context, req dto.VerifyRequest) error {
	return c.do(ctx, call{method: http.MethodPost, endpoint: "/auth/verify", path: "/auth/verify", body: req})
}

// Login exchanges credentials for a backend session token.
func (c *Client) Login(ctx context.Context, req dto.LoginRequest) (dto.LoginResponse, error) {
	var out dto.LoginResponse
	err := c.do(ctx, call{method: http.MethodPost, endpoint: "/auth/login", path: "/auth/login", body: req, out: &out})
	return out, err
}

// Logout revokes the backend session behind creds.
func (c *Client) Logout(ctx context.Context, creds Credentials) error {
	return c.do(ctx, call{method: http.MethodPost, endpoint: "/auth/logout", path: "/auth/logout", creds: &creds})
}
