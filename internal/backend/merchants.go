package backend

import (
	"context"
	"encoding/json"
	"net/http"
	"net/url"

	"github.com/hongminglow/loyalty-console/internal/models"
	"github.com/hongminglow/loyalty-console/internal/models/dto"
)

// AllMerchants lists every merchant. Used to fill filter dropdowns.
func (c *Client) AllMerchants(ctx context.Context) ([]models.Merchant, error) {
	var out []models.Merchant
	err := c.do(ctx, call{method: http.MethodGet, endpoint: "/merchants", path: "/merchants", out: &out})
	return out, err
}

// UserMerchants lists one page of the merchants owned by userID.
func (c *Client) UserMerchants(ctx context.Context, creds Credentials, userID string, page, limit int) (Page[models.Merchant], error) {
	var body struct {
		Merchants  []models.Merchant `json:"merchants"`
		Pagination json.RawMessage   `json:"pagination"`
	}
	err := c.do(ctx, call{
		method:   http.MethodGet,
		endpoint: "/merchants/user/:id",
		path:     "/merchants/user/" + url.PathEscape(userID),
		query:    pageQuery(page, limit),
		creds:    &creds,
		out:      &body,
	})
	if err != nil {
		return Page[models.Merchant]{}, err
	}
	return nestedPage(body.Merchants, body.Pagination), nil
}

// Merchant fetches one merchant.
func (c *Client) Merchant(ctx context.Context, creds Credentials, id string) (models.Merchant, error) {
	var m models.Merchant
	err := c.do(ctx, call{method: http.MethodGet, endpoint: "/merchants/:id", path: "/merchants/" + url.PathEscape(id), creds: &creds, out: &m})
	return m, err
}

// CreateMerchant adds a merchant for the operator.
func (c *Client) CreateMerchant(ctx context.Context, creds Credentials, req dto.CreateMerchantRequest) (models.Merchant, error) {
	var m models.Merchant
	err := c.do(ctx, call{method: http.MethodPost, endpoint: "/merchants", path: "/merchants", creds: &creds, body: req, out: &m})
	return m, err
}

// UpdateMerchant renames or retypes a merchant.
func (c *Client) UpdateMerchant(ctx context.Context, creds Credentials, id string, req dto.UpdateMerchantRequest) (models.Merchant, error) {
	var m models.Merchant
	err := c.do(ctx, call{method: http.MethodPut, endpoint: "/merchants/:id", path: "/merchants/" + url.PathEscape(id), creds: &creds, body: req, out: &m})
	return m, err
}

// DeactivateMerchant deletes (deactivates) a merchant.
func (c *Client) DeactivateMerchant(ctx context.Context, creds Credentials, id string) error {
	return c.do(ctx, call{method: http.MethodDelete, endpoint: "/merchants/:id", path: "/merchants/" + url.PathEscape(id), creds: &creds})
}
