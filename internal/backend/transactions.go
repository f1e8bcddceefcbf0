package backend

import (
	"context"
	"encoding/json"
	"net/http"
	"net/url"

	"github.com/hongminglow/loyalty-console/internal/models"
)

// MerchantTransactions lists one page of transactions. An empty or "all"
// merchantID asks for every merchant the operator can see.
func (c *Client) MerchantTransactions(ctx context.Context, creds Credentials, merchantID string, page, limit int) (Page[models.Transaction], error) {
	q := pageQuery(page, limit)
	segment := AllMerchantsFilter
	if merchantID != "" && merchantID != AllMerchantsFilter {
		segment = merchantID
		q.Set("merchant_id", merchantID)
	}
	var body struct {
		Transactions []models.Transaction `json:"transactions"`
		Pagination   json.RawMessage      `json:"pagination"`
	}
	err := c.do(ctx, call{
		method:   http.MethodGet,
		endpoint: "/transactions/merchant/:id",
		path:     "/transactions/merchant/" + url.PathEscape(segment),
		query:    q,
		creds:    &creds,
		out:      &body,
	})
	if err != nil {
		return Page[models.Transaction]{}, err
	}
	return nestedPage(body.Transactions, body.Pagination), nil
}
