package backend

import (
	"context"
	"encoding/json"
	"net/http"
	"net/url"

	"github.com/hongminglow/loyalty-console/internal/models"
)

// AllMerchantsFilter is the filter value meaning "no merchant filter".
const AllMerchantsFilter = "all"

// ProgramRules lists one page of program rules, optionally for one merchant.
func (c *Client) ProgramRules(ctx context.Context, creds Credentials, merchantID string, page, limit int) (Page[models.ProgramRule], error) {
	cl := call{
		method:   http.MethodGet,
		endpoint: "/program-rules",
		path:     "/program-rules",
		query:    pageQuery(page, limit),
		creds:    &creds,
	}
	if merchantID != "" && merchantID != AllMerchantsFilter {
		cl.endpoint = "/program-rules/by-merchant/:id"
		cl.path = "/program-rules/by-merchant/" + url.PathEscape(merchantID)
	}
	var body map[string]json.RawMessage
	cl.out = &body
	if err := c.do(ctx, cl); err != nil {
		return Page[models.ProgramRule]{}, err
	}
	return flatPage[models.ProgramRule](body)
}
