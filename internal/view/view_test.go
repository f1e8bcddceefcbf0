package view

import (
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/hongminglow/loyalty-console/internal/flash"
	"github.com/hongminglow/loyalty-console/internal/models"
	"github.com/hongminglow/loyalty-console/internal/paging"
)

func newRenderer(t *testing.T) *Renderer {
	t.Helper()
	r, err := NewRenderer()
	require.NoError(t, err)
	return r
}

func merchants(n int) []models.Merchant {
	out := make([]models.Merchant, n)
	for i := range out {
		out[i] = models.Merchant{ID: "m" + string(rune('a'+i)), Name: "Shop", Type: models.MerchantTypeBank, Status: "active"}
	}
	return out
}

func TestRenderMerchantsPage(t *testing.T) {
	r := newRenderer(t)
	info := &paging.Info{CurrentPage: 1, PerPage: 10, TotalItems: 3, TotalPages: 1}
	page := MerchantsPage{
		Layout: Layout{Title: "Merchants", Active: "merchants", SignedIn: true, UserName: "Ada", CSRFToken: "tok",
			Flash: &flash.Message{Kind: flash.Success, Text: "Saved"}},
		Rows:  MerchantRows(merchants(3)),
		Pager: Pager{View: paging.NewView(paging.Cursor{Page: 1, PageSize: 10}, info, []int{10, 25}), Path: "/merchants"},
		Types: models.MerchantTypes,
	}

	rec := httptest.NewRecorder()
	require.NoError(t, r.Page(rec, http.StatusOK, PageMerchants, page))

	body := rec.Body.String()
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "text/html; charset=utf-8", rec.Header().Get("Content-Type"))
	assert.Equal(t, 3, strings.Count(body, `data-row="merchant"`))
	assert.NotContains(t, body, `data-row="empty"`)
	assert.Contains(t, body, "alert-success")
	assert.Contains(t, body, `value="tok"`)
	assert.Contains(t, body, `<button class="btn btn-outline-secondary btn-sm" disabled data-next>`)
	assert.NotContains(t, body, "data-merchant-form")
}

func TestRenderEmptyListHasOnePlaceholder(t *testing.T) {
	r := newRenderer(t)
	cursor := paging.Cursor{Page: 1, PageSize: 10}
	info := &paging.Info{CurrentPage: 1, PerPage: 10}

	tests := []struct {
		page string
		data any
	}{
		{PageMerchants, MerchantsPage{Rows: MerchantRows(nil), Pager: Pager{View: paging.NewView(cursor, info, nil)}}},
		{PageTransactions, TransactionsPage{Rows: TransactionRows(nil), Pager: Pager{View: paging.NewView(cursor, info, nil)}}},
		{PageProgramRules, ProgramRulesPage{Rows: ProgramRuleRows(nil), Pager: Pager{View: paging.NewView(cursor, info, nil)}}},
	}
	for _, tt := range tests {
		t.Run(tt.page, func(t *testing.T) {
			rec := httptest.NewRecorder()
			require.NoError(t, r.Page(rec, http.StatusOK, tt.page, tt.data))
			body := rec.Body.String()
			assert.Equal(t, 1, strings.Count(body, "data-row="))
			assert.Equal(t, 1, strings.Count(body, `data-row="empty"`))
			assert.NotContains(t, body, "alert-danger")
		})
	}
}

func TestFragmentRendersOnlyRows(t *testing.T) {
	r := newRenderer(t)
	page := MerchantsPage{Rows: MerchantRows(merchants(2))}

	rec := httptest.NewRecorder()
	require.NoError(t, r.Fragment(rec, http.StatusOK, PageMerchants, BlockRows, page))

	body := rec.Body.String()
	assert.Equal(t, 2, strings.Count(body, `data-row="merchant"`))
	assert.NotContains(t, body, "<html")
	assert.NotContains(t, body, "<thead>")
}

func TestPagerHiddenWhenPaginationUnknown(t *testing.T) {
	r := newRenderer(t)
	page := TransactionsPage{
		Rows:   TransactionRows([]models.Transaction{{ID: "t1", Status: "completed", Amount: 12.5}}),
		Pager:  Pager{View: paging.NewView(paging.Cursor{Page: 1, PageSize: 10}, nil, []int{10})},
		Filter: NewMerchantFilter(nil, ""),
	}
	rec := httptest.NewRecorder()
	require.NoError(t, r.Page(rec, http.StatusOK, PageTransactions, page))

	body := rec.Body.String()
	assert.Equal(t, 1, strings.Count(body, `data-row="transaction"`))
	assert.NotContains(t, body, "data-pager")
	assert.Contains(t, body, "bg-gradient-success")
	assert.Contains(t, body, "$12.50")
}

func TestSignUpShowsOTPModal(t *testing.T) {
	r := newRenderer(t)

	rec := httptest.NewRecorder()
	require.NoError(t, r.Page(rec, http.StatusOK, PageSignUp, SignUpPage{Layout: Layout{Title: "Sign up"}}))
	assert.NotContains(t, rec.Body.String(), "data-otp-modal")

	rec = httptest.NewRecorder()
	require.NoError(t, r.Page(rec, http.StatusOK, PageSignUp, SignUpPage{OTP: &OTPModal{Email: "ada@example.com"}}))
	assert.Contains(t, rec.Body.String(), "data-otp-modal")
	assert.Contains(t, rec.Body.String(), "ada@example.com")
}

func TestUnknownPage(t *testing.T) {
	r := newRenderer(t)
	err := r.Page(httptest.NewRecorder(), http.StatusOK, "nope", nil)
	assert.Error(t, err)
}

func TestPagerLinksKeepFilter(t *testing.T) {
	info := &paging.Info{CurrentPage: 2, PerPage: 10, TotalItems: 35, TotalPages: 4}
	p := Pager{
		View:  paging.NewView(paging.Cursor{Page: 2, PageSize: 10}, info, []int{10, 25}),
		Path:  "/transactions",
		Extra: url.Values{"merchant": {"m1"}},
	}
	assert.Equal(t, "/transactions?limit=10&merchant=m1&page=3", p.NextURL())
	assert.Equal(t, "/transactions?limit=10&merchant=m1&page=1", p.PrevURL())
	assert.Equal(t, "/transactions?limit=25&merchant=m1&page=1", p.SizeURL(25))
}

func TestStatusBadge(t *testing.T) {
	tests := map[string]string{
		"completed": "bg-gradient-success",
		"Pending":   "bg-gradient-warning",
		"failed":    "bg-gradient-danger",
		"refunded":  "bg-gradient-secondary",
		"":          "bg-gradient-secondary",
	}
	for status, want := range tests {
		assert.Equal(t, want, StatusBadge(status), status)
	}
}

func TestRows(t *testing.T) {
	created := time.Date(2024, 3, 5, 14, 30, 0, 0, time.UTC)
	rows := MerchantRows([]models.Merchant{
		{ID: "1", Name: "A", Type: models.MerchantTypeBank, Status: "active", CreatedAt: created},
		{ID: "2", Name: "", Status: "inactive"},
	})
	require.Len(t, rows, 2)
	assert.Equal(t, "text-success", rows[0].StatusClass)
	assert.Equal(t, "Mar 5, 2024 2:30 PM", rows[0].Created)
	assert.Equal(t, NotAvailable, rows[0].Updated)
	assert.Equal(t, "text-dark", rows[1].StatusClass)
	assert.Equal(t, NotAvailable, rows[1].Name)

	to := time.Date(2024, 12, 31, 0, 0, 0, 0, time.UTC)
	rules := ProgramRuleRows([]models.ProgramRule{
		{ProgramName: "Gold", RuleName: "Double", Multiplier: 2, PointsAwarded: 10, EffectiveFrom: created},
		{ProgramName: "Gold", RuleName: "Bounded", Multiplier: 1.5, EffectiveFrom: created, EffectiveTo: &to},
	})
	assert.Equal(t, "Mar 5, 2024 - N/A", rules[0].Effective)
	assert.Equal(t, "2x", rules[0].Multiplier)
	assert.Equal(t, "Mar 5, 2024 - Dec 31, 2024", rules[1].Effective)
	assert.Equal(t, "1.5x", rules[1].Multiplier)

	txs := TransactionRows([]models.Transaction{{}})
	assert.Equal(t, "Unknown", txs[0].Status)
	assert.Equal(t, NotAvailable, txs[0].Date)
}

func TestMerchantFilter(t *testing.T) {
	ms := []models.Merchant{{ID: "m1", Name: "Alpha"}, {ID: "m2", Name: "Beta"}}

	f := NewMerchantFilter(ms, "m2")
	assert.Equal(t, "Beta", f.Label)
	assert.Len(t, f.Options, 3)
	assert.Equal(t, "all", f.Options[0].ID)

	f = NewMerchantFilter(ms, "")
	assert.Equal(t, "all", f.Selected)
	assert.Equal(t, "All Merchants", f.Label)
}
