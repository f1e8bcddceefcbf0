package handlers

import (
	"context"
	"net/http"
	"net/url"

	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/hongminglow/loyalty-console/internal/backend"
	"github.com/hongminglow/loyalty-console/internal/models"
	"github.com/hongminglow/loyalty-console/internal/paging"
	"github.com/hongminglow/loyalty-console/internal/view"
)

// ReportAPI is the slice of the backend the read-only report pages use.
type ReportAPI interface {
	AllMerchants(ctx context.Context) ([]models.Merchant, error)
	MerchantTransactions(ctx context.Context, creds backend.Credentials, merchantID string, page, limit int) (backend.Page[models.Transaction], error)
	ProgramRules(ctx context.Context, creds backend.Credentials, merchantID string, page, limit int) (backend.Page[models.ProgramRule], error)
}

// ReportHandler serves the transaction history and program-rule pages. Both
// are paginated and filterable by merchant.
type ReportHandler struct {
	pages
	api ReportAPI
}

// NewReportHandler wires the report pages to api.
func NewReportHandler(deps Deps, api ReportAPI) *ReportHandler {
	return &ReportHandler{pages: newPages(deps), api: api}
}

// Register mounts the transaction and program-rule routes on r.
func (h *ReportHandler) Register(r chi.Router) {
	r.Get("/transactions", h.transactions)
	r.Get("/program-rules", h.programRules)
}

// report is one fetched page of a report plus the merchant dropdown.
type report[T any] struct {
	cursor    paging.Cursor
	merchant  string
	result    backend.Page[T]
	merchants []models.Merchant
	err       error
}

// fetchReport loads a report page and the merchant dropdown concurrently.
// A dropdown failure is logged and leaves the dropdown with "All Merchants" only.
func fetchReport[T any](h *ReportHandler, r *http.Request, fetch func(ctx context.Context, merchant string, c paging.Cursor) (backend.Page[T], error)) report[T] {
	rep := report[T]{cursor: h.cursor(r), merchant: selectedMerchant(r)}

	var g errgroup.Group
	g.Go(func() error {
		var err error
		rep.result, err = fetch(r.Context(), rep.merchant, rep.cursor)
		return err
	})
	g.Go(func() error {
		var err error
		if rep.merchants, err = h.api.AllMerchants(r.Context()); err != nil {
			h.logger.Warn("load merchant filter", zap.Error(err))
		}
		return nil
	})
	rep.err = g.Wait()
	return rep
}

func (h *ReportHandler) transactions(w http.ResponseWriter, r *http.Request) {
	creds := current(r).Credentials()
	rep := fetchReport(h, r, func(ctx context.Context, merchant string, c paging.Cursor) (backend.Page[models.Transaction], error) {
		return h.api.MerchantTransactions(ctx, creds, merchant, c.Page, c.PageSize)
	})
	if rep.err != nil && h.expired(w, r, rep.err) {
		return
	}
	page := view.TransactionsPage{
		Layout: h.layout(w, r, "Transactions", "transactions"),
		Rows:   view.TransactionRows(rep.result.Items),
		Pager:  h.pager("/transactions", rep.cursor, rep.merchant, rep.result.Info),
		Filter: view.NewMerchantFilter(rep.merchants, rep.merchant),
	}
	status := h.reportStatus(&page.Layout, "transactions", rep.err, rep.result.PaginationErr)
	h.renderList(w, r, status, view.PageTransactions, page)
}

func (h *ReportHandler) programRules(w http.ResponseWriter, r *http.Request) {
	creds := current(r).Credentials()
	rep := fetchReport(h, r, func(ctx context.Context, merchant string, c paging.Cursor) (backend.Page[models.ProgramRule], error) {
		return h.api.ProgramRules(ctx, creds, merchant, c.Page, c.PageSize)
	})
	if rep.err != nil && h.expired(w, r, rep.err) {
		return
	}
	page := view.ProgramRulesPage{
		Layout: h.layout(w, r, "Program Rules", "program_rules"),
		Rows:   view.ProgramRuleRows(rep.result.Items),
		Pager:  h.pager("/program-rules", rep.cursor, rep.merchant, rep.result.Info),
		Filter: view.NewMerchantFilter(rep.merchants, rep.merchant),
	}
	status := h.reportStatus(&page.Layout, "program rules", rep.err, rep.result.PaginationErr)
	h.renderList(w, r, status, view.PageProgramRules, page)
}

func (h *ReportHandler) pager(path string, c paging.Cursor, merchant string, info *paging.Info) view.Pager {
	p := view.Pager{View: paging.NewView(c, info, h.paging.Sizes), Path: path}
	if merchant != backend.AllMerchantsFilter {
		p.Extra = url.Values{"merchant": {merchant}}
	}
	return p
}

// reportStatus logs fetch problems and flashes a load failure on the layout.
func (h *ReportHandler) reportStatus(l *view.Layout, what string, err, paginationErr error) int {
	if err != nil {
		h.logger.Error("load "+what, zap.Error(err))
		l.Flash = danger(backend.Message(err, "Failed to load "+what+"."))
		return http.StatusBadGateway
	}
	if paginationErr != nil {
		h.logger.Warn(what+" pagination", zap.Error(paginationErr))
	}
	return http.StatusOK
}

func selectedMerchant(r *http.Request) string {
	if m := r.URL.Query().Get("merchant"); m != "" {
		return m
	}
	return backend.AllMerchantsFilter
}
