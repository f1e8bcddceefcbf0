package handlers

import (
	"context"
	"net/http"

	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/hongminglow/loyalty-console/internal/backend"
	"github.com/hongminglow/loyalty-console/internal/models"
	"github.com/hongminglow/loyalty-console/internal/view"
)

// DashboardAPI is the slice of the backend the dashboard uses.
type DashboardAPI interface {
	User(ctx context.Context, creds backend.Credentials, id string) (models.User, error)
	UserMerchants(ctx context.Context, creds backend.Credentials, userID string, page, limit int) (backend.Page[models.Merchant], error)
}

// DashboardHandler serves the landing page shown after sign-in.
type DashboardHandler struct {
	pages
	api DashboardAPI
}

// NewDashboardHandler wires the dashboard to api.
func NewDashboardHandler(deps Deps, api DashboardAPI) *DashboardHandler {
	return &DashboardHandler{pages: newPages(deps), api: api}
}

// Register mounts the dashboard route on r.
func (h *DashboardHandler) Register(r chi.Router) {
	r.Get("/dashboard", h.show)
}

func (h *DashboardHandler) show(w http.ResponseWriter, r *http.Request) {
	s := current(r)
	creds := s.Credentials()

	var (
		user                 models.User
		merchants            backend.Page[models.Merchant]
		userErr, merchantErr error
		g                    errgroup.Group
	)
	g.Go(func() error {
		user, userErr = h.api.User(r.Context(), creds, s.UserID)
		return userErr
	})
	g.Go(func() error {
		merchants, merchantErr = h.api.UserMerchants(r.Context(), creds, s.UserID, 1, 1)
		return merchantErr
	})
	_ = g.Wait()

	if h.expired(w, r, userErr) || h.expired(w, r, merchantErr) {
		return
	}

	page := view.DashboardPage{Layout: h.layout(w, r, "Dashboard", "dashboard")}
	if userErr != nil {
		h.logger.Warn("load profile", zap.String("user_id", s.UserID), zap.Error(userErr))
	} else {
		page.UserName = user.DisplayName()
		page.Email = user.Email
	}
	if merchantErr != nil {
		h.logger.Warn("load merchant summary", zap.String("user_id", s.UserID), zap.Error(merchantErr))
	} else if merchants.Info != nil {
		page.MerchantCount = merchants.Info.TotalItems
		page.MerchantCountKnown = true
	}
	h.render(w, http.StatusOK, view.PageDashboard, page)
}
