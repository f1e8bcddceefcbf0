package handlers

import (
	"errors"
	"net/http"

	"go.uber.org/zap"

	"github.com/hongminglow/loyalty-console/internal/backend"
	"github.com/hongminglow/loyalty-console/internal/flash"
	"github.com/hongminglow/loyalty-console/internal/middleware"
	"github.com/hongminglow/loyalty-console/internal/models"
	"github.com/hongminglow/loyalty-console/internal/observability/metrics"
	"github.com/hongminglow/loyalty-console/internal/paging"
	"github.com/hongminglow/loyalty-console/internal/session"
	"github.com/hongminglow/loyalty-console/internal/view"
	"github.com/hongminglow/loyalty-console/pkg/logging"
)

// Deps are shared by every page handler.
type Deps struct {
	Views    *view.Renderer
	Sessions session.Store
	Paging   paging.Options
	Metrics  *metrics.ConsoleMetrics
	Logger   *logging.Logger
}

// pages holds the helpers common to all console pages.
type pages struct {
	views    *view.Renderer
	sessions session.Store
	paging   paging.Options
	metrics  *metrics.ConsoleMetrics
	logger   *logging.Logger
}

func newPages(d Deps) pages {
	logger := d.Logger
	if logger == nil {
		logger = logging.Nop()
	}
	return pages{views: d.Views, sessions: d.Sessions, paging: d.Paging, metrics: d.Metrics, logger: logger}
}

// layout builds the page chrome and consumes any pending flash message.
// Row fragments never show the flash, so they leave it for the next full page.
func (p pages) layout(w http.ResponseWriter, r *http.Request, title, active string) view.Layout {
	l := view.Layout{Title: title, Active: active}
	if !fragment(r) {
		if m, ok := flash.Pop(w, r); ok {
			l.Flash = &m
		}
	}
	if s, ok := session.FromContext(r.Context()); ok {
		l.SignedIn = true
		l.UserName = models.User{Name: s.UserName}.DisplayName()
		l.CSRFToken = s.CSRFToken
	}
	return l
}

func (p pages) render(w http.ResponseWriter, status int, name string, data any) {
	if err := p.views.Page(w, status, name, data); err != nil {
		p.logger.Error("render page", zap.String("page", name), zap.Error(err))
		http.Error(w, "failed to render page", http.StatusInternalServerError)
	}
}

// renderList renders a list page, or only its table rows for ?fragment=rows.
func (p pages) renderList(w http.ResponseWriter, r *http.Request, status int, name string, data any) {
	if !fragment(r) {
		p.render(w, status, name, data)
		return
	}
	if err := p.views.Fragment(w, status, name, view.BlockRows, data); err != nil {
		p.logger.Error("render fragment", zap.String("page", name), zap.Error(err))
		http.Error(w, "failed to render rows", http.StatusInternalServerError)
	}
}

func fragment(r *http.Request) bool {
	return r.URL.Query().Get("fragment") == view.BlockRows
}

// expired handles a backend 401: the session is dropped and the operator is
// sent back to sign in. It reports whether err was a 401.
func (p pages) expired(w http.ResponseWriter, r *http.Request, err error) bool {
	if !errors.Is(err, backend.ErrUnauthorized) {
		return false
	}
	if clearErr := p.sessions.Clear(r.Context(), w, r); clearErr != nil {
		p.logger.Warn("clear session after 401", zap.Error(clearErr))
	}
	flash.SetError(w, middleware.ExpiredMessage)
	redirect(w, r, middleware.SignInPath)
	return true
}

func (p pages) cursor(r *http.Request) paging.Cursor {
	return p.paging.Parse(r.URL.Query())
}

func current(r *http.Request) session.Session {
	s, _ := session.FromContext(r.Context())
	return s
}

func redirect(w http.ResponseWriter, r *http.Request, path string) {
	http.Redirect(w, r, path, http.StatusSeeOther)
}

func danger(text string) *flash.Message {
	return &flash.Message{Kind: flash.Danger, Text: text}
}

// failureStatus maps a backend error to the status of the re-rendered page:
// client errors pass through, anything else is a bad gateway.
func failureStatus(err error) int {
	var apiErr *backend.APIError
	if errors.As(err, &apiErr) && apiErr.Status >= 400 && apiErr.Status < 500 {
		return apiErr.Status
	}
	return http.StatusBadGateway
}
