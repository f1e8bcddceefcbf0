package handlers

import (
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/hongminglow/loyalty-console/internal/http/respond"
	"github.com/hongminglow/loyalty-console/internal/view"
)

// HealthHandler returns uptime and basic status.
type HealthHandler struct {
	startedAt time.Time
}

// NewHealthHandler creates a health endpoint handler.
func NewHealthHandler(startedAt time.Time) *HealthHandler {
	return &HealthHandler{startedAt: startedAt}
}

// Register wires the handler into a router.
func (h *HealthHandler) Register(r chi.Router) {
	r.Get("/health", h.handle)
}

func (h *HealthHandler) handle(w http.ResponseWriter, r *http.Request) {
	respond.JSON(w, r, http.StatusOK, "ok", map[string]string{
		"status": "ok",
		"uptime": time.Since(h.startedAt).Truncate(time.Second).String(),
	})
}

// ErrorPages renders the console's own error pages.
type ErrorPages struct {
	pages
}

// NewErrorPages returns the handler for unmatched routes.
func NewErrorPages(deps Deps) *ErrorPages {
	return &ErrorPages{pages: newPages(deps)}
}

// NotFound renders the 404 page inside the console layout.
func (h *ErrorPages) NotFound(w http.ResponseWriter, r *http.Request) {
	h.render(w, http.StatusNotFound, view.PageError, view.ErrorPage{
		Layout:  h.layout(w, r, "Not found", ""),
		Status:  http.StatusNotFound,
		Message: "The page you are looking for does not exist.",
	})
}
