package handlers

import (
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strconv"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/stretchr/testify/require"

	"github.com/hongminglow/loyalty-console/internal/auth"
	"github.com/hongminglow/loyalty-console/internal/backend"
	"github.com/hongminglow/loyalty-console/internal/middleware"
	"github.com/hongminglow/loyalty-console/internal/models"
	"github.com/hongminglow/loyalty-console/internal/paging"
	"github.com/hongminglow/loyalty-console/internal/session"
	"github.com/hongminglow/loyalty-console/internal/view"
	"github.com/hongminglow/loyalty-console/pkg/logging"
)

const testSecret = "0123456789abcdef0123456789abcdef"

// fakeAPI is an in-memory loyalty backend speaking the REST shapes the
// console expects.
type fakeAPI struct {
	mu        sync.Mutex
	merchants []models.Merchant
	rules     []models.ProgramRule
	txs       []models.Transaction
	users     map[string]models.User
	password  string
	otp       string

	// loginExpiry, when set, is returned as the token's expires_at.
	loginExpiry time.Time

	// status forces every privileged endpoint to answer with this code.
	status int
	// logoutStatus forces POST /auth/logout to answer with this code.
	logoutStatus int
	queries      []string
	verifyCalls  int
}

func newFakeAPI() *fakeAPI {
	return &fakeAPI{
		users:    map[string]models.User{"user-1": {ID: "user-1", Name: "Ada", Email: "ada@example.com"}},
		password: "correct-horse",
		otp:      "123456",
	}
}

func (f *fakeAPI) seedMerchants(n int) {
	f.merchants = nil
	for i := 1; i <= n; i++ {
		f.merchants = append(f.merchants, models.Merchant{
			ID:     fmt.Sprintf("m%d", i),
			UserID: "user-1",
			Name:   fmt.Sprintf("Merchant %d", i),
			Type:   models.MerchantTypeBank,
			Status: "active",
		})
	}
}

func (f *fakeAPI) lastQuery() url.Values {
	f.mu.Lock()
	defer f.mu.Unlock()
	if len(f.queries) == 0 {
		return nil
	}
	q, _ := url.ParseQuery(f.queries[len(f.queries)-1])
	return q
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func window[T any](items []T, q url.Values) ([]T, map[string]int) {
	page, _ := strconv.Atoi(q.Get("page"))
	limit, _ := strconv.Atoi(q.Get("limit"))
	total := len(items)
	pages := (total + limit - 1) / limit
	start := min((page-1)*limit, total)
	end := min(start+limit, total)
	return items[start:end], map[string]int{
		"current_page": page,
		"per_page":     limit,
		"total_items":  total,
		"total_pages":  pages,
	}
}

func (f *fakeAPI) privileged(next http.HandlerFunc) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		f.mu.Lock()
		status := f.status
		f.queries = append(f.queries, r.URL.RawQuery)
		f.mu.Unlock()
		if status != 0 {
			writeJSON(w, status, map[string]string{"message": http.StatusText(status)})
			return
		}
		if r.Header.Get("Authorization") != "Bearer backend-token" {
			writeJSON(w, http.StatusUnauthorized, map[string]string{"error": "invalid token"})
			return
		}
		f.mu.Lock()
		defer f.mu.Unlock()
		next(w, r)
	}
}

func (f *fakeAPI) handler() http.Handler {
	mux := http.NewServeMux()
	mux.HandleFunc("POST /api/auth/login", func(w http.ResponseWriter, r *http.Request) {
		var req struct{ Email, Password string }
		_ = json.NewDecoder(r.Body).Decode(&req)
		if req.Password != f.password {
			writeJSON(w, http.StatusUnauthorized, map[string]string{"message": "Invalid credentials"})
			return
		}
		body := map[string]any{"token": "Bearer backend-token", "user_id": "user-1"}
		if !f.loginExpiry.IsZero() {
			body["expires_at"] = f.loginExpiry
		}
		writeJSON(w, http.StatusOK, body)
	})
	mux.HandleFunc("POST /api/auth/register", func(w http.ResponseWriter, r *http.Request) {
		var req struct{ Email string }
		_ = json.NewDecoder(r.Body).Decode(&req)
		if req.Email == "taken@example.com" {
			writeJSON(w, http.StatusConflict, map[string]string{"message": "Email already registered"})
			return
		}
		writeJSON(w, http.StatusCreated, map[string]any{"id": "user-2", "email": req.Email})
	})
	mux.HandleFunc("POST /api/auth/verify", func(w http.ResponseWriter, r *http.Request) {
		var req struct{ OTP string }
		_ = json.NewDecoder(r.Body).Decode(&req)
		f.mu.Lock()
		f.verifyCalls++
		f.mu.Unlock()
		if req.OTP != f.otp {
			writeJSON(w, http.StatusBadRequest, map[string]string{"message": "Invalid OTP"})
			return
		}
		writeJSON(w, http.StatusOK, map[string]string{"message": "verified"})
	})
	mux.HandleFunc("POST /api/auth/logout", func(w http.ResponseWriter, r *http.Request) {
		if f.logoutStatus != 0 {
			writeJSON(w, f.logoutStatus, map[string]string{"message": "boom"})
			return
		}
		w.WriteHeader(http.StatusNoContent)
	})
	mux.HandleFunc("GET /api/users/{id}", f.privileged(func(w http.ResponseWriter, r *http.Request) {
		u, ok := f.users[r.PathValue("id")]
		if !ok {
			writeJSON(w, http.StatusNotFound, map[string]string{"message": "user not found"})
			return
		}
		writeJSON(w, http.StatusOK, u)
	}))
	mux.HandleFunc("GET /api/merchants", func(w http.ResponseWriter, r *http.Request) {
		f.mu.Lock()
		defer f.mu.Unlock()
		writeJSON(w, http.StatusOK, f.merchants)
	})
	mux.HandleFunc("GET /api/merchants/user/{id}", f.privileged(func(w http.ResponseWriter, r *http.Request) {
		items, info := window(f.merchants, r.URL.Query())
		writeJSON(w, http.StatusOK, map[string]any{"merchants": items, "pagination": info})
	}))
	mux.HandleFunc("GET /api/merchants/{id}", f.privileged(func(w http.ResponseWriter, r *http.Request) {
		for _, m := range f.merchants {
			if m.ID == r.PathValue("id") {
				writeJSON(w, http.StatusOK, m)
				return
			}
		}
		writeJSON(w, http.StatusNotFound, map[string]string{"message": "Merchant not found"})
	}))
	mux.HandleFunc("POST /api/merchants", f.privileged(func(w http.ResponseWriter, r *http.Request) {
		var m models.Merchant
		_ = json.NewDecoder(r.Body).Decode(&m)
		m.ID = fmt.Sprintf("m%d", len(f.merchants)+100)
		m.Status = "active"
		f.merchants = append(f.merchants, m)
		writeJSON(w, http.StatusCreated, m)
	}))
	mux.HandleFunc("PUT /api/merchants/{id}", f.privileged(func(w http.ResponseWriter, r *http.Request) {
		var upd models.Merchant
		_ = json.NewDecoder(r.Body).Decode(&upd)
		for i := range f.merchants {
			if f.merchants[i].ID == r.PathValue("id") {
				f.merchants[i].Name = upd.Name
				f.merchants[i].Type = upd.Type
				writeJSON(w, http.StatusOK, f.merchants[i])
				return
			}
		}
		writeJSON(w, http.StatusNotFound, map[string]string{"message": "Merchant not found"})
	}))
	mux.HandleFunc("DELETE /api/merchants/{id}", f.privileged(func(w http.ResponseWriter, r *http.Request) {
		if r.Header.Get("X-CSRF-Token") == "" {
			writeJSON(w, http.StatusForbidden, map[string]string{"message": "missing csrf"})
			return
		}
		kept := f.merchants[:0]
		for _, m := range f.merchants {
			if m.ID != r.PathValue("id") {
				kept = append(kept, m)
			}
		}
		f.merchants = kept
		w.WriteHeader(http.StatusNoContent)
	}))
	mux.HandleFunc("GET /api/transactions/merchant/{id}", f.privileged(func(w http.ResponseWriter, r *http.Request) {
		var matched []models.Transaction
		for _, tx := range f.txs {
			if id := r.PathValue("id"); id == "all" || tx.MerchantID == id {
				matched = append(matched, tx)
			}
		}
		items, info := window(matched, r.URL.Query())
		writeJSON(w, http.StatusOK, map[string]any{"transactions": items, "pagination": info})
	}))
	mux.HandleFunc("GET /api/program-rules", f.privileged(func(w http.ResponseWriter, r *http.Request) {
		items, info := window(f.rules, r.URL.Query())
		body := map[string]any{"data": items}
		for k, v := range info {
			body[k] = v
		}
		writeJSON(w, http.StatusOK, body)
	}))
	mux.HandleFunc("GET /api/program-rules/by-merchant/{id}", f.privileged(func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusOK, map[string]any{"data": []models.ProgramRule{}})
	}))
	return mux
}

// console is the page router wired against a fake backend.
type console struct {
	api      *fakeAPI
	handler  http.Handler
	sessions session.Store
	tokens   *auth.TokenManager
}

func newConsole(t *testing.T) *console {
	t.Helper()
	api := newFakeAPI()
	ts := httptest.NewServer(api.handler())
	t.Cleanup(ts.Close)

	keys, err := auth.DeriveKeys(testSecret)
	require.NoError(t, err)
	tokens := auth.NewTokenManager(keys.Signing, "loyalty-console", time.Hour)
	sessions := session.NewCookieStore(tokens, auth.NewSealer(keys.Sealing), false)
	views, err := view.NewRenderer()
	require.NoError(t, err)

	deps := Deps{
		Views:    views,
		Sessions: sessions,
		Paging:   paging.Options{Sizes: []int{10, 25, 50}, DefaultSize: 10},
		Logger:   logging.Nop(),
	}
	client := backend.NewClient(backend.Config{BaseURL: ts.URL + "/api"})

	authH := NewAuthHandler(deps, client, tokens, time.Hour, false)
	r := chi.NewRouter()
	NewHealthHandler(time.Now()).Register(r)
	authH.Register(r)
	r.Group(func(pr chi.Router) {
		pr.Use(middleware.RequireSession(sessions, logging.Nop()))
		pr.Use(middleware.VerifyCSRF)
		pr.Post("/logout", authH.Logout)
		NewDashboardHandler(deps, client).Register(pr)
		NewMerchantHandler(deps, client).Register(pr)
		NewReportHandler(deps, client).Register(pr)
	})
	return &console{api: api, handler: r, sessions: sessions, tokens: tokens}
}

// signedIn returns cookies for a live session plus its CSRF token.
func (c *console) signedIn(t *testing.T) ([]*http.Cookie, string) {
	t.Helper()
	s, err := session.New("user-1", "Ada", "backend-token", time.Time{}, time.Hour)
	require.NoError(t, err)
	rec := httptest.NewRecorder()
	require.NoError(t, c.sessions.Save(t.Context(), rec, s))
	return rec.Result().Cookies(), s.CSRFToken
}

func (c *console) get(t *testing.T, target string, cookies []*http.Cookie) *httptest.ResponseRecorder {
	t.Helper()
	req := httptest.NewRequest(http.MethodGet, target, nil)
	for _, ck := range cookies {
		req.AddCookie(ck)
	}
	rec := httptest.NewRecorder()
	c.handler.ServeHTTP(rec, req)
	return rec
}

func (c *console) post(t *testing.T, target string, form url.Values, cookies []*http.Cookie) *httptest.ResponseRecorder {
	t.Helper()
	req := httptest.NewRequest(http.MethodPost, target, strings.NewReader(form.Encode()))
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	for _, ck := range cookies {
		req.AddCookie(ck)
	}
	rec := httptest.NewRecorder()
	c.handler.ServeHTTP(rec, req)
	return rec
}

// live returns the cookies set (not expired) by rec, keyed by name.
func live(rec *httptest.ResponseRecorder) map[string]*http.Cookie {
	out := map[string]*http.Cookie{}
	for _, ck := range rec.Result().Cookies() {
		if ck.MaxAge >= 0 && ck.Value != "" {
			out[ck.Name] = ck
		}
	}
	return out
}

func expired(rec *httptest.ResponseRecorder) map[string]bool {
	out := map[string]bool{}
	for _, ck := range rec.Result().Cookies() {
		if ck.MaxAge < 0 {
			out[ck.Name] = true
		}
	}
	return out
}
