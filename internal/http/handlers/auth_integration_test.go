package handlers

import (
	"net/http"
	"net/http/httptest"
	"net/url"
	"os"
	"strings"
	"testing"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/joho/godotenv"

	"github.com/hongminglow/loyalty-console/internal/auth"
	"github.com/hongminglow/loyalty-console/internal/backend"
	"github.com/hongminglow/loyalty-console/internal/paging"
	"github.com/hongminglow/loyalty-console/internal/session"
	"github.com/hongminglow/loyalty-console/internal/view"
	"github.com/hongminglow/loyalty-console/pkg/logging"
)

// TestSignInIntegration signs in through the console against a live loyalty backend.
func TestSignInIntegration(t *testing.T) {
	if os.Getenv("RUN_CONSOLE_INTEGRATION") != "true" {
		t.Skip("set RUN_CONSOLE_INTEGRATION=true to run this integration test")
	}

	loadDotEnv()
	baseURL := mustGetEnv(t, "API_BASE_URL")
	email := mustGetEnv(t, "INTEGRATION_EMAIL")
	password := mustGetEnv(t, "INTEGRATION_PASSWORD")

	keys, err := auth.DeriveKeys(mustGetEnv(t, "SESSION_SECRET"))
	if err != nil {
		t.Fatalf("derive keys: %v", err)
	}
	tokens := auth.NewTokenManager(keys.Signing, "loyalty-console", time.Hour)
	views, err := view.NewRenderer()
	if err != nil {
		t.Fatalf("parse templates: %v", err)
	}
	deps := Deps{
		Views:    views,
		Sessions: session.NewCookieStore(tokens, auth.NewSealer(keys.Sealing), false),
		Paging:   paging.Options{Sizes: []int{10}, DefaultSize: 10},
		Logger:   logging.Nop(),
	}
	client := backend.NewClient(backend.Config{BaseURL: baseURL, Timeout: 10 * time.Second})

	r := chi.NewRouter()
	NewAuthHandler(deps, client, tokens, time.Hour, false).Register(r)

	form := url.Values{"email": {email}, "password": {password}}
	req := httptest.NewRequest(http.MethodPost, "/sign-in", strings.NewReader(form.Encode()))
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	rec := httptest.NewRecorder()
	r.ServeHTTP(rec, req)

	if rec.Code != http.StatusSeeOther {
		t.Fatalf("sign-in status = %d, body: %s", rec.Code, rec.Body.String())
	}
	cookies := live(rec)
	if cookies[session.CookieSession] == nil || cookies[session.CookieUserID] == nil {
		t.Fatalf("sign-in did not set session cookies: %v", cookies)
	}
	t.Logf("signed in as user %s", cookies[session.CookieUserID].Value)
}

func mustGetEnv(t *testing.T, key string) string {
	t.Helper()
	val := strings.TrimSpace(os.Getenv(key))
	if val == "" {
		t.Fatalf("%s is required", key)
	}
	return val
}

func loadDotEnv() {
	paths := []string{
		".env",
		"../.env",
		"../../.env",
		"../../../.env",
	}
	for _, path := range paths {
		_ = godotenv.Overload(path)
	}
}
