package middleware

import (
	"net/http"
	"net/url"
	"strings"

	"github.com/hongminglow/loyalty-console/internal/http/respond"
)

// SameOrigin rejects state-changing requests whose Origin header names a site
// other than the console itself or one of allowedOrigins. Requests without an
// Origin header pass; SameSite cookies cover those.
func SameOrigin(allowedOrigins []string) func(http.Handler) http.Handler {
	allowAll := false
	normalized := make([]string, 0, len(allowedOrigins))
	for _, origin := range allowedOrigins {
		if origin == "*" {
			allowAll = true
			break
		}
		normalized = append(normalized, strings.ToLower(strings.TrimRight(origin, "/")))
	}

	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			origin := r.Header.Get("Origin")
			if allowAll || origin == "" || safeMethod(r.Method) {
				next.ServeHTTP(w, r)
				return
			}
			if sameHost(origin, r.Host) || containsOrigin(normalized, origin) {
				next.ServeHTTP(w, r)
				return
			}
			forbid(w, r, "cross-origin request rejected")
		})
	}
}

func safeMethod(method string) bool {
	switch method {
	case http.MethodGet, http.MethodHead, http.MethodOptions:
		return true
	}
	return false
}

func sameHost(origin, host string) bool {
	u, err := url.Parse(origin)
	if err != nil || u.Host == "" {
		return false
	}
	return strings.EqualFold(u.Host, host)
}

func containsOrigin(allowed []string, origin string) bool {
	origin = strings.ToLower(origin)
	for _, candidate := range allowed {
		if candidate == origin {
			return true
		}
	}
	return false
}

// forbid answers 403 as JSON for API callers and as plain text otherwise.
func forbid(w http.ResponseWriter, r *http.Request, message string) {
	if strings.Contains(r.Header.Get("Accept"), "application/json") {
		respond.Error(w, r, http.StatusForbidden, message)
		return
	}
	http.Error(w, message, http.StatusForbidden)
}
