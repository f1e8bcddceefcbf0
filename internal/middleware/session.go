package middleware

import (
	"crypto/subtle"
	"errors"
	"net/http"

	"go.uber.org/zap"

	"github.com/hongminglow/loyalty-console/internal/flash"
	"github.com/hongminglow/loyalty-console/internal/session"
	"github.com/hongminglow/loyalty-console/pkg/logging"
)

// SignInPath is where unauthenticated operators are sent.
const SignInPath = "/sign-in"

// ExpiredMessage is flashed when a session runs out or the backend rejects it.
const ExpiredMessage = "Session expired. Please login again."

// RequireSession loads the operator session into the request context and
// redirects to the sign-in page when there is none.
func RequireSession(store session.Store, logger *logging.Logger) func(http.Handler) http.Handler {
	if logger == nil {
		logger = logging.Nop()
	}
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			s, err := store.Load(r)
			if err != nil {
				if errors.Is(err, session.ErrExpired) {
					if clearErr := store.Clear(r.Context(), w, r); clearErr != nil {
						logger.Warn("clear expired session", zap.Error(clearErr))
					}
					flash.SetError(w, ExpiredMessage)
				}
				http.Redirect(w, r, SignInPath, http.StatusSeeOther)
				return
			}
			next.ServeHTTP(w, r.WithContext(session.WithSession(r.Context(), s)))
		})
	}
}

// VerifyCSRF checks the csrf_token form field or X-CSRF-Token header of
// state-changing requests against the session. It must run after RequireSession.
func VerifyCSRF(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if safeMethod(r.Method) {
			next.ServeHTTP(w, r)
			return
		}
		s, ok := session.FromContext(r.Context())
		if !ok || s.CSRFToken == "" {
			forbid(w, r, "missing session")
			return
		}
		token := r.Header.Get("X-CSRF-Token")
		if token == "" {
			token = r.PostFormValue(session.CookieCSRF)
		}
		if subtle.ConstantTimeCompare([]byte(token), []byte(s.CSRFToken)) != 1 {
			forbid(w, r, "invalid CSRF token")
			return
		}
		next.ServeHTTP(w, r)
	})
}
