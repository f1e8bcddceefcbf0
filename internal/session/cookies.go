package session

import (
	"net/http"
	"time"
)

// cookieJar writes the three session cookies with consistent attributes.
type cookieJar struct {
	secure bool
}

func (j cookieJar) write(w http.ResponseWriter, s Session, sessionValue string) {
	j.set(w, CookieSession, sessionValue, s.ExpiresAt, true)
	j.set(w, CookieUserID, s.UserID, s.ExpiresAt, false)
	j.set(w, CookieCSRF, s.CSRFToken, s.ExpiresAt, false)
}

func (j cookieJar) expireAll(w http.ResponseWriter) {
	for _, name := range []string{CookieSession, CookieUserID, CookieCSRF} {
		http.SetCookie(w, &http.Cookie{
			Name:     name,
			Value:    "",
			Path:     "/",
			Expires:  time.Unix(0, 0),
			MaxAge:   -1,
			Secure:   j.secure,
			HttpOnly: name == CookieSession,
			SameSite: http.SameSiteStrictMode,
		})
	}
}

func (j cookieJar) set(w http.ResponseWriter, name, value string, expires time.Time, httpOnly bool) {
	http.SetCookie(w, &http.Cookie{
		Name:     name,
		Value:    value,
		Path:     "/",
		Expires:  expires,
		MaxAge:   max(int(time.Until(expires).Seconds()), 1),
		Secure:   j.secure,
		HttpOnly: httpOnly,
		SameSite: http.SameSiteStrictMode,
	})
}

func sessionCookie(r *http.Request) (string, bool) {
	c, err := r.Cookie(CookieSession)
	if err != nil || c.Value == "" {
		return "", false
	}
	return c.Value, true
}
