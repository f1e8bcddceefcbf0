// Package flash carries one transient notification across a redirect.
package flash

import (
	"encoding/base64"
	"encoding/json"
	"net/http"
	"time"
)

const cookieName = "flash"

// Kind selects the notification style.
type Kind string

// Notification styles understood by the layout.
const (
	Success Kind = "success"
	Danger  Kind = "danger"
	Info    Kind = "info"
)

// Message is a notification shown once on the next rendered page.
type Message struct {
	Kind Kind   `json:"k"`
	Text string `json:"t"`
}

// Set queues m for the next page load.
func Set(w http.ResponseWriter, m Message) {
	raw, err := json.Marshal(m)
	if err != nil {
		return
	}
	http.SetCookie(w, &http.Cookie{
		Name:     cookieName,
		Value:    base64.RawURLEncoding.EncodeToString(raw),
		Path:     "/",
		MaxAge:   60,
		Expires:  time.Now().Add(time.Minute),
		HttpOnly: true,
		SameSite: http.SameSiteLaxMode,
	})
}

// Pop returns the queued message, if any, and clears it.
func Pop(w http.ResponseWriter, r *http.Request) (Message, bool) {
	c, err := r.Cookie(cookieName)
	if err != nil || c.Value == "" {
		return Message{}, false
	}
	http.SetCookie(w, &http.Cookie{
		Name:     cookieName,
		Value:    "",
		Path:     "/",
		MaxAge:   -1,
		HttpOnly: true,
		SameSite: http.SameSiteLaxMode,
	})
	raw, err := base64.RawURLEncoding.DecodeString(c.Value)
	if err != nil {
		return Message{}, false
	}
	var m Message
	if err := json.Unmarshal(raw, &m); err != nil || m.Text == "" {
		return Message{}, false
	}
	return m, true
}

// SetSuccess queues a success message.
func SetSuccess(w http.ResponseWriter, text string) { Set(w, Message{Kind: Success, Text: text}) }

// SetError queues a danger message.
func SetError(w http.ResponseWriter, text string) { Set(w, Message{Kind: Danger, Text: text}) }

// SetInfo queues an informational message.
func SetInfo(w http.ResponseWriter, text string) { Set(w, Message{Kind: Info, Text: text}) }
