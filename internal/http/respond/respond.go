// Package respond writes the JSON envelope used by the console's machine
// endpoints (health checks, rejected API calls).
package respond

import (
	"encoding/json"
	"net/http"

	chimw "github.com/go-chi/chi/v5/middleware"
	"go.uber.org/zap"

	"github.com/hongminglow/loyalty-console/pkg/logging"
)

// Envelope is the standard response wrapper.
type Envelope struct {
	Code      int    `json:"code"`
	Message   string `json:"message"`
	RequestID string `json:"request_id,omitempty"`
	Data      any    `json:"data,omitempty"`
}

var logger = logging.Default()

// SetLogger replaces the logger used to report encode failures.
func SetLogger(l *logging.Logger) {
	if l != nil {
		logger = l
	}
}

// JSON writes a success or informational response using the common envelope.
func JSON(w http.ResponseWriter, r *http.Request, status int, message string, data any) {
	write(w, status, Envelope{Code: status, Message: message, RequestID: chimw.GetReqID(r.Context()), Data: data})
}

// Error writes an error response with the shared envelope structure.
func Error(w http.ResponseWriter, r *http.Request, status int, message string) {
	write(w, status, Envelope{Code: status, Message: message, RequestID: chimw.GetReqID(r.Context())})
}

func write(w http.ResponseWriter, status int, payload Envelope) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(payload); err != nil {
		logger.Warn("respond: encode payload failed", zap.Error(err))
	}
}
