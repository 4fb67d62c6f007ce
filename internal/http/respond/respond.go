package respond

import (
	"encoding/json"
	"net/http"

	"go.uber.org/zap"

	"github.com/hongminglow/eros-desk/internal/auth"
)

// Envelope is the standard API response wrapper used across handlers.
type Envelope struct {
	Code    int    `json:"code"`
	Message string `json:"message"`
	Data    any    `json:"data,omitempty"`
}

// JSON writes a success or informational response using the common envelope.
func JSON(w http.ResponseWriter, status int, message string, data any) {
	write(w, status, Envelope{Code: status, Message: message, Data: data})
}

// Error writes an error response with the shared envelope structure.
func Error(w http.ResponseWriter, status int, message string) {
	write(w, status, Envelope{Code: status, Message: message})
}

// AuthError maps an access-control failure to its status and public message.
// Only Unavailable is logged as a system error.
func AuthError(w http.ResponseWriter, logger *zap.Logger, err error) {
	status := http.StatusServiceUnavailable
	switch auth.KindOf(err) {
	case auth.KindBadCredentials, auth.KindDeactivated, auth.KindNotFound,
		auth.KindExpired, auth.KindMalformed:
		status = http.StatusUnauthorized
	case auth.KindUnauthorized:
		status = http.StatusForbidden
	default:
		if logger != nil {
			logger.Error("access control unavailable", zap.Error(err))
		}
	}
	Error(w, status, auth.PublicMessage(err))
}

func write(w http.ResponseWriter, status int, payload Envelope) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(payload); err != nil {
		zap.L().Warn("respond: encode payload failed", zap.Error(err))
	}
}
