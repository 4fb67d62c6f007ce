package middleware

import (
	"net/http"
	"time"

	"go.uber.org/zap"

	"github.com/hongminglow/eros-desk/internal/auth"
)

type statusRecorder struct {
	http.ResponseWriter
	status int
}

func (r *statusRecorder) WriteHeader(status int) {
	r.status = status
	r.ResponseWriter.WriteHeader(status)
}

// Logging writes one structured line per request. It must wrap the session
// middleware's handler chain so the identity is visible.
func Logging(logger *zap.Logger, next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		rec := &statusRecorder{ResponseWriter: w, status: http.StatusOK}
		var identityID string
		next.ServeHTTP(rec, r.WithContext(withIdentitySink(r.Context(), &identityID)))

		fields := []zap.Field{
			zap.String("method", r.Method),
			zap.String("path", r.URL.Path),
			zap.Int("status", rec.status),
			zap.Duration("duration", time.Since(start)),
		}
		if identityID != "" {
			fields = append(fields, zap.String("identity_id", identityID))
		}
		logger.Info("http request", fields...)
	})
}

func recordIdentity(r *http.Request) {
	if sink := identitySinkFrom(r.Context()); sink != nil {
		if session := auth.SessionFromContext(r.Context()); session != nil {
			*sink = session.IdentityID
		}
	}
}
