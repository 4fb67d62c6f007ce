package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
)

var okHandler = http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
	w.WriteHeader(http.StatusOK)
})

func TestCORSAllowedOrigin(t *testing.T) {
	h := CORS([]string{"https://app.eros.com"}, okHandler)

	req := httptest.NewRequest(http.MethodGet, "/tickets", nil)
	req.Header.Set("Origin", "https://APP.eros.com")
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)

	assert.Equal(t, "https://APP.eros.com", rec.Header().Get("Access-Control-Allow-Origin"))
	assert.Equal(t, "true", rec.Header().Get("Access-Control-Allow-Credentials"))
	assert.Equal(t, RefreshedTokenHeader, rec.Header().Get("Access-Control-Expose-Headers"))
}

func TestCORSRejectedOrigin(t *testing.T) {
	h := CORS([]string{"https://app.eros.com"}, okHandler)

	req := httptest.NewRequest(http.MethodGet, "/tickets", nil)
	req.Header.Set("Origin", "https://evil.example")
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)

	assert.Empty(t, rec.Header().Get("Access-Control-Allow-Origin"))
	assert.Equal(t, http.StatusOK, rec.Code)
}

func TestCORSWildcardNeverAllowsCredentials(t *testing.T) {
	h := CORS([]string{"*"}, okHandler)

	for _, method := range []string{http.MethodGet, http.MethodOptions} {
		req := httptest.NewRequest(method, "/me", nil)
		req.Header.Set("Origin", "https://evil.example")
		rec := httptest.NewRecorder()
		h.ServeHTTP(rec, req)

		assert.Equal(t, "*", rec.Header().Get("Access-Control-Allow-Origin"), method)
		assert.Empty(t, rec.Header().Get("Access-Control-Allow-Credentials"), method)
	}
}
