package respond

import (
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/hongminglow/eros-desk/internal/auth"
)

func decode(t *testing.T, rec *httptest.ResponseRecorder) Envelope {
	t.Helper()
	var env Envelope
	require.NoError(t, json.NewDecoder(rec.Body).Decode(&env))
	return env
}

func TestJSON(t *testing.T) {
	rec := httptest.NewRecorder()
	JSON(rec, http.StatusOK, "ok", map[string]string{"a": "b"})

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "application/json", rec.Header().Get("Content-Type"))
	env := decode(t, rec)
	assert.Equal(t, 200, env.Code)
	assert.Equal(t, "ok", env.Message)
}

func TestAuthErrorStatuses(t *testing.T) {
	tests := []struct {
		name       string
		err        error
		wantStatus int
		wantMsg    string
	}{
		{"bad credentials", &auth.Error{Kind: auth.KindBadCredentials, Message: "password mismatch"}, http.StatusUnauthorized, "invalid credentials"},
		{"deactivated", &auth.Error{Kind: auth.KindDeactivated, Message: "off"}, http.StatusUnauthorized, "invalid credentials"},
		{"expired", &auth.Error{Kind: auth.KindExpired, Message: "old"}, http.StatusUnauthorized, "not authenticated"},
		{"unauthorized", &auth.Error{Kind: auth.KindUnauthorized, Message: "nope"}, http.StatusForbidden, "forbidden"},
		{"unavailable", &auth.Error{Kind: auth.KindUnavailable, Message: "db"}, http.StatusServiceUnavailable, "service unavailable"},
		{"plain error", errors.New("boom"), http.StatusServiceUnavailable, "service unavailable"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec := httptest.NewRecorder()
			AuthError(rec, zap.NewNop(), tt.err)
			assert.Equal(t, tt.wantStatus, rec.Code)
			assert.Equal(t, tt.wantMsg, decode(t, rec).Message)
		})
	}
}
