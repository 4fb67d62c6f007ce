package handlers

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

type pingFunc func(ctx context.Context) error

func (f pingFunc) Ping(ctx context.Context) error { return f(ctx) }

func TestHealth(t *testing.T) {
	mux := http.NewServeMux()
	NewHealthHandler(time.Now(), pingFunc(func(context.Context) error { return nil })).Register(mux)
	rec := serveAs(t, mux, nil, httptest.NewRequest(http.MethodGet, "/health", nil))
	assert.Equal(t, http.StatusOK, rec.Code)
	_, body := decodeEnvelope[map[string]string](t, rec)
	assert.Equal(t, "ok", body["database"])

	mux = http.NewServeMux()
	NewHealthHandler(time.Now(), pingFunc(func(context.Context) error { return errStoreDown })).Register(mux)
	rec = serveAs(t, mux, nil, httptest.NewRequest(http.MethodGet, "/health", nil))
	assert.Equal(t, http.StatusServiceUnavailable, rec.Code)
}
