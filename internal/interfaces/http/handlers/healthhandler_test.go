package handlers

import (
	"context"
	"errors"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/rolegate/rolegate/internal/interfaces/http/handlers/testutil"
)

type pingFunc func(ctx context.Context) error

func (f pingFunc) PingContext(ctx context.Context) error { return f(ctx) }

func TestHealthHandler(t *testing.T) {
	h := NewHealthHandler(pingFunc(func(context.Context) error { return nil }))
	c, w := testutil.NewTestContext(http.MethodGet, "/health", nil)
	h.HealthCheck(c)
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), `"status":"ok"`)

	h = NewHealthHandler(pingFunc(func(context.Context) error { return errors.New("closed") }))
	c, w = testutil.NewTestContext(http.MethodGet, "/health", nil)
	h.HealthCheck(c)
	assert.Equal(t, http.StatusServiceUnavailable, w.Code)
}
