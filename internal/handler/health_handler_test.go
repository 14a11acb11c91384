package handler_test

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"testing"

	"tasktracker/internal/handler"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func healthRouter(h *handler.HealthHandler) *gin.Engine {
	gin.SetMode(gin.TestMode)
	r := gin.New()
	r.GET("/healthz", h.Liveness)
	r.GET("/readyz", h.Readiness)
	return r
}

func TestHealth(t *testing.T) {
	ok := func(context.Context) error { return nil }
	down := func(context.Context) error { return errors.New("connection refused") }

	tests := []struct {
		name      string
		db, redis handler.Pinger
		wantCode  int
		wantRedis string
	}{
		{"all healthy", ok, ok, http.StatusOK, "healthy"},
		{"redis disabled", ok, nil, http.StatusOK, "disabled"},
		{"redis down is degraded", ok, down, http.StatusOK, "degraded: connection refused"},
		{"database down", down, ok, http.StatusServiceUnavailable, "healthy"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			router := healthRouter(handler.NewHealthHandler(tt.db, tt.redis))

			resp := doJSON(router, http.MethodGet, "/healthz", nil)
			assert.Equal(t, http.StatusOK, resp.Code)

			resp = doJSON(router, http.MethodGet, "/readyz", nil)
			assert.Equal(t, tt.wantCode, resp.Code)

			var body handler.HealthResponse
			require.NoError(t, json.Unmarshal(resp.Body.Bytes(), &body))
			assert.Equal(t, tt.wantRedis, body.Checks["redis"])
		})
	}
}
