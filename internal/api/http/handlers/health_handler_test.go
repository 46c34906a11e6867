package handlers

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gofiber/fiber/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type pingerFunc func(context.Context) error

func (f pingerFunc) Ping(ctx context.Context) error { return f(ctx) }

func probe(t *testing.T, h *HealthHandler) (int, map[string]any) {
	t.Helper()
	app := fiber.New()
	app.Get("/ready", h.Ready)

	resp, err := app.Test(httptest.NewRequest(http.MethodGet, "/ready", nil), -1)
	require.NoError(t, err)
	defer resp.Body.Close()

	var body map[string]any
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&body))
	return resp.StatusCode, body
}

func TestReadyReportsEveryDependency(t *testing.T) {
	ok := pingerFunc(func(context.Context) error { return nil })
	status, body := probe(t, NewHealthHandler("laundry", "1.2.3", map[string]Pinger{
		"postgres": ok,
		"redis":    ok,
		"search":   nil,
	}))

	require.Equal(t, http.StatusOK, status)
	result := body["data"].(map[string]any)
	assert.Equal(t, "ready", result["status"])
	assert.Equal(t, map[string]any{"postgres": "ok", "redis": "ok", "search": "disabled"}, result["dependencies"])
}

func TestReadyFailsWhenAnyDependencyIsDown(t *testing.T) {
	status, body := probe(t, NewHealthHandler("laundry", "1.2.3", map[string]Pinger{
		"postgres": pingerFunc(func(context.Context) error { return nil }),
		"redis":    pingerFunc(func(context.Context) error { return errors.New("connection refused") }),
	}))

	require.Equal(t, http.StatusServiceUnavailable, status)
	apiErr := body["error"].(map[string]any)
	assert.Equal(t, "DEPENDENCY_UNAVAILABLE", apiErr["code"])
	assert.Equal(t, map[string]any{"postgres": "ok", "redis": "connection refused"}, apiErr["details"])
}
