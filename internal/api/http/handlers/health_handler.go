package handlers

import (
	"context"
	"net/http"
	"sync"
	"time"

	"github.com/gofiber/fiber/v2"
	"golang.org/x/sync/errgroup"
)

const readinessTimeout = 2 * time.Second

// Pinger is a dependency checked by the readiness probe.
type Pinger interface {
	Ping(ctx context.Context) error
}

// HealthHandler serves the liveness and readiness probes.
type HealthHandler struct {
	serviceName string
	version     string
	deps        map[string]Pinger
}

// NewHealthHandler builds the probes. A nil Pinger is reported as "disabled"
// and never fails readiness.
func NewHealthHandler(serviceName, version string, deps map[string]Pinger) *HealthHandler {
	return &HealthHandler{serviceName: serviceName, version: version, deps: deps}
}

type probeResult struct {
	Status       string            `json:"status"`
	Service      string            `json:"service"`
	Version      string            `json:"version"`
	Dependencies map[string]string `json:"dependencies,omitempty"`
}

func (h *HealthHandler) Live(c *fiber.Ctx) error {
	return data(c, http.StatusOK, probeResult{Status: "alive", Service: h.serviceName, Version: h.version})
}

// Ready pings every dependency concurrently and answers 503 when any fails.
func (h *HealthHandler) Ready(c *fiber.Ctx) error {
	ctx, cancel := context.WithTimeout(c.UserContext(), readinessTimeout)
	defer cancel()

	var (
		mu      sync.Mutex
		results = make(map[string]string, len(h.deps))
		healthy = true
	)
	g, gctx := errgroup.WithContext(ctx)
	for name, dep := range h.deps {
		if dep == nil {
			results[name] = "disabled"
			continue
		}
		g.Go(func() error {
			state := "ok"
			if err := dep.Ping(gctx); err != nil {
				state = err.Error()
			}
			mu.Lock()
			defer mu.Unlock()
			results[name] = state
			healthy = healthy && state == "ok"
			return nil
		})
	}
	_ = g.Wait()

	result := probeResult{Status: "ready", Service: h.serviceName, Version: h.version, Dependencies: results}
	if !healthy {
		return c.Status(http.StatusServiceUnavailable).JSON(fiber.Map{
			"error": fiber.Map{
				"code":    "DEPENDENCY_UNAVAILABLE",
				"message": "one or more dependencies unavailable",
				"details": results,
			},
		})
	}
	return data(c, http.StatusOK, result)
}
