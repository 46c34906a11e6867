package handlers

import (
	"net/http"

	"github.com/gofiber/fiber/v2"

	"github.com/washline/laundry-service/internal/service"
)

// DashboardHandler serves the superadmin summary.
type DashboardHandler struct {
	dashboard *service.DashboardService
}

// NewDashboardHandler constructs handler.
func NewDashboardHandler(dashboard *service.DashboardService) *DashboardHandler {
	return &DashboardHandler{dashboard: dashboard}
}

// Summary handles GET /superadmin/dashboard.
func (h *DashboardHandler) Summary(c *fiber.Ctx) error {
	summary, err := h.dashboard.SuperadminSummary(c.UserContext(), principal(c))
	if err != nil {
		return err
	}
	return data(c, http.StatusOK, summary)
}
