package handlers

import (
	"net/http"

	"github.com/gofiber/fiber/v2"

	"github.com/washline/laundry-service/internal/api/dto"
	"github.com/washline/laundry-service/internal/service"
)

// LaundryJobsHandler exposes laundry job endpoints.
type LaundryJobsHandler struct {
	jobs *service.LaundryJobService
}

// NewLaundryJobsHandler constructs handler.
func NewLaundryJobsHandler(jobs *service.LaundryJobService) *LaundryJobsHandler {
	return &LaundryJobsHandler{jobs: jobs}
}

// Get handles GET /laundry-jobs/:id.
func (h *LaundryJobsHandler) Get(c *fiber.Ctx) error {
	job, err := h.jobs.Get(c.UserContext(), principal(c), c.Params("id"))
	if err != nil {
		return err
	}
	return data(c, http.StatusOK, dto.NewLaundryJobResponse(job))
}

// Update handles PATCH /laundry-jobs/:id.
func (h *LaundryJobsHandler) Update(c *fiber.Ctx) error {
	var req dto.UpdateLaundryJobRequest
	if err := parseBody(c, &req); err != nil {
		return err
	}
	job, err := h.jobs.Transition(c.UserContext(), principal(c), c.Params("id"), req.Status)
	if err != nil {
		return err
	}
	return data(c, http.StatusOK, dto.NewLaundryJobResponse(job))
}
