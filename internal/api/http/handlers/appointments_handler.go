package handlers

import (
	"net/http"

	"github.com/gofiber/fiber/v2"

	"github.com/washline/laundry-service/internal/api/dto"
	"github.com/washline/laundry-service/internal/service"
)

// AppointmentsHandler exposes appointment endpoints.
type AppointmentsHandler struct {
	appointments *service.AppointmentService
}

// NewAppointmentsHandler constructs handler.
func NewAppointmentsHandler(appointments *service.AppointmentService) *AppointmentsHandler {
	return &AppointmentsHandler{appointments: appointments}
}

// Create handles POST /appointments.
func (h *AppointmentsHandler) Create(c *fiber.Ctx) error {
	var req dto.CreateAppointmentRequest
	if err := parseBody(c, &req); err != nil {
		return err
	}
	appt, err := h.appointments.Create(c.UserContext(), principal(c), service.AppointmentCreateInput{
		RequestedService: req.RequestedService,
		PickupAt:         req.PickupAt,
		Notes:            req.Notes,
	})
	if err != nil {
		return err
	}
	return data(c, http.StatusCreated, dto.NewAppointmentResponse(appt))
}

// Get handles GET /appointments/:id.
func (h *AppointmentsHandler) Get(c *fiber.Ctx) error {
	appt, err := h.appointments.Get(c.UserContext(), principal(c), c.Params("id"))
	if err != nil {
		return err
	}
	return data(c, http.StatusOK, dto.NewAppointmentResponse(appt))
}

// ListByUser handles GET /appointments/user/:userId.
func (h *AppointmentsHandler) ListByUser(c *fiber.Ctx) error {
	appts, err := h.appointments.ListByUser(c.UserContext(), principal(c), c.Params("userId"))
	if err != nil {
		return err
	}
	return data(c, http.StatusOK, dto.NewAppointmentResponses(appts))
}

// Update handles PATCH /appointments/:id.
func (h *AppointmentsHandler) Update(c *fiber.Ctx) error {
	var req dto.UpdateAppointmentRequest
	if err := parseBody(c, &req); err != nil {
		return err
	}
	result, err := h.appointments.Transition(c.UserContext(), principal(c), c.Params("id"), service.AppointmentTransitionInput{
		Status:          req.Status,
		RejectionReason: req.RejectionReason,
	})
	if err != nil {
		return err
	}

	payload := fiber.Map{"appointment": dto.NewAppointmentResponse(result.Appointment)}
	if result.Order != nil {
		payload["order"] = dto.NewOrderResponse(result.Order)
	}
	return data(c, http.StatusOK, payload)
}
