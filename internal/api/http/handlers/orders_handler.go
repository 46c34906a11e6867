package handlers

import (
	"net/http"

	"github.com/gofiber/fiber/v2"

	"github.com/washline/laundry-service/internal/api/dto"
	"github.com/washline/laundry-service/internal/service"
)

// OrdersHandler exposes order endpoints.
type OrdersHandler struct {
	orders *service.OrderService
}

// NewOrdersHandler constructs handler.
func NewOrdersHandler(orders *service.OrderService) *OrdersHandler {
	return &OrdersHandler{orders: orders}
}

// Create handles POST /orders.
func (h *OrdersHandler) Create(c *fiber.Ctx) error {
	var req dto.CreateOrderRequest
	if err := parseBody(c, &req); err != nil {
		return err
	}
	order, err := h.orders.Create(c.UserContext(), principal(c), service.OrderCreateInput{
		UserID:     req.UserID,
		Items:      req.Items,
		TotalCents: req.TotalCents,
	})
	if err != nil {
		return err
	}
	return data(c, http.StatusCreated, dto.NewOrderResponse(order))
}

// Get handles GET /orders/:id.
func (h *OrdersHandler) Get(c *fiber.Ctx) error {
	order, err := h.orders.Get(c.UserContext(), principal(c), c.Params("id"))
	if err != nil {
		return err
	}
	return data(c, http.StatusOK, dto.NewOrderResponse(order))
}

// ListByUser handles GET /orders/user/:userId.
func (h *OrdersHandler) ListByUser(c *fiber.Ctx) error {
	orders, err := h.orders.ListByUser(c.UserContext(), principal(c), c.Params("userId"))
	if err != nil {
		return err
	}
	return data(c, http.StatusOK, dto.NewOrderResponses(orders))
}

// Update handles PATCH /orders/:id.
func (h *OrdersHandler) Update(c *fiber.Ctx) error {
	var req dto.UpdateOrderRequest
	if err := parseBody(c, &req); err != nil {
		return err
	}
	order, err := h.orders.Transition(c.UserContext(), principal(c), c.Params("id"), service.OrderTransitionInput{
		Status:          req.Status,
		AssignedStaffID: req.AssignedStaffID,
	})
	if err != nil {
		return err
	}
	return data(c, http.StatusOK, dto.NewOrderResponse(order))
}

// ListLaundryJobs handles GET /orders/:id/laundry-jobs.
func (h *OrdersHandler) ListLaundryJobs(c *fiber.Ctx) error {
	jobs, err := h.orders.ListLaundryJobs(c.UserContext(), principal(c), c.Params("id"))
	if err != nil {
		return err
	}
	return data(c, http.StatusOK, dto.NewLaundryJobResponses(jobs))
}
