package dto

import (
	"time"

	"github.com/washline/laundry-service/internal/domain"
)

// CreateOrderRequest payload. Customers may omit userId.
type CreateOrderRequest struct {
	UserID     string         `json:"userId" validate:"omitempty,max=64"`
	Items      map[string]any `json:"items"`
	TotalCents int64          `json:"totalCents" validate:"gte=0"`
}

// UpdateOrderRequest payload for status changes.
type UpdateOrderRequest struct {
	Status          string `json:"status" validate:"required"`
	AssignedStaffID string `json:"assignedStaffId" validate:"omitempty,max=64"`
}

// UpdateLaundryJobRequest payload for status changes.
type UpdateLaundryJobRequest struct {
	Status string `json:"status" validate:"required"`
}

// OrderResponse is the public view of an order. Status uses the
// customer-facing names.
type OrderResponse struct {
	ID                  string                   `json:"id"`
	UserID              string                   `json:"userId"`
	SourceAppointmentID *string                  `json:"sourceAppointmentId,omitempty"`
	Status              domain.OrderPublicStatus `json:"status"`
	Items               map[string]any           `json:"items,omitempty"`
	TotalCents          int64                    `json:"totalCents"`
	CreatedAt           time.Time                `json:"createdAt"`
	UpdatedAt           time.Time                `json:"updatedAt"`
}

// NewOrderResponse maps an order.
func NewOrderResponse(o *domain.Order) OrderResponse {
	return OrderResponse{
		ID:                  o.ID,
		UserID:              o.UserID,
		SourceAppointmentID: o.SourceAppointmentID,
		Status:              o.Status.Public(),
		Items:               o.Items,
		TotalCents:          o.TotalCents,
		CreatedAt:           o.CreatedAt,
		UpdatedAt:           o.UpdatedAt,
	}
}

// NewOrderResponses maps a list.
func NewOrderResponses(items []domain.Order) []OrderResponse {
	out := make([]OrderResponse, 0, len(items))
	for i := range items {
		out = append(out, NewOrderResponse(&items[i]))
	}
	return out
}

// LaundryJobResponse is the public view of a laundry job.
type LaundryJobResponse struct {
	ID              string                  `json:"id"`
	OrderID         string                  `json:"orderId"`
	AssignedStaffID string                  `json:"assignedStaffId"`
	Status          domain.LaundryJobStatus `json:"status"`
	CreatedAt       time.Time               `json:"createdAt"`
	UpdatedAt       time.Time               `json:"updatedAt"`
}

// NewLaundryJobResponse maps a laundry job.
func NewLaundryJobResponse(j *domain.LaundryJob) LaundryJobResponse {
	return LaundryJobResponse{
		ID:              j.ID,
		OrderID:         j.OrderID,
		AssignedStaffID: j.AssignedStaffID,
		Status:          j.Status,
		CreatedAt:       j.CreatedAt,
		UpdatedAt:       j.UpdatedAt,
	}
}

// NewLaundryJobResponses maps a list.
func NewLaundryJobResponses(items []domain.LaundryJob) []LaundryJobResponse {
	out := make([]LaundryJobResponse, 0, len(items))
	for i := range items {
		out = append(out, NewLaundryJobResponse(&items[i]))
	}
	return out
}
