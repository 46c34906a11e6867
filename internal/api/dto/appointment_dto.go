package dto

import (
	"time"

	"github.com/washline/laundry-service/internal/domain"
)

// CreateAppointmentRequest payload.
type CreateAppointmentRequest struct {
	RequestedService string     `json:"requestedService" validate:"required,max=200"`
	PickupAt         *time.Time `json:"pickupAt"`
	Notes            string     `json:"notes" validate:"max=2000"`
}

// UpdateAppointmentRequest payload for status changes.
type UpdateAppointmentRequest struct {
	Status          string `json:"status" validate:"required"`
	RejectionReason string `json:"rejectionReason" validate:"max=2000"`
}

// AppointmentResponse is the public view of an appointment.
type AppointmentResponse struct {
	ID               string                   `json:"id"`
	UserID           string                   `json:"userId"`
	RequestedService string                   `json:"requestedService"`
	PickupAt         *time.Time               `json:"pickupAt,omitempty"`
	Notes            string                   `json:"notes,omitempty"`
	Status           domain.AppointmentStatus `json:"status"`
	RejectionReason  string                   `json:"rejectionReason,omitempty"`
	CreatedAt        time.Time                `json:"createdAt"`
	UpdatedAt        time.Time                `json:"updatedAt"`
}

// NewAppointmentResponse maps an appointment.
func NewAppointmentResponse(a *domain.Appointment) AppointmentResponse {
	return AppointmentResponse{
		ID:               a.ID,
		UserID:           a.UserID,
		RequestedService: a.RequestedService,
		PickupAt:         a.PickupAt,
		Notes:            a.Notes,
		Status:           a.Status,
		RejectionReason:  a.RejectionReason,
		CreatedAt:        a.CreatedAt,
		UpdatedAt:        a.UpdatedAt,
	}
}

// NewAppointmentResponses maps a list, keeping an empty slice for no rows.
func NewAppointmentResponses(items []domain.Appointment) []AppointmentResponse {
	out := make([]AppointmentResponse, 0, len(items))
	for i := range items {
		out = append(out, NewAppointmentResponse(&items[i]))
	}
	return out
}
