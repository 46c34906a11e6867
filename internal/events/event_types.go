package events

import (
	"time"

	"github.com/washline/laundry-service/internal/domain"
)

// EventType enumerates supported event identifiers.
type EventType string

const (
	EventAppointmentStatusChanged EventType = "appointment_status_changed"
	EventOrderCreated             EventType = "order_created"
	EventOrderStatusChanged       EventType = "order_status_changed"
	EventLaundryJobStatusChanged  EventType = "laundry_job_status_changed"
	EventUserDeleted              EventType = "user_deleted"
)

// AllEventTypes lists every event the services publish.
var AllEventTypes = []EventType{
	EventAppointmentStatusChanged,
	EventOrderCreated,
	EventOrderStatusChanged,
	EventLaundryJobStatusChanged,
	EventUserDeleted,
}

// Actor identifies who caused an event. System-driven changes carry an empty ID.
type Actor struct {
	UserID string      `json:"user_id,omitempty"`
	Role   domain.Role `json:"role,omitempty"`
}

// Event represents a domain event emitted by services.
type Event struct {
	ID         string      `json:"id"`
	Type       EventType   `json:"type"`
	ResourceID string      `json:"resource_id"`
	Actor      Actor       `json:"actor"`
	Timestamp  time.Time   `json:"timestamp"`
	Payload    interface{} `json:"payload"`
}

// StatusChangedPayload is shared by the status change events.
type StatusChangedPayload struct {
	OwnerID   string `json:"owner_id,omitempty"`
	OldStatus string `json:"old_status"`
	NewStatus string `json:"new_status"`
	Reason    string `json:"reason,omitempty"`
}

// OrderCreatedPayload payload.
type OrderCreatedPayload struct {
	UserID              string  `json:"user_id"`
	SourceAppointmentID *string `json:"source_appointment_id,omitempty"`
}

// UserDeletedPayload payload.
type UserDeletedPayload struct {
	LaundryJobs  int64 `json:"laundry_jobs"`
	Orders       int64 `json:"orders"`
	Appointments int64 `json:"appointments"`
}
