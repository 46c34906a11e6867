package domain

import (
	"fmt"
	"time"
)

// OrderStatus is the persisted order state.
type OrderStatus string

const (
	OrderStatusPending    OrderStatus = "PENDING"
	OrderStatusInProgress OrderStatus = "IN_PROGRESS"
	OrderStatusCompleted  OrderStatus = "COMPLETED"
	OrderStatusDelivered  OrderStatus = "DELIVERED"
	OrderStatusCancelled  OrderStatus = "CANCELLED"
)

// OrderPublicStatus is the customer-facing name of an OrderStatus.
type OrderPublicStatus string

const (
	OrderPublicPending   OrderPublicStatus = "pending"
	OrderPublicInWash    OrderPublicStatus = "in_wash"
	OrderPublicReady     OrderPublicStatus = "ready"
	OrderPublicDelivered OrderPublicStatus = "delivered"
	OrderPublicCancelled OrderPublicStatus = "cancelled"
)

var orderStatusPairs = []struct {
	internal OrderStatus
	public   OrderPublicStatus
}{
	{OrderStatusPending, OrderPublicPending},
	{OrderStatusInProgress, OrderPublicInWash},
	{OrderStatusCompleted, OrderPublicReady},
	{OrderStatusDelivered, OrderPublicDelivered},
	{OrderStatusCancelled, OrderPublicCancelled},
}

// IsValid reports whether the value is a known OrderStatus.
func (s OrderStatus) IsValid() bool {
	for _, pair := range orderStatusPairs {
		if pair.internal == s {
			return true
		}
	}
	return false
}

// Public maps the persisted status to its customer-facing name.
func (s OrderStatus) Public() OrderPublicStatus {
	for _, pair := range orderStatusPairs {
		if pair.internal == s {
			return pair.public
		}
	}
	return ""
}

// Internal maps a customer-facing name to the persisted status.
func (s OrderPublicStatus) Internal() OrderStatus {
	for _, pair := range orderStatusPairs {
		if pair.public == s {
			return pair.internal
		}
	}
	return ""
}

// ParseOrderPublicStatus converts raw API input into an OrderStatus.
func ParseOrderPublicStatus(value string) (OrderStatus, error) {
	for _, pair := range orderStatusPairs {
		if string(pair.public) == value {
			return pair.internal, nil
		}
	}
	return "", fmt.Errorf("invalid order status %q", value)
}

// Order is a unit of paid laundry work for a user.
type Order struct {
	ID                  string
	UserID              string
	SourceAppointmentID *string
	Status              OrderStatus
	Items               map[string]any
	TotalCents          int64
	CreatedAt           time.Time
	UpdatedAt           time.Time
	Version             int64
}
