package domain

import (
	"fmt"
	"time"
)

// LaundryJobStatus enumerates processing stages for a job.
type LaundryJobStatus string

const (
	LaundryJobStatusQueued   LaundryJobStatus = "queued"
	LaundryJobStatusWashing  LaundryJobStatus = "washing"
	LaundryJobStatusDrying   LaundryJobStatus = "drying"
	LaundryJobStatusFolding  LaundryJobStatus = "folding"
	LaundryJobStatusComplete LaundryJobStatus = "complete"
	// LaundryJobStatusCancelled is only set when the parent order is cancelled.
	LaundryJobStatusCancelled LaundryJobStatus = "cancelled"
)

var validLaundryJobStatuses = []LaundryJobStatus{
	LaundryJobStatusQueued,
	LaundryJobStatusWashing,
	LaundryJobStatusDrying,
	LaundryJobStatusFolding,
	LaundryJobStatusComplete,
	LaundryJobStatusCancelled,
}

// IsValid reports whether the value is a known LaundryJobStatus.
func (s LaundryJobStatus) IsValid() bool {
	for _, candidate := range validLaundryJobStatuses {
		if candidate == s {
			return true
		}
	}
	return false
}

// IsTerminal reports whether no further processing happens in this status.
func (s LaundryJobStatus) IsTerminal() bool {
	return s == LaundryJobStatusComplete || s == LaundryJobStatusCancelled
}

// ParseLaundryJobStatus converts raw input into a LaundryJobStatus.
func ParseLaundryJobStatus(value string) (LaundryJobStatus, error) {
	for _, candidate := range validLaundryJobStatuses {
		if string(candidate) == value {
			return candidate, nil
		}
	}
	return "", fmt.Errorf("invalid laundry job status %q", value)
}

// LaundryJob tracks the physical processing of an order.
type LaundryJob struct {
	ID              string
	OrderID         string
	AssignedStaffID string
	Status          LaundryJobStatus
	CreatedAt       time.Time
	UpdatedAt       time.Time
	Version         int64
}
