package lifecycle

import "github.com/washline/laundry-service/internal/domain"

var (
	staffOrAdmin = []domain.Role{domain.RoleStaff, domain.RoleAdmin}
	adminOnly    = []domain.Role{domain.RoleAdmin}
	customerOnly = []domain.Role{domain.RoleCustomer}
	staffOnly    = []domain.Role{domain.RoleStaff}
)

// Appointments are decided once: approved, rejected or cancelled.
var Appointment = NewMachine("appointment",
	[]domain.AppointmentStatus{
		domain.AppointmentStatusApproved,
		domain.AppointmentStatusRejected,
		domain.AppointmentStatusCancelled,
	},
	Edge[domain.AppointmentStatus]{From: domain.AppointmentStatusPending, To: domain.AppointmentStatusApproved, Roles: staffOrAdmin},
	Edge[domain.AppointmentStatus]{From: domain.AppointmentStatusPending, To: domain.AppointmentStatusRejected, Roles: staffOrAdmin},
	Edge[domain.AppointmentStatus]{From: domain.AppointmentStatusPending, To: domain.AppointmentStatusCancelled, Roles: adminOnly, OwnerRoles: customerOnly},
)

// Order walks the persisted statuses strictly in sequence. Only admins cancel,
// and only before the laundry is ready.
var Order = NewMachine("order",
	[]domain.OrderStatus{domain.OrderStatusDelivered, domain.OrderStatusCancelled},
	Edge[domain.OrderStatus]{From: domain.OrderStatusPending, To: domain.OrderStatusInProgress, Roles: staffOrAdmin},
	Edge[domain.OrderStatus]{From: domain.OrderStatusInProgress, To: domain.OrderStatusCompleted, Roles: staffOrAdmin},
	Edge[domain.OrderStatus]{From: domain.OrderStatusCompleted, To: domain.OrderStatusDelivered, Roles: staffOrAdmin},
	Edge[domain.OrderStatus]{From: domain.OrderStatusPending, To: domain.OrderStatusCancelled, Roles: adminOnly},
	Edge[domain.OrderStatus]{From: domain.OrderStatusInProgress, To: domain.OrderStatusCancelled, Roles: adminOnly},
)

// LaundryJob is advanced by the assigned staff member or an admin.
// The cancelled status has no edge here; only order cancellation sets it.
var LaundryJob = NewMachine("laundry_job",
	[]domain.LaundryJobStatus{domain.LaundryJobStatusComplete, domain.LaundryJobStatusCancelled},
	Edge[domain.LaundryJobStatus]{From: domain.LaundryJobStatusQueued, To: domain.LaundryJobStatusWashing, Roles: adminOnly, OwnerRoles: staffOnly},
	Edge[domain.LaundryJobStatus]{From: domain.LaundryJobStatusWashing, To: domain.LaundryJobStatusDrying, Roles: adminOnly, OwnerRoles: staffOnly},
	Edge[domain.LaundryJobStatus]{From: domain.LaundryJobStatusDrying, To: domain.LaundryJobStatusFolding, Roles: adminOnly, OwnerRoles: staffOnly},
	Edge[domain.LaundryJobStatus]{From: domain.LaundryJobStatusFolding, To: domain.LaundryJobStatusComplete, Roles: adminOnly, OwnerRoles: staffOnly},
)
