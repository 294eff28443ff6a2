package models

import (
	"time"

	"github.com/google/uuid"
)

type NotificationType string

const (
	TypeOrderPlaced     NotificationType = "order_placed"
	TypeOrderCancelled  NotificationType = "order_cancelled"
	TypePaymentReminder NotificationType = "payment_reminder"
	TypeReturnReminder  NotificationType = "return_reminder"
	TypeOverdueReminder NotificationType = "overdue_reminder"
)

// Immediate reports whether notifications of this type are dispatched as
// soon as they are recorded.
func (t NotificationType) Immediate() bool {
	switch t {
	case TypeOrderPlaced, TypeOrderCancelled, TypeOverdueReminder:
		return true
	}
	return false
}

type NotificationStatus string

const (
	StatusPending NotificationStatus = "pending"
	StatusSent    NotificationStatus = "sent"
	StatusFailed  NotificationStatus = "failed"
)

// Notification is an entry in the process-lifetime notification log. Only
// the dispatcher changes Status, Error and SentAt after creation.
type Notification struct {
	ID            uuid.UUID          `json:"id"`
	CustomerID    uuid.UUID          `json:"customer_id"`
	CustomerName  string             `json:"customer_name"`
	CustomerPhone string             `json:"customer_phone"`
	OrderID       uuid.UUID          `json:"order_id"`
	Type          NotificationType   `json:"type"`
	Title         string             `json:"title"`
	Message       string             `json:"message"`
	Status        NotificationStatus `json:"status"`
	Error         string             `json:"error,omitempty"`
	ScheduledFor  time.Time          `json:"scheduled_for"`
	SentAt        *time.Time         `json:"sent_at,omitempty"`
	CreatedAt     time.Time          `json:"created_at"`
}

type NotificationFilter struct {
	Type       NotificationType
	Status     NotificationStatus
	OrderID    uuid.UUID
	CustomerID uuid.UUID
	Page       int
	PageSize   int
}
