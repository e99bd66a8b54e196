package models

import "time"

// Order lifecycle. Pending is the sole initial state; Rejected, Completed
// and Cancelled are terminal.
const (
	OrderStatusPending   = "Pending"
	OrderStatusAccepted  = "Accepted"
	OrderStatusRejected  = "Rejected"
	OrderStatusReady     = "Ready"
	OrderStatusCompleted = "Completed"
	OrderStatusCancelled = "Cancelled"
)

// Owner kind tag. Admins may place orders too, so the owner reference
// carries which identity table it points into.
const (
	OwnerKindUser  = "user"
	OwnerKindAdmin = "admin"
)

type Order struct {
	ID              uint        `gorm:"primaryKey" json:"id"`
	UserID          uint        `gorm:"not null;index" json:"user_id"`
	UserKind        string      `gorm:"type:varchar(10);not null;default:'user'" json:"user_kind"`
	Items           []OrderItem `gorm:"foreignKey:OrderID" json:"items"`
	TotalPrice      float64     `gorm:"type:decimal(10,2);not null" json:"total_price"`
	Status          string      `gorm:"type:varchar(20);not null;default:'Pending';index" json:"status"`
	Notes           string      `gorm:"type:text" json:"notes"`
	PickupTime      *time.Time  `json:"pickup_time,omitempty"`
	RejectionReason *string     `gorm:"type:varchar(255)" json:"rejection_reason,omitempty"`
	IsScheduled     bool        `gorm:"not null;default:false" json:"is_scheduled"`
	ScheduledTime   *time.Time  `json:"scheduled_time,omitempty"`
	PlacedAt        time.Time   `gorm:"not null" json:"placed_at"`
	AcceptedAt      *time.Time  `json:"accepted_at,omitempty"`
	ReadyAt         *time.Time  `json:"ready_at,omitempty"`
	CompletedAt     *time.Time  `json:"completed_at,omitempty"`
	CreatedAt       time.Time   `gorm:"not null;index" json:"created_at"`
	UpdatedAt       time.Time   `gorm:"not null" json:"updated_at"`

	// Display fields resolved from the owning identity when the order is
	// returned or pushed; never persisted.
	OwnerName  string `gorm:"-" json:"owner_name,omitempty"`
	OwnerEmail string `gorm:"-" json:"owner_email,omitempty"`
}

// Terminal reports whether the order is in a state with no further
// engine-permitted transitions.
func (o *Order) Terminal() bool {
	switch o.Status {
	case OrderStatusRejected, OrderStatusCompleted, OrderStatusCancelled:
		return true
	}
	return false
}
