package model

import "time"

// CallStatus is the closed set of lifecycle states for a service call.
type CallStatus string

const (
	StatusPending      CallStatus = "pending"
	StatusAcknowledged CallStatus = "acknowledged"
	StatusInProgress   CallStatus = "in_progress"
	StatusCompleted    CallStatus = "completed"
	StatusMissed       CallStatus = "missed"
	StatusCancelled    CallStatus = "cancelled"

	// StatusHandled is a deprecated alias written by historical code.
	// Read paths must normalize it to StatusCompleted; new code never writes it.
	StatusHandled CallStatus = "handled"
)

// NormalizeStatus maps legacy status values onto the current enumeration.
// It is applied at every read boundary and is idempotent.
func NormalizeStatus(s CallStatus) CallStatus {
	if s == StatusHandled {
		return StatusCompleted
	}
	return s
}

// IsTerminal reports whether a status has no outgoing transitions.
func (s CallStatus) IsTerminal() bool {
	switch NormalizeStatus(s) {
	case StatusCompleted, StatusCancelled:
		return true
	}
	return false
}

// Call represents a single customer service request tied to one table.
// Calls are created in StatusPending and mutated only through the
// store's transactional transition operation; they are never hard-deleted.
type Call struct {
	ID           int64      `gorm:"primaryKey" json:"id"`
	RestaurantID int64      `gorm:"index;not null" json:"restaurant_id"`
	TableID      int64      `gorm:"index;not null" json:"table_id"`
	WaiterID     *int64     `gorm:"index" json:"waiter_id"`
	Status       CallStatus `gorm:"size:32;not null;index" json:"status"`

	RequestedAt    time.Time  `gorm:"not null" json:"requested_at"`
	AcknowledgedAt *time.Time `json:"acknowledged_at"`
	CompletedAt    *time.Time `json:"completed_at"`
	MissedAt       *time.Time `json:"missed_at"`

	// ResponseTimeMS is the duration between RequestedAt and the first
	// acknowledging (or directly resolving) transition, in milliseconds.
	ResponseTimeMS *int64 `gorm:"column:response_time_ms" json:"response_time_ms"`

	CreatedAt time.Time `json:"-"`
	UpdatedAt time.Time `json:"-"`
}
