package model

import "time"

// Waiter is a staff member who can acknowledge and resolve calls.
type Waiter struct {
	ID           int64  `gorm:"primaryKey" json:"id"`
	RestaurantID int64  `gorm:"index;not null" json:"restaurant_id"`
	Name         string `gorm:"size:128;not null" json:"name"`
	Active       bool   `gorm:"not null;default:true" json:"active"`

	CreatedAt time.Time `json:"-"`
	UpdatedAt time.Time `json:"-"`

	// Associations
	Restaurant Restaurant `gorm:"constraint:OnDelete:CASCADE" json:"-"`
}

// Assignment links a waiter to a table they are responsible for.
// Acknowledgment of a call requires an assignment row for the call's table.
type Assignment struct {
	ID           int64 `gorm:"primaryKey" json:"id"`
	RestaurantID int64 `gorm:"index;not null" json:"restaurant_id"`
	WaiterID     int64 `gorm:"uniqueIndex:idx_waiter_table;not null" json:"waiter_id"`
	TableID      int64 `gorm:"uniqueIndex:idx_waiter_table;not null" json:"table_id"`

	CreatedAt time.Time `json:"-"`
}
