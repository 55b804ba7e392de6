package model

import "time"

// Restaurant is the scoping root for tables, waiters, admins, and calls.
type Restaurant struct {
	ID   int64  `gorm:"primaryKey" json:"id"`
	Name string `gorm:"size:256;not null" json:"name"`

	// AccessCodeHash is the bcrypt hash of the shared numeric staff access
	// code. The plaintext code is never stored; reset issues a new one.
	AccessCodeHash string `gorm:"size:128;not null" json:"-"`

	CreatedAt time.Time `json:"-"`
	UpdatedAt time.Time `json:"-"`

	// Associations
	Tables  []Table  `gorm:"foreignKey:RestaurantID" json:"-"`
	Waiters []Waiter `gorm:"foreignKey:RestaurantID" json:"-"`
}
