package model

import "time"

// Table represents a physical restaurant table a customer can call from.
type Table struct {
	ID           int64 `gorm:"primaryKey" json:"id"`
	RestaurantID int64 `gorm:"index;not null" json:"restaurant_id"`

	// Code is the opaque public token encoded in the table's QR code.
	// It is the only identity a customer presents when creating a call.
	Code  string `gorm:"uniqueIndex;size:64;not null" json:"code"`
	Label string `gorm:"size:128;not null" json:"label"`

	Active bool `gorm:"not null;default:true" json:"active"`

	CreatedAt time.Time `json:"-"`
	UpdatedAt time.Time `json:"-"`

	// Associations
	Restaurant Restaurant `gorm:"constraint:OnDelete:CASCADE" json:"-"`
}
