package model

import "time"

// Admin is a restaurant operator account authenticated by email/password.
type Admin struct {
	ID           int64  `gorm:"primaryKey" json:"id"`
	RestaurantID int64  `gorm:"index;not null" json:"restaurant_id"`
	Email        string `gorm:"uniqueIndex;size:256;not null" json:"email"`
	PasswordHash string `gorm:"size:128;not null" json:"-"`

	CreatedAt time.Time `json:"-"`
	UpdatedAt time.Time `json:"-"`
}
