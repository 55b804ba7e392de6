package model

import "time"

// PushSubscription holds one browser push endpoint for one waiter device.
// At most one row exists per (waiter, device): re-subscribing from the same
// device replaces the previous endpoint and keys.
type PushSubscription struct {
	ID           int64 `gorm:"primaryKey" json:"id"`
	WaiterID     int64 `gorm:"uniqueIndex:idx_waiter_device;not null" json:"waiter_id"`
	RestaurantID int64 `gorm:"index;not null" json:"restaurant_id"`

	Endpoint string `gorm:"uniqueIndex;size:512;not null" json:"endpoint"`
	P256DH   string `gorm:"column:p256dh;size:256;not null" json:"-"`
	Auth     string `gorm:"size:256;not null" json:"-"`

	// DeviceTag identifies the physical device, typically derived from the
	// user agent. Empty tags share one slot per waiter.
	DeviceTag string `gorm:"uniqueIndex:idx_waiter_device;size:256" json:"device_tag"`

	CreatedAt  time.Time  `json:"created_at"`
	LastUsedAt *time.Time `json:"last_used_at"`
}
