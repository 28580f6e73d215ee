package models

import "gorm.io/gorm"

// VPNProfile holds a generated Apple configuration profile (plist) that
// enforces DNS-based content filtering. Served once by token; the content
// never changes after generation.
type VPNProfile struct {
	gorm.Model
	Token      string `gorm:"unique;not null" json:"token"`
	CustomerID string `gorm:"index;not null" json:"customer_id"`
	DeviceID   string `gorm:"index" json:"device_id"`
	DeviceType string `json:"device_type"`
	Content    string `gorm:"type:mediumtext" json:"-"`
}
