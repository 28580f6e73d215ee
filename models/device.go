package models

import (
	"time"

	"gorm.io/gorm"
)

// Device status values.
const (
	DeviceLocked        = "locked"
	DeviceUnlocked      = "unlocked"
	DeviceMonitoring    = "monitoring"
	DeviceSetupComplete = "setup_complete"
)

// Device type values. Only Apple platforms are supported.
const (
	DeviceTypeIOS   = "iOS"
	DeviceTypeMacOS = "macOS"
)

// MaxDevicesPerCustomer caps how many devices a single customer may enroll.
const MaxDevicesPerCustomer = 3

type Device struct {
	gorm.Model
	DeviceID      string     `gorm:"unique;not null" json:"device_id"`
	CustomerID    string     `gorm:"index;not null" json:"customer_id"`
	Name          string     `gorm:"not null" json:"name"`
	Type          string     `gorm:"not null" json:"type"`
	Status        string     `gorm:"default:locked" json:"status"`
	AddedAt       time.Time  `json:"added_at"`
	AudioGuideURL string     `json:"audio_guide_url"`
	VPNProfileURL string     `json:"vpn_profile_url"`
	UnlockedUntil *time.Time `json:"unlocked_until,omitempty"`
}

func ValidDeviceType(t string) bool {
	return t == DeviceTypeIOS || t == DeviceTypeMacOS
}
