package models

import (
	"time"

	"gorm.io/gorm"
)

// Pincode purposes. A code is tied to exactly one device lifecycle event.
const (
	PincodePurposeSetup  = "device_setup"
	PincodePurposeUnlock = "unlock"
)

// Pincode is a single-use 4-digit code stored hashed. Issuing a new code
// invalidates any previous code for the same device and purpose.
type Pincode struct {
	gorm.Model
	CustomerID string    `gorm:"index;not null" json:"customer_id"`
	DeviceID   string    `gorm:"index;not null" json:"device_id"`
	Purpose    string    `gorm:"not null" json:"purpose"`
	CodeHash   string    `gorm:"not null" json:"-"`
	Used       bool      `gorm:"default:false" json:"used"`
	IssuedAt   time.Time `json:"issued_at"`
}
