package models

import (
	"time"

	"gorm.io/gorm"
)

// Subscription status values for a customer.
const (
	SubscriptionActive          = "active"
	SubscriptionCancelled       = "cancelled"
	SubscriptionCancelScheduled = "cancel_scheduled"
)

type Customer struct {
	gorm.Model
	ShopifyCustomerID string `gorm:"unique;not null" json:"shopify_customer_id"`
	Username          string `gorm:"unique" json:"username"`
	Gender            string `json:"gender"`

	WhatsappNumber     string     `json:"whatsapp_number"`
	WhatsappVerified   bool       `gorm:"default:false" json:"whatsapp_verified"`
	WhatsappCodeHash   string     `json:"-"`
	WhatsappCodeSentAt *time.Time `json:"-"`

	// Commitment statement: three free-text answers collected during onboarding.
	CommitmentWhy   string `gorm:"type:text" json:"commitment_why"`
	CommitmentFeel  string `gorm:"type:text" json:"commitment_feel"`
	CommitmentGoal  string `gorm:"type:text" json:"commitment_goal"`
	CommitmentScore int    `json:"commitment_score"`

	SubscriptionStatus   string `gorm:"default:active" json:"subscription_status"`
	StripeSubscriptionID string `json:"-"`

	NotifyEmail    bool   `gorm:"default:true" json:"notify_email"`
	NotifyWhatsapp bool   `gorm:"default:true" json:"notify_whatsapp"`
	NotifyPush     bool   `gorm:"default:false" json:"notify_push"`
	PushToken      string `gorm:"column:push_token" json:"push_token"`
	Email          string `json:"email"`
}
