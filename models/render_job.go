package models

import (
	"time"

	"gorm.io/gorm"
)

// Render job status values.
const (
	RenderQueued    = "queued"
	RenderRendering = "rendering"
	RenderDone      = "done"
	RenderError     = "error"
)

// Composition identifiers accepted by the render farm.
const (
	CompositionMilestoneReel   = "MilestoneReel"
	CompositionSocialShareReel = "SocialShareReel"
)

// RenderJob tracks one personalized video render delegated to the external
// Remotion render farm. PropsJSON holds the flat composition props as sent.
type RenderJob struct {
	gorm.Model
	JobID       string     `gorm:"unique;not null" json:"job_id"`
	CustomerID  string     `gorm:"index" json:"customer_id"`
	Composition string     `gorm:"not null" json:"composition"`
	PropsJSON   string     `gorm:"type:text" json:"-"`
	RemoteID    string     `json:"-"`
	Status      string     `gorm:"default:queued" json:"status"`
	Progress    float64    `json:"progress"`
	OutputURL   string     `json:"output_url"`
	ErrorText   string     `json:"error,omitempty"`
	FinishedAt  *time.Time `json:"finished_at,omitempty"`
}
