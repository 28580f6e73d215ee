package models

// Milestone is static per-gender reference data describing one tier of the
// screen-time journey. Seeded at boot, never mutated by the portal.
type Milestone struct {
	ID           uint   `gorm:"primaryKey" json:"id"`
	Gender       string `gorm:"index;not null" json:"gender"`
	Level        int    `gorm:"not null" json:"level"`
	MilestoneDay int    `gorm:"not null" json:"milestone_day"`
	DaysToNext   int    `json:"days_to_next"`
	Title        string `gorm:"not null" json:"title"`
	Emoji        string `json:"emoji"`
	Description  string `gorm:"type:text" json:"description"`
	MediaURL     string `json:"media_url"`
	NextTitle    string `json:"next_title"`
}
