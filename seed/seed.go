package seed

import (
	"errors"
	"log"

	"screentime-journey-server/models"
	"screentime-journey-server/utils"

	"gorm.io/gorm"
)

// SeedMilestones inserts the per-gender milestone tier lists. The tiers are
// reference data: the portal only ever reads them.
func SeedMilestones() error {
	var existing models.Milestone
	err := utils.PortalDB.Where("gender = ? AND level = ?", "male", 1).First(&existing).Error
	if err == nil {
		log.Println("Milestone tiers already seeded. Skipping.")
		return nil
	}
	if !errors.Is(err, gorm.ErrRecordNotFound) {
		return err
	}

	milestones := []models.Milestone{
		{Gender: "male", Level: 1, MilestoneDay: 0, DaysToNext: 7, Title: "Starter", Emoji: "🌱",
			Description: "Day one. The journey away from the screen begins.", NextTitle: "Fighter",
			MediaURL: utils.Cfg.AssetBaseURL + "/milestones/male/starter.mp4"},
		{Gender: "male", Level: 2, MilestoneDay: 7, DaysToNext: 351, Title: "Fighter", Emoji: "🥊",
			Description: "One week in focus. The hardest part is behind you.", NextTitle: "Warrior",
			MediaURL: utils.Cfg.AssetBaseURL + "/milestones/male/fighter.mp4"},
		{Gender: "male", Level: 3, MilestoneDay: 358, DaysToNext: 7, Title: "Warrior", Emoji: "⚔️",
			Description: "Almost a full year of focus. The crown is in sight.", NextTitle: "King",
			MediaURL: utils.Cfg.AssetBaseURL + "/milestones/male/warrior.mp4"},
		{Gender: "male", Level: 4, MilestoneDay: 365, DaysToNext: 0, Title: "King", Emoji: "👑",
			Description: "A full year in focus. You rule your attention.",
			MediaURL: utils.Cfg.AssetBaseURL + "/milestones/male/king.mp4"},

		{Gender: "female", Level: 1, MilestoneDay: 0, DaysToNext: 7, Title: "Spark", Emoji: "✨",
			Description: "Day one. The journey away from the screen begins.", NextTitle: "Phoenix",
			MediaURL: utils.Cfg.AssetBaseURL + "/milestones/female/spark.mp4"},
		{Gender: "female", Level: 2, MilestoneDay: 7, DaysToNext: 351, Title: "Phoenix", Emoji: "🔥",
			Description: "One week in focus. The hardest part is behind you.", NextTitle: "Guardian",
			MediaURL: utils.Cfg.AssetBaseURL + "/milestones/female/phoenix.mp4"},
		{Gender: "female", Level: 3, MilestoneDay: 358, DaysToNext: 7, Title: "Guardian", Emoji: "🛡️",
			Description: "Almost a full year of focus. The crown is in sight.", NextTitle: "Queen",
			MediaURL: utils.Cfg.AssetBaseURL + "/milestones/female/guardian.mp4"},
		{Gender: "female", Level: 4, MilestoneDay: 365, DaysToNext: 0, Title: "Queen", Emoji: "👑",
			Description: "A full year in focus. You rule your attention.",
			MediaURL: utils.Cfg.AssetBaseURL + "/milestones/female/queen.mp4"},
	}

	if err := utils.PortalDB.Create(&milestones).Error; err != nil {
		return err
	}

	log.Println("Milestone tiers seeded successfully.")
	return nil
}
