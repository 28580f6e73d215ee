package migrations

import (
	"screentime-journey-server/models"
	"screentime-journey-server/utils"
)

func MigrateMilestones() {
	utils.PortalDB.AutoMigrate(&models.Milestone{})
}
