package migrations

import (
	"screentime-journey-server/models"
	"screentime-journey-server/utils"
)

func MigrateRenderJobs() {
	utils.PortalDB.AutoMigrate(&models.RenderJob{})
}
