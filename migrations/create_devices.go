package migrations

import (
	"screentime-journey-server/models"
	"screentime-journey-server/utils"
)

func MigrateDevices() {
	utils.PortalDB.AutoMigrate(&models.Device{})
	utils.PortalDB.AutoMigrate(&models.Pincode{})
	utils.PortalDB.AutoMigrate(&models.VPNProfile{})
}
