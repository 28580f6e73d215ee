package migrations

import (
	"screentime-journey-server/models"
	"screentime-journey-server/utils"
)

func MigrateCustomers() {
	utils.PortalDB.AutoMigrate(&models.Customer{})
}
