package milestones

import (
	"net/http"
	"time"

	"screentime-journey-server/handlers/session"
	"screentime-journey-server/models"
	"screentime-journey-server/utils"

	"github.com/gin-gonic/gin"
)

// GetMilestones returns the gendered tier list plus the computed journey
// progress for the customer's oldest device.
func GetMilestones(c *gin.Context) {
	customerID := session.CustomerID(c)

	gender := c.Query("gender")
	if customerInterface, exists := c.Get("customer"); exists && gender == "" {
		gender = customerInterface.(models.Customer).Gender
	}
	if gender == "" {
		gender = "male"
	}

	var all []models.Milestone
	if err := utils.PortalDB.Order("level asc").Find(&all).Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to load milestones."})
		return
	}
	tiers := TiersForGender(all, gender)

	// Progress is measured against the oldest enrolled device; a customer
	// with no devices is at day zero.
	var device *models.Device
	var oldest models.Device
	if err := utils.PortalDB.Where("customer_id = ?", customerID).
		Order("added_at asc").First(&oldest).Error; err == nil {
		device = &oldest
	}

	progress := CalculateProgress(device, tiers, time.Now())

	c.JSON(http.StatusOK, gin.H{
		"milestones": tiers,
		"progress":   progress,
	})
}
