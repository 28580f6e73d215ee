package milestones

import (
	"log"
	"net/http"
	"time"

	"screentime-journey-server/handlers/session"
	"screentime-journey-server/models"
	"screentime-journey-server/utils"

	"github.com/gin-gonic/gin"
)

// defaultPercentile is returned when the ranking query fails. Percentile is
// a non-critical decoration on the dashboard; it never blocks anything.
const defaultPercentile = 50

// CalculatePercentile ranks the customer's days-in-focus against every
// other customer with at least one device.
func CalculatePercentile(c *gin.Context) {
	customerID := session.CustomerID(c)

	var mine models.Device
	if err := utils.PortalDB.Where("customer_id = ?", customerID).
		Order("added_at asc").First(&mine).Error; err != nil {
		c.JSON(http.StatusOK, gin.H{"percentile": defaultPercentile})
		return
	}

	var total, behind int64
	if err := utils.PortalDB.Model(&models.Device{}).
		Distinct("customer_id").Count(&total).Error; err != nil {
		log.Printf("Percentile ranking failed: %v", err)
		c.JSON(http.StatusOK, gin.H{"percentile": defaultPercentile})
		return
	}
	if err := utils.PortalDB.Model(&models.Device{}).
		Where("added_at >= ?", mine.AddedAt).
		Distinct("customer_id").Count(&behind).Error; err != nil {
		log.Printf("Percentile ranking failed: %v", err)
		c.JSON(http.StatusOK, gin.H{"percentile": defaultPercentile})
		return
	}

	percentile := defaultPercentile
	if total > 0 {
		percentile = int(100 * behind / total)
	}

	daysInFocus := int(time.Since(mine.AddedAt).Hours() / 24)
	c.JSON(http.StatusOK, gin.H{
		"percentile":    percentile,
		"days_in_focus": daysInFocus,
	})
}
