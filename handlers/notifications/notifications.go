package notifications

import (
	"net/http"

	"screentime-journey-server/models"
	"screentime-journey-server/utils"

	"github.com/gin-gonic/gin"
)

func RegisterNotificationsRoutes(r *gin.RouterGroup) {
	r.POST("/update_notifications", UpdateNotifications)
	r.POST("/save_push_token", SavePushToken)
}

// UpdateNotifications stores the customer's per-channel notification
// preferences.
func UpdateNotifications(c *gin.Context) {
	customerInterface, exists := c.Get("customer")
	if !exists {
		c.JSON(http.StatusNotFound, gin.H{"error": "Profile not found."})
		return
	}
	customer := customerInterface.(models.Customer)

	var input struct {
		NotifyEmail    *bool `json:"notify_email"`
		NotifyWhatsapp *bool `json:"notify_whatsapp"`
		NotifyPush     *bool `json:"notify_push"`
	}
	if err := c.ShouldBindJSON(&input); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request payload"})
		return
	}

	if input.NotifyEmail != nil {
		customer.NotifyEmail = *input.NotifyEmail
	}
	if input.NotifyWhatsapp != nil {
		customer.NotifyWhatsapp = *input.NotifyWhatsapp
	}
	if input.NotifyPush != nil {
		customer.NotifyPush = *input.NotifyPush
	}

	if err := utils.PortalDB.Save(&customer).Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to update notification preferences."})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"success":         true,
		"notify_email":    customer.NotifyEmail,
		"notify_whatsapp": customer.NotifyWhatsapp,
		"notify_push":     customer.NotifyPush,
	})
}

// SavePushToken stores the push token of the customer's dashboard PWA.
func SavePushToken(c *gin.Context) {
	customerInterface, exists := c.Get("customer")
	if !exists {
		c.JSON(http.StatusNotFound, gin.H{"error": "Profile not found."})
		return
	}
	customer := customerInterface.(models.Customer)

	var req struct {
		PushToken string `json:"push_token"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request payload"})
		return
	}

	if err := utils.PortalDB.Model(&customer).Update("push_token", req.PushToken).Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to save push token"})
		return
	}

	c.JSON(http.StatusOK, gin.H{"status": "Push token saved"})
}
