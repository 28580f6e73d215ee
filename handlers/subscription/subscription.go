package subscription

import (
	"net/http"

	"screentime-journey-server/models"
	"screentime-journey-server/utils"

	"github.com/gin-gonic/gin"
	stripe "github.com/stripe/stripe-go/v80"
	stripesub "github.com/stripe/stripe-go/v80/subscription"
	"go.uber.org/zap"
)

func RegisterSubscriptionRoutes(r *gin.RouterGroup) {
	r.POST("/cancel_subscription", CancelSubscription)
}

// CancelSubscription schedules (or immediately performs) cancellation of
// the customer's Stripe subscription and records the new status.
func CancelSubscription(c *gin.Context) {
	customerInterface, exists := c.Get("customer")
	if !exists {
		c.JSON(http.StatusNotFound, gin.H{"error": "Profile not found."})
		return
	}
	customer := customerInterface.(models.Customer)

	var input struct {
		Immediate bool   `json:"immediate"`
		Reason    string `json:"reason"`
	}
	_ = c.ShouldBindJSON(&input)

	if customer.SubscriptionStatus == models.SubscriptionCancelled {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Your subscription is already cancelled."})
		return
	}
	if customer.StripeSubscriptionID == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "No subscription on file."})
		return
	}

	stripe.Key = utils.Cfg.StripeSecretKey

	newStatus := models.SubscriptionCancelScheduled
	if input.Immediate {
		if _, err := stripesub.Cancel(customer.StripeSubscriptionID, nil); err != nil {
			zap.L().Error("stripe cancellation failed", zap.Error(err))
			c.JSON(http.StatusBadGateway, gin.H{"error": "Cancellation failed. Please try again."})
			return
		}
		newStatus = models.SubscriptionCancelled
	} else {
		params := &stripe.SubscriptionParams{
			CancelAtPeriodEnd: stripe.Bool(true),
		}
		if _, err := stripesub.Update(customer.StripeSubscriptionID, params); err != nil {
			zap.L().Error("stripe cancellation failed", zap.Error(err))
			c.JSON(http.StatusBadGateway, gin.H{"error": "Cancellation failed. Please try again."})
			return
		}
	}

	customer.SubscriptionStatus = newStatus
	if err := utils.PortalDB.Save(&customer).Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to record cancellation."})
		return
	}

	c.JSON(http.StatusOK, gin.H{"success": true, "subscription_status": newStatus})
}
