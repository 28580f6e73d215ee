package session

import (
	"net/http"

	"screentime-journey-server/models"
	"screentime-journey-server/utils"

	"github.com/gin-gonic/gin"
)

// IssueSession exchanges a resolved identity for a fresh stj_session
// cookie. Called after the storefront SSO handoff so later requests can
// authenticate without the SSO token.
func IssueSession(c *gin.Context) {
	customerID := CustomerID(c)

	profileComplete := false
	if customerInterface, exists := c.Get("customer"); exists {
		customer := customerInterface.(models.Customer)
		profileComplete = customer.Username != ""
	}

	token := utils.MintSessionToken(utils.Cfg.ShopDomain, customerID, profileComplete)

	c.SetSameSite(http.SameSiteLaxMode)
	c.SetCookie(utils.SessionCookieName, token, utils.SessionTTL, "/", "", true, false)

	c.JSON(http.StatusOK, gin.H{
		"message":          "Session issued.",
		"customer_id":      customerID,
		"profile_complete": profileComplete,
	})
}
