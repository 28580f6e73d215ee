package session

import (
	"net/http"
	"os"

	"screentime-journey-server/models"
	"screentime-journey-server/utils"

	"github.com/gin-gonic/gin"
)

// SessionMiddleware resolves the customer identity for every protected
// route. Resolution order: explicit query parameters, Shopify SSO bearer
// token, signed session cookie, then (outside production) a manual
// override parameter. The resolved id is stored in the gin context; when
// a profile row exists it is loaded alongside.
func SessionMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		customerID := resolveCustomerID(c)
		if customerID == "" {
			c.JSON(http.StatusUnauthorized, gin.H{"error": "Authentication required"})
			c.Abort()
			return
		}

		c.Set("customer_id", customerID)

		var customer models.Customer
		if err := utils.PortalDB.Where("shopify_customer_id = ?", customerID).First(&customer).Error; err == nil {
			c.Set("customer", customer)
		}

		c.Next()
	}
}

func resolveCustomerID(c *gin.Context) string {
	if cid := c.Query("cid"); cid != "" {
		return cid
	}
	if cid := c.Query("logged_in_customer_id"); cid != "" {
		return cid
	}

	if authHeader := c.GetHeader("Authorization"); authHeader != "" {
		if cid, err := utils.ExtractCustomerIDFromSSOToken(authHeader); err == nil {
			return cid
		}
	}

	if cookie, err := c.Cookie(utils.SessionCookieName); err == nil && cookie != "" {
		if claims, err := utils.VerifySessionToken(cookie); err == nil {
			return claims.CustomerID
		}
	}

	if os.Getenv("APP_ENV") != "production" {
		if cid := c.Query("override_cid"); cid != "" {
			return cid
		}
	}

	return ""
}

// CustomerID pulls the resolved customer id out of the gin context.
func CustomerID(c *gin.Context) string {
	return c.GetString("customer_id")
}
