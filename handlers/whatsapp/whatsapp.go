package whatsapp

import (
	"net/http"
	"time"

	"screentime-journey-server/models"
	"screentime-journey-server/utils"

	"github.com/gin-gonic/gin"
	"golang.org/x/crypto/bcrypt"
)

const codeValidityDuration = 10 * time.Minute

func RegisterWhatsappRoutes(r *gin.RouterGroup) {
	r.POST("/send_whatsapp_code", SendWhatsappCode)
	r.POST("/verify_whatsapp_code", VerifyWhatsappCode)
}

// SendWhatsappCode generates a 6-digit verification code, stores its hash
// on the profile and sends it via the WhatsApp gateway. The gateway call
// has a 5-second timeout; a slow gateway fails the request rather than
// hanging it.
func SendWhatsappCode(c *gin.Context) {
	customerInterface, exists := c.Get("customer")
	if !exists {
		c.JSON(http.StatusNotFound, gin.H{"error": "Profile not found. Save your profile first."})
		return
	}
	customer := customerInterface.(models.Customer)

	var input struct {
		WhatsappNumber string `json:"whatsapp_number"`
	}
	if err := c.ShouldBindJSON(&input); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request payload"})
		return
	}
	if input.WhatsappNumber != "" {
		customer.WhatsappNumber = input.WhatsappNumber
		customer.WhatsappVerified = false
	}
	if customer.WhatsappNumber == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "A WhatsApp number is required."})
		return
	}

	code := utils.GenerateDigitCode(6)
	hash, err := bcrypt.GenerateFromPassword([]byte(code), bcrypt.DefaultCost)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to generate verification code."})
		return
	}

	now := time.Now()
	customer.WhatsappCodeHash = string(hash)
	customer.WhatsappCodeSentAt = &now

	if err := utils.PortalDB.Save(&customer).Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to store verification code."})
		return
	}

	if err := utils.SendVerificationWhatsApp(customer.WhatsappNumber, code); err != nil {
		c.JSON(http.StatusBadGateway, gin.H{"error": "Failed to send the WhatsApp code. Please try again."})
		return
	}

	c.JSON(http.StatusOK, gin.H{"success": true, "message": "Verification code sent via WhatsApp."})
}

// VerifyWhatsappCode checks the submitted code and marks the number
// verified.
func VerifyWhatsappCode(c *gin.Context) {
	customerInterface, exists := c.Get("customer")
	if !exists {
		c.JSON(http.StatusNotFound, gin.H{"error": "Profile not found."})
		return
	}
	customer := customerInterface.(models.Customer)

	var input struct {
		Code string `json:"code"`
	}
	if err := c.ShouldBindJSON(&input); err != nil || input.Code == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "A verification code is required."})
		return
	}

	if customer.WhatsappCodeHash == "" || customer.WhatsappCodeSentAt == nil {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "No verification code outstanding. Request a new one."})
		return
	}
	if time.Now().After(customer.WhatsappCodeSentAt.Add(codeValidityDuration)) {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "The code has expired. Request a new one."})
		return
	}
	if bcrypt.CompareHashAndPassword([]byte(customer.WhatsappCodeHash), []byte(input.Code)) != nil {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "The code is incorrect. Please try again."})
		return
	}

	customer.WhatsappVerified = true
	customer.WhatsappCodeHash = ""
	customer.WhatsappCodeSentAt = nil

	if err := utils.PortalDB.Save(&customer).Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to save verification."})
		return
	}

	c.JSON(http.StatusOK, gin.H{"success": true, "message": "WhatsApp number verified."})
}
