package devices

import (
	"net/http"
	"time"

	"screentime-journey-server/handlers/session"
	"screentime-journey-server/models"
	"screentime-journey-server/utils"

	"github.com/gin-gonic/gin"
	"golang.org/x/crypto/bcrypt"
)

// StorePincode issues a fresh one-time pincode for a device and purpose.
// The plaintext code is returned exactly once; only the hash is stored.
func StorePincode(c *gin.Context) {
	customerID := session.CustomerID(c)

	var input struct {
		DeviceID string `json:"device_id"`
		Purpose  string `json:"purpose"`
	}
	if err := c.ShouldBindJSON(&input); err != nil || input.DeviceID == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request payload"})
		return
	}
	if input.Purpose != models.PincodePurposeSetup && input.Purpose != models.PincodePurposeUnlock {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Purpose must be device_setup or unlock."})
		return
	}

	code, err := IssuePincode(customerID, input.DeviceID, input.Purpose)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to store pincode."})
		return
	}

	c.JSON(http.StatusOK, gin.H{"success": true, "pincode": code})
}

// VerifyPincode checks a submitted code against the outstanding pincode
// for a device. A correct code is consumed on the spot; codes are
// single-use.
func VerifyPincode(c *gin.Context) {
	var input struct {
		DeviceID string `json:"device_id"`
		Purpose  string `json:"purpose"`
		Code     string `json:"code"`
	}
	if err := c.ShouldBindJSON(&input); err != nil || input.DeviceID == "" || input.Code == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request payload"})
		return
	}
	if input.Purpose != models.PincodePurposeSetup && input.Purpose != models.PincodePurposeUnlock {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Purpose must be device_setup or unlock."})
		return
	}

	if !ConsumePincode(input.DeviceID, input.Purpose, input.Code) {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "The code is incorrect or has already been used."})
		return
	}

	c.JSON(http.StatusOK, gin.H{"valid": true})
}

// IssuePincode generates a 4-digit code, invalidates any previous code for
// the same device and purpose, and stores the new one hashed. Single-use:
// one code per device lifecycle event.
func IssuePincode(customerID, deviceID, purpose string) (string, error) {
	code := utils.GenerateDigitCode(4)

	hash, err := bcrypt.GenerateFromPassword([]byte(code), bcrypt.DefaultCost)
	if err != nil {
		return "", err
	}

	// Issuance invalidates any outstanding code for this device/purpose.
	if err := utils.PortalDB.Model(&models.Pincode{}).
		Where("device_id = ? AND purpose = ? AND used = ?", deviceID, purpose, false).
		Update("used", true).Error; err != nil {
		return "", err
	}

	pincode := models.Pincode{
		CustomerID: customerID,
		DeviceID:   deviceID,
		Purpose:    purpose,
		CodeHash:   string(hash),
		IssuedAt:   time.Now(),
	}
	if err := utils.PortalDB.Create(&pincode).Error; err != nil {
		return "", err
	}

	return code, nil
}

// ConsumePincode verifies a submitted code against the outstanding pincode
// for the device and purpose, and marks it used on success.
func ConsumePincode(deviceID, purpose, code string) bool {
	var pincode models.Pincode
	if err := utils.PortalDB.Where("device_id = ? AND purpose = ? AND used = ?", deviceID, purpose, false).
		Order("issued_at desc").First(&pincode).Error; err != nil {
		return false
	}

	if bcrypt.CompareHashAndPassword([]byte(pincode.CodeHash), []byte(code)) != nil {
		return false
	}

	utils.PortalDB.Model(&pincode).Update("used", true)
	return true
}
