package devices

import (
	"net/http"
	"time"

	"screentime-journey-server/handlers/session"
	"screentime-journey-server/models"
	"screentime-journey-server/utils"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

func RegisterDeviceRoutes(r *gin.RouterGroup) {
	r.GET("/get_devices", GetDevices)
	r.POST("/add_device", AddDevice)
	r.POST("/update_device", UpdateDevice)
	r.POST("/unlock_device", UnlockDevice)
	r.POST("/remove_device", RemoveDevice)
	r.POST("/store_pincode", StorePincode)
	r.POST("/verify_pincode", VerifyPincode)
	r.POST("/generate_vpn_profile", GenerateVPNProfile)
	r.POST("/generate_audio_guide", GenerateAudioGuide)
	r.POST("/regenerate_audio_guide", RegenerateAudioGuide)
	r.POST("/validate_surrender", ValidateSurrender)
	r.POST("/send_unlock_email", SendUnlockEmail)
}

// GetDevices lists the customer's enrolled devices.
func GetDevices(c *gin.Context) {
	customerID := session.CustomerID(c)

	var devices []models.Device
	if err := utils.PortalDB.Where("customer_id = ?", customerID).
		Order("added_at asc").Find(&devices).Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to load devices."})
		return
	}

	c.JSON(http.StatusOK, gin.H{"devices": devices, "max_devices": models.MaxDevicesPerCustomer})
}

// AddDevice enrolls a new device, enforcing the per-customer cap.
func AddDevice(c *gin.Context) {
	customerID := session.CustomerID(c)

	var input struct {
		DeviceID      string `json:"device_id"`
		Name          string `json:"name"`
		Type          string `json:"type"`
		AudioGuideURL string `json:"audio_guide_url"`
		VPNProfileURL string `json:"vpn_profile_url"`
	}
	if err := c.ShouldBindJSON(&input); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request payload"})
		return
	}

	device := models.Device{
		DeviceID:      input.DeviceID,
		Name:          input.Name,
		Type:          input.Type,
		AudioGuideURL: input.AudioGuideURL,
		VPNProfileURL: input.VPNProfileURL,
	}

	if err := InsertDevice(customerID, &device); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	c.JSON(http.StatusOK, gin.H{"success": true, "device": device})
}

// UpdateDevice applies partial updates to one of the customer's devices.
func UpdateDevice(c *gin.Context) {
	customerID := session.CustomerID(c)

	var input struct {
		DeviceID string                 `json:"device_id"`
		Updates  map[string]interface{} `json:"updates"`
	}
	if err := c.ShouldBindJSON(&input); err != nil || input.DeviceID == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request payload"})
		return
	}

	if err := ApplyDeviceUpdates(customerID, input.DeviceID, input.Updates); err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "Device not found."})
		return
	}

	c.JSON(http.StatusOK, gin.H{"success": true})
}

// UnlockDevice grants a timed unlock. The device re-locks automatically
// once unlocked_until passes (see tasks.RelockTask). Permanent removal of
// monitoring only happens through the surrender flow.
func UnlockDevice(c *gin.Context) {
	customerID := session.CustomerID(c)

	var input struct {
		DeviceID              string `json:"device_id"`
		UnlockDurationMinutes int    `json:"unlock_duration_minutes"`
	}
	if err := c.ShouldBindJSON(&input); err != nil || input.DeviceID == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request payload"})
		return
	}

	minutes := input.UnlockDurationMinutes
	if err := TimedUnlock(customerID, input.DeviceID, &minutes); err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "Device not found."})
		return
	}

	c.JSON(http.StatusOK, gin.H{"success": true, "unlock_duration_minutes": minutes})
}

// RemoveDevice permanently deletes a device from the registry.
func RemoveDevice(c *gin.Context) {
	customerID := session.CustomerID(c)

	var input struct {
		DeviceID string `json:"device_id"`
	}
	if err := c.ShouldBindJSON(&input); err != nil || input.DeviceID == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request payload"})
		return
	}

	if err := DeleteDevice(customerID, input.DeviceID); err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to remove device."})
		return
	}

	c.JSON(http.StatusOK, gin.H{"success": true})
}

// SendUnlockEmail mails the customer's unlock pincode for a device.
func SendUnlockEmail(c *gin.Context) {
	customerID := session.CustomerID(c)

	var input struct {
		DeviceID string `json:"device_id"`
	}
	if err := c.ShouldBindJSON(&input); err != nil || input.DeviceID == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request payload"})
		return
	}

	var device models.Device
	if err := utils.PortalDB.Where("customer_id = ? AND device_id = ?", customerID, input.DeviceID).
		First(&device).Error; err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "Device not found."})
		return
	}

	customerInterface, exists := c.Get("customer")
	if !exists {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Profile not found. Save your profile first."})
		return
	}
	customer := customerInterface.(models.Customer)
	if customer.Email == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "No email address on file."})
		return
	}

	code, err := IssuePincode(customerID, device.DeviceID, models.PincodePurposeUnlock)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to generate unlock code."})
		return
	}

	if err := utils.SendUnlockEmail(customer.Email, device.Name, code); err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to send unlock email."})
		return
	}

	c.JSON(http.StatusOK, gin.H{"success": true, "message": "Unlock code sent to your email."})
}

// InsertDevice persists a new device after cap and type checks. Exported
// for the flow engine, which commits staged devices on flow completion.
func InsertDevice(customerID string, device *models.Device) error {
	if !models.ValidDeviceType(device.Type) {
		return errDeviceType
	}

	var count int64
	if err := utils.PortalDB.Model(&models.Device{}).
		Where("customer_id = ?", customerID).Count(&count).Error; err != nil {
		return err
	}
	if count >= models.MaxDevicesPerCustomer {
		return errDeviceLimit
	}

	if device.DeviceID == "" {
		device.DeviceID = uuid.NewString()
	}
	device.CustomerID = customerID
	if device.Status == "" {
		device.Status = models.DeviceLocked
	}
	if device.AddedAt.IsZero() {
		device.AddedAt = time.Now()
	}

	return utils.PortalDB.Create(device).Error
}

// ApplyDeviceUpdates writes a whitelisted set of fields to a device row.
func ApplyDeviceUpdates(customerID, deviceID string, updates map[string]interface{}) error {
	allowed := map[string]bool{
		"name": true, "status": true, "audio_guide_url": true, "vpn_profile_url": true,
	}
	filtered := map[string]interface{}{}
	for k, v := range updates {
		if allowed[k] {
			filtered[k] = v
		}
	}
	if len(filtered) == 0 {
		return nil
	}

	res := utils.PortalDB.Model(&models.Device{}).
		Where("customer_id = ? AND device_id = ?", customerID, deviceID).
		Updates(filtered)
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return errDeviceNotFound
	}
	return nil
}

// TimedUnlock marks a device unlocked until now + minutes. The caller's
// minutes pointer is normalized to the applied duration.
func TimedUnlock(customerID, deviceID string, minutes *int) error {
	if *minutes <= 0 {
		*minutes = utils.Cfg.DefaultUnlockMinutes
	}
	until := time.Now().Add(time.Duration(*minutes) * time.Minute)

	res := utils.PortalDB.Model(&models.Device{}).
		Where("customer_id = ? AND device_id = ?", customerID, deviceID).
		Updates(map[string]interface{}{
			"status":         models.DeviceUnlocked,
			"unlocked_until": until,
		})
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return errDeviceNotFound
	}
	return nil
}

// DeleteDevice removes the device row. Deleting an already-absent device
// is not an error: unlock-flow removal must be idempotent.
func DeleteDevice(customerID, deviceID string) error {
	return utils.PortalDB.Where("customer_id = ? AND device_id = ?", customerID, deviceID).
		Delete(&models.Device{}).Error
}

// ListDevices returns the customer's devices, oldest first.
func ListDevices(customerID string) ([]models.Device, error) {
	var devices []models.Device
	err := utils.PortalDB.Where("customer_id = ?", customerID).
		Order("added_at asc").Find(&devices).Error
	return devices, err
}
