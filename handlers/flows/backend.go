package flows

import (
	"screentime-journey-server/handlers/devices"
	"screentime-journey-server/models"
	"screentime-journey-server/utils"
)

// LiveBackend wires the engine to the portal database and the external
// provisioning backends through the devices package.
type LiveBackend struct{}

func (LiveBackend) CountDevices(customerID string) (int, error) {
	list, err := devices.ListDevices(customerID)
	return len(list), err
}

func (LiveBackend) DeviceExists(customerID, deviceID string) (bool, error) {
	var count int64
	err := utils.PortalDB.Model(&models.Device{}).
		Where("customer_id = ? AND device_id = ?", customerID, deviceID).
		Count(&count).Error
	return count > 0, err
}

func (LiveBackend) InsertDevice(customerID string, device *models.Device) error {
	return devices.InsertDevice(customerID, device)
}

func (LiveBackend) UpdateDevice(customerID, deviceID string, updates map[string]interface{}) error {
	return devices.ApplyDeviceUpdates(customerID, deviceID, updates)
}

func (LiveBackend) UnlockDevice(customerID, deviceID string, minutes *int) error {
	m := 0
	if minutes != nil {
		m = *minutes
	}
	return devices.TimedUnlock(customerID, deviceID, &m)
}

func (LiveBackend) RemoveDevice(customerID, deviceID string) error {
	return devices.DeleteDevice(customerID, deviceID)
}

func (LiveBackend) IssuePincode(customerID, deviceID, purpose string) (string, error) {
	return devices.IssuePincode(customerID, deviceID, purpose)
}

func (LiveBackend) GenerateAudioGuide(customerID, deviceID, pincode string) (string, error) {
	return devices.RequestAudioGuide(customerID, deviceID, pincode, false)
}

func (LiveBackend) GenerateVPNProfile(customerID, deviceID, deviceType, pincode string) (string, error) {
	return devices.BuildVPNProfile(customerID, deviceID, deviceType, pincode)
}

func (LiveBackend) ValidateSurrender(customerID, recordingURL string) (bool, string, error) {
	return devices.SubmitSurrender(customerID, recordingURL)
}
