package tasks

import (
	"fmt"
	"time"

	"screentime-journey-server/models"
	"screentime-journey-server/utils"

	"github.com/robfig/cron/v3"
	"go.uber.org/zap"
)

// RelockTask re-locks devices whose timed unlock has expired. A direct
// unlock is always temporary; only the surrender flow removes a device
// for good.
type RelockTask struct {
	Cron *cron.Cron
}

func NewRelockTask() *RelockTask {
	return &RelockTask{Cron: cron.New()}
}

// Start schedules the sweep every minute.
func (t *RelockTask) Start() {
	if _, err := t.Cron.AddFunc("* * * * *", t.sweep); err != nil {
		zap.L().Fatal("failed to schedule relock task", zap.Error(err))
	}
	t.Cron.Start()
	zap.L().Info("relock task started")
}

func (t *RelockTask) sweep() {
	var expired []models.Device
	if err := utils.PortalDB.
		Where("status = ? AND unlocked_until IS NOT NULL AND unlocked_until <= ?",
			models.DeviceUnlocked, time.Now()).
		Find(&expired).Error; err != nil {
		zap.L().Error("relock sweep failed", zap.Error(err))
		return
	}
	if len(expired) == 0 {
		return
	}

	ids := make([]string, 0, len(expired))
	for _, d := range expired {
		ids = append(ids, d.DeviceID)
	}
	if err := utils.PortalDB.Model(&models.Device{}).
		Where("device_id IN ?", ids).
		Updates(map[string]interface{}{
			"status":         models.DeviceLocked,
			"unlocked_until": nil,
		}).Error; err != nil {
		zap.L().Error("relock sweep failed", zap.Error(err))
		return
	}
	zap.L().Info("devices re-locked", zap.Int("count", len(expired)))

	// Push is best-effort; a missing profile or token just skips the device.
	for _, d := range expired {
		var customer models.Customer
		if err := utils.PortalDB.Where("shopify_customer_id = ?", d.CustomerID).
			First(&customer).Error; err != nil {
			continue
		}
		if !shouldNotifyRelock(customer) {
			continue
		}
		utils.SendPushNotification(customer.PushToken, "Device locked again",
			fmt.Sprintf("%s is back under monitoring.", d.Name))
	}
}

// shouldNotifyRelock reports whether the customer opted into push
// notifications and registered a token.
func shouldNotifyRelock(c models.Customer) bool {
	return c.NotifyPush && c.PushToken != ""
}
