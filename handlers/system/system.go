package system

import (
	"net/http"

	"screentime-journey-server/models"
	"screentime-journey-server/utils"

	"github.com/gin-gonic/gin"
)

// GetSystemConfig exposes the public subset of the runtime configuration
// the dashboard needs at boot.
func GetSystemConfig(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"environment":            utils.Cfg.AppEnv,
		"asset_base_url":         utils.Cfg.AssetBaseURL,
		"max_devices":            models.MaxDevicesPerCustomer,
		"default_unlock_minutes": utils.Cfg.DefaultUnlockMinutes,
		"filter_dns_host":        utils.Cfg.FilterDNSHost,
		"shop_domain":            utils.Cfg.ShopDomain,
	})
}
