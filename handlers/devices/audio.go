package devices

import (
	"fmt"
	"net/http"

	"screentime-journey-server/handlers/session"
	"screentime-journey-server/utils"

	"github.com/gin-gonic/gin"
	"github.com/go-resty/resty/v2"
	"go.uber.org/zap"
)

var audioClient = resty.New()

// audioGuideResponse is the single agreed response schema of the TTS
// backend. The boundary validates it instead of probing alternate field
// names.
type audioGuideResponse struct {
	Success  bool   `json:"success"`
	AudioURL string `json:"audio_url"`
	Error    string `json:"error"`
}

// GenerateAudioGuide asks the TTS backend to narrate the device's pincode
// and returns the resulting audio URL. No automatic retry: a failure is
// surfaced and the caller retries manually.
func GenerateAudioGuide(c *gin.Context) {
	generateAudioGuide(c, false)
}

// RegenerateAudioGuide forces a fresh narration for an existing pincode.
func RegenerateAudioGuide(c *gin.Context) {
	generateAudioGuide(c, true)
}

func generateAudioGuide(c *gin.Context, regenerate bool) {
	customerID := session.CustomerID(c)

	var input struct {
		DeviceID string `json:"device_id"`
		Pincode  string `json:"pincode"`
	}
	if err := c.ShouldBindJSON(&input); err != nil || input.DeviceID == "" || input.Pincode == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request payload"})
		return
	}

	url, err := RequestAudioGuide(customerID, input.DeviceID, input.Pincode, regenerate)
	if err != nil {
		c.JSON(http.StatusBadGateway, gin.H{"error": "Failed to generate audio guide. Please try again."})
		return
	}

	c.JSON(http.StatusOK, gin.H{"success": true, "audio_url": url})
}

// RequestAudioGuide calls the TTS backend and validates its response.
func RequestAudioGuide(customerID, deviceID, pincode string, regenerate bool) (string, error) {
	var out audioGuideResponse
	resp, err := audioClient.R().
		SetBody(map[string]interface{}{
			"customer_id": customerID,
			"device_id":   deviceID,
			"pincode":     pincode,
			"regenerate":  regenerate,
		}).
		SetResult(&out).
		Post(utils.Cfg.AudioGuideURL)
	if err != nil {
		zap.L().Error("audio guide request failed", zap.String("device_id", deviceID), zap.Error(err))
		return "", err
	}
	if resp.StatusCode() != 200 || !out.Success || out.AudioURL == "" {
		zap.L().Error("audio guide backend rejected request",
			zap.Int("status", resp.StatusCode()), zap.String("backend_error", out.Error))
		return "", fmt.Errorf("audio guide backend returned status %d", resp.StatusCode())
	}
	return out.AudioURL, nil
}
