package devices

import (
	"fmt"
	"net/http"

	"screentime-journey-server/handlers/session"
	"screentime-journey-server/models"
	"screentime-journey-server/utils"

	"github.com/gin-gonic/gin"
	"github.com/go-resty/resty/v2"
	"go.uber.org/zap"
)

// SurrenderTranscript is the fixed statement the customer must read aloud
// to have an unlock approved.
const SurrenderTranscript = "I surrender. I choose to unlock my device and I accept that it will no longer be monitored."

var surrenderClient = resty.New()

type surrenderVerdict struct {
	Approved bool   `json:"approved"`
	Feedback string `json:"feedback"`
	Error    string `json:"error"`
}

// ValidateSurrender submits a recorded surrender statement to the backend
// validator. Approval issues an unlock pincode for the device; rejection
// returns the validator's feedback so the customer can re-record.
func ValidateSurrender(c *gin.Context) {
	customerID := session.CustomerID(c)

	var input struct {
		DeviceID     string `json:"device_id"`
		RecordingURL string `json:"recording_url"`
	}
	if err := c.ShouldBindJSON(&input); err != nil || input.DeviceID == "" || input.RecordingURL == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "A recording is required before the surrender can be validated."})
		return
	}

	approved, feedback, err := SubmitSurrender(customerID, input.RecordingURL)
	if err != nil {
		c.JSON(http.StatusBadGateway, gin.H{"error": "Surrender validation is unavailable. Please try again."})
		return
	}
	if !approved {
		c.JSON(http.StatusOK, gin.H{"approved": false, "feedback": feedback})
		return
	}

	code, err := IssuePincode(customerID, input.DeviceID, models.PincodePurposeUnlock)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to issue unlock pincode."})
		return
	}

	c.JSON(http.StatusOK, gin.H{"approved": true, "pincode": code})
}

// SubmitSurrender sends the recording plus the fixed transcript to the
// validator backend and returns its verdict.
func SubmitSurrender(customerID, recordingURL string) (bool, string, error) {
	var verdict surrenderVerdict
	resp, err := surrenderClient.R().
		SetBody(map[string]string{
			"customer_id":   customerID,
			"recording_url": recordingURL,
			"transcript":    SurrenderTranscript,
		}).
		SetResult(&verdict).
		Post(utils.Cfg.SurrenderValidatorURL)
	if err != nil {
		zap.L().Error("surrender validation failed", zap.Error(err))
		return false, "", err
	}
	if resp.StatusCode() != 200 {
		zap.L().Error("surrender validator rejected request", zap.Int("status", resp.StatusCode()))
		return false, "", fmt.Errorf("surrender validator returned status %d", resp.StatusCode())
	}
	return verdict.Approved, verdict.Feedback, nil
}
