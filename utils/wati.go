package utils

import (
	"fmt"
	"time"

	"github.com/go-resty/resty/v2"
)

// WatiMessage is the payload for a Wati session message.
type WatiMessage struct {
	Phone   string `json:"phone"`
	Message string `json:"message"`
}

// whatsappClient imposes a hard 5-second timeout: a slow WhatsApp gateway
// must never hold up the verification endpoint.
var whatsappClient = resty.New().SetTimeout(5 * time.Second)

// SendVerificationWhatsApp sends a verification code to the customer's
// phone number via the Wati API.
func SendVerificationWhatsApp(phoneNumber, code string) error {
	message := WatiMessage{
		Phone:   phoneNumber,
		Message: fmt.Sprintf("Your Screen Time Journey verification code is: %s", code),
	}

	resp, err := whatsappClient.R().
		SetHeader("Content-Type", "application/json").
		SetAuthToken(Cfg.WatiAPIKey).
		SetBody(message).
		Post(Cfg.WatiURL + "/api/v1/sendSessionMessage")
	if err != nil {
		return fmt.Errorf("failed to send WhatsApp message: %w", err)
	}
	if resp.StatusCode() != 200 {
		return fmt.Errorf("WhatsApp gateway returned status %d", resp.StatusCode())
	}

	return nil
}
