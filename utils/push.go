package utils

import (
	"bytes"
	"encoding/json"
	"io"
	"log"
	"net/http"
)

// SendPushNotification delivers a push message through the Expo push
// service. Failures are logged only; push is best-effort.
func SendPushNotification(pushToken, title, message string) {
	notification := map[string]interface{}{
		"to":    pushToken,
		"sound": "default",
		"title": title,
		"body":  message,
	}

	payload, err := json.Marshal(notification)
	if err != nil {
		log.Printf("Failed to marshal notification payload: %v", err)
		return
	}

	resp, err := http.Post("https://exp.host/--/api/v2/push/send", "application/json", bytes.NewBuffer(payload))
	if err != nil {
		log.Printf("Failed to send push notification: %v", err)
		return
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(resp.Body)
		log.Printf("Failed to send push notification, status: %d, response: %s", resp.StatusCode, string(body))
	}
}
