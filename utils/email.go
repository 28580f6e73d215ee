package utils

import (
	"fmt"
	"log"
	"os"

	"gopkg.in/gomail.v2"
)

// SendUnlockEmail mails the customer their one-time unlock pincode.
func SendUnlockEmail(email, deviceName, pincode string) error {
	m := gomail.NewMessage()
	m.SetHeader("From", os.Getenv("SMTP_SENDER"))
	m.SetHeader("To", email)
	m.SetHeader("Subject", "Your device unlock code")
	m.SetBody("text/plain", fmt.Sprintf(
		"Your one-time unlock code for %s is: %s\n\nThis code can be used once.", deviceName, pincode))

	d := gomail.NewDialer(
		os.Getenv("SMTP_HOST"),
		465,
		os.Getenv("SMTP_USER"),
		os.Getenv("SMTP_PASS"),
	)

	if err := d.DialAndSend(m); err != nil {
		log.Printf("Failed to send unlock email to %s: %v", email, err)
		return err
	}

	log.Printf("Unlock email sent to %s", email)
	return nil
}
