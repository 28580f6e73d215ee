package utils

import (
	"math/rand"
	"time"
)

// GenerateDigitCode returns a random numeric code of the given length.
// Used for device pincodes (4 digits) and WhatsApp verification (6 digits).
func GenerateDigitCode(length int) string {
	source := rand.NewSource(time.Now().UnixNano())
	r := rand.New(source)
	const digits = "0123456789"
	code := make([]byte, length)
	for i := range code {
		code[i] = digits[r.Intn(len(digits))]
	}
	return string(code)
}
