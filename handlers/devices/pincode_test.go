package devices

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/gin-gonic/gin"
)

func init() {
	gin.SetMode(gin.TestMode)
}

func verifyPincodeRequest(t *testing.T, body string) int {
	t.Helper()
	w := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(w)
	c.Request = httptest.NewRequest("POST", "/verify_pincode", strings.NewReader(body))
	c.Request.Header.Set("Content-Type", "application/json")

	VerifyPincode(c)
	return w.Code
}

func TestVerifyPincode_RejectsMissingFields(t *testing.T) {
	for _, body := range []string{
		`{}`,
		`{"device_id": "dev-1", "purpose": "unlock"}`,
		`{"purpose": "unlock", "code": "1234"}`,
	} {
		if code := verifyPincodeRequest(t, body); code != http.StatusBadRequest {
			t.Fatalf("body %s: expected 400, got %d", body, code)
		}
	}
}

func TestVerifyPincode_RejectsUnknownPurpose(t *testing.T) {
	body := `{"device_id": "dev-1", "purpose": "reset", "code": "1234"}`
	if code := verifyPincodeRequest(t, body); code != http.StatusBadRequest {
		t.Fatalf("expected 400 for an unknown purpose, got %d", code)
	}
}
