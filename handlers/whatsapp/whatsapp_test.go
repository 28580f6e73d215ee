package whatsapp

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
)

func init() {
	gin.SetMode(gin.TestMode)
}

func postContext(path, body string) (*gin.Context, *httptest.ResponseRecorder) {
	w := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(w)
	c.Request = httptest.NewRequest("POST", path, strings.NewReader(body))
	c.Request.Header.Set("Content-Type", "application/json")
	return c, w
}

func TestSendWhatsappCode_RequiresProfile(t *testing.T) {
	c, w := postContext("/send_whatsapp_code", `{"whatsapp_number": "+3161234"}`)

	SendWhatsappCode(c)

	assert.Equal(t, http.StatusNotFound, w.Code)
}

func TestVerifyWhatsappCode_RequiresProfile(t *testing.T) {
	c, w := postContext("/verify_whatsapp_code", `{"code": "123456"}`)

	VerifyWhatsappCode(c)

	assert.Equal(t, http.StatusNotFound, w.Code)
}
