package session

import (
	"net/http/httptest"
	"testing"

	"screentime-journey-server/utils"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
)

func TestIssueSession_SetsSecureLaxCookie(t *testing.T) {
	w := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(w)
	c.Request = httptest.NewRequest("GET", "/session", nil)
	c.Set("customer_id", "cust-1")

	IssueSession(c)

	cookie := w.Header().Get("Set-Cookie")
	assert.Contains(t, cookie, utils.SessionCookieName+"=")
	assert.Contains(t, cookie, "Secure")
	assert.Contains(t, cookie, "SameSite=Lax")
}
