package session

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"screentime-journey-server/utils"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
)

func init() {
	gin.SetMode(gin.TestMode)
}

func contextForRequest(req *http.Request) *gin.Context {
	w := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(w)
	c.Request = req
	return c
}

func TestResolveCustomerID_QueryParamWinsOverCookie(t *testing.T) {
	req := httptest.NewRequest("GET", "/get_profile?cid=cust-7", nil)
	req.AddCookie(&http.Cookie{
		Name:  utils.SessionCookieName,
		Value: utils.MintSessionToken("shop.myshopify.com", "cust-other", true),
	})

	assert.Equal(t, "cust-7", resolveCustomerID(contextForRequest(req)))
}

func TestResolveCustomerID_LoggedInCustomerIDParam(t *testing.T) {
	req := httptest.NewRequest("GET", "/get_profile?logged_in_customer_id=cust-8", nil)
	assert.Equal(t, "cust-8", resolveCustomerID(contextForRequest(req)))
}

func TestResolveCustomerID_SessionCookie(t *testing.T) {
	req := httptest.NewRequest("GET", "/get_profile", nil)
	req.AddCookie(&http.Cookie{
		Name:  utils.SessionCookieName,
		Value: utils.MintSessionToken("shop.myshopify.com", "cust-9", false),
	})

	assert.Equal(t, "cust-9", resolveCustomerID(contextForRequest(req)))
}

func TestResolveCustomerID_BadCookieIgnored(t *testing.T) {
	req := httptest.NewRequest("GET", "/get_profile", nil)
	req.AddCookie(&http.Cookie{Name: utils.SessionCookieName, Value: "garbage"})

	assert.Equal(t, "", resolveCustomerID(contextForRequest(req)))
}

func TestResolveCustomerID_OverrideOnlyOutsideProduction(t *testing.T) {
	req := httptest.NewRequest("GET", "/get_profile?override_cid=cust-dev", nil)
	assert.Equal(t, "cust-dev", resolveCustomerID(contextForRequest(req)))

	t.Setenv("APP_ENV", "production")
	assert.Equal(t, "", resolveCustomerID(contextForRequest(req)))
}
