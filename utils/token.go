package utils

import (
	"crypto/hmac"
	"crypto/sha256"
	"encoding/base64"
	"encoding/hex"
	"errors"
	"fmt"
	"log"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/golang-jwt/jwt"
	"github.com/joho/godotenv"
)

// SessionCookieName is the portal session cookie.
const SessionCookieName = "stj_session"

// SessionTTL mirrors the cookie max-age.
const SessionTTL = 86400

var sessionSecret []byte
var ssoSecret []byte

func init() {
	// Load the .env file; environment variables may also be set elsewhere.
	if err := godotenv.Load(); err != nil {
		log.Println("No .env file found or error loading .env file:", err)
	}

	secret := os.Getenv("SESSION_SECRET")
	if secret == "" {
		if os.Getenv("APP_ENV") == "production" {
			log.Fatal("SESSION_SECRET is not set in the environment")
		}
		log.Println("SESSION_SECRET not set, using development secret")
		secret = "stj-development-secret"
	}
	sessionSecret = []byte(secret)

	sso := os.Getenv("SSO_SECRET")
	if sso == "" {
		sso = secret
	}
	ssoSecret = []byte(sso)
}

// SessionClaims is the decoded content of the stj_session token.
type SessionClaims struct {
	Shop            string
	CustomerID      string
	IssuedAt        time.Time
	TTL             int64
	ProfileComplete bool
}

func signSession(payload string) string {
	mac := hmac.New(sha256.New, sessionSecret)
	mac.Write([]byte(payload))
	return hex.EncodeToString(mac.Sum(nil))
}

// MintSessionToken builds the pipe-delimited session token:
// shop|customer_id|issued_at|ttl|profile_complete|signature, base64-encoded.
func MintSessionToken(shop, customerID string, profileComplete bool) string {
	flag := "0"
	if profileComplete {
		flag = "1"
	}
	payload := fmt.Sprintf("%s|%s|%d|%d|%s", shop, customerID, time.Now().Unix(), int64(SessionTTL), flag)
	token := payload + "|" + signSession(payload)
	return base64.StdEncoding.EncodeToString([]byte(token))
}

// VerifySessionToken decodes and verifies a session token. The signature is
// checked before anything else; expired tokens are rejected.
func VerifySessionToken(token string) (*SessionClaims, error) {
	raw, err := base64.StdEncoding.DecodeString(token)
	if err != nil {
		return nil, errors.New("malformed session token")
	}

	parts := strings.Split(string(raw), "|")
	if len(parts) != 6 {
		return nil, errors.New("malformed session token")
	}

	payload := strings.Join(parts[:5], "|")
	if !hmac.Equal([]byte(signSession(payload)), []byte(parts[5])) {
		return nil, errors.New("invalid session signature")
	}

	issued, err := strconv.ParseInt(parts[2], 10, 64)
	if err != nil {
		return nil, errors.New("malformed session token")
	}
	ttl, err := strconv.ParseInt(parts[3], 10, 64)
	if err != nil {
		return nil, errors.New("malformed session token")
	}
	if time.Now().Unix() > issued+ttl {
		return nil, errors.New("session expired")
	}

	return &SessionClaims{
		Shop:            parts[0],
		CustomerID:      parts[1],
		IssuedAt:        time.Unix(issued, 0),
		TTL:             ttl,
		ProfileComplete: parts[4] == "1",
	}, nil
}

// ExtractCustomerIDFromSSOToken parses a Shopify SSO bearer token and
// returns the customer id claim.
func ExtractCustomerIDFromSSOToken(authHeader string) (string, error) {
	parts := strings.SplitN(authHeader, " ", 2)
	if len(parts) != 2 || parts[0] != "Bearer" {
		return "", errors.New("invalid authorization header format")
	}

	token, err := jwt.Parse(parts[1], func(token *jwt.Token) (interface{}, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, errors.New("unexpected signing method")
		}
		return ssoSecret, nil
	})
	if err != nil || !token.Valid {
		return "", errors.New("invalid sso token")
	}

	claims, ok := token.Claims.(jwt.MapClaims)
	if !ok {
		return "", errors.New("invalid token claims")
	}

	customerID, ok := claims["customer_id"].(string)
	if !ok || customerID == "" {
		return "", errors.New("missing customer id in sso token")
	}

	return customerID, nil
}
