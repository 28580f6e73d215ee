package devices

import (
	"bytes"
	"net/http"
	"text/template"

	"screentime-journey-server/handlers/session"
	"screentime-journey-server/models"
	"screentime-journey-server/utils"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

// profileTemplate is the Apple configuration profile enforcing DNS-based
// content filtering. macOS profiles carry a removal password (the setup
// pincode) so the profile cannot be deleted without it; iOS relies on
// supervised-removal instead and takes no pincode.
const profileTemplate = `<?xml version="1.0" encoding="UTF-8"?>
<!DOCTYPE plist PUBLIC "-//Apple//DTD PLIST 1.0//EN" "http://www.apple.com/DTDs/PropertyList-1.0.dtd">
<plist version="1.0">
<dict>
	<key>PayloadContent</key>
	<array>
		<dict>
			<key>PayloadType</key>
			<string>com.apple.dnsSettings.managed</string>
			<key>PayloadIdentifier</key>
			<string>com.screentimejourney.dns.{{.DeviceID}}</string>
			<key>PayloadUUID</key>
			<string>{{.PayloadUUID}}</string>
			<key>PayloadVersion</key>
			<integer>1</integer>
			<key>DNSSettings</key>
			<dict>
				<key>DNSProtocol</key>
				<string>HTTPS</string>
				<key>ServerURL</key>
				<string>https://{{.DNSHost}}/dns-query</string>
			</dict>
		</dict>
	</array>
	<key>PayloadDisplayName</key>
	<string>Screen Time Journey Filter</string>
	<key>PayloadIdentifier</key>
	<string>com.screentimejourney.profile.{{.DeviceID}}</string>
	<key>PayloadRemovalDisallowed</key>
	<{{.RemovalDisallowed}}/>
{{- if .RemovalPassword}}
	<key>RemovalPassword</key>
	<string>{{.RemovalPassword}}</string>
{{- end}}
	<key>PayloadType</key>
	<string>Configuration</string>
	<key>PayloadUUID</key>
	<string>{{.ProfileUUID}}</string>
	<key>PayloadVersion</key>
	<integer>1</integer>
</dict>
</plist>
`

var profileTmpl = template.Must(template.New("profile").Parse(profileTemplate))

// GenerateVPNProfile builds and stores a configuration profile for a
// device and returns the download URL.
func GenerateVPNProfile(c *gin.Context) {
	customerID := session.CustomerID(c)

	var input struct {
		DeviceID   string `json:"device_id"`
		DeviceType string `json:"device_type"`
	}
	if err := c.ShouldBindJSON(&input); err != nil || input.DeviceID == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request payload"})
		return
	}
	if !models.ValidDeviceType(input.DeviceType) {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Device type must be iOS or macOS."})
		return
	}

	url, err := BuildVPNProfile(customerID, input.DeviceID, input.DeviceType, "")
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to generate configuration profile."})
		return
	}

	c.JSON(http.StatusOK, gin.H{"success": true, "profile_url": url})
}

// BuildVPNProfile renders the plist, persists it under a fresh token and
// returns the public download URL. A macOS profile needs a pincode as its
// removal password; when the caller has none, one is issued on the spot
// (the later mandatory pincode step then reuses it).
func BuildVPNProfile(customerID, deviceID, deviceType, pincode string) (string, error) {
	if deviceType == models.DeviceTypeMacOS && pincode == "" {
		code, err := IssuePincode(customerID, deviceID, models.PincodePurposeSetup)
		if err != nil {
			return "", err
		}
		pincode = code
	}

	content, err := renderProfile(deviceID, deviceType, utils.Cfg.FilterDNSHost, pincode)
	if err != nil {
		return "", err
	}

	profile := models.VPNProfile{
		Token:      uuid.NewString(),
		CustomerID: customerID,
		DeviceID:   deviceID,
		DeviceType: deviceType,
		Content:    content,
	}
	if err := utils.PortalDB.Create(&profile).Error; err != nil {
		return "", err
	}

	return "/vpn_profile/" + profile.Token, nil
}

// renderProfile fills in the plist for one device. macOS profiles lock
// removal behind the pincode; iOS profiles stay removable.
func renderProfile(deviceID, deviceType, dnsHost, pincode string) (string, error) {
	removalDisallowed := "false"
	if deviceType == models.DeviceTypeMacOS {
		removalDisallowed = "true"
	} else {
		pincode = ""
	}

	var buf bytes.Buffer
	err := profileTmpl.Execute(&buf, map[string]string{
		"DeviceID":          deviceID,
		"PayloadUUID":       uuid.NewString(),
		"ProfileUUID":       uuid.NewString(),
		"DNSHost":           dnsHost,
		"RemovalDisallowed": removalDisallowed,
		"RemovalPassword":   pincode,
	})
	if err != nil {
		return "", err
	}
	return buf.String(), nil
}

// ServeVPNProfile streams a stored profile for installation. Public route:
// the device's browser fetches it without a portal session.
func ServeVPNProfile(c *gin.Context) {
	token := c.Param("token")

	var profile models.VPNProfile
	if err := utils.PortalDB.Where("token = ?", token).First(&profile).Error; err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "Profile not found."})
		return
	}

	c.Header("Content-Disposition", `attachment; filename="screentime-journey.mobileconfig"`)
	c.Data(http.StatusOK, "application/x-apple-aspen-config", []byte(profile.Content))
}
