package devices

import (
	"strings"
	"testing"

	"screentime-journey-server/models"
)

func TestRenderProfile_MacOSCarriesRemovalPassword(t *testing.T) {
	content, err := renderProfile("dev-1", models.DeviceTypeMacOS, "family.cloudflare-dns.com", "4321")
	if err != nil {
		t.Fatalf("render failed: %v", err)
	}

	if !strings.Contains(content, "<string>4321</string>") {
		t.Fatal("expected the removal password embedded in a macOS profile")
	}
	if !strings.Contains(content, "<key>PayloadRemovalDisallowed</key>\n\t<true/>") {
		t.Fatal("expected removal disallowed on macOS")
	}
	if !strings.Contains(content, "https://family.cloudflare-dns.com/dns-query") {
		t.Fatal("expected the DNS filter endpoint in the payload")
	}
}

func TestRenderProfile_IOSTakesNoPincode(t *testing.T) {
	content, err := renderProfile("dev-2", models.DeviceTypeIOS, "family.cloudflare-dns.com", "4321")
	if err != nil {
		t.Fatalf("render failed: %v", err)
	}

	if strings.Contains(content, "RemovalPassword") {
		t.Fatal("an iOS profile must not carry a removal password")
	}
	if !strings.Contains(content, "<key>PayloadRemovalDisallowed</key>\n\t<false/>") {
		t.Fatal("expected removal allowed on iOS")
	}
}
