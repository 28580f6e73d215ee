package utils

import (
	"encoding/base64"
	"strings"
	"testing"
)

func TestSessionToken_RoundTrip(t *testing.T) {
	token := MintSessionToken("shop.myshopify.com", "cust-42", true)

	claims, err := VerifySessionToken(token)
	if err != nil {
		t.Fatalf("verification failed: %v", err)
	}
	if claims.Shop != "shop.myshopify.com" {
		t.Fatalf("wrong shop: %q", claims.Shop)
	}
	if claims.CustomerID != "cust-42" {
		t.Fatalf("wrong customer id: %q", claims.CustomerID)
	}
	if !claims.ProfileComplete {
		t.Fatal("expected profile_complete flag set")
	}
}

func TestSessionToken_TamperedSignatureRejected(t *testing.T) {
	token := MintSessionToken("shop.myshopify.com", "cust-42", false)

	raw, _ := base64.StdEncoding.DecodeString(token)
	parts := strings.Split(string(raw), "|")
	parts[1] = "cust-99" // swap the customer id, keep the old signature
	forged := base64.StdEncoding.EncodeToString([]byte(strings.Join(parts, "|")))

	if _, err := VerifySessionToken(forged); err == nil {
		t.Fatal("expected a tampered token to be rejected")
	}
}

func TestSessionToken_GarbageRejected(t *testing.T) {
	for _, tok := range []string{"", "not-base64!!", base64.StdEncoding.EncodeToString([]byte("a|b|c"))} {
		if _, err := VerifySessionToken(tok); err == nil {
			t.Fatalf("expected %q to be rejected", tok)
		}
	}
}
