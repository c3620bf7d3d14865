package auth

import (
	"strings"
	"testing"
	"time"

	"github.com/angelmondragon/orgshop-backend/pkg/config"
)

func testJWTConfig() config.JWTConfig {
	return config.JWTConfig{Secret: "unit-test-secret", Issuer: "orgshop"}
}

func TestMintAndParseRoundTrip(t *testing.T) {
	cfg := testJWTConfig()
	now := time.Now()

	signed, err := MintAccessToken(cfg, now, AccessTokenPayload{
		UserID:  "user-123",
		Email:   "jo@example.org",
		IsAdmin: true,
	}, time.Hour)
	if err != nil {
		t.Fatalf("mint: %v", err)
	}

	claims, err := ParseAccessToken(cfg, signed)
	if err != nil {
		t.Fatalf("parse: %v", err)
	}
	if claims.UserID != "user-123" || claims.Email != "jo@example.org" || !claims.IsAdmin {
		t.Fatalf("unexpected claims %+v", claims)
	}
	if claims.Issuer != cfg.Issuer {
		t.Fatalf("expected issuer %q, got %q", cfg.Issuer, claims.Issuer)
	}
}

func TestMintValidation(t *testing.T) {
	now := time.Now()

	if _, err := MintAccessToken(config.JWTConfig{Issuer: "orgshop"}, now, AccessTokenPayload{UserID: "u"}, 0); err == nil {
		t.Fatal("expected error for missing secret")
	}
	if _, err := MintAccessToken(config.JWTConfig{Secret: "s"}, now, AccessTokenPayload{UserID: "u"}, 0); err == nil {
		t.Fatal("expected error for missing issuer")
	}
	if _, err := MintAccessToken(testJWTConfig(), now, AccessTokenPayload{}, 0); err == nil {
		t.Fatal("expected error for missing user id")
	}
}

func TestParseRejectsExpiredToken(t *testing.T) {
	cfg := testJWTConfig()
	signed, err := MintAccessToken(cfg, time.Now().Add(-2*time.Hour), AccessTokenPayload{UserID: "user-1"}, time.Hour)
	if err != nil {
		t.Fatalf("mint: %v", err)
	}

	if _, err := ParseAccessToken(cfg, signed); err == nil {
		t.Fatal("expected expired token to fail")
	}
}

func TestParseRejectsWrongIssuerAndSecret(t *testing.T) {
	cfg := testJWTConfig()
	signed, err := MintAccessToken(cfg, time.Now(), AccessTokenPayload{UserID: "user-1"}, time.Hour)
	if err != nil {
		t.Fatalf("mint: %v", err)
	}

	if _, err := ParseAccessToken(config.JWTConfig{Secret: cfg.Secret, Issuer: "someone-else"}, signed); err == nil {
		t.Fatal("expected issuer mismatch to fail")
	}
	if _, err := ParseAccessToken(config.JWTConfig{Secret: "other-secret", Issuer: cfg.Issuer}, signed); err == nil {
		t.Fatal("expected signature mismatch to fail")
	}
}

func TestParseRejectsTamperedToken(t *testing.T) {
	cfg := testJWTConfig()
	signed, err := MintAccessToken(cfg, time.Now(), AccessTokenPayload{UserID: "user-1"}, time.Hour)
	if err != nil {
		t.Fatalf("mint: %v", err)
	}

	parts := strings.Split(signed, ".")
	if len(parts) != 3 {
		t.Fatalf("unexpected token shape %q", signed)
	}
	tampered := parts[0] + "." + parts[1] + "." + strings.Repeat("A", len(parts[2]))

	if _, err := ParseAccessToken(cfg, tampered); err == nil {
		t.Fatal("expected tampered token to fail")
	}
}
