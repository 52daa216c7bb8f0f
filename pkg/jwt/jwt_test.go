package jwt

import (
	"testing"
	"time"

	"github.com/Iliyan-H-Iliev/LeaveOpsManager/config"
)

func newTestManager() *Manager {
	return NewManager(&config.AuthConfig{
		JWTSecret:       "test-secret-key-for-unit-testing-2026",
		AccessTokenTTL:  15 * time.Minute,
		RefreshTokenTTL: 7 * 24 * time.Hour,
	})
}

var testIdentity = Identity{UserID: "user-1", UserType: "HR", CompanyID: "company-1", Slug: "company-acme-hr-jane-doe-e1"}

func TestGenerateAndParseAccessToken(t *testing.T) {
	m := newTestManager()

	token, err := m.GenerateAccessToken(testIdentity)
	if err != nil {
		t.Fatalf("GenerateAccessToken: %v", err)
	}

	claims, err := m.ParseToken(token)
	if err != nil {
		t.Fatalf("ParseToken: %v", err)
	}

	if claims.Identity() != testIdentity {
		t.Errorf("Identity = %+v, want %+v", claims.Identity(), testIdentity)
	}
	if claims.TokenType != TokenTypeAccess {
		t.Errorf("TokenType = %s, want access", claims.TokenType)
	}
	if claims.Issuer != "leaveops" {
		t.Errorf("Issuer = %s, want leaveops", claims.Issuer)
	}
	if claims.ID == "" {
		t.Error("JTI must not be empty")
	}
	if r := claims.Remaining(); r <= 14*time.Minute || r > 15*time.Minute {
		t.Errorf("Remaining = %v, want about 15m", r)
	}
}

func TestGeneratePair(t *testing.T) {
	m := newTestManager()

	pair, err := m.GeneratePair(testIdentity)
	if err != nil {
		t.Fatalf("GeneratePair: %v", err)
	}
	if pair.ExpiresIn != 900 {
		t.Errorf("ExpiresIn = %d, want 900", pair.ExpiresIn)
	}

	claims, err := m.ParseToken(pair.RefreshToken)
	if err != nil {
		t.Fatalf("ParseToken(refresh): %v", err)
	}
	if claims.TokenType != TokenTypeRefresh {
		t.Errorf("TokenType = %s, want refresh", claims.TokenType)
	}
	ttl := time.Until(claims.ExpiresAt.Time)
	if ttl < 6*24*time.Hour || ttl > 8*24*time.Hour {
		t.Errorf("refresh TTL = %v, want about 7 days", ttl)
	}

	access, _ := m.ParseToken(pair.AccessToken)
	if access.ID == claims.ID {
		t.Error("access and refresh tokens must have distinct JTIs")
	}
}

func TestParseToken_InvalidToken(t *testing.T) {
	m := newTestManager()

	if _, err := m.ParseToken("invalid.token.string"); err != ErrTokenInvalid {
		t.Errorf("ParseToken(invalid) = %v, want ErrTokenInvalid", err)
	}
}

func TestParseToken_WrongSecret(t *testing.T) {
	m1 := newTestManager()
	m2 := NewManager(&config.AuthConfig{
		JWTSecret:      "different-secret-key",
		AccessTokenTTL: 15 * time.Minute,
	})

	token, _ := m1.GenerateAccessToken(testIdentity)
	if _, err := m2.ParseToken(token); err == nil {
		t.Error("token signed with another secret must not verify")
	}
}

func TestParseToken_ExpiredToken(t *testing.T) {
	m := newTestManager()
	m.now = func() time.Time { return time.Now().Add(-time.Hour) }

	token, _ := m.GenerateAccessToken(testIdentity)

	_, err := m.ParseToken(token)
	if err != ErrTokenExpired {
		t.Errorf("ParseToken(expired) = %v, want ErrTokenExpired", err)
	}
}
