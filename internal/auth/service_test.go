package auth

import (
	"strings"
	"testing"
	"time"

	"golang.org/x/crypto/bcrypt"

	"unirecords/internal/shared"
)

func newTestService() *Service {
	return &Service{
		config: &shared.AppConfig{
			Security: shared.SecurityConfig{
				JWTSecret:          "test-secret-key",
				JWTExpirationHours: 1,
				BCryptCost:         bcrypt.MinCost,
			},
		},
	}
}

func TestTokenRoundTrip(t *testing.T) {
	service := newTestService()

	token, expiresAt, err := service.GenerateToken("acc-1", "student@test.edu", shared.RoleStudent)
	if err != nil {
		t.Fatalf("GenerateToken failed: %v", err)
	}
	if token == "" {
		t.Fatal("Expected non-empty token")
	}
	if time.Until(expiresAt) > time.Hour || time.Until(expiresAt) < 50*time.Minute {
		t.Errorf("Unexpected expiry: %v", expiresAt)
	}

	claims, err := service.ParseToken(token)
	if err != nil {
		t.Fatalf("ParseToken failed: %v", err)
	}
	if claims.AccountID != "acc-1" || claims.Email != "student@test.edu" || claims.Role != shared.RoleStudent {
		t.Errorf("Claims do not round-trip: %+v", claims)
	}
	if claims.Issuer != "university-records" {
		t.Errorf("Unexpected issuer: %s", claims.Issuer)
	}
}

func TestParseTokenRejectsTampering(t *testing.T) {
	service := newTestService()

	token, _, err := service.GenerateToken("acc-1", "student@test.edu", shared.RoleStudent)
	if err != nil {
		t.Fatalf("GenerateToken failed: %v", err)
	}

	t.Run("WrongSecret", func(t *testing.T) {
		other := newTestService()
		other.config.Security.JWTSecret = "different-secret"
		if _, err := other.ParseToken(token); err == nil {
			t.Error("Expected error for wrong secret")
		}
	})

	t.Run("MangledPayload", func(t *testing.T) {
		parts := strings.Split(token, ".")
		mangled := parts[0] + ".eyJhbGciOiJub25lIn0." + parts[2]
		if _, err := service.ParseToken(mangled); err == nil {
			t.Error("Expected error for mangled payload")
		}
	})

	t.Run("Garbage", func(t *testing.T) {
		if _, err := service.ParseToken("not-a-token"); err == nil {
			t.Error("Expected error for garbage input")
		}
	})
}

func TestHashPassword(t *testing.T) {
	hash, err := HashPassword("s3cret-password", bcrypt.MinCost)
	if err != nil {
		t.Fatalf("HashPassword failed: %v", err)
	}

	if err := bcrypt.CompareHashAndPassword([]byte(hash), []byte("s3cret-password")); err != nil {
		t.Errorf("Hash does not verify: %v", err)
	}
	if err := bcrypt.CompareHashAndPassword([]byte(hash), []byte("wrong-password")); err == nil {
		t.Error("Expected mismatch for wrong password")
	}
}
