package auth

import (
	"testing"
	"time"
)

func testManager(expiry time.Duration) *JWTManager {
	return NewJWTManager(JWTConfig{
		Secret:        "test-secret",
		Expiry:        expiry,
		RefreshExpiry: 2 * expiry,
		Issuer:        "campuslane-test",
	})
}

func TestAccessTokenRoundTrip(t *testing.T) {
	m := testManager(time.Hour)

	token, jti, err := m.GenerateAccessToken(42, "u@test.local", "STUDENT", 3)
	if err != nil {
		t.Fatalf("generate: %v", err)
	}
	if jti == "" {
		t.Fatal("empty jti")
	}

	claims, err := m.ValidateToken(token)
	if err != nil {
		t.Fatalf("validate: %v", err)
	}
	if claims.UserID != 42 || claims.Role != "STUDENT" || claims.TokenVersion != 3 {
		t.Fatalf("claims = %+v", claims)
	}
	if claims.TokenType != "access" {
		t.Fatalf("token type = %q, want access", claims.TokenType)
	}
	if claims.ID != jti {
		t.Fatalf("claims jti = %q, want %q", claims.ID, jti)
	}
}

func TestRefreshTokenType(t *testing.T) {
	m := testManager(time.Hour)

	token, _, err := m.GenerateRefreshToken(1, "u@test.local", "TEACHER", 0)
	if err != nil {
		t.Fatalf("generate: %v", err)
	}

	claims, err := m.ValidateToken(token)
	if err != nil {
		t.Fatalf("validate: %v", err)
	}
	if claims.TokenType != "refresh" {
		t.Fatalf("token type = %q, want refresh", claims.TokenType)
	}
}

func TestValidateRejectsExpiredToken(t *testing.T) {
	m := testManager(-time.Minute)

	token, _, err := m.GenerateAccessToken(1, "u@test.local", "STUDENT", 0)
	if err != nil {
		t.Fatalf("generate: %v", err)
	}

	if _, err := m.ValidateToken(token); err != ErrExpiredToken {
		t.Fatalf("error = %v, want ErrExpiredToken", err)
	}
}

func TestValidateRejectsWrongSecret(t *testing.T) {
	m := testManager(time.Hour)
	other := NewJWTManager(JWTConfig{Secret: "different", Expiry: time.Hour, RefreshExpiry: time.Hour, Issuer: "x"})

	token, _, err := m.GenerateAccessToken(1, "u@test.local", "STUDENT", 0)
	if err != nil {
		t.Fatalf("generate: %v", err)
	}

	if _, err := other.ValidateToken(token); err != ErrInvalidToken {
		t.Fatalf("error = %v, want ErrInvalidToken", err)
	}
}

func TestPasswordHashing(t *testing.T) {
	hash, err := HashPassword("correct horse battery")
	if err != nil {
		t.Fatalf("hash: %v", err)
	}
	if err := VerifyPassword(hash, "correct horse battery"); err != nil {
		t.Fatalf("verify: %v", err)
	}
	if err := VerifyPassword(hash, "wrong"); err == nil {
		t.Fatal("wrong password accepted")
	}

	if IsPasswordValid("short") {
		t.Fatal("short password accepted")
	}
	if !IsPasswordValid("longenough") {
		t.Fatal("valid password rejected")
	}
}
