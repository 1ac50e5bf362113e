package utils

import (
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

func TestPasswordHashAndVerify(t *testing.T) {
	hash, err := HashPassword("s3cret", 4) // low cost keeps the test fast
	if err != nil {
		t.Fatalf("hash: %v", err)
	}
	if !VerifyPassword(hash, "s3cret") {
		t.Fatal("expected matching password to verify")
	}
	if VerifyPassword(hash, "wrong") {
		t.Fatal("expected wrong password to fail")
	}
}

func TestAccessTokenRoundTrip(t *testing.T) {
	const secret = "test-secret"
	memberID := "member-123"

	access, err := NewAccessToken(secret, memberID, 15)
	if err != nil {
		t.Fatalf("issue token: %v", err)
	}
	if access.Token == "" {
		t.Fatal("expected non-empty token")
	}
	if !access.Exp.After(time.Now()) {
		t.Fatal("expected expiry in the future")
	}

	tok, err := jwt.Parse(access.Token, func(tk *jwt.Token) (interface{}, error) {
		return []byte(secret), nil
	})
	if err != nil || !tok.Valid {
		t.Fatalf("parse token: %v", err)
	}
	claims, ok := tok.Claims.(jwt.MapClaims)
	if !ok {
		t.Fatal("expected map claims")
	}
	if sub, _ := claims["sub"].(string); sub != memberID {
		t.Fatalf("sub: expected %s, got %v", memberID, claims["sub"])
	}
}

func TestAccessTokenWrongSecretRejected(t *testing.T) {
	access, err := NewAccessToken("right-secret", "member-123", 15)
	if err != nil {
		t.Fatalf("issue token: %v", err)
	}
	tok, err := jwt.Parse(access.Token, func(tk *jwt.Token) (interface{}, error) {
		return []byte("wrong-secret"), nil
	})
	if err == nil && tok.Valid {
		t.Fatal("expected verification to fail with the wrong secret")
	}
}
