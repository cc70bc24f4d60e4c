package auth

import (
	"testing"
	"time"
)

func TestSignAndVerifyRoundTrip(t *testing.T) {
	secret := []byte("secret")
	claims := map[string]any{
		"sub": "user-1",
		"exp": time.Now().Add(time.Hour).Unix(),
	}

	token, err := SignHS256(claims, secret)
	if err != nil {
		t.Fatalf("sign: %v", err)
	}

	parsed, err := ParseAndVerifyHS256(token, secret)
	if err != nil {
		t.Fatalf("verify: %v", err)
	}
	if parsed["sub"] != "user-1" {
		t.Fatalf("expected sub user-1, got %v", parsed["sub"])
	}
}

func TestVerifyRejectsWrongSecret(t *testing.T) {
	token, err := SignHS256(map[string]any{"sub": "user-1"}, []byte("secret"))
	if err != nil {
		t.Fatalf("sign: %v", err)
	}
	if _, err := ParseAndVerifyHS256(token, []byte("other")); err == nil {
		t.Fatalf("expected signature mismatch")
	}
}

func TestVerifyRejectsExpiredToken(t *testing.T) {
	secret := []byte("secret")
	token, err := SignHS256(map[string]any{
		"sub": "user-1",
		"exp": time.Now().Add(-time.Minute).Unix(),
	}, secret)
	if err != nil {
		t.Fatalf("sign: %v", err)
	}
	if _, err := ParseAndVerifyHS256(token, secret); err == nil {
		t.Fatalf("expected expired token to fail verification")
	}
}

func TestVerifyRejectsGarbage(t *testing.T) {
	if _, err := ParseAndVerifyHS256("not-a-token", []byte("secret")); err == nil {
		t.Fatalf("expected malformed token to fail")
	}
}
