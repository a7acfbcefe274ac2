package auth

import (
	"errors"
	"testing"
	"time"
)

func TestSignAndParse(t *testing.T) {
	s := NewSigner("test-secret", time.Hour)
	tok, err := s.Sign(42, true)
	if err != nil {
		t.Fatalf("sign: %v", err)
	}
	claims, err := s.Parse(tok)
	if err != nil {
		t.Fatalf("parse: %v", err)
	}
	if claims.ID != 42 || !claims.Admin {
		t.Fatalf("claims = %+v", claims)
	}
}

func TestParseRejectsForeignAndExpiredTokens(t *testing.T) {
	s := NewSigner("test-secret", time.Hour)
	other := NewSigner("other-secret", time.Hour)

	tok, _ := other.Sign(7, false)
	if _, err := s.Parse(tok); !errors.Is(err, ErrInvalidToken) {
		t.Fatalf("expected invalid token for foreign secret, got %v", err)
	}

	s.now = func() time.Time { return time.Now().Add(-2 * time.Hour) }
	old, _ := s.Sign(7, false)
	s.now = time.Now
	if _, err := s.Parse(old); !errors.Is(err, ErrInvalidToken) {
		t.Fatalf("expected expired token to be rejected, got %v", err)
	}

	if _, err := s.Parse("not-a-jwt"); !errors.Is(err, ErrInvalidToken) {
		t.Fatalf("expected garbage to be rejected")
	}
}
