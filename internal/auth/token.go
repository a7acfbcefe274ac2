// Package auth signs and verifies the bearer tokens carried by API clients.
package auth

import (
	"errors"
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"

	"inkwell/internal/models"
)

var ErrInvalidToken = errors.New("access token is invalid")

type Claims struct {
	ID    models.ID `json:"id"`
	Admin bool      `json:"admin"`
	jwt.RegisteredClaims
}

type Signer struct {
	secret []byte
	ttl    time.Duration
	now    func() time.Time
}

func NewSigner(secret string, ttl time.Duration) *Signer {
	return &Signer{secret: []byte(secret), ttl: ttl, now: time.Now}
}

func (s *Signer) Sign(userID models.ID, admin bool) (string, error) {
	now := s.now()
	claims := Claims{
		ID:    userID,
		Admin: admin,
		RegisteredClaims: jwt.RegisteredClaims{
			IssuedAt: jwt.NewNumericDate(now),
		},
	}
	if s.ttl > 0 {
		claims.ExpiresAt = jwt.NewNumericDate(now.Add(s.ttl))
	}
	tok, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(s.secret)
	if err != nil {
		return "", fmt.Errorf("sign token: %w", err)
	}
	return tok, nil
}

func (s *Signer) Parse(raw string) (*Claims, error) {
	claims := &Claims{}
	t, err := jwt.ParseWithClaims(raw, claims, func(t *jwt.Token) (any, error) {
		return s.secret, nil
	}, jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}), jwt.WithTimeFunc(s.now))
	if err != nil || !t.Valid {
		return nil, ErrInvalidToken
	}
	if claims.ID.IsZero() {
		return nil, ErrInvalidToken
	}
	return claims, nil
}
