package service

import (
	"errors"
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

func TestJWTService_IssueParse(t *testing.T) {
	svc := NewJWTService("secret", 15*time.Minute)

	tok, err := svc.Issue(" dashboard ")
	if err != nil {
		t.Fatalf("issue: %v", err)
	}
	if tok.AccessToken == "" || tok.ExpiresIn != 900 {
		t.Fatalf("unexpected token: %+v", tok)
	}

	claims, err := svc.ParseAccessToken(tok.AccessToken)
	if err != nil {
		t.Fatalf("parse access: %v", err)
	}
	if claims.ClientID != "dashboard" || claims.Subject != "dashboard" {
		t.Fatalf("unexpected claims: %+v", claims)
	}
}

func TestJWTService_RejectsEmptySecretAndClient(t *testing.T) {
	if _, err := NewJWTService("", time.Minute).Issue("c1"); !errors.Is(err, ErrJWTInvalid) {
		t.Fatalf("expected ErrJWTInvalid without secret, got %v", err)
	}
	if _, err := NewJWTService("secret", time.Minute).Issue("  "); !errors.Is(err, ErrJWTInvalid) {
		t.Fatalf("expected ErrJWTInvalid for empty client, got %v", err)
	}
}

func TestJWTService_Expired(t *testing.T) {
	svc := NewJWTService("secret", time.Minute)
	issuedAt := time.Date(2025, 1, 1, 12, 0, 0, 0, time.UTC)
	svc.now = func() time.Time { return issuedAt }

	tok, err := svc.Issue("c1")
	if err != nil {
		t.Fatalf("issue: %v", err)
	}

	svc.now = func() time.Time { return issuedAt.Add(2 * time.Minute) }
	if _, err := svc.ParseAccessToken(tok.AccessToken); !errors.Is(err, ErrJWTExpired) {
		t.Fatalf("expected ErrJWTExpired, got %v", err)
	}
}

func TestJWTService_WrongSecret(t *testing.T) {
	tok, err := NewJWTService("secret", time.Minute).Issue("c1")
	if err != nil {
		t.Fatalf("issue: %v", err)
	}
	if _, err := NewJWTService("other", time.Minute).ParseAccessToken(tok.AccessToken); !errors.Is(err, ErrJWTInvalid) {
		t.Fatalf("expected ErrJWTInvalid, got %v", err)
	}
}

func TestJWTService_RejectsNonAccessType(t *testing.T) {
	svc := NewJWTService("secret", time.Minute)
	now := time.Now().UTC()
	claims := Claims{
		ClientID:  "c1",
		TokenType: "refresh",
		RegisteredClaims: jwt.RegisteredClaims{
			Issuer:    svc.issuer,
			Subject:   "c1",
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(time.Minute)),
		},
	}
	signed, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString([]byte("secret"))
	if err != nil {
		t.Fatalf("sign: %v", err)
	}
	if _, err := svc.ParseAccessToken(signed); !errors.Is(err, ErrJWTInvalid) {
		t.Fatalf("expected ErrJWTInvalid, got %v", err)
	}
}
