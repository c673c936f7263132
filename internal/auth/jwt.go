package auth

import (
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

// sessionClaims wraps the opaque session token in a signed JWT. The sid is
// the only application claim; all real state lives in the sessions table.
type sessionClaims struct {
	SID string `json:"sid"`
	jwt.RegisteredClaims
}

// signSessionToken wraps a session token in an HS256 JWT. The embedded
// expiry mirrors the session row's; the database row remains authoritative.
func signSessionToken(key []byte, sessionToken string, expiresAt time.Time) (string, error) {
	claims := sessionClaims{
		SID: sessionToken,
		RegisteredClaims: jwt.RegisteredClaims{
			IssuedAt:  jwt.NewNumericDate(time.Now()),
			ExpiresAt: jwt.NewNumericDate(expiresAt),
		},
	}
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	signed, err := token.SignedString(key)
	if err != nil {
		return "", fmt.Errorf("sign session token: %w", err)
	}
	return signed, nil
}

// parseSessionToken verifies the JWT and extracts the session token. Any
// failure, a bad signature, wrong algorithm, expired or garbled token,
// yields an error; callers treat every error the same way.
func parseSessionToken(key []byte, tokenString string) (string, error) {
	var claims sessionClaims
	token, err := jwt.ParseWithClaims(tokenString, &claims, func(t *jwt.Token) (any, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method %v", t.Header["alg"])
		}
		return key, nil
	})
	if err != nil {
		return "", fmt.Errorf("parse session token: %w", err)
	}
	if !token.Valid || claims.SID == "" {
		return "", fmt.Errorf("invalid session token")
	}
	return claims.SID, nil
}
