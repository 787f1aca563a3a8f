// Package auth signs and verifies the session cookie. The cookie carries
// only the session id; the bearer token itself stays in the store.
package auth

import (
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

var cookieSecret []byte

// SessionClaims is the payload of the signed session cookie
type SessionClaims struct {
	SID string `json:"sid"`
	jwt.RegisteredClaims
}

// Initialize sets the cookie signing secret
func Initialize(secret string) {
	cookieSecret = []byte(secret)
}

// SignSessionID wraps a session id in a signed token for the cookie
func SignSessionID(sid string) (string, error) {
	if len(cookieSecret) == 0 {
		return "", fmt.Errorf("cookie secret not initialized")
	}

	claims := SessionClaims{
		SID: sid,
		RegisteredClaims: jwt.RegisteredClaims{
			IssuedAt:  jwt.NewNumericDate(time.Now()),
			NotBefore: jwt.NewNumericDate(time.Now()),
		},
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return token.SignedString(cookieSecret)
}

// ParseSessionID validates a session cookie value and returns the
// session id it carries
func ParseSessionID(tokenString string) (string, error) {
	if len(cookieSecret) == 0 {
		return "", fmt.Errorf("cookie secret not initialized")
	}

	token, err := jwt.ParseWithClaims(tokenString, &SessionClaims{}, func(token *jwt.Token) (interface{}, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method: %v", token.Header["alg"])
		}
		return cookieSecret, nil
	})
	if err != nil {
		return "", fmt.Errorf("failed to parse cookie: %w", err)
	}

	if claims, ok := token.Claims.(*SessionClaims); ok && token.Valid && claims.SID != "" {
		return claims.SID, nil
	}
	return "", fmt.Errorf("invalid session cookie")
}
