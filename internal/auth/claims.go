package auth

import (
	"time"

	"github.com/golang-jwt/jwt/v5"
)

// TokenExpiry extracts the expiry claim from a JWT access token without
// verifying its signature. The server remains the authority on validity;
// this only supports proactive refresh decisions. The second return is
// false for opaque tokens and tokens without an exp claim.
func TokenExpiry(token string) (time.Time, bool) {
	parser := jwt.NewParser()

	claims := jwt.MapClaims{}

	_, _, err := parser.ParseUnverified(token, claims)
	if err != nil {
		return time.Time{}, false
	}

	expiresAt, err := claims.GetExpirationTime()
	if err != nil || expiresAt == nil {
		return time.Time{}, false
	}

	return expiresAt.Time, true
}

// IsTokenExpiringSoon reports whether the token is a JWT expiring within
// the given window.
func IsTokenExpiringSoon(token string, within time.Duration) bool {
	expiresAt, ok := TokenExpiry(token)
	if !ok {
		return false
	}

	return time.Now().Add(within).After(expiresAt)
}
