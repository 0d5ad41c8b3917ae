package auth

import (
	"time"

	"github.com/golang-jwt/jwt/v5"
)

// TokenExpired peeks at the access token's exp claim without verifying
// the signature. Verification is the server's job; this only lets the
// client skip requests that are guaranteed to bounce with a 401.
// Malformed tokens and tokens without exp are treated as not expired and
// left for the server to reject.
func TokenExpired(token string, now time.Time) bool {
	parsed, _, err := jwt.NewParser().ParseUnverified(token, jwt.MapClaims{})
	if err != nil {
		return false
	}
	exp, err := parsed.Claims.GetExpirationTime()
	if err != nil || exp == nil {
		return false
	}
	return exp.Before(now)
}
