package auth

import (
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"

	apperrors "github.com/subops/console-realtime/internal/core/errors"
)

// TokenInfo is what the console can read out of its pre-issued access token.
// The console never holds the signing secret, so the claims are inspected
// unverified; the server remains the authority on token validity.
type TokenInfo struct {
	Subject   string
	ExpiresAt time.Time // zero when the token carries no exp claim
}

// Valid reports whether the token has not expired at the given time.
func (t *TokenInfo) Valid(now time.Time) bool {
	return t.ExpiresAt.IsZero() || now.Before(t.ExpiresAt)
}

// Inspector reads claims from bearer tokens without verifying signatures.
type Inspector struct {
	parser *jwt.Parser
}

func NewInspector() *Inspector {
	return &Inspector{parser: jwt.NewParser()}
}

// Inspect parses the token string and extracts subject and expiry.
func (i *Inspector) Inspect(tokenString string) (*TokenInfo, error) {
	claims := &jwt.RegisteredClaims{}
	if _, _, err := i.parser.ParseUnverified(tokenString, claims); err != nil {
		return nil, fmt.Errorf("%w: %v", apperrors.ErrMalformedToken, err)
	}

	info := &TokenInfo{Subject: claims.Subject}
	if claims.ExpiresAt != nil {
		info.ExpiresAt = claims.ExpiresAt.Time
	}
	return info, nil
}
