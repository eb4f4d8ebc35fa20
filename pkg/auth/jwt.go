package auth

import (
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

// TokenInfo holds the claims worth surfacing from a bearer token.
type TokenInfo struct {
	Subject   string
	Issuer    string
	IssuedAt  time.Time
	ExpiresAt time.Time
}

// InspectToken parses a JWT WITHOUT validation, for claim inspection only.
// It errors on malformed tokens, never on expired or unsigned ones: the
// point is telling the user what they are about to send, not vouching
// for it.
func InspectToken(tokenString string) (*TokenInfo, error) {
	parser := jwt.NewParser(jwt.WithoutClaimsValidation())
	token, _, err := parser.ParseUnverified(tokenString, jwt.MapClaims{})
	if err != nil {
		return nil, fmt.Errorf("failed to parse JWT: %w", err)
	}

	claims, ok := token.Claims.(jwt.MapClaims)
	if !ok {
		return nil, fmt.Errorf("failed to extract claims from token")
	}

	info := &TokenInfo{}
	if sub, ok := claims["sub"].(string); ok {
		info.Subject = sub
	}
	if iss, ok := claims["iss"].(string); ok {
		info.Issuer = iss
	}
	if iat, ok := claims["iat"].(float64); ok {
		info.IssuedAt = time.Unix(int64(iat), 0)
	}
	if exp, ok := claims["exp"].(float64); ok {
		info.ExpiresAt = time.Unix(int64(exp), 0)
	}

	return info, nil
}

// Expired reports whether the token carries an exp claim in the past.
func (t *TokenInfo) Expired() bool {
	return !t.ExpiresAt.IsZero() && t.ExpiresAt.Before(time.Now())
}
