package jwt

import (
	"errors"
	"time"

	jwtlib "github.com/golang-jwt/jwt/v5"
)

// Token purposes carried in the "purpose" claim.
const (
	PurposeAccess  = "access"
	PurposeRefresh = "refresh"
	PurposeReset   = "reset"
)

const issuer = "ats-api"

// ErrWrongPurpose is returned when a token is valid but minted for another flow.
var ErrWrongPurpose = errors.New("jwt: token purpose mismatch")

// Claims defines JWT payload.
type Claims struct {
	UserID  string `json:"user_id"`
	Role    string `json:"role,omitempty"`
	Purpose string `json:"purpose"`
	jwtlib.RegisteredClaims
}

// GenerateToken issues a signed JWT with provided secret and ttl.
func GenerateToken(userID, role, purpose, secret string, ttl time.Duration) (string, error) {
	return GenerateTokenWithID(userID, role, purpose, "", secret, ttl)
}

// GenerateTokenWithID is GenerateToken with an explicit "jti" claim.
func GenerateTokenWithID(userID, role, purpose, id, secret string, ttl time.Duration) (string, error) {
	now := time.Now()
	claims := Claims{
		UserID:  userID,
		Role:    role,
		Purpose: purpose,
		RegisteredClaims: jwtlib.RegisteredClaims{
			ID:        id,
			Issuer:    issuer,
			Subject:   userID,
			IssuedAt:  jwtlib.NewNumericDate(now),
			ExpiresAt: jwtlib.NewNumericDate(now.Add(ttl)),
		},
	}
	token := jwtlib.NewWithClaims(jwtlib.SigningMethodHS256, claims)
	return token.SignedString([]byte(secret))
}

// Parse validates and extracts claims from token.
func Parse(token string, secret string) (*Claims, error) {
	parsed, err := jwtlib.ParseWithClaims(token, &Claims{}, func(t *jwtlib.Token) (interface{}, error) {
		return []byte(secret), nil
	}, jwtlib.WithValidMethods([]string{jwtlib.SigningMethodHS256.Name}), jwtlib.WithIssuer(issuer))
	if err != nil {
		return nil, err
	}
	claims, ok := parsed.Claims.(*Claims)
	if !ok || !parsed.Valid {
		return nil, jwtlib.ErrTokenInvalidClaims
	}
	return claims, nil
}

// ParseFor validates the token and requires the given purpose.
func ParseFor(token, secret, purpose string) (*Claims, error) {
	claims, err := Parse(token, secret)
	if err != nil {
		return nil, err
	}
	if claims.Purpose != purpose {
		return nil, ErrWrongPurpose
	}
	return claims, nil
}
