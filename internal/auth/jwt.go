package auth

import (
	"errors"
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

// tokenIssuer is stamped on every token and required when validating
const tokenIssuer = "banban-api"

var jwtSecret []byte

var (
	// ErrInvalidToken is returned for tokens that are malformed, expired or
	// signed with another secret
	ErrInvalidToken = errors.New("invalid token")
	// ErrSecretNotInitialized means InitializeJWT has not run yet
	ErrSecretNotInitialized = errors.New("JWT secret not initialized")
)

// JWTClaims represents the JWT token claims
type JWTClaims struct {
	UserID  string `json:"user_id"`
	Email   string `json:"email"`
	IsAdmin bool   `json:"is_admin"`
	// Version must match the user's token version; logout bumps it
	Version int `json:"ver"`
	jwt.RegisteredClaims
}

// TokenSubject is the user a token is issued for
type TokenSubject struct {
	UserID  string
	Email   string
	IsAdmin bool
	Version int
}

// InitializeJWT sets the JWT secret key
func InitializeJWT(secret string) {
	jwtSecret = []byte(secret)
}

// GenerateToken signs a token for sub that expires after ttl
func GenerateToken(sub TokenSubject, ttl time.Duration) (string, error) {
	if len(jwtSecret) == 0 {
		return "", ErrSecretNotInitialized
	}

	now := time.Now()
	claims := JWTClaims{
		UserID:  sub.UserID,
		Email:   sub.Email,
		IsAdmin: sub.IsAdmin,
		Version: sub.Version,
		RegisteredClaims: jwt.RegisteredClaims{
			Issuer:    tokenIssuer,
			Subject:   sub.UserID,
			IssuedAt:  jwt.NewNumericDate(now),
			NotBefore: jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(ttl)),
		},
	}

	return jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(jwtSecret)
}

// ValidateToken validates a JWT token and returns the claims
func ValidateToken(tokenString string) (*JWTClaims, error) {
	if len(jwtSecret) == 0 {
		return nil, ErrSecretNotInitialized
	}

	token, err := jwt.ParseWithClaims(tokenString, &JWTClaims{},
		func(*jwt.Token) (interface{}, error) { return jwtSecret, nil },
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
		jwt.WithIssuer(tokenIssuer),
		jwt.WithExpirationRequired(),
	)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrInvalidToken, err)
	}

	claims, ok := token.Claims.(*JWTClaims)
	if !ok || !token.Valid {
		return nil, ErrInvalidToken
	}
	return claims, nil
}
