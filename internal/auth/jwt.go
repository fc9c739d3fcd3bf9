// Package auth provides JWT token issuing/validation and password hashing
// for the messaging API.
//
// AUTHENTICATION FLOW OVERVIEW:
// 1. User registers (POST /auth/register) or logs in (POST /auth/login)
// 2. Server verifies credentials and issues a JWT carrying the username
// 3. On subsequent API calls, middleware reads the Authorization header,
//    validates the JWT, and puts the username in the request context
// 4. Handlers pass that username into the service layer as the explicit
//    requester identity — nothing downstream reads ambient auth state
//
// WHY JWT?
// JWT is stateless — the server doesn't store session data. Everything
// needed (username, expiry) is inside the signed token, and the HMAC
// signature means nobody can tamper with it without the secret key.
package auth

import (
	"errors"
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

// tokenIssuer is the "iss" claim we stamp on every token and require when
// validating. It prevents tokens minted by other apps sharing a secret from
// being accepted here.
const tokenIssuer = "messagely"

// defaultTokenTTL is how long an issued token stays valid.
const defaultTokenTTL = 24 * time.Hour

// TokenService handles JWT creation and validation.
//
// It holds the HMAC secret key used to sign and verify tokens. The same
// secret must be used for both operations.
type TokenService struct {
	secret []byte
}

// NewTokenService creates a TokenService with the given secret.
// The secret should be at least 32 bytes of random data in production.
// Example: JWT_SECRET=$(openssl rand -hex 32)
func NewTokenService(secret string) (*TokenService, error) {
	if len(secret) < 16 {
		return nil, errors.New("auth: JWT secret must be at least 16 characters")
	}
	return &TokenService{secret: []byte(secret)}, nil
}

// claims is the JWT payload. The registered "sub" (Subject) claim carries
// the username — the standard claim for identifying who a token belongs to.
type claims struct {
	jwt.RegisteredClaims
}

// Generate creates and signs a new JWT for the given username.
//
// Signing algorithm: HS256 (HMAC-SHA256) — symmetric, fast, and fine for a
// single-server deployment where issuer and verifier share the secret.
func (s *TokenService) Generate(username string) (string, error) {
	return s.GenerateWithDuration(username, defaultTokenTTL)
}

// GenerateWithDuration creates a token with a custom expiry duration.
// Used in tests to produce already-expired tokens.
func (s *TokenService) GenerateWithDuration(username string, d time.Duration) (string, error) {
	now := time.Now()

	c := claims{
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   username,
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(d)),
			Issuer:    tokenIssuer,
		},
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, c)
	signed, err := token.SignedString(s.secret)
	if err != nil {
		return "", fmt.Errorf("auth: signing token: %w", err)
	}

	return signed, nil
}

// Validate parses and verifies a JWT string.
// Returns the username (stored in the "sub" claim) if the token is valid.
//
// VALIDATION CHECKS (performed by the jwt library):
//   - Signature is valid (wasn't tampered with)
//   - Token is not expired
//   - Issuer matches (prevents tokens from other apps)
//   - Algorithm is HS256 (prevents algorithm confusion attacks —
//     jwt.WithValidMethods rejects tokens claiming "none" or RS256)
func (s *TokenService) Validate(tokenStr string) (string, error) {
	token, err := jwt.ParseWithClaims(
		tokenStr,
		&claims{},
		func(token *jwt.Token) (any, error) {
			if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
				return nil, fmt.Errorf("auth: unexpected signing method: %v", token.Header["alg"])
			}
			return s.secret, nil
		},
		jwt.WithValidMethods([]string{"HS256"}),
		jwt.WithIssuer(tokenIssuer),
		jwt.WithExpirationRequired(),
	)
	if err != nil {
		if errors.Is(err, jwt.ErrTokenExpired) {
			return "", fmt.Errorf("auth: token expired")
		}
		return "", fmt.Errorf("auth: invalid token: %w", err)
	}

	c, ok := token.Claims.(*claims)
	if !ok || !token.Valid {
		return "", fmt.Errorf("auth: invalid token claims")
	}

	username := c.Subject
	if username == "" {
		return "", fmt.Errorf("auth: token has no subject")
	}

	return username, nil
}
