package auth

import (
	"context"
	"errors"
	"net/http"
	"strings"
)

// errMissingToken is returned when a request carries no bearer token at all,
// as opposed to carrying one that fails validation.
var errMissingToken = errors.New("auth: missing bearer token")

// contextKey is an unexported type used for context keys in this package.
// A package-private key type means only this package can read or write the
// requester identity in the context — no other package can collide with or
// shadow it.
type contextKey string

const usernameKey contextKey = "username"

// RequireAuth is a middleware that enforces authentication on protected
// routes.
//
// It reads the JWT from the "Authorization: Bearer <token>" header,
// validates it, and stores the verified username in the request context.
// If the token is missing or invalid, it returns 401 Unauthorized and stops
// the request chain.
//
// The username placed in the context is the "requester identity" that
// handlers pass explicitly into the service layer — services never read it
// from ambient state themselves.
func RequireAuth(tokens *TokenService) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			username, err := extractUsername(r, tokens)
			if err != nil {
				http.Error(w, `{"error":"unauthorized","message":"valid authentication required"}`, http.StatusUnauthorized)
				return
			}

			ctx := context.WithValue(r.Context(), usernameKey, username)
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

// UsernameFromContext retrieves the authenticated requester's username from
// the request context.
//
// Returns ("", false) if the request carried no valid token. Behind
// RequireAuth this never happens, but handlers still check the ok value
// rather than trusting middleware ordering.
func UsernameFromContext(ctx context.Context) (string, bool) {
	username, ok := ctx.Value(usernameKey).(string)
	return username, ok && username != ""
}

// extractUsername reads the bearer token from the Authorization header and
// validates it.
func extractUsername(r *http.Request, tokens *TokenService) (string, error) {
	header := r.Header.Get("Authorization")
	token, ok := strings.CutPrefix(header, "Bearer ")
	if !ok || token == "" {
		return "", errMissingToken
	}

	return tokens.Validate(token)
}
