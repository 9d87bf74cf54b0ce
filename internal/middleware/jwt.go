package middleware

import (
	"context"
	"encoding/json"
	"net/http"
	"strings"

	"github.com/proxication/poi-api/internal/token"
)

type key string

const (
	UserIDKey   key = "user_id"
	UsernameKey key = "username"
)

// JWT authenticates requests with a bearer access token and stores the caller's
// identity in the request context. Refresh tokens are rejected here.
func JWT(issuer *token.Issuer) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			authHeader := r.Header.Get("Authorization")
			if authHeader == "" {
				unauthorized(w, "Authentication credentials were not provided.")
				return
			}

			tokenStr := strings.TrimPrefix(authHeader, "Bearer ")
			if tokenStr == authHeader || tokenStr == "" {
				unauthorized(w, "Authentication credentials were not provided.")
				return
			}

			claims, err := issuer.ParseAccess(tokenStr)
			if err != nil {
				unauthorized(w, "Invalid token.")
				return
			}

			ctx := context.WithValue(r.Context(), UserIDKey, claims.UserID)
			ctx = context.WithValue(ctx, UsernameKey, claims.Username)
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

func unauthorized(w http.ResponseWriter, message string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusUnauthorized)
	json.NewEncoder(w).Encode(map[string]string{"error": message})
}

// GetUserID returns the authenticated caller's user ID from the context.
func GetUserID(ctx context.Context) (int, bool) {
	id, ok := ctx.Value(UserIDKey).(int)
	return id, ok
}

// GetUsername returns the authenticated caller's username from the context.
func GetUsername(ctx context.Context) (string, bool) {
	name, ok := ctx.Value(UsernameKey).(string)
	return name, ok
}
