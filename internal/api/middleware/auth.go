package middleware

import (
	"context"
	"encoding/json"
	"log"
	"net/http"
	"strings"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"github.com/rafaeltorres/user-registry/internal/service"
)

type contextKey string

const (
	UserIDKey contextKey = "userID"
	ClaimsKey contextKey = "claims"
)

func Auth(authService *service.AuthService) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			token, ok := bearerToken(r)
			if !ok {
				log.Printf("ERROR [middleware.Auth] missing or malformed authorization header")
				unauthorized(w, "authorization header required")
				return
			}

			claims, err := authService.ValidateToken(token)
			if err != nil {
				log.Printf("ERROR [middleware.Auth] token validation failed: %v", err)
				unauthorized(w, "invalid token")
				return
			}

			sub, err := claims.GetSubject()
			if err != nil || sub == "" {
				log.Printf("ERROR [middleware.Auth] missing 'sub' claim in token")
				unauthorized(w, "invalid token claims")
				return
			}

			userID, err := uuid.Parse(sub)
			if err != nil {
				log.Printf("ERROR [middleware.Auth] failed to parse user ID: %v", err)
				unauthorized(w, "invalid user id")
				return
			}

			ctx := context.WithValue(r.Context(), UserIDKey, userID)
			ctx = context.WithValue(ctx, ClaimsKey, claims)
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

// unauthorized writes the same {"error": ...} envelope the handlers use, so
// 401 bodies look identical across the API.
func unauthorized(w http.ResponseWriter, message string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusUnauthorized)
	json.NewEncoder(w).Encode(map[string]string{"error": message})
}

// bearerToken extracts the token from an "Authorization: Bearer x" header.
func bearerToken(r *http.Request) (string, bool) {
	authHeader := r.Header.Get("Authorization")
	if authHeader == "" {
		return "", false
	}
	parts := strings.Split(authHeader, " ")
	if len(parts) != 2 || parts[0] != "Bearer" {
		return "", false
	}
	return parts[1], true
}

// BearerToken is the exported variant for handlers that read the header
// themselves (the refresh endpoint).
func BearerToken(r *http.Request) (string, bool) {
	return bearerToken(r)
}

func GetUserID(ctx context.Context) (uuid.UUID, bool) {
	userID, ok := ctx.Value(UserIDKey).(uuid.UUID)
	return userID, ok
}

func GetClaims(ctx context.Context) (jwt.MapClaims, bool) {
	claims, ok := ctx.Value(ClaimsKey).(jwt.MapClaims)
	return claims, ok
}
