package middleware

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"strings"

	"choreboard/internal/models"
	"choreboard/internal/services"
)

type contextKey string

const UserContextKey contextKey = "user"

// RequireAuth is the auth gate: it resolves the bearer token to the current
// public user projection and stores it on the request context.
func RequireAuth(authService *services.AuthService) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			header := r.Header.Get("Authorization")
			if header == "" || !strings.HasPrefix(header, "Bearer ") {
				writeError(w, http.StatusUnauthorized, "authorization required")
				return
			}

			tokenString := strings.TrimPrefix(header, "Bearer ")
			user, err := authService.VerifyToken(r.Context(), tokenString)
			if err != nil {
				switch {
				case errors.Is(err, services.ErrTokenUserNotFound):
					writeError(w, http.StatusUnauthorized, "user not found")
				case errors.Is(err, services.ErrInvalidToken):
					writeError(w, http.StatusUnauthorized, "invalid or expired token")
				default:
					slog.Error("verifying token", "error", err)
					writeError(w, http.StatusInternalServerError, "server error")
				}
				return
			}

			ctx := context.WithValue(r.Context(), UserContextKey, user)
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

func GetUser(ctx context.Context) models.User {
	user, _ := ctx.Value(UserContextKey).(models.User)
	return user
}

func writeError(w http.ResponseWriter, status int, message string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(map[string]string{"error": message})
}
