package middleware

import (
	"context"
	"fmt"
	"net/http"
	"strings"

	"coedit/pkg/logger"

	"github.com/golang-jwt/jwt/v5"
)

type contextKey string

// UserKey holds the connection's username in the request context.
const UserKey contextKey = "user"

// Identity is the boundary adapter for the external auth system. With a
// secret configured it requires a signed token (query param or Bearer
// header, since the browser WebSocket API cannot set custom headers) and
// takes the username from the sub claim. Without a secret the client's
// own user query param is trusted, for development setups.
func Identity(secret string, next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if secret == "" {
			ctx := context.WithValue(r.Context(), UserKey, r.URL.Query().Get("user"))
			next.ServeHTTP(w, r.WithContext(ctx))
			return
		}

		tokenString := r.URL.Query().Get("token")
		if tokenString == "" {
			authHeader := r.Header.Get("Authorization")
			tokenString = strings.TrimPrefix(authHeader, "Bearer ")
		}
		if tokenString == "" {
			http.Error(w, "Unauthorized: No token provided", http.StatusUnauthorized)
			return
		}

		token, err := jwt.Parse(tokenString, func(token *jwt.Token) (interface{}, error) {
			if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
				return nil, fmt.Errorf("unexpected signing method: %v", token.Header["alg"])
			}
			return []byte(secret), nil
		})
		if err != nil || !token.Valid {
			logger.Sugar.Infof("Invalid token: %v", err)
			http.Error(w, "Unauthorized: Invalid or expired token", http.StatusUnauthorized)
			return
		}

		claims, ok := token.Claims.(jwt.MapClaims)
		if !ok {
			http.Error(w, "Unauthorized: Could not parse token claims", http.StatusUnauthorized)
			return
		}
		username, ok := claims["sub"].(string)
		if !ok {
			http.Error(w, "Unauthorized: User (sub) claim is missing or invalid", http.StatusUnauthorized)
			return
		}

		ctx := context.WithValue(r.Context(), UserKey, username)
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}
