// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

package middleware

import (
	"context"
	"net/http"
	"strings"

	"inkwell/internal/models"
)

// contextKey is an unexported type for context keys to prevent collisions.
type contextKey string

const (
	// UserKey is the context key for the authenticated user.
	UserKey contextKey = "user"
)

// Authenticator resolves a raw API key to a user. *store.UserStore
// satisfies it.
type Authenticator interface {
	FindByAPIKey(ctx context.Context, apiKey string) (*models.User, error)
}

// Authenticate resolves the request's API key and stores the user in the
// request context. Downstream handlers access it via UserFromCtx().
// This middleware does NOT enforce authentication, it just loads the user
// when a valid key is presented.
func Authenticate(users Authenticator) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			key := apiKeyFrom(r)
			if key == "" {
				next.ServeHTTP(w, r)
				return
			}

			user, err := users.FindByAPIKey(r.Context(), key)
			if err != nil || user == nil {
				// Invalid keys are treated as unauthenticated, not as
				// errors, so RequireUser produces a uniform 401.
				next.ServeHTTP(w, r)
				return
			}

			ctx := context.WithValue(r.Context(), UserKey, user)
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

// RequireUser rejects unauthenticated requests with 401.
// Must be applied after Authenticate in the middleware chain.
func RequireUser(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if UserFromCtx(r.Context()) == nil {
			writeJSONError(w, http.StatusUnauthorized, "missing or invalid API key")
			return
		}

		next.ServeHTTP(w, r)
	})
}

// UserFromCtx extracts the authenticated user from the request context.
// Returns nil if the request is not authenticated.
func UserFromCtx(ctx context.Context) *models.User {
	user, _ := ctx.Value(UserKey).(*models.User)
	return user
}

// apiKeyFrom reads the API key from the Authorization header (Bearer
// scheme) or the X-API-Key header.
func apiKeyFrom(r *http.Request) string {
	if auth := r.Header.Get("Authorization"); auth != "" {
		if scheme, key, ok := strings.Cut(auth, " "); ok && strings.EqualFold(scheme, "Bearer") {
			return strings.TrimSpace(key)
		}
		return ""
	}
	return strings.TrimSpace(r.Header.Get("X-API-Key"))
}

func writeJSONError(w http.ResponseWriter, status int, msg string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	// The message is always a literal, no escaping needed.
	w.Write([]byte(`{"error":"` + msg + `"}`))
}
