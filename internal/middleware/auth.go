package middleware

import (
	"crypto/subtle"
	"encoding/json"
	"net/http"
	"strings"
)

// APIKeyAuth creates middleware for API key authentication. An empty
// configured key disables the check (local development).
func APIKeyAuth(apiKey, headerName string) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if apiKey == "" {
				next.ServeHTTP(w, r)
				return
			}

			// Skip auth for health endpoints
			path := r.URL.Path
			if path == "/health" || path == "/api/health" {
				next.ServeHTTP(w, r)
				return
			}

			// Only authenticate API routes
			if !strings.HasPrefix(path, "/api") {
				next.ServeHTTP(w, r)
				return
			}

			providedKey := r.Header.Get(headerName)
			if providedKey == "" {
				unauthorized(w, "API key is required.")
				return
			}

			// Constant-time comparison to prevent timing attacks
			if subtle.ConstantTimeCompare([]byte(apiKey), []byte(providedKey)) != 1 {
				unauthorized(w, "Invalid API key.")
				return
			}

			next.ServeHTTP(w, r)
		})
	}
}

func unauthorized(w http.ResponseWriter, message string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusUnauthorized)
	json.NewEncoder(w).Encode(map[string]string{"error": message})
}
