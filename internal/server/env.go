package server

import (
	"os"
	"strings"

	"github.com/inventia-dev/fieldset/internal/logger"
)

// allowedOrigins returns the list of origins allowed for CORS.
func allowedOrigins() []string {
	allowed := os.Getenv("ALLOWED_ORIGINS")
	if allowed == "" {
		allowed = "http://localhost:3000"
	}
	origins := strings.Split(allowed, ",")
	for i := range origins {
		origins[i] = strings.TrimSpace(origins[i])
	}
	return origins
}

// mustJWTSecret fetches JWT_SECRET or exits if unset.
func mustJWTSecret() string {
	secret := os.Getenv("JWT_SECRET")
	if secret == "" {
		logger.L.Error("JWT_SECRET environment variable is not set. Application cannot start.")
		os.Exit(1)
	}
	return secret
}
