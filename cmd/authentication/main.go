// This is a **mock authentication service**, designed to provide JWT tokens
// for the company service, simulating user authentication.
package main

import (
	"encoding/json"
	"net/http"
	"os"
	"time"

	"github.com/gartstein/fleet/internal/company/auth"
	"github.com/gartstein/fleet/internal/company/logging"
	"go.uber.org/zap"
)

const (
	defaultPort   = "8081"       // Default port for the authentication service
	defaultSecret = "jwt_secret" // Secret for signing JWT
	issuer        = "auth-service"
)

// TokenResponse represents the response structure
type TokenResponse struct {
	Token     string    `json:"token"`
	ExpiresAt time.Time `json:"expires_at"`
}

// tokenHandler issues a JWT for the requested user (query parameter "user").
func tokenHandler(secret string, logger *zap.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		userID := r.URL.Query().Get("user")
		if userID == "" {
			userID = "12345"
		}

		token, err := auth.GenerateToken(userID, issuer, secret, auth.DefaultTokenTTL)
		if err != nil {
			logger.Error("Failed to generate token", zap.Error(err))
			http.Error(w, "Failed to generate token", http.StatusInternalServerError)
			return
		}

		resp := TokenResponse{Token: token, ExpiresAt: time.Now().Add(auth.DefaultTokenTTL).UTC()}
		w.Header().Set("Content-Type", "application/json")
		if err := json.NewEncoder(w).Encode(resp); err != nil {
			logger.Error("Failed to encode token", zap.Error(err))
		}
		logger.Info("Token issued", zap.String("user_id", userID))
	}
}

func getEnv(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

func main() {
	logger, err := logging.New(getEnv("LOG_LEVEL", "info"), getEnv("ENVIRONMENT", "development"),
		zap.String("service", "authentication"))
	if err != nil {
		panic(err)
	}
	defer func() {
		_ = logger.Sync()
	}()

	port := getEnv("AUTH_PORT", defaultPort)
	mux := http.NewServeMux()
	mux.HandleFunc("/token", tokenHandler(getEnv("JWT_SECRET", defaultSecret), logger))

	srv := &http.Server{
		Addr:              ":" + port,
		Handler:           mux,
		ReadHeaderTimeout: 10 * time.Second,
	}
	logger.Info("Authentication service running", zap.String("port", port))
	if err := srv.ListenAndServe(); err != nil {
		logger.Fatal("Authentication service stopped", zap.Error(err))
	}
}
