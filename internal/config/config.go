// Package config loads server configuration from the environment, with
// an optional .env file for development.
package config

import (
	"os"
	"strconv"
	"time"

	"github.com/joho/godotenv"
)

// API modes.
const (
	ModeDemo = "demo"
	ModeREST = "rest"
)

// Config holds all server settings.
type Config struct {
	// Port the HTTP server listens on.
	Port string
	// DBPath is the sqlite file holding sessions and, in demo mode,
	// the demo backend's content.
	DBPath string
	// APIMode selects the backend client: "demo" or "rest".
	APIMode string
	// APIBaseURL is the real backend's base URL, used in rest mode.
	APIBaseURL string
	// DemoJWTSecret signs the demo backend's tokens.
	DemoJWTSecret string
	// SecureCookie marks session cookies Secure (HTTPS deployments).
	SecureCookie bool
	// TemplateDir and StaticDir locate the web assets.
	TemplateDir string
	StaticDir   string
	// Login rate limiting.
	LoginRateWindow time.Duration
	LoginRateLimit  int
	// Pretty enables human-readable console logging.
	Pretty bool
}

// Load reads configuration from the environment. A .env file in the
// working directory is merged in when present.
func Load() Config {
	// Missing .env is the normal production case.
	_ = godotenv.Load()

	return Config{
		Port:            getEnv("PORT", "8080"),
		DBPath:          getEnv("DB_PATH", "arcadia.db"),
		APIMode:         getEnv("API_MODE", ModeDemo),
		APIBaseURL:      getEnv("API_BASE_URL", "http://localhost:8000/api/v1"),
		DemoJWTSecret:   getEnv("DEMO_JWT_SECRET", "arcadia-demo-secret"),
		SecureCookie:    getEnvAsBool("SECURE_COOKIE", false),
		TemplateDir:     getEnv("TEMPLATE_DIR", "web/templates"),
		StaticDir:       getEnv("STATIC_DIR", "web/static"),
		LoginRateWindow: getEnvAsDuration("LOGIN_RATE_WINDOW", time.Minute),
		LoginRateLimit:  getEnvAsInt("LOGIN_RATE_LIMIT", 10),
		Pretty:          getEnvAsBool("LOG_PRETTY", false),
	}
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvAsInt(key string, defaultValue int) int {
	if value := os.Getenv(key); value != "" {
		if intValue, err := strconv.Atoi(value); err == nil {
			return intValue
		}
	}
	return defaultValue
}

func getEnvAsBool(key string, defaultValue bool) bool {
	if value := os.Getenv(key); value != "" {
		if boolValue, err := strconv.ParseBool(value); err == nil {
			return boolValue
		}
	}
	return defaultValue
}

func getEnvAsDuration(key string, defaultValue time.Duration) time.Duration {
	if value := os.Getenv(key); value != "" {
		if duration, err := time.ParseDuration(value); err == nil {
			return duration
		}
	}
	return defaultValue
}
