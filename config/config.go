package config

import (
	"log"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

const (
	// MinJWTSecretLength is the minimum JWT secret length accepted in production
	MinJWTSecretLength = 32
)

type Config struct {
	Port        string
	Environment string
	Debug       bool
	// Database
	DBDriver    string // postgres | sqlite
	DatabaseURL string
	SQLitePath  string
	// Auth
	JWTSecret string
	JWTTTL    time.Duration
	// Bootstrap admin, created on startup when both are set
	AdminEmail    string
	AdminPassword string
	// HTTP
	AllowedOrigins []string
	// Schedule
	Timezone string
}

func Load() *Config {
	// Load .env file (ignore error if not present - use system env vars)
	if err := godotenv.Load(); err != nil {
		log.Println("No .env file found, using system environment variables")
	}

	environment := getEnv("APP_ENV", "development")
	secret := getEnv("JWT_SECRET", "")
	if environment == "production" && len(secret) < MinJWTSecretLength {
		log.Fatalf("[CRITICAL] JWT_SECRET must be at least %d characters in production", MinJWTSecretLength)
	}
	if secret == "" {
		secret = "dev-secret-change-me"
		log.Println("[WARNING] JWT_SECRET not set, using an insecure development secret")
	}

	return &Config{
		Port:           getEnv("PORT", "3000"),
		Environment:    environment,
		Debug:          getEnvBool("DEBUG", false),
		DBDriver:       strings.ToLower(getEnv("DB_DRIVER", "postgres")),
		DatabaseURL:    getEnv("DATABASE_URL", ""),
		SQLitePath:     getEnv("SQLITE_PATH", "council.db"),
		JWTSecret:      secret,
		JWTTTL:         time.Duration(getEnvInt("JWT_TTL_HOURS", 7*24)) * time.Hour,
		AdminEmail:     strings.ToLower(strings.TrimSpace(getEnv("ADMIN_EMAIL", ""))),
		AdminPassword:  os.Getenv("ADMIN_PASSWORD"),
		AllowedOrigins: strings.Split(getEnv("ALLOWED_ORIGINS", "*"), ","),
		Timezone:       getEnv("TIMEZONE", "UTC"),
	}
}

// Location resolves the schedule timezone, falling back to UTC.
func (c *Config) Location() *time.Location {
	loc, err := time.LoadLocation(c.Timezone)
	if err != nil {
		return time.UTC
	}
	return loc
}

func getEnv(key, defaultValue string) string {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue
	}
	return value
}

func getEnvInt(key string, defaultValue int) int {
	n, err := strconv.Atoi(os.Getenv(key))
	if err != nil || n <= 0 {
		return defaultValue
	}
	return n
}

func getEnvBool(key string, defaultValue bool) bool {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue
	}
	// Accept common boolean representations
	switch strings.ToLower(value) {
	case "true", "1", "yes", "on":
		return true
	case "false", "0", "no", "off":
		return false
	default:
		return defaultValue
	}
}
