package app

import (
	"os"
	"strconv"
	"time"

	"github.com/stagedoorhq/stagedoor/pkg/jwtx"
)

type Config struct {
	TokenSecret string // Required: HS256 signing secret, 32+ bytes
	Issuer      string // Optional: issuer claim for session tokens

	DatabaseFile string        // Optional: path to SQLite database file (default: ./stagedoor.db)
	AppBaseURL   string        // Optional: public UI origin used in invite links
	TokenTTL     time.Duration // Optional: session token lifetime (default: 7 days)
	InviteTTL    time.Duration // Optional: invitation lifetime (default: 7 days)

	SMTPHost string // Optional: leave empty to log invites instead of mailing them
	SMTPPort int
	SMTPUser string
	SMTPPass string
	SMTPFrom string

	Env                  string
	LogLevel             string
	LogFormat            string
	Port                 int
	ShutdownGracePeriod  time.Duration
	HousekeepingInterval time.Duration
}

func LoadConfig() Config {
	return Config{
		TokenSecret: os.Getenv("AUTH_TOKEN_SECRET"),
		Issuer:      getEnvOrDefault("AUTH_ISSUER", "stagedoor"),

		DatabaseFile: getEnvOrDefault("DATABASE_FILE", "stagedoor.db"),
		AppBaseURL:   getEnvOrDefault("APP_BASE_URL", "http://localhost:3000"),
		TokenTTL:     getEnvDurationOrDefault("TOKEN_TTL", jwtx.DefaultSessionTTL),
		InviteTTL:    getEnvDurationOrDefault("INVITE_TTL", 0),

		SMTPHost: os.Getenv("SMTP_HOST"),
		SMTPPort: getEnvIntOrDefault("SMTP_PORT", 587),
		SMTPUser: os.Getenv("SMTP_USER"),
		SMTPPass: os.Getenv("SMTP_PASS"),
		SMTPFrom: os.Getenv("SMTP_FROM"),

		Env:                  getEnvOrDefault("ENV", "dev"),
		LogLevel:             getEnvOrDefault("LOG_LEVEL", "info"),
		LogFormat:            getEnvOrDefault("LOG_FORMAT", "json"),
		Port:                 getEnvIntOrDefault("PORT", 8080),
		ShutdownGracePeriod:  getEnvDurationOrDefault("SHUTDOWN_GRACE_PERIOD", 10*time.Second),
		HousekeepingInterval: getEnvDurationOrDefault("HOUSEKEEPING_INTERVAL", 1*time.Hour),
	}
}

func getEnvOrDefault(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvIntOrDefault(key string, defaultValue int) int {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue
	}

	if intValue, err := strconv.Atoi(value); err == nil {
		return intValue
	}

	return defaultValue
}

func getEnvDurationOrDefault(key string, defaultValue time.Duration) time.Duration {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue
	}

	if duration, err := time.ParseDuration(value); err == nil {
		return duration
	}

	return defaultValue
}
