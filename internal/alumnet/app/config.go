package app

import (
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/aussiebroadwan/alumnet/internal/alumnet/domain"
	"github.com/aussiebroadwan/alumnet/internal/alumnet/service"
)

type Config struct {
	Issuer         string // Issuer claim for access tokens (default: alumnet)
	BootstrapToken string // Optional: token required to perform bootstrap

	NumKeys              int           // Number of Ed25519 signing keys to generate (default: 2, max: 10)
	AccessTokenTTL       time.Duration // Access token lifetime (default: 1h)
	DatabaseFile         string        // Path to SQLite database file (default: ./alumnet.db)
	PepperFile           string        // Path to file containing pepper for password hashing (default: ./pepper)
	Env                  string        // Environment (dev, staging, prod) (default: dev)
	LogLevel             string        // Log level (debug, info, warn, error) (default: info)
	LogFormat            string        // Log format (json, text) (default: json)
	Port                 int           // HTTP server port (default: 8080)
	ShutdownGracePeriod  time.Duration // Graceful shutdown timeout (default: 10s)
	HousekeepingInterval time.Duration // Expiry sweep and mail pruning interval (default: 1h)

	BaseURL        string        // Public URL of the web app, used in invitation links
	InviteTTL      time.Duration // Invite lifetime (default: 30 days)
	MaxUploadBytes int64         // Roster upload size limit (default: 10 MiB)

	MailDispatchInterval time.Duration // Outbox poll interval (default: 30s)
	MailMaxAttempts      int           // Delivery attempts before a job fails (default: 5)
	MailRetention        time.Duration // How long delivered mail is kept (default: 90 days)
	SMTP                 service.SMTPConfig
}

func LoadConfig() Config {
	cfg := Config{
		Issuer:               getEnvOrDefault("ALUMNET_ISSUER", "alumnet"),
		BootstrapToken:       os.Getenv("BOOTSTRAP_TOKEN"), // Optional: if set, required to perform bootstrap
		NumKeys:              getEnvIntOrDefault("ALUMNET_NUM_KEYS", 2),
		AccessTokenTTL:       getEnvDurationOrDefault("ALUMNET_ACCESS_TOKEN_TTL", time.Hour),
		DatabaseFile:         getEnvOrDefault("ALUMNET_DATABASE_FILE", "alumnet.db"),
		PepperFile:           getEnvOrDefault("ALUMNET_PEPPER_FILE", "pepper"),
		Env:                  getEnvOrDefault("ENV", "dev"),
		LogLevel:             getEnvOrDefault("LOG_LEVEL", "info"),
		LogFormat:            getEnvOrDefault("LOG_FORMAT", "json"),
		Port:                 getEnvIntOrDefault("PORT", 8080),
		ShutdownGracePeriod:  getEnvDurationOrDefault("SHUTDOWN_GRACE_PERIOD", 10*time.Second),
		HousekeepingInterval: getEnvDurationOrDefault("HOUSEKEEPING_INTERVAL", 1*time.Hour),

		BaseURL:        strings.TrimRight(getEnvOrDefault("ALUMNET_BASE_URL", "http://localhost:3000"), "/"),
		InviteTTL:      getEnvDurationOrDefault("ALUMNET_INVITE_TTL", domain.DefaultInviteTTL),
		MaxUploadBytes: int64(getEnvIntOrDefault("ALUMNET_MAX_UPLOAD_BYTES", 10<<20)),

		MailDispatchInterval: getEnvDurationOrDefault("MAIL_DISPATCH_INTERVAL", service.DefaultMailInterval),
		MailMaxAttempts:      getEnvIntOrDefault("MAIL_MAX_ATTEMPTS", service.DefaultMailMaxAttempts),
		MailRetention:        getEnvDurationOrDefault("MAIL_RETENTION", service.DefaultMailRetention),
		SMTP: service.SMTPConfig{
			Host:     os.Getenv("SMTP_HOST"),
			Port:     getEnvIntOrDefault("SMTP_PORT", 587),
			Username: os.Getenv("SMTP_USERNAME"),
			Password: os.Getenv("SMTP_PASSWORD"),
			From:     os.Getenv("SMTP_FROM"),
			UseTLS:   getEnvBoolOrDefault("SMTP_USE_TLS", false),
		},
	}

	return cfg
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

func getEnvBoolOrDefault(key string, defaultValue bool) bool {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue
	}

	if b, err := strconv.ParseBool(value); err == nil {
		return b
	}

	return defaultValue
}

func getEnvDurationOrDefault(key string, defaultValue time.Duration) time.Duration {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue
	}

	// Try parsing as duration (e.g., "1h", "30m", "90s")
	if duration, err := time.ParseDuration(value); err == nil {
		return duration
	}

	// Try parsing as integer minutes (for backwards compatibility)
	if minutes, err := strconv.Atoi(value); err == nil {
		return time.Duration(minutes) * time.Minute
	}

	return defaultValue
}
