package config

import (
	"os"
	"strconv"
	"time"

	"github.com/joho/godotenv"
)

type Config struct {
	// Database
	DBHost     string
	DBPort     string
	DBUser     string
	DBPassword string
	DBName     string
	DBSSLMode  string

	// JWT
	JWTSecret        string
	JWTAccessExpiry  time.Duration
	JWTRefreshExpiry time.Duration

	// Admin bootstrap (comma-separated emails always treated as coaches)
	AdminEmails string

	// Server
	Port        string
	CORSOrigins string
	AppEnv      string

	// Storage bucket (uploads disabled when S3Bucket is empty)
	S3Bucket        string
	S3Region        string
	S3PublicBaseURL string

	// Email
	EmailProvider string // noop, resend, ses
	EmailFrom     string
	ResendAPIKey  string
	SESRegion     string

	// Messaging limits
	MessageRatePerSec float64
	MessageBurst      int

	// Logging
	LogLevel  string
	LogFormat string
	SentryDSN string
}

func Load() *Config {
	// .env is optional; real deployments set the environment directly.
	_ = godotenv.Load()

	return &Config{
		DBHost:     getEnv("DB_HOST", "localhost"),
		DBPort:     getEnv("DB_PORT", "5432"),
		DBUser:     getEnv("DB_USER", "postgres"),
		DBPassword: getEnv("DB_PASSWORD", ""),
		DBName:     getEnv("DB_NAME", "coachdesk"),
		DBSSLMode:  getEnv("DB_SSLMODE", "disable"),

		JWTSecret:        getEnv("JWT_SECRET", ""),
		JWTAccessExpiry:  parseDuration(getEnv("JWT_ACCESS_EXPIRY", "15m"), 15*time.Minute),
		JWTRefreshExpiry: parseDuration(getEnv("JWT_REFRESH_EXPIRY", "168h"), 168*time.Hour),

		AdminEmails: getEnv("ADMIN_EMAILS", ""),

		Port:        getEnv("PORT", "8080"),
		CORSOrigins: getEnv("CORS_ORIGINS", "*"),
		AppEnv:      getEnv("APP_ENV", "development"),

		S3Bucket:        getEnv("S3_BUCKET", ""),
		S3Region:        getEnv("S3_REGION", getEnv("AWS_REGION", "eu-west-1")),
		S3PublicBaseURL: getEnv("S3_PUBLIC_BASE_URL", ""),

		EmailProvider: getEnv("EMAIL_PROVIDER", "noop"),
		EmailFrom:     getEnv("EMAIL_FROM", "CoachDesk <noreply@coachdesk.app>"),
		ResendAPIKey:  getEnv("RESEND_API_KEY", ""),
		SESRegion:     getEnv("SES_REGION", getEnv("AWS_REGION", "eu-west-1")),

		MessageRatePerSec: parseFloat(getEnv("MESSAGE_RATE_PER_SEC", "1"), 1),
		MessageBurst:      parseInt(getEnv("MESSAGE_BURST", "5"), 5),

		LogLevel:  getEnv("LOG_LEVEL", "info"),
		LogFormat: getEnv("LOG_FORMAT", "json"),
		SentryDSN: getEnv("SENTRY_DSN", ""),
	}
}

func (c *Config) DSN() string {
	return "host=" + c.DBHost +
		" user=" + c.DBUser +
		" password=" + c.DBPassword +
		" dbname=" + c.DBName +
		" port=" + c.DBPort +
		" sslmode=" + c.DBSSLMode +
		" TimeZone=UTC"
}

// StorageEnabled reports whether uploads can be sent to the bucket.
func (c *Config) StorageEnabled() bool {
	return c.S3Bucket != ""
}

func getEnv(key, fallback string) string {
	if val := os.Getenv(key); val != "" {
		return val
	}
	return fallback
}

func parseDuration(s string, fallback time.Duration) time.Duration {
	d, err := time.ParseDuration(s)
	if err != nil {
		return fallback
	}
	return d
}

func parseFloat(s string, fallback float64) float64 {
	f, err := strconv.ParseFloat(s, 64)
	if err != nil || f <= 0 {
		return fallback
	}
	return f
}

func parseInt(s string, fallback int) int {
	n, err := strconv.Atoi(s)
	if err != nil || n <= 0 {
		return fallback
	}
	return n
}
