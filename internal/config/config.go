package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
)

// Config holds all runtime configuration loaded from environment variables.
// It is constructed once in main and passed (never referenced globally) into
// every component that needs it; nothing mutates it after startup.
type Config struct {
	AppPort string
	AppEnv  string

	// Session signing secret. Every cookie this service issues carries an
	// HMAC-SHA256 tag derived from it.
	SessionSecret string
	// AdminEmails is the lower-cased allow-list for the admin gate.
	AdminEmails []string

	AWSRegion      string
	AWSEndpointURL string // empty in prod, set to LocalStack URL in dev
	AWSAccessKeyID string
	AWSSecretKey   string

	// Blob store (product metadata, images, overrides).
	BlobBucket    string
	BlobPublicURL string // base URL public object reads go through

	// Per-email OTP issuance ledger.
	DynamoTableOTPLimits string
	OTPMaxPerDay         int

	// Transactional email API.
	EmailAPIURL string
	EmailAPIKey string
	EmailFrom   string

	// Hosted local-first sync service (cart state lives there, client-side).
	SyncDBURL        string
	SyncClientID     string
	SyncClientSecret string

	AllowedOrigins []string // CORS allowed origins
}

// Load reads all configuration from environment variables.
func Load() *Config {
	cfg := &Config{
		AppPort: getEnv("APP_PORT", "3000"),
		AppEnv:  getEnv("APP_ENV", "development"),

		SessionSecret: getEnv("SESSION_SECRET", ""),
		AdminEmails:   ParseAdminEmails(getEnv("ADMIN_EMAILS", "")),

		AWSRegion:      getEnv("AWS_REGION", "us-east-1"),
		AWSEndpointURL: getEnv("AWS_ENDPOINT_URL", ""),
		AWSAccessKeyID: getEnv("AWS_ACCESS_KEY_ID", ""),
		AWSSecretKey:   getEnv("AWS_SECRET_ACCESS_KEY", ""),

		BlobBucket:    getEnv("BLOB_BUCKET", "storefront-blobs"),
		BlobPublicURL: getEnv("BLOB_PUBLIC_URL", ""),

		DynamoTableOTPLimits: getEnv("DYNAMO_TABLE_OTP_LIMITS", "otp_limits"),
		OTPMaxPerDay:         getEnvInt("OTP_MAX_PER_DAY", 20),

		EmailAPIURL: getEnv("EMAIL_API_URL", "https://api.resend.com"),
		EmailAPIKey: getEnv("EMAIL_API_KEY", ""),
		EmailFrom:   getEnv("EMAIL_FROM", ""),

		SyncDBURL:        getEnv("SYNC_DB_URL", ""),
		SyncClientID:     getEnv("SYNC_CLIENT_ID", ""),
		SyncClientSecret: getEnv("SYNC_CLIENT_SECRET", ""),

		AllowedOrigins: strings.Split(getEnv("ALLOWED_ORIGINS", "*"), ","),
	}

	if cfg.BlobPublicURL == "" {
		cfg.BlobPublicURL = defaultBlobPublicURL(cfg)
	}
	return cfg
}

// IsProduction reports whether the service runs with production cookie policy
// (Secure cookies on).
func (c *Config) IsProduction() bool { return c.AppEnv == "production" }

// ParseAdminEmails splits a comma/semicolon/whitespace separated allow-list
// and lower-cases every entry. Empty entries are dropped.
func ParseAdminEmails(raw string) []string {
	fields := strings.FieldsFunc(raw, func(r rune) bool {
		return r == ',' || r == ';' || r == ' ' || r == '\t' || r == '\n'
	})
	out := make([]string, 0, len(fields))
	for _, f := range fields {
		out = append(out, strings.ToLower(f))
	}
	return out
}

// defaultBlobPublicURL derives the public base for object reads: the
// LocalStack endpoint in dev (path-style), the virtual-hosted S3 URL in prod.
func defaultBlobPublicURL(c *Config) string {
	if c.AWSEndpointURL != "" {
		return fmt.Sprintf("%s/%s", strings.TrimRight(c.AWSEndpointURL, "/"), c.BlobBucket)
	}
	return fmt.Sprintf("https://%s.s3.%s.amazonaws.com", c.BlobBucket, c.AWSRegion)
}

func getEnv(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

func getEnvInt(key string, fallback int) int {
	if v := os.Getenv(key); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			return n
		}
	}
	return fallback
}
