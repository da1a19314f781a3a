// internal/app/bootstrap/config.go
package bootstrap

import (
	"fmt"
	"time"

	"github.com/dalemusser/waffle/config"
	wafflemongo "github.com/dalemusser/waffle/pantry/mongo"
	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"
)

// Development-only secrets. ValidateConfig refuses them in prod.
const (
	devSessionKey = "dev-only-change-me-please-0123456789ABCDEF"
	devJWTSecret  = "dev-only-jwt-secret-change-me-0123456789"

	minSecretLen = 32
)

// appConfigKeys defines the configuration keys for VenueHub.
// These are loaded via WAFFLE's config system with support for:
//   - Config files: mongo_uri, session_name, etc.
//   - Environment variables: VENUEHUB_MONGO_URI, VENUEHUB_SESSION_NAME, etc.
//   - Command-line flags: --mongo_uri, --session_name, etc.
var appConfigKeys = []config.AppKey{
	{Name: "mongo_uri", Default: "mongodb://localhost:27017", Desc: "MongoDB connection URI"},
	{Name: "mongo_database", Default: "venuehub", Desc: "MongoDB database name"},
	{Name: "mongo_max_pool_size", Default: 100, Desc: "MongoDB max connection pool size (default: 100)"},
	{Name: "mongo_min_pool_size", Default: 10, Desc: "MongoDB min connection pool size (default: 10)"},
	{Name: "redis_url", Default: "", Desc: "Redis URL for caching and shared rate limits (blank disables)"},

	// Sessions
	{Name: "session_key", Default: devSessionKey, Desc: "Session signing key (must be strong in production)"},
	{Name: "session_name", Default: "venuehub-session", Desc: "Session cookie name"},
	{Name: "session_domain", Default: "", Desc: "Session cookie domain (blank means current host)"},
	{Name: "session_max_age", Default: "720h", Desc: "Session lifetime (e.g., 24h, 720h)"},

	// Signed tokens
	{Name: "jwt_secret", Default: devJWTSecret, Desc: "HMAC secret for verification and reset tokens"},
	{Name: "verify_token_expiry", Default: "24h", Desc: "Email verification link expiry"},
	{Name: "reset_token_expiry", Default: "1h", Desc: "Password reset link expiry"},

	// Email/SMTP configuration
	{Name: "mail_smtp_host", Default: "localhost", Desc: "SMTP server host"},
	{Name: "mail_smtp_port", Default: 1025, Desc: "SMTP server port"},
	{Name: "mail_smtp_user", Default: "", Desc: "SMTP username"},
	{Name: "mail_smtp_pass", Default: "", Desc: "SMTP password"},
	{Name: "mail_from", Default: "noreply@venuehub.local", Desc: "From email address"},
	{Name: "mail_from_name", Default: "VenueHub", Desc: "From display name"},

	// Links
	{Name: "base_url", Default: "http://localhost:8080", Desc: "Public URL of this API (verification links)"},
	{Name: "frontend_url", Default: "http://localhost:3000", Desc: "Browser app URL (reset links, OAuth redirects)"},
	{Name: "site_name", Default: "VenueHub", Desc: "Name used in email subjects and bodies"},

	// Google OAuth configuration
	{Name: "google_client_id", Default: "", Desc: "Google OAuth2 client ID"},
	{Name: "google_client_secret", Default: "", Desc: "Google OAuth2 client secret"},

	// Audit logging settings
	{Name: "audit_log_auth", Default: "all", Desc: "Auth event logging: 'all' (db+log), 'db', 'log', or 'off'"},
	{Name: "audit_log_booking", Default: "all", Desc: "Booking event logging: 'all' (db+log), 'db', 'log', or 'off'"},

	// Abuse controls
	{Name: "login_rate_ip", Default: 10, Desc: "Login attempts per IP per minute"},
	{Name: "login_rate_user", Default: 5, Desc: "Login attempts per username per 5 minutes"},
	{Name: "reveal_unknown_email", Default: false, Desc: "Answer 404 on forgot-password for unknown addresses"},

	// Timeouts
	{Name: "timeout_ping", Default: "2s", Desc: "Health-check ping timeout"},
	{Name: "timeout_short", Default: "5s", Desc: "Single-document DB operation timeout"},
	{Name: "timeout_medium", Default: "10s", Desc: "Multi-document DB operation timeout"},
	{Name: "timeout_long", Default: "30s", Desc: "Timeout for operations that include sending mail"},

	// Admin bootstrap
	{Name: "admin_email", Default: "", Desc: "Email of a user to promote to admin on startup"},
}

// LoadConfig loads WAFFLE core config and app-specific config.
//
// WAFFLE's config.LoadWithAppConfig handles .env files, config.yaml/json/toml,
// environment variables (WAFFLE_* for core, VENUEHUB_* for app) and flags,
// merged with precedence flags > env > files > defaults.
func LoadConfig(logger *zap.Logger) (*config.CoreConfig, AppConfig, error) {
	coreCfg, appValues, err := config.LoadWithAppConfig(logger, "VENUEHUB", appConfigKeys)
	if err != nil {
		return nil, AppConfig{}, err
	}

	appCfg := AppConfig{
		MongoURI:         appValues.String("mongo_uri"),
		MongoDatabase:    appValues.String("mongo_database"),
		MongoMaxPoolSize: uint64(appValues.Int("mongo_max_pool_size")),
		MongoMinPoolSize: uint64(appValues.Int("mongo_min_pool_size")),
		RedisURL:         appValues.String("redis_url"),

		SessionKey:    appValues.String("session_key"),
		SessionName:   appValues.String("session_name"),
		SessionDomain: appValues.String("session_domain"),
		SessionMaxAge: appValues.Duration("session_max_age", 30*24*time.Hour),

		JWTSecret:         appValues.String("jwt_secret"),
		VerifyTokenExpiry: appValues.Duration("verify_token_expiry", 24*time.Hour),
		ResetTokenExpiry:  appValues.Duration("reset_token_expiry", time.Hour),

		MailSMTPHost: appValues.String("mail_smtp_host"),
		MailSMTPPort: appValues.Int("mail_smtp_port"),
		MailSMTPUser: appValues.String("mail_smtp_user"),
		MailSMTPPass: appValues.String("mail_smtp_pass"),
		MailFrom:     appValues.String("mail_from"),
		MailFromName: appValues.String("mail_from_name"),

		BaseURL:     appValues.String("base_url"),
		FrontendURL: appValues.String("frontend_url"),
		SiteName:    appValues.String("site_name"),

		GoogleClientID:     appValues.String("google_client_id"),
		GoogleClientSecret: appValues.String("google_client_secret"),

		AuditLogAuth:    appValues.String("audit_log_auth"),
		AuditLogBooking: appValues.String("audit_log_booking"),

		LoginRateIP:        appValues.Int("login_rate_ip"),
		LoginRateUser:      appValues.Int("login_rate_user"),
		RevealUnknownEmail: appValues.Bool("reveal_unknown_email"),

		TimeoutPing:   appValues.Duration("timeout_ping", 2*time.Second),
		TimeoutShort:  appValues.Duration("timeout_short", 5*time.Second),
		TimeoutMedium: appValues.Duration("timeout_medium", 10*time.Second),
		TimeoutLong:   appValues.Duration("timeout_long", 30*time.Second),

		AdminEmail: appValues.String("admin_email"),
	}

	return coreCfg, appCfg, nil
}

// ValidateConfig performs app-specific config validation.
//
// It rejects a malformed MongoDB URI or Redis URL before any connection is
// attempted, and refuses development or short secrets in production.
func ValidateConfig(coreCfg *config.CoreConfig, appCfg AppConfig, logger *zap.Logger) error {
	if err := wafflemongo.ValidateURI(appCfg.MongoURI); err != nil {
		logger.Error("invalid MongoDB URI", zap.Error(err))
		return fmt.Errorf("invalid MongoDB URI: %w", err)
	}
	if appCfg.RedisURL != "" {
		if _, err := redis.ParseURL(appCfg.RedisURL); err != nil {
			return fmt.Errorf("invalid redis_url: %w", err)
		}
	}
	if appCfg.MongoDatabase == "" {
		return fmt.Errorf("mongo_database is required")
	}

	if coreCfg != nil && coreCfg.Env == "prod" {
		if err := checkSecret("session_key", appCfg.SessionKey, devSessionKey); err != nil {
			return err
		}
		if err := checkSecret("jwt_secret", appCfg.JWTSecret, devJWTSecret); err != nil {
			return err
		}
	}

	if appCfg.GoogleClientID != "" && appCfg.GoogleClientSecret == "" {
		return fmt.Errorf("google_client_secret is required when google_client_id is set")
	}
	return nil
}

func checkSecret(name, value, devDefault string) error {
	if value == devDefault {
		return fmt.Errorf("%s must be changed from the development default in production", name)
	}
	if len(value) < minSecretLen {
		return fmt.Errorf("%s must be at least %d characters in production", name, minSecretLen)
	}
	return nil
}
