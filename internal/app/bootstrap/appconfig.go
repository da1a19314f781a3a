// internal/app/bootstrap/appconfig.go
package bootstrap

import "time"

// AppConfig holds service-specific configuration for this WAFFLE app.
//
// These values come from environment variables (VENUEHUB_*), configuration
// files, or command-line flags (loaded in LoadConfig). WAFFLE's CoreConfig
// covers ports, TLS, logging and CORS; everything specific to VenueHub lives
// here and is passed to every lifecycle hook.
type AppConfig struct {
	// MongoDB connection configuration
	MongoURI         string // MongoDB connection string (e.g., mongodb://localhost:27017)
	MongoDatabase    string // Database name within MongoDB
	MongoMaxPoolSize uint64
	MongoMinPoolSize uint64

	// Optional Redis (item-list cache, shared rate limits). Blank disables it.
	RedisURL string

	// Session management configuration
	SessionKey    string        // Secret key for signing session cookies (must be strong in production)
	SessionName   string        // Cookie name for sessions (default: venuehub-session)
	SessionDomain string        // Cookie domain (blank means current host)
	SessionMaxAge time.Duration // Lifetime of the cookie and the server-side session record

	// Signed tokens (verification links, password reset)
	JWTSecret         string
	VerifyTokenExpiry time.Duration
	ResetTokenExpiry  time.Duration

	// Email/SMTP configuration
	MailSMTPHost string // SMTP server host (e.g., localhost for Mailpit)
	MailSMTPPort int    // SMTP server port (e.g., 1025 for Mailpit, 587 for SES)
	MailSMTPUser string // SMTP username (empty for Mailpit)
	MailSMTPPass string // SMTP password
	MailFrom     string // From email address (e.g., noreply@venuehub.example)
	MailFromName string // From display name (e.g., VenueHub)

	// Link targets
	BaseURL     string // this API, used in verification links
	FrontendURL string // browser app, used for reset links and OAuth redirects
	SiteName    string

	// Google OAuth (login with Google is disabled when the client id is blank)
	GoogleClientID     string
	GoogleClientSecret string

	// Audit logging: "all", "db", "log" or "off"
	AuditLogAuth    string
	AuditLogBooking string

	// Login throttling (attempts per window)
	LoginRateIP   int
	LoginRateUser int

	// Answer 404 on forgot-password for unknown addresses instead of a uniform 200.
	RevealUnknownEmail bool

	// Request-scoped DB timeouts
	TimeoutPing   time.Duration
	TimeoutShort  time.Duration
	TimeoutMedium time.Duration
	TimeoutLong   time.Duration

	// Admin bootstrap: the user with this email is promoted to admin on startup.
	AdminEmail string
}
