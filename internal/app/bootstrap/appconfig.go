// internal/app/bootstrap/appconfig.go
package bootstrap

import "time"

// AppConfig holds service-specific configuration for this WAFFLE app.
//
// WAFFLE's CoreConfig handles framework-level settings (ports, TLS,
// logging, CORS). AppConfig is everything specific to CommunityHub:
// database location, session cookies, sign-in policy, uploads.
type AppConfig struct {
	// MongoDB connection configuration
	MongoURI      string // MongoDB connection string (e.g., mongodb://localhost:27017)
	MongoDatabase string // Database name within MongoDB

	// Session management configuration
	SessionKey    string // Secret key for signing session cookies (must be strong in production)
	SessionName   string // Cookie name for sessions (default: communityhub-session)
	SessionDomain string // Cookie domain (blank means current host)

	// Sign-in throttling
	LoginMaxAttempts int           // attempts allowed per window before throttling
	LoginWindow      time.Duration // sliding window length
	LoginFailClosed  bool          // deny sign-in when the attempt store is unreachable

	// Photo uploads
	UploadsDir string // directory gallery uploads are written to

	// Google OAuth configuration
	GoogleClientID     string
	GoogleClientSecret string

	// Base URL for OAuth callbacks
	BaseURL string // e.g., "https://communityhub.example" or "http://localhost:3000"
}
