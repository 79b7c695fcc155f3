// internal/app/bootstrap/appconfig.go
package bootstrap

import "time"

// AppConfig holds app-specific configuration for twfhub.
// It is loaded alongside WAFFLE's CoreConfig in LoadConfig.
type AppConfig struct {
	// MongoDB
	MongoURI         string
	MongoDatabase    string
	MongoMaxPoolSize uint64

	// Sessions
	SessionKey    string        // signing key, 32+ chars
	SessionName   string        // cookie name (default: twfhub-session)
	SessionDomain string        // blank means current host
	SessionMaxAge time.Duration // cookie lifetime

	// CSRFKey is the 32-byte anti-forgery key. Blank derives it from SessionKey.
	CSRFKey string

	// Read tracking site settings
	TrackReadPosts          bool
	AllowForcedReadTracking bool
	OldPostDays             int
	ReadCleanupInterval     time.Duration

	// Audit logging: "all", "db", "log" or "off"
	AuditLogTwf  string
	AuditLogAuth string
}
