// internal/app/bootstrap/config.go
package bootstrap

import (
	"fmt"
	"time"

	"github.com/dalemusser/waffle/config"
	wafflemongo "github.com/dalemusser/waffle/pantry/mongo"
	"go.uber.org/zap"
)

const minSessionKeyLen = 32

// appConfigKeys defines the configuration keys for twfhub.
// These are loaded via WAFFLE's config system with support for:
//   - Config files: mongo_uri, old_post_days, etc.
//   - Environment variables: TWFHUB_MONGO_URI, TWFHUB_OLD_POST_DAYS, etc.
//   - Command-line flags: --mongo_uri, --old_post_days, etc.
var appConfigKeys = []config.AppKey{
	{Name: "mongo_uri", Default: "mongodb://localhost:27017", Desc: "MongoDB connection URI"},
	{Name: "mongo_database", Default: "twfhub", Desc: "MongoDB database name"},
	{Name: "mongo_max_pool_size", Default: 100, Desc: "MongoDB max connection pool size (default: 100)"},
	{Name: "session_key", Default: "dev-only-change-me-please-0123456789ABCDEF", Desc: "Session signing key (must be strong in production)"},
	{Name: "session_name", Default: "twfhub-session", Desc: "Session cookie name"},
	{Name: "session_domain", Default: "", Desc: "Session cookie domain (blank means current host)"},
	{Name: "session_max_age", Default: "24h", Desc: "Session cookie lifetime (e.g., 24h, 30m)"},
	{Name: "csrf_key", Default: "", Desc: "32-byte anti-forgery key (blank derives one from session_key)"},

	// Forum read tracking
	{Name: "track_read_posts", Default: true, Desc: "Enable read tracking site-wide"},
	{Name: "allow_forced_read_tracking", Default: false, Desc: "Let forums force read tracking on every participant"},
	{Name: "old_post_days", Default: 14, Desc: "Posts older than this many days count as read (0 disables)"},
	{Name: "read_cleanup_interval", Default: "1h", Desc: "How often stale read marks are pruned (0 disables the worker)"},

	// Audit logging settings
	{Name: "audit_log_twf", Default: "all", Desc: "Forum event logging: 'all' (db+log), 'db', 'log', or 'off'"},
	{Name: "audit_log_auth", Default: "all", Desc: "Auth event logging: 'all' (db+log), 'db', 'log', or 'off'"},
}

// LoadConfig loads WAFFLE core config and app-specific config.
//
// WAFFLE's config.LoadWithAppConfig handles:
//   - Loading from .env files
//   - Loading from config.yaml/json/toml files
//   - Reading environment variables (WAFFLE_* for core, TWFHUB_* for app)
//   - Parsing command-line flags
//   - Merging with precedence: flags > env > files > defaults
func LoadConfig(logger *zap.Logger) (*config.CoreConfig, AppConfig, error) {
	coreCfg, appValues, err := config.LoadWithAppConfig(logger, "TWFHUB", appConfigKeys)
	if err != nil {
		return nil, AppConfig{}, err
	}

	appCfg := AppConfig{
		MongoURI:         appValues.String("mongo_uri"),
		MongoDatabase:    appValues.String("mongo_database"),
		MongoMaxPoolSize: uint64(appValues.Int("mongo_max_pool_size")),
		SessionKey:       appValues.String("session_key"),
		SessionName:      appValues.String("session_name"),
		SessionDomain:    appValues.String("session_domain"),
		SessionMaxAge:    appValues.Duration("session_max_age", 24*time.Hour),
		CSRFKey:          appValues.String("csrf_key"),

		TrackReadPosts:          appValues.Bool("track_read_posts"),
		AllowForcedReadTracking: appValues.Bool("allow_forced_read_tracking"),
		OldPostDays:             appValues.Int("old_post_days"),
		ReadCleanupInterval:     appValues.Duration("read_cleanup_interval", time.Hour),

		AuditLogTwf:  appValues.String("audit_log_twf"),
		AuditLogAuth: appValues.String("audit_log_auth"),
	}

	return coreCfg, appCfg, nil
}

// ValidateConfig performs app-specific config validation.
// Returning an error aborts startup before any connection is attempted.
func ValidateConfig(coreCfg *config.CoreConfig, appCfg AppConfig, logger *zap.Logger) error {
	if err := wafflemongo.ValidateURI(appCfg.MongoURI); err != nil {
		logger.Error("invalid MongoDB URI", zap.Error(err))
		return fmt.Errorf("invalid MongoDB URI: %w", err)
	}
	return validateApp(appCfg)
}

func validateApp(appCfg AppConfig) error {
	if appCfg.MongoDatabase == "" {
		return fmt.Errorf("mongo_database must be set")
	}
	if len(appCfg.SessionKey) < minSessionKeyLen {
		return fmt.Errorf("session_key must be at least %d characters (got %d)", minSessionKeyLen, len(appCfg.SessionKey))
	}
	if appCfg.CSRFKey != "" && len(appCfg.CSRFKey) != 32 {
		return fmt.Errorf("csrf_key must be exactly 32 bytes (got %d)", len(appCfg.CSRFKey))
	}
	if appCfg.OldPostDays < 0 {
		return fmt.Errorf("old_post_days must not be negative (got %d)", appCfg.OldPostDays)
	}
	if appCfg.ReadCleanupInterval < 0 {
		return fmt.Errorf("read_cleanup_interval must not be negative")
	}
	for key, v := range map[string]string{"audit_log_twf": appCfg.AuditLogTwf, "audit_log_auth": appCfg.AuditLogAuth} {
		switch v {
		case "all", "db", "log", "off":
		default:
			return fmt.Errorf("%s must be one of all, db, log, off (got %q)", key, v)
		}
	}
	return nil
}

// csrfKey returns the anti-forgery key, derived from the session key when
// none is configured.
func (c AppConfig) csrfKey() []byte {
	if c.CSRFKey != "" {
		return []byte(c.CSRFKey)
	}
	return []byte(c.SessionKey[:minSessionKeyLen])
}
