// internal/app/bootstrap/config.go
package bootstrap

import (
	"errors"
	"fmt"
	"net/url"
	"strings"
	"time"

	"github.com/dalemusser/waffle/config"
	wafflemongo "github.com/dalemusser/waffle/pantry/mongo"
	"github.com/metacode22/study-somoim/internal/app/system/auditlog"
	"go.uber.org/zap"
)

// appConfigKeys defines the configuration keys for the study/club site.
// These are loaded via WAFFLE's config system with support for:
//   - Config files: backend_base_url, session_name, etc.
//   - Environment variables: SOMOIM_BACKEND_BASE_URL, SOMOIM_SESSION_NAME, etc.
//   - Command-line flags: --backend_base_url, --session_name, etc.
var appConfigKeys = []config.AppKey{
	// Backend API
	{Name: "backend_base_url", Default: "http://localhost:4000/study-somoim", Desc: "Backend API root, including the /study-somoim base path"},
	{Name: "backend_max_conns", Default: 32, Desc: "Max idle connections per host for the backend transport"},

	// Query cache
	{Name: "cache_ttl", Default: "30s", Desc: "Freshness window for cached backend reads (e.g., 30s, 2m)"},
	{Name: "cache_sweep_interval", Default: "1m", Desc: "Janitor interval for expired cache entries and OAuth states"},

	// MongoDB
	{Name: "mongo_uri", Default: "mongodb://localhost:27017", Desc: "MongoDB connection URI"},
	{Name: "mongo_database", Default: "study_somoim", Desc: "MongoDB database name"},
	{Name: "mongo_max_pool_size", Default: 100, Desc: "MongoDB max connection pool size"},
	{Name: "mongo_min_pool_size", Default: 10, Desc: "MongoDB min connection pool size"},

	// Sessions and CSRF
	{Name: "session_key", Default: "dev-only-change-me-please-0123456789ABCDEF", Desc: "Session signing key (must be strong in production)"},
	{Name: "session_name", Default: "somoim-session", Desc: "Session cookie name"},
	{Name: "session_domain", Default: "", Desc: "Session cookie domain (blank means current host)"},
	{Name: "session_max_age", Default: "720h", Desc: "Session cookie lifetime"},
	{Name: "csrf_key", Default: "dev-only-csrf-key-0123456789abcd", Desc: "32-byte CSRF authentication key"},

	// Google OAuth
	{Name: "google_client_id", Default: "", Desc: "Google OAuth2 client ID"},
	{Name: "google_client_secret", Default: "", Desc: "Google OAuth2 client secret"},
	{Name: "base_url", Default: "http://localhost:3000", Desc: "Public base URL, used for the OAuth redirect"},
	{Name: "allowed_email_domain", Default: "teamsparta.co", Desc: "Only this email domain may sign in"},
	{Name: "admin_emails", Default: "", Desc: "Comma-separated emails that receive the admin role"},

	// Audit logging settings
	{Name: "audit_log_auth", Default: "all", Desc: "Auth event logging: 'all' (db+log), 'db', 'log', or 'off'"},
	{Name: "audit_log_admin", Default: "all", Desc: "Admin event logging: 'all' (db+log), 'db', 'log', or 'off'"},

	{Name: "timezone", Default: "Asia/Seoul", Desc: "IANA time zone for display and form dates"},

	// Rate limits
	{Name: "api_rate_limit", Default: 120, Desc: "Requests per minute per user on /api (0 disables)"},
	{Name: "login_rate_limit", Default: 20, Desc: "Google sign-in starts per minute per client IP (0 disables)"},
}

// LoadConfig loads WAFFLE core config and app-specific config.
//
// WAFFLE's config.LoadWithAppConfig handles .env files, config files,
// WAFFLE_* / SOMOIM_* environment variables and flags, merged with
// precedence flags > env > files > defaults.
func LoadConfig(logger *zap.Logger) (*config.CoreConfig, AppConfig, error) {
	coreCfg, appValues, err := config.LoadWithAppConfig(logger, "SOMOIM", appConfigKeys)
	if err != nil {
		return nil, AppConfig{}, err
	}

	appCfg := AppConfig{
		BackendBaseURL:  appValues.String("backend_base_url"),
		BackendMaxConns: appValues.Int("backend_max_conns"),

		CacheTTL:           appValues.Duration("cache_ttl", 30*time.Second),
		CacheSweepInterval: appValues.Duration("cache_sweep_interval", time.Minute),

		MongoURI:         appValues.String("mongo_uri"),
		MongoDatabase:    appValues.String("mongo_database"),
		MongoMaxPoolSize: uint64(appValues.Int("mongo_max_pool_size")),
		MongoMinPoolSize: uint64(appValues.Int("mongo_min_pool_size")),

		SessionKey:    appValues.String("session_key"),
		SessionName:   appValues.String("session_name"),
		SessionDomain: appValues.String("session_domain"),
		SessionMaxAge: appValues.Duration("session_max_age", 30*24*time.Hour),
		CSRFKey:       appValues.String("csrf_key"),

		GoogleClientID:     appValues.String("google_client_id"),
		GoogleClientSecret: appValues.String("google_client_secret"),
		BaseURL:            appValues.String("base_url"),

		AllowedEmailDomain: strings.ToLower(strings.TrimSpace(appValues.String("allowed_email_domain"))),
		AdminEmails:        splitList(appValues.String("admin_emails")),

		AuditLogAuth:  appValues.String("audit_log_auth"),
		AuditLogAdmin: appValues.String("audit_log_admin"),

		Timezone: appValues.String("timezone"),

		APIRateLimit:   appValues.Int("api_rate_limit"),
		LoginRateLimit: appValues.Int("login_rate_limit"),
	}

	return coreCfg, appCfg, nil
}

// splitList parses a comma-separated list, dropping blanks.
func splitList(s string) []string {
	var out []string
	for _, p := range strings.Split(s, ",") {
		if p = strings.ToLower(strings.TrimSpace(p)); p != "" {
			out = append(out, p)
		}
	}
	return out
}

// ValidateConfig performs app-specific config validation.
//
// Return nil to accept the loaded config, or an error to abort startup.
// Problems are caught here, before any connection is attempted.
func ValidateConfig(coreCfg *config.CoreConfig, appCfg AppConfig, logger *zap.Logger) error {
	if err := wafflemongo.ValidateURI(appCfg.MongoURI); err != nil {
		logger.Error("invalid MongoDB URI", zap.Error(err))
		return fmt.Errorf("invalid MongoDB URI: %w", err)
	}

	u, err := url.Parse(appCfg.BackendBaseURL)
	if err != nil || !u.IsAbs() || u.Host == "" {
		return fmt.Errorf("backend_base_url must be an absolute URL, got %q", appCfg.BackendBaseURL)
	}

	if appCfg.CacheTTL <= 0 {
		return errors.New("cache_ttl must be positive")
	}

	if _, err := time.LoadLocation(appCfg.Timezone); err != nil {
		return fmt.Errorf("unknown timezone %q: %w", appCfg.Timezone, err)
	}

	if appCfg.APIRateLimit < 0 || appCfg.LoginRateLimit < 0 {
		return errors.New("rate limits must not be negative")
	}

	if len(appCfg.CSRFKey) != 32 {
		return fmt.Errorf("csrf_key must be exactly 32 bytes, got %d", len(appCfg.CSRFKey))
	}

	for _, s := range []struct{ key, val string }{
		{"audit_log_auth", appCfg.AuditLogAuth},
		{"audit_log_admin", appCfg.AuditLogAdmin},
	} {
		switch s.val {
		case "", auditlog.All, auditlog.DB, auditlog.Log, auditlog.Off:
		default:
			return fmt.Errorf("%s must be one of all, db, log, off; got %q", s.key, s.val)
		}
	}

	if coreCfg != nil && coreCfg.Env == "prod" && appCfg.GoogleClientID == "" {
		logger.Warn("google_client_id is empty; sign-in is disabled")
	}

	return nil
}
