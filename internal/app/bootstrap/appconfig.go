// internal/app/bootstrap/appconfig.go
package bootstrap

import "time"

// AppConfig holds service-specific configuration for this WAFFLE app.
//
// WAFFLE's CoreConfig covers ports, TLS, logging level and request limits.
// Everything specific to the study/club site lives here and is handed to
// every lifecycle hook.
type AppConfig struct {
	// Backend API
	BackendBaseURL  string // API root including the /study-somoim base path
	BackendMaxConns int    // idle connections kept per backend host

	// Query cache
	CacheTTL           time.Duration
	CacheSweepInterval time.Duration // janitor interval (cache and OAuth states)

	// MongoDB (OAuth state, audit and activity log)
	MongoURI         string
	MongoDatabase    string
	MongoMaxPoolSize uint64
	MongoMinPoolSize uint64

	// Session cookie
	SessionKey    string
	SessionName   string
	SessionDomain string
	SessionMaxAge time.Duration

	CSRFKey string // 32 bytes

	// Google OAuth
	GoogleClientID     string
	GoogleClientSecret string
	BaseURL            string // public URL; the OAuth redirect is derived from it

	AllowedEmailDomain string
	AdminEmails        []string

	// Audit logging destinations: all, db, log or off
	AuditLogAuth  string
	AuditLogAdmin string

	Timezone string // IANA zone used for display and form dates

	// Requests per minute; zero disables the limiter.
	APIRateLimit   int // per user on /api
	LoginRateLimit int // per client IP on /auth/google
}

// Location resolves Timezone, falling back to UTC. ValidateConfig has
// already rejected unknown zones.
func (c AppConfig) Location() *time.Location {
	loc, err := time.LoadLocation(c.Timezone)
	if err != nil {
		return time.UTC
	}
	return loc
}
