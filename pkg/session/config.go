package session

import "time"

// Config holds session configuration
type Config struct {
	// Salt keys the owner hash used as the storage partition. Changing it
	// orphans every existing session.
	Salt string `env:"SESSION_SALT,required"`

	// TTLSeconds is the default session lifetime (default: 24h)
	TTLSeconds int `env:"SESSION_TTL_SECONDS" envDefault:"86400"`

	// SlidingExpiration extends ExpiresAt on every successful use
	SlidingExpiration bool `env:"SESSION_SLIDING_EXPIRATION" envDefault:"true"`

	// TouchThreshold is the minimum time between sliding refresh writes
	TouchThreshold time.Duration `env:"SESSION_TOUCH_THRESHOLD" envDefault:"0s"`

	SessionCookieName string `env:"SESSION_COOKIE_NAME" envDefault:"session-token"`
	CSRFCookieName    string `env:"SESSION_CSRF_COOKIE_NAME" envDefault:"session-csrf"`
	CSRFHeaderName    string `env:"SESSION_CSRF_HEADER_NAME" envDefault:"X-CSRF-Token"`

	// SecureCookies enables the Secure flag on session cookies (recommended for production)
	SecureCookies bool `env:"SESSION_SECURE_COOKIES" envDefault:"false"`
}

// DefaultTTLSeconds is applied when neither config nor caller sets a TTL.
const DefaultTTLSeconds = 24 * 60 * 60

// DefaultConfig returns default session configuration. Salt is left empty
// and must be provided.
func DefaultConfig() Config {
	return Config{
		TTLSeconds:        DefaultTTLSeconds,
		SlidingExpiration: true,
		SessionCookieName: "session-token",
		CSRFCookieName:    "session-csrf",
		CSRFHeaderName:    "X-CSRF-Token",
	}
}

// NewFromConfig creates a new Manager from the provided Config.
func NewFromConfig(store Store, cfg Config, opts ...Option) (*Manager, error) {
	configOpts := []Option{
		WithConfig(cfg),
	}

	configOpts = append(configOpts, opts...)

	return New(store, configOpts...)
}
