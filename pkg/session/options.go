package session

import (
	"log/slog"
	"time"
)

// Option is a functional option for configuring the Manager
type Option func(*Manager)

// WithConfig sets custom configuration
func WithConfig(config Config) Option {
	return func(m *Manager) {
		m.config = config
	}
}

// WithSalt sets the secret salt used to hash owner keys
func WithSalt(salt string) Option {
	return func(m *Manager) {
		m.config.Salt = salt
	}
}

// WithTTL sets the default session lifetime in seconds
func WithTTL(seconds int) Option {
	return func(m *Manager) {
		m.config.TTLSeconds = seconds
	}
}

// WithSlidingExpiration toggles sliding expiration
func WithSlidingExpiration(enabled bool) Option {
	return func(m *Manager) {
		m.config.SlidingExpiration = enabled
	}
}

// WithTouchThreshold sets the minimum time between sliding refresh writes
func WithTouchThreshold(threshold time.Duration) Option {
	return func(m *Manager) {
		m.config.TouchThreshold = threshold
	}
}

// WithClock overrides the time source. Intended for tests.
func WithClock(now func() time.Time) Option {
	return func(m *Manager) {
		if now != nil {
			m.now = now
		}
	}
}

// WithLogger sets the logger used for diagnostics
func WithLogger(log *slog.Logger) Option {
	return func(m *Manager) {
		if log != nil {
			m.log = log
		}
	}
}
