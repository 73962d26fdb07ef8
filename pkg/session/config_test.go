package session_test

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dmitrymomot/sessionkit/pkg/config"
	"github.com/dmitrymomot/sessionkit/pkg/session"
)

func TestDefaultConfig(t *testing.T) {
	t.Parallel()

	cfg := session.DefaultConfig()
	assert.Empty(t, cfg.Salt)
	assert.Equal(t, session.DefaultTTLSeconds, cfg.TTLSeconds)
	assert.True(t, cfg.SlidingExpiration)
	assert.Equal(t, "session-token", cfg.SessionCookieName)
	assert.Equal(t, "session-csrf", cfg.CSRFCookieName)
	assert.Equal(t, "X-CSRF-Token", cfg.CSRFHeaderName)
}

func TestConfig_FromEnvironment(t *testing.T) {
	t.Setenv("SESSION_SALT", "env-salt")
	t.Setenv("SESSION_TTL_SECONDS", "90")
	t.Setenv("SESSION_SLIDING_EXPIRATION", "false")
	t.Setenv("SESSION_TOUCH_THRESHOLD", "30s")
	t.Setenv("SESSION_SECURE_COOKIES", "true")

	var cfg session.Config
	require.NoError(t, config.ForceReloadConfig(&cfg))

	assert.Equal(t, "env-salt", cfg.Salt)
	assert.Equal(t, 90, cfg.TTLSeconds)
	assert.False(t, cfg.SlidingExpiration)
	assert.Equal(t, 30*time.Second, cfg.TouchThreshold)
	assert.True(t, cfg.SecureCookies)
	assert.Equal(t, "session-token", cfg.SessionCookieName)

	m, err := session.NewFromConfig(session.NewMemoryStore(), cfg)
	require.NoError(t, err)
	assert.False(t, m.Sliding())

	s, err := m.Create(context.Background(), "alice", nil, 0)
	require.NoError(t, err)
	assert.Equal(t, int64(90), s.TTL)
}

func TestNewFromConfig_OptionsOverride(t *testing.T) {
	t.Parallel()

	cfg := session.DefaultConfig()
	cfg.Salt = testSalt

	m, err := session.NewFromConfig(session.NewMemoryStore(), cfg, session.WithSlidingExpiration(false))
	require.NoError(t, err)
	assert.False(t, m.Sliding())

	_, err = session.NewFromConfig(session.NewMemoryStore(), session.DefaultConfig())
	assert.ErrorIs(t, err, session.ErrNoSalt)
}
