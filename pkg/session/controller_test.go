package session_test

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/dmitrymomot/sessionkit/pkg/session"
)

func TestController_CreateSession(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	m := newManager(t, nil)
	out := &recorder{}
	c := session.NewController(m, "", "", out)

	s, err := c.CreateSession(ctx, "alice", map[string]any{"user_id": "u-1"}, 120)
	require.NoError(t, err)

	assert.Equal(t, s.Token, out.sessionToken)
	assert.Equal(t, s.CSRFToken, out.csrfToken)
	assert.Equal(t, 120*time.Second, out.ttl)

	// The controller now serves the issued session.
	got, err := c.FetchSession(ctx)
	require.NoError(t, err)
	assert.Equal(t, s.Token, got.Token)
}

func TestController_FetchSession(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	m := newManager(t, nil)
	s, err := m.Create(ctx, "alice", nil, 300)
	require.NoError(t, err)

	t.Run("valid", func(t *testing.T) {
		t.Parallel()
		c := session.NewController(m, s.Token, s.CSRFToken, &recorder{})
		got, err := c.FetchSession(ctx)
		require.NoError(t, err)
		assert.Equal(t, s.Token, got.Token)
	})

	t.Run("hides the reason", func(t *testing.T) {
		t.Parallel()
		cases := map[string][2]string{
			"no token":     {"", ""},
			"unknown":      {s.Partition + ".unknown", s.CSRFToken},
			"malformed":    {"garbage", s.CSRFToken},
			"wrong csrf":   {s.Token, "wrong"},
			"missing csrf": {s.Token, ""},
		}
		for name, tokens := range cases {
			c := session.NewController(m, tokens[0], tokens[1], &recorder{})
			_, err := c.FetchSession(ctx)
			assert.ErrorIs(t, err, session.ErrSessionInvalid, name)
			assert.False(t, errors.Is(err, session.ErrCSRFMismatch), name)
		}
	})

	t.Run("read only skips csrf", func(t *testing.T) {
		t.Parallel()
		c := session.NewController(m, s.Token, "wrong", &recorder{})
		got, err := c.FetchReadOnly(ctx)
		require.NoError(t, err)
		assert.Equal(t, s.Token, got.Token)
	})

	t.Run("if exists", func(t *testing.T) {
		t.Parallel()
		c := session.NewController(m, s.Token, "wrong", &recorder{})
		got, err := c.FetchSessionIfExists(ctx)
		require.NoError(t, err)
		assert.Nil(t, got)

		c = session.NewController(m, s.Token, s.CSRFToken, &recorder{})
		got, err = c.FetchSessionIfExists(ctx)
		require.NoError(t, err)
		require.NotNil(t, got)
	})
}

func TestController_FetchExpired(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	clk := newClock()
	m := newManager(t, nil, session.WithClock(clk.Now))
	s, err := m.Create(ctx, "alice", nil, 60)
	require.NoError(t, err)

	clk.Advance(61 * time.Second)
	c := session.NewController(m, s.Token, s.CSRFToken, &recorder{})
	_, err = c.FetchSession(ctx)
	assert.ErrorIs(t, err, session.ErrSessionInvalid)
}

func TestController_SlidingRefreshesTokens(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	clk := newClock()
	m := newManager(t, nil, session.WithClock(clk.Now))
	s, err := m.Create(ctx, "alice", nil, 100)
	require.NoError(t, err)

	clk.Advance(40 * time.Second)
	out := &recorder{}
	c := session.NewController(m, s.Token, s.CSRFToken, out)
	got, err := c.FetchSession(ctx)
	require.NoError(t, err)

	assert.Equal(t, s.ExpiresAt+40, got.ExpiresAt)
	assert.Equal(t, 1, out.sets)
	assert.Equal(t, s.Token, out.sessionToken)
	assert.Equal(t, 100*time.Second, out.ttl)
}

func TestController_FixedExpiryLeavesTokens(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	clk := newClock()
	m := newManager(t, nil, session.WithClock(clk.Now), session.WithSlidingExpiration(false))
	s, err := m.Create(ctx, "alice", nil, 100)
	require.NoError(t, err)

	clk.Advance(40 * time.Second)
	out := &recorder{}
	c := session.NewController(m, s.Token, s.CSRFToken, out)
	_, err = c.FetchSession(ctx)
	require.NoError(t, err)
	assert.Zero(t, out.sets)
}

func TestController_UpdateSessionData(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	m := newManager(t, nil)
	s, err := m.Create(ctx, "alice", map[string]any{"step": 1}, 300)
	require.NoError(t, err)

	c := session.NewController(m, s.Token, s.CSRFToken, &recorder{})
	updated, err := c.UpdateSessionData(ctx, map[string]any{"step": 2})
	require.NoError(t, err)
	assert.Equal(t, 2, updated.Data["step"])

	got, err := m.Get(ctx, s.Token)
	require.NoError(t, err)
	assert.Equal(t, 2, got.Data["step"])

	c = session.NewController(m, s.Token, "wrong", &recorder{})
	_, err = c.UpdateSessionData(ctx, map[string]any{"step": 3})
	assert.ErrorIs(t, err, session.ErrSessionInvalid)
}

func TestController_RegenerateSession(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	m := newManager(t, nil)
	s, err := m.Create(ctx, "alice", map[string]any{"user_id": "u-1"}, 300)
	require.NoError(t, err)

	out := &recorder{}
	c := session.NewController(m, s.Token, s.CSRFToken, out)
	next, err := c.RegenerateSession(ctx)
	require.NoError(t, err)

	assert.NotEqual(t, s.Token, next.Token)
	assert.Equal(t, next.Token, out.sessionToken)
	assert.Equal(t, next.CSRFToken, out.csrfToken)
	assert.Equal(t, s.Data, next.Data)

	_, err = m.Get(ctx, s.Token)
	assert.ErrorIs(t, err, session.ErrSessionNotFound)

	// Follow-up calls on the same controller use the rotated tokens.
	got, err := c.FetchSession(ctx)
	require.NoError(t, err)
	assert.Equal(t, next.Token, got.Token)
}

func TestController_EndSession(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	clk := newClock()
	m := newManager(t, nil, session.WithClock(clk.Now))

	t.Run("deletes and clears", func(t *testing.T) {
		s, err := m.Create(ctx, "alice", nil, 300)
		require.NoError(t, err)
		other, err := m.Create(ctx, "alice", nil, 300)
		require.NoError(t, err)

		out := &recorder{}
		c := session.NewController(m, s.Token, "", out)
		require.NoError(t, c.EndSession(ctx))
		assert.Equal(t, 1, out.clears)

		_, err = m.Get(ctx, s.Token)
		assert.ErrorIs(t, err, session.ErrSessionNotFound)
		_, err = m.Get(ctx, other.Token)
		assert.NoError(t, err)

		_, err = c.FetchReadOnly(ctx)
		assert.ErrorIs(t, err, session.ErrSessionInvalid)
	})

	t.Run("expired session is still removed", func(t *testing.T) {
		s, err := m.Create(ctx, "alice", nil, 10)
		require.NoError(t, err)
		clk.Advance(time.Minute)

		c := session.NewController(m, s.Token, s.CSRFToken, &recorder{})
		require.NoError(t, c.EndSession(ctx))

		_, err = m.Get(ctx, s.Token)
		assert.ErrorIs(t, err, session.ErrSessionNotFound)
	})

	t.Run("without session only clears", func(t *testing.T) {
		out := &recorder{}
		c := session.NewController(m, "", "", out)
		require.NoError(t, c.EndSession(ctx))
		assert.Equal(t, 1, out.clears)
	})
}

func TestController_EndSessionAll(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	m := newManager(t, nil)

	var alice []*session.Session
	for range 3 {
		s, err := m.Create(ctx, "alice", nil, 300)
		require.NoError(t, err)
		alice = append(alice, s)
	}
	bob, err := m.Create(ctx, "bob", nil, 300)
	require.NoError(t, err)

	out := &recorder{}
	c := session.NewController(m, alice[0].Token, alice[0].CSRFToken, out)
	require.NoError(t, c.EndSessionAll(ctx))
	assert.Equal(t, 1, out.clears)

	for _, s := range alice {
		_, err := m.Get(ctx, s.Token)
		assert.ErrorIs(t, err, session.ErrSessionNotFound)
	}
	_, err = m.Get(ctx, bob.Token)
	assert.NoError(t, err)
}

func TestController_StoreUnavailable(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	store := &MockStore{}
	m := newManager(t, store)
	backendErr := errors.Join(session.ErrStoreUnavailable, errors.New("redis: connection pool timeout"))

	store.On("Get", mock.Anything, mock.Anything, mock.Anything).Return(nil, backendErr)
	store.On("Put", mock.Anything, mock.Anything).Return(backendErr)

	tok := m.Partition("alice") + ".secret"
	c := session.NewController(m, tok, "csrf", &recorder{})

	_, err := c.FetchSession(ctx)
	assert.Equal(t, session.ErrStoreUnavailable, err)

	_, err = c.FetchSessionIfExists(ctx)
	assert.Equal(t, session.ErrStoreUnavailable, err)

	_, err = c.CreateSession(ctx, "alice", nil, 60)
	assert.Equal(t, session.ErrStoreUnavailable, err)

	out := &recorder{}
	c = session.NewController(m, tok, "csrf", out)
	assert.Equal(t, session.ErrStoreUnavailable, c.EndSession(ctx))
	assert.Equal(t, 1, out.clears)
}
