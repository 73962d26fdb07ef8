package session_test

import (
	"context"
	"encoding/json"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dmitrymomot/sessionkit/pkg/session"
)

func TestSession_IsExpired(t *testing.T) {
	t.Parallel()

	s := &session.Session{ExpiresAt: 1000}
	assert.False(t, s.IsExpired(time.Unix(999, 0)))
	assert.True(t, s.IsExpired(time.Unix(1000, 0)))
	assert.True(t, s.IsExpired(time.Unix(1001, 0)))

	var nilSession *session.Session
	assert.True(t, nilSession.IsExpired(time.Unix(0, 0)))
}

func TestSession_Accessors(t *testing.T) {
	t.Parallel()

	s := &session.Session{Data: map[string]any{
		"name":    "alice",
		"count":   3,
		"decoded": float64(7),
		"bson":    int32(9),
		"admin":   true,
	}}

	name, ok := s.GetString("name")
	assert.True(t, ok)
	assert.Equal(t, "alice", name)

	_, ok = s.GetString("count")
	assert.False(t, ok)

	n, ok := s.GetInt("count")
	assert.True(t, ok)
	assert.Equal(t, 3, n)

	n, ok = s.GetInt("decoded")
	assert.True(t, ok)
	assert.Equal(t, 7, n)

	n, ok = s.GetInt("bson")
	assert.True(t, ok)
	assert.Equal(t, 9, n)

	admin, ok := s.GetBool("admin")
	assert.True(t, ok)
	assert.True(t, admin)

	_, ok = s.Get("missing")
	assert.False(t, ok)

	var nilSession *session.Session
	_, ok = nilSession.Get("name")
	assert.False(t, ok)
}

func TestSession_Clone(t *testing.T) {
	t.Parallel()

	s := &session.Session{Token: "p.s", Data: map[string]any{"k": "v"}}
	c := s.Clone()
	c.Data["k"] = "changed"
	c.Token = "other"

	assert.Equal(t, "v", s.Data["k"])
	assert.Equal(t, "p.s", s.Token)
	assert.Nil(t, (*session.Session)(nil).Clone())
}

func TestSession_Durations(t *testing.T) {
	t.Parallel()

	s := &session.Session{ExpiresAt: 1_700_000_000, TTL: 90}
	assert.Equal(t, time.Unix(1_700_000_000, 0), s.ExpiresTime())
	assert.Equal(t, 90*time.Second, s.TTLDuration())
}

func TestSession_JSON(t *testing.T) {
	t.Parallel()

	m := newManager(t, nil)
	s, err := m.Create(context.Background(), "alice", map[string]any{"k": "v"}, 60)
	require.NoError(t, err)

	raw, err := json.Marshal(s)
	require.NoError(t, err)
	assert.Contains(t, string(raw), `"csrf_token"`)
	assert.Contains(t, string(raw), `"ttl_seconds":60`)
	assert.NotContains(t, string(raw), "alice")
}

func TestPartitionOf(t *testing.T) {
	t.Parallel()

	tests := []struct {
		token string
		want  string
		err   error
	}{
		{token: "part.secret", want: "part"},
		{token: "", err: session.ErrMalformedToken},
		{token: "nodot", err: session.ErrMalformedToken},
		{token: ".secret", err: session.ErrMalformedToken},
		{token: "part.", err: session.ErrMalformedToken},
		{token: "a.b.c", err: session.ErrMalformedToken},
	}

	for _, tt := range tests {
		got, err := session.PartitionOf(tt.token)
		if tt.err != nil {
			assert.ErrorIs(t, err, tt.err, tt.token)
			continue
		}
		require.NoError(t, err)
		assert.Equal(t, tt.want, got)
	}
}

func TestContext(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	_, ok := session.FromContext(ctx)
	assert.False(t, ok)
	assert.Panics(t, func() { session.MustFromContext(ctx) })

	_, ok = session.ControllerFromContext(ctx)
	assert.False(t, ok)

	s := &session.Session{Token: "p.s"}
	ctx = session.WithSession(ctx, s)
	got, ok := session.FromContext(ctx)
	assert.True(t, ok)
	assert.Same(t, s, got)

	c := session.NewController(newManager(t, nil), "", "", &recorder{})
	ctx = session.WithController(ctx, c)
	gotC, ok := session.ControllerFromContext(ctx)
	assert.True(t, ok)
	assert.Same(t, c, gotC)
}
