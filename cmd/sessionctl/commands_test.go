package main

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"io"
	"log/slog"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dmitrymomot/sessionkit/pkg/session"
)

func newTestApp(t *testing.T) (*app, *bytes.Buffer) {
	t.Helper()

	b, err := openBackend(context.Background(), "memory", slog.New(slog.NewTextHandler(io.Discard, nil)))
	require.NoError(t, err)

	m, err := session.New(b.store, session.WithSalt("sessionctl-test-salt"))
	require.NoError(t, err)

	out := &bytes.Buffer{}
	return &app{manager: m, backend: b, out: out, log: slog.New(slog.NewTextHandler(io.Discard, nil))}, out
}

func decode[T any](t *testing.T, buf *bytes.Buffer) T {
	t.Helper()
	var v T
	require.NoError(t, json.NewDecoder(buf).Decode(&v))
	buf.Reset()
	return v
}

func TestCreateInspectRevoke(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	a, out := newTestApp(t)

	require.NoError(t, a.dispatch(ctx, []string{"create", "-owner", "alice", "-ttl", "600", "-data", "role=admin", "-data", "plan=pro"}))
	created := decode[sessionView](t, out)
	assert.NotEmpty(t, created.Token)
	assert.NotEmpty(t, created.CSRFToken)
	assert.Equal(t, map[string]any{"role": "admin", "plan": "pro"}, created.Data)
	assert.Equal(t, 600*time.Second, created.ExpiresAt.Sub(created.LastAccessedAt))
	assert.False(t, created.Expired)

	require.NoError(t, a.dispatch(ctx, []string{"inspect", "-token", created.Token}))
	inspected := decode[sessionView](t, out)
	assert.Equal(t, created.Token, inspected.Token)
	assert.Empty(t, inspected.CSRFToken)

	require.NoError(t, a.dispatch(ctx, []string{"revoke", "-token", created.Token}))
	assert.Equal(t, map[string]bool{"removed": true}, decode[map[string]bool](t, out))

	require.NoError(t, a.dispatch(ctx, []string{"revoke", "-token", created.Token}))
	assert.Equal(t, map[string]bool{"removed": false}, decode[map[string]bool](t, out))

	err := a.dispatch(ctx, []string{"inspect", "-token", created.Token})
	assert.ErrorIs(t, err, session.ErrSessionNotFound)
}

func TestListAndRevokeAll(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	a, out := newTestApp(t)

	for range 3 {
		require.NoError(t, a.dispatch(ctx, []string{"create", "-owner", "alice"}))
	}
	require.NoError(t, a.dispatch(ctx, []string{"create", "-owner", "bob"}))
	out.Reset()

	require.NoError(t, a.dispatch(ctx, []string{"list", "-owner", "alice"}))
	assert.Len(t, decode[[]sessionView](t, out), 3)

	require.NoError(t, a.dispatch(ctx, []string{"revoke-all", "-owner", "alice"}))
	assert.Equal(t, map[string]bool{"removed": true}, decode[map[string]bool](t, out))

	require.NoError(t, a.dispatch(ctx, []string{"list", "-owner", "alice"}))
	assert.Empty(t, decode[[]sessionView](t, out))

	require.NoError(t, a.dispatch(ctx, []string{"list", "-owner", "bob"}))
	assert.Len(t, decode[[]sessionView](t, out), 1)
}

func TestDispatchErrors(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	a, _ := newTestApp(t)

	tests := []struct {
		name string
		args []string
		want error
	}{
		{"no command", nil, ErrUnknownCommand},
		{"unknown command", []string{"frobnicate"}, ErrUnknownCommand},
		{"create without owner", []string{"create"}, ErrMissingFlag},
		{"inspect without token", []string{"inspect"}, ErrMissingFlag},
		{"revoke-all without owner", []string{"revoke-all"}, ErrMissingFlag},
		{"bad data", []string{"create", "-owner", "alice", "-data", "novalue"}, ErrInvalidData},
		{"purge on memory", []string{"purge"}, ErrUnsupported},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := a.dispatch(ctx, tt.args)
			assert.ErrorIs(t, err, tt.want)
		})
	}
}

func TestMigrateAndHealth(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	a, out := newTestApp(t)

	require.NoError(t, a.dispatch(ctx, []string{"migrate"}))
	require.NoError(t, a.dispatch(ctx, []string{"health"}))
	assert.Equal(t, map[string]string{"backend": "memory", "status": "ok"}, decode[map[string]string](t, out))

	migrated := false
	a.backend.migrate = func(context.Context) error {
		migrated = true
		return nil
	}
	a.backend.health = func(context.Context) error { return session.ErrStoreUnavailable }
	a.backend.purge = func(context.Context, time.Time) (int64, error) { return 7, nil }

	require.NoError(t, a.dispatch(ctx, []string{"migrate"}))
	assert.True(t, migrated)
	assert.ErrorIs(t, a.dispatch(ctx, []string{"health"}), session.ErrStoreUnavailable)

	require.NoError(t, a.dispatch(ctx, []string{"purge"}))
	assert.Equal(t, map[string]int64{"purged": 7}, decode[map[string]int64](t, out))
}

func TestOpenBackendUnknown(t *testing.T) {
	t.Parallel()

	_, err := openBackend(context.Background(), "cassandra", slog.New(slog.NewTextHandler(io.Discard, nil)))
	assert.True(t, errors.Is(err, ErrUnknownBackend))
}
