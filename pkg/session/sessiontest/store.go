// Package sessiontest provides a behavioural test suite for session.Store
// implementations.
package sessiontest

import (
	"context"
	"slices"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dmitrymomot/sessionkit/pkg/session"
	"github.com/dmitrymomot/sessionkit/pkg/token"
)

// Record builds a store-ready session in partition p that expires ttl
// from now.
func Record(p string, ttl time.Duration, data map[string]any) *session.Session {
	now := time.Now().Unix()
	return &session.Session{
		Token:          p + "." + token.Generate(),
		CSRFToken:      token.Generate(),
		Partition:      p,
		Data:           data,
		CreatedAt:      now,
		LastAccessedAt: now,
		ExpiresAt:      now + int64(ttl/time.Second),
		TTL:            int64(ttl / time.Second),
	}
}

// Partition returns a partition name unique to the running test.
func Partition(t *testing.T) string {
	t.Helper()
	return token.Hash(t.Name()+token.Generate(), "sessiontest")
}

// RunStoreSuite exercises the Store contract against stores produced by
// newStore. Each subtest gets a fresh store.
func RunStoreSuite(t *testing.T, newStore func(t *testing.T) session.Store) {
	t.Helper()

	ctx := context.Background()

	t.Run("put and get", func(t *testing.T) {
		store := newStore(t)
		p := Partition(t)
		rec := Record(p, time.Hour, map[string]any{"user_id": "42", "admin": true})

		require.NoError(t, store.Put(ctx, rec))

		got, err := store.Get(ctx, p, rec.Token)
		require.NoError(t, err)
		assert.Equal(t, rec.Token, got.Token)
		assert.Equal(t, rec.CSRFToken, got.CSRFToken)
		assert.Equal(t, rec.Partition, got.Partition)
		assert.Equal(t, rec.CreatedAt, got.CreatedAt)
		assert.Equal(t, rec.LastAccessedAt, got.LastAccessedAt)
		assert.Equal(t, rec.ExpiresAt, got.ExpiresAt)
		assert.Equal(t, rec.TTL, got.TTL)
		assert.Equal(t, "42", got.Data["user_id"])
		assert.Equal(t, true, got.Data["admin"])
	})

	t.Run("get missing", func(t *testing.T) {
		store := newStore(t)
		p := Partition(t)

		_, err := store.Get(ctx, p, p+".missing")
		assert.ErrorIs(t, err, session.ErrSessionNotFound)
	})

	t.Run("get from other partition", func(t *testing.T) {
		store := newStore(t)
		rec := Record(Partition(t), time.Hour, nil)
		require.NoError(t, store.Put(ctx, rec))

		_, err := store.Get(ctx, Partition(t), rec.Token)
		assert.ErrorIs(t, err, session.ErrSessionNotFound)
	})

	t.Run("put overwrites", func(t *testing.T) {
		store := newStore(t)
		rec := Record(Partition(t), time.Hour, map[string]any{"v": "1"})
		require.NoError(t, store.Put(ctx, rec))

		rec.Data = map[string]any{"v": "2"}
		require.NoError(t, store.Put(ctx, rec))

		got, err := store.Get(ctx, rec.Partition, rec.Token)
		require.NoError(t, err)
		assert.Equal(t, "2", got.Data["v"])
	})

	t.Run("update existing", func(t *testing.T) {
		store := newStore(t)
		rec := Record(Partition(t), time.Hour, map[string]any{"v": "1"})
		require.NoError(t, store.Put(ctx, rec))

		rec.Data = map[string]any{"v": "2"}
		rec.LastAccessedAt += 60
		rec.ExpiresAt += 60
		require.NoError(t, store.Update(ctx, rec))

		got, err := store.Get(ctx, rec.Partition, rec.Token)
		require.NoError(t, err)
		assert.Equal(t, "2", got.Data["v"])
		assert.Equal(t, rec.ExpiresAt, got.ExpiresAt)
		assert.Equal(t, rec.LastAccessedAt, got.LastAccessedAt)
	})

	t.Run("update missing", func(t *testing.T) {
		store := newStore(t)
		rec := Record(Partition(t), time.Hour, nil)

		err := store.Update(ctx, rec)
		assert.ErrorIs(t, err, session.ErrSessionNotFound)

		_, err = store.Get(ctx, rec.Partition, rec.Token)
		assert.ErrorIs(t, err, session.ErrSessionNotFound, "update must not create records")
	})

	t.Run("delete", func(t *testing.T) {
		store := newStore(t)
		rec := Record(Partition(t), time.Hour, nil)
		require.NoError(t, store.Put(ctx, rec))

		removed, err := store.Delete(ctx, rec.Partition, rec.Token)
		require.NoError(t, err)
		assert.True(t, removed)

		_, err = store.Get(ctx, rec.Partition, rec.Token)
		assert.ErrorIs(t, err, session.ErrSessionNotFound)

		removed, err = store.Delete(ctx, rec.Partition, rec.Token)
		require.NoError(t, err)
		assert.False(t, removed)
	})

	t.Run("query", func(t *testing.T) {
		store := newStore(t)
		p := Partition(t)
		var want []string
		for range 3 {
			rec := Record(p, time.Hour, nil)
			require.NoError(t, store.Put(ctx, rec))
			want = append(want, rec.Token)
		}
		require.NoError(t, store.Put(ctx, Record(Partition(t), time.Hour, nil)))

		got, err := store.Query(ctx, p)
		require.NoError(t, err)

		tokens := make([]string, 0, len(got))
		for _, s := range got {
			assert.Equal(t, p, s.Partition)
			tokens = append(tokens, s.Token)
		}
		slices.Sort(want)
		slices.Sort(tokens)
		assert.Equal(t, want, tokens)
	})

	t.Run("query empty partition", func(t *testing.T) {
		store := newStore(t)

		got, err := store.Query(ctx, Partition(t))
		require.NoError(t, err)
		assert.Empty(t, got)
	})

	t.Run("delete all", func(t *testing.T) {
		store := newStore(t)
		alice, bob := Partition(t), Partition(t)
		var aliceRecs []*session.Session
		for range 3 {
			rec := Record(alice, time.Hour, nil)
			require.NoError(t, store.Put(ctx, rec))
			aliceRecs = append(aliceRecs, rec)
		}
		bobRec := Record(bob, time.Hour, nil)
		require.NoError(t, store.Put(ctx, bobRec))

		removed, err := store.DeleteAll(ctx, alice)
		require.NoError(t, err)
		assert.True(t, removed)

		for _, rec := range aliceRecs {
			_, err := store.Get(ctx, alice, rec.Token)
			assert.ErrorIs(t, err, session.ErrSessionNotFound)
		}
		got, err := store.Get(ctx, bob, bobRec.Token)
		require.NoError(t, err)
		assert.Equal(t, bobRec.Token, got.Token)

		removed, err = store.DeleteAll(ctx, alice)
		require.NoError(t, err)
		assert.False(t, removed)
	})

	t.Run("returned records are copies", func(t *testing.T) {
		store := newStore(t)
		rec := Record(Partition(t), time.Hour, map[string]any{"v": "1"})
		require.NoError(t, store.Put(ctx, rec))
		rec.Data["v"] = "changed"

		got, err := store.Get(ctx, rec.Partition, rec.Token)
		require.NoError(t, err)
		assert.Equal(t, "1", got.Data["v"])

		got.Data["v"] = "mutated"
		again, err := store.Get(ctx, rec.Partition, rec.Token)
		require.NoError(t, err)
		assert.Equal(t, "1", again.Data["v"])
	})
}
