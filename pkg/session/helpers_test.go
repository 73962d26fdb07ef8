package session_test

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/dmitrymomot/sessionkit/pkg/session"
)

const testSalt = "test-salt-that-is-long-enough-for-hkdf"

type clock struct {
	mu  sync.Mutex
	now time.Time
}

func newClock() *clock {
	return &clock{now: time.Unix(1_700_000_000, 0)}
}

func (c *clock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.now
}

func (c *clock) Advance(d time.Duration) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.now = c.now.Add(d)
}

func newManager(t *testing.T, store session.Store, opts ...session.Option) *session.Manager {
	t.Helper()
	if store == nil {
		store = session.NewMemoryStore()
	}
	m, err := session.New(store, append([]session.Option{session.WithSalt(testSalt)}, opts...)...)
	require.NoError(t, err)
	return m
}

// MockStore is a mock implementation of session.Store.
type MockStore struct {
	mock.Mock
}

func (m *MockStore) Get(ctx context.Context, partition, token string) (*session.Session, error) {
	args := m.Called(ctx, partition, token)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*session.Session), args.Error(1)
}

func (m *MockStore) Put(ctx context.Context, s *session.Session) error {
	args := m.Called(ctx, s)
	return args.Error(0)
}

func (m *MockStore) Update(ctx context.Context, s *session.Session) error {
	args := m.Called(ctx, s)
	return args.Error(0)
}

func (m *MockStore) Delete(ctx context.Context, partition, token string) (bool, error) {
	args := m.Called(ctx, partition, token)
	return args.Bool(0), args.Error(1)
}

func (m *MockStore) Query(ctx context.Context, partition string) ([]*session.Session, error) {
	args := m.Called(ctx, partition)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*session.Session), args.Error(1)
}

func (m *MockStore) DeleteAll(ctx context.Context, partition string) (bool, error) {
	args := m.Called(ctx, partition)
	return args.Bool(0), args.Error(1)
}

// recorder is a TokenWriter that remembers the last call.
type recorder struct {
	sessionToken string
	csrfToken    string
	ttl          time.Duration
	sets         int
	clears       int
}

func (r *recorder) SetTokens(sessionToken, csrfToken string, ttl time.Duration) error {
	r.sessionToken, r.csrfToken, r.ttl = sessionToken, csrfToken, ttl
	r.sets++
	return nil
}

func (r *recorder) ClearTokens() error {
	r.sessionToken, r.csrfToken, r.ttl = "", "", 0
	r.clears++
	return nil
}
