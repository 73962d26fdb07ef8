package session

import (
	"context"
	"log/slog"
	"maps"
	"time"

	"github.com/dmitrymomot/sessionkit/pkg/logger"
	"github.com/dmitrymomot/sessionkit/pkg/token"
)

// Manager owns the session lifecycle. It is the only writer of session
// records and holds no per-request state, so one instance serves every
// request concurrently.
type Manager struct {
	store  Store
	config Config
	hasher *token.Hasher
	now    func() time.Time
	log    *slog.Logger
}

// New creates a session manager on top of store.
// A salt must be provided with WithSalt or WithConfig.
func New(store Store, opts ...Option) (*Manager, error) {
	if store == nil {
		return nil, ErrNoStore
	}

	m := &Manager{
		store:  store,
		config: DefaultConfig(),
		now:    time.Now,
		log:    slog.New(slog.DiscardHandler),
	}

	for _, opt := range opts {
		opt(m)
	}

	if m.config.Salt == "" {
		return nil, ErrNoSalt
	}
	if m.config.TTLSeconds <= 0 {
		return nil, ErrInvalidTTL
	}

	m.hasher = token.NewHasher(m.config.Salt)
	m.log = m.log.With(logger.Component("session"))

	return m, nil
}

// Sliding reports whether sliding expiration is enabled.
func (m *Manager) Sliding() bool {
	return m.config.SlidingExpiration
}

// Now returns the manager's current time.
func (m *Manager) Now() time.Time {
	return m.now()
}

// Partition returns the storage partition for ownerKey.
func (m *Manager) Partition(ownerKey string) string {
	return m.hasher.Sum(ownerKey)
}

// Create issues a new session for ownerKey and persists it.
// A non-positive ttlSeconds selects the configured default.
func (m *Manager) Create(ctx context.Context, ownerKey string, data map[string]any, ttlSeconds int) (*Session, error) {
	if ttlSeconds <= 0 {
		ttlSeconds = m.config.TTLSeconds
	}
	if data == nil {
		data = make(map[string]any)
	}

	partition := m.hasher.Sum(ownerKey)
	s := &Session{
		Token:     newSessionToken(partition),
		CSRFToken: token.Generate(),
		Partition: partition,
		Data:      data,
		TTL:       int64(ttlSeconds),
	}
	now := m.now()
	s.CreatedAt = now.Unix()
	s.stamp(now)

	if err := m.store.Put(ctx, s); err != nil {
		return nil, err
	}

	m.log.DebugContext(ctx, "session created", logger.Event("create"), logger.Partition(partition))
	return s, nil
}

// Get resolves sessionToken to its record. It does not check expiry; use
// Validate or IsValid before trusting the result.
func (m *Manager) Get(ctx context.Context, sessionToken string) (*Session, error) {
	partition, err := PartitionOf(sessionToken)
	if err != nil {
		return nil, ErrSessionNotFound
	}
	return m.store.Get(ctx, partition, sessionToken)
}

// Validate returns nil if s is usable with the supplied tokens, otherwise
// the reason: ErrSessionNotFound, ErrSessionExpired, ErrTokenMismatch or
// ErrCSRFMismatch. Secrets are compared in constant time.
func (m *Manager) Validate(s *Session, sessionToken, csrfToken string, skipCSRF bool) error {
	if s == nil {
		return ErrSessionNotFound
	}
	if s.IsExpired(m.now()) {
		return ErrSessionExpired
	}
	if !token.Equal(s.Token, sessionToken) {
		return ErrTokenMismatch
	}
	if !skipCSRF && !token.Equal(s.CSRFToken, csrfToken) {
		return ErrCSRFMismatch
	}
	return nil
}

// IsValid reports whether Validate passes.
func (m *Manager) IsValid(s *Session, sessionToken, csrfToken string, skipCSRF bool) bool {
	return m.Validate(s, sessionToken, csrfToken, skipCSRF) == nil
}

// UpdateData replaces the session payload. With sliding expiration the
// session is also extended. Returns ErrSessionNotFound if the record is gone.
func (m *Manager) UpdateData(ctx context.Context, s *Session, data map[string]any) (*Session, error) {
	if s == nil {
		return nil, ErrSessionNotFound
	}
	if data == nil {
		data = make(map[string]any)
	}

	updated := *s
	updated.Data = data
	if m.config.SlidingExpiration {
		updated.stamp(m.now())
	}

	if err := m.store.Update(ctx, &updated); err != nil {
		return nil, err
	}
	return &updated, nil
}

// Touch extends a valid session when sliding expiration is enabled.
// It returns s unchanged when sliding is off or the session was touched
// within the configured threshold.
func (m *Manager) Touch(ctx context.Context, s *Session) (*Session, error) {
	if s == nil {
		return nil, ErrSessionNotFound
	}
	if !m.config.SlidingExpiration {
		return s, nil
	}

	now := m.now()
	if m.config.TouchThreshold > 0 && now.Sub(time.Unix(s.LastAccessedAt, 0)) < m.config.TouchThreshold {
		return s, nil
	}

	touched := *s
	touched.stamp(now)
	if touched.ExpiresAt == s.ExpiresAt {
		return s, nil
	}

	if err := m.store.Update(ctx, &touched); err != nil {
		return nil, err
	}

	m.log.DebugContext(ctx, "session extended",
		logger.Event("touch"),
		logger.Partition(s.Partition),
		logger.TTL(touched.TTLDuration()),
	)
	return &touched, nil
}

// Regenerate rotates both secrets of s. The new record is written before
// the old one is deleted, so a failure in between leaves two valid
// sessions rather than none.
func (m *Manager) Regenerate(ctx context.Context, s *Session) (*Session, error) {
	if s == nil {
		return nil, ErrSessionNotFound
	}

	next := &Session{
		Token:     newSessionToken(s.Partition),
		CSRFToken: token.Generate(),
		Partition: s.Partition,
		Data:      maps.Clone(s.Data),
		TTL:       s.TTL,
	}
	if next.TTL <= 0 {
		next.TTL = int64(m.config.TTLSeconds)
	}
	if next.Data == nil {
		next.Data = make(map[string]any)
	}
	now := m.now()
	next.CreatedAt = now.Unix()
	next.stamp(now)

	if err := m.store.Put(ctx, next); err != nil {
		return nil, err
	}

	if _, err := m.store.Delete(ctx, s.Partition, s.Token); err != nil {
		m.log.WarnContext(ctx, "old session survived rotation",
			logger.Event("regenerate"),
			logger.Partition(s.Partition),
			logger.Error(err),
		)
		return nil, err
	}

	m.log.DebugContext(ctx, "session regenerated", logger.Event("regenerate"), logger.Partition(s.Partition))
	return next, nil
}

// Delete removes exactly the record addressed by s.
func (m *Manager) Delete(ctx context.Context, s *Session) (bool, error) {
	if s == nil {
		return false, nil
	}
	return m.store.Delete(ctx, s.Partition, s.Token)
}

// DeleteAll removes every session that shares the owner of s.
// Sessions created concurrently may survive.
func (m *Manager) DeleteAll(ctx context.Context, s *Session) (bool, error) {
	if s == nil {
		return false, nil
	}

	removed, err := m.store.DeleteAll(ctx, s.Partition)
	if err != nil {
		return false, err
	}

	m.log.DebugContext(ctx, "owner sessions deleted", logger.Event("delete_all"), logger.Partition(s.Partition))
	return removed, nil
}

// List returns the non-expired sessions that share the owner of s.
func (m *Manager) List(ctx context.Context, s *Session) ([]*Session, error) {
	if s == nil {
		return nil, ErrSessionNotFound
	}

	all, err := m.store.Query(ctx, s.Partition)
	if err != nil {
		return nil, err
	}

	now := m.now()
	live := all[:0]
	for _, item := range all {
		if !item.IsExpired(now) {
			live = append(live, item)
		}
	}
	return live, nil
}
