package redis

import (
	"context"
	"encoding/json"
	"errors"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/dmitrymomot/sessionkit/pkg/session"
)

// Store implements session.Store on Redis.
//
// Each session is a JSON string under "<prefix>session:{<partition>}:<token>"
// that Redis expires at the session's ExpiresAt. The tokens of one owner are
// kept in a set under "<prefix>owner:{<partition>}", whose expiry follows the
// longest-lived member. Members whose record already expired are pruned on
// Query. The partition is a hash tag, so all keys of one owner share a
// cluster slot and the multi-key commands work on Redis Cluster. Requires
// Redis 7 or later.
type Store struct {
	client redis.UniversalClient
	prefix string
}

// StoreOption configures a Store.
type StoreOption func(*Store)

// WithKeyPrefix namespaces all keys written by the store.
func WithKeyPrefix(prefix string) StoreOption {
	return func(s *Store) {
		s.prefix = prefix
	}
}

// NewStore creates a session store on top of client.
func NewStore(client redis.UniversalClient, opts ...StoreOption) *Store {
	s := &Store{
		client: client,
		prefix: "sessions:",
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// NewStoreFromConfig creates a store using the key prefix from cfg.
func NewStoreFromConfig(client redis.UniversalClient, cfg Config, opts ...StoreOption) *Store {
	return NewStore(client, append([]StoreOption{WithKeyPrefix(cfg.KeyPrefix)}, opts...)...)
}

func (s *Store) recordKey(partition, token string) string {
	return s.prefix + "session:{" + partition + "}:" + token
}

func (s *Store) indexKey(partition string) string {
	return s.prefix + "owner:{" + partition + "}"
}

// Get returns the session stored under token in partition.
func (s *Store) Get(ctx context.Context, partition, token string) (*session.Session, error) {
	raw, err := s.client.Get(ctx, s.recordKey(partition, token)).Bytes()
	if errors.Is(err, redis.Nil) {
		return nil, session.ErrSessionNotFound
	}
	if err != nil {
		return nil, errors.Join(session.ErrStoreUnavailable, err)
	}

	sess, err := decode(raw)
	if err != nil {
		return nil, err
	}
	if sess.Partition != partition {
		return nil, session.ErrSessionNotFound
	}
	return sess, nil
}

// Put writes the session and adds it to its owner index.
func (s *Store) Put(ctx context.Context, sess *session.Session) error {
	raw, err := encode(sess)
	if err != nil {
		return err
	}

	expiresAt := time.Unix(sess.ExpiresAt, 0)
	_, err = s.client.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
		pipe.SetArgs(ctx, s.recordKey(sess.Partition, sess.Token), raw, redis.SetArgs{ExpireAt: expiresAt})
		pipe.SAdd(ctx, s.indexKey(sess.Partition), sess.Token)
		s.extendIndex(ctx, pipe, sess.Partition, expiresAt)
		return nil
	})
	if err != nil {
		return errors.Join(session.ErrStoreUnavailable, err)
	}
	return nil
}

// Update overwrites the session only if it still exists.
func (s *Store) Update(ctx context.Context, sess *session.Session) error {
	raw, err := encode(sess)
	if err != nil {
		return err
	}

	expiresAt := time.Unix(sess.ExpiresAt, 0)
	err = s.client.SetArgs(ctx, s.recordKey(sess.Partition, sess.Token), raw, redis.SetArgs{
		Mode:     "XX",
		ExpireAt: expiresAt,
	}).Err()
	if errors.Is(err, redis.Nil) {
		return session.ErrSessionNotFound
	}
	if err != nil {
		return errors.Join(session.ErrStoreUnavailable, err)
	}

	_, err = s.client.Pipelined(ctx, func(pipe redis.Pipeliner) error {
		s.extendIndex(ctx, pipe, sess.Partition, expiresAt)
		return nil
	})
	if err != nil {
		return errors.Join(session.ErrStoreUnavailable, err)
	}
	return nil
}

// extendIndex makes the owner index outlive its longest-lived member.
// NX covers a fresh index, GT only ever moves the expiry forward.
func (s *Store) extendIndex(ctx context.Context, pipe redis.Pipeliner, partition string, expiresAt time.Time) {
	ttl := max(time.Until(expiresAt), time.Second)
	key := s.indexKey(partition)
	pipe.ExpireNX(ctx, key, ttl)
	pipe.ExpireGT(ctx, key, ttl)
}

// Delete removes one session and its index entry.
func (s *Store) Delete(ctx context.Context, partition, token string) (bool, error) {
	var del *redis.IntCmd
	_, err := s.client.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
		del = pipe.Del(ctx, s.recordKey(partition, token))
		pipe.SRem(ctx, s.indexKey(partition), token)
		return nil
	})
	if err != nil {
		return false, errors.Join(session.ErrStoreUnavailable, err)
	}
	return del.Val() > 0, nil
}

// Query loads every live session of the partition.
func (s *Store) Query(ctx context.Context, partition string) ([]*session.Session, error) {
	tokens, err := s.client.SMembers(ctx, s.indexKey(partition)).Result()
	if err != nil {
		return nil, errors.Join(session.ErrStoreUnavailable, err)
	}
	if len(tokens) == 0 {
		return []*session.Session{}, nil
	}

	keys := make([]string, len(tokens))
	for i, t := range tokens {
		keys[i] = s.recordKey(partition, t)
	}

	values, err := s.client.MGet(ctx, keys...).Result()
	if err != nil {
		return nil, errors.Join(session.ErrStoreUnavailable, err)
	}

	out := make([]*session.Session, 0, len(values))
	var stale []any
	for i, v := range values {
		raw, ok := v.(string)
		if !ok {
			stale = append(stale, tokens[i])
			continue
		}
		sess, err := decode([]byte(raw))
		if err != nil {
			return nil, err
		}
		out = append(out, sess)
	}

	if len(stale) > 0 {
		if err := s.client.SRem(ctx, s.indexKey(partition), stale...).Err(); err != nil {
			return nil, errors.Join(session.ErrStoreUnavailable, err)
		}
	}
	return out, nil
}

// DeleteAll removes every session of the partition together with its index.
func (s *Store) DeleteAll(ctx context.Context, partition string) (bool, error) {
	index := s.indexKey(partition)
	tokens, err := s.client.SMembers(ctx, index).Result()
	if err != nil {
		return false, errors.Join(session.ErrStoreUnavailable, err)
	}
	if len(tokens) == 0 {
		return false, nil
	}

	keys := make([]string, len(tokens))
	for i, t := range tokens {
		keys[i] = s.recordKey(partition, t)
	}

	var del *redis.IntCmd
	_, err = s.client.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
		del = pipe.Del(ctx, keys...)
		pipe.SRem(ctx, index, toAny(tokens)...)
		return nil
	})
	if err != nil {
		return false, errors.Join(session.ErrStoreUnavailable, err)
	}
	return del.Val() > 0, nil
}

func encode(sess *session.Session) ([]byte, error) {
	if sess == nil || sess.Token == "" || sess.Partition == "" {
		return nil, session.ErrMalformedToken
	}
	raw, err := json.Marshal(sess)
	if err != nil {
		return nil, errors.Join(ErrEncodeSession, err)
	}
	return raw, nil
}

func decode(raw []byte) (*session.Session, error) {
	var sess session.Session
	if err := json.Unmarshal(raw, &sess); err != nil {
		return nil, errors.Join(session.ErrStoreUnavailable, ErrDecodeSession, err)
	}
	return &sess, nil
}

func toAny(values []string) []any {
	out := make([]any, len(values))
	for i, v := range values {
		out[i] = v
	}
	return out
}
