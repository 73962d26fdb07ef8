package pg

import (
	"context"
	"encoding/json"
	"errors"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"

	"github.com/dmitrymomot/sessionkit/pkg/session"
)

// DB is the subset of *pgxpool.Pool used by Store.
type DB interface {
	Exec(ctx context.Context, sql string, args ...any) (pgconn.CommandTag, error)
	Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error)
	QueryRow(ctx context.Context, sql string, args ...any) pgx.Row
}

const (
	columns = `partition_key, sort_key, csrf_token, data, created_at, last_accessed_at, expires_at, ttl_seconds`

	selectSession = `SELECT ` + columns + ` FROM sessions WHERE partition_key = $1 AND sort_key = $2`

	selectPartition = `SELECT ` + columns + ` FROM sessions WHERE partition_key = $1`

	upsertSession = `INSERT INTO sessions (` + columns + `)
VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
ON CONFLICT (partition_key, sort_key) DO UPDATE SET
    csrf_token = EXCLUDED.csrf_token,
    data = EXCLUDED.data,
    created_at = EXCLUDED.created_at,
    last_accessed_at = EXCLUDED.last_accessed_at,
    expires_at = EXCLUDED.expires_at,
    ttl_seconds = EXCLUDED.ttl_seconds`

	updateSession = `UPDATE sessions SET
    csrf_token = $3,
    data = $4,
    created_at = $5,
    last_accessed_at = $6,
    expires_at = $7,
    ttl_seconds = $8
WHERE partition_key = $1 AND sort_key = $2`

	deleteSession = `DELETE FROM sessions WHERE partition_key = $1 AND sort_key = $2`

	deletePartition = `DELETE FROM sessions WHERE partition_key = $1`

	deleteExpired = `DELETE FROM sessions WHERE expires_at <= $1`
)

// Store implements session.Store on the sessions table created by Migrate.
// Postgres has no native expiry, so expired rows stay until DeleteExpired
// runs.
type Store struct {
	db DB
}

// NewStore creates a session store on db.
func NewStore(db DB) *Store {
	return &Store{db: db}
}

func (s *Store) Get(ctx context.Context, partition, token string) (*session.Session, error) {
	sess, err := scanSession(s.db.QueryRow(ctx, selectSession, partition, token))
	if IsNotFoundError(err) {
		return nil, session.ErrSessionNotFound
	}
	if err != nil {
		return nil, errors.Join(session.ErrStoreUnavailable, err)
	}
	return sess, nil
}

func (s *Store) Put(ctx context.Context, sess *session.Session) error {
	args, err := sessionArgs(sess)
	if err != nil {
		return err
	}
	if _, err := s.db.Exec(ctx, upsertSession, args...); err != nil {
		return errors.Join(session.ErrStoreUnavailable, err)
	}
	return nil
}

func (s *Store) Update(ctx context.Context, sess *session.Session) error {
	args, err := sessionArgs(sess)
	if err != nil {
		return err
	}
	tag, err := s.db.Exec(ctx, updateSession, args...)
	if err != nil {
		return errors.Join(session.ErrStoreUnavailable, err)
	}
	if tag.RowsAffected() == 0 {
		return session.ErrSessionNotFound
	}
	return nil
}

func (s *Store) Delete(ctx context.Context, partition, token string) (bool, error) {
	tag, err := s.db.Exec(ctx, deleteSession, partition, token)
	if err != nil {
		return false, errors.Join(session.ErrStoreUnavailable, err)
	}
	return tag.RowsAffected() > 0, nil
}

func (s *Store) Query(ctx context.Context, partition string) ([]*session.Session, error) {
	rows, err := s.db.Query(ctx, selectPartition, partition)
	if err != nil {
		return nil, errors.Join(session.ErrStoreUnavailable, err)
	}

	out, err := pgx.CollectRows(rows, func(row pgx.CollectableRow) (*session.Session, error) {
		return scanSession(row)
	})
	if err != nil {
		return nil, errors.Join(session.ErrStoreUnavailable, err)
	}
	return out, nil
}

func (s *Store) DeleteAll(ctx context.Context, partition string) (bool, error) {
	tag, err := s.db.Exec(ctx, deletePartition, partition)
	if err != nil {
		return false, errors.Join(session.ErrStoreUnavailable, err)
	}
	return tag.RowsAffected() > 0, nil
}

// DeleteExpired removes rows whose expiry is at or before nowUnix and
// returns how many were removed.
func (s *Store) DeleteExpired(ctx context.Context, nowUnix int64) (int64, error) {
	tag, err := s.db.Exec(ctx, deleteExpired, nowUnix)
	if err != nil {
		return 0, errors.Join(session.ErrStoreUnavailable, err)
	}
	return tag.RowsAffected(), nil
}

func sessionArgs(sess *session.Session) ([]any, error) {
	if sess == nil || sess.Token == "" || sess.Partition == "" {
		return nil, session.ErrMalformedToken
	}

	data := sess.Data
	if data == nil {
		data = map[string]any{}
	}
	raw, err := json.Marshal(data)
	if err != nil {
		return nil, errors.Join(ErrEncodeSession, err)
	}

	return []any{
		sess.Partition,
		sess.Token,
		sess.CSRFToken,
		raw,
		sess.CreatedAt,
		sess.LastAccessedAt,
		sess.ExpiresAt,
		sess.TTL,
	}, nil
}

func scanSession(row pgx.Row) (*session.Session, error) {
	var (
		sess session.Session
		raw  []byte
	)
	err := row.Scan(
		&sess.Partition,
		&sess.Token,
		&sess.CSRFToken,
		&raw,
		&sess.CreatedAt,
		&sess.LastAccessedAt,
		&sess.ExpiresAt,
		&sess.TTL,
	)
	if err != nil {
		return nil, err
	}
	if err := json.Unmarshal(raw, &sess.Data); err != nil {
		return nil, err
	}
	return &sess, nil
}
