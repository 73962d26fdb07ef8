package session

import "context"

// Store is the key-value contract every session backend implements.
// Records are addressed by (partition, token); the partition groups all
// sessions of one owner.
//
// Implementations hold no session semantics: they neither validate nor
// expire records. All backend failures must be returned wrapped with
// ErrStoreUnavailable.
type Store interface {
	// Get returns the record or ErrSessionNotFound.
	Get(ctx context.Context, partition, token string) (*Session, error)

	// Put creates or overwrites the record.
	Put(ctx context.Context, session *Session) error

	// Update overwrites an existing record and returns ErrSessionNotFound
	// if it no longer exists.
	Update(ctx context.Context, session *Session) error

	// Delete removes one record and reports whether it existed.
	Delete(ctx context.Context, partition, token string) (bool, error)

	// Query returns every record in the partition, in no particular order.
	Query(ctx context.Context, partition string) ([]*Session, error)

	// DeleteAll removes every record in the partition and reports whether
	// at least one was removed.
	DeleteAll(ctx context.Context, partition string) (bool, error)
}
