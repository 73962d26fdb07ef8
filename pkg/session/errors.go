package session

import "errors"

var (
	// ErrStoreUnavailable wraps every failure of the storage backend.
	ErrStoreUnavailable = errors.New("session.store_unavailable")

	// ErrSessionNotFound indicates no session exists for the given token
	ErrSessionNotFound = errors.New("session.not_found")

	// ErrSessionInvalid is the only validation error returned to callers of
	// Controller. The concrete reason is logged, never exposed.
	ErrSessionInvalid = errors.New("session.invalid")

	// ErrSessionExpired indicates the session has expired
	ErrSessionExpired = errors.New("session.expired")

	// ErrTokenMismatch indicates the supplied session token differs from the stored one
	ErrTokenMismatch = errors.New("session.token_mismatch")

	// ErrCSRFMismatch indicates the supplied CSRF token differs from the stored one
	ErrCSRFMismatch = errors.New("session.csrf_mismatch")

	// ErrMalformedToken indicates the session token cannot be resolved to a partition
	ErrMalformedToken = errors.New("session.malformed_token")

	// ErrNoStore indicates no store is configured
	ErrNoStore = errors.New("session.no_store")

	// ErrNoSalt indicates the owner hashing salt is missing
	ErrNoSalt = errors.New("session.no_salt")

	// ErrInvalidTTL indicates a non-positive default TTL
	ErrInvalidTTL = errors.New("session.invalid_ttl")
)
