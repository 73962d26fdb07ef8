// Package session provides server-side web sessions backed by a pluggable
// key-value store, with double-submit CSRF protection.
//
// A session record is addressed by two keys: a partition, the keyed hash of
// the owner (user id or anonymous visitor id), and the session token. The
// partition is embedded in the token ("<partition>.<secret>"), so a token
// resolves to its record in a single point lookup while every session of one
// owner can still be listed or revoked at once ("sign out everywhere").
//
// # Architecture
//
//	┌────────┐  tokens   ┌────────────┐
//	│ Client │ ────────► │  Transport │  cookies / headers
//	└────────┘           └────────────┘
//	                           │
//	                           ▼
//	                     ┌────────────┐
//	                     │ Controller │  one per request
//	                     └────────────┘
//	                           │
//	                           ▼
//	                     ┌────────────┐
//	                     │  Manager   │  lifecycle, validation
//	                     └────────────┘
//	                           │
//	                           ▼
//	                     ┌────────────┐
//	                     │   Store    │  memory, dynamo, redis, mongo, pg
//	                     └────────────┘
//
// Manager is the only writer of session records. Expiry is enforced when a
// session is read, never by a background sweep; backend TTL features are an
// optimisation only. Concurrent writes to the same session are last write
// wins.
//
// # Usage
//
//	store := session.NewMemoryStore()
//	manager, err := session.New(store,
//	    session.WithSalt(os.Getenv("SESSION_SALT")),
//	    session.WithTTL(3600),
//	    session.WithSlidingExpiration(true),
//	)
//
//	cookieMgr, _ := cookie.New([]string{os.Getenv("COOKIE_SECRET")})
//	transport := session.NewCookieTransport(cookieMgr)
//
//	func login(w http.ResponseWriter, r *http.Request) {
//	    c := manager.Controller(w, r, transport)
//	    sess, err := c.CreateSession(r.Context(), userID, map[string]any{"role": "admin"}, 0)
//	    ...
//	}
//
//	func logoutEverywhere(w http.ResponseWriter, r *http.Request) {
//	    c := manager.Controller(w, r, transport)
//	    _ = c.EndSessionAll(r.Context())
//	}
//
// Middleware, RequireSession and EnsureSession wrap the same flow for
// net/http routers and expose the session via FromContext.
//
// # Error Handling
//
//   - ErrStoreUnavailable: backend failure, always returned to the caller.
//   - ErrSessionNotFound: record missing, e.g. updating a deleted session.
//   - ErrSessionInvalid: returned by Controller for any validation failure.
//     The concrete reason (ErrSessionExpired, ErrTokenMismatch or
//     ErrCSRFMismatch) is only logged.
package session
