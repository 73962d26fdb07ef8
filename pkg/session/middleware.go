package session

import (
	"errors"
	"net/http"

	"github.com/google/uuid"
)

// Middleware loads the session if one is valid and exposes it, together
// with the request controller, through the context. Safe methods skip the
// CSRF check.
func (m *Manager) Middleware(t Transport) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			c := m.Controller(w, r, t)
			ctx := WithController(r.Context(), c)

			s, err := c.fetch(ctx, isSafeMethod(r.Method))
			if err != nil {
				writeStoreError(w, err)
				return
			}
			if s != nil {
				ctx = WithSession(ctx, s)
			}

			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

// RequireSession rejects requests without a valid session
func (m *Manager) RequireSession(t Transport) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			c := m.Controller(w, r, t)
			ctx := WithController(r.Context(), c)

			s, err := c.fetch(ctx, isSafeMethod(r.Method))
			if err != nil {
				writeStoreError(w, err)
				return
			}
			if s == nil {
				http.Error(w, "Unauthorized", http.StatusUnauthorized)
				return
			}

			next.ServeHTTP(w, r.WithContext(WithSession(ctx, s)))
		})
	}
}

// EnsureSession guarantees a session: when none is valid, an anonymous one
// is created for a fresh visitor id. A live session presented with a wrong
// CSRF token is refused with 403 and left untouched.
func (m *Manager) EnsureSession(t Transport) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			c := m.Controller(w, r, t)
			ctx := WithController(r.Context(), c)

			s, err := c.fetch(ctx, isSafeMethod(r.Method))
			if err == nil && s == nil && c.csrfRejected() {
				http.Error(w, "Forbidden", http.StatusForbidden)
				return
			}
			if err == nil && s == nil {
				s, err = c.CreateSession(ctx, uuid.NewString(), nil, 0)
			}
			if err != nil {
				writeStoreError(w, err)
				return
			}

			next.ServeHTTP(w, r.WithContext(WithSession(ctx, s)))
		})
	}
}

func writeStoreError(w http.ResponseWriter, err error) {
	if errors.Is(err, ErrStoreUnavailable) {
		http.Error(w, "Service Unavailable", http.StatusServiceUnavailable)
		return
	}
	http.Error(w, "Session error", http.StatusInternalServerError)
}

func isSafeMethod(method string) bool {
	switch method {
	case http.MethodGet, http.MethodHead, http.MethodOptions, http.MethodTrace:
		return true
	}
	return false
}
