package session

import (
	"context"
	"log/slog"

	"github.com/dmitrymomot/sessionkit/pkg/logger"
)

type (
	sessionContextKey    struct{}
	controllerContextKey struct{}
)

// WithSession adds a session to the context
func WithSession(ctx context.Context, session *Session) context.Context {
	return context.WithValue(ctx, sessionContextKey{}, session)
}

// FromContext retrieves a session from the context
func FromContext(ctx context.Context) (*Session, bool) {
	session, ok := ctx.Value(sessionContextKey{}).(*Session)
	return session, ok && session != nil
}

// MustFromContext retrieves a session from the context or panics
func MustFromContext(ctx context.Context) *Session {
	session, ok := FromContext(ctx)
	if !ok {
		panic("session: not found in context")
	}
	return session
}

// WithController adds the request-scoped controller to the context
func WithController(ctx context.Context, c *Controller) context.Context {
	return context.WithValue(ctx, controllerContextKey{}, c)
}

// ControllerFromContext retrieves the request-scoped controller
func ControllerFromContext(ctx context.Context) (*Controller, bool) {
	c, ok := ctx.Value(controllerContextKey{}).(*Controller)
	return c, ok && c != nil
}

// LogExtractor adds the partition of the context session to log records.
func LogExtractor() logger.ContextExtractor {
	return func(ctx context.Context) (slog.Attr, bool) {
		s, ok := FromContext(ctx)
		if !ok {
			return slog.Attr{}, false
		}
		return logger.Partition(s.Partition), true
	}
}
