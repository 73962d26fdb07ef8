package session

import (
	"context"
	"errors"
	"time"

	"github.com/dmitrymomot/sessionkit/pkg/logger"
	"github.com/dmitrymomot/sessionkit/pkg/token"
)

// TokenWriter delivers the two session values back to the client.
type TokenWriter interface {
	SetTokens(sessionToken, csrfToken string, ttl time.Duration) error
	ClearTokens() error
}

// Controller binds a Manager to the tokens of one inbound request and the
// response that carries new tokens back. It must not be shared between
// requests.
type Controller struct {
	manager      *Manager
	sessionToken string
	csrfToken    string
	out          TokenWriter
	rejected     error
}

// NewController creates a request-scoped controller.
func NewController(m *Manager, sessionToken, csrfToken string, out TokenWriter) *Controller {
	return &Controller{
		manager:      m,
		sessionToken: sessionToken,
		csrfToken:    csrfToken,
		out:          out,
	}
}

// FetchSession returns the current session after a full check, CSRF
// included. Every validation failure is reported as ErrSessionInvalid.
func (c *Controller) FetchSession(ctx context.Context) (*Session, error) {
	s, err := c.fetch(ctx, false)
	if err != nil {
		return nil, err
	}
	if s == nil {
		return nil, ErrSessionInvalid
	}
	return s, nil
}

// FetchSessionIfExists is FetchSession for optional-auth paths: an invalid
// session yields nil without error. Store failures are still returned.
func (c *Controller) FetchSessionIfExists(ctx context.Context) (*Session, error) {
	return c.fetch(ctx, false)
}

// FetchReadOnly validates the session without the CSRF check. Use it only
// for requests that do not change state.
func (c *Controller) FetchReadOnly(ctx context.Context) (*Session, error) {
	s, err := c.fetch(ctx, true)
	if err != nil {
		return nil, err
	}
	if s == nil {
		return nil, ErrSessionInvalid
	}
	return s, nil
}

// CreateSession issues a new session and sets both tokens on the response.
func (c *Controller) CreateSession(ctx context.Context, ownerKey string, data map[string]any, ttlSeconds int) (*Session, error) {
	s, err := c.manager.Create(ctx, ownerKey, data, ttlSeconds)
	if err != nil {
		return nil, c.storeFailure(ctx, "create", err)
	}
	if err := c.issue(s); err != nil {
		return nil, err
	}
	return s, nil
}

// UpdateSessionData validates the current session and replaces its data.
func (c *Controller) UpdateSessionData(ctx context.Context, data map[string]any) (*Session, error) {
	s, err := c.FetchSession(ctx)
	if err != nil {
		return nil, err
	}

	updated, err := c.manager.UpdateData(ctx, s, data)
	if err != nil {
		return nil, c.storeFailure(ctx, "update", err)
	}
	if updated.ExpiresAt != s.ExpiresAt {
		if err := c.out.SetTokens(updated.Token, updated.CSRFToken, c.remaining(updated)); err != nil {
			return nil, err
		}
	}
	return updated, nil
}

// RegenerateSession rotates the current session's secrets, typically after
// a privilege change such as login, and sets the new tokens on the response.
func (c *Controller) RegenerateSession(ctx context.Context) (*Session, error) {
	s, err := c.FetchSession(ctx)
	if err != nil {
		return nil, err
	}

	next, err := c.manager.Regenerate(ctx, s)
	if err != nil {
		return nil, c.storeFailure(ctx, "regenerate", err)
	}
	if err := c.issue(next); err != nil {
		return nil, err
	}
	return next, nil
}

// EndSession deletes the current session, expired or not, and clears both
// tokens on the response.
func (c *Controller) EndSession(ctx context.Context) error {
	return c.end(ctx, "end", c.manager.Delete)
}

// EndSessionAll deletes every session of the current owner and clears
// both tokens on the response.
func (c *Controller) EndSessionAll(ctx context.Context) error {
	return c.end(ctx, "end_all", c.manager.DeleteAll)
}

func (c *Controller) fetch(ctx context.Context, skipCSRF bool) (*Session, error) {
	if c.sessionToken == "" {
		c.logInvalid(ctx, ErrSessionNotFound)
		return nil, nil
	}

	s, err := c.manager.Get(ctx, c.sessionToken)
	if errors.Is(err, ErrSessionNotFound) {
		c.logInvalid(ctx, err)
		return nil, nil
	}
	if err != nil {
		return nil, c.storeFailure(ctx, "fetch", err)
	}

	if err := c.manager.Validate(s, c.sessionToken, c.csrfToken, skipCSRF); err != nil {
		c.logInvalid(ctx, err)
		return nil, nil
	}

	touched, err := c.manager.Touch(ctx, s)
	if errors.Is(err, ErrSessionNotFound) {
		c.logInvalid(ctx, err)
		return nil, nil
	}
	if err != nil {
		return nil, c.storeFailure(ctx, "touch", err)
	}

	if touched.ExpiresAt != s.ExpiresAt {
		if err := c.out.SetTokens(touched.Token, touched.CSRFToken, c.remaining(touched)); err != nil {
			return nil, err
		}
	}
	return touched, nil
}

// csrfRejected reports whether the last fetch failed only because the
// CSRF token did not match an otherwise valid session.
func (c *Controller) csrfRejected() bool {
	return errors.Is(c.rejected, ErrCSRFMismatch)
}

// lookup finds the current session for deletion. Expiry and CSRF are
// ignored, the session token itself must still match.
func (c *Controller) lookup(ctx context.Context) (*Session, error) {
	if c.sessionToken == "" {
		return nil, nil
	}

	s, err := c.manager.Get(ctx, c.sessionToken)
	if errors.Is(err, ErrSessionNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	if !token.Equal(s.Token, c.sessionToken) {
		c.logInvalid(ctx, ErrTokenMismatch)
		return nil, nil
	}
	return s, nil
}

func (c *Controller) end(ctx context.Context, op string, del func(context.Context, *Session) (bool, error)) error {
	s, err := c.lookup(ctx)
	if err == nil && s != nil {
		_, err = del(ctx, s)
	}

	clearErr := c.out.ClearTokens()
	c.sessionToken, c.csrfToken = "", ""

	if err != nil {
		return c.storeFailure(ctx, op, err)
	}
	return clearErr
}

func (c *Controller) issue(s *Session) error {
	c.sessionToken, c.csrfToken = s.Token, s.CSRFToken
	return c.out.SetTokens(s.Token, s.CSRFToken, s.TTLDuration())
}

// remaining is the client-side lifetime for refreshed tokens.
func (c *Controller) remaining(s *Session) time.Duration {
	return time.Unix(s.ExpiresAt, 0).Sub(c.manager.Now())
}

// storeFailure logs backend details and hides them from the caller.
func (c *Controller) storeFailure(ctx context.Context, op string, err error) error {
	if !errors.Is(err, ErrStoreUnavailable) {
		return err
	}
	c.manager.log.ErrorContext(ctx, "session store failure",
		logger.Event(op),
		logger.Error(err),
	)
	return ErrStoreUnavailable
}

func (c *Controller) logInvalid(ctx context.Context, reason error) {
	c.rejected = reason
	c.manager.log.DebugContext(ctx, "session rejected", logger.Reason(reason))
}
