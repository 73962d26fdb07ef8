package session

import (
	"net/http"
	"time"
)

// Transport defines how the session and CSRF tokens travel between client
// and server. It only carries the values and never interprets them.
type Transport interface {
	// Tokens extracts both tokens from the request. Missing values are empty.
	Tokens(r *http.Request) (sessionToken, csrfToken string)

	// SetTokens sends both tokens in the response
	SetTokens(w http.ResponseWriter, sessionToken, csrfToken string, ttl time.Duration) error

	// ClearTokens removes both tokens from the client
	ClearTokens(w http.ResponseWriter) error
}

// responseTokens adapts a Transport and a ResponseWriter to TokenWriter.
type responseTokens struct {
	w http.ResponseWriter
	t Transport
}

func (b responseTokens) SetTokens(sessionToken, csrfToken string, ttl time.Duration) error {
	return b.t.SetTokens(b.w, sessionToken, csrfToken, ttl)
}

func (b responseTokens) ClearTokens() error {
	return b.t.ClearTokens(b.w)
}

// Controller binds the manager to one HTTP request/response pair.
func (m *Manager) Controller(w http.ResponseWriter, r *http.Request, t Transport) *Controller {
	sessionToken, csrfToken := t.Tokens(r)
	return NewController(m, sessionToken, csrfToken, responseTokens{w: w, t: t})
}
