package session

import (
	"net/http"
	"strings"
	"time"
)

// HeaderTransport implements Transport using HTTP headers, for API clients
// that cannot rely on cookies.
type HeaderTransport struct {
	requestHeader  string
	responseHeader string
	csrfHeader     string
	prefix         string
}

// NewHeaderTransport creates a new header-based transport.
// Defaults: "Authorization: Bearer <token>" inbound, "X-Session-Token"
// outbound and "X-CSRF-Token" both ways.
func NewHeaderTransport(opts ...HeaderOption) *HeaderTransport {
	t := &HeaderTransport{
		requestHeader:  "Authorization",
		responseHeader: "X-Session-Token",
		csrfHeader:     "X-CSRF-Token",
		prefix:         "Bearer ",
	}

	for _, opt := range opts {
		opt(t)
	}

	return t
}

// HeaderOption is a functional option for HeaderTransport
type HeaderOption func(*HeaderTransport)

// WithHeaderPrefix sets a custom prefix for the inbound session header value
func WithHeaderPrefix(prefix string) HeaderOption {
	return func(t *HeaderTransport) {
		t.prefix = prefix
	}
}

// WithRequestHeader sets the header the session token is read from
func WithRequestHeader(name string) HeaderOption {
	return func(t *HeaderTransport) {
		t.requestHeader = name
	}
}

// WithResponseHeader sets the header new session tokens are written to
func WithResponseHeader(name string) HeaderOption {
	return func(t *HeaderTransport) {
		t.responseHeader = name
	}
}

// WithCSRFHeaderName sets the CSRF header used in both directions
func WithCSRFHeaderName(name string) HeaderOption {
	return func(t *HeaderTransport) {
		t.csrfHeader = name
	}
}

// Tokens extracts both tokens from request headers
func (t *HeaderTransport) Tokens(r *http.Request) (string, string) {
	value := r.Header.Get(t.requestHeader)
	if t.prefix != "" {
		value = strings.TrimPrefix(value, t.prefix)
	}
	return value, r.Header.Get(t.csrfHeader)
}

// SetTokens sends both tokens in response headers
func (t *HeaderTransport) SetTokens(w http.ResponseWriter, sessionToken, csrfToken string, ttl time.Duration) error {
	w.Header().Set(t.responseHeader, sessionToken)
	w.Header().Set(t.csrfHeader, csrfToken)

	if ttl > 0 {
		w.Header().Set(t.responseHeader+"-Expires", time.Now().Add(ttl).UTC().Format(time.RFC3339))
	}

	return nil
}

// ClearTokens removes the session headers from the response
func (t *HeaderTransport) ClearTokens(w http.ResponseWriter) error {
	w.Header().Del(t.responseHeader)
	w.Header().Del(t.responseHeader + "-Expires")
	w.Header().Del(t.csrfHeader)
	return nil
}
