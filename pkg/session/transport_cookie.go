package session

import (
	"net/http"
	"time"

	"github.com/dmitrymomot/sessionkit/pkg/cookie"
)

// CookieTransport implements Transport using cookies.
//
// The session token lives in a signed HttpOnly cookie. The CSRF token is
// delivered in a cookie readable by client scripts, which echo it back in
// a header or form field on state-changing requests.
type CookieTransport struct {
	cookieMgr      *cookie.Manager
	sessionCookie  string
	csrfCookie     string
	csrfHeader     string
	csrfFormField  string
	csrfFromCookie bool
	secureCookies  bool
	options        []cookie.Option
}

// CookieOption is a functional option for CookieTransport
type CookieOption func(*CookieTransport)

// WithSessionCookieName sets the session token cookie name
func WithSessionCookieName(name string) CookieOption {
	return func(t *CookieTransport) {
		if name != "" {
			t.sessionCookie = name
		}
	}
}

// WithCSRFCookieName sets the CSRF token cookie name
func WithCSRFCookieName(name string) CookieOption {
	return func(t *CookieTransport) {
		if name != "" {
			t.csrfCookie = name
		}
	}
}

// WithCSRFHeader sets the request header the CSRF token is read from
func WithCSRFHeader(name string) CookieOption {
	return func(t *CookieTransport) {
		if name != "" {
			t.csrfHeader = name
		}
	}
}

// WithCSRFFormField sets the form field used when the header is absent
func WithCSRFFormField(name string) CookieOption {
	return func(t *CookieTransport) {
		t.csrfFormField = name
	}
}

// WithCSRFFromCookie reads the inbound CSRF token from its cookie instead
// of a header or form field.
func WithCSRFFromCookie() CookieOption {
	return func(t *CookieTransport) {
		t.csrfFromCookie = true
	}
}

// WithSecureCookies sets the Secure flag on both cookies
func WithSecureCookies(secure bool) CookieOption {
	return func(t *CookieTransport) {
		t.secureCookies = secure
	}
}

// WithCookieOptions appends cookie options applied to both cookies
func WithCookieOptions(opts ...cookie.Option) CookieOption {
	return func(t *CookieTransport) {
		t.options = append(t.options, opts...)
	}
}

// NewCookieTransport creates a new cookie-based transport
func NewCookieTransport(cookieMgr *cookie.Manager, opts ...CookieOption) *CookieTransport {
	t := &CookieTransport{
		cookieMgr:     cookieMgr,
		sessionCookie: "session-token",
		csrfCookie:    "session-csrf",
		csrfHeader:    "X-CSRF-Token",
		csrfFormField: "csrf_token",
	}

	for _, opt := range opts {
		opt(t)
	}

	return t
}

// NewCookieTransportFromConfig creates a cookie transport with names and
// flags taken from cfg.
func NewCookieTransportFromConfig(cookieMgr *cookie.Manager, cfg Config, opts ...CookieOption) *CookieTransport {
	configOpts := []CookieOption{
		WithSessionCookieName(cfg.SessionCookieName),
		WithCSRFCookieName(cfg.CSRFCookieName),
		WithCSRFHeader(cfg.CSRFHeaderName),
		WithSecureCookies(cfg.SecureCookies),
	}
	return NewCookieTransport(cookieMgr, append(configOpts, opts...)...)
}

// Tokens extracts both tokens from the request
func (t *CookieTransport) Tokens(r *http.Request) (string, string) {
	sessionToken, err := t.cookieMgr.GetSigned(r, t.sessionCookie)
	if err != nil {
		sessionToken = ""
	}

	if t.csrfFromCookie {
		csrfToken, _ := t.cookieMgr.Get(r, t.csrfCookie)
		return sessionToken, csrfToken
	}

	csrfToken := r.Header.Get(t.csrfHeader)
	if csrfToken == "" && t.csrfFormField != "" && !isSafeMethod(r.Method) {
		csrfToken = r.PostFormValue(t.csrfFormField)
	}
	return sessionToken, csrfToken
}

// SetTokens stores both tokens in cookies
func (t *CookieTransport) SetTokens(w http.ResponseWriter, sessionToken, csrfToken string, ttl time.Duration) error {
	base := []cookie.Option{
		cookie.WithMaxAge(int(ttl.Seconds())),
		cookie.WithPath("/"),
		cookie.WithSameSite(http.SameSiteLaxMode),
	}

	// Add Secure flag if configured (recommended for production)
	if t.secureCookies {
		base = append(base, cookie.WithSecure(true))
	}

	sessionOpts := append(append([]cookie.Option{}, base...), cookie.WithHTTPOnly(true))
	sessionOpts = append(sessionOpts, t.options...)
	if err := t.cookieMgr.SetSigned(w, t.sessionCookie, sessionToken, sessionOpts...); err != nil {
		return err
	}

	csrfOpts := append(append([]cookie.Option{}, base...), t.options...)
	csrfOpts = append(csrfOpts, cookie.WithHTTPOnly(false))
	return t.cookieMgr.Set(w, t.csrfCookie, csrfToken, csrfOpts...)
}

// ClearTokens expires both cookies
func (t *CookieTransport) ClearTokens(w http.ResponseWriter) error {
	t.cookieMgr.Delete(w, t.sessionCookie)
	t.cookieMgr.Delete(w, t.csrfCookie)
	return nil
}
