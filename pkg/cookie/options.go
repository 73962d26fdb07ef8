package cookie

import "net/http"

// Options are the attributes written with a cookie.
type Options struct {
	Path     string
	Domain   string
	MaxAge   int
	Secure   bool
	HttpOnly bool
	SameSite http.SameSite
}

type Option func(*Options)

func WithPath(path string) Option {
	return func(o *Options) { o.Path = path }
}

func WithDomain(domain string) Option {
	return func(o *Options) { o.Domain = domain }
}

// WithMaxAge sets the client lifetime in seconds. Zero makes a browser
// session cookie, negative deletes.
func WithMaxAge(seconds int) Option {
	return func(o *Options) { o.MaxAge = seconds }
}

func WithSecure(secure bool) Option {
	return func(o *Options) { o.Secure = secure }
}

// WithHTTPOnly controls script access. The double-submit CSRF cookie must
// be readable by scripts.
func WithHTTPOnly(httpOnly bool) Option {
	return func(o *Options) { o.HttpOnly = httpOnly }
}

func WithSameSite(mode http.SameSite) Option {
	return func(o *Options) { o.SameSite = mode }
}

func (o Options) with(opts []Option) Options {
	for _, opt := range opts {
		opt(&o)
	}
	return o
}
