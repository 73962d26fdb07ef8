package cookie

import (
	"net/http"
	"strings"
)

// Config holds cookie defaults loadable from the environment. Secrets is a
// comma separated list, the first entry signs.
type Config struct {
	Secrets  string        `env:"COOKIE_SECRETS"`
	Path     string        `env:"COOKIE_PATH" envDefault:"/"`
	Domain   string        `env:"COOKIE_DOMAIN"`
	Secure   bool          `env:"COOKIE_SECURE" envDefault:"false"`
	SameSite http.SameSite `env:"COOKIE_SAME_SITE" envDefault:"2"` // http.SameSiteLaxMode
}

// NewFromConfig creates a Manager from cfg. Options in opts are applied
// after the config values.
func NewFromConfig(cfg Config, opts ...Option) (*Manager, error) {
	secrets := strings.FieldsFunc(cfg.Secrets, func(r rune) bool { return r == ',' || r == ' ' })

	base := []Option{WithSecure(cfg.Secure), WithDomain(cfg.Domain)}
	if cfg.Path != "" {
		base = append(base, WithPath(cfg.Path))
	}
	if cfg.SameSite != 0 {
		base = append(base, WithSameSite(cfg.SameSite))
	}

	return New(secrets, append(base, opts...)...)
}
