package cookie

import (
	"crypto/hmac"
	"crypto/sha256"
	"crypto/subtle"
	"encoding/base64"
	"errors"
	"fmt"
	"net/http"
	"slices"
	"strings"
	"time"
)

const (
	minSecretLength = 32
	signedSeparator = "."
)

// Manager sets and reads cookies with shared defaults. Signed cookies are
// verified against every configured secret, the first one signs.
type Manager struct {
	secrets  []string
	defaults Options
}

func New(secrets []string, opts ...Option) (*Manager, error) {
	secrets = slices.DeleteFunc(slices.Clone(secrets), func(s string) bool { return s == "" })
	if len(secrets) == 0 {
		return nil, ErrNoSecret
	}

	for i, s := range secrets {
		if len(s) < minSecretLength {
			return nil, fmt.Errorf("%w: secret %d has %d chars, need at least %d", ErrSecretTooShort, i, len(s), minSecretLength)
		}
	}

	defaults := Options{
		Path:     "/",
		HttpOnly: true,
		SameSite: http.SameSiteLaxMode,
	}.with(opts)

	return &Manager{
		secrets:  secrets,
		defaults: defaults,
	}, nil
}

func (m *Manager) Set(w http.ResponseWriter, name, value string, opts ...Option) error {
	options := m.defaults.with(opts)

	http.SetCookie(w, &http.Cookie{
		Name:     name,
		Value:    value,
		Path:     options.Path,
		Domain:   options.Domain,
		MaxAge:   options.MaxAge,
		Secure:   options.Secure,
		HttpOnly: options.HttpOnly,
		SameSite: options.SameSite,
	})
	return nil
}

func (m *Manager) Get(r *http.Request, name string) (string, error) {
	c, err := r.Cookie(name)
	if err != nil {
		if errors.Is(err, http.ErrNoCookie) {
			return "", ErrCookieNotFound
		}
		return "", err
	}
	return c.Value, nil
}

// Delete expires the cookie on the client.
func (m *Manager) Delete(w http.ResponseWriter, name string) {
	http.SetCookie(w, &http.Cookie{
		Name:     name,
		Value:    "",
		Path:     m.defaults.Path,
		Domain:   m.defaults.Domain,
		MaxAge:   -1,
		Expires:  time.Unix(0, 0),
		HttpOnly: m.defaults.HttpOnly,
		SameSite: m.defaults.SameSite,
		Secure:   m.defaults.Secure,
	})
}

// SetSigned stores value with an HMAC-SHA256 signature so tampered cookies
// are rejected before they reach the session store.
func (m *Manager) SetSigned(w http.ResponseWriter, name, value string, opts ...Option) error {
	return m.Set(w, name, m.sign(value), opts...)
}

func (m *Manager) GetSigned(r *http.Request, name string) (string, error) {
	signed, err := m.Get(r, name)
	if err != nil {
		return "", err
	}
	return m.verify(signed)
}

func (m *Manager) sign(value string) string {
	return base64.RawURLEncoding.EncodeToString([]byte(value)) +
		signedSeparator +
		base64.RawURLEncoding.EncodeToString(mac(m.secrets[0], value))
}

func (m *Manager) verify(signed string) (string, error) {
	encodedValue, encodedSig, ok := strings.Cut(signed, signedSeparator)
	if !ok {
		return "", ErrInvalidFormat
	}

	value, err := base64.RawURLEncoding.DecodeString(encodedValue)
	if err != nil {
		return "", ErrInvalidFormat
	}
	sig, err := base64.RawURLEncoding.DecodeString(encodedSig)
	if err != nil {
		return "", ErrInvalidFormat
	}

	// Old secrets stay valid during rotation.
	for _, secret := range m.secrets {
		if subtle.ConstantTimeCompare(sig, mac(secret, string(value))) == 1 {
			return string(value), nil
		}
	}

	return "", ErrInvalidSignature
}

func mac(secret, value string) []byte {
	h := hmac.New(sha256.New, []byte(secret))
	h.Write([]byte(value))
	return h.Sum(nil)
}
