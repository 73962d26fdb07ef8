package cookie_test

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dmitrymomot/sessionkit/pkg/cookie"
)

const (
	secretA = "aaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaa"
	secretB = "bbbbbbbbbbbbbbbbbbbbbbbbbbbbbbbbbbbbbbbb"
)

func roundTrip(t *testing.T, rec *httptest.ResponseRecorder) *http.Request {
	t.Helper()
	req := httptest.NewRequest(http.MethodGet, "/", nil)
	for _, c := range rec.Result().Cookies() {
		req.AddCookie(c)
	}
	return req
}

func TestNew(t *testing.T) {
	t.Parallel()

	t.Run("requires a secret", func(t *testing.T) {
		t.Parallel()
		_, err := cookie.New(nil)
		assert.ErrorIs(t, err, cookie.ErrNoSecret)

		_, err = cookie.New([]string{""})
		assert.ErrorIs(t, err, cookie.ErrNoSecret)
	})

	t.Run("rejects short secrets", func(t *testing.T) {
		t.Parallel()
		_, err := cookie.New([]string{"short"})
		assert.ErrorIs(t, err, cookie.ErrSecretTooShort)
	})

	t.Run("accepts valid secrets", func(t *testing.T) {
		t.Parallel()
		m, err := cookie.New([]string{secretA, secretB})
		require.NoError(t, err)
		assert.NotNil(t, m)
	})
}

func TestManager_Plain(t *testing.T) {
	t.Parallel()

	m, err := cookie.New([]string{secretA})
	require.NoError(t, err)

	rec := httptest.NewRecorder()
	require.NoError(t, m.Set(rec, "csrf", "value-1", cookie.WithHTTPOnly(false), cookie.WithMaxAge(60)))

	cookies := rec.Result().Cookies()
	require.Len(t, cookies, 1)
	assert.Equal(t, "value-1", cookies[0].Value)
	assert.False(t, cookies[0].HttpOnly)
	assert.Equal(t, 60, cookies[0].MaxAge)
	assert.Equal(t, "/", cookies[0].Path)
	assert.Equal(t, http.SameSiteLaxMode, cookies[0].SameSite)

	got, err := m.Get(roundTrip(t, rec), "csrf")
	require.NoError(t, err)
	assert.Equal(t, "value-1", got)

	_, err = m.Get(httptest.NewRequest(http.MethodGet, "/", nil), "csrf")
	assert.ErrorIs(t, err, cookie.ErrCookieNotFound)
}

func TestManager_Delete(t *testing.T) {
	t.Parallel()

	m, err := cookie.New([]string{secretA})
	require.NoError(t, err)

	rec := httptest.NewRecorder()
	m.Delete(rec, "session")

	cookies := rec.Result().Cookies()
	require.Len(t, cookies, 1)
	assert.Equal(t, "session", cookies[0].Name)
	assert.Empty(t, cookies[0].Value)
	assert.Less(t, cookies[0].MaxAge, 0)
}

func TestManager_Signed(t *testing.T) {
	t.Parallel()

	m, err := cookie.New([]string{secretA})
	require.NoError(t, err)

	t.Run("round trip", func(t *testing.T) {
		t.Parallel()
		rec := httptest.NewRecorder()
		require.NoError(t, m.SetSigned(rec, "session", "part.secret"))

		cookies := rec.Result().Cookies()
		require.Len(t, cookies, 1)
		assert.True(t, cookies[0].HttpOnly)
		assert.NotEqual(t, "part.secret", cookies[0].Value)

		got, err := m.GetSigned(roundTrip(t, rec), "session")
		require.NoError(t, err)
		assert.Equal(t, "part.secret", got)
	})

	t.Run("tampered value", func(t *testing.T) {
		t.Parallel()
		rec := httptest.NewRecorder()
		require.NoError(t, m.SetSigned(rec, "session", "value"))
		value := rec.Result().Cookies()[0].Value
		_, sig, _ := strings.Cut(value, ".")

		req := httptest.NewRequest(http.MethodGet, "/", nil)
		req.AddCookie(&http.Cookie{Name: "session", Value: "b3RoZXI." + sig})
		_, err := m.GetSigned(req, "session")
		assert.ErrorIs(t, err, cookie.ErrInvalidSignature)
	})

	t.Run("malformed value", func(t *testing.T) {
		t.Parallel()
		for _, value := range []string{"no-separator", "!!!.abc", "YWJj.!!!"} {
			req := httptest.NewRequest(http.MethodGet, "/", nil)
			req.AddCookie(&http.Cookie{Name: "session", Value: value})
			_, err := m.GetSigned(req, "session")
			assert.ErrorIs(t, err, cookie.ErrInvalidFormat, value)
		}
	})

	t.Run("missing cookie", func(t *testing.T) {
		t.Parallel()
		_, err := m.GetSigned(httptest.NewRequest(http.MethodGet, "/", nil), "session")
		assert.ErrorIs(t, err, cookie.ErrCookieNotFound)
	})
}

func TestManager_SecretRotation(t *testing.T) {
	t.Parallel()

	old, err := cookie.New([]string{secretA})
	require.NoError(t, err)
	rotated, err := cookie.New([]string{secretB, secretA})
	require.NoError(t, err)
	other, err := cookie.New([]string{secretB})
	require.NoError(t, err)

	rec := httptest.NewRecorder()
	require.NoError(t, old.SetSigned(rec, "session", "value"))

	got, err := rotated.GetSigned(roundTrip(t, rec), "session")
	require.NoError(t, err)
	assert.Equal(t, "value", got)

	_, err = other.GetSigned(roundTrip(t, rec), "session")
	assert.ErrorIs(t, err, cookie.ErrInvalidSignature)
}

func TestNewFromConfig(t *testing.T) {
	t.Parallel()

	cfg := cookie.Config{
		Secrets:  " " + secretA + " , " + secretB,
		Path:     "/app",
		Secure:   true,
		SameSite: http.SameSiteStrictMode,
	}

	m, err := cookie.NewFromConfig(cfg)
	require.NoError(t, err)

	rec := httptest.NewRecorder()
	require.NoError(t, m.Set(rec, "name", "value"))
	c := rec.Result().Cookies()[0]
	assert.True(t, c.Secure)
	assert.True(t, c.HttpOnly)
	assert.Equal(t, "/app", c.Path)
	assert.Equal(t, http.SameSiteStrictMode, c.SameSite)

	_, err = cookie.NewFromConfig(cookie.Config{})
	assert.ErrorIs(t, err, cookie.ErrNoSecret)
}
