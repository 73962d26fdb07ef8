// Package cookie sets and reads HTTP cookies with shared defaults.
//
// A Manager is created with one or more secrets of at least 32 characters.
// Plain cookies go through Set, Get and Delete. Signed cookies carry an
// HMAC-SHA256 tag over the value and are verified with every configured
// secret, so secrets can be rotated by prepending a new one.
//
//	man, err := cookie.New([]string{os.Getenv("COOKIE_SECRETS")})
//	if err != nil {
//		return err
//	}
//	_ = man.SetSigned(w, "session-token", token, cookie.WithMaxAge(3600))
//	token, err := man.GetSigned(r, "session-token")
//
// Config reads the same settings from the environment (COOKIE_SECRETS is a
// comma separated list).
package cookie
