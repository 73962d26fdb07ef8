package token

import (
	"crypto/rand"
	"encoding/base64"
)

// Size is the number of random bytes behind every generated token.
const Size = 32

// Generate returns a fresh url-safe random token with 256 bits of entropy.
// It panics if the system randomness source fails: there is no safe way to
// continue issuing session secrets at that point.
func Generate() string {
	b := make([]byte, Size)
	if _, err := rand.Read(b); err != nil {
		panic("token: crypto/rand failed: " + err.Error())
	}
	return base64.RawURLEncoding.EncodeToString(b)
}
