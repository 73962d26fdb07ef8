// Package token provides the cryptographic primitives used by session
// management: random token generation, keyed owner hashing and constant-time
// comparison of secrets.
//
// Generated tokens carry 256 bits of entropy from crypto/rand and are encoded
// with base64url without padding, so they are safe to use in cookies, headers
// and URLs as-is.
//
// Owner keys (user ids, anonymous visitor ids) are never stored in clear.
// Hash derives a dedicated HMAC key from the configured salt with HKDF-SHA256
// and returns the base64url HMAC-SHA256 of the owner key. The output is stable
// for the same (owner, salt) pair and reveals nothing about the owner without
// the salt.
//
// # Usage
//
//	import "github.com/dmitrymomot/sessionkit/pkg/token"
//
//	secret := token.Generate()
//
//	h := token.NewHasher(os.Getenv("SESSION_SALT"))
//	partition := h.Sum("user-42")
//
//	if token.Equal(stored, supplied) {
//	    // tokens match
//	}
//
// Equal hashes both inputs before comparing, so the comparison time depends on
// neither the position of the first differing byte nor the length mismatch.
package token
