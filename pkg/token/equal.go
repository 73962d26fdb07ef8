package token

import (
	"crypto/sha256"
	"crypto/subtle"
)

// Equal reports whether a and b are identical in constant time.
// Both inputs are digested first so that inputs of different length are
// compared the same way as inputs of equal length.
func Equal(a, b string) bool {
	da := sha256.Sum256([]byte(a))
	db := sha256.Sum256([]byte(b))

	sameDigest := subtle.ConstantTimeCompare(da[:], db[:])
	sameLen := subtle.ConstantTimeEq(int32(len(a)), int32(len(b)))

	return sameDigest&sameLen == 1
}
