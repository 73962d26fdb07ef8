package token

import (
	"crypto/hmac"
	"crypto/sha256"
	"encoding/base64"
	"io"

	"golang.org/x/crypto/hkdf"
)

// hashInfo provides domain separation for the HKDF-derived owner key.
const hashInfo = "sessionkit-owner-v1"

// Hasher computes keyed, one-way hashes of owner keys.
// It is safe for concurrent use.
type Hasher struct {
	key []byte
}

// NewHasher derives the HMAC key from salt once, so repeated hashing does not
// pay the derivation cost.
func NewHasher(salt string) *Hasher {
	key := make([]byte, sha256.Size)
	r := hkdf.New(sha256.New, []byte(salt), nil, []byte(hashInfo))
	if _, err := io.ReadFull(r, key); err != nil {
		// HKDF-SHA256 can produce up to 255*32 bytes; 32 never fails.
		panic("token: hkdf: " + err.Error())
	}
	return &Hasher{key: key}
}

// Sum returns the base64url HMAC-SHA256 of ownerKey.
func (h *Hasher) Sum(ownerKey string) string {
	mac := hmac.New(sha256.New, h.key)
	mac.Write([]byte(ownerKey))
	return base64.RawURLEncoding.EncodeToString(mac.Sum(nil))
}

// Hash is a shortcut for NewHasher(salt).Sum(ownerKey).
func Hash(ownerKey, salt string) string {
	return NewHasher(salt).Sum(ownerKey)
}
