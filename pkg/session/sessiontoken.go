package session

import (
	"strings"

	"github.com/dmitrymomot/sessionkit/pkg/token"
)

// tokenSeparator splits the owner partition from the random secret.
// Neither half can contain it: both are raw base64url.
const tokenSeparator = "."

// newSessionToken issues a token that resolves to its storage partition
// without any index lookup.
func newSessionToken(partition string) string {
	return partition + tokenSeparator + token.Generate()
}

// PartitionOf extracts the owner partition from a session token.
// It returns ErrMalformedToken if the token was not issued by this package.
func PartitionOf(sessionToken string) (string, error) {
	partition, secret, ok := strings.Cut(sessionToken, tokenSeparator)
	if !ok || partition == "" || secret == "" || strings.Contains(secret, tokenSeparator) {
		return "", ErrMalformedToken
	}
	return partition, nil
}
