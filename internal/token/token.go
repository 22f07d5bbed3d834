// Package token generates and stores the shared secret that authenticates
// clients of the sslexec HTTP API.
package token //nolint:revive // intentional: does not conflict at import path level

import (
	"crypto/rand"
	"crypto/subtle"
	"encoding/hex"
)

// TokenBytes is the number of random bytes used for token generation.
const TokenBytes = 32

// Generate creates a new cryptographically secure random token.
// The token is 32 random bytes encoded as 64 lowercase hex characters.
func Generate() string {
	b := make([]byte, TokenBytes)
	if _, err := rand.Read(b); err != nil {
		// crypto/rand.Read only fails on a broken system.
		panic("crypto/rand.Read failed: " + err.Error())
	}
	return hex.EncodeToString(b)
}

// Equal reports whether got matches want in constant time.
// An empty want never matches.
func Equal(got, want string) bool {
	if want == "" {
		return false
	}
	return subtle.ConstantTimeCompare([]byte(got), []byte(want)) == 1
}
