package auth

import (
	"crypto/sha256"
	"crypto/subtle"
	"encoding/hex"
)

// DigestLength is the length of a password digest in hex characters.
const DigestLength = sha256.Size * 2

// HashPassword returns the hex SHA-256 digest of password.
//
// The digest is unsalted and deterministic because the identity
// collaborator stores and compares raw digests. This is a known weakness:
// identical passwords share a digest and the digest is cheap to brute
// force. Changing it requires migrating every stored identity.
func HashPassword(password string) string {
	sum := sha256.Sum256([]byte(password))
	return hex.EncodeToString(sum[:])
}

// VerifyPassword reports whether password hashes to the stored digest.
// The comparison is constant-time.
func VerifyPassword(password, storedDigest string) bool {
	computed := HashPassword(password)
	return subtle.ConstantTimeCompare([]byte(computed), []byte(storedDigest)) == 1
}
