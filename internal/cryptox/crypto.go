// Package cryptox derives and checks credential verifiers for the locally
// simulated admin login. Only a salt and a verifier are ever stored; the
// password itself is never persisted.
package cryptox

import (
	"crypto/sha256"
	"crypto/subtle"

	"github.com/dmitrijs2005/brokerdesk/internal/common"
	"golang.org/x/crypto/argon2"
)

// SaltSize is the length of salts produced by NewCredential.
const SaltSize = 16

func DeriveKey(password []byte, salt []byte) []byte {
	return argon2.IDKey(password, salt, 1, 64*1024, 4, 32)
}

func MakeVerifier(key []byte) []byte {
	hash := sha256.Sum256(key)
	return hash[:]
}

// NewCredential generates a random salt and the verifier matching password.
func NewCredential(password []byte) (salt []byte, verifier []byte) {
	salt = common.GenerateRandByteArray(SaltSize)
	key := DeriveKey(password, salt)
	defer common.WipeByteArray(key)
	return salt, MakeVerifier(key)
}

// Verify reports whether password matches the stored salt and verifier.
// The comparison runs in constant time.
func Verify(password []byte, salt []byte, verifier []byte) bool {
	if len(salt) == 0 || len(verifier) == 0 {
		return false
	}
	key := DeriveKey(password, salt)
	defer common.WipeByteArray(key)
	return subtle.ConstantTimeCompare(MakeVerifier(key), verifier) == 1
}
