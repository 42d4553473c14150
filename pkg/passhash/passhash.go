// Package passhash wraps argon2id hashing for login passwords and API
// key secrets. Hashes are self-describing PHC strings carrying the
// algorithm parameters and salt, so verification needs no side-channel
// state.
package passhash

import (
	"errors"

	"github.com/alexedwards/argon2id"
)

// ErrVerification is the uniform failure for every verify outcome:
// malformed hash, parameter mismatch, or plain wrong password. Callers
// must not be able to tell these apart.
var ErrVerification = errors.New("passhash: verification failed")

var params = argon2id.DefaultParams

// Hash derives an argon2id hash of password with a fresh random salt.
func Hash(password string) (string, error) {
	return argon2id.CreateHash(password, params)
}

// Verify recomputes the hash described by encoded and compares it to
// password in constant time.
func Verify(password, encoded string) error {
	match, err := argon2id.ComparePasswordAndHash(password, encoded)
	if err != nil || !match {
		return ErrVerification
	}
	return nil
}
