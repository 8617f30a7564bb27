// Package crypto provides password hashing and verification.
package crypto

import (
	"sync"

	"golang.org/x/crypto/bcrypt"
)

var (
	decoyOnce sync.Once
	decoyHash []byte
)

// HashPasswordAsBcrypt generates a bcrypt hash of the given password.
func HashPasswordAsBcrypt(password string) (string, error) {
	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	return string(hash), err
}

// CheckPasswordHash verifies if the given password matches the bcrypt hash.
func CheckPasswordHash(hash, password string) bool {
	err := bcrypt.CompareHashAndPassword([]byte(hash), []byte(password))
	return err == nil
}

// CheckUnknownUser costs as much as CheckPasswordHash and always fails, so a
// missing account answers in the same time as a wrong password.
func CheckUnknownUser(password string) bool {
	decoyOnce.Do(func() {
		decoyHash, _ = bcrypt.GenerateFromPassword([]byte("unknown-user"), bcrypt.DefaultCost)
	})
	_ = bcrypt.CompareHashAndPassword(decoyHash, []byte(password))
	return false
}
