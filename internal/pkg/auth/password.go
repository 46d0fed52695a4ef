package auth

import (
	"errors"
	"fmt"
	"sync"

	"golang.org/x/crypto/bcrypt"

	"github.com/yigit/catequesis/internal/pkg/apperrors"
)

// MaxPasswordBytes is the longest password bcrypt accepts
const MaxPasswordBytes = 72

// BcryptCost is the hashing cost for stored passwords. Tests lower it.
var BcryptCost = 12

// dummyHash is compared against when no account matches, so unknown usernames
// take as long to reject as wrong passwords.
var (
	dummyHash     []byte
	dummyHashOnce sync.Once
)

// HashPassword hashes a plaintext password
func HashPassword(password string) (string, error) {
	bytes, err := bcrypt.GenerateFromPassword([]byte(password), BcryptCost)
	if err != nil {
		if errors.Is(err, bcrypt.ErrPasswordTooLong) {
			return "", fmt.Errorf("%w: %v", apperrors.ErrPasswordTooLong, err)
		}
		return "", err
	}
	return string(bytes), nil
}

// CheckPassword reports whether password matches hashedPassword
func CheckPassword(hashedPassword, password string) bool {
	err := bcrypt.CompareHashAndPassword([]byte(hashedPassword), []byte(password))
	return err == nil
}

// BurnPasswordCheck performs a comparison that always fails
func BurnPasswordCheck(password string) {
	dummyHashOnce.Do(func() {
		dummyHash, _ = bcrypt.GenerateFromPassword([]byte("catequesis-unknown-account"), BcryptCost)
	})
	_ = bcrypt.CompareHashAndPassword(dummyHash, []byte(password))
}
