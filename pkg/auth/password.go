package auth

import (
	"fmt"

	"golang.org/x/crypto/bcrypt"
)

// BcryptCost mirrors the work factor the legacy backend used for account
// passwords. Raising it invalidates nothing: existing hashes keep their
// embedded cost and new hashes pick up the new one.
const BcryptCost = 12

func HashPassword(password string) (string, error) {
	if password == "" {
		return "", fmt.Errorf("password cannot be empty")
	}
	hashedBytes, err := bcrypt.GenerateFromPassword([]byte(password), BcryptCost)
	if err != nil {
		return "", fmt.Errorf("failed to hash password: %w", err)
	}
	return string(hashedBytes), nil
}

func ComparePassword(hashedPassword, password string) error {
	return bcrypt.CompareHashAndPassword([]byte(hashedPassword), []byte(password))
}
