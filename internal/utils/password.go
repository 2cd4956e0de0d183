package utils

import (
	"fmt"

	"golang.org/x/crypto/bcrypt"
)

// HashPassword runs the password through bcrypt at the given cost. Salt is
// generated per call, so equal passwords never produce equal hashes.
func HashPassword(password string, cost int) (string, error) {
	hashed, err := bcrypt.GenerateFromPassword([]byte(password), cost)
	if err != nil {
		return "", fmt.Errorf("hash password: %w", err)
	}
	return string(hashed), nil
}

// CheckPasswordHash reports whether password matches hash. A malformed
// hash reads the same as a mismatch; callers only see a bool.
func CheckPasswordHash(password, hash string) bool {
	return bcrypt.CompareHashAndPassword([]byte(hash), []byte(password)) == nil
}
