package security

import (
	"errors"
	"fmt"

	"github.com/cropcareapp/cropcare-backend/pkg/config"
	"golang.org/x/crypto/bcrypt"
)

// HashPassword returns a salted bcrypt digest for the provided password.
// The cost factor comes from config and defaults to bcrypt's recommended 10.
func HashPassword(password string, cfg config.PasswordConfig) (string, error) {
	if password == "" {
		return "", fmt.Errorf("password cannot be empty")
	}

	cost := cfg.BcryptCost
	if cost < bcrypt.MinCost || cost > bcrypt.MaxCost {
		cost = bcrypt.DefaultCost
	}

	digest, err := bcrypt.GenerateFromPassword([]byte(password), cost)
	if err != nil {
		return "", fmt.Errorf("hashing password: %w", err)
	}
	return string(digest), nil
}

// VerifyPassword returns true when the password matches the stored digest.
// A mismatch is not an error; anything else (malformed digest) is.
func VerifyPassword(password, digest string) (bool, error) {
	err := bcrypt.CompareHashAndPassword([]byte(digest), []byte(password))
	if err == nil {
		return true, nil
	}
	if errors.Is(err, bcrypt.ErrMismatchedHashAndPassword) {
		return false, nil
	}
	return false, fmt.Errorf("comparing password: %w", err)
}
