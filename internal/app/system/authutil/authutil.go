// internal/app/system/authutil/authutil.go
package authutil

import (
	"errors"
	"strings"

	"golang.org/x/crypto/bcrypt"
)

// Auth methods a user record can carry.
const (
	MethodTrust    = "trust"
	MethodPassword = "password"
)

// MinPasswordLength is the shortest password HashPassword accepts.
const MinPasswordLength = 8

var ErrPasswordTooShort = errors.New("password is too short")

// RequiresPassword reports whether the method asks for a password step.
func RequiresPassword(method string) bool {
	return strings.EqualFold(strings.TrimSpace(method), MethodPassword)
}

// HashPassword returns a bcrypt hash of password.
func HashPassword(password string) (string, error) {
	if len(password) < MinPasswordLength {
		return "", ErrPasswordTooShort
	}
	b, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return "", err
	}
	return string(b), nil
}

// CheckPassword compares password with a stored bcrypt hash.
func CheckPassword(password, hash string) bool {
	if hash == "" {
		return false
	}
	return bcrypt.CompareHashAndPassword([]byte(hash), []byte(password)) == nil
}
