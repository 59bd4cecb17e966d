// Package password реализует хеширование и проверку паролей на bcrypt.
package password

import (
	"errors"
	"fmt"
	"unicode/utf8"

	"golang.org/x/crypto/bcrypt"
)

// MinLength is the shortest password accepted at sign-up.
const MinLength = 6

// ErrTooShort is returned by Validate for passwords under MinLength runes.
var ErrTooShort = errors.New("password is too short")

// Validate checks sign-up password rules.
func Validate(raw string) error {
	if utf8.RuneCountInString(raw) < MinLength {
		return ErrTooShort
	}
	return nil
}

// GetHash возвращает bcrypt-хэш пароля для хранения в базе.
func GetHash(raw string) (string, error) {
	const op = "password.GetHash"
	hashed, err := bcrypt.GenerateFromPassword([]byte(raw), bcrypt.DefaultCost)
	if err != nil {
		return "", fmt.Errorf("%s: %w", op, err)
	}
	return string(hashed), nil
}

// CompareHash возвращает nil, если пароль соответствует хэшу.
func CompareHash(hash, raw string) error {
	const op = "password.CompareHash"
	if err := bcrypt.CompareHashAndPassword([]byte(hash), []byte(raw)); err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}
	return nil
}
