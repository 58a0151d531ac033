package service

import (
	"errors"
	"fmt"

	"psocial/internal/config"

	"golang.org/x/crypto/bcrypt"
)

// PasswordHasher converts passwords to their stored form and checks them.
type PasswordHasher interface {
	Hash(plain string) (string, error)
	Verify(stored, plain string) bool
}

// PlainHasher stores passwords verbatim. This is the default and is
// insecure; it keeps the seeded admin123 credential and stored values
// readable.
type PlainHasher struct{}

func (PlainHasher) Hash(plain string) (string, error) { return plain, nil }

func (PlainHasher) Verify(stored, plain string) bool { return stored == plain }

// BcryptHasher stores bcrypt hashes.
type BcryptHasher struct {
	Cost int
}

func (h BcryptHasher) Hash(plain string) (string, error) {
	cost := h.Cost
	if cost == 0 {
		cost = bcrypt.DefaultCost
	}
	hashed, err := bcrypt.GenerateFromPassword([]byte(plain), cost)
	if err != nil {
		return "", fmt.Errorf("hash password: %w", err)
	}
	return string(hashed), nil
}

func (BcryptHasher) Verify(stored, plain string) bool {
	return bcrypt.CompareHashAndPassword([]byte(stored), []byte(plain)) == nil
}

// NewPasswordHasher returns the hasher for a PASSWORD_HASHING mode.
func NewPasswordHasher(mode string) (PasswordHasher, error) {
	switch mode {
	case "", config.HashingPlain:
		return PlainHasher{}, nil
	case config.HashingBcrypt:
		return BcryptHasher{}, nil
	}
	return nil, errors.New("unknown password hashing mode: " + mode)
}
