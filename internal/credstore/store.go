// Package credstore persists username -> password-hash records. The
// server core treats it as an opaque collaborator: hashes never leave the
// store boundary except to the verify helper.
package credstore

import (
	"context"
	"errors"

	"golang.org/x/crypto/bcrypt"
)

var (
	// ErrExists is returned by Insert when the username is already taken.
	ErrExists = errors.New("username already registered")
	// ErrNotFound is returned by Lookup for unknown usernames.
	ErrNotFound = errors.New("no such user")
)

// Store is the credential store contract. Insert is an atomic
// check-and-insert: concurrent inserts for the same username yield
// exactly one success and ErrExists for the rest.
type Store interface {
	Insert(ctx context.Context, username, passwordHash string) error
	Lookup(ctx context.Context, username string) (passwordHash string, err error)
	Close() error
}

// bcrypt cost of 12 is a good balance of security and performance.
const bcryptCost = 12

// HashPassword produces an opaque digest of password.
func HashPassword(password string) (string, error) {
	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcryptCost)
	if err != nil {
		return "", err
	}
	return string(hash), nil
}

// VerifyPassword compares password against a stored digest in constant
// time.
func VerifyPassword(password, hash string) bool {
	return bcrypt.CompareHashAndPassword([]byte(hash), []byte(password)) == nil
}
