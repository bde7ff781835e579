// Package auth gates the single account behind one configured password and
// keeps per-browser identity and guest entries in a signed session cookie.
package auth

import (
	"context"
	"crypto/subtle"
	"errors"
	"fmt"

	"golang.org/x/crypto/bcrypt"
)

// ErrAuthenticationFailed is returned for a wrong or empty password.
var ErrAuthenticationFailed = errors.New("authentication failed")

// Authenticator checks a login attempt and returns the account it unlocks.
type Authenticator interface {
	Authenticate(ctx context.Context, password string) (accountID string, err error)
}

// PasswordAuthenticator holds exactly one credential: either a bcrypt hash
// or a plaintext secret compared in constant time.
type PasswordAuthenticator struct {
	accountID string
	hash      []byte
	plain     []byte
}

var _ Authenticator = (*PasswordAuthenticator)(nil)

// NewPasswordAuthenticator prefers passwordHash when both are set.
func NewPasswordAuthenticator(accountID, password, passwordHash string) (*PasswordAuthenticator, error) {
	if accountID == "" {
		return nil, errors.New("empty account id")
	}
	a := &PasswordAuthenticator{accountID: accountID}
	switch {
	case passwordHash != "":
		if _, err := bcrypt.Cost([]byte(passwordHash)); err != nil {
			return nil, fmt.Errorf("invalid password hash: %w", err)
		}
		a.hash = []byte(passwordHash)
	case password != "":
		a.plain = []byte(password)
	default:
		return nil, errors.New("no password configured")
	}
	return a, nil
}

func (a *PasswordAuthenticator) Authenticate(_ context.Context, password string) (string, error) {
	if password == "" {
		return "", ErrAuthenticationFailed
	}
	if a.hash != nil {
		if err := bcrypt.CompareHashAndPassword(a.hash, []byte(password)); err != nil {
			return "", ErrAuthenticationFailed
		}
		return a.accountID, nil
	}
	if subtle.ConstantTimeCompare(a.plain, []byte(password)) != 1 {
		return "", ErrAuthenticationFailed
	}
	return a.accountID, nil
}
